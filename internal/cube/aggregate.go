package cube

import (
	"github.com/montanaflynn/stats"

	"insightflow/domain/insight"
)

// reduce applies a numeric aggregator. An empty group reduces to 0.
func reduce(agg insight.Aggregator, values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	data := stats.Float64Data(values)
	var (
		v   float64
		err error
	)
	switch agg {
	case insight.Sum:
		v, err = data.Sum()
	case insight.Mean:
		v, err = data.Mean()
	case insight.Min:
		v, err = data.Min()
	case insight.Max:
		v, err = data.Max()
	case insight.Count:
		return float64(len(values))
	}
	if err != nil {
		return 0
	}
	return v
}
