package explainer

import (
	"math"
	"sort"

	"insightflow/domain/insight"
)

const (
	lowerTail = 0.15
	upperTail = 0.85
)

// ExplainValue classifies the selection against the spread of each measure
// across all groups of the cuboid: +1 when any selected value reaches the 85th
// percentile boundary, -1 when any reaches the 15th, 0 otherwise
func ExplainValue(space Space, predicates []insight.Predicate, dimensions []string, measures []insight.Measure) ([]int, error) {
	rows, err := space.AggregatedRows(dimensions, measures)
	if err != nil {
		return nil, err
	}
	selection := insight.FilterRows(rows, predicates)
	flags := make([]int, len(measures))
	if len(rows) == 0 {
		return flags, nil
	}
	for mi, m := range measures {
		values := column(rows, m.FieldID)
		sort.Float64s(values)
		n := len(values)
		lower := values[int(math.Floor(float64(n)*lowerTail))]
		upper := values[min(int(math.Ceil(float64(n)*upperTail)), n-1)]
		selected := column(selection, m.FieldID)
		switch {
		case anyAtLeast(selected, upper):
			flags[mi] = 1
		case anyAtMost(selected, lower):
			flags[mi] = -1
		}
	}
	return flags, nil
}

func anyAtLeast(values []float64, bound float64) bool {
	for _, v := range values {
		if v >= bound {
			return true
		}
	}
	return false
}

func anyAtMost(values []float64, bound float64) bool {
	for _, v := range values {
		if v <= bound {
			return true
		}
	}
	return false
}
