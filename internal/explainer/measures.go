package explainer

import (
	"math"
	"slices"
	"sort"

	"insightflow/domain/dataset"
	"insightflow/domain/insight"
)

// ExplainByCorMeasures looks for measures, or alternative aggregators of the
// current measures, that react to the selection. A candidate qualifies only if
// its own value explanation is non-neutral; its score then reflects how far
// its distribution over the cuboid departs from the base measures.
func ExplainByCorMeasures(space Space, predicates []insight.Predicate, dimensions []string, measures []insight.Measure, k int) ([]Candidate, error) {
	ids := insight.MeasureIDs(measures)
	knn, err := space.KNN(dataset.Measure, ids, k, 0)
	if err != nil {
		return nil, err
	}
	origin := make(map[string]insight.Aggregator, len(measures))
	for _, m := range measures {
		origin[m.FieldID] = m.Aggregator
	}

	var out []Candidate
	for _, op := range insight.DefaultAggregators {
		extend, err := compatible(space, knn, op)
		if err != nil {
			return nil, err
		}
		request := append([]insight.Measure{}, measures...)
		for _, id := range extend {
			if slices.Contains(dimensions, id) {
				continue
			}
			request = append(request, insight.Measure{FieldID: id, Aggregator: op})
		}
		rows, err := space.AggregatedRows(dimensions, request)
		if err != nil {
			return nil, err
		}
		state := normalizeByMeasures(rows, insight.MeasureIDs(request))

		candidates := append(append([]string{}, ids...), extend...)
		for _, id := range candidates {
			prev, isOrigin := origin[id]
			if isOrigin && prev == op {
				continue
			}
			if isOrigin && op.NeedsNumbers() {
				f, err := space.Field(id)
				if err != nil {
					return nil, err
				}
				if f.SemanticType != dataset.Quantitative {
					continue
				}
			}
			m := insight.Measure{FieldID: id, Aggregator: op}
			flags, err := ExplainValue(space, predicates, dimensions, []insight.Measure{m})
			if err != nil {
				return nil, err
			}
			var interesting []insight.MeasureFlag
			for _, flag := range flags {
				if flag != 0 {
					interesting = append(interesting, insight.MeasureFlag{Measure: m, Flag: flag})
				}
			}
			if len(interesting) == 0 {
				continue
			}

			extended := column(state, id)
			if isOrigin {
				// the same field under another aggregator needs its own request
				alt, err := space.AggregatedRows(dimensions, []insight.Measure{m})
				if err != nil {
					return nil, err
				}
				extended = column(normalizeByMeasures(alt, []string{id}), id)
			}
			maxDiff, minDiff := 0.0, 1.0
			for _, base := range ids {
				diff := distributionDifference(column(state, base), extended) / 2
				maxDiff = math.Max(maxDiff, diff)
				minDiff = math.Min(minDiff, diff)
			}
			out = append(out, Candidate{
				Dimensions: dimensions,
				Measures:   []insight.Measure{m},
				Score:      math.Max(1-minDiff, maxDiff),
				Description: insight.Description{
					MaxDiff:     maxDiff,
					MinDiff:     minDiff,
					Interesting: interesting,
				},
			})
		}
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].Score > out[b].Score })
	return out, nil
}

// compatible keeps the fields that can be aggregated with op
func compatible(space Space, ids []string, op insight.Aggregator) ([]string, error) {
	if !op.NeedsNumbers() {
		return ids, nil
	}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		f, err := space.Field(id)
		if err != nil {
			return nil, err
		}
		if f.SemanticType == dataset.Quantitative {
			out = append(out, id)
		}
	}
	return out, nil
}
