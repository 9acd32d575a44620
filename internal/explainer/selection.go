package explainer

import (
	"sort"

	"insightflow/domain/dataset"
	"insightflow/domain/insight"
)

// ExplainBySelection compares, for each top-k dimension neighbor d, the
// normalized measure distribution of the selected part of [dimensions, d]
// against the whole of [d]. A higher score means the selection looks more
// different from the overall distribution along d.
func ExplainBySelection(space Space, predicates []insight.Predicate, dimensions []string, measures []insight.Measure, k int, syncScale bool) ([]Candidate, error) {
	knn, err := space.KNN(dataset.Dimension, dimensions, k, 0)
	if err != nil {
		return nil, err
	}
	ids := insight.MeasureIDs(measures)
	var out []Candidate
	for _, d := range extendable(knn, measures) {
		overall, err := space.AggregatedRows([]string{d}, measures)
		if err != nil {
			return nil, err
		}
		rows, err := space.AggregatedRows(withDim(dimensions, d), measures)
		if err != nil {
			return nil, err
		}
		sub := insight.FilterRows(rows, predicates)
		normSub, normParent := normalizeWithParent(sub, overall, ids, syncScale)
		out = append(out, Candidate{
			Dimensions: []string{d},
			Measures:   measures,
			Score:      compareDistribution(normSub, normParent, []string{d}, ids),
		})
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].Score > out[b].Score })
	return out, nil
}
