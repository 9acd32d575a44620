package explainer

import (
	"math"
	"sort"

	"insightflow/domain/dataset"
	"insightflow/domain/insight"
)

// childGroup is the slice of an extended cuboid sharing one value of the
// extend dimension
type childGroup struct {
	key  any
	rows []dataset.Row
}

// ExplainByChildren splits the parent cuboid along each top-k dimension
// neighbor. The major list holds, per neighbor, the child value whose
// distribution is closest to the parent; it is sorted ascending because a
// lower difference is a stronger major factor. The outlier list holds the
// furthest child per neighbor, sorted descending.
func ExplainByChildren(space Space, predicates []insight.Predicate, dimensions []string, measures []insight.Measure, k int) (major, outlier []Candidate, err error) {
	ids := insight.MeasureIDs(measures)
	parentRows, err := space.AggregatedRows(dimensions, measures)
	if err != nil {
		return nil, nil, err
	}
	parent := insight.FilterRows(parentRows, predicates)
	knn, err := space.KNN(dataset.Dimension, dimensions, k, 0)
	if err != nil {
		return nil, nil, err
	}

	for _, d := range extendable(knn, measures) {
		rows, err := space.AggregatedRows(withDim(dimensions, d), measures)
		if err != nil {
			return nil, nil, err
		}
		groups := splitBy(insight.FilterRows(rows, predicates), d)
		if len(groups) == 0 {
			continue
		}
		majorKey, majorScore := majorFactor(parent, groups, dimensions, ids)
		major = append(major, Candidate{
			Dimensions:  []string{d},
			Measures:    measures,
			Score:       majorScore,
			Description: insight.Description{ChildKey: majorKey},
		})
		outlierKey, outlierScore := childOutlier(parent, groups, dimensions, ids)
		outlier = append(outlier, Candidate{
			Dimensions:  []string{d},
			Measures:    measures,
			Score:       outlierScore,
			Description: insight.Description{ChildKey: outlierKey},
		})
	}
	sort.SliceStable(major, func(a, b int) bool { return major[a].Score < major[b].Score })
	sort.SliceStable(outlier, func(a, b int) bool { return outlier[a].Score > outlier[b].Score })
	return major, outlier, nil
}

// splitBy groups rows by their value on dim in first-seen order
func splitBy(rows []dataset.Row, dim string) []childGroup {
	index := make(map[dataset.GroupKey]int)
	var groups []childGroup
	for _, r := range rows {
		k := dataset.KeyOf(r[dim])
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, childGroup{key: r[dim]})
		}
		groups[i].rows = append(groups[i].rows, r)
	}
	return groups
}

// firstMatch indexes rows by dimension tuple, keeping the first row per tuple
func firstMatch(rows []dataset.Row, dims []string) map[dataset.GroupKey]dataset.Row {
	out := make(map[dataset.GroupKey]dataset.Row, len(rows))
	for _, r := range rows {
		k := dimsKey(r, dims)
		if _, ok := out[k]; !ok {
			out[k] = r
		}
	}
	return out
}

// childDistance sums the absolute per-measure gap between the normalized
// parent and a child. Parent rows without a counterpart count in full.
func childDistance(parent []dataset.Row, child map[dataset.GroupKey]dataset.Row, dims, measures []string, scale func(m string, v float64) float64) float64 {
	sum := 0.0
	for _, r := range parent {
		target, ok := child[dimsKey(r, dims)]
		for _, m := range measures {
			if !ok {
				sum += math.Abs(num(r, m))
				continue
			}
			sum += math.Abs(num(r, m) - scale(m, num(target, m)))
		}
	}
	return sum
}

func majorFactor(parent []dataset.Row, groups []childGroup, dims, measures []string) (any, float64) {
	parentTotals := totals(parent, measures)
	normParent := scaleRows(parent, measures, parentTotals)
	byParent := func(m string, v float64) float64 { return safeDiv(v, parentTotals[m]) }

	var key any
	best := math.Inf(1)
	for _, g := range groups {
		sum := childDistance(normParent, firstMatch(g.rows, dims), dims, measures, byParent)
		if sum < best {
			best, key = sum, g.key
		}
	}
	return key, best / float64(2*max(len(measures), 1))
}

func childOutlier(parent []dataset.Row, groups []childGroup, dims, measures []string) (any, float64) {
	normParent := normalizeByMeasures(parent, measures)
	asIs := func(_ string, v float64) float64 { return v }

	var key any
	worst := math.Inf(-1)
	for _, g := range groups {
		child := normalizeByMeasures(g.rows, measures)
		sum := childDistance(normParent, firstMatch(child, dims), dims, measures, asIs)
		if sum > worst {
			worst, key = sum, g.key
		}
	}
	return key, worst / float64(2*max(len(measures), 1))
}
