package explainer

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"insightflow/domain/dataset"
)

// num reads a measure cell as a number, 0 when absent
func num(r dataset.Row, id string) float64 {
	f, _ := dataset.Number(r[id])
	return f
}

// column extracts one measure across rows
func column(rows []dataset.Row, id string) []float64 {
	col := make([]float64, len(rows))
	for i, r := range rows {
		col[i] = num(r, id)
	}
	return col
}

// totals is the absolute sum of each measure over the rows
func totals(rows []dataset.Row, measures []string) map[string]float64 {
	out := make(map[string]float64, len(measures))
	for _, m := range measures {
		out[m] = floats.Norm(column(rows, m), 1)
	}
	return out
}

// safeDiv divides and returns 0 for a zero denominator
func safeDiv(a, b float64) float64 {
	if b == 0 || math.IsNaN(b) {
		return 0
	}
	return a / b
}

// scaleRows returns copies of rows with each measure divided by its denominator
func scaleRows(rows []dataset.Row, measures []string, denom map[string]float64) []dataset.Row {
	out := make([]dataset.Row, len(rows))
	for i, r := range rows {
		nr := r.Clone()
		for _, m := range measures {
			nr[m] = safeDiv(num(r, m), denom[m])
		}
		out[i] = nr
	}
	return out
}

// normalizeByMeasures divides every measure by its absolute total over the rows
func normalizeByMeasures(rows []dataset.Row, measures []string) []dataset.Row {
	return scaleRows(rows, measures, totals(rows, measures))
}

// normalizeWithParent normalizes the subset and its parent. The parent is always
// scaled by its own totals; the subset by its own totals unless syncScale, in
// which case it shares the parent's.
func normalizeWithParent(sub, parent []dataset.Row, measures []string, syncScale bool) ([]dataset.Row, []dataset.Row) {
	parentTotals := totals(parent, measures)
	subTotals := parentTotals
	if !syncScale {
		subTotals = totals(sub, measures)
	}
	return scaleRows(sub, measures, subTotals), scaleRows(parent, measures, parentTotals)
}

// ratio compares two matched values as max/min. A zero or negative side has
// no meaningful ratio, so the larger magnitude stands in, as for an unmatched group.
func ratio(a, b float64) float64 {
	lo, hi := math.Min(a, b), math.Max(a, b)
	if lo <= 0 {
		return math.Max(math.Abs(a), math.Abs(b))
	}
	return hi / lo
}

// dimsKey keys a row by its values on the given dimensions
func dimsKey(r dataset.Row, dims []string) dataset.GroupKey {
	values := make([]any, len(dims))
	for i, d := range dims {
		values[i] = r[d]
	}
	return dataset.TupleKey(values...)
}

// compareDistribution returns the worst-case difference between two normalized
// distributions matched group by group on dims. Matched groups contribute
// max/min; unmatched groups on either side contribute their own value.
func compareDistribution(d1, d2 []dataset.Row, dims, measures []string) float64 {
	pending := make(map[dataset.GroupKey][]int)
	for i, r := range d2 {
		k := dimsKey(r, dims)
		pending[k] = append(pending[k], i)
	}
	matched := make([]bool, len(d2))
	score := 0.0
	for _, r := range d1 {
		k := dimsKey(r, dims)
		if queue := pending[k]; len(queue) > 0 {
			j := queue[0]
			pending[k] = queue[1:]
			matched[j] = true
			for _, m := range measures {
				score = math.Max(score, ratio(num(r, m), num(d2[j], m)))
			}
			continue
		}
		for _, m := range measures {
			score = math.Max(score, num(r, m))
		}
	}
	for j, r := range d2 {
		if matched[j] {
			continue
		}
		for _, m := range measures {
			score = math.Max(score, num(r, m))
		}
	}
	return score
}

// distributionDifference sums the per-row max/min ratio between two aligned
// normalized measure vectors, skipping rows where either side is zero
func distributionDifference(a, b []float64) float64 {
	score := 0.0
	for i := range a {
		if i >= len(b) {
			break
		}
		x, y := math.Abs(a[i]), math.Abs(b[i])
		if x == 0 || y == 0 {
			continue
		}
		score += math.Max(x, y) / math.Min(x, y)
	}
	return score
}
