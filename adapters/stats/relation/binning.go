package relation

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"insightflow/domain/dataset"
)

// bounds returns the min and max of a numeric series
func bounds(xs []float64) (float64, float64) {
	lo, err := stats.Min(xs)
	if err != nil {
		return 0, 0
	}
	hi, err := stats.Max(xs)
	if err != nil {
		return 0, 0
	}
	return lo, hi
}

// binIndex maps x into one of n equal-width bins over [lo, hi]; the max lands in the last bin
func binIndex(x, lo, hi float64, n int) int {
	step := (hi - lo) / float64(n)
	if step <= 0 {
		return 0
	}
	idx := int(math.Floor((x - lo) / step))
	if idx >= n {
		idx = n - 1
	}
	if idx < 0 {
		idx = 0
	}
	return idx
}

// binCounts builds the frequency vector of xs over n shared-range bins
func binCounts(xs []float64, lo, hi float64, n int) []float64 {
	counts := make([]float64, n)
	for _, x := range xs {
		counts[binIndex(x, lo, hi, n)]++
	}
	return counts
}

// entropyBits is the Shannon entropy, in bits, of a frequency vector.
// Zero slots are ignored; an empty vector has zero entropy.
func entropyBits(freq []float64) float64 {
	p := make([]float64, 0, len(freq))
	for _, f := range freq {
		if f > 0 {
			p = append(p, f)
		}
	}
	if len(p) == 0 {
		return 0
	}
	floats.Scale(1/floats.Sum(p), p)
	return stat.Entropy(p) / math.Ln2
}

// freqRange ranks the distinct values by frequency (stable on first occurrence).
// With full=false only the top size values are kept.
func freqRange(values []dataset.GroupKey, size int, full bool) []dataset.GroupKey {
	counts := make(map[dataset.GroupKey]int)
	var order []dataset.GroupKey
	for _, v := range values {
		if _, ok := counts[v]; !ok {
			order = append(order, v)
		}
		counts[v]++
	}
	sort.SliceStable(order, func(a, b int) bool {
		return counts[order[a]] > counts[order[b]]
	})
	if !full && len(order) > size {
		order = order[:size]
	}
	return order
}

// shareFreq counts values over a shared frequency range. Values outside the
// range fall into the last slot, the residual bucket of the long tail.
func shareFreq(values []dataset.GroupKey, rng []dataset.GroupKey) []float64 {
	fl := make([]float64, len(rng))
	if len(rng) == 0 {
		return fl
	}
	pos := make(map[dataset.GroupKey]int, len(rng))
	for i, v := range rng {
		pos[v] = i
	}
	for _, v := range values {
		if i, ok := pos[v]; ok {
			fl[i]++
		} else {
			fl[len(fl)-1]++
		}
	}
	return fl
}

// keyGroups groups indices by key, preserving first-seen order, then orders the
// groups by size descending (stable)
func keyGroups(keys []dataset.GroupKey) [][]int {
	pos := make(map[dataset.GroupKey]int)
	var groups [][]int
	for i, k := range keys {
		g, ok := pos[k]
		if !ok {
			g = len(groups)
			pos[k] = g
			groups = append(groups, nil)
		}
		groups[g] = append(groups[g], i)
	}
	sort.SliceStable(groups, func(a, b int) bool {
		return len(groups[a]) > len(groups[b])
	})
	return groups
}

func addVec(dst, inc []float64) {
	n := len(dst)
	if len(inc) < n {
		n = len(inc)
	}
	floats.Add(dst[:n], inc[:n])
}

// clamp keeps a score inside [0, 1] and maps NaN/Inf to 0
func clamp(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
