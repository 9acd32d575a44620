package relation

import (
	"math"

	"insightflow/domain/dataset"
)

// estimator holds the binning constants shared by every pairwise score
type estimator struct {
	binSize   int
	rangeSize int
	pure      bool
}

// mic scores how much binning x reduces the entropy of y's binned distribution.
// Both series are paired and numeric.
func (e estimator) mic(x, y []float64) float64 {
	if len(x) < 2 || len(x) != len(y) {
		return 0
	}
	xlo, xhi := bounds(x)
	ylo, yhi := bounds(y)
	h := entropyBits(binCounts(y, ylo, yhi, e.binSize))
	groups := make([][]float64, e.binSize)
	for i, xv := range x {
		b := binIndex(xv, xlo, xhi, e.binSize)
		groups[b] = append(groups[b], y[i])
	}
	n := float64(len(y))
	condH := 0.0
	for _, g := range groups {
		if len(g) == 0 {
			continue
		}
		condH += float64(len(g)) / n * entropyBits(binCounts(g, ylo, yhi, e.binSize))
	}
	return clamp((h - condH) / math.Log2(float64(e.binSize)))
}

// symmetricMIC takes the stronger of both directions
func (e estimator) symmetricMIC(x, y []float64) float64 {
	return math.Max(e.mic(x, y), e.mic(y, x))
}

// generalMic scores a categorical source against a numeric target. Categories
// beyond the binSize-1 most frequent are folded into one noise group unless
// pure is set (used for temporal sources, whose buckets are all kept).
func (e estimator) generalMic(cats []dataset.GroupKey, x []float64, pure bool) float64 {
	if len(x) == 0 || len(cats) != len(x) {
		return 0
	}
	groups := keyGroups(cats)
	if len(groups) <= 1 {
		return 0
	}
	lo, hi := bounds(x)
	h := entropyBits(binCounts(x, lo, hi, e.binSize))
	n := float64(len(x))

	condH := 0.0
	noise := make([]float64, e.binSize)
	noiseSize := 0
	for gi, g := range groups {
		vals := make([]float64, len(g))
		for i, idx := range g {
			vals[i] = x[idx]
		}
		bins := binCounts(vals, lo, hi, e.binSize)
		if pure || gi < e.binSize-1 {
			condH += float64(len(g)) / n * entropyBits(bins)
			continue
		}
		noiseSize += len(g)
		addVec(noise, bins)
	}
	if noiseSize > 0 {
		condH += float64(noiseSize) / n * entropyBits(noise)
	}
	return clamp((h - condH) / math.Log2(float64(len(groups))))
}

// inverseGeneralMic scores a numeric source against a categorical target.
// The target is reduced to its frequency range; full keeps every value
// (temporal targets, whose buckets are ordered categories).
func (e estimator) inverseGeneralMic(x []float64, ys []dataset.GroupKey, full bool) float64 {
	if len(x) == 0 || len(ys) != len(x) {
		return 0
	}
	rng := freqRange(ys, e.rangeSize, full)
	if len(rng) <= 1 {
		return 0
	}
	lo, hi := bounds(x)
	groups := make([][]dataset.GroupKey, e.binSize)
	for i, xv := range x {
		b := binIndex(xv, lo, hi, e.binSize)
		groups[b] = append(groups[b], ys[i])
	}
	n := float64(len(ys))
	condH := 0.0
	global := make([]float64, len(rng))
	for _, g := range groups {
		if len(g) == 0 {
			continue
		}
		sub := shareFreq(g, rng)
		condH += float64(len(g)) / n * entropyBits(sub)
		addVec(global, sub)
	}
	return clamp((entropyBits(global) - condH) / math.Log2(math.Min(float64(e.binSize), float64(len(rng)))))
}

// nnMic is the binned-entropy estimator for categorical pairs. Target values
// share a global frequency range of the top rangeSize values (all values when
// full); source groups beyond the rangeSize-1 largest are folded into a noise
// bucket unless the estimator runs in pure mode.
func (e estimator) nnMic(xs, ys []dataset.GroupKey, full bool) float64 {
	if len(ys) == 0 || len(xs) != len(ys) {
		return 0
	}
	rng := freqRange(ys, e.rangeSize, full)
	if len(rng) <= 1 {
		return 0
	}
	groups := keyGroups(xs)
	used := len(groups)
	if !e.pure && used > e.rangeSize-1 {
		used = e.rangeSize - 1
	}
	n := float64(len(ys))
	condH := 0.0
	global := make([]float64, len(rng))
	pick := func(g []int) []dataset.GroupKey {
		vals := make([]dataset.GroupKey, len(g))
		for i, idx := range g {
			vals[i] = ys[idx]
		}
		return vals
	}
	for _, g := range groups[:used] {
		sub := shareFreq(pick(g), rng)
		condH += float64(len(g)) / n * entropyBits(sub)
		addVec(global, sub)
	}
	if len(groups) > used {
		noise := make([]float64, len(rng))
		noiseSize := 0
		for _, g := range groups[used:] {
			addVec(noise, shareFreq(pick(g), rng))
			noiseSize += len(g)
		}
		condH += float64(noiseSize) / n * entropyBits(noise)
		addVec(global, noise)
	}
	return clamp((entropyBits(global) - condH) / math.Log2(math.Min(float64(e.rangeSize), float64(len(rng)))))
}
