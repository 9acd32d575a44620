package explainer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"insightflow/domain/dataset"
)

func TestNormalizeByMeasures(t *testing.T) {
	rows := []dataset.Row{{"v": 1.0}, {"v": -3.0}}
	out := normalizeByMeasures(rows, []string{"v"})
	assert.InDelta(t, 0.25, out[0]["v"], 1e-9)
	assert.InDelta(t, -0.75, out[1]["v"], 1e-9)
	assert.Equal(t, 1.0, rows[0]["v"], "input rows are not mutated")

	zero := normalizeByMeasures([]dataset.Row{{"v": 0.0}}, []string{"v"})
	assert.Equal(t, 0.0, zero[0]["v"])
}

func TestNormalizeWithParent_SyncScale(t *testing.T) {
	sub := []dataset.Row{{"v": 2.0}}
	parent := []dataset.Row{{"v": 2.0}, {"v": 6.0}}

	normSub, normParent := normalizeWithParent(sub, parent, []string{"v"}, false)
	assert.InDelta(t, 1.0, normSub[0]["v"], 1e-9)
	assert.InDelta(t, 0.75, normParent[1]["v"], 1e-9)

	normSub, _ = normalizeWithParent(sub, parent, []string{"v"}, true)
	assert.InDelta(t, 0.25, normSub[0]["v"], 1e-9)
}

func TestCompareDistribution(t *testing.T) {
	dims := []string{"d"}
	measures := []string{"v"}
	a := []dataset.Row{{"d": "x", "v": 0.5}, {"d": "y", "v": 0.5}}

	assert.InDelta(t, 1.0, compareDistribution(a, a, dims, measures), 1e-9)

	b := []dataset.Row{{"d": "x", "v": 0.25}, {"d": "y", "v": 0.75}}
	assert.InDelta(t, 2.0, compareDistribution(a, b, dims, measures), 1e-9)

	unmatched := []dataset.Row{{"d": "z", "v": 0.9}}
	assert.InDelta(t, 0.9, compareDistribution(unmatched, nil, dims, measures), 1e-9)

	zeroSide := []dataset.Row{{"d": "x", "v": 0.0}}
	assert.InDelta(t, 0.5, compareDistribution(zeroSide, a[:1], dims, measures), 1e-9)
}

func TestDistributionDifference(t *testing.T) {
	assert.InDelta(t, 2.0, distributionDifference([]float64{0.5, 0.5}, []float64{0.5, 0.5}), 1e-9)
	assert.InDelta(t, 2.0, distributionDifference([]float64{0.2, 0}, []float64{0.1, 0.4}), 1e-9)
	assert.Equal(t, 0.0, distributionDifference(nil, nil))
}
