package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"insightflow/adapters/stats/relation"
	"insightflow/domain/core"
	"insightflow/domain/dataset"
	"insightflow/domain/insight"
	"insightflow/internal/testkit"
)

// fixture: F1->F2 is the unique strongest edge, F1->F3 second, F1->F4 weak
func fixtureGraph(t *testing.T) *relation.Graph {
	t.Helper()
	fields := []dataset.Field{
		{ID: "F1", SemanticType: dataset.Nominal, AnalyticType: dataset.Dimension},
		{ID: "F2", SemanticType: dataset.Nominal, AnalyticType: dataset.Dimension},
		{ID: "F3", SemanticType: dataset.Quantitative, AnalyticType: dataset.Measure},
		{ID: "F4", SemanticType: dataset.Quantitative, AnalyticType: dataset.Measure},
	}
	g, err := relation.FromMatrix(fields, [][]float64{
		{1, 0.9, 0.5, 0.2},
		{0.1, 1, 0, 0},
		{0.3, 0, 1, 0},
		{0, 0, 0, 1},
	})
	require.NoError(t, err)
	return g
}

func locked(fields ...string) insight.View {
	return insight.View{Fields: fields, Locked: true}
}

func open(fields ...string) insight.View {
	return insight.View{Fields: fields}
}

func TestRecommend_UniqueMaxEdgeFillsSlot(t *testing.T) {
	r := New(fixtureGraph(t), DefaultOptions())
	res, err := r.Recommend([]insight.View{locked("F1"), open(insight.Wildcard)})
	require.NoError(t, err)

	require.Len(t, res.Views, 2)
	assert.Equal(t, []string{"F1"}, res.Views[0].Fields)
	assert.True(t, res.Views[0].Locked)
	assert.Equal(t, []string{"F2"}, res.Views[1].Fields)
	require.Len(t, res.Edges, 1)
	assert.Equal(t, Edge{From: "F1", To: "F2", Score: 0.9}, res.Edges[0])
}

func TestRecommend_EdgesAreNotReused(t *testing.T) {
	r := New(fixtureGraph(t), DefaultOptions())
	res, err := r.Recommend([]insight.View{locked("F1"), open(insight.Wildcard), open(insight.Wildcard)})
	require.NoError(t, err)
	assert.Equal(t, []string{"F2"}, res.Views[1].Fields)
	assert.Equal(t, []string{"F3"}, res.Views[2].Fields)
}

func TestRecommend_LockedViewUnchanged(t *testing.T) {
	r := New(fixtureGraph(t), DefaultOptions())
	res, err := r.Recommend([]insight.View{locked("F1", insight.Wildcard)})
	require.NoError(t, err)
	assert.Equal(t, []string{"F1"}, res.Views[0].Fields)
	assert.Empty(t, res.Edges)
}

func TestRecommend_MixedViewPrefersLockedPartners(t *testing.T) {
	r := New(fixtureGraph(t), DefaultOptions())
	res, err := r.Recommend([]insight.View{locked("F3"), open("F1", insight.Wildcard)})
	require.NoError(t, err)
	// F3 is already in use elsewhere, so it wins over the stronger F2
	assert.Equal(t, []string{"F1", "F3"}, res.Views[1].Fields)
}

func TestRecommend_CoOccurringPairsAreUsed(t *testing.T) {
	r := New(fixtureGraph(t), DefaultOptions())
	res, err := r.Recommend([]insight.View{locked("F1", "F3"), open("F1", insight.Wildcard)})
	require.NoError(t, err)
	assert.Equal(t, []string{"F1", "F2"}, res.Views[1].Fields)
}

func TestRecommend_WeakEdgesLeaveSlotsEmpty(t *testing.T) {
	fields := []dataset.Field{
		{ID: "a", SemanticType: dataset.Nominal, AnalyticType: dataset.Dimension},
		{ID: "b", SemanticType: dataset.Nominal, AnalyticType: dataset.Dimension},
	}
	g, err := relation.FromMatrix(fields, [][]float64{{1, 0.01}, {0.005, 1}})
	require.NoError(t, err)

	res, err := New(g, DefaultOptions()).Recommend([]insight.View{locked("a"), open(insight.Wildcard, insight.Wildcard)})
	require.NoError(t, err)
	assert.Empty(t, res.Views[1].Fields)
	assert.Empty(t, res.Edges)
}

func TestRecommend_DedupesFields(t *testing.T) {
	r := New(fixtureGraph(t), DefaultOptions())
	res, err := r.Recommend([]insight.View{open("F1", "F1", insight.Wildcard)})
	require.NoError(t, err)
	assert.Equal(t, []string{"F1", "F2"}, res.Views[0].Fields)
}

func TestRecommend_UnknownField(t *testing.T) {
	r := New(fixtureGraph(t), DefaultOptions())
	_, err := r.Recommend([]insight.View{open("nope", insight.Wildcard)})
	assert.True(t, core.IsConfigurationError(err))
}

func TestRecommend_RetailGraph(t *testing.T) {
	ds, err := testkit.Retail()
	require.NoError(t, err)
	g := relation.Build(ds, relation.DefaultOptions())

	res, err := New(g, DefaultOptions()).Recommend([]insight.View{locked("sales"), open(insight.Wildcard, insight.Wildcard)})
	require.NoError(t, err)
	assert.LessOrEqual(t, len(res.Views[1].Fields), 2)
	assert.NotContains(t, res.Views[1].Fields, "sales")
	assert.Len(t, res.Edges, len(res.Views[1].Fields))
}
