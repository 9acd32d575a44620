package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"insightflow/domain/dataset"
	"insightflow/domain/insight"
	"insightflow/internal/config"
	"insightflow/internal/errors"
	"insightflow/internal/testkit"
)

func newRetailEngine(t *testing.T) *Engine {
	t.Helper()
	ds, err := testkit.Retail()
	require.NoError(t, err)
	e, err := New(ds, config.Default().Engine)
	require.NoError(t, err)
	return e
}

func TestEngine_Explain(t *testing.T) {
	e := newRetailEngine(t)
	zero := 0.0
	res, err := e.Explain(ExplainRequest{
		Predicates: []insight.Predicate{insight.NewDiscrete("region", "north")},
		Dimensions: []string{"region"},
		Measures:   []insight.Measure{{FieldID: "sales", Aggregator: insight.Sum}},
		Threshold:  &zero,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Insights)
	assert.Len(t, res.Conditional, 4)
	assert.Greater(t, e.CachedCuboids(), 1)
}

func TestEngine_ExplainUnknownField(t *testing.T) {
	e := newRetailEngine(t)
	_, err := e.Explain(ExplainRequest{
		Dimensions: []string{"nope"},
		Measures:   []insight.Measure{{FieldID: "sales", Aggregator: insight.Sum}},
	})
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfiguration, errors.GetCode(err))
}

func TestEngine_Relations(t *testing.T) {
	e := newRetailEngine(t)
	rel := e.Relations()
	require.Len(t, rel.Matrix, len(rel.Fields))
	for i := range rel.Matrix {
		assert.Equal(t, 1.0, rel.Matrix[i][i])
	}
	rel.Matrix[0][1] = 42
	assert.NotEqual(t, 42.0, e.Relations().Matrix[0][1], "relations are a copy")
}

func TestEngine_Neighbors(t *testing.T) {
	e := newRetailEngine(t)
	ids, err := e.Neighbors(dataset.Measure, []string{"sales"}, 0, 0)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"quantity", "discount"}, ids)

	_, err = e.Neighbors(dataset.Dimension, []string{"nope"}, 3, 0)
	assert.Equal(t, errors.CodeConfiguration, errors.GetCode(err))
}

func TestEngine_Recommend(t *testing.T) {
	e := newRetailEngine(t)
	res, err := e.Recommend([]insight.View{
		{Fields: []string{"sales"}, Locked: true},
		{Fields: []string{insight.Wildcard}},
	})
	require.NoError(t, err)
	require.Len(t, res.Views, 2)
	assert.Equal(t, []string{"sales"}, res.Views[0].Fields)
}

func TestEngine_EmptyDataset(t *testing.T) {
	ds, err := dataset.New(nil, testkit.RetailFields())
	require.NoError(t, err)
	e, err := New(ds, config.Default().Engine)
	require.NoError(t, err)

	res, err := e.Explain(ExplainRequest{Measures: []insight.Measure{{FieldID: "sales", Aggregator: insight.Sum}}})
	require.NoError(t, err)
	for _, s := range res.Insights {
		assert.GreaterOrEqual(t, s.Score, config.Default().Engine.Threshold)
	}
}
