package cube

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"insightflow/domain/core"
	"insightflow/domain/dataset"
	"insightflow/domain/insight"
	"insightflow/internal/testkit"
)

func salesCube(t *testing.T) *Cube {
	t.Helper()
	rows := []map[string]any{
		{"region": "A", "channel": "web", "sales": 10.0, "units": 1.0},
		{"region": "B", "channel": "web", "sales": 20.0, "units": 2.0},
		{"region": "A", "channel": "store", "sales": 30.0, "units": 3.0},
		{"region": "C", "channel": "store", "sales": "n/a", "units": 4.0},
		{"region": "B", "channel": "store", "sales": 40.0, "units": 5.0},
	}
	ds, err := dataset.New(rows, []dataset.Field{
		{ID: "region", SemanticType: dataset.Nominal, AnalyticType: dataset.Dimension},
		{ID: "channel", SemanticType: dataset.Nominal, AnalyticType: dataset.Dimension},
		{ID: "sales", SemanticType: dataset.Quantitative, AnalyticType: dataset.Measure},
		{ID: "units", SemanticType: dataset.Quantitative, AnalyticType: dataset.Measure},
	})
	require.NoError(t, err)
	return New(ds)
}

func TestGrandTotal(t *testing.T) {
	c := salesCube(t)
	cb, err := c.GetCuboid(nil)
	require.NoError(t, err)

	for _, agg := range insight.DefaultAggregators {
		rows, err := cb.AggregatedRows([]insight.Measure{{FieldID: "units", Aggregator: agg}})
		require.NoError(t, err)
		assert.Len(t, rows, 1, "aggregator %s", agg)
	}
	rows, err := cb.AggregatedRows([]insight.Measure{{FieldID: "units", Aggregator: insight.Sum}})
	require.NoError(t, err)
	assert.Equal(t, 15.0, rows[0]["units"])
}

func TestGrandTotal_EmptyDataset(t *testing.T) {
	ds, err := dataset.New(nil, []dataset.Field{
		{ID: "sales", SemanticType: dataset.Quantitative, AnalyticType: dataset.Measure},
	})
	require.NoError(t, err)
	cb, err := New(ds).GetCuboid([]string{})
	require.NoError(t, err)

	rows, err := cb.AggregatedRows([]insight.Measure{{FieldID: "sales", Aggregator: insight.Mean}})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 0.0, rows[0]["sales"])
}

func TestGroupsInFirstSeenOrder(t *testing.T) {
	c := salesCube(t)
	cb, err := c.GetCuboid([]string{"region"})
	require.NoError(t, err)
	rows, err := cb.AggregatedRows([]insight.Measure{
		{FieldID: "sales", Aggregator: insight.Sum},
		{FieldID: "units", Aggregator: insight.Count},
	})
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, dataset.Row{"region": "A", "sales": 40.0, "units": 2.0}, rows[0])
	assert.Equal(t, dataset.Row{"region": "B", "sales": 60.0, "units": 2.0}, rows[1])
	// non-numeric cells are skipped, count still sees the row
	assert.Equal(t, dataset.Row{"region": "C", "sales": 0.0, "units": 1.0}, rows[2])
}

func TestAggregators(t *testing.T) {
	c := salesCube(t)
	cb, err := c.GetCuboid([]string{"channel"})
	require.NoError(t, err)

	tests := []struct {
		agg  insight.Aggregator
		want []float64
	}{
		{insight.Sum, []float64{3, 12}},
		{insight.Mean, []float64{1.5, 4}},
		{insight.Min, []float64{1, 3}},
		{insight.Max, []float64{2, 5}},
		{insight.Count, []float64{2, 3}},
	}
	for _, tt := range tests {
		t.Run(string(tt.agg), func(t *testing.T) {
			rows, err := cb.AggregatedRows([]insight.Measure{{FieldID: "units", Aggregator: tt.agg}})
			require.NoError(t, err)
			require.Len(t, rows, 2)
			assert.Equal(t, tt.want[0], rows[0]["units"])
			assert.Equal(t, tt.want[1], rows[1]["units"])
		})
	}
}

func TestSumIsAdditive(t *testing.T) {
	ds, err := testkit.Retail()
	require.NoError(t, err)
	c := New(ds)
	m := []insight.Measure{{FieldID: "sales", Aggregator: insight.Sum}}

	total, err := c.GetCuboid(nil)
	require.NoError(t, err)
	totalRows, err := total.AggregatedRows(m)
	require.NoError(t, err)

	for _, dims := range [][]string{{"region"}, {"region", "channel"}, {"month", "category"}} {
		cb, err := c.GetCuboid(dims)
		require.NoError(t, err)
		rows, err := cb.AggregatedRows(m)
		require.NoError(t, err)
		sum := 0.0
		for _, r := range rows {
			sum += r["sales"].(float64)
		}
		assert.InDelta(t, totalRows[0]["sales"].(float64), sum, 1e-6, "dims %v", dims)
	}
}

func TestCuboidIsCachedByDimensionSet(t *testing.T) {
	c := salesCube(t)
	a, err := c.GetCuboid([]string{"region", "channel"})
	require.NoError(t, err)
	b, err := c.GetCuboid([]string{"channel", "region", "channel"})
	require.NoError(t, err)

	assert.Same(t, a, b)
	assert.Equal(t, []string{"region", "channel"}, b.Dimensions())
	assert.Equal(t, 1, c.Len())
}

func TestColumnsAreCached(t *testing.T) {
	c := salesCube(t)
	cb, err := c.GetCuboid([]string{"region"})
	require.NoError(t, err)
	m := insight.Measure{FieldID: "units", Aggregator: insight.Max}

	assert.False(t, cb.Cached(m))
	first, err := cb.AggregatedRows([]insight.Measure{m})
	require.NoError(t, err)
	assert.True(t, cb.Cached(m))

	second, err := cb.AggregatedRows([]insight.Measure{m, {FieldID: "sales", Aggregator: insight.Sum}})
	require.NoError(t, err)
	for i := range first {
		assert.Equal(t, first[i]["units"], second[i]["units"])
	}
}

func TestConfigurationErrors(t *testing.T) {
	c := salesCube(t)
	_, err := c.GetCuboid([]string{"nope"})
	assert.ErrorIs(t, err, core.ErrFieldNotFound)

	cb, err := c.GetCuboid([]string{"channel"})
	require.NoError(t, err)

	tests := []struct {
		name     string
		measures []insight.Measure
		want     error
	}{
		{"unknown field", []insight.Measure{{FieldID: "x", Aggregator: insight.Sum}}, core.ErrFieldNotFound},
		{"unknown aggregator", []insight.Measure{{FieldID: "sales", Aggregator: "median"}}, core.ErrUnknownAggregator},
		{"numeric op on a category", []insight.Measure{{FieldID: "region", Aggregator: insight.Sum}}, core.ErrNotNumeric},
		{"one field two ops", []insight.Measure{
			{FieldID: "sales", Aggregator: insight.Sum},
			{FieldID: "sales", Aggregator: insight.Mean},
		}, core.ErrDuplicateMeasure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := cb.AggregatedRows(tt.measures)
			assert.ErrorIs(t, err, tt.want)
			assert.True(t, core.IsConfigurationError(err))
		})
	}
}

func TestCountOnCategory(t *testing.T) {
	c := salesCube(t)
	cb, err := c.GetCuboid([]string{"channel"})
	require.NoError(t, err)
	rows, err := cb.AggregatedRows([]insight.Measure{{FieldID: "region", Aggregator: insight.Count}})
	require.NoError(t, err)
	assert.Equal(t, 2.0, rows[0]["region"])
}

func TestMeasureOnGroupingDimension(t *testing.T) {
	c := salesCube(t)
	cb, err := c.GetCuboid([]string{"region", "channel"})
	require.NoError(t, err)

	_, err = cb.AggregatedRows([]insight.Measure{{FieldID: "region", Aggregator: insight.Count}})
	assert.ErrorIs(t, err, core.ErrMeasureIsGrouping)
	assert.True(t, core.IsConfigurationError(err))

	// the rejected request leaves the group values intact
	rows, err := cb.AggregatedRows([]insight.Measure{{FieldID: "units", Aggregator: insight.Count}})
	require.NoError(t, err)
	assert.Equal(t, dataset.Row{"region": "A", "channel": "web", "units": 1.0}, rows[0])
}

func TestAggregatedRowsIsDeterministic(t *testing.T) {
	ds, err := testkit.Retail()
	require.NoError(t, err)
	dims := []string{"region", "channel"}
	measures := []insight.Measure{
		{FieldID: "sales", Aggregator: insight.Sum},
		{FieldID: "quantity", Aggregator: insight.Mean},
		{FieldID: "discount", Aggregator: insight.Max},
		{FieldID: "customer_id", Aggregator: insight.Count},
	}

	cb, err := New(ds).GetCuboid(dims)
	require.NoError(t, err)
	first, err := cb.AggregatedRows(measures)
	require.NoError(t, err)
	require.NotEmpty(t, first)

	again, err := cb.AggregatedRows(measures)
	require.NoError(t, err)
	assert.Equal(t, first, again)

	fresh, err := New(ds).GetCuboid(dims)
	require.NoError(t, err)
	other, err := fresh.AggregatedRows(measures)
	require.NoError(t, err)
	assert.Equal(t, first, other)
}
