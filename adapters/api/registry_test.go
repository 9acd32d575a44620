package api

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"insightflow/domain/core"
	"insightflow/domain/dataset"
	"insightflow/domain/insight"
	"insightflow/internal/config"
	"insightflow/internal/engine"
	"insightflow/internal/errors"
	"insightflow/internal/testkit"
)

func TestRegistry_Lifecycle(t *testing.T) {
	ds, err := testkit.Retail()
	require.NoError(t, err)
	r := NewRegistry(config.Default().Engine, 1)
	ctx := context.Background()

	id, err := r.Create(ctx, ds)
	require.NoError(t, err)
	assert.False(t, core.ID(id).IsEmpty())

	res, err := r.Explain(ctx, id, engine.ExplainRequest{
		Dimensions: []string{"region"},
		Measures:   []insight.Measure{{FieldID: "sales", Aggregator: insight.Sum}},
	})
	require.NoError(t, err)
	assert.NotNil(t, res)

	ids, err := r.Neighbors(ctx, id, dataset.Dimension, []string{"region"}, 2, 0)
	require.NoError(t, err)
	assert.Len(t, ids, 2)

	rel, err := r.Relations(ctx, id)
	require.NoError(t, err)
	assert.Len(t, rel.Fields, ds.Catalog.Len())

	require.NoError(t, r.Delete(ctx, id))
	_, err = r.Relations(ctx, id)
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(r.Delete(ctx, id)))
}

func TestRegistry_CancelledBuild(t *testing.T) {
	ds, err := testkit.RegionSales(9)
	require.NoError(t, err)
	r := NewRegistry(config.Default().Engine, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = r.Create(ctx, ds)
	assert.Error(t, err)
}

func TestRegistry_ConcurrentQueries(t *testing.T) {
	ds, err := testkit.Retail()
	require.NoError(t, err)
	r := NewRegistry(config.Default().Engine, 2)
	id, err := r.Create(context.Background(), ds)
	require.NoError(t, err)

	done := make(chan error, 4)
	for i := 0; i < 4; i++ {
		go func() {
			_, err := r.Explain(context.Background(), id, engine.ExplainRequest{
				Dimensions: []string{"channel"},
				Measures:   []insight.Measure{{FieldID: "quantity", Aggregator: insight.Mean}},
			})
			done <- err
		}()
	}
	for i := 0; i < 4; i++ {
		assert.NoError(t, <-done)
	}
}
