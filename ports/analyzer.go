package ports

import (
	"context"

	"insightflow/domain/core"
	"insightflow/domain/dataset"
	"insightflow/domain/insight"
	"insightflow/internal/engine"
	"insightflow/internal/recommend"
)

// Analyzer hosts engines by id. Implementations serialize queries per engine.
type Analyzer interface {
	Create(ctx context.Context, ds *dataset.Dataset) (core.EngineID, error)
	Delete(ctx context.Context, id core.EngineID) error

	Explain(ctx context.Context, id core.EngineID, req engine.ExplainRequest) (*engine.ExplainResult, error)
	Recommend(ctx context.Context, id core.EngineID, views []insight.View) (*recommend.Result, error)
	Relations(ctx context.Context, id core.EngineID) (*engine.Relations, error)
	Neighbors(ctx context.Context, id core.EngineID, kind dataset.AnalyticType, seeds []string, k int, threshold float64) ([]string, error)
}
