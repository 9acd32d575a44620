// Package engine binds one dataset snapshot to its relation graph, cube,
// explainer and recommender. An Engine is built once and queried many times;
// it is not safe for concurrent queries because the cube cache grows lazily.
package engine

import (
	"log"
	"time"

	"insightflow/adapters/stats/relation"
	"insightflow/domain/core"
	"insightflow/domain/dataset"
	"insightflow/domain/insight"
	"insightflow/internal/config"
	"insightflow/internal/cube"
	"insightflow/internal/errors"
	"insightflow/internal/explainer"
	"insightflow/internal/recommend"
)

// Engine is the per-snapshot analysis object
type Engine struct {
	ID        core.EngineID
	BuildTime time.Duration

	cfg         config.EngineConfig
	dataset     *dataset.Dataset
	graph       *relation.Graph
	cube        *cube.Cube
	explainer   *explainer.Explainer
	recommender *recommend.Recommender
}

// ExplainRequest describes a selection to explain. A nil Threshold or a zero
// Neighbors falls back to the engine configuration.
type ExplainRequest struct {
	Predicates []insight.Predicate `json:"predicates"`
	Dimensions []string            `json:"dimensions"`
	Measures   []insight.Measure   `json:"measures"`
	Threshold  *float64            `json:"threshold,omitempty"`
	Neighbors  int                 `json:"neighbors,omitempty"`
	SyncScale  bool                `json:"syncScale,omitempty"`
}

// ExplainResult pairs the ranked insights with the per-neighbor value flags
type ExplainResult struct {
	Insights    []insight.InsightSpace       `json:"insights"`
	Conditional []explainer.ConditionalValue `json:"conditional"`
}

// Relations is the association matrix with its field order
type Relations struct {
	Fields []dataset.Field `json:"fields"`
	Matrix [][]float64     `json:"matrix"`
}

// New builds the relation graph and an empty cube for the dataset
func New(ds *dataset.Dataset, cfg config.EngineConfig) (*Engine, error) {
	start := time.Now()
	if ds == nil {
		return nil, errors.InvalidInput("dataset is required")
	}
	if ds.Len() == 0 {
		log.Printf("[Engine] dataset %s has no rows, all scores will be neutral", ds.ID)
	}

	graph := relation.Build(ds, relation.Options{
		BinSize:   cfg.BinSize,
		RangeSize: cfg.FreqRange,
		NoiseMode: relation.NoiseMode(cfg.NoiseMode),
	})
	c := cube.New(ds)
	e := &Engine{
		ID:          core.EngineID(core.NewID()),
		cfg:         cfg,
		dataset:     ds,
		graph:       graph,
		cube:        c,
		explainer:   explainer.New(explainer.NewSpace(ds.Catalog, c, graph)),
		recommender: recommend.New(graph, recommend.Options{EdgeThreshold: cfg.EdgeThreshold}),
	}
	e.BuildTime = time.Since(start)
	log.Printf("[Engine] built %s over %d rows x %d fields in %.2fms",
		e.ID, ds.Len(), ds.Catalog.Len(), float64(e.BuildTime.Nanoseconds())/1e6)
	return e, nil
}

// Dataset returns the snapshot the engine was built from
func (e *Engine) Dataset() *dataset.Dataset {
	return e.dataset
}

// Explain ranks insights for the selection and attaches the conditional value flags
func (e *Engine) Explain(req ExplainRequest) (*ExplainResult, error) {
	opts := explainer.Options{
		Threshold: e.cfg.Threshold,
		Neighbors: e.cfg.Neighbors,
		SyncScale: req.SyncScale,
	}
	if req.Threshold != nil {
		opts.Threshold = *req.Threshold
	}
	if req.Neighbors > 0 {
		opts.Neighbors = req.Neighbors
	}
	insights, err := e.explainer.Explain(req.Predicates, req.Dimensions, req.Measures, opts)
	if err != nil {
		return nil, errors.Wrap(err, "explain failed")
	}
	conditional, err := e.explainer.ExplainConditionalValue(req.Predicates, req.Dimensions, req.Measures, explainer.DefaultConditionalNeighbors)
	if err != nil {
		return nil, errors.Wrap(err, "conditional value failed")
	}
	if insights == nil {
		insights = []insight.InsightSpace{}
	}
	return &ExplainResult{Insights: insights, Conditional: conditional}, nil
}

// ConditionalValue returns value flags for the top-k dimension neighbors
func (e *Engine) ConditionalValue(predicates []insight.Predicate, dimensions []string, measures []insight.Measure, k int) ([]explainer.ConditionalValue, error) {
	out, err := e.explainer.ExplainConditionalValue(predicates, dimensions, measures, k)
	if err != nil {
		return nil, errors.Wrap(err, "conditional value failed")
	}
	return out, nil
}

// Recommend fills the wildcard slots of the views
func (e *Engine) Recommend(views []insight.View) (*recommend.Result, error) {
	res, err := e.recommender.Recommend(views)
	if err != nil {
		return nil, errors.Wrap(err, "recommend failed")
	}
	return &res, nil
}

// Relations returns a copy of the association matrix
func (e *Engine) Relations() Relations {
	return Relations{Fields: e.graph.Fields(), Matrix: e.graph.Matrix()}
}

// Neighbors runs a KNN query. A negative threshold falls back to 0.
func (e *Engine) Neighbors(kind dataset.AnalyticType, seeds []string, k int, threshold float64) ([]string, error) {
	if k <= 0 {
		k = e.cfg.Neighbors
	}
	out, err := e.graph.KNN(kind, seeds, k, max(threshold, 0))
	if err != nil {
		return nil, errors.Wrap(err, "neighbors failed")
	}
	return out, nil
}

// CachedCuboids reports how many cuboids the engine has materialized
func (e *Engine) CachedCuboids() int {
	return e.cube.Len()
}
