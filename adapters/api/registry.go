package api

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"

	"insightflow/domain/core"
	"insightflow/domain/dataset"
	"insightflow/domain/insight"
	"insightflow/internal/config"
	"insightflow/internal/engine"
	"insightflow/internal/errors"
	"insightflow/internal/recommend"
)

// hosted guards one engine; the cube cache is the only mutable state
type hosted struct {
	mu     sync.Mutex
	engine *engine.Engine
}

// Registry keeps engines in memory by id and implements ports.Analyzer.
// Builds are admitted through a weighted semaphore; queries on the same engine
// are serialized.
type Registry struct {
	cfg    config.EngineConfig
	builds *semaphore.Weighted

	mu      sync.RWMutex
	engines map[core.EngineID]*hosted
}

// NewRegistry creates a registry admitting at most maxBuilds concurrent builds
func NewRegistry(cfg config.EngineConfig, maxBuilds int) *Registry {
	return &Registry{
		cfg:     cfg,
		builds:  semaphore.NewWeighted(int64(max(maxBuilds, 1))),
		engines: make(map[core.EngineID]*hosted),
	}
}

// Create builds an engine for the dataset. Cancellation is honoured only while
// waiting for a build slot.
func (r *Registry) Create(ctx context.Context, ds *dataset.Dataset) (core.EngineID, error) {
	if err := ctx.Err(); err != nil {
		engineBuilds.WithLabelValues("rejected").Inc()
		return "", errors.Wrap(err, "build cancelled")
	}
	if err := r.builds.Acquire(ctx, 1); err != nil {
		engineBuilds.WithLabelValues("rejected").Inc()
		logger.Warn("build for dataset %s abandoned while waiting for a slot", ds.ID)
		return "", errors.Wrap(err, "waiting for a build slot")
	}
	defer r.builds.Release(1)

	e, err := engine.New(ds, r.cfg)
	engineBuilds.WithLabelValues(outcome(err)).Inc()
	if err != nil {
		return "", err
	}
	engineBuildSeconds.Observe(e.BuildTime.Seconds())

	r.mu.Lock()
	r.engines[e.ID] = &hosted{engine: e}
	liveEngines.Set(float64(len(r.engines)))
	r.mu.Unlock()
	logger.Info("engine %s hosted for dataset %s", e.ID, ds.ID)
	return e.ID, nil
}

// Delete drops the engine; in-flight queries finish on their own reference
func (r *Registry) Delete(_ context.Context, id core.EngineID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.engines[id]; !ok {
		return errors.WithCode(errors.CodeNotFound, core.ErrEngineNotFound)
	}
	delete(r.engines, id)
	liveEngines.Set(float64(len(r.engines)))
	logger.Info("engine %s dropped", id)
	return nil
}

// with runs fn while holding the engine's lock
func (r *Registry) with(ctx context.Context, id core.EngineID, fn func(e *engine.Engine) error) error {
	r.mu.RLock()
	h, ok := r.engines[id]
	r.mu.RUnlock()
	if !ok {
		return errors.WithCode(errors.CodeNotFound, core.ErrEngineNotFound)
	}
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, "request cancelled")
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return fn(h.engine)
}

func (r *Registry) Explain(ctx context.Context, id core.EngineID, req engine.ExplainRequest) (*engine.ExplainResult, error) {
	var res *engine.ExplainResult
	err := r.with(ctx, id, func(e *engine.Engine) (err error) {
		res, err = e.Explain(req)
		return err
	})
	return res, err
}

func (r *Registry) Recommend(ctx context.Context, id core.EngineID, views []insight.View) (*recommend.Result, error) {
	var res *recommend.Result
	err := r.with(ctx, id, func(e *engine.Engine) (err error) {
		res, err = e.Recommend(views)
		return err
	})
	return res, err
}

func (r *Registry) Relations(ctx context.Context, id core.EngineID) (*engine.Relations, error) {
	var res engine.Relations
	err := r.with(ctx, id, func(e *engine.Engine) error {
		res = e.Relations()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *Registry) Neighbors(ctx context.Context, id core.EngineID, kind dataset.AnalyticType, seeds []string, k int, threshold float64) ([]string, error) {
	var res []string
	err := r.with(ctx, id, func(e *engine.Engine) (err error) {
		res, err = e.Neighbors(kind, seeds, k, threshold)
		return err
	})
	return res, err
}
