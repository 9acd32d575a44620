// Package explainer ranks subspaces that explain a selected slice of a
// dataset. Four independent strategies score candidates over a Space and the
// results are pooled into one list.
package explainer

import (
	"fmt"
	"sort"

	"insightflow/domain/core"
	"insightflow/domain/dataset"
	"insightflow/domain/insight"
)

const (
	DefaultThreshold = 0.3
	DefaultNeighbors = 10
	// conditional value looks at fewer neighbors than the ranking strategies
	DefaultConditionalNeighbors = 5
)

// Options tunes a single Explain call
type Options struct {
	Threshold float64
	Neighbors int
	SyncScale bool
}

// DefaultOptions returns threshold 0.3 over 10 neighbors with independent scaling
func DefaultOptions() Options {
	return Options{Threshold: DefaultThreshold, Neighbors: DefaultNeighbors}
}

// ConditionalValue is the value explanation of a selection once the cuboid
// is extended by one neighbor dimension
type ConditionalValue struct {
	Dimension string `json:"dimension"`
	Flags     []int  `json:"flags"`
}

// Explainer runs the strategies against one Space
type Explainer struct {
	space Space
}

// New creates an explainer over the given space
func New(space Space) *Explainer {
	return &Explainer{space: space}
}

// Explain pools all strategies and returns the insights with score >= threshold,
// sorted by score descending. Selection strategies need both a dimension and a
// predicate and are skipped otherwise.
func (e *Explainer) Explain(predicates []insight.Predicate, dimensions []string, measures []insight.Measure, opts Options) ([]insight.InsightSpace, error) {
	if err := e.validate(predicates, dimensions, measures); err != nil {
		return nil, err
	}
	k := opts.Neighbors
	if k <= 0 {
		k = DefaultNeighbors
	}

	var pool []insight.InsightSpace
	add := func(t insight.Type, c Candidate, extendDims []string, extendMeasures []insight.Measure) {
		pool = append(pool, insight.InsightSpace{
			ID:               core.InsightID(core.NewID()),
			Dimensions:       dimensions,
			Measures:         measures,
			ExtendDimensions: extendDims,
			ExtendMeasures:   extendMeasures,
			Type:             t,
			Score:            c.Score,
			Predicates:       predicates,
			Description:      c.Description,
		})
	}

	if len(dimensions) > 0 && len(predicates) > 0 {
		bySelection, err := ExplainBySelection(e.space, predicates, dimensions, measures, k, opts.SyncScale)
		if err != nil {
			return nil, err
		}
		for _, c := range bySelection {
			add(insight.SelectionDimDistribution, c, c.Dimensions, []insight.Measure{})
		}
		byMeasures, err := ExplainByCorMeasures(e.space, predicates, dimensions, measures, k)
		if err != nil {
			return nil, err
		}
		for _, c := range byMeasures {
			add(insight.SelectionMeaDistribution, c, []string{}, c.Measures)
		}
	}

	major, outlier, err := ExplainByChildren(e.space, nil, dimensions, measures, k)
	if err != nil {
		return nil, err
	}
	for _, c := range major {
		add(insight.ChildrenMajorFactor, c, c.Dimensions, []insight.Measure{})
	}
	for _, c := range outlier {
		add(insight.ChildrenOutlier, c, c.Dimensions, []insight.Measure{})
	}

	out := pool[:0]
	for _, s := range pool {
		if s.Score >= opts.Threshold {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].Score > out[b].Score })
	return out, nil
}

// ExplainConditionalValue runs the value explanation once per top-k dimension
// neighbor, with that neighbor appended to the current dimensions
func (e *Explainer) ExplainConditionalValue(predicates []insight.Predicate, dimensions []string, measures []insight.Measure, k int) ([]ConditionalValue, error) {
	if err := e.validate(predicates, dimensions, measures); err != nil {
		return nil, err
	}
	if k <= 0 {
		k = DefaultConditionalNeighbors
	}
	knn, err := e.space.KNN(dataset.Dimension, dimensions, k, 0)
	if err != nil {
		return nil, err
	}
	knn = extendable(knn, measures)
	out := make([]ConditionalValue, 0, len(knn))
	for _, d := range knn {
		flags, err := ExplainValue(e.space, predicates, withDim(dimensions, d), measures)
		if err != nil {
			return nil, err
		}
		out = append(out, ConditionalValue{Dimension: d, Flags: flags})
	}
	return out, nil
}

func (e *Explainer) validate(predicates []insight.Predicate, dimensions []string, measures []insight.Measure) error {
	for _, p := range predicates {
		if err := p.Validate(); err != nil {
			return err
		}
		if _, err := e.space.Field(p.FieldID); err != nil {
			return err
		}
	}
	for _, d := range dimensions {
		if _, err := e.space.Field(d); err != nil {
			return err
		}
		if insight.HasMeasure(measures, d) {
			return fmt.Errorf("%w: %s", core.ErrMeasureIsGrouping, d)
		}
	}
	if len(measures) == 0 {
		return fmt.Errorf("%w: at least one measure is required", core.ErrConfiguration)
	}
	return nil
}
