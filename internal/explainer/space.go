package explainer

import (
	"insightflow/adapters/stats/relation"
	"insightflow/domain/dataset"
	"insightflow/domain/insight"
	"insightflow/internal/cube"
)

// Space is the read surface the strategies run against: grouped aggregates
// and field neighborhoods of one dataset snapshot
type Space interface {
	Field(id string) (dataset.Field, error)
	AggregatedRows(dimensions []string, measures []insight.Measure) ([]dataset.Row, error)
	KNN(kind dataset.AnalyticType, seeds []string, k int, threshold float64) ([]string, error)
}

type cubeSpace struct {
	catalog *dataset.Catalog
	cube    *cube.Cube
	graph   *relation.Graph
}

// NewSpace binds a cube and a relation graph built from the same snapshot
func NewSpace(catalog *dataset.Catalog, c *cube.Cube, g *relation.Graph) Space {
	return &cubeSpace{catalog: catalog, cube: c, graph: g}
}

func (s *cubeSpace) Field(id string) (dataset.Field, error) {
	return s.catalog.Get(id)
}

func (s *cubeSpace) AggregatedRows(dimensions []string, measures []insight.Measure) ([]dataset.Row, error) {
	cb, err := s.cube.GetCuboid(dimensions)
	if err != nil {
		return nil, err
	}
	return cb.AggregatedRows(measures)
}

func (s *cubeSpace) KNN(kind dataset.AnalyticType, seeds []string, k int, threshold float64) ([]string, error) {
	return s.graph.KNN(kind, seeds, k, threshold)
}

// Candidate is a scored subspace produced by one strategy before pooling
type Candidate struct {
	Dimensions  []string
	Measures    []insight.Measure
	Score       float64
	Description insight.Description
}

// withDim appends d to dims without aliasing the caller's slice
func withDim(dims []string, d string) []string {
	out := make([]string, 0, len(dims)+1)
	out = append(out, dims...)
	return append(out, d)
}

// extendable drops neighbors that are already measured, since a cuboid cannot
// group by a field it aggregates
func extendable(knn []string, measures []insight.Measure) []string {
	out := make([]string, 0, len(knn))
	for _, d := range knn {
		if !insight.HasMeasure(measures, d) {
			out = append(out, d)
		}
	}
	return out
}
