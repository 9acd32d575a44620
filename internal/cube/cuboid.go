package cube

import (
	"fmt"

	"insightflow/domain/core"
	"insightflow/domain/dataset"
	"insightflow/domain/insight"
)

// group is one distinct dimension-value combination and the source rows in it
type group struct {
	values  []any
	members []int
}

// Cuboid is the grouped view of the dataset for one dimension set. Aggregated
// columns are cached per (measure, aggregator) and only ever added.
type Cuboid struct {
	cube       *Cube
	dimensions []string
	groups     []group
	columns    map[insight.Measure][]float64
}

func newCuboid(c *Cube, dims []string) *Cuboid {
	cb := &Cuboid{
		cube:       c,
		dimensions: dims,
		columns:    make(map[insight.Measure][]float64),
	}
	pos := make(map[dataset.GroupKey]int)
	values := make([]any, len(dims))
	for ri, r := range c.rows {
		for di, d := range dims {
			values[di] = r[d]
		}
		key := dataset.TupleKey(values...)
		gi, ok := pos[key]
		if !ok {
			gi = len(cb.groups)
			pos[key] = gi
			cb.groups = append(cb.groups, group{values: append([]any(nil), values...)})
		}
		cb.groups[gi].members = append(cb.groups[gi].members, ri)
	}
	// The empty dimension set always has the grand-total row, even over zero rows.
	if len(dims) == 0 && len(cb.groups) == 0 {
		cb.groups = append(cb.groups, group{})
	}
	return cb
}

// Dimensions returns the canonical dimension ids
func (cb *Cuboid) Dimensions() []string {
	return append([]string(nil), cb.dimensions...)
}

// Size returns the number of groups
func (cb *Cuboid) Size() int {
	return len(cb.groups)
}

// validate checks measures against the catalog and rejects one field requested
// with two aggregators in the same call
func (cb *Cuboid) validate(measures []insight.Measure) ([]insight.Measure, error) {
	seen := make(map[string]insight.Aggregator, len(measures))
	out := make([]insight.Measure, 0, len(measures))
	for _, m := range measures {
		// a measure column would overwrite the group value under the same key
		for _, d := range cb.dimensions {
			if d == m.FieldID {
				return nil, fmt.Errorf("%w: %s", core.ErrMeasureIsGrouping, m.FieldID)
			}
		}
		agg, err := insight.ParseAggregator(string(m.Aggregator))
		if err != nil {
			return nil, err
		}
		f, err := cb.cube.catalog.Get(m.FieldID)
		if err != nil {
			return nil, err
		}
		if agg.NeedsNumbers() && f.SemanticType != dataset.Quantitative {
			return nil, core.NewNotNumericError(m.FieldID, string(agg))
		}
		if prev, ok := seen[m.FieldID]; ok {
			if prev != agg {
				return nil, fmt.Errorf("%w: %s", core.ErrDuplicateMeasure, m.FieldID)
			}
			continue
		}
		seen[m.FieldID] = agg
		out = append(out, insight.Measure{FieldID: m.FieldID, Aggregator: agg})
	}
	return out, nil
}

// AggregatedRows returns one row per group, in first-seen order, holding the
// dimension values and each requested measure keyed by its field id. Columns
// computed by earlier calls are reused.
func (cb *Cuboid) AggregatedRows(measures []insight.Measure) ([]dataset.Row, error) {
	ms, err := cb.validate(measures)
	if err != nil {
		return nil, err
	}
	for _, m := range ms {
		if _, ok := cb.columns[m]; !ok {
			cb.columns[m] = cb.aggregate(m)
		}
	}
	rows := make([]dataset.Row, len(cb.groups))
	for gi, g := range cb.groups {
		r := make(dataset.Row, len(cb.dimensions)+len(ms))
		for di, d := range cb.dimensions {
			r[d] = g.values[di]
		}
		for _, m := range ms {
			r[m.FieldID] = cb.columns[m][gi]
		}
		rows[gi] = r
	}
	return rows, nil
}

// Cached reports whether a column has already been computed
func (cb *Cuboid) Cached(m insight.Measure) bool {
	_, ok := cb.columns[m]
	return ok
}

func (cb *Cuboid) aggregate(m insight.Measure) []float64 {
	col := make([]float64, len(cb.groups))
	for gi, g := range cb.groups {
		if m.Aggregator == insight.Count {
			col[gi] = float64(len(g.members))
			continue
		}
		values := make([]float64, 0, len(g.members))
		for _, ri := range g.members {
			if f, ok := dataset.Number(cb.cube.rows[ri][m.FieldID]); ok {
				values = append(values, f)
			}
		}
		col[gi] = reduce(m.Aggregator, values)
	}
	return col
}
