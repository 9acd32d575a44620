package relation

import (
	"fmt"
	"log"
	"time"

	"insightflow/domain/core"
	"insightflow/domain/dataset"
)

const (
	// DefaultBinSize is the number of equal-width bins for numeric series
	DefaultBinSize = 16
	// DefaultRangeSize is the number of most frequent values kept for categorical targets
	DefaultRangeSize = 16
)

// NoiseMode selects how the categorical estimator treats the long tail of source groups
type NoiseMode string

const (
	// NoiseBucket folds groups beyond the frequency range into one residual group
	NoiseBucket NoiseMode = "noise"
	// Pure scores every group individually
	Pure NoiseMode = "pure"
)

// Options tunes the estimators
type Options struct {
	BinSize   int
	RangeSize int
	NoiseMode NoiseMode
}

// DefaultOptions returns the estimator constants used when none are configured
func DefaultOptions() Options {
	return Options{BinSize: DefaultBinSize, RangeSize: DefaultRangeSize, NoiseMode: NoiseBucket}
}

// Graph is the directional association matrix between fields.
// matrix[i][j] scores field i explaining field j.
type Graph struct {
	fields []dataset.Field
	index  map[string]int
	matrix [][]float64
}

// column caches one field's values in the two shapes the estimators consume
type column struct {
	keys    []dataset.GroupKey
	numbers []float64
	numeric []bool
}

func newColumn(ds *dataset.Dataset, id string) column {
	rows := ds.Rows()
	c := column{
		keys:    make([]dataset.GroupKey, len(rows)),
		numbers: make([]float64, len(rows)),
		numeric: make([]bool, len(rows)),
	}
	for i, r := range rows {
		v := r[id]
		c.keys[i] = dataset.KeyOf(v)
		c.numbers[i], c.numeric[i] = dataset.Number(v)
	}
	return c
}

// Build computes the full matrix for a dataset snapshot
func Build(ds *dataset.Dataset, opts Options) *Graph {
	start := time.Now()
	if opts.BinSize < 2 {
		opts.BinSize = DefaultBinSize
	}
	if opts.RangeSize < 2 {
		opts.RangeSize = DefaultRangeSize
	}
	est := estimator{binSize: opts.BinSize, rangeSize: opts.RangeSize, pure: opts.NoiseMode == Pure}

	fields := ds.Catalog.Fields()
	g := &Graph{
		fields: fields,
		index:  make(map[string]int, len(fields)),
		matrix: make([][]float64, len(fields)),
	}
	cols := make([]column, len(fields))
	for i, f := range fields {
		g.index[f.ID] = i
		g.matrix[i] = make([]float64, len(fields))
		cols[i] = newColumn(ds, f.ID)
	}

	for i := range fields {
		g.matrix[i][i] = 1
		for j := range fields {
			if i == j {
				continue
			}
			src, tgt := fields[i], fields[j]
			switch {
			case !src.SemanticType.IsCategorical() && !tgt.SemanticType.IsCategorical():
				if j < i {
					continue
				}
				x, y := pairedNumbers(cols[i], cols[j])
				score := est.symmetricMIC(x, y)
				g.matrix[i][j], g.matrix[j][i] = score, score
			case src.SemanticType.IsCategorical() && !tgt.SemanticType.IsCategorical():
				cats, y := keysWithNumbers(cols[i], cols[j])
				g.matrix[i][j] = est.generalMic(cats, y, src.SemanticType == dataset.Temporal)
			case !src.SemanticType.IsCategorical() && tgt.SemanticType.IsCategorical():
				cats, x := keysWithNumbers(cols[j], cols[i])
				g.matrix[i][j] = est.inverseGeneralMic(x, cats, tgt.SemanticType == dataset.Temporal)
			default:
				g.matrix[i][j] = est.nnMic(cols[i].keys, cols[j].keys, tgt.SemanticType == dataset.Temporal)
			}
		}
	}

	log.Printf("[RelationGraph] built %dx%d matrix over %d rows in %.2fms",
		len(fields), len(fields), ds.Len(), float64(time.Since(start).Nanoseconds())/1e6)
	return g
}

// pairedNumbers keeps the rows where both columns are numeric
func pairedNumbers(a, b column) ([]float64, []float64) {
	var x, y []float64
	for i := range a.numbers {
		if a.numeric[i] && b.numeric[i] {
			x = append(x, a.numbers[i])
			y = append(y, b.numbers[i])
		}
	}
	return x, y
}

// keysWithNumbers keeps the rows where the numeric column has a value
func keysWithNumbers(cat, num column) ([]dataset.GroupKey, []float64) {
	var keys []dataset.GroupKey
	var xs []float64
	for i := range num.numbers {
		if num.numeric[i] {
			keys = append(keys, cat.keys[i])
			xs = append(xs, num.numbers[i])
		}
	}
	return keys, xs
}

// Len returns the number of interned fields
func (g *Graph) Len() int {
	return len(g.fields)
}

// Index resolves a field id to its matrix position
func (g *Graph) Index(id string) (int, error) {
	i, ok := g.index[id]
	if !ok {
		return -1, core.NewFieldNotFoundError(id)
	}
	return i, nil
}

// Field returns the field at a matrix position
func (g *Graph) Field(i int) (dataset.Field, error) {
	if i < 0 || i >= len(g.fields) {
		return dataset.Field{}, fmt.Errorf("%w: %d", core.ErrIndexOutOfRange, i)
	}
	return g.fields[i], nil
}

// Fields returns the interned fields in matrix order
func (g *Graph) Fields() []dataset.Field {
	out := make([]dataset.Field, len(g.fields))
	copy(out, g.fields)
	return out
}

// At returns matrix[i][j] with bounds checks
func (g *Graph) At(i, j int) (float64, error) {
	if i < 0 || i >= len(g.fields) || j < 0 || j >= len(g.fields) {
		return 0, fmt.Errorf("%w: (%d, %d)", core.ErrIndexOutOfRange, i, j)
	}
	return g.matrix[i][j], nil
}

// Score returns the association of from explaining to
func (g *Graph) Score(from, to string) (float64, error) {
	i, err := g.Index(from)
	if err != nil {
		return 0, err
	}
	j, err := g.Index(to)
	if err != nil {
		return 0, err
	}
	return g.matrix[i][j], nil
}

// Matrix returns a copy of the association matrix
func (g *Graph) Matrix() [][]float64 {
	out := make([][]float64, len(g.matrix))
	for i, row := range g.matrix {
		out[i] = append([]float64(nil), row...)
	}
	return out
}

// FromMatrix interns fields and adopts a precomputed matrix. Used by hosts that
// already hold a matrix and by tests.
func FromMatrix(fields []dataset.Field, matrix [][]float64) (*Graph, error) {
	if len(matrix) != len(fields) {
		return nil, fmt.Errorf("%w: matrix has %d rows for %d fields", core.ErrConfiguration, len(matrix), len(fields))
	}
	g := &Graph{
		fields: append([]dataset.Field(nil), fields...),
		index:  make(map[string]int, len(fields)),
		matrix: make([][]float64, len(fields)),
	}
	for i, f := range fields {
		if _, dup := g.index[f.ID]; dup {
			return nil, fmt.Errorf("%w: %q", core.ErrDuplicateField, f.ID)
		}
		if len(matrix[i]) != len(fields) {
			return nil, fmt.Errorf("%w: matrix row %d has %d columns", core.ErrConfiguration, i, len(matrix[i]))
		}
		g.index[f.ID] = i
		g.matrix[i] = append([]float64(nil), matrix[i]...)
	}
	return g, nil
}
