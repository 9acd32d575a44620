package dataset

import (
	"math"

	"insightflow/domain/core"
)

// Dataset is an immutable snapshot of rows plus their catalog
type Dataset struct {
	ID      core.ID
	Catalog *Catalog
	rows    []Row
}

// New normalizes the raw rows against the catalog and profiles field features.
// Fields absent from a row are stored as nil.
func New(rawRows []map[string]any, fields []Field) (*Dataset, error) {
	catalog, err := NewCatalog(fields)
	if err != nil {
		return nil, err
	}
	rows := make([]Row, len(rawRows))
	for i, raw := range rawRows {
		row := make(Row, catalog.Len())
		for _, f := range catalog.fields {
			row[f.ID] = Normalize(raw[f.ID], f.SemanticType == Quantitative)
		}
		rows[i] = row
	}
	catalog.Profile(rows)
	return &Dataset{ID: core.NewID(), Catalog: catalog, rows: rows}, nil
}

// Rows returns the snapshot rows. Callers must not mutate them.
func (d *Dataset) Rows() []Row {
	return d.rows
}

// Len returns the number of rows
func (d *Dataset) Len() int {
	return len(d.rows)
}

// Column extracts one field's values in row order
func (d *Dataset) Column(fieldID string) []any {
	col := make([]any, len(d.rows))
	for i, r := range d.rows {
		col[i] = r[fieldID]
	}
	return col
}

// NumericColumn extracts one field's values as float64, NaN for non-numeric cells
func (d *Dataset) NumericColumn(fieldID string) []float64 {
	col := make([]float64, len(d.rows))
	for i, r := range d.rows {
		if f, ok := Number(r[fieldID]); ok {
			col[i] = f
		} else {
			col[i] = math.NaN()
		}
	}
	return col
}
