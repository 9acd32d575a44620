package dataset

import (
	"fmt"

	"insightflow/domain/core"
)

// Catalog is the ordered set of fields of a dataset snapshot
type Catalog struct {
	fields []Field
	index  map[string]int
}

// NewCatalog validates and indexes the fields
func NewCatalog(fields []Field) (*Catalog, error) {
	c := &Catalog{
		fields: make([]Field, len(fields)),
		index:  make(map[string]int, len(fields)),
	}
	for i, f := range fields {
		if f.ID == "" {
			return nil, fmt.Errorf("%w: field %d has an empty id", core.ErrConfiguration, i)
		}
		if _, dup := c.index[f.ID]; dup {
			return nil, fmt.Errorf("%w: %q", core.ErrDuplicateField, f.ID)
		}
		if _, err := ParseSemanticType(string(f.SemanticType)); err != nil {
			return nil, fmt.Errorf("%w: %v", core.ErrUnknownFieldKind, err)
		}
		if _, err := ParseAnalyticType(string(f.AnalyticType)); err != nil {
			return nil, fmt.Errorf("%w: %v", core.ErrUnknownFieldKind, err)
		}
		c.fields[i] = f
		c.index[f.ID] = i
	}
	return c, nil
}

// Len returns the number of fields
func (c *Catalog) Len() int {
	return len(c.fields)
}

// Fields returns a copy of the ordered fields
func (c *Catalog) Fields() []Field {
	out := make([]Field, len(c.fields))
	copy(out, c.fields)
	return out
}

// Get returns the field with the given id
func (c *Catalog) Get(id string) (Field, error) {
	i, ok := c.index[id]
	if !ok {
		return Field{}, core.NewFieldNotFoundError(id)
	}
	return c.fields[i], nil
}

// Position returns the catalog order of a field, or -1
func (c *Catalog) Position(id string) int {
	if i, ok := c.index[id]; ok {
		return i
	}
	return -1
}

// Has reports whether the catalog contains the id
func (c *Catalog) Has(id string) bool {
	_, ok := c.index[id]
	return ok
}

// OfKind returns the ids of all fields with the given analytic type, in catalog order
func (c *Catalog) OfKind(kind AnalyticType) []string {
	var ids []string
	for _, f := range c.fields {
		if f.AnalyticType == kind {
			ids = append(ids, f.ID)
		}
	}
	return ids
}

// Require checks that every id exists
func (c *Catalog) Require(ids ...string) error {
	for _, id := range ids {
		if !c.Has(id) {
			return core.NewFieldNotFoundError(id)
		}
	}
	return nil
}

// Profile fills cardinality features from the rows
func (c *Catalog) Profile(rows []Row) {
	for i := range c.fields {
		id := c.fields[i].ID
		seen := make(map[GroupKey]struct{})
		features := FieldFeatures{}
		for _, r := range rows {
			v := r[id]
			features.Count++
			if v == nil {
				features.Nulls++
			}
			seen[KeyOf(v)] = struct{}{}
		}
		features.Distinct = len(seen)
		c.fields[i].Features = features
	}
}
