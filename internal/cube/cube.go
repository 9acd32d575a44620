package cube

import (
	"log"
	"sort"
	"strings"
	"time"

	"insightflow/domain/dataset"
)

const keySeparator = "\x1f"

// Cube lazily materializes and caches cuboids for one dataset snapshot.
// It is not safe for concurrent use; hosts serialize queries per Cube.
type Cube struct {
	catalog *dataset.Catalog
	rows    []dataset.Row
	cuboids map[string]*Cuboid
}

// New creates an empty cube over the dataset
func New(ds *dataset.Dataset) *Cube {
	return &Cube{
		catalog: ds.Catalog,
		rows:    ds.Rows(),
		cuboids: make(map[string]*Cuboid),
	}
}

// Len returns the number of cuboids materialized so far
func (c *Cube) Len() int {
	return len(c.cuboids)
}

// canonical dedupes the dimensions and orders them by catalog position
func (c *Cube) canonical(dimensions []string) ([]string, error) {
	if err := c.catalog.Require(dimensions...); err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(dimensions))
	out := make([]string, 0, len(dimensions))
	for _, d := range dimensions {
		if !seen[d] {
			seen[d] = true
			out = append(out, d)
		}
	}
	sort.SliceStable(out, func(a, b int) bool {
		return c.catalog.Position(out[a]) < c.catalog.Position(out[b])
	})
	return out, nil
}

// GetCuboid returns the cuboid for a dimension set, building it on first request.
// The set is order-independent.
func (c *Cube) GetCuboid(dimensions []string) (*Cuboid, error) {
	dims, err := c.canonical(dimensions)
	if err != nil {
		return nil, err
	}
	key := strings.Join(dims, keySeparator)
	if cb, ok := c.cuboids[key]; ok {
		return cb, nil
	}
	start := time.Now()
	cb := newCuboid(c, dims)
	c.cuboids[key] = cb
	if len(c.rows) > 0 && time.Since(start) > 50*time.Millisecond {
		log.Printf("[Cube] grouped %d rows into %d cells for [%s] in %.2fms",
			len(c.rows), len(cb.groups), strings.Join(dims, ","), float64(time.Since(start).Nanoseconds())/1e6)
	}
	return cb, nil
}
