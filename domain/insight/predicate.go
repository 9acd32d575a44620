package insight

import (
	"fmt"

	"insightflow/domain/core"
	"insightflow/domain/dataset"
)

// PredicateKind selects how a predicate matches values
type PredicateKind string

const (
	Discrete   PredicateKind = "discrete"
	Continuous PredicateKind = "continuous"
)

// Predicate is a single-field filter: set membership or an inclusive range
type Predicate struct {
	FieldID string        `json:"key"`
	Kind    PredicateKind `json:"type"`
	Values  []any         `json:"values,omitempty"`
	Range   [2]float64    `json:"range,omitempty"`

	set map[dataset.GroupKey]struct{}
}

// NewDiscrete builds a set-membership predicate
func NewDiscrete(fieldID string, values ...any) Predicate {
	p := Predicate{FieldID: fieldID, Kind: Discrete, Values: values}
	p.index()
	return p
}

// NewContinuous builds an inclusive range predicate
func NewContinuous(fieldID string, lo, hi float64) Predicate {
	return Predicate{FieldID: fieldID, Kind: Continuous, Range: [2]float64{lo, hi}}
}

func (p *Predicate) index() {
	p.set = make(map[dataset.GroupKey]struct{}, len(p.Values))
	for _, v := range p.Values {
		p.set[dataset.KeyOf(dataset.Normalize(v, false))] = struct{}{}
		if f, ok := dataset.Number(dataset.Normalize(v, true)); ok {
			p.set[dataset.KeyOf(f)] = struct{}{}
		}
	}
}

// Validate checks the predicate shape
func (p Predicate) Validate() error {
	switch p.Kind {
	case Discrete:
		return nil
	case Continuous:
		if p.Range[0] > p.Range[1] {
			return fmt.Errorf("%w: %s range [%g, %g] is inverted", core.ErrInvalidPredicate, p.FieldID, p.Range[0], p.Range[1])
		}
		return nil
	}
	return fmt.Errorf("%w: %s has kind %q", core.ErrInvalidPredicate, p.FieldID, p.Kind)
}

// Match reports whether the row satisfies the predicate
func (p *Predicate) Match(r dataset.Row) bool {
	v := r[p.FieldID]
	if p.Kind == Continuous {
		f, ok := dataset.Number(v)
		return ok && f >= p.Range[0] && f <= p.Range[1]
	}
	if p.set == nil {
		p.index()
	}
	_, ok := p.set[dataset.KeyOf(v)]
	return ok
}

// FilterRows keeps the rows matching every predicate
func FilterRows(rows []dataset.Row, predicates []Predicate) []dataset.Row {
	if len(predicates) == 0 {
		return rows
	}
	preds := make([]Predicate, len(predicates))
	copy(preds, predicates)
	out := make([]dataset.Row, 0, len(rows))
	for _, r := range rows {
		keep := true
		for i := range preds {
			if !preds[i].Match(r) {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, r)
		}
	}
	return out
}

// PredicateFields returns the distinct field ids referenced by the predicates
func PredicateFields(predicates []Predicate) []string {
	seen := make(map[string]bool)
	var ids []string
	for _, p := range predicates {
		if !seen[p.FieldID] {
			seen[p.FieldID] = true
			ids = append(ids, p.FieldID)
		}
	}
	return ids
}
