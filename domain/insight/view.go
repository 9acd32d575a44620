package insight

// Wildcard marks an unassigned slot in a view
const Wildcard = "*"

// View is a chart field assignment. Fields hold concrete field ids or Wildcard.
type View struct {
	Fields []string `json:"fields"`
	Locked bool     `json:"locked,omitempty"`
}

// Concrete returns the non-wildcard fields in order
func (v View) Concrete() []string {
	out := make([]string, 0, len(v.Fields))
	for _, f := range v.Fields {
		if f != Wildcard {
			out = append(out, f)
		}
	}
	return out
}

// Wildcards counts unassigned slots
func (v View) Wildcards() int {
	n := 0
	for _, f := range v.Fields {
		if f == Wildcard {
			n++
		}
	}
	return n
}
