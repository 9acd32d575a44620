// Package recommend fills wildcard slots of partially specified views with
// the fields most strongly related to the ones the user already placed.
package recommend

import (
	"insightflow/adapters/stats/relation"
	"insightflow/domain/insight"
)

// DefaultEdgeThreshold is the minimum association an edge needs to fill a slot
const DefaultEdgeThreshold = 0.01

// Options tunes slot filling
type Options struct {
	EdgeThreshold float64
}

// DefaultOptions returns the default edge threshold
func DefaultOptions() Options {
	return Options{EdgeThreshold: DefaultEdgeThreshold}
}

// Edge is a consumed relation that filled one slot
type Edge struct {
	From  string  `json:"from"`
	To    string  `json:"to"`
	Score float64 `json:"score"`
}

// Result holds the completed views, in input order, and the edges consumed
// to fill them
type Result struct {
	Views []insight.View `json:"views"`
	Edges []Edge         `json:"edges"`
}

// Recommender fills views against one relation graph
type Recommender struct {
	graph *relation.Graph
	opts  Options
}

// New creates a recommender over the graph
func New(graph *relation.Graph, opts Options) *Recommender {
	return &Recommender{graph: graph, opts: opts}
}

// session is the mutable state of one Recommend call
type session struct {
	graph     *relation.Graph
	threshold float64
	used      [][]bool
	locked    []int
	edges     []Edge
}

// Recommend completes every unlocked view that has wildcards. Each consumed
// edge fills exactly one slot and is never reused, so two views are not
// filled through the same relation. Slots that cannot be filled are dropped.
func (r *Recommender) Recommend(views []insight.View) (Result, error) {
	n := r.graph.Len()
	s := &session{graph: r.graph, threshold: r.opts.EdgeThreshold, used: make([][]bool, n)}
	for i := range s.used {
		s.used[i] = make([]bool, n)
	}

	concrete := make([][]int, len(views))
	for vi, v := range views {
		for _, id := range v.Concrete() {
			i, err := r.graph.Index(id)
			if err != nil {
				return Result{}, err
			}
			concrete[vi] = append(concrete[vi], i)
			s.locked = append(s.locked, i)
		}
		for _, a := range concrete[vi] {
			for _, b := range concrete[vi] {
				if a != b {
					s.used[a][b] = true
				}
			}
		}
	}

	out := Result{Views: make([]insight.View, len(views)), Edges: []Edge{}}
	for vi, v := range views {
		fields := dedupe(concrete[vi])
		budget := v.Wildcards()
		if !v.Locked && budget > 0 {
			inView := make(map[int]bool, len(fields)+budget)
			for _, f := range fields {
				inView[f] = true
			}
			if len(fields) > 0 {
				fields, budget = s.internal(fields, inView, budget)
			}
			fields = s.extendSpecGroup(fields, inView, budget)
		}
		out.Views[vi] = insight.View{Fields: s.ids(fields), Locked: v.Locked}
	}
	out.Edges = append(out.Edges, s.edges...)
	return out, nil
}

// score is the undirected strength of the pair
func (s *session) score(a, b int) float64 {
	ab, _ := s.graph.At(a, b)
	ba, _ := s.graph.At(b, a)
	return max(ab, ba)
}

// consume marks the edge used in both directions and records it
func (s *session) consume(from, to int, score float64) {
	s.used[from][to] = true
	s.used[to][from] = true
	fromField, _ := s.graph.Field(from)
	toField, _ := s.graph.Field(to)
	s.edges = append(s.edges, Edge{From: fromField.ID, To: toField.ID, Score: score})
}

// strongest finds the best unused edge from any field in group to a target
// accepted by allow. Ties keep the first edge found.
func (s *session) strongest(group []int, allow func(to int) bool) (from, to int, score float64) {
	from, to, score = -1, -1, s.threshold
	for _, f := range group {
		for t := 0; t < s.graph.Len(); t++ {
			if t == f || s.used[f][t] || s.used[t][f] || !allow(t) {
				continue
			}
			if sc := s.score(f, t); sc > score {
				from, to, score = f, t, sc
			}
		}
	}
	return from, to, score
}

// internal fills slots of a mixed view from relations among the locked
// fields first: each concrete field contributes its strongest unused partner
func (s *session) internal(fields []int, inView map[int]bool, budget int) ([]int, int) {
	lockedSet := make(map[int]bool, len(s.locked))
	for _, l := range s.locked {
		lockedSet[l] = true
	}
	concrete := append([]int{}, fields...)
	for _, c := range concrete {
		if budget == 0 {
			break
		}
		from, to, score := s.strongest([]int{c}, func(t int) bool { return lockedSet[t] && !inView[t] })
		if to < 0 {
			continue
		}
		s.consume(from, to, score)
		inView[to] = true
		fields = append(fields, to)
		budget--
	}
	return fields, budget
}

// extendSpecGroup grows the locked group one field per slot, each time along
// the strongest unused edge leaving the group
func (s *session) extendSpecGroup(fields []int, inView map[int]bool, budget int) []int {
	group := append([]int{}, s.locked...)
	for budget > 0 {
		from, to, score := s.strongest(group, func(t int) bool { return !inView[t] })
		if to < 0 {
			break
		}
		s.consume(from, to, score)
		inView[to] = true
		group = append(group, to)
		fields = append(fields, to)
		budget--
	}
	return fields
}

func (s *session) ids(indices []int) []string {
	out := make([]string, 0, len(indices))
	for _, i := range dedupe(indices) {
		f, _ := s.graph.Field(i)
		out = append(out, f.ID)
	}
	return out
}

// dedupe keeps the first occurrence of each index
func dedupe(indices []int) []int {
	seen := make(map[int]bool, len(indices))
	out := make([]int, 0, len(indices))
	for _, i := range indices {
		if !seen[i] {
			seen[i] = true
			out = append(out, i)
		}
	}
	return out
}
