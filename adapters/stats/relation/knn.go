package relation

import (
	"math"
	"sort"

	"insightflow/domain/dataset"
)

type neighbor struct {
	index int
	dis   float64
	rank  float64
}

// KNN returns up to k fields of the given kind that are most associated with
// the seeds. With no seeds it falls back to Center. Candidates are ranked by
// their strongest association to any seed divided by their distinct value
// count, so near-unique identifier columns sink. Only candidates with
// association >= threshold are returned. Ties keep catalog order.
func (g *Graph) KNN(kind dataset.AnalyticType, seeds []string, k int, threshold float64) ([]string, error) {
	if len(seeds) == 0 {
		return g.Center(kind, k), nil
	}
	seedIdx := make([]int, 0, len(seeds))
	isSeed := make(map[int]bool, len(seeds))
	for _, s := range seeds {
		i, err := g.Index(s)
		if err != nil {
			return nil, err
		}
		seedIdx = append(seedIdx, i)
		isSeed[i] = true
	}

	var candidates []neighbor
	for j, f := range g.fields {
		if f.AnalyticType != kind || isSeed[j] {
			continue
		}
		dis := 0.0
		for _, s := range seedIdx {
			dis = math.Max(dis, math.Abs(g.matrix[s][j]))
		}
		if dis < threshold {
			continue
		}
		distinct := float64(f.Features.Distinct)
		if distinct < 1 {
			distinct = 1
		}
		candidates = append(candidates, neighbor{index: j, dis: dis, rank: dis / distinct})
	}
	sort.SliceStable(candidates, func(a, b int) bool {
		return candidates[a].rank > candidates[b].rank
	})
	return g.ids(candidates, k), nil
}

// Center ranks fields of the given kind by their total absolute association
// with the other fields of that kind and returns the top k
func (g *Graph) Center(kind dataset.AnalyticType, k int) []string {
	var same []int
	for i, f := range g.fields {
		if f.AnalyticType == kind {
			same = append(same, i)
		}
	}
	candidates := make([]neighbor, 0, len(same))
	for _, i := range same {
		total := 0.0
		for _, j := range same {
			if i != j {
				total += math.Abs(g.matrix[i][j])
			}
		}
		candidates = append(candidates, neighbor{index: i, rank: total})
	}
	sort.SliceStable(candidates, func(a, b int) bool {
		return candidates[a].rank > candidates[b].rank
	})
	return g.ids(candidates, k)
}

func (g *Graph) ids(ns []neighbor, k int) []string {
	if k >= 0 && len(ns) > k {
		ns = ns[:k]
	}
	out := make([]string, len(ns))
	for i, n := range ns {
		out[i] = g.fields[n.index].ID
	}
	return out
}
