package platform

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// FloydRouter precomputes all-pairs shortest paths at Seal time (spec.md
// §4.1, "floyd: O(1) lookup in a predecessor matrix precomputed at
// seal"). The distance table itself is a dense gonum matrix; the
// predecessor/link tables ride alongside it since path reconstruction
// needs node and link identities a float64 matrix cannot hold.
type FloydRouter struct {
	g *graph

	dist *mat.Dense
	next [][]int    // next[i][j] = index of the next hop from i toward j, or -1
	link [][]string // link[i][j] = link traversed leaving i on the path to j
}

// NewFloydRouter returns an empty FloydRouter; edges are registered with
// AddEdge before Seal.
func NewFloydRouter() *FloydRouter {
	return &FloydRouter{g: newGraph()}
}

// AddEdge registers a direct link between a and b.
func (r *FloydRouter) AddEdge(a, b, link string, latency float64) {
	r.g.addEdge(a, b, link, latency)
}

// Seal runs Floyd-Warshall over the zone's adjacency graph, producing the
// dense distance matrix and next-hop/link tables Route reads from.
func (r *FloydRouter) Seal() error {
	n := len(r.g.nodes)
	dist := mat.NewDense(n, n, nil)
	next := make([][]int, n)
	link := make([][]string, n)
	for i := range next {
		next[i] = make([]int, n)
		link[i] = make([]string, n)
		for j := range next[i] {
			if i == j {
				dist.Set(i, j, 0)
			} else {
				dist.Set(i, j, math.Inf(1))
			}
			next[i][j] = -1
		}
	}
	for _, u := range r.g.nodes {
		ui := r.g.index[u]
		for _, e := range r.g.adj[u] {
			vi := r.g.index[e.to]
			if e.latency < dist.At(ui, vi) {
				dist.Set(ui, vi, e.latency)
				next[ui][vi] = vi
				link[ui][vi] = e.link
			}
		}
	}

	for k := 0; k < n; k++ {
		for i := 0; i < n; i++ {
			dik := dist.At(i, k)
			if math.IsInf(dik, 1) {
				continue
			}
			for j := 0; j < n; j++ {
				alt := dik + dist.At(k, j)
				if alt < dist.At(i, j) {
					dist.Set(i, j, alt)
					next[i][j] = next[i][k]
					link[i][j] = link[i][k]
				}
			}
		}
	}

	r.dist = dist
	r.next = next
	r.link = link
	return nil
}

// Route implements Router, reconstructing the path from the precomputed
// next-hop table.
func (r *FloydRouter) Route(src, dst string) (Route, error) {
	if src == dst {
		return Route{}, nil
	}
	i, ok := r.g.index[src]
	if !ok {
		return Route{}, ErrNoRoute{Src: src, Dst: dst}
	}
	j, ok := r.g.index[dst]
	if !ok {
		return Route{}, ErrNoRoute{Src: src, Dst: dst}
	}
	if r.next[i][j] < 0 {
		return Route{}, ErrNoRoute{Src: src, Dst: dst}
	}

	var links []string
	cur := i
	for cur != j {
		links = append(links, r.link[cur][j])
		cur = r.next[cur][j]
	}
	return Route{Links: links, Latency: r.dist.At(i, j)}, nil
}
