package platform

import "container/heap"

// DijkstraRouter computes per-source shortest paths on demand over the
// zone's link graph (spec.md §4.1, "dijkstra: per-source shortest path,
// optionally cached"). Each computed source's result is cached until the
// next Seal, since the graph is immutable once a zone is sealed (spec.md
// §4.1, "Sealing").
type DijkstraRouter struct {
	g     *graph
	cache map[string]map[string]Route
}

// NewDijkstraRouter returns an empty DijkstraRouter; edges are registered
// with AddEdge before Seal.
func NewDijkstraRouter() *DijkstraRouter {
	return &DijkstraRouter{g: newGraph(), cache: make(map[string]map[string]Route)}
}

// AddEdge registers a direct link between a and b.
func (r *DijkstraRouter) AddEdge(a, b, link string, latency float64) {
	r.g.addEdge(a, b, link, latency)
}

// Seal clears any stale cache; Dijkstra itself runs lazily per source.
func (r *DijkstraRouter) Seal() error {
	r.cache = make(map[string]map[string]Route)
	return nil
}

// heapItem is one entry in the Dijkstra frontier priority queue.
type heapItem struct {
	node string
	dist float64
}

// dijkstraHeap implements container/heap.Interface, mirroring the
// engine's event-queue discipline: lowest key first. container/heap is not
// stable, so items with equal keys pop in no guaranteed order; Dijkstra
// distances that tie do not affect the shortest-path distances themselves.
type dijkstraHeap []heapItem

func (h dijkstraHeap) Len() int            { return len(h) }
func (h dijkstraHeap) Less(i, j int) bool  { return h[i].dist < h[j].dist }
func (h dijkstraHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *dijkstraHeap) Push(x interface{}) { *h = append(*h, x.(heapItem)) }
func (h *dijkstraHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// Route implements Router, computing (and caching) the shortest path from
// src the first time it is asked, then answering dst lookups from cache.
func (r *DijkstraRouter) Route(src, dst string) (Route, error) {
	if src == dst {
		return Route{}, nil
	}
	routes, ok := r.cache[src]
	if !ok {
		var err error
		routes, err = r.shortestPathsFrom(src)
		if err != nil {
			return Route{}, err
		}
		r.cache[src] = routes
	}
	route, ok := routes[dst]
	if !ok {
		return Route{}, ErrNoRoute{Src: src, Dst: dst}
	}
	return route, nil
}

func (r *DijkstraRouter) shortestPathsFrom(src string) (map[string]Route, error) {
	const inf = 1e308
	dist := make(map[string]float64, len(r.g.nodes))
	prevNode := make(map[string]string, len(r.g.nodes))
	prevLink := make(map[string]string, len(r.g.nodes))
	visited := make(map[string]bool, len(r.g.nodes))
	for _, n := range r.g.nodes {
		dist[n] = inf
	}
	if _, ok := r.g.index[src]; !ok {
		return nil, ErrNoRoute{Src: src, Dst: "*"}
	}
	dist[src] = 0

	pq := &dijkstraHeap{{node: src, dist: 0}}
	heap.Init(pq)
	for pq.Len() > 0 {
		cur := heap.Pop(pq).(heapItem)
		if visited[cur.node] {
			continue
		}
		visited[cur.node] = true
		for _, e := range r.g.adj[cur.node] {
			nd := dist[cur.node] + e.latency
			if nd < dist[e.to] {
				dist[e.to] = nd
				prevNode[e.to] = cur.node
				prevLink[e.to] = e.link
				heap.Push(pq, heapItem{node: e.to, dist: nd})
			}
		}
	}

	out := make(map[string]Route, len(r.g.nodes))
	for _, n := range r.g.nodes {
		if n == src || dist[n] >= inf {
			continue
		}
		var links []string
		cursor := n
		for cursor != src {
			links = append([]string{prevLink[cursor]}, links...)
			cursor = prevNode[cursor]
		}
		out[n] = Route{Links: links, Latency: dist[n]}
	}
	return out, nil
}
