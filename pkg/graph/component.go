package graph

// UnionFind implements a disjoint-set data structure with path compression
// and union by rank.
type UnionFind struct {
	parent []uint32
	rank   []byte // byte is sufficient — max rank ~30 for realistic graphs
	size   []uint32
}

// NewUnionFind creates a UnionFind for n elements.
func NewUnionFind(n uint32) *UnionFind {
	parent := make([]uint32, n)
	size := make([]uint32, n)
	for i := range n {
		parent[i] = i
		size[i] = 1
	}
	return &UnionFind{
		parent: parent,
		rank:   make([]byte, n),
		size:   size,
	}
}

// Find returns the representative of the set containing x, with path halving.
func (uf *UnionFind) Find(x uint32) uint32 {
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]] // path halving
		x = uf.parent[x]
	}
	return x
}

// Union merges the sets containing x and y. Returns false if already same set.
func (uf *UnionFind) Union(x, y uint32) bool {
	rx := uf.Find(x)
	ry := uf.Find(y)
	if rx == ry {
		return false
	}

	// Union by rank.
	if uf.rank[rx] < uf.rank[ry] {
		rx, ry = ry, rx
	}
	uf.parent[ry] = rx
	uf.size[rx] += uf.size[ry]
	if uf.rank[rx] == uf.rank[ry] {
		uf.rank[rx]++
	}
	return true
}

// Components describes the weakly-connected-component structure of a
// built graph, treating its directed edges as undirected. The core never
// consults this — it's a diagnostic cmd/server logs at startup so an
// operator notices a region extract that produced several disjoint road
// networks (a common symptom of a bounding box that clips through a
// bridge or ferry link).
type Components struct {
	Count           int
	LargestSize     int
	LargestFraction float64
}

// AnalyzeComponents runs union-find over g's edges and summarizes the
// resulting component structure.
func AnalyzeComponents(g *Graph) Components {
	n := g.NumVertices()
	if n == 0 {
		return Components{}
	}

	uf := NewUnionFind(uint32(n))
	for u := 0; u < n; u++ {
		start, end := g.edgesFrom(u)
		for e := start; e < end; e++ {
			uf.Union(uint32(u), uint32(g.head[e]))
		}
	}

	sizes := make(map[uint32]int)
	for i := 0; i < n; i++ {
		sizes[uf.Find(uint32(i))]++
	}

	largest := 0
	for _, size := range sizes {
		if size > largest {
			largest = size
		}
	}

	return Components{
		Count:           len(sizes),
		LargestSize:     largest,
		LargestFraction: float64(largest) / float64(n),
	}
}
