package graph

import (
	"log"
	"sort"

	"sectionrouter/pkg/geo"
	"sectionrouter/pkg/osm"
)

// builder accumulates vertices and edges with set semantics before Build
// compacts everything into the immutable CSR Graph. Kept unexported: the
// only way to end up with a Graph is to run the two-pass algorithm below,
// never to hand-assemble adjacency.
type builder struct {
	ids   []SectionId
	index map[SectionId]int
	attrs []Section
	adj   []map[int]struct{}
}

func newBuilder() *builder {
	return &builder{index: make(map[SectionId]int)}
}

func (b *builder) addVertex(id SectionId, s Section) int {
	if idx, ok := b.index[id]; ok {
		b.attrs[idx] = s
		return idx
	}
	idx := len(b.ids)
	b.index[id] = idx
	b.ids = append(b.ids, id)
	b.attrs = append(b.attrs, s)
	b.adj = append(b.adj, nil)
	return idx
}

// addEdge adds a directed edge from→to. Returns false if the edge was
// already present — duplicate edge additions are a no-op everywhere
// except the roundabout closure edge, which logs instead (see
// sectionizeWay).
func (b *builder) addEdge(from, to int) bool {
	if b.adj[from] == nil {
		b.adj[from] = make(map[int]struct{})
	}
	if _, exists := b.adj[from][to]; exists {
		return false
	}
	b.adj[from][to] = struct{}{}
	return true
}

func (b *builder) build() *Graph {
	n := len(b.ids)
	firstOut := make([]int32, n+1)
	for i := 0; i < n; i++ {
		firstOut[i+1] = firstOut[i] + int32(len(b.adj[i]))
	}
	head := make([]int32, firstOut[n])
	for i := 0; i < n; i++ {
		targets := make([]int, 0, len(b.adj[i]))
		for t := range b.adj[i] {
			targets = append(targets, t)
		}
		sort.Ints(targets)
		pos := firstOut[i]
		for _, t := range targets {
			head[pos] = int32(t)
			pos++
		}
	}
	return &Graph{
		ids:      b.ids,
		index:    b.index,
		attrs:    b.attrs,
		firstOut: firstOut,
		head:     head,
	}
}

// Build runs the two-pass section graph construction over a filtered
// osm.Data: sectioning each way at its junction nodes, then wiring
// intra-way and inter-way edges with one-way awareness. Build is total —
// it never fails the whole construction for one malformed way.
func Build(data *osm.Data) *Graph {
	b := newBuilder()

	for _, w := range data.Ways {
		sectionizeWay(b, data, w)
	}
	for _, w := range data.Ways {
		wireWay(b, data, w)
	}

	return b.build()
}

// sectionizeWay is GraphBuilder pass 1: split w into maximal sections
// between junction nodes, and link consecutive sections of the same way.
func sectionizeWay(b *builder, data *osm.Data, w *osm.Way) {
	if len(w.Nodes) < 2 {
		return
	}

	lastIdx := 0
	for i := 1; i < len(w.Nodes); i++ {
		n, ok := data.Nodes[w.Nodes[i]]
		if ok && len(n.Ways) > 1 {
			emitSection(b, data, w, lastIdx, i)
			lastIdx = i
		}
	}
	if lastIdx != len(w.Nodes)-1 {
		emitSection(b, data, w, lastIdx, len(w.Nodes)-1)
	}

	if w.IsClosed() && w.IsRoundabout() && w.Sections >= 2 {
		last := sectionID(w.ID, w.Sections-1)
		first := sectionID(w.ID, 0)
		if !b.addEdge(b.index[last], b.index[first]) {
			log.Printf("graph: duplicate roundabout closure edge on way %d", w.ID)
		}
	}
}

// emitSection adds the section spanning w.Nodes[startIdx..endIdx] as a
// new vertex, and links it to the way's previous section if any.
func emitSection(b *builder, data *osm.Data, w *osm.Way, startIdx, endIdx int) {
	nodeIDs := w.Nodes[startIdx : endIdx+1]
	path := make([]geo.Point, len(nodeIDs))
	for i, nid := range nodeIDs {
		n, ok := data.Nodes[nid]
		if !ok {
			log.Printf("graph: skipping section on way %d: node %d not loaded", w.ID, nid)
			return
		}
		path[i] = geo.Point{Lat: n.Lat, Lon: n.Lon}
	}

	length, err := geo.PolylineLengthMeters(path)
	if err != nil {
		// Unreachable for a well-formed way (len(w.Nodes) >= 2 and
		// startIdx < endIdx always), but the builder is total: a bad
		// way gets skipped and logged, not a halted build.
		log.Printf("graph: skipping degenerate section on way %d: %v", w.ID, err)
		return
	}

	idx := w.Sections
	id := sectionID(w.ID, idx)
	vIdx := b.addVertex(id, Section{
		Way:        w.ID,
		StartNode:  nodeIDs[0],
		EndNode:    nodeIDs[len(nodeIDs)-1],
		LengthM:    length,
		Path:       path,
		StartPoint: path[0],
		EndPoint:   path[len(path)-1],
		Tags:       w.Tags,
	})

	if idx > 0 {
		prevIdx := b.index[sectionID(w.ID, idx-1)]
		b.addEdge(prevIdx, vIdx)
		if !w.IsOneway() {
			b.addEdge(vIdx, prevIdx)
		}
	}

	w.Sections++
}

// wireWay is GraphBuilder pass 2: for every section of w, wire its legal
// exit endpoints to sections of other ways that meet there.
func wireWay(b *builder, data *osm.Data, w *osm.Way) {
	bidirectional := !w.IsOneway()
	for k := 0; k < w.Sections; k++ {
		vIdx, ok := b.index[sectionID(w.ID, k)]
		if !ok {
			continue
		}
		s := b.attrs[vIdx]
		if bidirectional {
			wire(b, data, w, vIdx, s.StartNode)
		}
		wire(b, data, w, vIdx, s.EndNode)
	}
}

// wire adds an edge from section from to every section of every other way
// that legally begins or ends at node v.
func wire(b *builder, data *osm.Data, w *osm.Way, from int, v osm.NodeID) {
	node, ok := data.Nodes[v]
	if !ok {
		return
	}

	visited := make(map[int64]bool)
	for _, otherID := range node.Ways {
		if otherID == w.ID || visited[otherID] {
			continue
		}
		visited[otherID] = true

		other, ok := data.Ways[otherID]
		if !ok {
			continue
		}
		otherBidirectional := !other.IsOneway()
		for k := 0; k < other.Sections; k++ {
			toIdx, ok := b.index[sectionID(other.ID, k)]
			if !ok {
				continue
			}
			s := b.attrs[toIdx]
			if s.StartNode == v {
				b.addEdge(from, toIdx)
			}
			if s.EndNode == v && otherBidirectional {
				b.addEdge(from, toIdx)
			}
		}
	}
}
