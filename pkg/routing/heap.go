package routing

import "sectionrouter/pkg/graph"

// fringeItem is one entry in the A* fringe: the f-score it was pushed
// with, the g-score that produced it (for stale-pop detection), a
// monotonic sequence number for deterministic tie-breaking, and the
// section it names.
type fringeItem struct {
	f       float64
	g       float64
	seq     uint64
	section graph.SectionId
}

// fringeHeap is a concrete-typed min-heap keyed by (f, seq). Concrete
// rather than container/heap.Interface to avoid boxing fringeItem into an
// interface on every push and pop.
type fringeHeap struct {
	items []fringeItem
}

func (h *fringeHeap) Len() int { return len(h.items) }

func (h *fringeHeap) Push(item fringeItem) {
	h.items = append(h.items, item)
	h.siftUp(len(h.items) - 1)
}

func (h *fringeHeap) Pop() fringeItem {
	n := len(h.items)
	top := h.items[0]
	h.items[0] = h.items[n-1]
	h.items = h.items[:n-1]
	if len(h.items) > 0 {
		h.siftDown(0)
	}
	return top
}

func less(a, b fringeItem) bool {
	if a.f != b.f {
		return a.f < b.f
	}
	return a.seq < b.seq
}

func (h *fringeHeap) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !less(h.items[i], h.items[parent]) {
			break
		}
		h.items[i], h.items[parent] = h.items[parent], h.items[i]
		i = parent
	}
}

func (h *fringeHeap) siftDown(i int) {
	n := len(h.items)
	for {
		smallest := i
		left, right := 2*i+1, 2*i+2
		if left < n && less(h.items[left], h.items[smallest]) {
			smallest = left
		}
		if right < n && less(h.items[right], h.items[smallest]) {
			smallest = right
		}
		if smallest == i {
			break
		}
		h.items[i], h.items[smallest] = h.items[smallest], h.items[i]
		i = smallest
	}
}
