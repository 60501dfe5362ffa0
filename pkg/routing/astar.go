package routing

import (
	"errors"
	"fmt"
	"sort"

	"sectionrouter/pkg/geo"
	"sectionrouter/pkg/graph"
)

// ErrNoPath is returned when goal is unreachable from start. The
// reference planner falls off the end of its search loop without an
// explicit return in this case; this rewrite commits to the sentinel
// instead.
var ErrNoPath = errors.New("routing: no path to goal")

// ErrUnknownSection is returned when Plan is invoked with a start or goal
// section that isn't a vertex of the graph.
type ErrUnknownSection struct {
	Section graph.SectionId
}

func (e *ErrUnknownSection) Error() string {
	return fmt.Sprintf("routing: unknown section %q", e.Section)
}

// Result is the outcome of a successful Plan call.
type Result struct {
	Path []graph.SectionId

	// Cost is the accumulated g-score at goal: the summed length of every
	// section in Path except the last (spec's edge cost charges the
	// section being left, not the one being entered, so the goal's own
	// length is never added). Plan(g, x, x) yields Cost 0.
	Cost float64

	// Verbose is populated only when Plan is called with verbose=true.
	Verbose *VerboseInfo
}

// VerboseInfo is a snapshot of the search state at termination, for
// inspecting how far the search spread; the search itself never consults
// it.
type VerboseInfo struct {
	OpenSet   []graph.SectionId
	ClosedSet []graph.SectionId
}

type entrySide int

const (
	enteredStart entrySide = iota
	enteredEnd
)

// Plan runs A* over g from start to goal using the great-circle
// admissible heuristic and the side-entry filter: having entered a
// section at one endpoint, the search may only leave through the other.
//
// Returns ErrUnknownSection if start or goal isn't a graph vertex, and
// ErrNoPath if the fringe exhausts without reaching goal.
func Plan(g *graph.Graph, start, goal graph.SectionId, verbose bool) (*Result, error) {
	startAttrs, ok := g.Attributes(start)
	if !ok {
		return nil, &ErrUnknownSection{Section: start}
	}
	goalAttrs, ok := g.Attributes(goal)
	if !ok {
		return nil, &ErrUnknownSection{Section: goal}
	}

	gScore := map[graph.SectionId]float64{start: 0}
	ancestors := map[graph.SectionId]graph.SectionId{}
	closed := map[graph.SectionId]bool{}

	fringe := &fringeHeap{}
	var seq uint64
	push := func(id graph.SectionId, g, f float64) {
		fringe.Push(fringeItem{f: f, g: g, seq: seq, section: id})
		seq++
	}
	push(start, 0, heuristic(startAttrs, goalAttrs))

	for fringe.Len() > 0 {
		item := fringe.Pop()
		current := item.section

		if closed[current] {
			continue
		}
		// Stale pop: a cheaper route to current was relaxed after this
		// entry was pushed. The fresher entry is already in the fringe
		// (or has already been popped); discard this one.
		if item.g > gScore[current] {
			continue
		}

		if current == goal {
			return &Result{
				Path:    reconstructPath(ancestors, start, goal),
				Cost:    gScore[goal],
				Verbose: snapshotVerbose(verbose, gScore, closed),
			}, nil
		}
		closed[current] = true

		currentAttrs, _ := g.Attributes(current)
		neighbours := g.Successors(current)

		if current != start {
			side := enteredSideOf(currentAttrs, mustAttrs(g, ancestors[current]))
			neighbours = filterSideEntry(g, currentAttrs, side, neighbours)
		}

		for _, m := range neighbours {
			if closed[m] {
				continue
			}
			tentativeG := gScore[current] + currentAttrs.LengthM
			if existing, ok := gScore[m]; ok && tentativeG >= existing {
				continue
			}
			gScore[m] = tentativeG
			ancestors[m] = current
			mAttrs, _ := g.Attributes(m)
			push(m, tentativeG, tentativeG+heuristic(mAttrs, goalAttrs))
		}
	}

	return nil, wrapNoPath(verbose, gScore, closed)
}

func wrapNoPath(verbose bool, gScore map[graph.SectionId]float64, closed map[graph.SectionId]bool) error {
	// VerboseInfo has no meaning without a path; ErrNoPath carries no
	// snapshot, so the explored set is not reported on failure.
	_ = verbose
	_ = gScore
	_ = closed
	return ErrNoPath
}

func mustAttrs(g *graph.Graph, id graph.SectionId) graph.Section {
	s, _ := g.Attributes(id)
	return s
}

// enteredSideOf reports which endpoint of current was entered from prev.
func enteredSideOf(current, prev graph.Section) entrySide {
	if current.StartNode == prev.StartNode || current.StartNode == prev.EndNode {
		return enteredStart
	}
	return enteredEnd
}

// filterSideEntry keeps only neighbours reachable through the endpoint of
// current opposite to where it was entered: having driven in at one end,
// a vehicle may only leave through the other.
func filterSideEntry(g *graph.Graph, current graph.Section, side entrySide, neighbours []graph.SectionId) []graph.SectionId {
	exitNode := current.EndNode
	if side == enteredEnd {
		exitNode = current.StartNode
	}

	kept := neighbours[:0:0]
	for _, m := range neighbours {
		mAttrs, ok := g.Attributes(m)
		if !ok {
			continue
		}
		if mAttrs.StartNode == exitNode || mAttrs.EndNode == exitNode {
			kept = append(kept, m)
		}
	}
	return kept
}

// heuristic is the minimum of the four great-circle distances between
// {start,end} of n and {start,end} of goal. Admissible: no road path
// between two sections can be shorter than the closest pair of their
// endpoints.
func heuristic(n, goal graph.Section) float64 {
	best := geo.DistanceMeters(n.StartPoint, goal.StartPoint)
	if d := geo.DistanceMeters(n.StartPoint, goal.EndPoint); d < best {
		best = d
	}
	if d := geo.DistanceMeters(n.EndPoint, goal.StartPoint); d < best {
		best = d
	}
	if d := geo.DistanceMeters(n.EndPoint, goal.EndPoint); d < best {
		best = d
	}
	return best
}

func reconstructPath(ancestors map[graph.SectionId]graph.SectionId, start, goal graph.SectionId) []graph.SectionId {
	path := []graph.SectionId{goal}
	cur := goal
	for cur != start {
		prev, ok := ancestors[cur]
		if !ok {
			break
		}
		path = append(path, prev)
		cur = prev
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

func snapshotVerbose(verbose bool, gScore map[graph.SectionId]float64, closed map[graph.SectionId]bool) *VerboseInfo {
	if !verbose {
		return nil
	}
	open := make([]graph.SectionId, 0, len(gScore))
	for id := range gScore {
		if !closed[id] {
			open = append(open, id)
		}
	}
	sort.Slice(open, func(i, j int) bool { return open[i] < open[j] })

	closedList := make([]graph.SectionId, 0, len(closed))
	for id := range closed {
		closedList = append(closedList, id)
	}
	sort.Slice(closedList, func(i, j int) bool { return closedList[i] < closedList[j] })

	return &VerboseInfo{OpenSet: open, ClosedSet: closedList}
}
