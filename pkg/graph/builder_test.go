package graph

import (
	"testing"

	"sectionrouter/pkg/osm"
)

// newFixture builds an osm.Data with the given nodes and ways, already
// carrying the back-references a real Filter pass would have populated.
// Tests that exercise GraphBuilder set these by hand so the fixture
// states exactly which nodes are junctions, independent of pkg/osm's own
// filtering logic (covered separately).
func newFixture(nodes map[osm.NodeID]*osm.Node, ways map[int64]*osm.Way) *osm.Data {
	return &osm.Data{Nodes: nodes, Ways: ways}
}

func node(id osm.NodeID, lat, lon float64, ways ...int64) *osm.Node {
	return &osm.Node{ID: id, Lat: lat, Lon: lon, Ways: ways}
}

func wayFixture(id int64, tags osm.Tags, nodes ...osm.NodeID) *osm.Way {
	if tags == nil {
		tags = osm.Tags{}
	}
	return &osm.Way{ID: id, Tags: tags, Nodes: nodes}
}

// E1: straight road, single way, no junctions.
func TestBuildStraightRoad(t *testing.T) {
	data := newFixture(
		map[osm.NodeID]*osm.Node{
			1: node(1, 0, 0, 1),
			2: node(2, 0, 0.001, 1),
			3: node(3, 0, 0.002, 1),
		},
		map[int64]*osm.Way{
			1: wayFixture(1, osm.Tags{"highway": "residential"}, 1, 2, 3),
		},
	)

	g := Build(data)

	if g.NumVertices() != 1 {
		t.Fatalf("NumVertices() = %d, want 1", g.NumVertices())
	}
	s, ok := g.Attributes("1_0")
	if !ok {
		t.Fatalf("section 1_0 missing")
	}
	if s.StartNode != 1 || s.EndNode != 3 {
		t.Errorf("section 1_0 spans %d..%d, want 1..3", s.StartNode, s.EndNode)
	}
	wantLen := 222.4
	if diff := s.LengthM - wantLen; diff > 1 || diff < -1 {
		t.Errorf("section 1_0 length = %f, want ~%f", s.LengthM, wantLen)
	}
	if succ := g.Successors("1_0"); len(succ) != 0 {
		t.Errorf("section 1_0 successors = %v, want none", succ)
	}
}

// E2: simple junction, two bidirectional ways meeting at B.
func TestBuildSimpleJunction(t *testing.T) {
	data := newFixture(
		map[osm.NodeID]*osm.Node{
			1: node(1, 0, 0, 1),
			2: node(2, 0, 0.001, 1, 2), // junction: referenced by both ways
			3: node(3, 0, 0.002, 1),
			4: node(4, 0.001, 0.001, 2),
		},
		map[int64]*osm.Way{
			1: wayFixture(1, osm.Tags{"highway": "residential"}, 1, 2, 3),
			2: wayFixture(2, osm.Tags{"highway": "residential"}, 2, 4),
		},
	)

	g := Build(data)

	if g.NumVertices() != 3 {
		t.Fatalf("NumVertices() = %d, want 3 (1_0, 1_1, 2_0)", g.NumVertices())
	}

	want := map[SectionId]map[SectionId]bool{
		"1_0": {"1_1": true, "2_0": true},
		"1_1": {"1_0": true, "2_0": true},
		"2_0": {"1_0": true, "1_1": true},
	}
	for id, targets := range want {
		got := g.Successors(id)
		if len(got) != len(targets) {
			t.Errorf("successors(%s) = %v, want keys of %v", id, got, targets)
			continue
		}
		for _, s := range got {
			if !targets[s] {
				t.Errorf("successors(%s) contains unexpected %s", id, s)
			}
		}
	}
}

// E3: one-way alley, no back-edges.
func TestBuildOneway(t *testing.T) {
	data := newFixture(
		map[osm.NodeID]*osm.Node{
			// Node 2 references a second way (2) so it counts as a
			// junction and splits way 1 into two sections; way 2 itself
			// is deliberately absent from the fixture so it contributes
			// no section of its own to wire against.
			1: node(1, 0, 0, 1),
			2: node(2, 0, 0.001, 1, 2),
			3: node(3, 0, 0.002, 1),
		},
		map[int64]*osm.Way{
			1: wayFixture(1, osm.Tags{"highway": "residential", "oneway": true}, 1, 2, 3),
		},
	)

	g := Build(data)

	if g.NumVertices() != 2 {
		t.Fatalf("NumVertices() = %d, want 2", g.NumVertices())
	}
	if succ := g.Successors("1_0"); len(succ) != 1 || succ[0] != "1_1" {
		t.Errorf("successors(1_0) = %v, want [1_1]", succ)
	}
	if succ := g.Successors("1_1"); len(succ) != 0 {
		t.Errorf("successors(1_1) = %v, want none (oneway, no back-edge)", succ)
	}
}

// E4: roundabout, closed way with an interior junction at B.
func TestBuildRoundabout(t *testing.T) {
	data := newFixture(
		map[osm.NodeID]*osm.Node{
			1: node(1, 0, 0, 1, 1), // A: closed way revisits it
			2: node(2, 0.001, 0, 1, 1),
			3: node(3, 0.0005, 0.001, 1),
		},
		map[int64]*osm.Way{
			1: wayFixture(1, osm.Tags{"highway": "residential", "junction": "roundabout"}, 1, 2, 3, 1),
		},
	)

	g := Build(data)

	if g.NumVertices() != 2 {
		t.Fatalf("NumVertices() = %d, want 2 (1_0 A->B, 1_1 B->A)", g.NumVertices())
	}
	s0, _ := g.Attributes("1_0")
	s1, _ := g.Attributes("1_1")
	if s0.StartNode != 1 || s0.EndNode != 2 {
		t.Errorf("1_0 spans %d..%d, want 1..2", s0.StartNode, s0.EndNode)
	}
	if s1.StartNode != 2 || s1.EndNode != 1 {
		t.Errorf("1_1 spans %d..%d, want 2..1", s1.StartNode, s1.EndNode)
	}
	if succ := g.Successors("1_0"); len(succ) != 1 || succ[0] != "1_1" {
		t.Errorf("successors(1_0) = %v, want [1_1]", succ)
	}
	if succ := g.Successors("1_1"); len(succ) != 1 || succ[0] != "1_0" {
		t.Errorf("successors(1_1) = %v, want [1_0] (roundabout closure)", succ)
	}
}

func TestBuildClosedNonRoundaboutHasNoWraparound(t *testing.T) {
	// The way is one-way so that the only edge that could lead from 1_1
	// back to 1_0 is a wrap-around closure edge; a bidirectional way would
	// get 1_1->1_0 as its ordinary intra-way back-edge.
	data := newFixture(
		map[osm.NodeID]*osm.Node{
			1: node(1, 0, 0, 1, 1),
			2: node(2, 0.001, 0, 1, 1),
			3: node(3, 0.0005, 0.001, 1),
		},
		map[int64]*osm.Way{
			1: wayFixture(1, osm.Tags{"highway": "residential", "oneway": true}, 1, 2, 3, 1),
		},
	)

	g := Build(data)

	if succ := g.Successors("1_1"); len(succ) != 0 {
		t.Errorf("successors(1_1) = %v, want none: closed non-roundabout way must not wrap around", succ)
	}
}

func TestBuildWayAlwaysProducesAtLeastOneSection(t *testing.T) {
	data := newFixture(
		map[osm.NodeID]*osm.Node{
			1: node(1, 0, 0, 1),
			2: node(2, 0, 0.001, 1),
		},
		map[int64]*osm.Way{
			1: wayFixture(1, osm.Tags{"highway": "residential"}, 1, 2),
		},
	)

	g := Build(data)
	if g.NumVertices() != 1 {
		t.Fatalf("a two-node way must yield exactly one section, got %d", g.NumVertices())
	}
}
