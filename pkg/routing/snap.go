package routing

import (
	"errors"
	"math"

	"github.com/golang/geo/s2"

	"sectionrouter/pkg/geo"
	"sectionrouter/pkg/graph"
)

// maxSnapDistMeters bounds how far a query point may sit from the nearest
// section before Snap gives up rather than returning a useless match.
const maxSnapDistMeters = 500.0

// ErrPointTooFar is returned when the query point is too far from any
// section's geometry to snap usefully.
var ErrPointTooFar = errors.New("routing: point too far from any section")

// snapCellLevel controls the s2 cell bucket granularity used by Snapper.
// Level 13 cells are roughly 1-2 km across at mid-latitudes, wide enough
// that a section's endpoints rarely span more than a couple of buckets.
const snapCellLevel = 13

// segmentRef is one polyline leg of a section, indexed by the s2 cells its
// bounding points fall into.
type segmentRef struct {
	section graph.SectionId
	a, b    geo.Point
}

// Snapper finds the section nearest a query coordinate. Grounded on the
// reference engine's grid-bucket snapper, with buckets keyed by s2.CellID
// instead of raw degree-floor division so the same structure works
// uniformly near the antimeridian and poles.
type Snapper struct {
	buckets map[s2.CellID][]segmentRef
}

// NewSnapper indexes every leg of every section's polyline into s2-cell
// buckets.
func NewSnapper(g *graph.Graph) *Snapper {
	s := &Snapper{buckets: make(map[s2.CellID][]segmentRef)}
	for _, id := range g.Vertices() {
		section, ok := g.Attributes(id)
		if !ok || len(section.Path) < 2 {
			continue
		}
		for i := 0; i+1 < len(section.Path); i++ {
			ref := segmentRef{section: id, a: section.Path[i], b: section.Path[i+1]}
			for _, cell := range coveringCells(ref.a, ref.b) {
				s.buckets[cell] = append(s.buckets[cell], ref)
			}
		}
	}
	return s
}

func cellFor(p geo.Point) s2.CellID {
	return s2.CellIDFromLatLng(s2.LatLngFromDegrees(p.Lat, p.Lon)).Parent(snapCellLevel)
}

// coveringCells buckets a segment under the cell of each endpoint, plus
// the cells of a midpoint so a long leg crossing a bucket boundary is
// still found by a search centered on either end.
func coveringCells(a, b geo.Point) []s2.CellID {
	mid := geo.Point{Lat: (a.Lat + b.Lat) / 2, Lon: (a.Lon + b.Lon) / 2}
	cells := []s2.CellID{cellFor(a), cellFor(b), cellFor(mid)}
	return dedupCells(cells)
}

func dedupCells(cells []s2.CellID) []s2.CellID {
	out := cells[:0:0]
	for _, c := range cells {
		found := false
		for _, existing := range out {
			if existing == c {
				found = true
				break
			}
		}
		if !found {
			out = append(out, c)
		}
	}
	return out
}

// neighborOffsets are small degree offsets used to probe the eight buckets
// surrounding a query point's own cell, since s2's own neighbor-traversal
// API isn't exercised elsewhere in this codebase's grounding material.
var neighborOffsets = []struct{ dLat, dLon float64 }{
	{0, 0},
	{1, 0}, {-1, 0}, {0, 1}, {0, -1},
	{1, 1}, {1, -1}, {-1, 1}, {-1, -1},
}

// probeDegrees approximates the width of a level-13 s2 cell in degrees of
// latitude, enough to push a probe point into each neighboring bucket.
const probeDegrees = 0.01

// SnapResult is the outcome of a successful Snap: the nearest section and
// the distance from the query point to the closest point on its geometry.
type SnapResult struct {
	Section graph.SectionId
	DistM   float64
}

// Snap returns the section whose polyline passes closest to p, searching
// the query point's own s2 bucket and its eight neighbors. Every leg of
// every candidate section is measured and the per-section minimum kept,
// since a section's legs can land in different buckets and an early leg
// is not necessarily its closest.
func (s *Snapper) Snap(p geo.Point) (SnapResult, error) {
	bestPerSection := make(map[graph.SectionId]float64)

	for _, off := range neighborOffsets {
		probe := geo.Point{Lat: p.Lat + off.dLat*probeDegrees, Lon: p.Lon + off.dLon*probeDegrees}
		for _, ref := range s.buckets[cellFor(probe)] {
			dist, _ := geo.PointToSegmentDist(p, ref.a, ref.b)
			if existing, ok := bestPerSection[ref.section]; !ok || dist < existing {
				bestPerSection[ref.section] = dist
			}
		}
	}

	best := SnapResult{DistM: math.Inf(1)}
	for section, dist := range bestPerSection {
		if dist < best.DistM {
			best = SnapResult{Section: section, DistM: dist}
		}
	}

	if math.IsInf(best.DistM, 1) || best.DistM > maxSnapDistMeters {
		return SnapResult{}, ErrPointTooFar
	}
	return best, nil
}
