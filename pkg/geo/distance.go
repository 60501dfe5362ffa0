// Package geo provides the great-circle distance primitives the routing
// graph and planner are built on: distance between two points and length
// of a polyline.
package geo

import (
	"errors"

	"github.com/paulmach/orb"
	orbgeo "github.com/paulmach/orb/geo"
)

// ErrDegenerateGeometry is returned by PolylineLengthMeters when fewer than two
// points are supplied — there is no line to measure.
var ErrDegenerateGeometry = errors.New("geo: polyline needs at least two points")

// Point is a geographic coordinate in degrees.
type Point struct {
	Lat float64
	Lon float64
}

func (p Point) orb() orb.Point {
	// orb.Point is (x, y) == (lon, lat).
	return orb.Point{p.Lon, p.Lat}
}

// DistanceMeters computes the haversine great-circle distance between two
// points on a sphere of orb.EarthRadius (the WGS-84 equatorial radius,
// 6378137 m). Admissible for A*: it never
// overestimates true road distance.
func DistanceMeters(a, b Point) float64 {
	return orbgeo.Distance(a.orb(), b.orb())
}

// PolylineLengthMeters sums pairwise great-circle distances along points.
// Returns ErrDegenerateGeometry if len(points) < 2.
func PolylineLengthMeters(points []Point) (float64, error) {
	if len(points) < 2 {
		return 0, ErrDegenerateGeometry
	}
	ls := make(orb.LineString, len(points))
	for i, p := range points {
		ls[i] = p.orb()
	}
	return orbgeo.LineStringLength(ls), nil
}
