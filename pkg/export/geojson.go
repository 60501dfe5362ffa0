// Package export renders a planned route or the whole section graph as
// GeoJSON, the concrete shape of the image/DOT exporter spec.md treats as
// an external collaborator: this package is that collaborator.
package export

import (
	"errors"

	"github.com/paulmach/go.geojson"

	"sectionrouter/pkg/geo"
	"sectionrouter/pkg/graph"
)

// ErrEmptyPath is returned by Route when given a path with no sections.
var ErrEmptyPath = errors.New("export: path has no sections")

// Route builds a FeatureCollection containing one LineString feature per
// section of path, in order, each annotated with its SectionId and way
// id so the rendered route can be cross-referenced back to OSM.
func Route(g *graph.Graph, path []graph.SectionId) (*geojson.FeatureCollection, error) {
	if len(path) == 0 {
		return nil, ErrEmptyPath
	}

	fc := geojson.NewFeatureCollection()
	for _, id := range path {
		section, ok := g.Attributes(id)
		if !ok {
			continue
		}
		feature := geojson.NewLineStringFeature(toLineString(section.Path))
		feature.SetProperty("section_id", string(id))
		feature.SetProperty("way_id", section.Way)
		feature.SetProperty("length_m", section.LengthM)
		fc.AddFeature(feature)
	}
	return fc, nil
}

// Graph builds a FeatureCollection containing every section of g as its
// own LineString feature, for visual sanity-checking a build against the
// source imagery before ever planning a route over it.
func Graph(g *graph.Graph) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, id := range g.Vertices() {
		section, ok := g.Attributes(id)
		if !ok {
			continue
		}
		feature := geojson.NewLineStringFeature(toLineString(section.Path))
		feature.SetProperty("section_id", string(id))
		feature.SetProperty("way_id", section.Way)
		fc.AddFeature(feature)
	}
	return fc
}

// toLineString converts a section's polyline to GeoJSON's [lon, lat]
// coordinate order.
func toLineString(path []geo.Point) [][]float64 {
	coords := make([][]float64, len(path))
	for i, p := range path {
		coords[i] = []float64{p.Lon, p.Lat}
	}
	return coords
}
