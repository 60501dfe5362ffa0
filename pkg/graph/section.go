package graph

import (
	"fmt"

	"sectionrouter/pkg/geo"
	"sectionrouter/pkg/osm"
)

// SectionId is the wire identifier of a graph vertex: "<way_id>_<index>",
// index 0-based and monotonic in the way's node order. Callers (the
// benchmark corpus, the HTTP API) pass these strings directly; internally
// the graph stores vertices by dense integer index and uses SectionId
// only at this boundary.
type SectionId string

func sectionID(wayID int64, index int) SectionId {
	return SectionId(fmt.Sprintf("%d_%d", wayID, index))
}

// Section is the attribute bundle attached to a graph vertex.
type Section struct {
	Way        int64
	StartNode  osm.NodeID
	EndNode    osm.NodeID
	LengthM    float64
	Path       []geo.Point
	StartPoint geo.Point
	EndPoint   geo.Point
	Tags       osm.Tags
}
