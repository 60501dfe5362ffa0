package osm

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"

	pmosm "github.com/paulmach/osm"
)

// ErrInputMalformed is returned by Load when the document cannot be
// trusted as a well-formed OSM extract: the XML itself doesn't parse, or
// the mandatory <bounds>/version information that every .osm export
// carries is missing.
type ErrInputMalformed struct {
	Reason string
}

func (e *ErrInputMalformed) Error() string {
	return fmt.Sprintf("osm: malformed input: %s", e.Reason)
}

// Bounds is the bounding box an OSM extract declares it covers.
type Bounds struct {
	MinLat, MaxLat float64
	MinLon, MaxLon float64
}

// Data is the raw, uncoerced-to-graph contents of an OSM XML document:
// every node and way it declares, keyed by id, plus the extract's bounds.
type Data struct {
	Bounds Bounds
	Nodes  map[NodeID]*Node
	Ways   map[int64]*Way
}

// BBox restricts Load to a geographic region: a way survives only if
// every one of its nodes falls inside the box. Leaving a LoadOptions'
// BBox as its zero value disables the filter.
type BBox struct {
	MinLat, MaxLat float64
	MinLon, MaxLon float64
}

// IsZero reports whether b is the unset bounding box.
func (b BBox) IsZero() bool {
	return b == BBox{}
}

// Contains reports whether (lat, lon) falls inside b.
func (b BBox) Contains(lat, lon float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lon >= b.MinLon && lon <= b.MaxLon
}

// LoadOptions configures Load.
type LoadOptions struct {
	BBox BBox
}

// Load reads a complete .osm XML document from r and decodes it into
// Data. It does not filter by road type or connectivity — every node and
// way in the document survives, including ones a router would never use
// (footpaths, buildings, disused rail). Call Filter on the result to cut
// that down to a driveable network. It does, optionally, filter by
// geographic extent: with a non-zero opts.BBox, ways with any node
// outside the box are dropped during the scan, the same semantics a
// bounded regional extract implies.
//
// Tag values are coerced from their wire strings in this fixed order:
// booleans ("true"/"yes"/"t"/"y" and "false"/"no"/"f"/"n"), integers,
// floats, and finally the original string when none of those parse.
func Load(r io.Reader, opts ...LoadOptions) (*Data, error) {
	var opt LoadOptions
	if len(opts) > 0 {
		opt = opts[0]
	}
	useBBox := !opt.BBox.IsZero()
	doc := &pmosm.OSM{}
	dec := xml.NewDecoder(r)
	if err := dec.Decode(doc); err != nil {
		return nil, &ErrInputMalformed{Reason: fmt.Sprintf("invalid xml: %v", err)}
	}
	if doc.Version == "" {
		return nil, &ErrInputMalformed{Reason: "missing version attribute on <osm>"}
	}
	if doc.Bounds == nil {
		return nil, &ErrInputMalformed{Reason: "missing <bounds> element"}
	}

	data := &Data{
		Bounds: Bounds{
			MinLat: doc.Bounds.MinLat,
			MaxLat: doc.Bounds.MaxLat,
			MinLon: doc.Bounds.MinLon,
			MaxLon: doc.Bounds.MaxLon,
		},
		Nodes: make(map[NodeID]*Node, len(doc.Nodes)),
		Ways:  make(map[int64]*Way, len(doc.Ways)),
	}

	for _, n := range doc.Nodes {
		data.Nodes[NodeID(n.ID)] = &Node{
			ID:   NodeID(n.ID),
			Lat:  n.Lat,
			Lon:  n.Lon,
			Tags: coerceTags(n.Tags),
		}
	}

wayLoop:
	for _, w := range doc.Ways {
		nodes := make([]NodeID, len(w.Nodes))
		for i, wn := range w.Nodes {
			if useBBox {
				n, ok := data.Nodes[NodeID(wn.ID)]
				if !ok || !opt.BBox.Contains(n.Lat, n.Lon) {
					continue wayLoop
				}
			}
			nodes[i] = NodeID(wn.ID)
		}
		data.Ways[int64(w.ID)] = &Way{
			ID:    int64(w.ID),
			Tags:  coerceTags(w.Tags),
			Nodes: nodes,
		}
	}

	return data, nil
}

func coerceTags(raw pmosm.Tags) Tags {
	tags := make(Tags, len(raw))
	for _, tag := range raw {
		tags[tag.Key] = coerceValue(tag.Value)
	}
	return tags
}

func coerceValue(s string) TagValue {
	switch s {
	case "true", "yes", "t", "y":
		return true
	case "false", "no", "f", "n":
		return false
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}
