package osm

import (
	"errors"
	"strings"
	"testing"
)

const sampleXML = `<?xml version="1.0" encoding="UTF-8"?>
<osm version="0.6" generator="test">
  <bounds minlat="0" maxlat="0.01" minlon="0" maxlon="0.01"/>
  <node id="1" lat="0.0000" lon="0.0000"/>
  <node id="2" lat="0.0000" lon="0.0010"/>
  <node id="3" lat="0.0000" lon="0.0020">
    <tag k="amenity" v="fuel"/>
  </node>
  <way id="100">
    <nd ref="1"/>
    <nd ref="2"/>
    <nd ref="3"/>
    <tag k="highway" v="residential"/>
    <tag k="oneway" v="yes"/>
    <tag k="lanes" v="2"/>
    <tag k="maxspeed" v="13.4"/>
  </way>
</osm>`

func TestLoadParsesNodesAndWays(t *testing.T) {
	data, err := Load(strings.NewReader(sampleXML))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(data.Nodes) != 3 {
		t.Fatalf("len(Nodes) = %d, want 3", len(data.Nodes))
	}
	if len(data.Ways) != 1 {
		t.Fatalf("len(Ways) = %d, want 1", len(data.Ways))
	}

	w := data.Ways[100]
	if len(w.Nodes) != 3 {
		t.Fatalf("way 100 has %d nodes, want 3", len(w.Nodes))
	}
	if !w.IsOneway() {
		t.Errorf("way 100 tagged oneway=yes should report IsOneway() == true")
	}

	if data.Bounds.MaxLon != 0.01 {
		t.Errorf("Bounds.MaxLon = %f, want 0.01", data.Bounds.MaxLon)
	}
}

func TestLoadCoercesTagValues(t *testing.T) {
	data, err := Load(strings.NewReader(sampleXML))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	w := data.Ways[100]

	if v, ok := w.Tags["oneway"].(bool); !ok || !v {
		t.Errorf("oneway tag = %v (%T), want bool true", w.Tags["oneway"], w.Tags["oneway"])
	}
	if v, ok := w.Tags["lanes"].(int64); !ok || v != 2 {
		t.Errorf("lanes tag = %v (%T), want int64 2", w.Tags["lanes"], w.Tags["lanes"])
	}
	if v, ok := w.Tags["maxspeed"].(float64); !ok || v != 13.4 {
		t.Errorf("maxspeed tag = %v (%T), want float64 13.4", w.Tags["maxspeed"], w.Tags["maxspeed"])
	}
	if v, ok := w.Tags["highway"].(string); !ok || v != "residential" {
		t.Errorf("highway tag = %v (%T), want string residential", w.Tags["highway"], w.Tags["highway"])
	}
}

func TestLoadBBoxDropsOutOfRangeWays(t *testing.T) {
	xml := `<?xml version="1.0" encoding="UTF-8"?>
<osm version="0.6" generator="test">
  <bounds minlat="0" maxlat="1" minlon="0" maxlon="1"/>
  <node id="1" lat="0.0" lon="0.0"/>
  <node id="2" lat="0.0" lon="0.001"/>
  <node id="3" lat="5.0" lon="5.0"/>
  <node id="4" lat="5.0" lon="5.001"/>
  <way id="100">
    <nd ref="1"/><nd ref="2"/>
    <tag k="highway" v="residential"/>
  </way>
  <way id="200">
    <nd ref="3"/><nd ref="4"/>
    <tag k="highway" v="residential"/>
  </way>
</osm>`

	data, err := Load(strings.NewReader(xml), LoadOptions{BBox: BBox{MinLat: -1, MaxLat: 1, MinLon: -1, MaxLon: 1}})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if _, ok := data.Ways[100]; !ok {
		t.Error("way 100 should survive: inside the bbox")
	}
	if _, ok := data.Ways[200]; ok {
		t.Error("way 200 should be dropped: outside the bbox")
	}
}

func TestLoadRejectsMissingBounds(t *testing.T) {
	xml := `<osm version="0.6"><node id="1" lat="0" lon="0"/></osm>`
	_, err := Load(strings.NewReader(xml))
	var malformed *ErrInputMalformed
	if !errors.As(err, &malformed) {
		t.Fatalf("Load() error = %v, want *ErrInputMalformed", err)
	}
}

func TestLoadRejectsMissingVersion(t *testing.T) {
	xml := `<osm><bounds minlat="0" maxlat="1" minlon="0" maxlon="1"/></osm>`
	_, err := Load(strings.NewReader(xml))
	var malformed *ErrInputMalformed
	if !errors.As(err, &malformed) {
		t.Fatalf("Load() error = %v, want *ErrInputMalformed", err)
	}
}

func TestLoadRejectsInvalidXML(t *testing.T) {
	_, err := Load(strings.NewReader("not xml at all"))
	var malformed *ErrInputMalformed
	if !errors.As(err, &malformed) {
		t.Fatalf("Load() error = %v, want *ErrInputMalformed", err)
	}
}

func TestCoerceValue(t *testing.T) {
	tests := []struct {
		in   string
		want TagValue
	}{
		{"true", true},
		{"yes", true},
		{"t", true},
		{"y", true},
		{"false", false},
		{"no", false},
		{"f", false},
		{"n", false},
		{"42", int64(42)},
		{"-7", int64(-7)},
		{"3.14", 3.14},
		{"residential", "residential"},
	}
	for _, tt := range tests {
		if got := coerceValue(tt.in); got != tt.want {
			t.Errorf("coerceValue(%q) = %v (%T), want %v (%T)", tt.in, got, got, tt.want, tt.want)
		}
	}
}
