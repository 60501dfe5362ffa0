package api

import (
	"encoding/json"
	"errors"
	"math"
	"mime"
	"net/http"

	"sectionrouter/pkg/geo"
	"sectionrouter/pkg/graph"
	"sectionrouter/pkg/routing"
)

// Handlers holds the HTTP handlers and their dependencies. The planner is
// synchronous (spec.md §5): a request is served entirely within one call
// to routing.Plan, with no mid-search cancellation. The request-timeout
// context the middleware attaches is not consulted here, so it cuts short
// neither the search nor the response.
type Handlers struct {
	graph   *graph.Graph
	snapper *routing.Snapper
	stats   StatsResponse
}

// NewHandlers creates handlers serving routes over g, using snapper to
// resolve request coordinates to sections.
func NewHandlers(g *graph.Graph, snapper *routing.Snapper, stats StatsResponse) *Handlers {
	return &Handlers{
		graph:   g,
		snapper: snapper,
		stats:   stats,
	}
}

// HandleRoute handles POST /api/v1/route.
func (h *Handlers) HandleRoute(w http.ResponseWriter, r *http.Request) {
	// Enforce Content-Type.
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "application/json" {
		writeError(w, http.StatusBadRequest, "invalid_request", "")
		return
	}

	// Parse request.
	var req RouteRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1024)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "")
		return
	}

	// Validate coordinates.
	if err := validateCoord(req.Start); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_coordinates", "start")
		return
	}
	if err := validateCoord(req.End); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_coordinates", "end")
		return
	}

	startSnap, err := h.snapper.Snap(geo.Point{Lat: req.Start.Lat, Lon: req.Start.Lng})
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "point_too_far_from_road", "start")
		return
	}
	endSnap, err := h.snapper.Snap(geo.Point{Lat: req.End.Lat, Lon: req.End.Lng})
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "point_too_far_from_road", "end")
		return
	}

	result, err := routing.Plan(h.graph, startSnap.Section, endSnap.Section, false)
	if err != nil {
		if errors.Is(err, routing.ErrNoPath) {
			writeError(w, http.StatusNotFound, "no_path_found", "")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "")
		return
	}

	resp := RouteResponse{}
	for _, id := range result.Path {
		section, ok := h.graph.Attributes(id)
		if !ok {
			continue
		}
		geom := make([]LatLngJSON, len(section.Path))
		for i, p := range section.Path {
			geom[i] = LatLngJSON{Lat: p.Lat, Lng: p.Lon}
		}
		resp.Sections = append(resp.Sections, SectionJSON{
			SectionId:      string(id),
			WayId:          section.Way,
			DistanceMeters: section.LengthM,
			Geometry:       geom,
		})
		resp.TotalDistanceMeters += section.LengthM
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// HandleHealth handles GET /api/v1/health.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(HealthResponse{Status: "ok"})
}

// HandleStats handles GET /api/v1/stats.
func (h *Handlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.stats)
}

func validateCoord(ll LatLngJSON) error {
	if math.IsNaN(ll.Lat) || math.IsNaN(ll.Lng) || math.IsInf(ll.Lat, 0) || math.IsInf(ll.Lng, 0) {
		return errors.New("coordinates must be finite numbers")
	}
	if ll.Lat < -90 || ll.Lat > 90 || ll.Lng < -180 || ll.Lng > 180 {
		return errors.New("coordinates out of range")
	}
	return nil
}

func writeError(w http.ResponseWriter, status int, code, field string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Error: code, Field: field})
}
