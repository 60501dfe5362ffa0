// Command route plans a single route between two coordinates over an OSM
// XML extract and prints the result, without starting an HTTP server.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"sectionrouter/pkg/export"
	"sectionrouter/pkg/geo"
	"sectionrouter/pkg/graph"
	"sectionrouter/pkg/osm"
	"sectionrouter/pkg/routing"
)

func main() {
	inputPath := flag.String("input", "", "Path to .osm XML file")
	startLat := flag.Float64("start-lat", 0, "Start latitude")
	startLon := flag.Float64("start-lon", 0, "Start longitude")
	endLat := flag.Float64("end-lat", 0, "End latitude")
	endLon := flag.Float64("end-lon", 0, "End longitude")
	geojsonOut := flag.String("geojson", "", "Write the planned route as GeoJSON to this path")
	aggressive := flag.Bool("aggressive-prune", false, "Drop unreferenced nodes even when they carry tags")
	flag.Parse()

	if *inputPath == "" {
		fmt.Fprintln(os.Stderr, "Usage: route --input <file.osm> --start-lat .. --start-lon .. --end-lat .. --end-lon ..")
		os.Exit(1)
	}

	f, err := os.Open(*inputPath)
	if err != nil {
		log.Fatalf("Failed to open input file: %v", err)
	}
	defer f.Close()

	data, err := osm.Load(f)
	if err != nil {
		log.Fatalf("Failed to load OSM data: %v", err)
	}

	mode := osm.Conservative
	if *aggressive {
		mode = osm.Aggressive
	}
	data = osm.Filter(data, mode)

	g := graph.Build(data)
	snapper := routing.NewSnapper(g)

	start, err := snapper.Snap(geo.Point{Lat: *startLat, Lon: *startLon})
	if err != nil {
		log.Fatalf("Failed to snap start point: %v", err)
	}
	end, err := snapper.Snap(geo.Point{Lat: *endLat, Lon: *endLon})
	if err != nil {
		log.Fatalf("Failed to snap end point: %v", err)
	}

	result, err := routing.Plan(g, start.Section, end.Section, false)
	if err != nil {
		log.Fatalf("Planning failed: %v", err)
	}

	fmt.Printf("Route: %d sections, cost %.1fm\n", len(result.Path), result.Cost)
	for _, id := range result.Path {
		fmt.Println(" ", id)
	}

	if *geojsonOut != "" {
		fc, err := export.Route(g, result.Path)
		if err != nil {
			log.Fatalf("Failed to build GeoJSON: %v", err)
		}
		out, err := os.Create(*geojsonOut)
		if err != nil {
			log.Fatalf("Failed to create %s: %v", *geojsonOut, err)
		}
		defer out.Close()
		if err := json.NewEncoder(out).Encode(fc); err != nil {
			log.Fatalf("Failed to write GeoJSON: %v", err)
		}
		fmt.Printf("Wrote route geometry to %s\n", *geojsonOut)
	}
}
