package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"runtime/debug"
	"time"

	"sectionrouter/pkg/api"
	"sectionrouter/pkg/graph"
	"sectionrouter/pkg/osm"
	"sectionrouter/pkg/routing"
)

func main() {
	inputPath := flag.String("input", "", "Path to .osm XML file")
	port := flag.Int("port", 8080, "HTTP port")
	corsOrigin := flag.String("cors-origin", "", "CORS allowed origin (empty = same-origin)")
	aggressive := flag.Bool("aggressive-prune", false, "Drop unreferenced nodes even when they carry tags (default keeps tagged ones)")
	bboxFlag := flag.String("bbox", "", "Bounding box filter: minLat,minLon,maxLat,maxLon")
	flag.Parse()

	if *inputPath == "" {
		fmt.Fprintln(os.Stderr, "Usage: server --input <file.osm> [--port 8080] [--bbox minLat,minLon,maxLat,maxLon]")
		os.Exit(1)
	}

	var loadOpts osm.LoadOptions
	if *bboxFlag != "" {
		var minLat, minLon, maxLat, maxLon float64
		if _, err := fmt.Sscanf(*bboxFlag, "%f,%f,%f,%f", &minLat, &minLon, &maxLat, &maxLon); err != nil {
			log.Fatalf("Invalid bbox format (expected minLat,minLon,maxLat,maxLon): %v", err)
		}
		loadOpts.BBox = osm.BBox{MinLat: minLat, MaxLat: maxLat, MinLon: minLon, MaxLon: maxLon}
		log.Printf("Using bounding box filter: lat [%.4f, %.4f], lon [%.4f, %.4f]", minLat, maxLat, minLon, maxLon)
	}

	start := time.Now()

	log.Printf("Opening %s...", *inputPath)
	f, err := os.Open(*inputPath)
	if err != nil {
		log.Fatalf("Failed to open input file: %v", err)
	}
	defer f.Close()

	log.Println("Parsing OSM XML...")
	data, err := osm.Load(f, loadOpts)
	if err != nil {
		log.Fatalf("Failed to load OSM data: %v", err)
	}
	log.Printf("Parsed %d nodes, %d ways", len(data.Nodes), len(data.Ways))

	mode := osm.Conservative
	if *aggressive {
		mode = osm.Aggressive
	}
	log.Println("Filtering to driveable network...")
	data = osm.Filter(data, mode)
	log.Printf("Filtered: %d nodes, %d ways", len(data.Nodes), len(data.Ways))

	log.Println("Building section graph...")
	g := graph.Build(data)
	log.Printf("Graph: %d sections", g.NumVertices())

	components := graph.AnalyzeComponents(g)
	log.Printf("Connectivity: %d components, largest covers %.1f%% of sections",
		components.Count, components.LargestFraction*100)

	log.Println("Indexing sections for coordinate snapping...")
	snapper := routing.NewSnapper(g)

	runtime.GC()
	debug.FreeOSMemory()

	log.Printf("Ready in %s", time.Since(start).Round(time.Millisecond))

	addr := fmt.Sprintf(":%d", *port)
	cfg := api.DefaultConfig(addr)
	cfg.CORSOrigin = *corsOrigin

	stats := api.StatsResponse{
		NumSections:              g.NumVertices(),
		Components:               components.Count,
		LargestComponentFraction: components.LargestFraction,
	}

	handlers := api.NewHandlers(g, snapper, stats)
	srv := api.NewServer(cfg, handlers)

	if err := api.ListenAndServe(srv); err != nil {
		log.Printf("Server stopped: %v", err)
		os.Exit(1)
	}
}
