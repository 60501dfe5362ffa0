// Command benchmark drives a worker pool of planner queries against one
// read-only graph, per spec.md §5's concurrency policy: N workers share
// the graph and pull (start, goal) queries off a work queue, writing
// results to a bounded channel. The planner itself takes no
// context.Context (cancellation is cooperative only between whole Plan
// calls), so cancellation here is a flag each worker checks before, not
// during, a query.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"sectionrouter/pkg/graph"
	"sectionrouter/pkg/osm"
	"sectionrouter/pkg/routing"
)

// query is one benchmark request: a (start, goal) pair of SectionId, the
// wire format spec.md §6 says callers pass directly.
type query struct {
	start, end graph.SectionId
}

// result is one worker's outcome for a single query.
type result struct {
	cost     float64
	pathLen  int
	err      error
	duration time.Duration
}

func main() {
	inputPath := flag.String("input", "", "Path to .osm XML file")
	queriesPath := flag.String("queries", "", "Path to a file of \"start_section_id,end_section_id\" lines")
	workers := flag.Int("workers", runtime.NumCPU(), "Number of concurrent query workers")
	timeout := flag.Duration("timeout", 30*time.Second, "Overall benchmark deadline")
	aggressive := flag.Bool("aggressive-prune", false, "Drop unreferenced nodes even when they carry tags")
	flag.Parse()

	if *inputPath == "" || *queriesPath == "" {
		fmt.Fprintln(os.Stderr, "Usage: benchmark --input <file.osm> --queries <pairs.txt> [--workers N] [--timeout 30s]")
		os.Exit(1)
	}

	f, err := os.Open(*inputPath)
	if err != nil {
		log.Fatalf("Failed to open input file: %v", err)
	}
	data, err := osm.Load(f)
	f.Close()
	if err != nil {
		log.Fatalf("Failed to load OSM data: %v", err)
	}

	mode := osm.Conservative
	if *aggressive {
		mode = osm.Aggressive
	}
	data = osm.Filter(data, mode)
	g := graph.Build(data)
	log.Printf("Graph built: %d sections", g.NumVertices())

	queries, err := loadQueries(*queriesPath)
	if err != nil {
		log.Fatalf("Failed to load queries: %v", err)
	}
	log.Printf("Loaded %d queries, running with %d workers", len(queries), *workers)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	var cancelled atomic.Bool
	go func() {
		<-ctx.Done()
		cancelled.Store(true)
	}()

	work := make(chan query, len(queries))
	for _, q := range queries {
		work <- q
	}
	close(work)

	results := make(chan result, len(queries))
	var wg sync.WaitGroup
	for i := 0; i < *workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for q := range work {
				if cancelled.Load() {
					results <- result{err: context.DeadlineExceeded}
					continue
				}
				start := time.Now()
				res, err := routing.Plan(g, q.start, q.end, false)
				elapsed := time.Since(start)
				if err != nil {
					results <- result{err: err, duration: elapsed}
					continue
				}
				results <- result{cost: res.Cost, pathLen: len(res.Path), duration: elapsed}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	summarize(results, len(queries))
}

func loadQueries(path string) ([]query, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var queries []query
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, ",", 2)
		if len(parts) != 2 {
			continue
		}
		queries = append(queries, query{
			start: graph.SectionId(strings.TrimSpace(parts[0])),
			end:   graph.SectionId(strings.TrimSpace(parts[1])),
		})
	}
	return queries, scanner.Err()
}

func summarize(results <-chan result, total int) {
	var succeeded, noPath, skipped, failed int
	var totalDuration time.Duration
	var totalCost float64

	for r := range results {
		totalDuration += r.duration
		switch {
		case r.err == context.DeadlineExceeded:
			skipped++
		case r.err == routing.ErrNoPath:
			noPath++
		case r.err != nil:
			failed++
		default:
			succeeded++
			totalCost += r.cost
		}
	}

	fmt.Printf("Queries: %d total, %d succeeded, %d no-path, %d skipped, %d failed\n",
		total, succeeded, noPath, skipped, failed)
	if succeeded > 0 {
		fmt.Printf("Average cost: %.1fm\n", totalCost/float64(succeeded))
	}
	if total > 0 {
		fmt.Printf("Average query latency: %s\n", (totalDuration / time.Duration(total)).Round(time.Microsecond))
	}
}
