package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"strings"
	"time"

	"bachelor-sync/internal/config"
	"bachelor-sync/internal/export"
	"bachelor-sync/internal/pipeline"
)

func main() {
	var (
		outPath     = flag.String("out", "raw_programs.csv", "output csv path")
		rulesPath   = flag.String("rules", "pipeline.yaml", "pipeline config file (optional)")
		countries   = flag.String("countries", "", "comma-separated country filters (overrides config)")
		disciplines = flag.String("disciplines", "", "comma-separated discipline filters (overrides config)")
		maxPages    = flag.Int("max-pages", 0, "max listing pages per search (overrides config)")
		discover    = flag.Bool("discover", false, "fill empty country/discipline filters from the portal's facet pages")
		details     = flag.Bool("details", false, "fetch each program's detail page for requirements text")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Hour)
	defer cancel()

	env := config.Load()
	p, err := config.LoadPipeline(*rulesPath)
	if err != nil {
		log.Fatal(err)
	}

	targets := p.Portal
	if *countries != "" {
		targets.Countries = splitList(*countries)
	}
	if *disciplines != "" {
		targets.Disciplines = splitList(*disciplines)
	}
	if *maxPages > 0 {
		targets.MaxPages = *maxPages
	}
	if *discover {
		targets.Discover = true
	}
	if *details {
		targets.Details = true
	}

	raw, err := pipeline.Scrape(ctx, env, targets)
	if err != nil {
		log.Printf("ERROR: scrape: %v", err)
		if errors.Is(err, pipeline.ErrNoData) {
			os.Exit(2)
		}
		os.Exit(1)
	}

	if err := export.WriteRawCSVFile(*outPath, raw); err != nil {
		log.Fatal(err)
	}
	log.Printf("wrote %d raw records to %s", len(raw), *outPath)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
