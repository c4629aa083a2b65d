package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"path/filepath"
	"time"

	"bachelor-sync/internal/config"
	"bachelor-sync/internal/domain"
	"bachelor-sync/internal/export"
	"bachelor-sync/internal/pipeline"
)

func main() {
	var (
		rulesPath = flag.String("rules", "pipeline.yaml", "pipeline config file (optional)")
		workDir   = flag.String("workdir", "data", "directory for stage csv snapshots ('' = none)")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 4*time.Hour)
	defer cancel()

	env := config.Load()
	p, err := config.LoadPipeline(*rulesPath)
	if err != nil {
		log.Fatal(err)
	}

	start := time.Now()

	raw, err := pipeline.Scrape(ctx, env, p.Portal)
	if err != nil {
		log.Printf("ERROR: scrape: %v", err)
		os.Exit(exitCode(err))
	}
	snapshot(*workDir, "raw_programs.csv", func(path string) error {
		return export.WriteRawCSVFile(path, raw)
	})

	programs, stats, err := pipeline.Process(raw, p.Normalize)
	if err != nil {
		log.Printf("ERROR: process: %v", err)
		os.Exit(exitCode(err))
	}
	snapshot(*workDir, "programs.csv", func(path string) error {
		return export.WriteProgramCSVFile(path, programs)
	})

	res, err := pipeline.Publish(ctx, env, p.Publish, programs)
	report := domain.RunReport{
		Fetched:       len(raw),
		Valid:         stats.Valid,
		Dropped:       stats.Dropped(),
		Deduped:       stats.Deduped,
		Published:     res.Published,
		FailedBatches: res.FailedBatches,
	}
	printReport(report, time.Since(start))
	if err != nil {
		log.Printf("ERROR: publish: %v", err)
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	switch {
	case errors.Is(err, pipeline.ErrNoData):
		return 2
	case errors.Is(err, pipeline.ErrNoValid):
		return 3
	case err != nil:
		return 4
	}
	return 0
}

// snapshot writes a stage csv for debugging; failures are logged, not fatal.
func snapshot(dir, name string, write func(path string) error) {
	if dir == "" {
		return
	}
	path := filepath.Join(dir, name)
	if err := write(path); err != nil {
		log.Printf("WARN: snapshot %s: %v", path, err)
		return
	}
	log.Printf("snapshot written to %s", path)
}

func printReport(r domain.RunReport, elapsed time.Duration) {
	log.Printf(
		"run done in %s: fetched=%d valid=%d dropped=%d deduped=%d published=%d failed_batches=%d",
		elapsed.Round(time.Second),
		r.Fetched, r.Valid, r.Dropped, r.Deduped, r.Published, r.FailedBatches,
	)
}
