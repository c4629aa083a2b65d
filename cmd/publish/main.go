package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"bachelor-sync/internal/config"
	"bachelor-sync/internal/export"
	"bachelor-sync/internal/pipeline"
)

func main() {
	var (
		inPath    = flag.String("in", "programs.csv", "normalized program csv")
		rulesPath = flag.String("rules", "pipeline.yaml", "pipeline config file (optional)")
		batchSize = flag.Int("batch-size", 0, "upsert batch size (overrides config)")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	env := config.Load()
	p, err := config.LoadPipeline(*rulesPath)
	if err != nil {
		log.Fatal(err)
	}

	opts := p.Publish
	if *batchSize > 0 {
		opts.BatchSize = *batchSize
	}

	programs, err := export.ReadProgramCSVFile(*inPath)
	if err != nil {
		log.Fatal(err)
	}

	res, err := pipeline.Publish(ctx, env, opts, programs)
	if err != nil {
		log.Printf("ERROR: publish: %v", err)
		os.Exit(4)
	}

	// failed batches only affect the summary, never the exit code
	log.Printf("published %d of %d programs (failed batches: %d)", res.Published, len(programs), res.FailedBatches)
}
