package main

import (
	"errors"
	"flag"
	"log"
	"os"

	"bachelor-sync/internal/config"
	"bachelor-sync/internal/export"
	"bachelor-sync/internal/pipeline"
)

func main() {
	var (
		inPath    = flag.String("in", "raw_programs.csv", "raw csv produced by the scrape stage")
		outPath   = flag.String("out", "programs.csv", "normalized program csv")
		rulesPath = flag.String("rules", "pipeline.yaml", "pipeline config file (optional)")
	)
	flag.Parse()

	p, err := config.LoadPipeline(*rulesPath)
	if err != nil {
		log.Fatal(err)
	}

	raw, err := export.ReadRawCSVFile(*inPath)
	if err != nil {
		log.Fatal(err)
	}

	programs, stats, err := pipeline.Process(raw, p.Normalize)
	log.Printf(
		"processed %d records: valid=%d dropped=%d (institution=%d title=%d degree=%d) deduped=%d",
		stats.In, stats.Valid, stats.Dropped(),
		stats.DroppedInstitution, stats.DroppedTitle, stats.DroppedDegreeLevel,
		stats.Deduped,
	)
	if err != nil {
		log.Printf("ERROR: process: %v", err)
		if errors.Is(err, pipeline.ErrNoValid) {
			os.Exit(3)
		}
		os.Exit(1)
	}

	if err := export.WriteProgramCSVFile(*outPath, programs); err != nil {
		log.Fatal(err)
	}
	log.Printf("wrote %d programs to %s", len(programs), *outPath)
}
