// Package export reads and writes the CSV snapshots that carry records
// between pipeline stages. Column order is fixed so snapshots stay
// diffable across runs.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"bachelor-sync/internal/domain"
)

// Keep header order EXACT; the process stage and external debugging both
// rely on it.
var rawHeader = []string{
	"title",
	"institution",
	"degree_level",
	"location",
	"duration",
	"language",
	"tuition",
	"requirements",
	"url",
	"page",
	"position",
	"scraped_at",
}

// WriteRawCSV writes the scrape stage's snapshot.
func WriteRawCSV(w io.Writer, records []domain.RawProgram) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(rawHeader); err != nil {
		return err
	}

	for _, r := range records {
		row := []string{
			r.Title,
			r.Institution,
			r.DegreeLevel,
			r.RawLocation,
			r.RawDuration,
			r.RawLanguage,
			r.RawTuition,
			r.RawRequirements,
			r.URL,
			strconv.Itoa(r.Page),
			strconv.Itoa(r.Position),
			r.ScrapedAt.UTC().Format(time.RFC3339),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadRawCSV reads a snapshot produced by WriteRawCSV.
func ReadRawCSV(r io.Reader) ([]domain.RawProgram, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(rawHeader)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("export: read raw header: %w", err)
	}
	if err := checkHeader(header, rawHeader); err != nil {
		return nil, err
	}

	var records []domain.RawProgram
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("export: read raw row: %w", err)
		}

		page, err := strconv.Atoi(row[9])
		if err != nil {
			return nil, fmt.Errorf("export: bad page %q: %w", row[9], err)
		}
		position, err := strconv.Atoi(row[10])
		if err != nil {
			return nil, fmt.Errorf("export: bad position %q: %w", row[10], err)
		}
		scrapedAt, err := time.Parse(time.RFC3339, row[11])
		if err != nil {
			return nil, fmt.Errorf("export: bad scraped_at %q: %w", row[11], err)
		}

		records = append(records, domain.RawProgram{
			Title:           row[0],
			Institution:     row[1],
			DegreeLevel:     row[2],
			RawLocation:     row[3],
			RawDuration:     row[4],
			RawLanguage:     row[5],
			RawTuition:      row[6],
			RawRequirements: row[7],
			URL:             row[8],
			Page:            page,
			Position:        position,
			ScrapedAt:       scrapedAt,
		})
	}
	return records, nil
}

// WriteRawCSVFile writes the snapshot to path, creating parent dirs.
func WriteRawCSVFile(path string, records []domain.RawProgram) error {
	return writeFile(path, func(w io.Writer) error {
		return WriteRawCSV(w, records)
	})
}

// ReadRawCSVFile reads the snapshot at path.
func ReadRawCSVFile(path string) ([]domain.RawProgram, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadRawCSV(f)
}

func writeFile(path string, write func(io.Writer) error) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func checkHeader(got, want []string) error {
	if len(got) != len(want) {
		return fmt.Errorf("export: header has %d columns, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			return fmt.Errorf("export: header column %d is %q, want %q", i, got[i], want[i])
		}
	}
	return nil
}
