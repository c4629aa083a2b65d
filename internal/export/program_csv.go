package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"bachelor-sync/internal/domain"
)

// Keep header order EXACT.
var programHeader = []string{
	"program_key",
	"institution",
	"title",
	"degree_level",
	"city",
	"country",
	"duration_months",
	"language",
	"tuition_eur",
	"toefl_min",
	"ielts_min",
	"duolingo_min",
	"url",
	"last_seen",
}

// WriteProgramCSV writes the process stage's snapshot, which is also what
// exportcsv hands to partners. Unknown numeric fields are written empty
// rather than as 0.
func WriteProgramCSV(w io.Writer, programs []domain.Program) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(programHeader); err != nil {
		return err
	}

	for _, p := range programs {
		duration := ""
		if p.DurationMonths > 0 {
			duration = strconv.Itoa(p.DurationMonths)
		}
		tuition := ""
		if p.TuitionEUR > 0 {
			tuition = strconv.Itoa(p.TuitionEUR)
		}
		toefl := ""
		if p.TOEFLMin > 0 {
			toefl = strconv.Itoa(p.TOEFLMin)
		}
		ielts := ""
		if p.IELTSMin > 0 {
			ielts = strconv.FormatFloat(p.IELTSMin, 'f', -1, 64)
		}
		duolingo := ""
		if p.DuolingoMin > 0 {
			duolingo = strconv.Itoa(p.DuolingoMin)
		}

		row := []string{
			p.Key,
			p.Institution,
			p.Title,
			p.DegreeLevel,
			p.City,
			p.Country,
			duration,
			p.Language,
			tuition,
			toefl,
			ielts,
			duolingo,
			p.URL,
			p.LastSeen.UTC().Format(time.RFC3339),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadProgramCSV reads a snapshot produced by WriteProgramCSV.
func ReadProgramCSV(r io.Reader) ([]domain.Program, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(programHeader)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("export: read program header: %w", err)
	}
	if err := checkHeader(header, programHeader); err != nil {
		return nil, err
	}

	var programs []domain.Program
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("export: read program row: %w", err)
		}

		duration := 0
		if row[6] != "" {
			duration, err = strconv.Atoi(row[6])
			if err != nil {
				return nil, fmt.Errorf("export: bad duration_months %q: %w", row[6], err)
			}
		}
		tuition := 0
		if row[8] != "" {
			tuition, err = strconv.Atoi(row[8])
			if err != nil {
				return nil, fmt.Errorf("export: bad tuition_eur %q: %w", row[8], err)
			}
		}
		toefl := 0
		if row[9] != "" {
			toefl, err = strconv.Atoi(row[9])
			if err != nil {
				return nil, fmt.Errorf("export: bad toefl_min %q: %w", row[9], err)
			}
		}
		ielts := 0.0
		if row[10] != "" {
			ielts, err = strconv.ParseFloat(row[10], 64)
			if err != nil {
				return nil, fmt.Errorf("export: bad ielts_min %q: %w", row[10], err)
			}
		}
		duolingo := 0
		if row[11] != "" {
			duolingo, err = strconv.Atoi(row[11])
			if err != nil {
				return nil, fmt.Errorf("export: bad duolingo_min %q: %w", row[11], err)
			}
		}
		lastSeen, err := time.Parse(time.RFC3339, row[13])
		if err != nil {
			return nil, fmt.Errorf("export: bad last_seen %q: %w", row[13], err)
		}

		programs = append(programs, domain.Program{
			Key:            row[0],
			Institution:    row[1],
			Title:          row[2],
			DegreeLevel:    row[3],
			City:           row[4],
			Country:        row[5],
			DurationMonths: duration,
			Language:       row[7],
			TuitionEUR:     tuition,
			TOEFLMin:       toefl,
			IELTSMin:       ielts,
			DuolingoMin:    duolingo,
			URL:            row[12],
			LastSeen:       lastSeen,
		})
	}
	return programs, nil
}

// WriteProgramCSVFile writes the snapshot to path, creating parent dirs.
func WriteProgramCSVFile(path string, programs []domain.Program) error {
	return writeFile(path, func(w io.Writer) error {
		return WriteProgramCSV(w, programs)
	})
}

// ReadProgramCSVFile reads the snapshot at path.
func ReadProgramCSVFile(path string) ([]domain.Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadProgramCSV(f)
}
