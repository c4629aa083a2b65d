package export

import (
	"bytes"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"bachelor-sync/internal/domain"
)

func TestRawCSVRoundTrip(t *testing.T) {
	ts := time.Date(2025, 11, 3, 9, 30, 0, 0, time.UTC)
	records := []domain.RawProgram{
		{
			Title:           "BSc Physics",
			Institution:     "Example U",
			DegreeLevel:     "Bachelor",
			RawLocation:     "Berlin, Germany",
			RawDuration:     "3 years",
			RawLanguage:     "English",
			RawTuition:      "2,000 EUR / year",
			RawRequirements: "TOEFL iBT: 80; IELTS 6.5",
			URL:             "https://portal.test/studies/12345",
			Page:            1,
			Position:        0,
			ScrapedAt:       ts,
		},
		{
			// commas and quotes must survive the trip
			Title:       `BSc "Applied" Maths, Honours`,
			Institution: "Other University",
			DegreeLevel: "Bachelor",
			Page:        2,
			Position:    7,
			ScrapedAt:   ts,
		},
	}

	var buf bytes.Buffer
	if err := WriteRawCSV(&buf, records); err != nil {
		t.Fatalf("WriteRawCSV error: %v", err)
	}

	got, err := ReadRawCSV(&buf)
	if err != nil {
		t.Fatalf("ReadRawCSV error: %v", err)
	}

	if !reflect.DeepEqual(got, records) {
		t.Errorf("Round trip mismatch:\n got %+v\nwant %+v", got, records)
	}
}

func TestProgramCSVRoundTrip(t *testing.T) {
	ts := time.Date(2025, 11, 3, 9, 30, 0, 0, time.UTC)
	programs := []domain.Program{
		{
			Key:            "abc123",
			Institution:    "Example U",
			Title:          "BSc Physics",
			DegreeLevel:    "Bachelor",
			City:           "Berlin",
			Country:        "Germany",
			DurationMonths: 36,
			Language:       "en",
			TuitionEUR:     2000,
			TOEFLMin:       80,
			IELTSMin:       6.5,
			DuolingoMin:    105,
			URL:            "https://portal.test/studies/12345",
			LastSeen:       ts,
		},
		{
			// unknown duration/tuition/scores stay unknown after the trip
			Key:         "def456",
			Institution: "Other University",
			Title:       "BSc Chemistry",
			DegreeLevel: "Bachelor",
			LastSeen:    ts,
		},
	}

	var buf bytes.Buffer
	if err := WriteProgramCSV(&buf, programs); err != nil {
		t.Fatalf("WriteProgramCSV error: %v", err)
	}

	got, err := ReadProgramCSV(&buf)
	if err != nil {
		t.Fatalf("ReadProgramCSV error: %v", err)
	}

	if !reflect.DeepEqual(got, programs) {
		t.Errorf("Round trip mismatch:\n got %+v\nwant %+v", got, programs)
	}
}

func TestProgramCSVUnknownsAreEmpty(t *testing.T) {
	var buf bytes.Buffer
	err := WriteProgramCSV(&buf, []domain.Program{
		{Key: "k", Institution: "U", Title: "T", DegreeLevel: "Bachelor", LastSeen: time.Unix(0, 0)},
	})
	if err != nil {
		t.Fatalf("WriteProgramCSV error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected header + 1 row, got %d lines", len(lines))
	}
	// duration_months and tuition_eur columns are empty, not "0"
	if strings.Contains(lines[1], ",0,") {
		t.Errorf("Expected unknown numerics to be empty, got row %q", lines[1])
	}
}

func TestReadRejectsWrongHeader(t *testing.T) {
	in := "not,the,right,header\n"
	if _, err := ReadProgramCSV(strings.NewReader(in)); err == nil {
		t.Error("Expected error for wrong header")
	}
	if _, err := ReadRawCSV(strings.NewReader(in)); err == nil {
		t.Error("Expected error for wrong header")
	}
}

func TestCSVFileHelpers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "programs.csv")
	ts := time.Date(2025, 11, 3, 9, 30, 0, 0, time.UTC)
	programs := []domain.Program{
		{Key: "k", Institution: "U", Title: "T", DegreeLevel: "Bachelor", LastSeen: ts},
	}

	if err := WriteProgramCSVFile(path, programs); err != nil {
		t.Fatalf("WriteProgramCSVFile error: %v", err)
	}
	got, err := ReadProgramCSVFile(path)
	if err != nil {
		t.Fatalf("ReadProgramCSVFile error: %v", err)
	}
	if len(got) != 1 || got[0].Key != "k" {
		t.Errorf("Expected the written program back, got %+v", got)
	}
}
