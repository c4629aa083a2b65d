package normalize

import (
	"testing"
	"time"

	"bachelor-sync/internal/domain"
)

func TestProgramKeyDeterministic(t *testing.T) {
	// Same program, different casing and spacing, must hash identically.
	a := ProgramKey("Example U", "BSc Physics")
	b := ProgramKey("  example   u ", "bsc  physics")

	if a != b {
		t.Errorf("Expected identical keys, got %q and %q", a, b)
	}
	if len(a) != 64 {
		t.Errorf("Expected 64 hex chars, got %d", len(a))
	}

	c := ProgramKey("Example U", "BSc Chemistry")
	if a == c {
		t.Error("Expected different programs to get different keys")
	}
}

func TestRunValidation(t *testing.T) {
	rules := DefaultRules()

	testCases := []struct {
		name string
		raw  domain.RawProgram
		want bool // kept?
	}{
		{"valid bachelor", domain.RawProgram{Title: "BSc Physics", Institution: "Example U", DegreeLevel: "Bachelor"}, true},
		{"level lowercase", domain.RawProgram{Title: "BSc Physics", Institution: "Example U", DegreeLevel: "  bachelor "}, true},
		{"empty institution", domain.RawProgram{Title: "BSc Physics", Institution: "", DegreeLevel: "Bachelor"}, false},
		{"n/a institution", domain.RawProgram{Title: "BSc Physics", Institution: "N/A", DegreeLevel: "Bachelor"}, false},
		{"empty title", domain.RawProgram{Title: "  ", Institution: "Example U", DegreeLevel: "Bachelor"}, false},
		{"master level", domain.RawProgram{Title: "MSc Physics", Institution: "Example U", DegreeLevel: "Master"}, false},
	}

	for _, tc := range testCases {
		out, _ := Run([]domain.RawProgram{tc.raw}, rules)
		if kept := len(out) == 1; kept != tc.want {
			t.Errorf("%s: kept=%v, want %v", tc.name, kept, tc.want)
		}
	}
}

func TestRunDropsMasterAndCounts(t *testing.T) {
	rules := DefaultRules()

	out, stats := Run([]domain.RawProgram{
		{Title: "MSc Data Science", Institution: "Example U", DegreeLevel: "Master"},
	}, rules)

	if len(out) != 0 {
		t.Errorf("Expected Master record to be excluded, got %d records", len(out))
	}
	if stats.DroppedDegreeLevel != 1 {
		t.Errorf("Expected DroppedDegreeLevel to be 1, got %d", stats.DroppedDegreeLevel)
	}
	if stats.Dropped() != 1 {
		t.Errorf("Expected total dropped to be 1, got %d", stats.Dropped())
	}
}

func TestRunDedupLastWriteWins(t *testing.T) {
	rules := DefaultRules()

	// Two spellings of the same program: exactly one survives and the
	// later record's field values win.
	out, stats := Run([]domain.RawProgram{
		{Title: "BSc Physics", Institution: "Example U", DegreeLevel: "Bachelor", RawDuration: "3 years", Page: 1, Position: 0},
		{Title: "bsc physics", Institution: "example u", DegreeLevel: "bachelor", RawDuration: "6 semesters", Page: 1, Position: 1},
	}, rules)

	if len(out) != 1 {
		t.Fatalf("Expected exactly 1 record after dedup, got %d", len(out))
	}
	if stats.Deduped != 1 {
		t.Errorf("Expected Deduped to be 1, got %d", stats.Deduped)
	}

	p := out[0]
	if p.DurationMonths != 36 {
		t.Errorf("Expected duration 36 months, got %d", p.DurationMonths)
	}
	// last-write-wins: the second record's spelling is kept
	if p.Title != "bsc physics" || p.Institution != "example u" {
		t.Errorf("Expected second record's fields to win, got %q / %q", p.Title, p.Institution)
	}
}

func TestRunDedupOrderIndependent(t *testing.T) {
	rules := DefaultRules()

	// Same records handed over in reverse arrival order: (Page, Position)
	// sorting must yield the same winner as sequential fetching would.
	out, _ := Run([]domain.RawProgram{
		{Title: "BSc Physics", Institution: "Example U", DegreeLevel: "Bachelor", RawDuration: "42 months", Page: 2, Position: 0},
		{Title: "BSc Physics", Institution: "Example U", DegreeLevel: "Bachelor", RawDuration: "3 years", Page: 1, Position: 4},
	}, rules)

	if len(out) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(out))
	}
	if out[0].DurationMonths != 42 {
		t.Errorf("Expected page-2 record to win with 42 months, got %d", out[0].DurationMonths)
	}
}

func TestRunUniqueKeys(t *testing.T) {
	rules := DefaultRules()

	out, _ := Run([]domain.RawProgram{
		{Title: "BSc Physics", Institution: "Example U", DegreeLevel: "Bachelor", Position: 0},
		{Title: "BSc Chemistry", Institution: "Example U", DegreeLevel: "Bachelor", Position: 1},
		{Title: "BSC  PHYSICS", Institution: "EXAMPLE U", DegreeLevel: "Bachelor", Position: 2},
	}, rules)

	seen := map[string]bool{}
	for _, p := range out {
		if seen[p.Key] {
			t.Errorf("Duplicate key in output: %s", p.Key)
		}
		seen[p.Key] = true
	}
	if len(out) != 2 {
		t.Errorf("Expected 2 unique programs, got %d", len(out))
	}
}

func TestDurationMonths(t *testing.T) {
	rules := DefaultRules()

	testCases := []struct {
		input    string
		expected int
	}{
		{"3 years", 36},
		{"3 Years full-time", 36},
		{"1 yr", 12},
		{"6 semesters", 36},
		{"4 Semester", 24},
		{"18 months", 18},
		{"", 0},
		{"N/A", 0},
		{"varies", 0},
	}

	for _, tc := range testCases {
		result := durationMonths(tc.input, rules)
		if result != tc.expected {
			t.Errorf("durationMonths(%q) = %d, want %d", tc.input, result, tc.expected)
		}
	}
}

func TestLanguageCode(t *testing.T) {
	rules := DefaultRules()

	testCases := []struct {
		input    string
		expected string
	}{
		{"English", "en"},
		{"  GERMAN ", "de"},
		{"Deutsch", "de"},
		{"en", "en"},
		{"en-US", "en"},
		{"en_GB", "en"},
		{"Klingon", ""},
		{"", ""},
		{"N/A", ""},
	}

	for _, tc := range testCases {
		result := languageCode(tc.input, rules)
		if result != tc.expected {
			t.Errorf("languageCode(%q) = %q, want %q", tc.input, result, tc.expected)
		}
	}
}

func TestTuitionEUR(t *testing.T) {
	testCases := []struct {
		input    string
		expected int
	}{
		{"2,000 EUR / year", 2000},
		{"€1500", 1500},
		{"10,000 USD", 8500},
		{"$10,000 per year", 8500},
		{"9,250 GBP", 10637},
		{"Free", 0},
		{"N/A", 0},
		{"", 0},
		{"contact the university", 0},
	}

	for _, tc := range testCases {
		result := tuitionEUR(tc.input)
		if result != tc.expected {
			t.Errorf("tuitionEUR(%q) = %d, want %d", tc.input, result, tc.expected)
		}
	}
}

func TestSplitLocation(t *testing.T) {
	testCases := []struct {
		input   string
		city    string
		country string
	}{
		{"Berlin, Germany", "Berlin", "Germany"},
		{"Berlin", "Berlin", ""},
		{"Enschede,  Netherlands", "Enschede", "Netherlands"},
		{"", "", ""},
		{"N/A", "", ""},
	}

	for _, tc := range testCases {
		city, country := splitLocation(tc.input)
		if city != tc.city || country != tc.country {
			t.Errorf("splitLocation(%q) = (%q, %q), want (%q, %q)", tc.input, city, country, tc.city, tc.country)
		}
	}
}

func TestEnglishScores(t *testing.T) {
	testCases := []struct {
		input    string
		toefl    int
		ielts    float64
		duolingo int
	}{
		{"TOEFL iBT: 80", 80, 0, 0},
		{"IELTS 6.5 overall", 0, 6.5, 0},
		{"Duolingo English Test 105", 0, 0, 105},
		{"TOEFL 90; IELTS 6.5; Duolingo 110", 90, 6.5, 110},
		{"ielts band of at least 7", 0, 7, 0},
		// out-of-scale numbers are noise, not scores
		{"TOEFL 500", 0, 0, 0},
		{"Duolingo 999", 0, 0, 0},
		{"Maths A-level required", 0, 0, 0},
		{"", 0, 0, 0},
	}

	for _, tc := range testCases {
		toefl, ielts, duolingo := englishScores(tc.input)
		if toefl != tc.toefl || ielts != tc.ielts || duolingo != tc.duolingo {
			t.Errorf("englishScores(%q) = (%d, %v, %d), want (%d, %v, %d)",
				tc.input, toefl, ielts, duolingo, tc.toefl, tc.ielts, tc.duolingo)
		}
	}
}

func TestRunExtractsEnglishScores(t *testing.T) {
	rules := DefaultRules()

	out, _ := Run([]domain.RawProgram{
		{
			Title:           "BSc Physics",
			Institution:     "Example U",
			DegreeLevel:     "Bachelor",
			RawRequirements: "TOEFL iBT: 80; IELTS 6.5",
		},
		{Title: "BSc Chemistry", Institution: "Example U", DegreeLevel: "Bachelor"},
	}, rules)

	if len(out) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(out))
	}
	if out[0].TOEFLMin != 80 || out[0].IELTSMin != 6.5 || out[0].DuolingoMin != 0 {
		t.Errorf("Expected scores (80, 6.5, 0), got (%d, %v, %d)", out[0].TOEFLMin, out[0].IELTSMin, out[0].DuolingoMin)
	}
	// no requirements text means unknown scores, not zeros-as-values
	if out[1].TOEFLMin != 0 || out[1].IELTSMin != 0 {
		t.Errorf("Expected unknown scores for missing requirements, got %+v", out[1])
	}
}

func TestRunKeepsScrapedAt(t *testing.T) {
	rules := DefaultRules()
	ts := time.Date(2025, 11, 3, 12, 0, 0, 0, time.UTC)

	out, _ := Run([]domain.RawProgram{
		{Title: "BSc Physics", Institution: "Example U", DegreeLevel: "Bachelor", ScrapedAt: ts},
	}, rules)

	if len(out) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(out))
	}
	if !out[0].LastSeen.Equal(ts) {
		t.Errorf("Expected LastSeen %v, got %v", ts, out[0].LastSeen)
	}
}
