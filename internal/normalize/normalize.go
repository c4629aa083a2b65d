// Package normalize turns raw scraped listing cards into validated,
// deduplicated program records ready for publishing.
package normalize

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
	"time"

	"bachelor-sync/internal/domain"
)

// Stats counts what happened to every input record. Dropped records are
// counted per reason, never silently discarded.
type Stats struct {
	In                 int
	Valid              int
	DroppedInstitution int
	DroppedTitle       int
	DroppedDegreeLevel int
	Deduped            int
}

func (s Stats) Dropped() int {
	return s.DroppedInstitution + s.DroppedTitle + s.DroppedDegreeLevel
}

// ProgramKey derives the stable identifier for a program: a SHA-256 over
// the canonicalized institution and title. The same program yields the
// same key across runs regardless of page order or re-scrapes.
func ProgramKey(institution, title string) string {
	h := sha256.Sum256([]byte(canon(institution) + "\n" + canon(title)))
	return hex.EncodeToString(h[:])
}

// Run validates, normalizes and deduplicates raw records.
//
// Input is sorted by (Page, Position) first, so the last-write-wins policy
// is reproducible even when pages were fetched in parallel. When two raw
// records share a key, the later-seen one wins under the assumption that
// later pages carry more current data.
func Run(raw []domain.RawProgram, rules Rules) ([]domain.Program, Stats) {
	var stats Stats
	stats.In = len(raw)

	sorted := make([]domain.RawProgram, len(raw))
	copy(sorted, raw)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Page != sorted[j].Page {
			return sorted[i].Page < sorted[j].Page
		}
		return sorted[i].Position < sorted[j].Position
	})

	byKey := map[string]int{}
	var out []domain.Program

	for _, r := range sorted {
		p, reason := normalizeOne(r, rules)
		switch reason {
		case dropInstitution:
			stats.DroppedInstitution++
			continue
		case dropTitle:
			stats.DroppedTitle++
			continue
		case dropDegreeLevel:
			stats.DroppedDegreeLevel++
			continue
		}

		if i, ok := byKey[p.Key]; ok {
			// later record wins, keep the slot of the first sighting
			out[i] = p
			stats.Deduped++
			continue
		}
		byKey[p.Key] = len(out)
		out = append(out, p)
	}

	stats.Valid = len(out)
	return out, stats
}

type dropReason int

const (
	keep dropReason = iota
	dropInstitution
	dropTitle
	dropDegreeLevel
)

func normalizeOne(r domain.RawProgram, rules Rules) (domain.Program, dropReason) {
	institution := cleanText(r.Institution)
	title := cleanText(r.Title)

	if institution == "" || strings.EqualFold(institution, "N/A") {
		return domain.Program{}, dropInstitution
	}
	if title == "" || strings.EqualFold(title, "N/A") {
		return domain.Program{}, dropTitle
	}
	if !strings.EqualFold(strings.TrimSpace(r.DegreeLevel), domain.DegreeBachelor) {
		return domain.Program{}, dropDegreeLevel
	}

	city, country := splitLocation(r.RawLocation)
	toefl, ielts, duolingo := englishScores(r.RawRequirements)

	seen := r.ScrapedAt
	if seen.IsZero() {
		seen = time.Now().UTC()
	}

	return domain.Program{
		Key:            ProgramKey(r.Institution, r.Title),
		Institution:    institution,
		Title:          title,
		DegreeLevel:    domain.DegreeBachelor,
		City:           city,
		Country:        country,
		DurationMonths: durationMonths(r.RawDuration, rules),
		Language:       languageCode(r.RawLanguage, rules),
		TuitionEUR:     tuitionEUR(r.RawTuition),
		TOEFLMin:       toefl,
		IELTSMin:       ielts,
		DuolingoMin:    duolingo,
		URL:            strings.TrimSpace(r.URL),
		LastSeen:       seen.UTC(),
	}, keep
}
