package domain

import "time"

// DegreeBachelor is the only degree level this pipeline keeps. Listing
// pages occasionally mix in pre-masters and foundation entries; those are
// dropped during normalization.
const DegreeBachelor = "Bachelor"

// RawProgram is one program card exactly as scraped from a listing page.
// It is emitted by the portal client and never mutated afterwards; the
// normalize stage is the only consumer.
//
// Page and Position record where the card was found. Pages may be fetched
// in parallel, so (Page, Position) is the ordering key used to keep
// last-write-wins deduplication reproducible.
type RawProgram struct {
	Title       string
	Institution string
	DegreeLevel string
	RawLocation string
	RawDuration string
	RawLanguage string
	RawTuition  string
	// RawRequirements is the admission requirements text from the program
	// detail page, items joined with "; ". Only filled when detail
	// enrichment is on.
	RawRequirements string
	URL             string
	Page            int
	Position        int
	ScrapedAt       time.Time
}

// Program is the validated, normalized record the publisher upserts.
//
// Key is a content hash over the canonicalized (institution, title) pair,
// so re-scrapes of the same program map to the same row regardless of run
// or page order.
type Program struct {
	Key            string
	Institution    string
	Title          string
	DegreeLevel    string
	City           string
	Country        string
	DurationMonths int    // 0 = unknown
	Language       string // ISO 639-1, "" = unknown
	TuitionEUR     int    // per year, 0 = unknown

	// Minimum English test scores from the requirements text, 0 = unknown.
	TOEFLMin    int
	IELTSMin    float64
	DuolingoMin int

	URL      string
	LastSeen time.Time
}

// RunReport summarizes a pipeline run. It is printed at the end of every
// run, including runs with partial failures.
type RunReport struct {
	Fetched       int
	Valid         int
	Dropped       int
	Deduped       int
	Published     int
	FailedBatches int
}
