package normalize

import (
	"fmt"
	"regexp"
)

// DurationRule converts one textual duration convention into months.
// Pattern must capture the count as its first group; UnitMonths is the
// number of months one unit represents ("year" = 12, "semester" = 6).
type DurationRule struct {
	Pattern    string `yaml:"pattern"`
	UnitMonths int    `yaml:"unit_months"`

	re *regexp.Regexp
}

// Rules are the injectable normalization tables. Portal sites are not
// consistent about duration and language wording, so new conventions are
// added in the rules file rather than in code.
type Rules struct {
	Durations []DurationRule    `yaml:"durations"`
	Languages map[string]string `yaml:"languages"`
}

// DefaultRules covers the conventions bachelorsportal.com uses today.
func DefaultRules() Rules {
	r := Rules{
		Durations: []DurationRule{
			{Pattern: `(\d+)\s*(?:years?|yrs?)`, UnitMonths: 12},
			{Pattern: `(\d+)\s*semesters?`, UnitMonths: 6},
			{Pattern: `(\d+)\s*months?`, UnitMonths: 1},
		},
		Languages: map[string]string{
			"english":    "en",
			"german":     "de",
			"deutsch":    "de",
			"french":     "fr",
			"français":   "fr",
			"francais":   "fr",
			"spanish":    "es",
			"español":    "es",
			"espanol":    "es",
			"dutch":      "nl",
			"nederlands": "nl",
			"italian":    "it",
			"italiano":   "it",
			"portuguese": "pt",
			"português":  "pt",
			"portugues":  "pt",
		},
	}
	if err := r.Compile(); err != nil {
		// default patterns are fixed, a failure here is a programming error
		panic(err)
	}
	return r
}

// Compile prepares the duration patterns. Matching is case-insensitive.
// Must be called once before Run when rules come from a file.
func (r *Rules) Compile() error {
	for i := range r.Durations {
		d := &r.Durations[i]
		re, err := regexp.Compile(`(?i)` + d.Pattern)
		if err != nil {
			return fmt.Errorf("normalize: bad duration pattern %q: %w", d.Pattern, err)
		}
		if re.NumSubexp() < 1 {
			return fmt.Errorf("normalize: duration pattern %q has no capture group", d.Pattern)
		}
		if d.UnitMonths <= 0 {
			return fmt.Errorf("normalize: duration pattern %q has unit_months %d", d.Pattern, d.UnitMonths)
		}
		d.re = re
	}
	return nil
}
