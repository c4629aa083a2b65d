package normalize

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	reWhitespace = regexp.MustCompile(`\s+`)
	reAmount     = regexp.MustCompile(`[\d][\d,.]*`)

	reTOEFL    = regexp.MustCompile(`(?i)toefl\D*(\d{2,3})`)
	reIELTS    = regexp.MustCompile(`(?i)ielts\D*(\d(?:\.\d)?)`)
	reDuolingo = regexp.MustCompile(`(?i)duolingo\D*(\d{2,3})`)
)

// canon trims, lowercases and collapses inner whitespace. It is the
// canonical form used both for key derivation and for comparisons.
func canon(s string) string {
	return reWhitespace.ReplaceAllString(strings.TrimSpace(strings.ToLower(s)), " ")
}

// cleanText collapses whitespace but keeps the original casing, for
// fields that end up in the published record as-is.
func cleanText(s string) string {
	return reWhitespace.ReplaceAllString(strings.TrimSpace(s), " ")
}

// durationMonths parses free-form duration text ("3 years", "6 semesters",
// "18 months") into months using the rules tables. Unparseable text yields
// 0 (unknown), never an error.
func durationMonths(raw string, rules Rules) int {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, "N/A") {
		return 0
	}
	for _, d := range rules.Durations {
		if d.re == nil {
			continue
		}
		m := d.re.FindStringSubmatch(raw)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil || n <= 0 {
			continue
		}
		return n * d.UnitMonths
	}
	return 0
}

// languageCode maps free-form language text to an ISO 639-1 code via the
// rules table. Text that already looks like a code passes through; anything
// unmapped is unknown ("").
func languageCode(raw string, rules Rules) string {
	v := canon(raw)
	if v == "" || v == "n/a" {
		return ""
	}
	if code, ok := rules.Languages[v]; ok {
		return code
	}
	// already a two-letter code ("en", "en-US", "en_GB")
	v = strings.ReplaceAll(v, "_", "-")
	if len(v) == 2 || (len(v) > 2 && v[2] == '-') {
		return v[:2]
	}
	return ""
}

// tuitionEUR extracts a yearly tuition amount in EUR from raw fee text.
// USD and GBP amounts get a rough fixed conversion; the figure is for
// comparison, not billing. Unparseable text yields 0 (unknown).
func tuitionEUR(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, "N/A") || strings.EqualFold(raw, "free") {
		return 0
	}
	m := reAmount.FindString(raw)
	if m == "" {
		return 0
	}
	m = strings.ReplaceAll(m, ",", "")
	// drop a decimal part if present
	if i := strings.IndexByte(m, '.'); i >= 0 {
		m = m[:i]
	}
	amount, err := strconv.Atoi(m)
	if err != nil || amount <= 0 {
		return 0
	}

	switch {
	case strings.Contains(raw, "$") || strings.Contains(raw, "USD"):
		return amount * 85 / 100
	case strings.Contains(raw, "£") || strings.Contains(raw, "GBP"):
		return amount * 115 / 100
	default:
		return amount
	}
}

// englishScores pulls minimum English test scores out of requirements
// text ("TOEFL iBT: 80", "IELTS 6.5", "Duolingo 105"). Values outside
// each test's scale are treated as unknown rather than propagated.
func englishScores(raw string) (toefl int, ielts float64, duolingo int) {
	if raw == "" {
		return 0, 0, 0
	}
	if m := reTOEFL.FindStringSubmatch(raw); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n <= 120 {
			toefl = n
		}
	}
	if m := reIELTS.FindStringSubmatch(raw); m != nil {
		if f, err := strconv.ParseFloat(m[1], 64); err == nil && f <= 9 {
			ielts = f
		}
	}
	if m := reDuolingo.FindStringSubmatch(raw); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n <= 160 {
			duolingo = n
		}
	}
	return toefl, ielts, duolingo
}

// splitLocation splits "Berlin, Germany" into city and country. A single
// token is treated as the city.
func splitLocation(raw string) (city, country string) {
	raw = cleanText(raw)
	if raw == "" || strings.EqualFold(raw, "N/A") {
		return "", ""
	}
	parts := strings.Split(raw, ",")
	if len(parts) == 1 {
		return strings.TrimSpace(parts[0]), ""
	}
	city = strings.TrimSpace(strings.Join(parts[:len(parts)-1], ", "))
	country = strings.TrimSpace(parts[len(parts)-1])
	return city, country
}
