package portal

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"bachelor-sync/internal/concurrency"
	"bachelor-sync/internal/domain"
	"bachelor-sync/internal/httpx"
)

// Details is the extra information on a single program page that listing
// cards don't carry. Everything is optional; the page layout varies a lot
// between institutions.
type Details struct {
	Overview     string
	Requirements []string
	KeyFacts     map[string]string
}

// EnrichDetails fetches each record's program page and fills in the
// requirements text. Detail pages are best effort: a record whose page
// cannot be fetched is returned unchanged, and record order is preserved.
func (c *Client) EnrichDetails(ctx context.Context, records []domain.RawProgram) []domain.RawProgram {
	opts := concurrency.ParallelOptions{MaxWorkers: c.Workers}
	out, _ := concurrency.ProcessParallel(ctx, records, opts, func(ctx context.Context, _ int, r domain.RawProgram) (domain.RawProgram, error) {
		if r.URL == "" {
			return r, nil
		}
		d, err := c.ProgramDetails(ctx, r.URL)
		if err != nil {
			log.Printf("WARN: portal: details for %s skipped: %v", r.URL, err)
			return r, nil
		}
		r.RawRequirements = strings.Join(d.Requirements, "; ")
		return r, nil
	})
	return out
}

// ProgramDetails scrapes one program page.
func (c *Client) ProgramDetails(ctx context.Context, programURL string) (Details, error) {
	body, err := httpx.Get(ctx, c.HTTP, programURL, c.header(), c.Retry)
	if err != nil {
		return Details{}, fmt.Errorf("portal: fetch %s: %w", programURL, err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return Details{}, fmt.Errorf("portal: parse %s: %w", programURL, err)
	}

	var d Details

	d.Overview = text(doc.Find("div.overview, section#overview").First())

	doc.Find("section#requirements li, div.requirements li, div.requirements div.requirement").Each(func(_ int, item *goquery.Selection) {
		if v := text(item); v != "" {
			d.Requirements = append(d.Requirements, v)
		}
	})

	doc.Find("div.key-facts div.fact-item, section.facts div.fact-item").Each(func(_ int, item *goquery.Selection) {
		label := text(item.Find("span.label").First())
		value := text(item.Find("span.value").First())
		if label == "" || value == "" {
			return
		}
		if d.KeyFacts == nil {
			d.KeyFacts = map[string]string{}
		}
		d.KeyFacts[label] = value
	})

	return d, nil
}
