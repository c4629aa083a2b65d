// Package portal is the read-only scraping client for the bachelors
// listing portal. Each method turns an HTTP response into records and
// keeps no state beyond the HTTP client itself, so re-running a method
// against an unchanged portal yields the same output.
package portal

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"

	"bachelor-sync/internal/concurrency"
	"bachelor-sync/internal/domain"
	"bachelor-sync/internal/httpx"
)

// ErrNoPages means every listing page of a search failed; callers treat
// this as fetch-stage total failure. Individual page failures are only
// logged.
var ErrNoPages = errors.New("portal: no listing pages could be fetched")

type Client struct {
	BaseURL string
	HTTP    *http.Client
	Retry   httpx.RetryConfig

	// Workers bounds concurrent page fetches within one search.
	Workers int
}

func New(baseURL string) *Client {
	return &Client{
		BaseURL: baseURL,
		HTTP: &http.Client{
			Timeout: 30 * time.Second,
		},
		Retry:   httpx.DefaultRetryConfig(),
		Workers: 3,
	}
}

// Query filters one listing search. Zero values mean no filter.
type Query struct {
	Country    string
	Discipline string
}

// browser-like headers; the portal serves a consent wall to obvious bots
func (c *Client) header() http.Header {
	h := http.Header{}
	h.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36")
	h.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	h.Set("Accept-Language", "en-US,en;q=0.9")
	h.Set("Accept-Encoding", "gzip, deflate, br")
	h.Set("Connection", "keep-alive")
	return h
}

func (c *Client) searchPageURL(q Query, page int) (string, error) {
	u, err := url.Parse(c.BaseURL + "/search/bachelors")
	if err != nil {
		return "", fmt.Errorf("portal: invalid base url: %w", err)
	}
	qs := u.Query()
	if q.Country != "" {
		qs.Set("countries", q.Country)
	}
	if q.Discipline != "" {
		qs.Set("disciplines", q.Discipline)
	}
	qs.Set("page", fmt.Sprintf("%d", page))
	u.RawQuery = qs.Encode()
	return u.String(), nil
}

// SearchPrograms walks listing pages 1..maxPages for one search and
// extracts the program cards. Pages are fetched with a bounded worker
// pool; results keep page order so downstream deduplication stays
// reproducible. A failed page is logged and skipped; an empty page ends
// the listing and later pages are discarded. ErrNoPages is returned only
// when every page failed.
func (c *Client) SearchPrograms(ctx context.Context, q Query, maxPages int) ([]domain.RawProgram, error) {
	if maxPages <= 0 {
		maxPages = 1
	}

	pages := make([]int, maxPages)
	for i := range pages {
		pages[i] = i + 1
	}

	type pageResult struct {
		ok      bool
		records []domain.RawProgram
	}

	opts := concurrency.ParallelOptions{MaxWorkers: c.Workers}
	perPage, _ := concurrency.ProcessParallel(ctx, pages, opts, func(ctx context.Context, _ int, page int) (pageResult, error) {
		records, err := c.fetchSearchPage(ctx, q, page)
		if err != nil {
			return pageResult{}, err
		}
		return pageResult{ok: true, records: records}, nil
	})

	var all []domain.RawProgram
	fetched := 0
	for i, res := range perPage {
		if !res.ok {
			log.Printf("WARN: portal: page %d of %s skipped", pages[i], describe(q))
			continue
		}
		fetched++
		// an empty page marks the end of the listing
		if len(res.records) == 0 {
			break
		}
		all = append(all, res.records...)
	}

	if fetched == 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, ErrNoPages
	}
	return all, nil
}

func (c *Client) fetchSearchPage(ctx context.Context, q Query, page int) ([]domain.RawProgram, error) {
	pageURL, err := c.searchPageURL(q, page)
	if err != nil {
		return nil, err
	}

	body, err := httpx.Get(ctx, c.HTTP, pageURL, c.header(), c.Retry)
	if err != nil {
		return nil, fmt.Errorf("portal: fetch %s: %w", pageURL, err)
	}

	records, err := extractPrograms(body, c.BaseURL, page, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("portal: parse %s: %w", pageURL, err)
	}
	return records, nil
}

func describe(q Query) string {
	c, d := q.Country, q.Discipline
	if c == "" {
		c = "all countries"
	}
	if d == "" {
		d = "all disciplines"
	}
	return c + " / " + d
}
