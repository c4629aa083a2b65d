package portal

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"bachelor-sync/internal/httpx"
)

// Facet is a search filter value the portal advertises (a country or a
// study discipline), used to build targeted scrape runs.
type Facet struct {
	Name string
	Code string
	URL  string
}

// Countries lists the countries the portal has listings for.
func (c *Client) Countries(ctx context.Context) ([]Facet, error) {
	return c.facets(ctx, "/countries", `a.country-link, a[href*="/study-in-"]`, "data-country-code")
}

// Disciplines lists the study disciplines the portal has listings for.
func (c *Client) Disciplines(ctx context.Context) ([]Facet, error) {
	return c.facets(ctx, "/disciplines", `a.discipline-link, a[href*="/bachelors-in-"]`, "")
}

func (c *Client) facets(ctx context.Context, path, selector, codeAttr string) ([]Facet, error) {
	pageURL := c.BaseURL + path

	body, err := httpx.Get(ctx, c.HTTP, pageURL, c.header(), c.Retry)
	if err != nil {
		return nil, fmt.Errorf("portal: fetch %s: %w", pageURL, err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("portal: parse %s: %w", pageURL, err)
	}

	base, err := url.Parse(c.BaseURL)
	if err != nil {
		return nil, err
	}

	var out []Facet
	seen := map[string]bool{}
	doc.Find(selector).Each(func(_ int, link *goquery.Selection) {
		f := Facet{Name: text(link)}
		if f.Name == "" || seen[strings.ToLower(f.Name)] {
			return
		}
		seen[strings.ToLower(f.Name)] = true

		if codeAttr != "" {
			f.Code, _ = link.Attr(codeAttr)
		}
		if href, ok := link.Attr("href"); ok {
			if u, err := url.Parse(href); err == nil {
				f.URL = base.ResolveReference(u).String()
			}
		}
		out = append(out, f)
	})

	return out, nil
}
