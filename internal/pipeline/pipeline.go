// Package pipeline chains the scrape, process and publish stages and
// keeps the run accounting in one place. The cmd binaries are thin
// wrappers over these functions.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"

	"bachelor-sync/internal/config"
	"bachelor-sync/internal/domain"
	"bachelor-sync/internal/httpx"
	"bachelor-sync/internal/normalize"
	"bachelor-sync/internal/portal"
	"bachelor-sync/internal/store"
)

var (
	// ErrNoData means every listing search failed; there is nothing to
	// process and the run cannot continue.
	ErrNoData = errors.New("pipeline: no listing data fetched")
	// ErrNoValid means scraping produced records but none survived
	// validation.
	ErrNoValid = errors.New("pipeline: no valid programs after processing")
)

// Scrape walks every (country, discipline) search in targets and returns
// the raw program cards. A search where no page could be fetched is logged
// and skipped; only when all searches fail does Scrape return ErrNoData.
// With targets.Discover, empty selector lists are filled from the portal's
// facet pages first; with targets.Details, each record's program page is
// fetched for its requirements text.
func Scrape(ctx context.Context, env config.Config, targets config.PortalTargets) ([]domain.RawProgram, error) {
	client := portal.New(env.PortalBaseURL)

	if targets.Discover {
		targets = discoverTargets(ctx, client, targets)
	}

	var (
		all    []domain.RawProgram
		failed int
	)
	qs := queries(targets)
	for _, q := range qs {
		records, err := client.SearchPrograms(ctx, q, targets.MaxPages)
		if err != nil {
			if ctx.Err() != nil {
				return all, ctx.Err()
			}
			log.Printf("WARN: search %+v failed: %v", q, err)
			failed++
			continue
		}
		all = append(all, records...)
	}

	if failed == len(qs) {
		return nil, ErrNoData
	}

	if targets.Details {
		all = client.EnrichDetails(ctx, all)
	}
	return all, nil
}

// discoverTargets fills empty selector lists from the portal's facet
// pages. Discovery failures fall back to whatever was configured.
func discoverTargets(ctx context.Context, client *portal.Client, t config.PortalTargets) config.PortalTargets {
	if len(t.Countries) == 0 {
		facets, err := client.Countries(ctx)
		if err != nil {
			log.Printf("WARN: country discovery failed: %v", err)
		}
		for _, f := range facets {
			t.Countries = append(t.Countries, f.Name)
		}
	}
	if len(t.Disciplines) == 0 {
		facets, err := client.Disciplines(ctx)
		if err != nil {
			log.Printf("WARN: discipline discovery failed: %v", err)
		}
		for _, f := range facets {
			t.Disciplines = append(t.Disciplines, f.Name)
		}
	}
	return t
}

// queries expands targets into the cross product of countries and
// disciplines. Empty selectors collapse to a single unfiltered search.
func queries(t config.PortalTargets) []portal.Query {
	countries := t.Countries
	if len(countries) == 0 {
		countries = []string{""}
	}
	disciplines := t.Disciplines
	if len(disciplines) == 0 {
		disciplines = []string{""}
	}

	out := make([]portal.Query, 0, len(countries)*len(disciplines))
	for _, c := range countries {
		for _, d := range disciplines {
			out = append(out, portal.Query{Country: c, Discipline: d})
		}
	}
	return out
}

// Process validates, normalizes and dedupes raw records. ErrNoValid is
// returned when nothing survives.
func Process(raw []domain.RawProgram, rules normalize.Rules) ([]domain.Program, normalize.Stats, error) {
	programs, stats := normalize.Run(raw, rules)
	if len(programs) == 0 {
		return nil, stats, ErrNoValid
	}
	return programs, stats, nil
}

// Publish upserts programs to the configured datastore. Connection and
// configuration problems are fatal; individual batch failures are counted
// in the result and do not abort the run.
func Publish(ctx context.Context, env config.Config, opts config.PublishOptions, programs []domain.Program) (store.Result, error) {
	pub, err := store.NewPublisher(ctx, store.Config{
		URL:       env.SupabaseURL,
		Key:       env.SupabaseKey,
		Table:     env.SupabaseTable,
		DSN:       env.SupabaseDBDSN,
		BatchSize: opts.BatchSize,
		Retry:     httpx.RetryConfig{MaxAttempts: opts.MaxAttempts},
	})
	if err != nil {
		return store.Result{}, fmt.Errorf("pipeline: publisher: %w", err)
	}
	defer pub.Close()

	return pub.Publish(ctx, programs)
}

// Run executes the three stages in order and reports the run totals.
// The returned report is valid even when err is non-nil.
func Run(ctx context.Context, env config.Config, p config.Pipeline) (domain.RunReport, error) {
	var report domain.RunReport

	raw, err := Scrape(ctx, env, p.Portal)
	if err != nil {
		return report, err
	}
	report.Fetched = len(raw)

	programs, stats, err := Process(raw, p.Normalize)
	report.Valid = stats.Valid
	report.Dropped = stats.Dropped()
	report.Deduped = stats.Deduped
	if err != nil {
		return report, err
	}

	res, err := Publish(ctx, env, p.Publish, programs)
	report.Published = res.Published
	report.FailedBatches = res.FailedBatches
	if err != nil {
		return report, err
	}

	return report, nil
}
