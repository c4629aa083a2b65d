package store

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"bachelor-sync/internal/domain"
)

// restBackend talks to Supabase through the PostgREST API. Retries are
// owned by the Publisher, so the resty client itself does none.
type restBackend struct {
	client *resty.Client
	table  string
}

// programRow is the REST row payload. PostgREST wants every object in a
// bulk upsert to carry the same keys, so optional fields are explicit
// nulls instead of being omitted.
type programRow struct {
	ProgramKey     string   `json:"program_key"`
	Institution    string   `json:"institution"`
	Title          string   `json:"title"`
	DegreeLevel    string   `json:"degree_level"`
	City           *string  `json:"city"`
	Country        *string  `json:"country"`
	DurationMonths *int     `json:"duration_months"`
	Language       *string  `json:"language"`
	TuitionEUR     *int     `json:"tuition_eur"`
	TOEFLMin       *int     `json:"toefl_min"`
	IELTSMin       *float64 `json:"ielts_min"`
	DuolingoMin    *int     `json:"duolingo_min"`
	URL            string   `json:"url"`
	LastSeen       string   `json:"last_seen"`
}

func newRESTBackend(cfg Config) *restBackend {
	client := resty.New().
		SetBaseURL(cfg.URL).
		SetHeader("apikey", cfg.Key).
		SetHeader("Authorization", "Bearer "+cfg.Key).
		SetHeader("Content-Type", "application/json").
		SetTimeout(30 * time.Second)

	return &restBackend{client: client, table: cfg.Table}
}

func (b *restBackend) Ping(ctx context.Context) error {
	resp, err := b.client.R().SetContext(ctx).Get("/rest/v1/")
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("rest ping: status=%d body=%s", resp.StatusCode(), resp.String())
	}
	return nil
}

func (b *restBackend) UpsertBatch(ctx context.Context, programs []domain.Program) error {
	rows := make([]programRow, 0, len(programs))
	for _, p := range programs {
		rows = append(rows, toRow(p))
	}

	resp, err := b.client.R().
		SetContext(ctx).
		SetQueryParam("on_conflict", "program_key").
		SetHeader("Prefer", "resolution=merge-duplicates,return=minimal").
		SetBody(rows).
		Post("/rest/v1/" + b.table)
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("rest upsert: status=%d body=%s", resp.StatusCode(), resp.String())
	}
	return nil
}

func (b *restBackend) Close() {}

func toRow(p domain.Program) programRow {
	return programRow{
		ProgramKey:     p.Key,
		Institution:    p.Institution,
		Title:          p.Title,
		DegreeLevel:    p.DegreeLevel,
		City:           nullable(p.City),
		Country:        nullable(p.Country),
		DurationMonths: nullableInt(p.DurationMonths),
		Language:       nullable(p.Language),
		TuitionEUR:     nullableInt(p.TuitionEUR),
		TOEFLMin:       nullableInt(p.TOEFLMin),
		IELTSMin:       nullableFloat(p.IELTSMin),
		DuolingoMin:    nullableInt(p.DuolingoMin),
		URL:            p.URL,
		LastSeen:       p.LastSeen.UTC().Format(time.RFC3339),
	}
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nullableInt(n int) *int {
	if n <= 0 {
		return nil
	}
	return &n
}

func nullableFloat(f float64) *float64 {
	if f <= 0 {
		return nil
	}
	return &f
}
