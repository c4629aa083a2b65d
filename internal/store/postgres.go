package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"bachelor-sync/internal/domain"
)

// postgresBackend upserts over a direct database connection, for
// deployments that have the Supabase connection string.
type postgresBackend struct {
	pool *pgxpool.Pool
}

func newPostgresBackend(ctx context.Context, dsn string) (*postgresBackend, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("store: create postgres pool: %w", err)
	}
	return &postgresBackend{pool: pool}, nil
}

func (b *postgresBackend) Ping(ctx context.Context) error {
	return b.pool.Ping(ctx)
}

// EnsureSchema creates the programs table if it does not exist yet.
func (b *postgresBackend) EnsureSchema(ctx context.Context) error {
	sql := `
	CREATE TABLE IF NOT EXISTS bachelor_programs (
		program_key TEXT PRIMARY KEY,
		institution TEXT NOT NULL,
		title TEXT NOT NULL,
		degree_level TEXT NOT NULL,
		city TEXT,
		country TEXT,
		duration_months INT,
		language TEXT,
		tuition_eur INT,
		toefl_min INT,
		ielts_min REAL,
		duolingo_min INT,
		url TEXT,
		last_seen TIMESTAMPTZ NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_bachelor_programs_country ON bachelor_programs(country);
	CREATE INDEX IF NOT EXISTS idx_bachelor_programs_institution ON bachelor_programs(institution);
	`

	if _, err := b.pool.Exec(ctx, sql); err != nil {
		return fmt.Errorf("store: ensure schema: %w", err)
	}
	return nil
}

const upsertSQL = `
INSERT INTO bachelor_programs
	(program_key, institution, title, degree_level, city, country, duration_months, language, tuition_eur, toefl_min, ielts_min, duolingo_min, url, last_seen)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
ON CONFLICT (program_key) DO UPDATE SET
	institution = EXCLUDED.institution,
	title = EXCLUDED.title,
	degree_level = EXCLUDED.degree_level,
	city = EXCLUDED.city,
	country = EXCLUDED.country,
	duration_months = EXCLUDED.duration_months,
	language = EXCLUDED.language,
	tuition_eur = EXCLUDED.tuition_eur,
	toefl_min = EXCLUDED.toefl_min,
	ielts_min = EXCLUDED.ielts_min,
	duolingo_min = EXCLUDED.duolingo_min,
	url = EXCLUDED.url,
	last_seen = EXCLUDED.last_seen;
`

func (b *postgresBackend) UpsertBatch(ctx context.Context, programs []domain.Program) error {
	batch := &pgx.Batch{}
	for _, p := range programs {
		batch.Queue(
			upsertSQL,
			p.Key,
			p.Institution,
			p.Title,
			p.DegreeLevel,
			nullable(p.City),
			nullable(p.Country),
			nullableInt(p.DurationMonths),
			nullable(p.Language),
			nullableInt(p.TuitionEUR),
			nullableInt(p.TOEFLMin),
			nullableFloat(p.IELTSMin),
			nullableInt(p.DuolingoMin),
			p.URL,
			p.LastSeen.UTC(),
		)
	}

	results := b.pool.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("store: upsert row %d: %w", i, err)
		}
	}
	return nil
}

func (b *postgresBackend) Close() {
	if b.pool != nil {
		b.pool.Close()
	}
}
