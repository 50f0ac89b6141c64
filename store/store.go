// Package store implements the medicine lookups against PostgreSQL. Fuzzy
// matching is delegated to the pg_trgm extension: similarity() filters
// candidates and the `<->` distance operator ranks them.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kairomed/medicine-info-api/interfaces"
	"github.com/kairomed/medicine-info-api/logging"
	"github.com/kairomed/medicine-info-api/medicine"
)

// Compile-time check to ensure Store implements MedicineStore
var _ interfaces.MedicineStore = (*Store)(nil)

const bestMatchSQL = `
	SELECT
		medicine_name,
		uses,
		composition,
		side_effects,
		image_url,
		manufacturer,
		excellent_review::float8,
		average_review::float8,
		poor_review::float8,
		similarity(medicine_name, $1) AS sim
	FROM medicine_info
	WHERE similarity(medicine_name, $1) > $2
	ORDER BY medicine_name <-> $1
	LIMIT 1`

const alternativesSQL = `
	SELECT
		medicine_name,
		uses,
		composition,
		side_effects,
		image_url,
		manufacturer,
		excellent_review::float8,
		average_review::float8,
		poor_review::float8
	FROM medicine_info
	WHERE medicine_name <> $1
	  AND composition ILIKE ANY($2)
	ORDER BY excellent_review DESC NULLS LAST
	LIMIT $3`

// querier is the subset of *pgxpool.Pool used by Store
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Ping(ctx context.Context) error
}

// Options configures the connection pool
type Options struct {
	DatabaseURL         string
	MaxConns            int32
	MinConns            int32
	SimilarityThreshold float64
	ConnectTimeout      time.Duration
}

// Store reads medicine records from the medicine_info table
type Store struct {
	db        querier
	pool      *pgxpool.Pool
	threshold float64
}

// Open creates the shared connection pool and verifies it with a ping.
// The similarity threshold travels with each query rather than pg_trgm's
// set_limit, which transaction-mode poolers do not keep between statements.
func Open(ctx context.Context, opts Options) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(opts.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	if opts.MaxConns > 0 {
		cfg.MaxConns = opts.MaxConns
	}
	if opts.MinConns > 0 {
		cfg.MinConns = opts.MinConns
	}
	cfg.MaxConnIdleTime = 5 * time.Minute
	cfg.MaxConnLifetime = 30 * time.Minute

	threshold := opts.SimilarityThreshold
	if threshold <= 0 {
		threshold = medicine.DefaultSimilarityThreshold
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	timeout := opts.ConnectTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	logging.Info("Connected to medicine store",
		"max_conns", cfg.MaxConns,
		"min_conns", cfg.MinConns,
		"similarity_threshold", threshold)

	return &Store{db: pool, pool: pool, threshold: threshold}, nil
}

// newWithQuerier builds a Store on top of any querier (used by tests)
func newWithQuerier(db querier) *Store {
	return &Store{db: db, threshold: medicine.DefaultSimilarityThreshold}
}

// FindBestMatch returns the record most similar to query, or nil when no
// record scores above the similarity threshold.
func (s *Store) FindBestMatch(ctx context.Context, query string) (*medicine.Match, error) {
	var match medicine.Match
	row := s.db.QueryRow(ctx, bestMatchSQL, query, s.threshold)

	scanned, err := scanRecord(row, &match.Similarity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: best match for %q: %v", medicine.ErrStoreUnavailable, query, err)
	}
	match.Record = scanned

	logging.Debug("Fuzzy match found",
		"query", query,
		"medicine_name", match.Record.MedicineName,
		"similarity", match.Similarity)

	return &match, nil
}

// FindAlternatives returns records whose composition mentions any of the
// ingredients, excluding q.ExcludeName, best reviewed first.
func (s *Store) FindAlternatives(ctx context.Context, q medicine.AlternativesQuery) ([]medicine.Record, error) {
	if len(q.Ingredients) == 0 {
		return []medicine.Record{}, nil
	}

	patterns := make([]string, 0, len(q.Ingredients))
	for _, ingredient := range q.Ingredients {
		patterns = append(patterns, "%"+escapeLike(ingredient)+"%")
	}

	rows, err := s.db.Query(ctx, alternativesSQL, q.ExcludeName, patterns, q.Limit)
	if err != nil {
		return nil, fmt.Errorf("%w: alternatives query: %v", medicine.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	records := make([]medicine.Record, 0, q.Limit)
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan alternative: %v", medicine.ErrStoreUnavailable, err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate alternatives: %v", medicine.ErrStoreUnavailable, err)
	}

	return records, nil
}

// Ping checks that the store answers
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %v", medicine.ErrStoreUnavailable, err)
	}
	return nil
}

// Close releases the pool
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// scanRecord reads the common record columns, then any extra destinations
// (the similarity score for fuzzy matches).
func scanRecord(row pgx.Row, extra ...any) (medicine.Record, error) {
	var (
		record                           medicine.Record
		name, uses, composition, effects *string
	)

	dest := []any{
		&name,
		&uses,
		&composition,
		&effects,
		&record.ImageURL,
		&record.Manufacturer,
		&record.Reviews.Excellent,
		&record.Reviews.Average,
		&record.Reviews.Poor,
	}
	dest = append(dest, extra...)

	if err := row.Scan(dest...); err != nil {
		return medicine.Record{}, err
	}

	record.MedicineName = deref(name)
	record.UseCase = deref(uses)
	record.Composition = deref(composition)
	record.SideEffects = deref(effects)
	return record, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

// escapeLike escapes the ILIKE metacharacters of a user derived term
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
