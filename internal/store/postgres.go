package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/cactripplanner/shortlinks/internal/shortener"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	pgErrUniqueViolation = "23505"

	constraintKey  = "shortlinks_pkey"
	constraintHash = "shortlinks_url_hash_key"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS shortlinks (
		key        VARCHAR(64) NOT NULL,
		target_url TEXT        NOT NULL,
		url_hash   CHAR(64),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT shortlinks_pkey PRIMARY KEY (key),
		CONSTRAINT shortlinks_url_hash_key UNIQUE (url_hash)
	)`,
	`CREATE INDEX IF NOT EXISTS shortlinks_created_at_idx ON shortlinks (created_at)`,
}

// PostgresStore is a PostgreSQL implementation of shortener.Repository.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL-backed link store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Migrate creates the shortlinks table and its indexes if they do not exist.
func (p *PostgresStore) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := p.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate shortlinks: %w", err)
		}
	}

	return nil
}

// Save inserts a new link. Uniqueness violations are reported as
// shortener.ErrKeyExists or shortener.ErrHashExists so callers can retry.
func (p *PostgresStore) Save(ctx context.Context, link *shortener.ShortLink) error {
	query := `
		INSERT INTO shortlinks (key, target_url, url_hash, created_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := p.pool.Exec(ctx, query,
		string(link.Key),
		link.TargetURL,
		nullableString(link.URLHash),
		link.CreatedAt,
	)

	return translateUniqueViolation(err)
}

func (p *PostgresStore) GetByKey(ctx context.Context, key shortener.Key) (*shortener.ShortLink, error) {
	query := `
		SELECT key, target_url, url_hash, created_at
		FROM shortlinks
		WHERE key = $1
	`

	return scanLink(p.pool.QueryRow(ctx, query, string(key)))
}

func (p *PostgresStore) GetByHash(ctx context.Context, hash shortener.URLHash) (*shortener.ShortLink, error) {
	query := `
		SELECT key, target_url, url_hash, created_at
		FROM shortlinks
		WHERE url_hash = $1
	`

	return scanLink(p.pool.QueryRow(ctx, query, string(hash)))
}

func scanLink(row pgx.Row) (*shortener.ShortLink, error) {
	var (
		link    shortener.ShortLink
		urlHash *string
	)

	err := row.Scan(
		&link.Key,
		&link.TargetURL,
		&urlHash,
		&link.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shortener.ErrNotFound
		}

		return nil, err
	}

	if urlHash != nil {
		link.URLHash = shortener.URLHash(*urlHash)
	}

	return &link, nil
}

func translateUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgErrUniqueViolation {
		return err
	}

	switch pgErr.ConstraintName {
	case constraintKey:
		return fmt.Errorf("%w: %s", shortener.ErrKeyExists, pgErr.Detail)
	case constraintHash:
		return fmt.Errorf("%w: %s", shortener.ErrHashExists, pgErr.Detail)
	default:
		return err
	}
}

func nullableString(s shortener.URLHash) *string {
	if s == "" {
		return nil
	}

	str := string(s)

	return &str
}

var _ shortener.Repository = (*PostgresStore)(nil)
