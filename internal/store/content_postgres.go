package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/cactripplanner/shortlinks/internal/content"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ContentPostgresStore queries the CMS tables managed by the Django site.
// It never writes and never migrates those tables.
type ContentPostgresStore struct {
	pool *pgxpool.Pool
}

// NewContentPostgresStore creates a content repository on the shared pool.
func NewContentPostgresStore(pool *pgxpool.Pool) *ContentPostgresStore {
	return &ContentPostgresStore{pool: pool}
}

const articleColumns = `id, title, slug, teaser, content, content_type, wide_image, narrow_image, publish_date`

// publishedArticle matches rows with a publish date at or before now.
const publishedArticle = `publish_date IS NOT NULL AND publish_date <= NOW()`

func (s *ContentPostgresStore) FindRandomPublished(
	ctx context.Context,
	contentType content.ContentType,
) (*content.Article, error) {
	query := `SELECT ` + articleColumns + `
		FROM cms_article
		WHERE content_type = $1 AND ` + publishedArticle + `
		ORDER BY random()
		LIMIT 1`

	return scanArticle(s.pool.QueryRow(ctx, query, string(contentType)))
}

func (s *ContentPostgresStore) FindPublishedBySlug(
	ctx context.Context,
	contentType content.ContentType,
	slug string,
) (*content.Article, error) {
	query := `SELECT ` + articleColumns + `
		FROM cms_article
		WHERE content_type = $1 AND slug = $2 AND ` + publishedArticle

	return scanArticle(s.pool.QueryRow(ctx, query, string(contentType), slug))
}

func (s *ContentPostgresStore) FindRecentPublished(ctx context.Context, limit int) ([]content.Article, error) {
	query := `SELECT ` + articleColumns + `
		FROM cms_article
		WHERE ` + publishedArticle + `
		ORDER BY publish_date DESC
		LIMIT $1`

	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent articles: %w", err)
	}
	defer rows.Close()

	articles := make([]content.Article, 0, limit)

	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}

		articles = append(articles, *article)
	}

	return articles, rows.Err()
}

func (s *ContentPostgresStore) FindFaqBySlug(ctx context.Context, slug string) (*content.AboutFaq, error) {
	query := `SELECT title, slug, content FROM cms_aboutfaq WHERE slug = $1`

	var page content.AboutFaq

	err := s.pool.QueryRow(ctx, query, slug).Scan(&page.Title, &page.Slug, &page.Content)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, content.ErrNotFound
		}

		return nil, err
	}

	return &page, nil
}

func (s *ContentPostgresStore) SampleDestinations(ctx context.Context, n int) ([]content.Destination, error) {
	query := `
		SELECT id, name, description, address, city, state, zip, image, published
		FROM destinations_destination
		WHERE published
		ORDER BY random()
		LIMIT $1
	`

	rows, err := s.pool.Query(ctx, query, n)
	if err != nil {
		return nil, fmt.Errorf("sample destinations: %w", err)
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (content.Destination, error) {
		var d content.Destination

		err := row.Scan(&d.ID, &d.Name, &d.Description, &d.Address, &d.City, &d.State, &d.Zip, &d.Image, &d.Published)

		return d, err
	})
}

func scanArticle(row pgx.Row) (*content.Article, error) {
	var (
		a           content.Article
		contentType string
	)

	err := row.Scan(
		&a.ID,
		&a.Title,
		&a.Slug,
		&a.Teaser,
		&a.Content,
		&contentType,
		&a.WideImage,
		&a.NarrowImage,
		&a.PublishDate,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, content.ErrNotFound
		}

		return nil, err
	}

	a.ContentType = content.ContentType(contentType)

	return &a, nil
}

var _ content.Repository = (*ContentPostgresStore)(nil)
