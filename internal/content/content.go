// Package content is the read model over the CMS records owned by the
// trip planner site: articles, about/FAQ pages and destinations.
package content

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when no published record matches a lookup.
var ErrNotFound = errors.New("content not found")

// ContentType distinguishes the two kinds of article.
type ContentType string

const (
	// CommunityProfile articles describe people who use the trail network.
	CommunityProfile ContentType = "prof"
	// TipsAndTricks articles give practical advice.
	TipsAndTricks ContentType = "tips"
)

// Valid reports whether t is a known content type.
func (t ContentType) Valid() bool {
	return t == CommunityProfile || t == TipsAndTricks
}

type Article struct {
	ID          int64
	Title       string
	Slug        string
	Teaser      string
	Content     string
	ContentType ContentType
	WideImage   string
	NarrowImage string
	PublishDate *time.Time
}

// Published reports whether the article has a publish date that is not in
// the future relative to now.
func (a Article) Published(now time.Time) bool {
	return a.PublishDate != nil && !a.PublishDate.After(now)
}

type AboutFaq struct {
	Title   string
	Slug    string
	Content string
}

type Destination struct {
	ID          int64
	Name        string
	Description string
	Address     string
	City        string
	State       string
	Zip         string
	Image       string
	Published   bool
}

// Repository provides typed queries over the CMS tables.
type Repository interface {
	// FindRandomPublished returns one random published article of the given type.
	FindRandomPublished(ctx context.Context, contentType ContentType) (*Article, error)
	FindPublishedBySlug(ctx context.Context, contentType ContentType, slug string) (*Article, error)
	// FindRecentPublished returns up to limit published articles, newest first.
	FindRecentPublished(ctx context.Context, limit int) ([]Article, error)
	FindFaqBySlug(ctx context.Context, slug string) (*AboutFaq, error)
	// SampleDestinations returns up to n random published destinations.
	SampleDestinations(ctx context.Context, n int) ([]Destination, error)
}
