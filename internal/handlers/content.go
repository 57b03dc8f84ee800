package handlers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/cactripplanner/shortlinks/internal/content"
	"github.com/danielgtaylor/huma/v2"
	"go.uber.org/zap"
)

const homeDestinations = 4

// ContentOptions configures the content endpoints.
type ContentOptions struct {
	BaseURL            string
	MediaURL           string
	FacebookAppID      string
	HomepageResultsMax int
}

// ContentHandler serves read-only JSON views of the CMS records.
type ContentHandler struct {
	repo   content.Repository
	opts   ContentOptions
	logger *zap.Logger
}

// NewContentHandler serves content from repo. BaseURL and MediaURL build absolute links.
func NewContentHandler(repo content.Repository, opts ContentOptions, logger *zap.Logger) *ContentHandler {
	opts.BaseURL = strings.TrimSuffix(opts.BaseURL, "/")

	return &ContentHandler{repo: repo, opts: opts, logger: logger}
}

// ArticleBody is a published community profile or tips and tricks article.
type ArticleBody struct {
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Teaser      string     `json:"teaser"`
	Content     string     `json:"content"`
	ContentType string     `json:"contentType" enum:"prof,tips"`
	WideImage   string     `json:"wideImage"`
	NarrowImage string     `json:"narrowImage"`
	PublishDate *time.Time `json:"publishDate"`
}

// DestinationBody is a destination featured on the homepage.
type DestinationBody struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Address     string `json:"address"`
	City        string `json:"city"`
	State       string `json:"state"`
	Zip         string `json:"zip"`
	Image       string `json:"image"`
}

// HomeResponse holds the random homepage picks.
type HomeResponse struct {
	Body struct {
		CommunityProfile *ArticleBody      `json:"communityProfile"`
		TipsAndTricks    *ArticleBody      `json:"tipsAndTricks"`
		Destinations     []DestinationBody `json:"destinations"`
		FacebookAppID    string            `json:"fbAppId"`
	}
}

// ArticleSummary keeps the snake case field names of the original articles feed.
type ArticleSummary struct {
	WideImage   string `json:"wide_image"`
	NarrowImage string `json:"narrow_image"`
	Title       string `json:"title"`
	URL         string `json:"url"`
}

// ArticlesResponse is the recent articles feed.
type ArticlesResponse struct {
	Body []ArticleSummary
}

// SlugRequest selects a page by slug.
type SlugRequest struct {
	Slug string `path:"slug" maxLength:"50" doc:"Page slug"`
}

// ArticleResponse returns one article.
type ArticleResponse struct {
	Body ArticleBody
}

// FaqResponse returns one about or FAQ page.
type FaqResponse struct {
	Body struct {
		Title   string `json:"title"`
		Slug    string `json:"slug"`
		Content string `json:"content"`
	}
}

// Home returns a random community profile, a random tip and a few random
// destinations. Missing articles are returned as null.
func (h *ContentHandler) Home(ctx context.Context, _ *struct{}) (*HomeResponse, error) {
	resp := &HomeResponse{}
	resp.Body.FacebookAppID = h.opts.FacebookAppID

	var err error

	if resp.Body.CommunityProfile, err = h.randomArticle(ctx, content.CommunityProfile); err != nil {
		return nil, err
	}

	if resp.Body.TipsAndTricks, err = h.randomArticle(ctx, content.TipsAndTricks); err != nil {
		return nil, err
	}

	destinations, err := h.repo.SampleDestinations(ctx, homeDestinations)
	if err != nil {
		return nil, h.internal("failed to sample destinations", err)
	}

	resp.Body.Destinations = make([]DestinationBody, 0, len(destinations))
	for _, d := range destinations {
		resp.Body.Destinations = append(resp.Body.Destinations, DestinationBody{
			Name:        d.Name,
			Description: d.Description,
			Address:     d.Address,
			City:        d.City,
			State:       d.State,
			Zip:         d.Zip,
			Image:       h.mediaURL(d.Image),
		})
	}

	return resp, nil
}

// Articles returns the most recent published articles, newest first.
func (h *ContentHandler) Articles(ctx context.Context, _ *struct{}) (*ArticlesResponse, error) {
	articles, err := h.repo.FindRecentPublished(ctx, h.opts.HomepageResultsMax)
	if err != nil {
		return nil, h.internal("failed to list articles", err)
	}

	resp := &ArticlesResponse{Body: make([]ArticleSummary, 0, len(articles))}
	for _, a := range articles {
		resp.Body = append(resp.Body, ArticleSummary{
			WideImage:   h.mediaURL(a.WideImage),
			NarrowImage: h.mediaURL(a.NarrowImage),
			Title:       a.Title,
			URL:         h.articleURL(a),
		})
	}

	return resp, nil
}

func (h *ContentHandler) AboutFaq(ctx context.Context, req *SlugRequest) (*FaqResponse, error) {
	page, err := h.repo.FindFaqBySlug(ctx, req.Slug)
	if err != nil {
		if errors.Is(err, content.ErrNotFound) {
			return nil, huma.Error404NotFound("page not found")
		}

		return nil, h.internal("failed to load page", err)
	}

	resp := &FaqResponse{}
	resp.Body.Title = page.Title
	resp.Body.Slug = page.Slug
	resp.Body.Content = page.Content

	return resp, nil
}

func (h *ContentHandler) CommunityProfile(ctx context.Context, req *SlugRequest) (*ArticleResponse, error) {
	return h.articleBySlug(ctx, content.CommunityProfile, req.Slug)
}

func (h *ContentHandler) TipsAndTricks(ctx context.Context, req *SlugRequest) (*ArticleResponse, error) {
	return h.articleBySlug(ctx, content.TipsAndTricks, req.Slug)
}

func (h *ContentHandler) articleBySlug(
	ctx context.Context,
	contentType content.ContentType,
	slug string,
) (*ArticleResponse, error) {
	article, err := h.repo.FindPublishedBySlug(ctx, contentType, slug)
	if err != nil {
		if errors.Is(err, content.ErrNotFound) {
			return nil, huma.Error404NotFound("article not found")
		}

		return nil, h.internal("failed to load article", err)
	}

	return &ArticleResponse{Body: h.articleBody(article)}, nil
}

func (h *ContentHandler) randomArticle(ctx context.Context, contentType content.ContentType) (*ArticleBody, error) {
	article, err := h.repo.FindRandomPublished(ctx, contentType)
	if err != nil {
		if errors.Is(err, content.ErrNotFound) {
			return nil, nil
		}

		return nil, h.internal("failed to pick article", err)
	}

	body := h.articleBody(article)

	return &body, nil
}

func (h *ContentHandler) articleBody(a *content.Article) ArticleBody {
	return ArticleBody{
		Title:       a.Title,
		Slug:        a.Slug,
		Teaser:      a.Teaser,
		Content:     a.Content,
		ContentType: string(a.ContentType),
		WideImage:   h.mediaURL(a.WideImage),
		NarrowImage: h.mediaURL(a.NarrowImage),
		PublishDate: a.PublishDate,
	}
}

// articleURL is the absolute URL of the article's detail endpoint.
func (h *ContentHandler) articleURL(a content.Article) string {
	if a.ContentType == content.CommunityProfile {
		return h.opts.BaseURL + "/api/community-profiles/" + a.Slug
	}

	return h.opts.BaseURL + "/api/tips-and-tricks/" + a.Slug
}

// mediaURL resolves a stored image name against the media root.
func (h *ContentHandler) mediaURL(name string) string {
	if name == "" {
		return ""
	}

	return strings.TrimSuffix(h.opts.MediaURL, "/") + "/" + strings.TrimPrefix(name, "/")
}

func (h *ContentHandler) internal(msg string, err error) error {
	h.logger.Error(msg, zap.Error(err))

	return huma.Error500InternalServerError(msg)
}
