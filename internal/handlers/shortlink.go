package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cactripplanner/shortlinks/internal/analytics"
	"github.com/cactripplanner/shortlinks/internal/messaging"
	"github.com/cactripplanner/shortlinks/internal/metrics"
	"github.com/cactripplanner/shortlinks/internal/shortener"
	"github.com/danielgtaylor/huma/v2"
	"go.uber.org/zap"
)

// Recorder receives shortlink counters.
type Recorder interface {
	LinkCreated(strategy string)
	LinkReused()
	LinkResolved(result string)
}

// ShortLinkHandler handles link creation and redirects.
type ShortLinkHandler struct {
	strategies      map[Strategy]shortener.Strategy
	resolver        *shortener.Resolver
	baseURL         string
	defaultStrategy Strategy
	publishCreated  messaging.Publish[analytics.ShortLinkCreatedEvent]
	publishResolved messaging.Publish[analytics.ShortLinkResolvedEvent]
	metrics         Recorder
	logger          *zap.Logger
}

// NewShortLinkHandler creates a new handler with injected strategies.
func NewShortLinkHandler(
	strategies map[Strategy]shortener.Strategy,
	resolver *shortener.Resolver,
	baseURL string,
	publishCreated messaging.Publish[analytics.ShortLinkCreatedEvent],
	publishResolved messaging.Publish[analytics.ShortLinkResolvedEvent],
	recorder Recorder,
	logger *zap.Logger,
) *ShortLinkHandler {
	return &ShortLinkHandler{
		strategies:      strategies,
		resolver:        resolver,
		baseURL:         strings.TrimSuffix(baseURL, "/"),
		defaultStrategy: StrategyToken,
		publishCreated:  publishCreated,
		publishResolved: publishResolved,
		metrics:         recorder,
		logger:          logger,
	}
}

func (h *ShortLinkHandler) Shorten(ctx context.Context, req *ShortenRequest) (*ShortenResponse, error) {
	if strings.TrimSpace(req.Body.URL) == "" {
		return nil, huma.Error400BadRequest("url is required")
	}

	strategyName := req.Body.Strategy
	if strategyName == "" {
		strategyName = h.defaultStrategy
	}

	strategy, ok := h.strategies[strategyName]
	if !ok {
		return nil, huma.Error400BadRequest("invalid strategy: must be 'token' or 'hash'")
	}

	link, created, err := strategy.Shorten(ctx, req.Body.URL)
	if err != nil {
		return nil, h.shortenError(err)
	}

	if created {
		h.metrics.LinkCreated(string(strategyName))
	} else {
		h.metrics.LinkReused()
	}

	meta := RequestMetaFromContext(ctx)
	event := &analytics.ShortLinkCreatedEvent{
		Key:       string(link.Key),
		TargetURL: link.TargetURL,
		URLHash:   string(link.URLHash),
		Strategy:  string(strategyName),
		Reused:    !created,
		CreatedAt: link.CreatedAt,
		ClientIP:  meta.ClientIP,
		UserAgent: meta.UserAgent,
	}

	if err := h.publishCreated(ctx, event); err != nil {
		h.logger.Error("failed to publish analytics event",
			zap.String("key", event.Key),
			zap.Error(err),
		)
	}

	shortURL := h.baseURL + "/" + string(link.Key)

	resp := &ShortenResponse{Status: http.StatusCreated}
	if !created {
		resp.Status = http.StatusOK
	}

	resp.Location = shortURL
	resp.Body.Key = string(link.Key)
	resp.Body.ShortURL = shortURL
	resp.Body.TargetURL = link.TargetURL

	return resp, nil
}

func (h *ShortLinkHandler) shortenError(err error) error {
	switch {
	case errors.Is(err, shortener.ErrInvalidURL):
		return huma.Error400BadRequest(err.Error())
	case errors.Is(err, shortener.ErrCollisionRetryExhausted):
		h.logger.Error("key generation exhausted", zap.Error(err))

		return huma.Error500InternalServerError("could not allocate a unique key")
	default:
		h.logger.Error("failed to save link", zap.Error(err))

		return huma.Error500InternalServerError("failed to save link")
	}
}

func (h *ShortLinkHandler) Redirect(ctx context.Context, req *RedirectRequest) (*RedirectResponse, error) {
	link, err := h.resolver.Resolve(ctx, req.Key)
	if err != nil {
		if errors.Is(err, shortener.ErrNotFound) {
			h.metrics.LinkResolved(metrics.ResultNotFound)

			return nil, huma.Error404NotFound("short link not found")
		}

		h.metrics.LinkResolved(metrics.ResultError)
		h.logger.Error("failed to resolve link", zap.String("key", req.Key), zap.Error(err))

		return nil, huma.Error500InternalServerError("failed to resolve link")
	}

	h.metrics.LinkResolved(metrics.ResultFound)

	meta := RequestMetaFromContext(ctx)
	event := &analytics.ShortLinkResolvedEvent{
		Key:        string(link.Key),
		ResolvedAt: time.Now().UTC(),
		ClientIP:   meta.ClientIP,
		UserAgent:  meta.UserAgent,
		Referrer:   meta.Referrer,
	}

	if err := h.publishResolved(ctx, event); err != nil {
		h.logger.Error("failed to publish access event",
			zap.String("key", event.Key),
			zap.Error(err),
		)
	}

	return &RedirectResponse{
		Status:   http.StatusFound,
		Location: headerSafe(link.TargetURL),
	}, nil
}

// headerSafe percent-encodes the bytes of target that may not appear raw in
// a header value. ASCII URLs are returned unchanged.
func headerSafe(target string) string {
	var b strings.Builder

	for i := range len(target) {
		c := target[i]
		if c < 0x21 || c >= 0x7f {
			fmt.Fprintf(&b, "%%%02X", c)

			continue
		}

		b.WriteByte(c)
	}

	return b.String()
}
