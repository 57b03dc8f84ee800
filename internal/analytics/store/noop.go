package store

import (
	"context"

	"github.com/cactripplanner/shortlinks/internal/analytics"
	"go.uber.org/zap"
)

// Noop is an analytics.Store that only logs the events it receives.
type Noop struct {
	logger *zap.Logger
}

// NewNoop creates a new no-op analytics store.
func NewNoop(logger *zap.Logger) *Noop {
	return &Noop{logger: logger}
}

func (n *Noop) SaveShortLinkCreated(_ context.Context, event *analytics.ShortLinkCreatedEvent) error {
	n.logger.Info("shortlink created event received",
		zap.String("key", event.Key),
		zap.String("targetUrl", event.TargetURL),
		zap.String("strategy", event.Strategy),
		zap.Bool("reused", event.Reused),
		zap.Time("createdAt", event.CreatedAt),
	)

	return nil
}

func (n *Noop) SaveShortLinkResolved(_ context.Context, event *analytics.ShortLinkResolvedEvent) error {
	n.logger.Info("shortlink resolved event received",
		zap.String("key", event.Key),
		zap.Time("resolvedAt", event.ResolvedAt),
		zap.String("referrer", event.Referrer),
	)

	return nil
}

var _ analytics.Store = (*Noop)(nil)
