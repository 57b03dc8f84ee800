package analytics

import "context"

// Store defines the interface for persisting analytics events.
type Store interface {
	SaveShortLinkCreated(ctx context.Context, event *ShortLinkCreatedEvent) error
	SaveShortLinkResolved(ctx context.Context, event *ShortLinkResolvedEvent) error
}
