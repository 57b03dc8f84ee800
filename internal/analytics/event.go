package analytics

import "time"

const (
	TopicShortLinkCreated  = "shortlink.created"
	TopicShortLinkResolved = "shortlink.resolved"
)

// ShortLinkCreatedEvent is emitted when a shorten request returns a link,
// whether newly created or reused by the hash strategy.
type ShortLinkCreatedEvent struct {
	Key       string    `json:"key"`
	TargetURL string    `json:"targetUrl"`
	URLHash   string    `json:"urlHash,omitempty"`
	Strategy  string    `json:"strategy"`
	Reused    bool      `json:"reused"`
	CreatedAt time.Time `json:"createdAt"`
	ClientIP  string    `json:"clientIp"`
	UserAgent string    `json:"userAgent"`
}

// ShortLinkResolvedEvent is emitted when a key is redirected to its target.
type ShortLinkResolvedEvent struct {
	Key        string    `json:"key"`
	ResolvedAt time.Time `json:"resolvedAt"`
	ClientIP   string    `json:"clientIp"`
	UserAgent  string    `json:"userAgent"`
	Referrer   string    `json:"referrer,omitempty"`
}
