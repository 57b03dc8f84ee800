package shortener

import "time"

// Key is the public identifier of a short link.
type Key string

// URLHash represents a hash of a normalized URL.
type URLHash string

// ShortLink pairs a key with the URL it redirects to.
type ShortLink struct {
	Key       Key
	TargetURL string
	URLHash   URLHash // empty for token strategy, populated for hash strategy
	CreatedAt time.Time
}
