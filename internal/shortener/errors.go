package shortener

import "errors"

var (
	// ErrNotFound is returned when no link exists for a key or hash.
	ErrNotFound = errors.New("short link not found")

	// ErrInvalidURL is returned when the target URL is missing or malformed.
	ErrInvalidURL = errors.New("invalid url")

	// ErrKeyExists is returned by a Repository when the key is already taken.
	ErrKeyExists = errors.New("key already exists")

	// ErrHashExists is returned by a Repository when another link already
	// owns the URL hash.
	ErrHashExists = errors.New("url hash already exists")

	// ErrCollisionRetryExhausted is returned when no free key was found
	// within the configured number of attempts.
	ErrCollisionRetryExhausted = errors.New("no unique key found")
)
