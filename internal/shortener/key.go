package shortener

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jaevor/go-nanoid"
)

const (
	// DefaultKeyLength is the length of generated keys.
	DefaultKeyLength = 22
	// DefaultAlphabet is the [1-9A-Za-z] class accepted by the redirect route.
	DefaultAlphabet = "123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
	// DefaultMaxAttempts bounds the collision retry loop.
	DefaultMaxAttempts = 10
)

// KeyConfig describes the shape of generated keys.
type KeyConfig struct {
	Length      int
	Alphabet    string
	MaxAttempts int
}

// DefaultKeyConfig returns the configuration used by the public site.
func DefaultKeyConfig() KeyConfig {
	return KeyConfig{
		Length:      DefaultKeyLength,
		Alphabet:    DefaultAlphabet,
		MaxAttempts: DefaultMaxAttempts,
	}
}

// WithDefaults fills zero fields from DefaultKeyConfig.
func (c KeyConfig) WithDefaults() KeyConfig {
	if c.Length <= 0 {
		c.Length = DefaultKeyLength
	}

	if c.Alphabet == "" {
		c.Alphabet = DefaultAlphabet
	}

	if c.MaxAttempts <= 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}

	return c
}

// Valid reports whether raw could have been produced with this configuration.
func (c KeyConfig) Valid(raw string) bool {
	c = c.WithDefaults()

	if len(raw) != c.Length {
		return false
	}

	for i := range len(raw) {
		if strings.IndexByte(c.Alphabet, raw[i]) < 0 {
			return false
		}
	}

	return true
}

// KeyFunc returns a new random key candidate.
type KeyFunc func() string

// Generator assigns unique keys to new links.
type Generator struct {
	next        KeyFunc
	maxAttempts int
	onCollision func(attempt int)
}

// NewGenerator creates a Generator drawing random keys from cfg.Alphabet.
func NewGenerator(cfg KeyConfig) (*Generator, error) {
	cfg = cfg.WithDefaults()

	next, err := nanoid.CustomASCII(cfg.Alphabet, cfg.Length)
	if err != nil {
		return nil, fmt.Errorf("create key generator: %w", err)
	}

	return NewGeneratorFunc(next, cfg.MaxAttempts), nil
}

// NewGeneratorFunc creates a Generator around an arbitrary key source.
func NewGeneratorFunc(next KeyFunc, maxAttempts int) *Generator {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	return &Generator{
		next:        next,
		maxAttempts: maxAttempts,
	}
}

// OnCollision registers fn to be called every time a generated key is taken.
func (g *Generator) OnCollision(fn func(attempt int)) {
	g.onCollision = fn
}

// Insert assigns a fresh key to link and saves it. A key uniqueness violation
// reported by the store triggers another attempt with a new key; any other
// error is returned as is.
func (g *Generator) Insert(ctx context.Context, store Repository, link *ShortLink) error {
	for attempt := 1; attempt <= g.maxAttempts; attempt++ {
		link.Key = Key(g.next())

		err := store.Save(ctx, link)
		if err == nil {
			return nil
		}

		if !errors.Is(err, ErrKeyExists) {
			link.Key = ""

			return err
		}

		if g.onCollision != nil {
			g.onCollision(attempt)
		}
	}

	link.Key = ""

	return fmt.Errorf("%w after %d attempts", ErrCollisionRetryExhausted, g.maxAttempts)
}
