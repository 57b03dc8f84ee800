package shortener

import (
	"fmt"
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// MaxURLLength is the longest target URL accepted.
const MaxURLLength = 2048

var validate = validator.New()

// ValidateTargetURL checks that raw is an absolute http(s) URL with a host.
// Invalid UTF-8, the replacement character a decoder substitutes for it and
// control characters are rejected.
func ValidateTargetURL(raw string) error {
	if !utf8.ValidString(raw) || strings.ContainsRune(raw, utf8.RuneError) ||
		strings.IndexFunc(raw, unicode.IsControl) >= 0 {
		return fmt.Errorf("%w: malformed characters", ErrInvalidURL)
	}

	if err := validate.Var(raw, fmt.Sprintf("required,url,max=%d", MaxURLLength)); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidURL, raw)
	}

	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: unsupported scheme %q", ErrInvalidURL, u.Scheme)
	}

	if u.Host == "" {
		return fmt.Errorf("%w: missing host", ErrInvalidURL)
	}

	return nil
}
