// Package generator derives alias codes from target URLs.
//
// A code is the URL-safe base64 encoding of the MD5 digest of an input string,
// truncated to a fixed prefix. The first input is the target URL itself; after a
// collision the input becomes the target URL with a random suffix in [1, 1000].
// Uniqueness is only probed here: the store's unique index has the final word.
package generator

import (
	"context"
	"crypto/md5"
	"encoding/base64"
	"math/rand/v2"
	"strconv"

	customerrors "github.com/axellelanca/urlalias/internal/errors"
)

const (
	// DefaultCodeLength is the number of base64 characters kept from the digest.
	DefaultCodeLength = 12
	// DefaultMaxAttempts bounds the number of candidates probed per call.
	DefaultMaxAttempts = 5

	maxSuffix = 1000
	// base64 of a 16 byte digest without padding
	maxCodeLength = 22
)

// ExistsFunc reports whether a code is already taken, active or not.
type ExistsFunc func(ctx context.Context, code string) (bool, error)

// CandidateInput returns the string hashed at the given attempt.
func CandidateInput(targetURL string, attempt, suffix int) string {
	if attempt == 0 {
		return targetURL
	}
	return targetURL + strconv.Itoa(suffix)
}

// Candidate hashes input and keeps the first length characters of its encoding.
func Candidate(input string, length int) string {
	sum := md5.Sum([]byte(input))
	encoded := base64.URLEncoding.EncodeToString(sum[:])
	if length <= 0 || length > maxCodeLength {
		length = DefaultCodeLength
	}
	return encoded[:length]
}

// IsValidCode reports whether code could have been produced by Candidate.
func IsValidCode(code string) bool {
	if code == "" || len(code) > maxCodeLength {
		return false
	}
	for i := 0; i < len(code); i++ {
		c := code[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
		default:
			return false
		}
	}
	return true
}

// Retry calls fn with attempt = 0, 1, ... until it reports done, returns an
// error, or attempts are used up, in which case ErrGenerationExhausted is returned.
func Retry[T any](attempts int, fn func(attempt int) (T, bool, error)) (T, error) {
	var zero T
	for attempt := 0; attempt < attempts; attempt++ {
		v, done, err := fn(attempt)
		if err != nil {
			return zero, err
		}
		if done {
			return v, nil
		}
	}
	return zero, customerrors.ErrGenerationExhausted
}

// Generator produces codes that are free at the time of the check.
type Generator struct {
	length      int
	maxAttempts int
	suffix      func() int
}

// Option configures a Generator.
type Option func(*Generator)

// WithCodeLength sets the number of characters kept from the digest.
func WithCodeLength(n int) Option {
	return func(g *Generator) {
		if n > 0 && n <= maxCodeLength {
			g.length = n
		}
	}
}

// WithMaxAttempts sets the attempt budget.
func WithMaxAttempts(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.maxAttempts = n
		}
	}
}

// WithSuffixSource replaces the random suffix source, mostly for tests.
func WithSuffixSource(fn func() int) Option {
	return func(g *Generator) {
		if fn != nil {
			g.suffix = fn
		}
	}
}

// New creates a Generator with the default length and attempt budget.
func New(opts ...Option) *Generator {
	g := &Generator{
		length:      DefaultCodeLength,
		maxAttempts: DefaultMaxAttempts,
		suffix:      func() int { return rand.IntN(maxSuffix) + 1 },
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate returns the first candidate for targetURL that exists reports as free.
func (g *Generator) Generate(ctx context.Context, targetURL string, exists ExistsFunc) (string, error) {
	return Retry(g.maxAttempts, func(attempt int) (string, bool, error) {
		var suffix int
		if attempt > 0 {
			suffix = g.suffix()
		}
		code := Candidate(CandidateInput(targetURL, attempt, suffix), g.length)

		taken, err := exists(ctx, code)
		if err != nil {
			return "", false, err
		}
		return code, !taken, nil
	})
}
