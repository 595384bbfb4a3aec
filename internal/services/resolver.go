package services

import (
	"context"
	"time"

	customerrors "github.com/axellelanca/urlalias/internal/errors"
	"github.com/axellelanca/urlalias/internal/generator"
	"github.com/axellelanca/urlalias/internal/models"
	"github.com/axellelanca/urlalias/internal/repository"
)

const (
	maxUserAgentLength = 255
	maxIPAddressLength = 50
)

// Resolver turns a code into its target URL, applying the alias lifecycle and
// recording one click per successful resolution.
type Resolver struct {
	store    repository.Store
	cache    AliasCache
	cacheTTL time.Duration
	now      func() time.Time
}

// NewResolver creates a Resolver. cache may be nil; cacheTTL caps how long an
// alias stays cached.
func NewResolver(store repository.Store, cache AliasCache, cacheTTL time.Duration) *Resolver {
	return &Resolver{
		store:    store,
		cache:    cacheOrNoop(cache),
		cacheTTL: cacheTTL,
		now:      utcNow,
	}
}

// Resolve returns the target URL of code.
//
// Errors: ErrAliasNotFound, ErrAliasExpired, ErrAliasDeactivated,
// ErrClickRecordingFailed and ErrStoreFault. The first resolution after expiry
// marks the alias inactive and that change is committed although the call fails.
func (r *Resolver) Resolve(ctx context.Context, code string, meta models.ClickMeta) (string, error) {
	if !generator.IsValidCode(code) {
		return "", customerrors.ErrAliasNotFound
	}
	now := r.now()

	if cached, ok := r.cache.Get(ctx, code); ok && cached.StateAt(now) == models.StateActive {
		recorded, err := r.store.Repositories().Clicks.CreateClickIfActive(ctx, newClick(cached.ID, now, meta))
		if err != nil {
			return "", err
		}
		if recorded {
			return cached.TargetURL, nil
		}
		// the cached copy is stale: the alias left the active state since it was cached
		r.cache.Delete(ctx, code)
	}

	var (
		resolved *models.Alias
		outcome  error
	)
	err := r.store.WithinTransaction(ctx, func(repos repository.Repositories) error {
		alias, err := repos.Aliases.FindByCode(ctx, code)
		if err != nil {
			return err
		}

		switch alias.StateAt(now) {
		case models.StateExpired:
			if alias.NeedsExpiryFlip(now) {
				if _, err := repos.Aliases.MarkInactive(ctx, alias.ID, models.ReasonExpired, now); err != nil {
					return err
				}
			}
			outcome = customerrors.ErrAliasExpired
			return nil
		case models.StateDeactivated:
			outcome = customerrors.ErrAliasDeactivated
			return nil
		}

		if err := repos.Clicks.CreateClick(ctx, newClick(alias.ID, now, meta)); err != nil {
			return err
		}
		resolved = alias
		return nil
	})
	if err != nil {
		return "", err
	}
	if outcome != nil {
		r.cache.Delete(ctx, code)
		return "", outcome
	}

	r.cache.Set(ctx, resolved, r.cacheTTLFor(resolved, now))
	return resolved.TargetURL, nil
}

// cacheTTLFor keeps a cached alias from outliving its expiry.
func (r *Resolver) cacheTTLFor(alias *models.Alias, now time.Time) time.Duration {
	ttl := alias.ExpiresAt.Sub(now)
	if r.cacheTTL < ttl {
		ttl = r.cacheTTL
	}
	return ttl
}

func newClick(aliasID uint, at time.Time, meta models.ClickMeta) *models.Click {
	return &models.Click{
		AliasID:    aliasID,
		OccurredAt: at,
		UserAgent:  truncate(meta.UserAgent, maxUserAgentLength),
		IPAddress:  truncate(meta.IPAddress, maxIPAddressLength),
	}
}

// truncate cuts s to at most n characters.
func truncate(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
