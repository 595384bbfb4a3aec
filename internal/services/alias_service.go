// Package services contains the business logic layer of the URL alias service.
package services

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"time"

	customerrors "github.com/axellelanca/urlalias/internal/errors"
	"github.com/axellelanca/urlalias/internal/generator"
	"github.com/axellelanca/urlalias/internal/models"
	"github.com/axellelanca/urlalias/internal/repository"
)

const (
	// MaxTargetURLLength matches the width of aliases.target_url.
	MaxTargetURLLength = 2048
	// MaxPerPage caps the page size of ListAliases.
	MaxPerPage = 100

	// regenerations after the unique index rejected a code checked as free
	maxPersistAttempts = 3
)

// AliasCache is the read-through cache consulted on the redirect path.
type AliasCache interface {
	Get(ctx context.Context, code string) (*models.Alias, bool)
	Set(ctx context.Context, alias *models.Alias, ttl time.Duration)
	Delete(ctx context.Context, code string)
}

type noopCache struct{}

func (noopCache) Get(context.Context, string) (*models.Alias, bool) { return nil, false }
func (noopCache) Set(context.Context, *models.Alias, time.Duration) {}
func (noopCache) Delete(context.Context, string)                    {}

func cacheOrNoop(cache AliasCache) AliasCache {
	if cache == nil {
		return noopCache{}
	}
	return cache
}

func utcNow() time.Time {
	return time.Now().UTC()
}

// Page is one page of ListAliases.
type Page struct {
	Items      []models.Alias
	TotalItems int64
	Page       int
	PerPage    int
	TotalPages int
}

// AliasService creates, lists and deactivates aliases.
type AliasService struct {
	store     repository.Store
	generator *generator.Generator
	cache     AliasCache
	baseURL   string
	ttl       time.Duration
	now       func() time.Time
}

// NewAliasService creates an AliasService. Aliases created by it expire ttl after
// creation; baseURL is only used to compose public URLs. cache may be nil.
func NewAliasService(store repository.Store, gen *generator.Generator, cache AliasCache, baseURL string, ttl time.Duration) *AliasService {
	return &AliasService{
		store:     store,
		generator: gen,
		cache:     cacheOrNoop(cache),
		baseURL:   strings.TrimRight(baseURL, "/"),
		ttl:       ttl,
		now:       utcNow,
	}
}

// ValidateTargetURL checks that target is an absolute http(s) URL with a host.
func ValidateTargetURL(target string) error {
	if target == "" || len(target) > MaxTargetURLLength {
		return customerrors.ErrInvalidURL
	}
	u, err := url.ParseRequestURI(target)
	if err != nil {
		return customerrors.ErrInvalidURL
	}
	scheme := strings.ToLower(u.Scheme)
	if (scheme != "http" && scheme != "https") || u.Host == "" {
		return customerrors.ErrInvalidURL
	}
	return nil
}

// CreateAlias generates a fresh code for targetURL and stores it.
// Every call creates a new alias, even for a target that already has one.
func (s *AliasService) CreateAlias(ctx context.Context, targetURL string) (*models.Alias, error) {
	if err := ValidateTargetURL(targetURL); err != nil {
		return nil, err
	}

	aliases := s.store.Repositories().Aliases
	for attempt := 1; attempt <= maxPersistAttempts; attempt++ {
		code, err := s.generator.Generate(ctx, targetURL, s.codeExists)
		if err != nil {
			return nil, err
		}

		now := s.now()
		alias := &models.Alias{
			Code:      code,
			TargetURL: targetURL,
			CreatedAt: now,
			ExpiresAt: now.Add(s.ttl),
			IsActive:  true,
		}
		err = aliases.Create(ctx, alias)
		if err == nil {
			slog.Debug("alias created", "code", code, "target_url", targetURL)
			return alias, nil
		}
		if !errors.Is(err, customerrors.ErrAliasConflict) {
			return nil, err
		}
		slog.Warn("alias code taken between check and insert, regenerating", "code", code, "attempt", attempt)
	}
	return nil, customerrors.ErrAliasConflict
}

func (s *AliasService) codeExists(ctx context.Context, code string) (bool, error) {
	_, err := s.store.Repositories().Aliases.FindByCode(ctx, code)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, customerrors.ErrAliasNotFound):
		return false, nil
	default:
		return false, err
	}
}

// ParseBoolFlag reads the is_active filter shared by the HTTP API and the CLI.
// It accepts true, 1, yes, false, 0 and no, case-insensitively.
func ParseBoolFlag(raw string) (value, ok bool) {
	switch strings.ToLower(raw) {
	case "true", "1", "yes":
		return true, true
	case "false", "0", "no":
		return false, true
	default:
		return false, false
	}
}

// ListAliases returns one page of aliases, optionally filtered on is_active.
func (s *AliasService) ListAliases(ctx context.Context, page, perPage int, isActive *bool) (*Page, error) {
	if page < 1 || perPage < 1 || perPage > MaxPerPage {
		return nil, customerrors.ErrInvalidPagination
	}

	items, total, err := s.store.Repositories().Aliases.List(ctx, page, perPage, isActive)
	if err != nil {
		return nil, err
	}
	return &Page{
		Items:      items,
		TotalItems: total,
		Page:       page,
		PerPage:    perPage,
		TotalPages: int((total + int64(perPage) - 1) / int64(perPage)),
	}, nil
}

// DeactivateAlias switches an alias off for good and drops it from the cache.
func (s *AliasService) DeactivateAlias(ctx context.Context, code string) error {
	if !generator.IsValidCode(code) {
		return customerrors.ErrAliasNotFound
	}
	if err := s.store.Repositories().Aliases.Deactivate(ctx, code, s.now()); err != nil {
		return err
	}
	s.cache.Delete(ctx, code)
	return nil
}

// GetAliasStats returns the alias behind code and its total number of clicks.
func (s *AliasService) GetAliasStats(ctx context.Context, code string) (*models.Alias, int64, error) {
	if !generator.IsValidCode(code) {
		return nil, 0, customerrors.ErrAliasNotFound
	}
	repos := s.store.Repositories()
	alias, err := repos.Aliases.FindByCode(ctx, code)
	if err != nil {
		return nil, 0, err
	}
	total, err := repos.Clicks.CountClicksByAliasID(ctx, alias.ID)
	if err != nil {
		return nil, 0, err
	}
	return alias, total, nil
}

// FullURL composes the public URL of code.
func (s *AliasService) FullURL(code string) string {
	return s.baseURL + "/" + code
}
