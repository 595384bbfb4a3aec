package repository

import (
	"context"

	customerrors "github.com/axellelanca/urlalias/internal/errors"
	"gorm.io/gorm"
)

// Repositories groups the repositories bound to one connection or transaction.
type Repositories struct {
	Aliases AliasRepository
	Clicks  ClickRepository
}

// Store hands out repositories and runs units of work in a transaction.
type Store interface {
	Repositories() Repositories
	WithinTransaction(ctx context.Context, fn func(repos Repositories) error) error
}

// GormStore implements Store on a *gorm.DB.
type GormStore struct {
	db *gorm.DB
}

// NewStore creates a GormStore.
func NewStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Repositories() Repositories {
	return Repositories{
		Aliases: NewAliasRepository(s.db),
		Clicks:  NewClickRepository(s.db),
	}
}

// WithinTransaction runs fn in a transaction. An error from fn rolls back and is
// returned as is; failures to begin or commit are reported as store faults.
func (s *GormStore) WithinTransaction(ctx context.Context, fn func(repos Repositories) error) error {
	var fnErr error
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fnErr = fn(Repositories{
			Aliases: NewAliasRepository(tx),
			Clicks:  NewClickRepository(tx),
		})
		return fnErr
	})
	if err == nil {
		return nil
	}
	if fnErr != nil {
		return fnErr
	}
	return customerrors.ErrStoreFault{Op: "transaction", Err: err}
}
