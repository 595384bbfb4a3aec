package repository

import (
	"context"
	"errors"

	customerrors "github.com/axellelanca/urlalias/internal/errors"
	"github.com/axellelanca/urlalias/internal/models"
	"gorm.io/gorm"
)

// UserRepository stores the credentials used by the basic-auth guard.
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

// GormUserRepository est l'implémentation de UserRepository utilisant GORM.
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository crée et retourne une nouvelle instance de GormUserRepository.
func NewUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isDuplicateKey(err) {
			return customerrors.ErrUsernameTaken
		}
		return customerrors.ErrStoreFault{Op: "create user", Err: err}
	}
	return nil
}

// GetUserByUsername returns nil, nil when no user has that name.
func (r *GormUserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, customerrors.ErrStoreFault{Op: "find user", Err: err}
	}
	return &user, nil
}
