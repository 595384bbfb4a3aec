package services

import (
	"context"
	"fmt"
	"time"

	customerrors "github.com/axellelanca/urlalias/internal/errors"
	"github.com/axellelanca/urlalias/internal/models"
	"github.com/axellelanca/urlalias/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

const maxUsernameLength = 20

// AuthService checks and registers API credentials.
type AuthService struct {
	users repository.UserRepository
}

// NewAuthService creates an AuthService.
func NewAuthService(users repository.UserRepository) *AuthService {
	return &AuthService{users: users}
}

// Authenticate reports whether password matches the stored hash of username.
// Unknown users and wrong passwords both give false with a nil error.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (bool, error) {
	if username == "" || password == "" {
		return false, nil
	}
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return false, err
	}
	if user == nil {
		return false, nil
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return false, nil
	}
	return true, nil
}

// CreateUser stores username with a bcrypt hash of password.
func (s *AuthService) CreateUser(ctx context.Context, username, password string) (*models.User, error) {
	if username == "" || len(username) > maxUsernameLength || password == "" {
		return nil, customerrors.ErrInvalidUser
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
