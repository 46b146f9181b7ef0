package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"roster/internal/database"
	"roster/internal/models"
	"roster/internal/store"
)

var (
	// ErrInvalidRequest means the login request named a user that does not exist.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrUnauthenticated means the user exists but the password did not match.
	ErrUnauthenticated = errors.New("unauthenticated")
)

type AuthService struct {
	users store.UserStore
}

func NewAuthService(users store.UserStore) *AuthService {
	return &AuthService{users: users}
}

// Authenticate verifies a username/password pair against the user store.
// Both lookups run on the caller's transaction; the handle is left open.
func (s *AuthService) Authenticate(ctx context.Context, txn *database.Txn, username, password string) (*models.User, error) {
	user, err := s.users.GetUserByUsername(ctx, txn, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidRequest
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	hash, err := s.users.GetUserPasswordHash(ctx, txn, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load password hash: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return nil, ErrUnauthenticated
	}

	return user, nil
}

// HashPassword returns a bcrypt hash suitable for storage.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}
