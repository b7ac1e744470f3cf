package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/carhive/carhive/internal/platform/httpx"
)

// User is the credential-bearing account record.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	IsActive     bool
}

// Repository provides account persistence for registration and login.
type Repository interface {
	FindByUsername(ctx context.Context, username string) (*User, error)
	Create(ctx context.Context, username, passwordHash string) (*User, error)
}

// Service handles registration and credential verification.
type Service struct {
	repo   Repository
	tokens *TokenManager
}

// NewService builds a Service instance.
func NewService(repo Repository, tokens *TokenManager) *Service {
	return &Service{repo: repo, tokens: tokens}
}

// Register creates a new account with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, username, password string) (*User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("auth: hash password: %w", err)
	}
	user, err := s.repo.Create(ctx, username, string(hash))
	if err != nil {
		if errors.Is(err, httpx.ErrDuplicate) {
			return nil, fmt.Errorf("%w: username already in use", httpx.ErrDuplicate)
		}
		return nil, err
	}
	return user, nil
}

// Login verifies credentials and returns a signed access token. Unknown
// usernames and wrong passwords are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			return "", fmt.Errorf("%w: invalid credentials", httpx.ErrUnauthorized)
		}
		return "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", fmt.Errorf("%w: invalid credentials", httpx.ErrUnauthorized)
	}
	if !user.IsActive {
		return "", fmt.Errorf("%w: inactive user", httpx.ErrForbidden)
	}
	return s.tokens.Issue(user.ID)
}
