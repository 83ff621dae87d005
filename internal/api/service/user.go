package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/slicelab/pizzeria/internal/api/auth"
	"github.com/slicelab/pizzeria/internal/api/domain"
	"github.com/slicelab/pizzeria/internal/api/store"
	"github.com/slicelab/pizzeria/pkg/cryptox"
	"github.com/slicelab/pizzeria/pkg/idx"
)

var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrUsernameTaken      = errors.New("username_taken")
)

type UserService struct {
	Store  store.Store
	Tokens *auth.TokenService
}

type CreateUserInput struct {
	TenantID int64
	Username string
	Email    string
	Password string
}

func (s *UserService) Create(ctx context.Context, in CreateUserInput) (domain.User, error) {
	hash, err := cryptox.HashPassword(in.Password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	user := domain.User{
		ID:           idx.New().String(),
		TenantID:     in.TenantID,
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.Store.Users().CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, ErrUsernameTaken
		}
		return domain.User{}, err
	}

	return user, nil
}

// Login checks the password and mints a fresh device-bound credential. A
// wrong username and a wrong password are indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, tenant int64, username, password string) (string, auth.Claims, error) {
	user, err := s.Store.Users().GetUserByUsername(ctx, tenant, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", auth.Claims{}, ErrInvalidCredentials
		}
		return "", auth.Claims{}, err
	}

	if cryptox.VerifyPassword(password, user.PasswordHash) != nil {
		return "", auth.Claims{}, ErrInvalidCredentials
	}

	if err := s.Store.Users().TouchLastLogin(ctx, user.ID); err != nil {
		return "", auth.Claims{}, err
	}

	token, claims, err := s.Tokens.Issue(ctx, user.ID, user.Username, user.TenantID)
	if err != nil {
		return "", auth.Claims{}, err
	}

	return token, claims, nil
}

// Logout revokes the session the credential was bound to. Every other device
// session of the same user stays live.
func (s *UserService) Logout(ctx context.Context, subject, device string) error {
	return s.Tokens.Revoke(ctx, subject, device)
}

func (s *UserService) Info(ctx context.Context, subject string) (domain.User, error) {
	return s.Store.Users().GetUserByID(ctx, subject)
}
