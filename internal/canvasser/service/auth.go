// Package service holds the business logic behind the HTTP handlers.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fieldstack/canvasser/internal/canvasser/domain"
	"github.com/fieldstack/canvasser/internal/canvasser/store"
	"github.com/fieldstack/canvasser/pkg/cryptox"
	"github.com/fieldstack/canvasser/pkg/idx"
	"github.com/fieldstack/canvasser/pkg/jwtx"
	"github.com/fieldstack/canvasser/pkg/slogx"
)

var (
	ErrMissingFields      = errors.New("service: missing required fields")
	ErrDuplicateEmail     = errors.New("service: email already registered")
	ErrInvalidCredentials = errors.New("service: invalid credentials")
)

// AuthService registers accounts and exchanges credentials for access
// tokens.
type AuthService struct {
	Store    store.Store
	Signer   jwtx.Signer
	Issuer   string
	TokenTTL time.Duration

	// Now is injectable for tests. Defaults to time.Now.
	Now func() time.Time
}

func NewAuthService(s store.Store, signer jwtx.Signer, issuer string, ttl time.Duration) *AuthService {
	if ttl <= 0 {
		ttl = jwtx.DefaultAccessTokenTTL
	}
	return &AuthService{
		Store:    s,
		Signer:   signer,
		Issuer:   issuer,
		TokenTTL: ttl,
		Now:      time.Now,
	}
}

// RegisterParams are the inputs for creating an account. All fields are
// required.
type RegisterParams struct {
	Email    string
	Password string
	Name     string
	Phone    string
}

// Register creates a new user with an argon2id password hash. A reused
// email yields ErrDuplicateEmail.
func (s *AuthService) Register(ctx context.Context, p RegisterParams) (domain.User, error) {
	p.Email = strings.TrimSpace(strings.ToLower(p.Email))
	p.Name = strings.TrimSpace(p.Name)
	p.Phone = strings.TrimSpace(p.Phone)

	if p.Email == "" || p.Password == "" || p.Name == "" || p.Phone == "" {
		return domain.User{}, ErrMissingFields
	}

	hash, err := cryptox.HashPassword(p.Password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hashing password: %w", err)
	}

	now := s.Now().UTC()
	user := domain.User{
		ID:           idx.New(),
		Email:        p.Email,
		PasswordHash: hash,
		Name:         p.Name,
		Phone:        p.Phone,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.Store.Users().CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, ErrDuplicateEmail
		}
		return domain.User{}, fmt.Errorf("creating user: %w", err)
	}

	slogx.FromContext(ctx).Info("user registered",
		"user_id", user.ID.String(),
		"email", user.Email,
	)
	return user, nil
}

// Login verifies credentials and mints a bearer token. Unknown email and
// wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, domain.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return "", domain.User{}, ErrMissingFields
	}

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Burn a verify anyway so response timing doesn't leak
			// whether the account exists.
			_ = cryptox.VerifyPassword(password, cryptox.DummyHash)
			return "", domain.User{}, ErrInvalidCredentials
		}
		return "", domain.User{}, fmt.Errorf("looking up user: %w", err)
	}

	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		return "", domain.User{}, ErrInvalidCredentials
	}

	claims := jwtx.NewAccessClaims(
		user.ID.String(),
		user.Email,
		user.Name,
		s.TokenTTL,
		s.Issuer,
		s.Now().UTC(),
	)

	token, err := s.Signer.Sign(claims)
	if err != nil {
		return "", domain.User{}, fmt.Errorf("signing token: %w", err)
	}

	slogx.FromContext(ctx).Info("user logged in", "user_id", user.ID.String())
	return token, user, nil
}
