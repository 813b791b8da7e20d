// Package store defines the persistence interfaces for the canvasser
// service. Concrete drivers live under drivers/.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/fieldstack/canvasser/internal/canvasser/domain"
	"github.com/fieldstack/canvasser/pkg/idx"
)

// Sentinel errors drivers map their backend-specific failures onto.
var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root persistence handle.
type Store interface {
	Users() Users
	Sales() Sales

	// WithTx runs fn inside a transaction. The transactional repos passed
	// to fn see uncommitted writes; any error rolls the whole thing back.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// ApplyMigrations brings the schema up to date.
	ApplyMigrations() error

	Ping(ctx context.Context) error
	Close() error
}

// Tx exposes the repositories bound to one transaction.
type Tx interface {
	Users() Users
	Sales() Sales
}

// Users is the user account repository.
type Users interface {
	CreateUser(ctx context.Context, u domain.User) error
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)
	GetUserByID(ctx context.Context, id idx.ID) (domain.User, error)
}

// Sales is the sale record repository.
type Sales interface {
	CreateSale(ctx context.Context, s domain.Sale) error

	// ListUserSalesSince returns the user's sales with CreatedAt >= since,
	// newest first.
	ListUserSalesSince(ctx context.Context, userID idx.ID, since time.Time) ([]domain.Sale, error)

	CountUserSales(ctx context.Context, userID idx.ID) (int64, error)
}
