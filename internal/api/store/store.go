// Package store defines the data access interfaces for the relational store.
// Concrete drivers live under drivers/. The relational store is deliberately
// plain: parameterized queries behind narrow repositories, nothing clever.
package store

import (
	"context"
	"errors"

	"github.com/slicelab/pizzeria/internal/api/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. It exposes sub-repositories to
// keep concerns tidy and testable.
type Store interface {
	Users() Users
	Pizzas() Pizzas
	Catalog() Catalog

	ApplyMigrations() error

	// WithTx executes fn within a transaction, rolling back when fn
	// returns an error and committing otherwise.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error

	Close() error
}

// Tx is a transaction-scoped view of the repositories.
type Tx interface {
	Users() Users
	Pizzas() Pizzas
	Catalog() Catalog
}

type Users interface {
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByUsername is used during login, scoped to a tenant since
	// usernames are only unique per shop.
	GetUserByUsername(ctx context.Context, tenant int64, username string) (domain.User, error)

	// CreateUser inserts a new user (id is provided by app via ULID).
	CreateUser(ctx context.Context, u domain.User) error

	// TouchLastLogin bumps last_login to now.
	TouchLastLogin(ctx context.Context, userID string) error
}

type Pizzas interface {
	// CreatePizza inserts the pizza row and its ingredient links.
	CreatePizza(ctx context.Context, p domain.Pizza) error

	ListPizzas(ctx context.Context, tenant int64) ([]domain.Pizza, error)
}

type Catalog interface {
	ListIngredients(ctx context.Context) ([]domain.Ingredient, error)
	ListTags(ctx context.Context) ([]domain.Tag, error)
	ListShops(ctx context.Context) ([]domain.Shop, error)
}
