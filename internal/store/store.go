// Package store persists users, products, orders and transactions. The
// backends (MongoDB, MySQL, in-memory) all satisfy Store; callers never see
// driver errors for "no such row" or "duplicate key", only ErrNotFound and
// ErrDuplicate.
package store

import (
	"context"
	"errors"

	"marketplace/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate key")
)

type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

type ProductStore interface {
	CreateProduct(ctx context.Context, p *models.Product) error
	GetProduct(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	ListProducts(ctx context.Context) ([]*models.Product, error)
	UpdateProduct(ctx context.Context, p *models.Product) error
	DeleteProduct(ctx context.Context, id primitive.ObjectID) error
}

// OrderFilter narrows ListOrders. A nil Client lists every order.
type OrderFilter struct {
	Client *primitive.ObjectID
}

type OrderStore interface {
	CreateOrder(ctx context.Context, o *models.Order) error
	GetOrder(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	ListOrders(ctx context.Context, f OrderFilter) ([]*models.Order, error)
	UpdateOrder(ctx context.Context, o *models.Order) error
	DeleteOrder(ctx context.Context, id primitive.ObjectID) error
}

// TransactionFilter narrows ListTransactions. A nil Participant lists every
// transaction; otherwise only those naming it as client or seller.
type TransactionFilter struct {
	Participant *primitive.ObjectID
}

type TransactionStore interface {
	CreateTransaction(ctx context.Context, t *models.Transaction) error
	GetTransaction(ctx context.Context, id primitive.ObjectID) (*models.Transaction, error)
	ListTransactions(ctx context.Context, f TransactionFilter) ([]*models.Transaction, error)
	DeleteTransaction(ctx context.Context, id primitive.ObjectID) error
}

type Store interface {
	UserStore
	ProductStore
	OrderStore
	TransactionStore
	Close(ctx context.Context) error
}
