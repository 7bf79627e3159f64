package services

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"marketplace/internal/models"
	"marketplace/internal/store"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

const testPassword = "Secr3t!pass"

type testEnv struct {
	store        *store.MemoryStore
	auth         *AuthService
	users        *UserService
	products     *ProductService
	orders       *OrderService
	transactions *TransactionService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithOptions(t, UserServiceOptions{AllowPrivilegedSignup: true})
}

func newTestEnvWithOptions(t *testing.T, opts UserServiceOptions) *testEnv {
	t.Helper()
	logger := zerolog.Nop()
	st := store.NewMemoryStore()

	hasher, err := NewPasswordHasher(4, bcrypt.MinCost)
	if err != nil {
		t.Fatalf("NewPasswordHasher: %v", err)
	}
	auth := NewAuthService("test-secret", time.Hour, logger)

	return &testEnv{
		store:        st,
		auth:         auth,
		users:        NewUserService(st, hasher, auth, logger, opts),
		products:     NewProductService(st, st, logger),
		orders:       NewOrderService(st, st, st, logger),
		transactions: NewTransactionService(st, st, st, logger),
	}
}

var emailSeq atomic.Int64

func (e *testEnv) signup(t *testing.T, role models.Role) (*models.User, *models.Actor) {
	t.Helper()
	n := emailSeq.Add(1)
	u, err := e.users.Signup(context.Background(), &models.SignupRequest{
		Name:     fmt.Sprintf("user%d", n),
		Email:    fmt.Sprintf("user%d@example.com", n),
		Password: testPassword,
		Phone:    "+212600000000",
		Role:     string(role),
	})
	if err != nil {
		t.Fatalf("Signup(%s): %v", role, err)
	}
	return u, &models.Actor{ID: u.ID, Role: u.Role}
}

func (e *testEnv) product(t *testing.T, seller *models.Actor) *models.Product {
	t.Helper()
	p, err := e.products.Create(context.Background(), seller, &models.ProductInput{
		Name:        ptr("Desk lamp"),
		Description: ptr("Warm light"),
		Price:       ptr(25.0),
		Stock:       ptr(4),
	})
	if err != nil {
		t.Fatalf("Create product: %v", err)
	}
	return p
}

func ptr[T any](v T) *T { return &v }

func assertErrType[T error](t *testing.T, err error) T {
	t.Helper()
	var target T
	if !errors.As(err, &target) {
		t.Fatalf("error = %v (%T), want %T", err, err, target)
	}
	return target
}
