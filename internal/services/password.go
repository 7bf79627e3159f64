package services

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"
)

// PasswordCost is the bcrypt work factor for stored passwords.
const PasswordCost = 10

// PasswordHasher runs bcrypt with at most a fixed number of hashes in flight.
// Each request hashes on its own goroutine; the semaphore only caps CPU use
// and waiting for a slot honors the request context.
type PasswordHasher struct {
	cost  int
	slots *semaphore.Weighted
	dummy []byte
}

func NewPasswordHasher(concurrency, cost int) (*PasswordHasher, error) {
	if concurrency < 1 {
		concurrency = 1
	}
	if cost == 0 {
		cost = PasswordCost
	}
	// Compared against on logins for unknown emails so that path costs one
	// bcrypt comparison too.
	dummy, err := bcrypt.GenerateFromPassword([]byte("dummy-password-for-timing"), cost)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare password hasher: %w", err)
	}
	return &PasswordHasher{
		cost:  cost,
		slots: semaphore.NewWeighted(int64(concurrency)),
		dummy: dummy,
	}, nil
}

func (h *PasswordHasher) Hash(ctx context.Context, password string) (string, error) {
	if err := h.slots.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer h.slots.Release(1)

	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Compare reports whether password matches hash. An empty hash is compared
// against the dummy hash and always fails.
func (h *PasswordHasher) Compare(ctx context.Context, hash, password string) (bool, error) {
	if err := h.slots.Acquire(ctx, 1); err != nil {
		return false, err
	}
	defer h.slots.Release(1)

	target := []byte(hash)
	if hash == "" {
		target = h.dummy
	}
	err := bcrypt.CompareHashAndPassword(target, []byte(password))
	switch {
	case err == nil:
		return hash != "", nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("failed to compare password: %w", err)
	}
}
