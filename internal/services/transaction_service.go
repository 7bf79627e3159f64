package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"marketplace/internal/models"
	"marketplace/internal/policy"
	"marketplace/internal/store"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TransactionService struct {
	transactions store.TransactionStore
	users        store.UserStore
	products     store.ProductStore
	logger       zerolog.Logger
	now          func() time.Time
}

func NewTransactionService(transactions store.TransactionStore, users store.UserStore, products store.ProductStore, logger zerolog.Logger) *TransactionService {
	return &TransactionService{
		transactions: transactions,
		users:        users,
		products:     products,
		logger:       logger,
		now:          time.Now,
	}
}

// List returns every transaction to admins and, to everyone else, only the
// ones naming them as client or seller.
func (s *TransactionService) List(ctx context.Context, actor *models.Actor) ([]*models.TransactionDetail, error) {
	if actor == nil {
		return nil, Auth("Authorization token required")
	}
	var filter store.TransactionFilter
	if !policy.SeesAll(actor) {
		filter.Participant = &actor.ID
	}

	txs, err := s.transactions.ListTransactions(ctx, filter)
	if err != nil {
		s.logger.Error().Err(err).Msg("Error listing transactions")
		return nil, err
	}

	refs := newRefResolver(s.users, s.products)
	out := make([]*models.TransactionDetail, 0, len(txs))
	for _, t := range txs {
		d, err := refs.transactionDetail(ctx, t)
		if err != nil {
			return nil, fmt.Errorf("failed to expand transaction %s: %w", t.ID.Hex(), err)
		}
		out = append(out, d)
	}
	return out, nil
}

func (s *TransactionService) Get(ctx context.Context, actor *models.Actor, id primitive.ObjectID) (*models.TransactionDetail, error) {
	t, err := s.transactions.GetTransaction(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Transaction not found")
	}
	if !policy.CanAccess(actor, t) {
		return nil, Forbidden("Not authorized")
	}
	return newRefResolver(s.users, s.products).transactionDetail(ctx, t)
}

// Create records a purchase or refund between the named client and seller.
// No balance moves; this is a ledger entry only.
func (s *TransactionService) Create(ctx context.Context, actor *models.Actor, req *models.TransactionRequest) (*models.Transaction, error) {
	if !policy.CanCreateTransaction(actor) {
		return nil, Forbidden("Not authorized to create transactions")
	}

	if req.Client == "" {
		return nil, Validation("transaction validation failed: client is required")
	}
	if req.Seller == "" {
		return nil, Validation("transaction validation failed: seller is required")
	}
	if req.Type == "" {
		return nil, Validation("transaction validation failed: type is required")
	}
	if req.Amount == nil {
		return nil, Validation("transaction validation failed: amount is required")
	}
	clientID, err := ParseID(req.Client, "client")
	if err != nil {
		return nil, err
	}
	sellerID, err := ParseID(req.Seller, "seller")
	if err != nil {
		return nil, err
	}
	for _, ref := range []struct {
		id   primitive.ObjectID
		what string
	}{{clientID, "client"}, {sellerID, "seller"}} {
		if _, err := s.users.GetUserByID(ctx, ref.id); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, Validation("transaction validation failed: %s %s does not exist", ref.what, ref.id.Hex())
			}
			return nil, err
		}
	}

	now := s.now()
	t := &models.Transaction{
		ID:        primitive.NewObjectID(),
		Client:    clientID,
		Seller:    sellerID,
		Type:      models.TransactionType(req.Type),
		Amount:    *req.Amount,
		Date:      now,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := validateStruct("transaction", t); err != nil {
		return nil, err
	}

	if err := s.transactions.CreateTransaction(ctx, t); err != nil {
		s.logger.Error().Err(err).Msg("Error creating transaction")
		return nil, err
	}

	s.logger.Info().
		Str("transaction_id", t.ID.Hex()).
		Str("actor_id", actor.ID.Hex()).
		Str("type", string(t.Type)).
		Float64("amount", t.Amount).
		Msg("Transaction recorded")
	return t, nil
}

// Delete is admin only; the role is checked before the transaction is
// looked up.
func (s *TransactionService) Delete(ctx context.Context, actor *models.Actor, id primitive.ObjectID) error {
	if !policy.CanDeleteTransaction(actor) {
		return Forbidden("Only admin can delete transactions")
	}

	if err := s.transactions.DeleteTransaction(ctx, id); err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.logger.Error().Err(err).Str("transaction_id", id.Hex()).Msg("Error deleting transaction")
		}
		return notFoundOr(err, "Transaction not found")
	}

	s.logger.Info().Str("transaction_id", id.Hex()).Str("actor_id", actor.ID.Hex()).Msg("Transaction deleted")
	return nil
}
