package services

import (
	"context"
	"errors"

	"marketplace/internal/models"
	"marketplace/internal/store"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// refResolver expands user and product references for one response,
// fetching each distinct id once. A reference to a deleted document expands
// to nil.
type refResolver struct {
	users    store.UserStore
	products store.ProductStore

	userCache    map[primitive.ObjectID]*models.UserSummary
	productCache map[primitive.ObjectID]*models.ProductSummary
}

func newRefResolver(users store.UserStore, products store.ProductStore) *refResolver {
	return &refResolver{
		users:        users,
		products:     products,
		userCache:    make(map[primitive.ObjectID]*models.UserSummary),
		productCache: make(map[primitive.ObjectID]*models.ProductSummary),
	}
}

func (r *refResolver) user(ctx context.Context, id primitive.ObjectID) (*models.UserSummary, error) {
	if s, ok := r.userCache[id]; ok {
		return s, nil
	}
	u, err := r.users.GetUserByID(ctx, id)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	var s *models.UserSummary
	if u != nil {
		s = u.Summary()
	}
	r.userCache[id] = s
	return s, nil
}

func (r *refResolver) product(ctx context.Context, id primitive.ObjectID) (*models.ProductSummary, error) {
	if s, ok := r.productCache[id]; ok {
		return s, nil
	}
	p, err := r.products.GetProduct(ctx, id)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	var s *models.ProductSummary
	if p != nil {
		s = p.Summary()
	}
	r.productCache[id] = s
	return s, nil
}

func (r *refResolver) productDetail(ctx context.Context, p *models.Product) (*models.ProductDetail, error) {
	seller, err := r.user(ctx, p.Seller)
	if err != nil {
		return nil, err
	}
	return &models.ProductDetail{Product: *p, Seller: seller}, nil
}

func (r *refResolver) orderDetail(ctx context.Context, o *models.Order) (*models.OrderDetail, error) {
	client, err := r.user(ctx, o.Client)
	if err != nil {
		return nil, err
	}
	lines := make([]models.OrderLineDetail, 0, len(o.Products))
	for _, line := range o.Products {
		p, err := r.product(ctx, line.Product)
		if err != nil {
			return nil, err
		}
		lines = append(lines, models.OrderLineDetail{Product: p, Quantity: line.Quantity})
	}
	return &models.OrderDetail{Order: *o, Client: client, Products: lines}, nil
}

func (r *refResolver) transactionDetail(ctx context.Context, t *models.Transaction) (*models.TransactionDetail, error) {
	client, err := r.user(ctx, t.Client)
	if err != nil {
		return nil, err
	}
	seller, err := r.user(ctx, t.Seller)
	if err != nil {
		return nil, err
	}
	return &models.TransactionDetail{Transaction: *t, Client: client, Seller: seller}, nil
}
