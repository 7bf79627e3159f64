package services

import (
	"context"
	"fmt"
	"time"

	"marketplace/internal/models"
	"marketplace/internal/policy"
	"marketplace/internal/store"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ProductService struct {
	products store.ProductStore
	users    store.UserStore
	logger   zerolog.Logger
	now      func() time.Time
}

func NewProductService(products store.ProductStore, users store.UserStore, logger zerolog.Logger) *ProductService {
	return &ProductService{
		products: products,
		users:    users,
		logger:   logger,
		now:      time.Now,
	}
}

// List is public: every product, sellers expanded.
func (s *ProductService) List(ctx context.Context) ([]*models.ProductDetail, error) {
	products, err := s.products.ListProducts(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("Error listing products")
		return nil, err
	}

	refs := newRefResolver(s.users, s.products)
	out := make([]*models.ProductDetail, 0, len(products))
	for _, p := range products {
		d, err := refs.productDetail(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("failed to expand product %s: %w", p.ID.Hex(), err)
		}
		out = append(out, d)
	}
	return out, nil
}

func (s *ProductService) Get(ctx context.Context, id primitive.ObjectID) (*models.ProductDetail, error) {
	p, err := s.products.GetProduct(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Product not found")
	}
	return newRefResolver(s.users, s.products).productDetail(ctx, p)
}

func (s *ProductService) Create(ctx context.Context, actor *models.Actor, in *models.ProductInput) (*models.Product, error) {
	if !policy.CanCreateProduct(actor) {
		return nil, Forbidden("Only sellers can create products")
	}
	if err := requireProductFields(in); err != nil {
		return nil, err
	}

	now := s.now()
	p := &models.Product{
		ID:        primitive.NewObjectID(),
		Seller:    actor.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	in.Apply(p)
	if err := validateStruct("product", p); err != nil {
		return nil, err
	}

	if err := s.products.CreateProduct(ctx, p); err != nil {
		s.logger.Error().Err(err).Msg("Error creating product")
		return nil, err
	}

	s.logger.Info().Str("product_id", p.ID.Hex()).Str("seller_id", actor.ID.Hex()).Msg("Product created")
	return p, nil
}

// Update merges the supplied fields onto the stored product. The seller
// reference is not among the updatable fields.
func (s *ProductService) Update(ctx context.Context, actor *models.Actor, id primitive.ObjectID, in *models.ProductInput) (*models.Product, error) {
	p, err := s.products.GetProduct(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Product not found")
	}
	if !policy.CanModify(actor, p) {
		return nil, Forbidden("Not authorized")
	}

	in.Apply(p)
	p.UpdatedAt = s.now()
	if err := validateStruct("product", p); err != nil {
		return nil, err
	}

	if err := s.products.UpdateProduct(ctx, p); err != nil {
		s.logger.Error().Err(err).Str("product_id", id.Hex()).Msg("Error updating product")
		return nil, notFoundOr(err, "Product not found")
	}

	s.logger.Info().Str("product_id", id.Hex()).Str("actor_id", actor.ID.Hex()).Msg("Product updated")
	return p, nil
}

func (s *ProductService) Delete(ctx context.Context, actor *models.Actor, id primitive.ObjectID) error {
	p, err := s.products.GetProduct(ctx, id)
	if err != nil {
		return notFoundOr(err, "Product not found")
	}
	if !policy.CanModify(actor, p) {
		return Forbidden("Not authorized")
	}

	if err := s.products.DeleteProduct(ctx, id); err != nil {
		s.logger.Error().Err(err).Str("product_id", id.Hex()).Msg("Error deleting product")
		return notFoundOr(err, "Product not found")
	}

	s.logger.Info().Str("product_id", id.Hex()).Str("actor_id", actor.ID.Hex()).Msg("Product deleted")
	return nil
}

func requireProductFields(in *models.ProductInput) error {
	switch {
	case in.Name == nil || *in.Name == "":
		return Validation("product validation failed: name is required")
	case in.Description == nil || *in.Description == "":
		return Validation("product validation failed: description is required")
	case in.Price == nil:
		return Validation("product validation failed: price is required")
	case in.Stock == nil:
		return Validation("product validation failed: stock is required")
	}
	return nil
}
