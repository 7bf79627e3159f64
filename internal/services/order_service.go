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

type OrderService struct {
	orders   store.OrderStore
	products store.ProductStore
	users    store.UserStore
	logger   zerolog.Logger
	now      func() time.Time
}

func NewOrderService(orders store.OrderStore, products store.ProductStore, users store.UserStore, logger zerolog.Logger) *OrderService {
	return &OrderService{
		orders:   orders,
		products: products,
		users:    users,
		logger:   logger,
		now:      time.Now,
	}
}

// List returns every order to admins and only the actor's own orders to
// everyone else.
func (s *OrderService) List(ctx context.Context, actor *models.Actor) ([]*models.OrderDetail, error) {
	if actor == nil {
		return nil, Auth("Authorization token required")
	}
	var filter store.OrderFilter
	if !policy.SeesAll(actor) {
		filter.Client = &actor.ID
	}

	orders, err := s.orders.ListOrders(ctx, filter)
	if err != nil {
		s.logger.Error().Err(err).Msg("Error listing orders")
		return nil, err
	}

	refs := newRefResolver(s.users, s.products)
	out := make([]*models.OrderDetail, 0, len(orders))
	for _, o := range orders {
		d, err := refs.orderDetail(ctx, o)
		if err != nil {
			return nil, fmt.Errorf("failed to expand order %s: %w", o.ID.Hex(), err)
		}
		out = append(out, d)
	}
	return out, nil
}

func (s *OrderService) Get(ctx context.Context, actor *models.Actor, id primitive.ObjectID) (*models.OrderDetail, error) {
	o, err := s.orders.GetOrder(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Order not found")
	}
	if !policy.CanModify(actor, o) {
		return nil, Forbidden("Not authorized")
	}
	return newRefResolver(s.users, s.products).orderDetail(ctx, o)
}

// Create places an order owned by actor. total_points is taken as given.
func (s *OrderService) Create(ctx context.Context, actor *models.Actor, in *models.OrderInput) (*models.Order, error) {
	if !policy.CanCreateOrder(actor) {
		return nil, Forbidden("Only clients can create orders")
	}
	if in.TotalPoints == nil {
		return nil, Validation("order validation failed: total_points is required")
	}
	lines, err := s.resolveLines(ctx, in.Products)
	if err != nil {
		return nil, err
	}

	now := s.now()
	o := &models.Order{
		ID:          primitive.NewObjectID(),
		Client:      actor.ID,
		Products:    lines,
		Date:        now,
		Status:      models.OrderStatusPending,
		TotalPoints: *in.TotalPoints,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := validateStruct("order", o); err != nil {
		return nil, err
	}

	if err := s.orders.CreateOrder(ctx, o); err != nil {
		s.logger.Error().Err(err).Msg("Error creating order")
		return nil, err
	}

	s.logger.Info().
		Str("order_id", o.ID.Hex()).
		Str("client_id", actor.ID.Hex()).
		Float64("total_points", o.TotalPoints).
		Msg("Order created")
	return o, nil
}

// Update merges products, status and total_points onto the stored order.
// The client reference cannot be changed.
func (s *OrderService) Update(ctx context.Context, actor *models.Actor, id primitive.ObjectID, in *models.OrderInput) (*models.Order, error) {
	o, err := s.orders.GetOrder(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Order not found")
	}
	if !policy.CanModify(actor, o) {
		return nil, Forbidden("Not authorized")
	}

	if in.Products != nil {
		lines, err := s.resolveLines(ctx, in.Products)
		if err != nil {
			return nil, err
		}
		o.Products = lines
	}
	if in.Status != nil {
		o.Status = models.OrderStatus(*in.Status)
	}
	if in.TotalPoints != nil {
		o.TotalPoints = *in.TotalPoints
	}
	o.UpdatedAt = s.now()
	if err := validateStruct("order", o); err != nil {
		return nil, err
	}

	if err := s.orders.UpdateOrder(ctx, o); err != nil {
		s.logger.Error().Err(err).Str("order_id", id.Hex()).Msg("Error updating order")
		return nil, notFoundOr(err, "Order not found")
	}

	s.logger.Info().Str("order_id", id.Hex()).Str("actor_id", actor.ID.Hex()).Str("status", string(o.Status)).Msg("Order updated")
	return o, nil
}

func (s *OrderService) Delete(ctx context.Context, actor *models.Actor, id primitive.ObjectID) error {
	o, err := s.orders.GetOrder(ctx, id)
	if err != nil {
		return notFoundOr(err, "Order not found")
	}
	if !policy.CanModify(actor, o) {
		return Forbidden("Not authorized")
	}

	if err := s.orders.DeleteOrder(ctx, id); err != nil {
		s.logger.Error().Err(err).Str("order_id", id.Hex()).Msg("Error deleting order")
		return notFoundOr(err, "Order not found")
	}

	s.logger.Info().Str("order_id", id.Hex()).Str("actor_id", actor.ID.Hex()).Msg("Order deleted")
	return nil
}

// resolveLines parses line items, defaults a missing quantity to 1 and
// checks every referenced product exists.
func (s *OrderService) resolveLines(ctx context.Context, in []models.OrderLineInput) ([]models.OrderLine, error) {
	if len(in) == 0 {
		return nil, Validation("order validation failed: products must contain at least one item")
	}

	lines := make([]models.OrderLine, 0, len(in))
	for i, item := range in {
		id, err := ParseID(item.Product, "product")
		if err != nil {
			return nil, err
		}
		qty := 1
		if item.Quantity != nil {
			qty = *item.Quantity
		}
		if qty < 1 {
			return nil, Validation("order validation failed: products[%d].quantity must be at least 1", i)
		}

		if _, err := s.products.GetProduct(ctx, id); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, Validation("order validation failed: product %s does not exist", id.Hex())
			}
			return nil, err
		}
		lines = append(lines, models.OrderLine{Product: id, Quantity: qty})
	}
	return lines, nil
}
