package services

import (
	"context"
	"strings"
	"testing"

	"marketplace/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func orderInput(p *models.Product, qty *int, total float64) *models.OrderInput {
	return &models.OrderInput{
		Products:    []models.OrderLineInput{{Product: p.ID.Hex(), Quantity: qty}},
		TotalPoints: ptr(total),
	}
}

func TestOrderCreate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, seller := env.signup(t, models.RoleSeller)
	_, client := env.signup(t, models.RoleClient)
	p := env.product(t, seller)

	o, err := env.orders.Create(ctx, client, orderInput(p, nil, 100))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if o.Client != client.ID {
		t.Errorf("client = %s, want %s", o.Client.Hex(), client.ID.Hex())
	}
	if o.Status != models.OrderStatusPending {
		t.Errorf("status = %s, want pending", o.Status)
	}
	if o.TotalPoints != 100 {
		t.Errorf("total_points = %v, want 100", o.TotalPoints)
	}
	if len(o.Products) != 1 || o.Products[0].Quantity != 1 {
		t.Errorf("lines = %+v, want one line with default quantity 1", o.Products)
	}
	if o.Date.IsZero() {
		t.Error("date not set")
	}

	for _, a := range []*models.Actor{seller, nil} {
		_, err := env.orders.Create(ctx, a, orderInput(p, nil, 1))
		assertErrType[*ForbiddenError](t, err)
	}
}

func TestOrderCreateValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, seller := env.signup(t, models.RoleSeller)
	_, client := env.signup(t, models.RoleClient)
	p := env.product(t, seller)

	tests := []struct {
		name string
		in   *models.OrderInput
		want string
	}{
		{"no lines", &models.OrderInput{TotalPoints: ptr(1.0)}, "at least one item"},
		{"no total", &models.OrderInput{Products: []models.OrderLineInput{{Product: p.ID.Hex()}}}, "total_points is required"},
		{"zero quantity", orderInput(p, ptr(0), 1), "quantity must be at least 1"},
		{"bad product id", &models.OrderInput{Products: []models.OrderLineInput{{Product: "xyz"}}, TotalPoints: ptr(1.0)}, "invalid product id"},
		{"unknown product", &models.OrderInput{Products: []models.OrderLineInput{{Product: primitive.NewObjectID().Hex()}}, TotalPoints: ptr(1.0)}, "does not exist"},
		{"negative total", orderInput(p, nil, -5), "total_points must be at least 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.orders.Create(ctx, client, tt.in)
			verr := assertErrType[*ValidationError](t, err)
			if !strings.Contains(verr.Message, tt.want) {
				t.Errorf("message = %q, want it to contain %q", verr.Message, tt.want)
			}
		})
	}
}

func TestOrderAccess(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, seller := env.signup(t, models.RoleSeller)
	_, owner := env.signup(t, models.RoleClient)
	_, otherClient := env.signup(t, models.RoleClient)
	_, admin := env.signup(t, models.RoleAdmin)
	p := env.product(t, seller)
	o, err := env.orders.Create(ctx, owner, orderInput(p, ptr(2), 50))
	if err != nil {
		t.Fatal(err)
	}

	for name, a := range map[string]*models.Actor{"seller": seller, "other client": otherClient} {
		_, err := env.orders.Get(ctx, a, o.ID)
		if _, ok := err.(*ForbiddenError); !ok {
			t.Errorf("%s Get: error = %v, want forbidden", name, err)
		}
		_, err = env.orders.Update(ctx, a, o.ID, &models.OrderInput{Status: ptr("cancelled")})
		assertErrType[*ForbiddenError](t, err)
		assertErrType[*ForbiddenError](t, env.orders.Delete(ctx, a, o.ID))
	}

	d, err := env.orders.Get(ctx, owner, o.ID)
	if err != nil {
		t.Fatalf("owner Get: %v", err)
	}
	if d.Client == nil || d.Client.ID != owner.ID {
		t.Errorf("client not expanded: %+v", d.Client)
	}
	if len(d.Products) != 1 || d.Products[0].Product == nil || d.Products[0].Product.Name != "Desk lamp" || d.Products[0].Product.Price != 25 {
		t.Errorf("products not expanded: %+v", d.Products)
	}

	updated, err := env.orders.Update(ctx, admin, o.ID, &models.OrderInput{Status: ptr("completed")})
	if err != nil {
		t.Fatalf("admin Update: %v", err)
	}
	if updated.Status != models.OrderStatusCompleted || updated.Client != owner.ID || updated.TotalPoints != 50 {
		t.Errorf("after update: %+v", updated)
	}

	_, err = env.orders.Update(ctx, owner, o.ID, &models.OrderInput{Status: ptr("shipped")})
	if verr := assertErrType[*ValidationError](t, err); !strings.Contains(verr.Message, "status must be one of") {
		t.Errorf("message = %q", verr.Message)
	}

	if err := env.orders.Delete(ctx, owner, o.ID); err != nil {
		t.Fatalf("owner Delete: %v", err)
	}
	_, err = env.orders.Get(ctx, owner, o.ID)
	assertErrType[*NotFoundError](t, err)
}

func TestOrderList(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, seller := env.signup(t, models.RoleSeller)
	_, alice := env.signup(t, models.RoleClient)
	_, bob := env.signup(t, models.RoleClient)
	_, admin := env.signup(t, models.RoleAdmin)
	p := env.product(t, seller)

	for _, c := range []*models.Actor{alice, alice, bob} {
		if _, err := env.orders.Create(ctx, c, orderInput(p, nil, 10)); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		name  string
		actor *models.Actor
		want  int
	}{
		{"alice", alice, 2},
		{"bob", bob, 1},
		{"seller", seller, 0},
		{"admin", admin, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, err := env.orders.List(ctx, tt.actor)
			if err != nil {
				t.Fatal(err)
			}
			if len(list) != tt.want {
				t.Errorf("len = %d, want %d", len(list), tt.want)
			}
			for _, o := range list {
				if !tt.actor.IsAdmin() && o.Order.Client != tt.actor.ID {
					t.Errorf("order %s leaked to %s", o.ID.Hex(), tt.name)
				}
			}
		})
	}

	_, err := env.orders.List(ctx, nil)
	assertErrType[*AuthError](t, err)
}

func TestOrderExpansionSurvivesDeletedProduct(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, seller := env.signup(t, models.RoleSeller)
	_, client := env.signup(t, models.RoleClient)
	p := env.product(t, seller)
	o, err := env.orders.Create(ctx, client, orderInput(p, nil, 10))
	if err != nil {
		t.Fatal(err)
	}
	if err := env.products.Delete(ctx, seller, p.ID); err != nil {
		t.Fatal(err)
	}

	d, err := env.orders.Get(ctx, client, o.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if d.Products[0].Product != nil {
		t.Errorf("deleted product should expand to nil, got %+v", d.Products[0].Product)
	}
}
