package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"marketplace/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestMemoryStoreUsers(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	u := &models.User{ID: primitive.NewObjectID(), Name: "alice", Email: "alice@example.com", Role: models.RoleClient}
	if err := s.CreateUser(ctx, u); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	dup := &models.User{ID: primitive.NewObjectID(), Email: "alice@example.com"}
	if err := s.CreateUser(ctx, dup); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("duplicate email: got %v, want ErrDuplicate", err)
	}

	got, err := s.GetUserByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if got.ID != u.ID {
		t.Errorf("GetUserByEmail id = %s, want %s", got.ID.Hex(), u.ID.Hex())
	}

	got.Name = "mutated"
	again, _ := s.GetUserByID(ctx, u.ID)
	if again.Name != "alice" {
		t.Errorf("store shares memory with caller: name = %q", again.Name)
	}

	if _, err := s.GetUserByID(ctx, primitive.NewObjectID()); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown id: got %v, want ErrNotFound", err)
	}
}

func TestMemoryStoreOrdersFilterAndOrder(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	alice, bob := primitive.NewObjectID(), primitive.NewObjectID()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var ids []primitive.ObjectID
	for i, client := range []primitive.ObjectID{alice, bob, alice} {
		o := &models.Order{
			ID:        primitive.NewObjectID(),
			Client:    client,
			Products:  []models.OrderLine{{Product: primitive.NewObjectID(), Quantity: 1}},
			CreatedAt: base.Add(time.Duration(3-i) * time.Minute),
		}
		ids = append(ids, o.ID)
		if err := s.CreateOrder(ctx, o); err != nil {
			t.Fatalf("CreateOrder: %v", err)
		}
	}

	all, _ := s.ListOrders(ctx, OrderFilter{})
	if len(all) != 3 {
		t.Fatalf("ListOrders all = %d, want 3", len(all))
	}
	if all[0].ID != ids[2] || all[2].ID != ids[0] {
		t.Error("ListOrders not sorted by creation time")
	}

	mine, _ := s.ListOrders(ctx, OrderFilter{Client: &alice})
	if len(mine) != 2 {
		t.Fatalf("ListOrders alice = %d, want 2", len(mine))
	}
	for _, o := range mine {
		if o.Client != alice {
			t.Errorf("order %s belongs to %s", o.ID.Hex(), o.Client.Hex())
		}
	}

	mine[0].Products[0].Quantity = 99
	fresh, _ := s.GetOrder(ctx, mine[0].ID)
	if fresh.Products[0].Quantity != 1 {
		t.Error("order lines alias store memory")
	}

	if err := s.DeleteOrder(ctx, ids[1]); err != nil {
		t.Fatalf("DeleteOrder: %v", err)
	}
	if err := s.DeleteOrder(ctx, ids[1]); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete: got %v, want ErrNotFound", err)
	}
	if err := s.UpdateOrder(ctx, &models.Order{ID: ids[1]}); !errors.Is(err, ErrNotFound) {
		t.Errorf("update deleted: got %v, want ErrNotFound", err)
	}
}

func TestMemoryStoreTransactionParticipants(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	client, seller, other := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()
	tx := &models.Transaction{ID: primitive.NewObjectID(), Client: client, Seller: seller, Type: models.TransactionTypePurchase, Amount: 10}
	if err := s.CreateTransaction(ctx, tx); err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}

	tests := []struct {
		name string
		who  primitive.ObjectID
		want int
	}{
		{"client", client, 1},
		{"seller", seller, 1},
		{"stranger", other, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			who := tt.who
			got, err := s.ListTransactions(ctx, TransactionFilter{Participant: &who})
			if err != nil {
				t.Fatalf("ListTransactions: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("got %d transactions, want %d", len(got), tt.want)
			}
		})
	}
}
