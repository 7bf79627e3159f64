package store

import (
	"context"
	"sort"
	"sync"

	"marketplace/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryStore keeps every collection in process. It backs the test suites and
// STORE_DRIVER=memory; documents are copied in and out so callers never share
// state with the store.
type MemoryStore struct {
	mu           sync.RWMutex
	users        map[primitive.ObjectID]*models.User
	emails       map[string]primitive.ObjectID
	products     map[primitive.ObjectID]*models.Product
	orders       map[primitive.ObjectID]*models.Order
	transactions map[primitive.ObjectID]*models.Transaction
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:        make(map[primitive.ObjectID]*models.User),
		emails:       make(map[string]primitive.ObjectID),
		products:     make(map[primitive.ObjectID]*models.Product),
		orders:       make(map[primitive.ObjectID]*models.Order),
		transactions: make(map[primitive.ObjectID]*models.Transaction),
	}
}

func (s *MemoryStore) Close(context.Context) error { return nil }

func (s *MemoryStore) CreateUser(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.emails[u.Email]; ok {
		return ErrDuplicate
	}
	if _, ok := s.users[u.ID]; ok {
		return ErrDuplicate
	}
	cp := *u
	s.users[u.ID] = &cp
	s.emails[u.Email] = u.ID
	return nil
}

func (s *MemoryStore) GetUserByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *MemoryStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.emails[email]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *s.users[id]
	return &cp, nil
}

func (s *MemoryStore) CreateProduct(_ context.Context, p *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[p.ID]; ok {
		return ErrDuplicate
	}
	cp := *p
	s.products[p.ID] = &cp
	return nil
}

func (s *MemoryStore) GetProduct(_ context.Context, id primitive.ObjectID) (*models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *MemoryStore) ListProducts(context.Context) ([]*models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Product, 0, len(s.products))
	for _, p := range s.products {
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return earlier(out[i].CreatedAt.UnixNano(), out[j].CreatedAt.UnixNano(), out[i].ID, out[j].ID) })
	return out, nil
}

func (s *MemoryStore) UpdateProduct(_ context.Context, p *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[p.ID]; !ok {
		return ErrNotFound
	}
	cp := *p
	s.products[p.ID] = &cp
	return nil
}

func (s *MemoryStore) DeleteProduct(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[id]; !ok {
		return ErrNotFound
	}
	delete(s.products, id)
	return nil
}

func (s *MemoryStore) CreateOrder(_ context.Context, o *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orders[o.ID]; ok {
		return ErrDuplicate
	}
	s.orders[o.ID] = cloneOrder(o)
	return nil
}

func (s *MemoryStore) GetOrder(_ context.Context, id primitive.ObjectID) (*models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneOrder(o), nil
}

func (s *MemoryStore) ListOrders(_ context.Context, f OrderFilter) ([]*models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Order, 0)
	for _, o := range s.orders {
		if f.Client != nil && o.Client != *f.Client {
			continue
		}
		out = append(out, cloneOrder(o))
	}
	sort.Slice(out, func(i, j int) bool { return earlier(out[i].CreatedAt.UnixNano(), out[j].CreatedAt.UnixNano(), out[i].ID, out[j].ID) })
	return out, nil
}

func (s *MemoryStore) UpdateOrder(_ context.Context, o *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orders[o.ID]; !ok {
		return ErrNotFound
	}
	s.orders[o.ID] = cloneOrder(o)
	return nil
}

func (s *MemoryStore) DeleteOrder(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orders[id]; !ok {
		return ErrNotFound
	}
	delete(s.orders, id)
	return nil
}

func (s *MemoryStore) CreateTransaction(_ context.Context, t *models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.transactions[t.ID]; ok {
		return ErrDuplicate
	}
	cp := *t
	s.transactions[t.ID] = &cp
	return nil
}

func (s *MemoryStore) GetTransaction(_ context.Context, id primitive.ObjectID) (*models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.transactions[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (s *MemoryStore) ListTransactions(_ context.Context, f TransactionFilter) ([]*models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Transaction, 0)
	for _, t := range s.transactions {
		if f.Participant != nil && t.Client != *f.Participant && t.Seller != *f.Participant {
			continue
		}
		cp := *t
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return earlier(out[i].CreatedAt.UnixNano(), out[j].CreatedAt.UnixNano(), out[i].ID, out[j].ID) })
	return out, nil
}

func (s *MemoryStore) DeleteTransaction(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.transactions[id]; !ok {
		return ErrNotFound
	}
	delete(s.transactions, id)
	return nil
}

func cloneOrder(o *models.Order) *models.Order {
	cp := *o
	cp.Products = append([]models.OrderLine(nil), o.Products...)
	return &cp
}

// earlier orders by creation time, then by id so equal timestamps still sort
// the same way on every call.
func earlier(a, b int64, idA, idB primitive.ObjectID) bool {
	if a != b {
		return a < b
	}
	return idA.Hex() < idB.Hex()
}
