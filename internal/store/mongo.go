package store

import (
	"context"
	"errors"
	"fmt"

	"marketplace/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoStore struct {
	db           *mongo.Database
	users        *mongo.Collection
	products     *mongo.Collection
	orders       *mongo.Collection
	transactions *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{
		db:           db,
		users:        db.Collection("users"),
		products:     db.Collection("products"),
		orders:       db.Collection("orders"),
		transactions: db.Collection("transactions"),
	}
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.db.Client().Disconnect(ctx)
}

var byCreation = options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})

func (s *MongoStore) CreateUser(ctx context.Context, u *models.User) error {
	if _, err := s.users.InsertOne(ctx, u); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *MongoStore) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := findOne(ctx, s.users, bson.M{"_id": id}, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *MongoStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := findOne(ctx, s.users, bson.M{"email": email}, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *MongoStore) CreateProduct(ctx context.Context, p *models.Product) error {
	return insertOne(ctx, s.products, p)
}

func (s *MongoStore) GetProduct(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	var p models.Product
	if err := findOne(ctx, s.products, bson.M{"_id": id}, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *MongoStore) ListProducts(ctx context.Context) ([]*models.Product, error) {
	out := make([]*models.Product, 0)
	if err := findAll(ctx, s.products, bson.M{}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *MongoStore) UpdateProduct(ctx context.Context, p *models.Product) error {
	return replaceOne(ctx, s.products, p.ID, p)
}

func (s *MongoStore) DeleteProduct(ctx context.Context, id primitive.ObjectID) error {
	return deleteOne(ctx, s.products, id)
}

func (s *MongoStore) CreateOrder(ctx context.Context, o *models.Order) error {
	return insertOne(ctx, s.orders, o)
}

func (s *MongoStore) GetOrder(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	var o models.Order
	if err := findOne(ctx, s.orders, bson.M{"_id": id}, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (s *MongoStore) ListOrders(ctx context.Context, f OrderFilter) ([]*models.Order, error) {
	filter := bson.M{}
	if f.Client != nil {
		filter["client"] = *f.Client
	}
	out := make([]*models.Order, 0)
	if err := findAll(ctx, s.orders, filter, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *MongoStore) UpdateOrder(ctx context.Context, o *models.Order) error {
	return replaceOne(ctx, s.orders, o.ID, o)
}

func (s *MongoStore) DeleteOrder(ctx context.Context, id primitive.ObjectID) error {
	return deleteOne(ctx, s.orders, id)
}

func (s *MongoStore) CreateTransaction(ctx context.Context, t *models.Transaction) error {
	return insertOne(ctx, s.transactions, t)
}

func (s *MongoStore) GetTransaction(ctx context.Context, id primitive.ObjectID) (*models.Transaction, error) {
	var t models.Transaction
	if err := findOne(ctx, s.transactions, bson.M{"_id": id}, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *MongoStore) ListTransactions(ctx context.Context, f TransactionFilter) ([]*models.Transaction, error) {
	filter := bson.M{}
	if f.Participant != nil {
		filter["$or"] = bson.A{
			bson.M{"client": *f.Participant},
			bson.M{"seller": *f.Participant},
		}
	}
	out := make([]*models.Transaction, 0)
	if err := findAll(ctx, s.transactions, filter, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *MongoStore) DeleteTransaction(ctx context.Context, id primitive.ObjectID) error {
	return deleteOne(ctx, s.transactions, id)
}

func insertOne(ctx context.Context, c *mongo.Collection, doc any) error {
	if _, err := c.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert into %s: %w", c.Name(), err)
	}
	return nil
}

func findOne(ctx context.Context, c *mongo.Collection, filter bson.M, out any) error {
	err := c.FindOne(ctx, filter).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("find in %s: %w", c.Name(), err)
	}
	return nil
}

func findAll(ctx context.Context, c *mongo.Collection, filter bson.M, out any) error {
	cur, err := c.Find(ctx, filter, byCreation)
	if err != nil {
		return fmt.Errorf("find in %s: %w", c.Name(), err)
	}
	if err := cur.All(ctx, out); err != nil {
		return fmt.Errorf("decode %s: %w", c.Name(), err)
	}
	return nil
}

func replaceOne(ctx context.Context, c *mongo.Collection, id primitive.ObjectID, doc any) error {
	res, err := c.ReplaceOne(ctx, bson.M{"_id": id}, doc)
	if err != nil {
		return fmt.Errorf("replace in %s: %w", c.Name(), err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func deleteOne(ctx context.Context, c *mongo.Collection, id primitive.ObjectID) error {
	res, err := c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete from %s: %w", c.Name(), err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
