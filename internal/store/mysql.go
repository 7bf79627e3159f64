package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"marketplace/internal/models"

	"github.com/go-sql-driver/mysql"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MySQLStore keeps the same documents in relational tables. Ids are the hex
// form of the ObjectID so both backends hand out identical identifiers.
type MySQLStore struct {
	db *sql.DB
}

func NewMySQLStore(db *sql.DB) *MySQLStore {
	return &MySQLStore{db: db}
}

func (s *MySQLStore) Close(context.Context) error {
	return s.db.Close()
}

const mysqlDuplicateEntry = 1062

func mapMySQLError(err error, op string) error {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr.Number == mysqlDuplicateEntry {
		return ErrDuplicate
	}
	return fmt.Errorf("%s: %w", op, err)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanID(raw string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("invalid stored id %q: %w", raw, err)
	}
	return id, nil
}

const userColumns = "id, name, email, password_hash, role, phone, created_at, updated_at"

func scanUser(row rowScanner) (*models.User, error) {
	var u models.User
	var id, role string
	if err := row.Scan(&id, &u.Name, &u.Email, &u.PasswordHash, &role, &u.Phone, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	var err error
	if u.ID, err = scanID(id); err != nil {
		return nil, err
	}
	u.Role = models.Role(role)
	return &u, nil
}

func (s *MySQLStore) CreateUser(ctx context.Context, u *models.User) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO users ("+userColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		u.ID.Hex(), u.Name, u.Email, u.PasswordHash, string(u.Role), u.Phone, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		return mapMySQLError(err, "insert user")
	}
	return nil
}

func (s *MySQLStore) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return s.getUser(ctx, "id = ?", id.Hex())
}

func (s *MySQLStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getUser(ctx, "email = ?", email)
}

func (s *MySQLStore) getUser(ctx context.Context, where string, arg any) (*models.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE "+where, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select user: %w", err)
	}
	return u, nil
}

const productColumns = "id, name, description, price, stock, rating, photo, seller_id, created_at, updated_at"

func scanProduct(row rowScanner) (*models.Product, error) {
	var p models.Product
	var id, seller string
	if err := row.Scan(&id, &p.Name, &p.Description, &p.Price, &p.Stock, &p.Rating, &p.Photo, &seller, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	var err error
	if p.ID, err = scanID(id); err != nil {
		return nil, err
	}
	if p.Seller, err = scanID(seller); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *MySQLStore) CreateProduct(ctx context.Context, p *models.Product) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO products ("+productColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		p.ID.Hex(), p.Name, p.Description, p.Price, p.Stock, p.Rating, p.Photo, p.Seller.Hex(), p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return mapMySQLError(err, "insert product")
	}
	return nil
}

func (s *MySQLStore) GetProduct(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	p, err := scanProduct(s.db.QueryRowContext(ctx, "SELECT "+productColumns+" FROM products WHERE id = ?", id.Hex()))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select product: %w", err)
	}
	return p, nil
}

func (s *MySQLStore) ListProducts(ctx context.Context) ([]*models.Product, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+productColumns+" FROM products ORDER BY created_at, id")
	if err != nil {
		return nil, fmt.Errorf("select products: %w", err)
	}
	defer rows.Close()

	out := make([]*models.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *MySQLStore) UpdateProduct(ctx context.Context, p *models.Product) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE products SET name = ?, description = ?, price = ?, stock = ?, rating = ?, photo = ?, seller_id = ?, updated_at = ?
		 WHERE id = ?`,
		p.Name, p.Description, p.Price, p.Stock, p.Rating, p.Photo, p.Seller.Hex(), p.UpdatedAt, p.ID.Hex(),
	)
	if err != nil {
		return mapMySQLError(err, "update product")
	}
	return s.requireRow(ctx, res, "products", p.ID)
}

func (s *MySQLStore) DeleteProduct(ctx context.Context, id primitive.ObjectID) error {
	return s.deleteByID(ctx, "products", id)
}

const orderColumns = "id, client_id, date, status, total_points, created_at, updated_at"

func (s *MySQLStore) CreateOrder(ctx context.Context, o *models.Order) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO orders ("+orderColumns+") VALUES (?, ?, ?, ?, ?, ?, ?)",
		o.ID.Hex(), o.Client.Hex(), o.Date, string(o.Status), o.TotalPoints, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return mapMySQLError(err, "insert order")
	}
	if err := insertOrderItems(ctx, tx, o); err != nil {
		return err
	}
	return tx.Commit()
}

func insertOrderItems(ctx context.Context, tx *sql.Tx, o *models.Order) error {
	if len(o.Products) == 0 {
		return nil
	}
	var sb strings.Builder
	args := make([]any, 0, len(o.Products)*4)
	sb.WriteString("INSERT INTO order_items (order_id, position, product_id, quantity) VALUES ")
	for i, line := range o.Products {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(?, ?, ?, ?)")
		args = append(args, o.ID.Hex(), i, line.Product.Hex(), line.Quantity)
	}
	if _, err := tx.ExecContext(ctx, sb.String(), args...); err != nil {
		return mapMySQLError(err, "insert order items")
	}
	return nil
}

func scanOrder(row rowScanner) (*models.Order, error) {
	var o models.Order
	var id, client, status string
	if err := row.Scan(&id, &client, &o.Date, &status, &o.TotalPoints, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	var err error
	if o.ID, err = scanID(id); err != nil {
		return nil, err
	}
	if o.Client, err = scanID(client); err != nil {
		return nil, err
	}
	o.Status = models.OrderStatus(status)
	o.Products = []models.OrderLine{}
	return &o, nil
}

func (s *MySQLStore) GetOrder(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	o, err := scanOrder(s.db.QueryRowContext(ctx, "SELECT "+orderColumns+" FROM orders WHERE id = ?", id.Hex()))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select order: %w", err)
	}
	if err := s.loadOrderItems(ctx, []*models.Order{o}); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *MySQLStore) ListOrders(ctx context.Context, f OrderFilter) ([]*models.Order, error) {
	query := "SELECT " + orderColumns + " FROM orders"
	var args []any
	if f.Client != nil {
		query += " WHERE client_id = ?"
		args = append(args, f.Client.Hex())
	}
	query += " ORDER BY created_at, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select orders: %w", err)
	}
	defer rows.Close()

	out := make([]*models.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := s.loadOrderItems(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *MySQLStore) loadOrderItems(ctx context.Context, orders []*models.Order) error {
	if len(orders) == 0 {
		return nil
	}
	byID := make(map[string]*models.Order, len(orders))
	placeholders := make([]string, 0, len(orders))
	args := make([]any, 0, len(orders))
	for _, o := range orders {
		byID[o.ID.Hex()] = o
		placeholders = append(placeholders, "?")
		args = append(args, o.ID.Hex())
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT order_id, product_id, quantity FROM order_items WHERE order_id IN ("+strings.Join(placeholders, ", ")+") ORDER BY order_id, position",
		args...,
	)
	if err != nil {
		return fmt.Errorf("select order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var orderID, productID string
		var line models.OrderLine
		if err := rows.Scan(&orderID, &productID, &line.Quantity); err != nil {
			return fmt.Errorf("scan order item: %w", err)
		}
		if line.Product, err = scanID(productID); err != nil {
			return err
		}
		if o, ok := byID[orderID]; ok {
			o.Products = append(o.Products, line)
		}
	}
	return rows.Err()
}

func (s *MySQLStore) UpdateOrder(ctx context.Context, o *models.Order) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"UPDATE orders SET client_id = ?, date = ?, status = ?, total_points = ?, updated_at = ? WHERE id = ?",
		o.Client.Hex(), o.Date, string(o.Status), o.TotalPoints, o.UpdatedAt, o.ID.Hex(),
	)
	if err != nil {
		return mapMySQLError(err, "update order")
	}
	// MySQL reports zero affected rows when nothing changed, so existence is
	// checked separately.
	if n, _ := res.RowsAffected(); n == 0 {
		var one int
		err := tx.QueryRowContext(ctx, "SELECT 1 FROM orders WHERE id = ?", o.ID.Hex()).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("select order: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM order_items WHERE order_id = ?", o.ID.Hex()); err != nil {
		return fmt.Errorf("delete order items: %w", err)
	}
	if err := insertOrderItems(ctx, tx, o); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *MySQLStore) DeleteOrder(ctx context.Context, id primitive.ObjectID) error {
	return s.deleteByID(ctx, "orders", id)
}

const transactionColumns = "id, client_id, seller_id, type, amount, date, created_at, updated_at"

func scanTransaction(row rowScanner) (*models.Transaction, error) {
	var t models.Transaction
	var id, client, seller, typ string
	if err := row.Scan(&id, &client, &seller, &typ, &t.Amount, &t.Date, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	var err error
	if t.ID, err = scanID(id); err != nil {
		return nil, err
	}
	if t.Client, err = scanID(client); err != nil {
		return nil, err
	}
	if t.Seller, err = scanID(seller); err != nil {
		return nil, err
	}
	t.Type = models.TransactionType(typ)
	return &t, nil
}

func (s *MySQLStore) CreateTransaction(ctx context.Context, t *models.Transaction) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO transactions ("+transactionColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		t.ID.Hex(), t.Client.Hex(), t.Seller.Hex(), string(t.Type), t.Amount, t.Date, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return mapMySQLError(err, "insert transaction")
	}
	return nil
}

func (s *MySQLStore) GetTransaction(ctx context.Context, id primitive.ObjectID) (*models.Transaction, error) {
	t, err := scanTransaction(s.db.QueryRowContext(ctx, "SELECT "+transactionColumns+" FROM transactions WHERE id = ?", id.Hex()))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select transaction: %w", err)
	}
	return t, nil
}

func (s *MySQLStore) ListTransactions(ctx context.Context, f TransactionFilter) ([]*models.Transaction, error) {
	query := "SELECT " + transactionColumns + " FROM transactions"
	var args []any
	if f.Participant != nil {
		query += " WHERE client_id = ? OR seller_id = ?"
		args = append(args, f.Participant.Hex(), f.Participant.Hex())
	}
	query += " ORDER BY created_at, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select transactions: %w", err)
	}
	defer rows.Close()

	out := make([]*models.Transaction, 0)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *MySQLStore) DeleteTransaction(ctx context.Context, id primitive.ObjectID) error {
	return s.deleteByID(ctx, "transactions", id)
}

func (s *MySQLStore) deleteByID(ctx context.Context, table string, id primitive.ObjectID) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM "+table+" WHERE id = ?", id.Hex())
	if err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// requireRow turns a zero-row UPDATE into ErrNotFound, telling "unchanged"
// apart from "missing" with a second lookup.
func (s *MySQLStore) requireRow(ctx context.Context, res sql.Result, table string, id primitive.ObjectID) error {
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		return nil
	}
	var one int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM "+table+" WHERE id = ?", id.Hex()).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("select from %s: %w", table, err)
	}
	return nil
}
