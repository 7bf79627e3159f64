package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog"
)

// InitDB opens and pings the MySQL database behind dsn.
func InitDB(ctx context.Context, dsn string, logger zerolog.Logger) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("mysql: DB_URL is empty")
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("mysql: open: %w", err)
	}
	db.SetConnMaxLifetime(3 * time.Minute)
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("mysql: ping: %w", err)
	}

	logger.Info().Msg("Connected to MySQL")
	return db, nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id CHAR(24) PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		email VARCHAR(255) NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		role VARCHAR(16) NOT NULL DEFAULT 'client',
		phone VARCHAR(32) NOT NULL,
		created_at DATETIME(6) NOT NULL,
		updated_at DATETIME(6) NOT NULL,
		UNIQUE KEY uq_users_email (email)
	);`,
	`CREATE TABLE IF NOT EXISTS products (
		id CHAR(24) PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		description TEXT NOT NULL,
		price DOUBLE NOT NULL,
		stock INT NOT NULL,
		rating DOUBLE NOT NULL DEFAULT 0,
		photo VARCHAR(2048) NOT NULL DEFAULT '',
		seller_id CHAR(24) NOT NULL,
		created_at DATETIME(6) NOT NULL,
		updated_at DATETIME(6) NOT NULL,
		INDEX idx_products_seller (seller_id),
		INDEX idx_products_created (created_at),
		FOREIGN KEY (seller_id) REFERENCES users(id)
	);`,
	`CREATE TABLE IF NOT EXISTS orders (
		id CHAR(24) PRIMARY KEY,
		client_id CHAR(24) NOT NULL,
		date DATETIME(6) NOT NULL,
		status VARCHAR(16) NOT NULL DEFAULT 'pending',
		total_points DOUBLE NOT NULL,
		created_at DATETIME(6) NOT NULL,
		updated_at DATETIME(6) NOT NULL,
		INDEX idx_orders_client (client_id),
		INDEX idx_orders_created (created_at),
		FOREIGN KEY (client_id) REFERENCES users(id)
	);`,
	`CREATE TABLE IF NOT EXISTS order_items (
		order_id CHAR(24) NOT NULL,
		position INT NOT NULL,
		product_id CHAR(24) NOT NULL,
		quantity INT NOT NULL,
		PRIMARY KEY (order_id, position),
		FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE
	);`,
	`CREATE TABLE IF NOT EXISTS transactions (
		id CHAR(24) PRIMARY KEY,
		client_id CHAR(24) NOT NULL,
		seller_id CHAR(24) NOT NULL,
		type VARCHAR(16) NOT NULL,
		amount DOUBLE NOT NULL,
		date DATETIME(6) NOT NULL,
		created_at DATETIME(6) NOT NULL,
		updated_at DATETIME(6) NOT NULL,
		INDEX idx_transactions_client (client_id),
		INDEX idx_transactions_seller (seller_id),
		FOREIGN KEY (client_id) REFERENCES users(id),
		FOREIGN KEY (seller_id) REFERENCES users(id)
	);`,
}

// RunMigrations creates the marketplace tables when they do not exist yet.
func RunMigrations(ctx context.Context, db *sql.DB, logger zerolog.Logger) error {
	for i, q := range migrations {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	logger.Info().Int("count", len(migrations)).Msg("Migrations complete")
	return nil
}
