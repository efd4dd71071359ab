package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

// Store wraps the Postgres connection used by every handler.
type Store struct {
	db     *sql.DB
	logger *logrus.Logger
}

type Config struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

func Open(cfg Config, logger *logrus.Logger) (*Store, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Wait for database to be ready
	for i := 0; i < 30; i++ {
		if err := db.Ping(); err == nil {
			logger.Info("Database connection established")
			break
		}
		logger.Info("Waiting for database...")
		time.Sleep(2 * time.Second)
	}

	s := &Store{db: db, logger: logger}
	if err := s.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) createTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS customers (
			id VARCHAR(255) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			phone VARCHAR(64) NOT NULL,
			email VARCHAR(255),
			address TEXT,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS tailors (
			id VARCHAR(255) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			role VARCHAR(50) NOT NULL,
			phone VARCHAR(64),
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS orders (
			id VARCHAR(255) PRIMARY KEY,
			customer_id VARCHAR(255) NOT NULL,
			customer_name VARCHAR(255) NOT NULL,
			items JSONB NOT NULL,
			measurements JSONB,
			status VARCHAR(50) NOT NULL,
			tailor_id VARCHAR(255),
			style_image_url TEXT,
			first_fitting TIMESTAMP,
			second_fitting TIMESTAMP,
			collection_date TIMESTAMP,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS tailor_jobs (
			id VARCHAR(255) PRIMARY KEY,
			order_id VARCHAR(255) NOT NULL REFERENCES orders(id),
			tailor_id VARCHAR(255) NOT NULL,
			description TEXT NOT NULL,
			status VARCHAR(50) NOT NULL,
			style_image_url TEXT,
			assigned_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS budgets (
			id VARCHAR(255) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			total_budget DECIMAL(12,2) NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS expenses (
			id VARCHAR(255) PRIMARY KEY,
			budget_id VARCHAR(255) NOT NULL REFERENCES budgets(id),
			category VARCHAR(100) NOT NULL,
			amount DECIMAL(12,2) NOT NULL,
			description TEXT,
			date TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS notifications (
			id VARCHAR(255) PRIMARY KEY,
			type VARCHAR(100) NOT NULL,
			message TEXT NOT NULL,
			order_id VARCHAR(255),
			read BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_customer_id ON orders(customer_id)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_tailor_id ON orders(tailor_id)`,
		`CREATE INDEX IF NOT EXISTS idx_tailor_jobs_tailor_id ON tailor_jobs(tailor_id)`,
		`CREATE INDEX IF NOT EXISTS idx_expenses_budget_id ON expenses(budget_id)`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_created_at ON notifications(created_at)`,
	}

	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return err
		}
	}
	return nil
}

// nullTime maps an optional appointment date onto its column value.
func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}
