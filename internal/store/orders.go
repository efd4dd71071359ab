package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/atelierhq/atelier-admin/pkg/models"
)

var ErrNotFound = errors.New("record not found")

const orderColumns = `id, customer_id, customer_name, items, measurements, status,
	tailor_id, style_image_url, first_fitting, second_fitting, collection_date, created_at`

func (s *Store) CreateOrder(ctx context.Context, order *models.Order) error {
	items, err := json.Marshal(order.Items)
	if err != nil {
		return err
	}
	measurements, err := json.Marshal(order.Measurements)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err = s.db.ExecContext(ctx, query,
		order.ID, order.CustomerID, order.CustomerName, string(items), string(measurements),
		order.Status, nullString(order.TailorID), nullString(order.StyleImageURL),
		nullTime(order.FirstFitting), nullTime(order.SecondFitting),
		nullTime(order.CollectionDate), order.CreatedAt)
	return err
}

func (s *Store) UpdateOrder(ctx context.Context, order *models.Order) error {
	items, err := json.Marshal(order.Items)
	if err != nil {
		return err
	}
	measurements, err := json.Marshal(order.Measurements)
	if err != nil {
		return err
	}

	query := `
		UPDATE orders SET customer_id = $2, customer_name = $3, items = $4,
			measurements = $5, status = $6, tailor_id = $7, style_image_url = $8,
			first_fitting = $9, second_fitting = $10, collection_date = $11
		WHERE id = $1
	`
	res, err := s.db.ExecContext(ctx, query,
		order.ID, order.CustomerID, order.CustomerName, string(items), string(measurements),
		order.Status, nullString(order.TailorID), nullString(order.StyleImageURL),
		nullTime(order.FirstFitting), nullTime(order.SecondFitting),
		nullTime(order.CollectionDate))
	if err != nil {
		return err
	}
	return checkAffected(res)
}

// UpdateOrderStatus moves an order through the style/closure workflow
// without touching the rest of the record.
func (s *Store) UpdateOrderStatus(ctx context.Context, orderID, status string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE orders SET status = $2 WHERE id = $1`, orderID, status)
	if err != nil {
		return err
	}
	return checkAffected(res)
}

func (s *Store) GetOrder(ctx context.Context, orderID string) (*models.Order, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, orderID)
	order, err := scanOrder(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return order, err
}

func (s *Store) ListOrders(ctx context.Context) ([]models.Order, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrders(rows)
}

// ListOrdersInWindow returns orders with any scheduled date inside
// [from, to), the fetch the calendar views are built from.
func (s *Store) ListOrdersInWindow(ctx context.Context, from, to time.Time) ([]models.Order, error) {
	query := `
		SELECT ` + orderColumns + ` FROM orders
		WHERE (first_fitting >= $1 AND first_fitting < $2)
		   OR (second_fitting >= $1 AND second_fitting < $2)
		   OR (collection_date >= $1 AND collection_date < $2)
		ORDER BY created_at DESC
	`
	rows, err := s.db.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrders(rows)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(row rowScanner) (*models.Order, error) {
	order := &models.Order{}
	var items, measurements string
	var tailorID, styleURL sql.NullString
	var first, second, collection sql.NullTime

	err := row.Scan(
		&order.ID, &order.CustomerID, &order.CustomerName, &items, &measurements,
		&order.Status, &tailorID, &styleURL, &first, &second, &collection,
		&order.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	json.Unmarshal([]byte(items), &order.Items)
	json.Unmarshal([]byte(measurements), &order.Measurements)
	order.TailorID = tailorID.String
	order.StyleImageURL = styleURL.String
	order.FirstFitting = timePtr(first)
	order.SecondFitting = timePtr(second)
	order.CollectionDate = timePtr(collection)
	return order, nil
}

func collectOrders(rows *sql.Rows) ([]models.Order, error) {
	var orders []models.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *order)
	}
	return orders, rows.Err()
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func checkAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
