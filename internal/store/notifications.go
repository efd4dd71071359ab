package store

import (
	"context"

	"github.com/atelierhq/atelier-admin/pkg/models"
)

func (s *Store) CreateNotification(ctx context.Context, n *models.Notification) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notifications (id, type, message, order_id, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, n.ID, n.Type, n.Message, nullString(n.OrderID), n.Read, n.CreatedAt)
	return err
}

// ListNotifications returns one page, newest first, plus the total count
// for the pager. page is 1-based.
func (s *Store) ListNotifications(ctx context.Context, page, limit int) ([]models.Notification, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	var total int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notifications`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, type, message, COALESCE(order_id, ''), read, created_at
		FROM notifications ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var notifications []models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.Type, &n.Message, &n.OrderID, &n.Read, &n.CreatedAt); err != nil {
			return nil, 0, err
		}
		notifications = append(notifications, n)
	}
	return notifications, total, rows.Err()
}

func (s *Store) MarkNotificationRead(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE notifications SET read = TRUE WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffected(res)
}

func (s *Store) MarkAllNotificationsRead(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE notifications SET read = TRUE WHERE read = FALSE`)
	return err
}
