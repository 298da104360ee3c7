package store

import (
	"context"
	"fmt"

	"github.com/vaughan-dsouza/freelancehub/internal/models"
)

func (s *Store) CreateNotification(ctx context.Context, n *models.Notification) error {
	err := s.DB.QueryRowxContext(ctx, `
		INSERT INTO notifications (user_id, title, message, type)
		VALUES ($1, $2, $3, $4)
		RETURNING id, is_read, created_at
	`, n.UserID, n.Title, n.Message, n.Type).Scan(&n.ID, &n.IsRead, &n.CreatedAt)
	if err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

func (s *Store) ListNotifications(ctx context.Context, userID int64, unreadOnly bool, limit int) ([]models.Notification, error) {
	query := `SELECT id, user_id, title, message, type, is_read, created_at
		FROM notifications
		WHERE user_id = $1`
	if unreadOnly {
		query += ` AND NOT is_read`
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT $2`

	notes := []models.Notification{}
	if err := s.DB.SelectContext(ctx, &notes, query, userID, limit); err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return notes, nil
}

func (s *Store) UnreadNotificationCount(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := s.DB.GetContext(ctx, &count, `SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND NOT is_read`, userID)
	return count, err
}

// MarkAllNotificationsRead returns how many rows changed.
func (s *Store) MarkAllNotificationsRead(ctx context.Context, userID int64) (int64, error) {
	res, err := s.DB.ExecContext(ctx, `UPDATE notifications SET is_read = TRUE WHERE user_id = $1 AND NOT is_read`, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// MarkNotificationRead touches only the row that belongs to userID.
func (s *Store) MarkNotificationRead(ctx context.Context, userID, id int64) error {
	res, err := s.DB.ExecContext(ctx, `UPDATE notifications SET is_read = TRUE WHERE id = $1 AND user_id = $2`, id, userID)
	return affectedOne(res, err)
}

func (s *Store) DeleteNotification(ctx context.Context, userID, id int64) error {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM notifications WHERE id = $1 AND user_id = $2`, id, userID)
	return affectedOne(res, err)
}
