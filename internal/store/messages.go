package store

import (
	"context"
	"fmt"

	"github.com/vaughan-dsouza/freelancehub/internal/models"
)

func (s *Store) CreateMessage(ctx context.Context, m *models.ProjectMessage) error {
	err := s.DB.QueryRowxContext(ctx, `
		INSERT INTO project_messages (project_id, user_id, message_text)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, m.ProjectID, m.UserID, m.MessageText).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return fmt.Errorf("create message: %w", err)
	}
	return nil
}

// ListMessages returns the project's thread, oldest first.
func (s *Store) ListMessages(ctx context.Context, projectID int64) ([]models.ProjectMessage, error) {
	msgs := []models.ProjectMessage{}
	err := s.DB.SelectContext(ctx, &msgs, `
		SELECT m.id, m.project_id, m.user_id, u.name AS sender_name, m.message_text, m.created_at
		FROM project_messages m
		JOIN users u ON u.id = m.user_id
		WHERE m.project_id = $1
		ORDER BY m.created_at, m.id
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return msgs, nil
}
