package store

import (
	"context"
	"fmt"
	"time"
)

func (s *Store) SaveRefreshToken(ctx context.Context, userID int64, token string, expiresAt time.Time) error {
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO refresh_tokens (user_id, token, expires_at)
		VALUES ($1, $2, $3)
	`, userID, token, expiresAt)
	return err
}

func (s *Store) RefreshTokenValid(ctx context.Context, userID int64, token string) (bool, error) {
	var exists bool
	err := s.DB.GetContext(ctx, &exists, `
		SELECT EXISTS (
			SELECT 1 FROM refresh_tokens
			WHERE token = $1 AND user_id = $2 AND expires_at > NOW()
		)
	`, token, userID)
	return exists, err
}

// RotateRefreshToken replaces old with next in one transaction.
func (s *Store) RotateRefreshToken(ctx context.Context, userID int64, old, next string, expiresAt time.Time) error {
	tx, err := s.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE token = $1 AND user_id = $2`, old, userID)
	if err := affectedOne(res, err); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO refresh_tokens (user_id, token, expires_at)
		VALUES ($1, $2, $3)
	`, userID, next, expiresAt); err != nil {
		return fmt.Errorf("insert refresh token: %w", err)
	}

	return tx.Commit()
}

func (s *Store) DeleteRefreshToken(ctx context.Context, userID int64, token string) error {
	_, err := s.DB.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE token = $1 AND user_id = $2`, token, userID)
	return err
}
