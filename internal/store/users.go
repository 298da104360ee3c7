package store

import (
	"context"
	"fmt"

	"github.com/vaughan-dsouza/freelancehub/internal/models"
)

const userColumns = `id, name, company, email, rate, role, created_at`

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	err := s.DB.QueryRowxContext(ctx, `
		INSERT INTO users (name, company, email, password_hash, rate, role)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`, u.Name, u.Company, u.Email, u.Password, u.Rate, u.Role).Scan(&u.ID, &u.CreatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// UserByEmail includes the password hash.
func (s *Store) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := s.DB.GetContext(ctx, &u, `
		SELECT `+userColumns+`, password_hash
		FROM users
		WHERE email = $1
	`, email)
	if err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (s *Store) UserByID(ctx context.Context, id int64) (*models.User, error) {
	var u models.User
	err := s.DB.GetContext(ctx, &u, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	if err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (s *Store) UpdateUser(ctx context.Context, u *models.User) error {
	res, err := s.DB.ExecContext(ctx, `
		UPDATE users
		SET name = $1, company = $2, rate = $3
		WHERE id = $4
	`, u.Name, u.Company, u.Rate, u.ID)
	return affectedOne(res, err)
}

// ListUsers returns every user, or only those with role when it is set.
func (s *Store) ListUsers(ctx context.Context, role models.Role) ([]models.User, error) {
	users := []models.User{}
	var err error
	if role == "" {
		err = s.DB.SelectContext(ctx, &users, `SELECT `+userColumns+` FROM users ORDER BY id`)
	} else {
		err = s.DB.SelectContext(ctx, &users, `SELECT `+userColumns+` FROM users WHERE role = $1 ORDER BY id`, role)
	}
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}
