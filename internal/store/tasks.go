package store

import (
	"context"
	"fmt"

	"github.com/vaughan-dsouza/freelancehub/internal/models"
)

const taskColumns = `id, assignment_id, description, status, created_at`

func (s *Store) CreateTask(ctx context.Context, t *models.Task) error {
	err := s.DB.QueryRowxContext(ctx, `
		INSERT INTO tasks (assignment_id, description, status)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, t.AssignmentID, t.Description, t.Status).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

func (s *Store) TaskByID(ctx context.Context, id int64) (*models.Task, error) {
	var t models.Task
	if err := s.DB.GetContext(ctx, &t, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id); err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

func (s *Store) ListTasks(ctx context.Context, assignmentID int64) ([]models.Task, error) {
	tasks := []models.Task{}
	err := s.DB.SelectContext(ctx, &tasks, `
		SELECT `+taskColumns+` FROM tasks
		WHERE assignment_id = $1
		ORDER BY id
	`, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

func (s *Store) UpdateTask(ctx context.Context, t *models.Task) error {
	res, err := s.DB.ExecContext(ctx, `UPDATE tasks SET description = $1, status = $2 WHERE id = $3`, t.Description, t.Status, t.ID)
	return affectedOne(res, err)
}

func (s *Store) DeleteTask(ctx context.Context, id int64) error {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	return affectedOne(res, err)
}
