package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/vaughan-dsouza/freelancehub/internal/models"
)

const projectColumns = `id, title, client_id, freelancer_id, status, budget, spend, deadline, created_at`

func (s *Store) CreateProject(ctx context.Context, p *models.Project) error {
	err := s.DB.QueryRowxContext(ctx, `
		INSERT INTO projects (title, client_id, status, budget, deadline)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, spend, created_at
	`, p.Title, p.ClientID, p.Status, p.Budget, p.Deadline).Scan(&p.ID, &p.Spend, &p.CreatedAt)
	if err != nil {
		return fmt.Errorf("create project: %w", err)
	}
	return nil
}

func (s *Store) ProjectByID(ctx context.Context, id int64) (*models.Project, error) {
	var p models.Project
	err := s.DB.GetContext(ctx, &p, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, id)
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

// ProjectFilter narrows ListProjects. Zero values mean no restriction.
type ProjectFilter struct {
	ClientID     int64
	FreelancerID int64
	// IncludeOpen widens a FreelancerID filter to every Open project.
	IncludeOpen bool
	Status      models.ProjectStatus
}

func (s *Store) ListProjects(ctx context.Context, f ProjectFilter) ([]models.Project, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.ClientID != 0 {
		where = append(where, "client_id = "+arg(f.ClientID))
	}
	if f.FreelancerID != 0 {
		cond := "freelancer_id = " + arg(f.FreelancerID)
		if f.IncludeOpen {
			cond = "(" + cond + " OR status = " + arg(models.StatusOpen) + ")"
		}
		where = append(where, cond)
	}
	if f.Status != "" {
		where = append(where, "status = "+arg(f.Status))
	}

	query := `SELECT ` + projectColumns + ` FROM projects`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC, id DESC`

	projects := []models.Project{}
	if err := s.DB.SelectContext(ctx, &projects, query, args...); err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return projects, nil
}

func (s *Store) UpdateProject(ctx context.Context, p *models.Project) error {
	res, err := s.DB.ExecContext(ctx, `
		UPDATE projects
		SET title = $1, budget = $2, deadline = $3, status = $4
		WHERE id = $5
	`, p.Title, p.Budget, p.Deadline, p.Status, p.ID)
	return affectedOne(res, err)
}

// ApplyToProject moves an Open project to Pending Approval for freelancerID.
// It returns ErrNotFound when the project is missing or no longer Open.
func (s *Store) ApplyToProject(ctx context.Context, projectID, freelancerID int64) error {
	res, err := s.DB.ExecContext(ctx, `
		UPDATE projects
		SET freelancer_id = $1, status = $2
		WHERE id = $3 AND status = $4
	`, freelancerID, models.StatusPendingApproval, projectID, models.StatusOpen)
	return affectedOne(res, err)
}

func (s *Store) AssignFreelancer(ctx context.Context, projectID, freelancerID int64) error {
	res, err := s.DB.ExecContext(ctx, `
		UPDATE projects
		SET freelancer_id = $1, status = $2
		WHERE id = $3
	`, freelancerID, models.StatusInProgress, projectID)
	return affectedOne(res, err)
}

func (s *Store) DeleteProject(ctx context.Context, id int64) error {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id)
	return affectedOne(res, err)
}
