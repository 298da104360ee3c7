package store

import (
	"context"
	"fmt"
	"time"

	"github.com/vaughan-dsouza/freelancehub/internal/models"
)

func (s *Store) ProjectStatusReport(ctx context.Context) ([]models.ProjectStatusRow, error) {
	rows := []models.ProjectStatusRow{}
	err := s.DB.SelectContext(ctx, &rows, `
		SELECT status, COUNT(*) AS count, COALESCE(SUM(budget), 0) AS total_budget, COALESCE(SUM(spend), 0) AS total_spend
		FROM projects
		GROUP BY status
		ORDER BY status
	`)
	if err != nil {
		return nil, fmt.Errorf("project status report: %w", err)
	}
	return rows, nil
}

// FreelancerHours aggregates charges by freelancer for logs dated within
// [from, to]. Nil bounds are open.
func (s *Store) FreelancerHours(ctx context.Context, from, to *time.Time) ([]models.FreelancerHoursRow, error) {
	rows := []models.FreelancerHoursRow{}
	err := s.DB.SelectContext(ctx, &rows, `
		SELECT u.id AS freelancer_id, u.name, COALESCE(SUM(c.hours_logged), 0) AS hours, COALESCE(SUM(c.amount), 0) AS amount
		FROM charges c
		JOIN users u ON u.id = c.freelancer_id
		JOIN time_logs t ON t.id = c.time_log_id
		WHERE ($1::date IS NULL OR t.log_date >= $1::date)
		  AND ($2::date IS NULL OR t.log_date <= $2::date)
		GROUP BY u.id, u.name
		ORDER BY hours DESC, u.id
	`, from, to)
	if err != nil {
		return nil, fmt.Errorf("freelancer hours report: %w", err)
	}
	return rows, nil
}

func (s *Store) RevenueByMonth(ctx context.Context, from, to *time.Time) ([]models.RevenueRow, error) {
	rows := []models.RevenueRow{}
	err := s.DB.SelectContext(ctx, &rows, `
		SELECT to_char(date_trunc('month', t.log_date), 'YYYY-MM') AS month,
		       COALESCE(SUM(c.hours_logged), 0) AS hours,
		       COALESCE(SUM(c.amount), 0) AS amount
		FROM charges c
		JOIN time_logs t ON t.id = c.time_log_id
		WHERE ($1::date IS NULL OR t.log_date >= $1::date)
		  AND ($2::date IS NULL OR t.log_date <= $2::date)
		GROUP BY 1
		ORDER BY 1
	`, from, to)
	if err != nil {
		return nil, fmt.Errorf("revenue report: %w", err)
	}
	return rows, nil
}

func (s *Store) ClientSpend(ctx context.Context, clientID int64) ([]models.ClientSpendRow, error) {
	rows := []models.ClientSpendRow{}
	err := s.DB.SelectContext(ctx, &rows, `
		SELECT p.id AS project_id, p.title, p.budget, p.spend,
		       COALESCE(SUM(ph.hours_purchased), 0) AS hours_purchased
		FROM projects p
		LEFT JOIN purchased_hours ph ON ph.project_id = p.id
		WHERE p.client_id = $1
		GROUP BY p.id, p.title, p.budget, p.spend
		ORDER BY p.id
	`, clientID)
	if err != nil {
		return nil, fmt.Errorf("client spend report: %w", err)
	}
	return rows, nil
}
