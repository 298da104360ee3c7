package store

import (
	"context"
	"fmt"

	"github.com/vaughan-dsouza/freelancehub/internal/models"
)

const chargeColumns = `c.id, c.time_log_id, c.project_id, c.client_id, c.freelancer_id, c.hours_logged, c.rate, c.amount, c.created_at`

func (s *Store) ListCharges(ctx context.Context, f BillingFilter) ([]models.Charge, error) {
	where, args := f.where("c")
	query := `SELECT ` + chargeColumns + `
		FROM charges c
		JOIN projects p ON p.id = c.project_id` + where + `
		ORDER BY c.created_at DESC, c.id DESC`

	charges := []models.Charge{}
	if err := s.DB.SelectContext(ctx, &charges, query, args...); err != nil {
		return nil, fmt.Errorf("list charges: %w", err)
	}
	return charges, nil
}

func (s *Store) CreatePurchase(ctx context.Context, ph *models.PurchasedHours) error {
	err := s.DB.QueryRowxContext(ctx, `
		INSERT INTO purchased_hours (project_id, client_id, hours_purchased, amount)
		VALUES ($1, $2, $3, $4)
		RETURNING id, purchase_date
	`, ph.ProjectID, ph.ClientID, ph.HoursPurchased, ph.Amount).Scan(&ph.ID, &ph.PurchaseDate)
	if err != nil {
		return fmt.Errorf("create purchase: %w", err)
	}
	return nil
}

func (s *Store) ListPurchases(ctx context.Context, projectID int64) ([]models.PurchasedHours, error) {
	rows := []models.PurchasedHours{}
	err := s.DB.SelectContext(ctx, &rows, `
		SELECT id, project_id, client_id, hours_purchased, purchase_date, amount
		FROM purchased_hours
		WHERE project_id = $1
		ORDER BY purchase_date DESC, id DESC
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	return rows, nil
}

func (s *Store) BillingSummary(ctx context.Context, projectID int64) (*models.BillingSummary, error) {
	var sum models.BillingSummary
	err := s.DB.GetContext(ctx, &sum, `
		SELECT
			COALESCE((SELECT SUM(hours_purchased) FROM purchased_hours WHERE project_id = $1), 0) AS hours_purchased,
			COALESCE((SELECT SUM(amount) FROM purchased_hours WHERE project_id = $1), 0) AS amount_paid,
			COALESCE((SELECT SUM(hours_logged) FROM charges WHERE project_id = $1), 0) AS hours_logged,
			COALESCE((SELECT SUM(amount) FROM charges WHERE project_id = $1), 0) AS amount_charged
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("billing summary: %w", err)
	}
	sum.ProjectID = projectID
	sum.HoursRemaining = sum.HoursPurchased - sum.HoursLogged
	return &sum, nil
}
