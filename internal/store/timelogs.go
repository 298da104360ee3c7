package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vaughan-dsouza/freelancehub/internal/models"
)

const timeLogColumns = `t.id, t.freelancer_id, t.project_id, t.task_id, t.hours, t.log_date, t.description, t.status, t.created_at`

// CreateTimeLog inserts the log and the charge derived from it and adds the
// charge to the project's spend. All three writes commit together.
// tl.ID and ch.TimeLogID are filled in.
func (s *Store) CreateTimeLog(ctx context.Context, tl *models.TimeLog, ch *models.Charge) error {
	tx, err := s.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	err = tx.QueryRowxContext(ctx, `
		INSERT INTO time_logs (freelancer_id, project_id, task_id, hours, log_date, description, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`, tl.FreelancerID, tl.ProjectID, tl.TaskID, tl.Hours, tl.LogDate, tl.Description, tl.Status).Scan(&tl.ID, &tl.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert time log: %w", err)
	}

	ch.TimeLogID = tl.ID
	err = tx.QueryRowxContext(ctx, `
		INSERT INTO charges (time_log_id, project_id, client_id, freelancer_id, hours_logged, rate, amount)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`, ch.TimeLogID, ch.ProjectID, ch.ClientID, ch.FreelancerID, ch.HoursLogged, ch.Rate, ch.Amount).Scan(&ch.ID, &ch.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert charge: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `UPDATE projects SET spend = spend + $1 WHERE id = $2`, ch.Amount, ch.ProjectID); err != nil {
		return fmt.Errorf("update project spend: %w", err)
	}

	return tx.Commit()
}

func (s *Store) TimeLogByID(ctx context.Context, id int64) (*models.TimeLog, error) {
	var tl models.TimeLog
	if err := s.DB.GetContext(ctx, &tl, `SELECT `+timeLogColumns+` FROM time_logs t WHERE t.id = $1`, id); err != nil {
		return nil, notFound(err)
	}
	return &tl, nil
}

// BillingFilter scopes time log and charge listings. Zero values mean no
// restriction; ClientID matches through the owning project.
type BillingFilter struct {
	ProjectID    int64
	FreelancerID int64
	ClientID     int64
}

func (f BillingFilter) where(alias string) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(col string, v int64) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if f.ProjectID != 0 {
		add(alias+".project_id", f.ProjectID)
	}
	if f.FreelancerID != 0 {
		add(alias+".freelancer_id", f.FreelancerID)
	}
	if f.ClientID != 0 {
		add("p.client_id", f.ClientID)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (s *Store) ListTimeLogs(ctx context.Context, f BillingFilter) ([]models.TimeLog, error) {
	where, args := f.where("t")
	query := `SELECT ` + timeLogColumns + `
		FROM time_logs t
		JOIN projects p ON p.id = t.project_id` + where + `
		ORDER BY t.log_date DESC, t.id DESC`

	logs := []models.TimeLog{}
	if err := s.DB.SelectContext(ctx, &logs, query, args...); err != nil {
		return nil, fmt.Errorf("list time logs: %w", err)
	}
	return logs, nil
}

func (s *Store) UpdateTimeLogStatus(ctx context.Context, id int64, status models.TimeLogStatus) error {
	res, err := s.DB.ExecContext(ctx, `UPDATE time_logs SET status = $1 WHERE id = $2`, status, id)
	return affectedOne(res, err)
}

// DeleteTimeLog removes the log with its charge and takes the charged
// amount back off the project's spend.
func (s *Store) DeleteTimeLog(ctx context.Context, id int64) error {
	tx, err := s.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var charged struct {
		ProjectID int64   `db:"project_id"`
		Amount    float64 `db:"amount"`
	}
	err = tx.GetContext(ctx, &charged, `DELETE FROM charges WHERE time_log_id = $1 RETURNING project_id, amount`, id)
	switch err := notFound(err); {
	case errors.Is(err, ErrNotFound):
		// logs imported without a charge
	case err != nil:
		return fmt.Errorf("delete charge: %w", err)
	default:
		if _, err := tx.ExecContext(ctx, `UPDATE projects SET spend = GREATEST(spend - $1, 0) WHERE id = $2`, charged.Amount, charged.ProjectID); err != nil {
			return fmt.Errorf("update project spend: %w", err)
		}
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM time_logs WHERE id = $1`, id)
	if err := affectedOne(res, err); err != nil {
		return err
	}

	return tx.Commit()
}
