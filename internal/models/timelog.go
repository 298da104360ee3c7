package models

import (
	"math"
	"time"
)

type TimeLogStatus string

const (
	TimeLogPending  TimeLogStatus = "Pending"
	TimeLogApproved TimeLogStatus = "Approved"
	TimeLogRejected TimeLogStatus = "Rejected"
)

func (s TimeLogStatus) Valid() bool {
	switch s {
	case TimeLogPending, TimeLogApproved, TimeLogRejected:
		return true
	}
	return false
}

type TimeLog struct {
	ID           int64         `db:"id" json:"id"`
	FreelancerID int64         `db:"freelancer_id" json:"freelancer_id"`
	ProjectID    int64         `db:"project_id" json:"project_id"`
	TaskID       *int64        `db:"task_id" json:"task_id"`
	Hours        float64       `db:"hours" json:"hours"`
	LogDate      time.Time     `db:"log_date" json:"log_date"`
	Description  string        `db:"description" json:"description"`
	Status       TimeLogStatus `db:"status" json:"status"`
	CreatedAt    time.Time     `db:"created_at" json:"created_at"`
}

// Charge is the billing row derived from a time log at creation time.
// Its rate and amount are snapshots and are never recomputed.
type Charge struct {
	ID           int64     `db:"id" json:"id"`
	TimeLogID    int64     `db:"time_log_id" json:"time_log_id"`
	ProjectID    int64     `db:"project_id" json:"project_id"`
	ClientID     int64     `db:"client_id" json:"client_id"`
	FreelancerID int64     `db:"freelancer_id" json:"freelancer_id"`
	HoursLogged  float64   `db:"hours_logged" json:"hours_logged"`
	Rate         float64   `db:"rate" json:"rate"`
	Amount       float64   `db:"amount" json:"amount"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// ChargeAmount returns hours*rate rounded to cents.
func ChargeAmount(hours, rate float64) float64 {
	return math.Round(hours*rate*100) / 100
}

// NewCharge builds the charge for a freshly logged entry.
func NewCharge(tl *TimeLog, clientID int64, rate float64) *Charge {
	return &Charge{
		TimeLogID:    tl.ID,
		ProjectID:    tl.ProjectID,
		ClientID:     clientID,
		FreelancerID: tl.FreelancerID,
		HoursLogged:  tl.Hours,
		Rate:         rate,
		Amount:       ChargeAmount(tl.Hours, rate),
	}
}
