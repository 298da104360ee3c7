package models

import "time"

type ProjectStatus string

const (
	StatusOpen            ProjectStatus = "Open"
	StatusPendingApproval ProjectStatus = "Pending Approval"
	StatusInProgress      ProjectStatus = "In Progress"
	StatusCompleted       ProjectStatus = "Completed"
)

func (s ProjectStatus) Valid() bool {
	switch s {
	case StatusOpen, StatusPendingApproval, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

type Project struct {
	ID           int64         `db:"id" json:"id"`
	Title        string        `db:"title" json:"title"`
	ClientID     int64         `db:"client_id" json:"client_id"`
	FreelancerID *int64        `db:"freelancer_id" json:"freelancer_id"`
	Status       ProjectStatus `db:"status" json:"status"`
	Budget       float64       `db:"budget" json:"budget"`
	Spend        float64       `db:"spend" json:"spend"`
	Deadline     *time.Time    `db:"deadline" json:"deadline"`
	CreatedAt    time.Time     `db:"created_at" json:"created_at"`
}

// IsParticipant reports whether the user is the project's client or its
// assigned freelancer. Admin access is decided by the caller.
func (p *Project) IsParticipant(userID int64) bool {
	if p.ClientID == userID {
		return true
	}
	return p.FreelancerID != nil && *p.FreelancerID == userID
}

type ProjectSkill struct {
	ProjectID int64  `db:"project_id" json:"project_id"`
	SkillName string `db:"skill_name" json:"skill_name"`
}
