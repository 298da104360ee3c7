package models

type ProjectStatusRow struct {
	Status      ProjectStatus `db:"status" json:"status"`
	Count       int64         `db:"count" json:"count"`
	TotalBudget float64       `db:"total_budget" json:"total_budget"`
	TotalSpend  float64       `db:"total_spend" json:"total_spend"`
}

type FreelancerHoursRow struct {
	FreelancerID int64   `db:"freelancer_id" json:"freelancer_id"`
	Name         string  `db:"name" json:"name"`
	Hours        float64 `db:"hours" json:"hours"`
	Amount       float64 `db:"amount" json:"amount"`
}

type RevenueRow struct {
	Month  string  `db:"month" json:"month"`
	Hours  float64 `db:"hours" json:"hours"`
	Amount float64 `db:"amount" json:"amount"`
}

type ClientSpendRow struct {
	ProjectID      int64   `db:"project_id" json:"project_id"`
	Title          string  `db:"title" json:"title"`
	Budget         float64 `db:"budget" json:"budget"`
	Spend          float64 `db:"spend" json:"spend"`
	HoursPurchased float64 `db:"hours_purchased" json:"hours_purchased"`
}
