package models

import "time"

type PurchasedHours struct {
	ID             int64     `db:"id" json:"id"`
	ProjectID      int64     `db:"project_id" json:"project_id"`
	ClientID       int64     `db:"client_id" json:"client_id"`
	HoursPurchased float64   `db:"hours_purchased" json:"hours_purchased"`
	PurchaseDate   time.Time `db:"purchase_date" json:"purchase_date"`
	Amount         float64   `db:"amount" json:"amount"`
}

type BillingSummary struct {
	ProjectID      int64   `db:"-" json:"project_id"`
	HoursPurchased float64 `db:"hours_purchased" json:"hours_purchased"`
	AmountPaid     float64 `db:"amount_paid" json:"amount_paid"`
	HoursLogged    float64 `db:"hours_logged" json:"hours_logged"`
	AmountCharged  float64 `db:"amount_charged" json:"amount_charged"`
	HoursRemaining float64 `db:"-" json:"hours_remaining"`
}
