package models

import "time"

type ProjectMessage struct {
	ID          int64     `db:"id" json:"id"`
	ProjectID   int64     `db:"project_id" json:"project_id"`
	UserID      int64     `db:"user_id" json:"user_id"`
	SenderName  string    `db:"sender_name" json:"sender_name,omitempty"`
	MessageText string    `db:"message_text" json:"message_text"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
