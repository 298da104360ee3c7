package models

import "time"

const (
	TaskToDo = "To Do"
	TaskDone = "Done"
)

type Task struct {
	ID           int64     `db:"id" json:"id"`
	AssignmentID int64     `db:"assignment_id" json:"assignment_id"`
	Description  string    `db:"description" json:"description"`
	Status       string    `db:"status" json:"status"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
