package models

import "time"

// Session is a stored tutoring exchange: one question, one resolved answer.
// Rows are written once the response exists and are never updated.
type Session struct {
	ID        int64
	UserID    int64
	Question  string
	Response  string
	CreatedAt time.Time
}
