package notify

import "time"

const (
	TypeBudgetAlert = "budget_alert"
	TypeSystem      = "system"
)

// Notification is a delivered, persisted message visible in the user's feed.
type Notification struct {
	ID        int       `db:"id" json:"id"`
	UserID    int       `db:"user_id" json:"user_id"`
	Type      string    `db:"type" json:"type"`
	Title     string    `db:"title" json:"title"`
	Body      string    `db:"body" json:"body"`
	Read      bool      `db:"read" json:"read"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Job is the queued form of a notification, waiting for the worker to
// persist it.
type Job struct {
	UserID  int       `json:"user_id"`
	Type    string    `json:"type"`
	Title   string    `json:"title"`
	Body    string    `json:"body"`
	Tries   int       `json:"tries"`
	Created time.Time `json:"created"`
}
