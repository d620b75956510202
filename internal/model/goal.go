package model

import "time"

// CategoryGoal is a recurring completion quota over a (room, subcategory)
// pair. Meeting the quota inside the current window grants a one-time bonus.
type CategoryGoal struct {
	ID            int64       `json:"id"`
	Room          Room        `json:"room"`
	Subcategory   Subcategory `json:"subcategory"`
	RequiredTasks int         `json:"required_tasks"`
	Frequency     Frequency   `json:"frequency"`
	IsActive      bool        `json:"is_active"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}
