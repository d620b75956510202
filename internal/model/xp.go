package model

import (
	"encoding/json"
	"time"
)

// XP event sources. The ledger is the source of truth for total XP; rows are
// never updated or deleted, only appended (reversals append a negative row).
const (
	SourceTaskCompletion = "task-completion"
	SourceTaskReversal   = "task-reversal"
	SourceCategoryGoal   = "category-goal"
)

// XPEvent is one append-only ledger row. AssignmentID is set for completion
// and reversal rows, GoalID for category-goal bonus rows.
type XPEvent struct {
	ID           int64           `json:"id"`
	UserID       int64           `json:"user_id"`
	Amount       int             `json:"amount"`
	Source       string          `json:"source"`
	AssignmentID *int64          `json:"assignment_id"`
	GoalID       *int64          `json:"goal_id"`
	Meta         json.RawMessage `json:"meta"`
	CreatedAt    time.Time       `json:"created_at"`
}
