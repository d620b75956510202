package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/georgec/tidybloom/internal/model"
)

type AssignmentStore struct {
	db *sql.DB
}

func NewAssignmentStore(db *sql.DB) *AssignmentStore {
	return &AssignmentStore{db: db}
}

func scanAssignment(scanner interface{ Scan(...any) error }) (*model.Assignment, error) {
	var a model.Assignment
	var t model.Task
	var completedAt sql.NullTime
	var taskActive int

	err := scanner.Scan(
		&a.ID, &a.UserID, &a.TaskID, &a.Status, &completedAt, &a.XPAwarded, &a.CreatedAt,
		&t.ID, &t.Name, &t.Room, &t.Subcategory, &t.Frequency, &t.BaseXP, &taskActive,
	)
	if err != nil {
		return nil, err
	}

	if completedAt.Valid {
		a.CompletedAt = &completedAt.Time
	}
	t.IsActive = taskActive != 0
	a.Task = &t
	return &a, nil
}

const assignmentCols = `ut.id, ut.user_id, ut.task_id, ut.status, ut.completed_at, ut.xp_awarded, ut.created_at,
	t.id, t.name, t.room, t.subcategory, t.frequency, t.base_xp, t.is_active`

const assignmentFrom = ` FROM user_tasks ut JOIN tasks t ON t.id = ut.task_id `

// Create assigns a catalog task to a user in the PENDING state.
func (s *AssignmentStore) Create(userID, taskID int64) (*model.Assignment, error) {
	result, err := s.db.Exec(
		`INSERT INTO user_tasks (user_id, task_id, status) VALUES (?, ?, ?)`,
		userID, taskID, model.StatusPending,
	)
	if err != nil {
		return nil, fmt.Errorf("insert assignment: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *AssignmentStore) GetByID(id int64) (*model.Assignment, error) {
	row := s.db.QueryRow(`SELECT `+assignmentCols+assignmentFrom+`WHERE ut.id = ?`, id)
	a, err := scanAssignment(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get assignment: %w", err)
	}
	return a, nil
}

// ListByUser returns a user's assignments, optionally filtered by status.
func (s *AssignmentStore) ListByUser(userID int64, status string) ([]model.Assignment, error) {
	query := `SELECT ` + assignmentCols + assignmentFrom + `WHERE ut.user_id = ?`
	args := []any{userID}
	if status != "" {
		query += ` AND ut.status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY ut.created_at DESC, ut.id DESC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	defer rows.Close()

	var assignments []model.Assignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		assignments = append(assignments, *a)
	}
	return assignments, rows.Err()
}

// Complete marks an assignment completed at most once, awards the task's
// base XP, appends the ledger row, and resyncs the plant cache — all in one
// transaction. The status update is conditional on the row still being
// PENDING, so two concurrent calls cannot both award XP.
//
// Returns (nil, nil) when the assignment does not exist, ErrAlreadyCompleted
// or ErrExpired for terminal states.
func (s *AssignmentStore) Complete(id int64, now time.Time) (*model.Assignment, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var userID, taskID int64
	var status, taskName string
	var baseXP, taskActive int
	err = tx.QueryRow(
		`SELECT ut.user_id, ut.status, t.id, t.name, t.base_xp, t.is_active`+
			assignmentFrom+`WHERE ut.id = ?`, id,
	).Scan(&userID, &status, &taskID, &taskName, &baseXP, &taskActive)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load assignment: %w", err)
	}

	switch status {
	case model.StatusCompleted:
		return nil, ErrAlreadyCompleted
	case model.StatusExpired:
		return nil, ErrExpired
	}

	award := 0
	if taskActive != 0 {
		award = baseXP
	}

	result, err := tx.Exec(
		`UPDATE user_tasks SET status = ?, completed_at = ?, xp_awarded = ? WHERE id = ? AND status = ?`,
		model.StatusCompleted, now.UTC(), award, id, model.StatusPending,
	)
	if err != nil {
		return nil, fmt.Errorf("complete assignment: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		// Lost the race to a concurrent completion
		return nil, ErrAlreadyCompleted
	}

	meta, err := json.Marshal(map[string]any{"task_id": taskID, "task_name": taskName})
	if err != nil {
		return nil, fmt.Errorf("marshal meta: %w", err)
	}
	_, err = tx.Exec(
		`INSERT INTO xp_events (user_id, amount, source, user_task_id, meta, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		userID, award, model.SourceTaskCompletion, id, string(meta), now.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("append ledger: %w", err)
	}

	if err := syncPlantCache(tx, userID, now); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return s.GetByID(id)
}

// Uncomplete reverts a completed assignment to PENDING and appends a paired
// negative ledger row, so the ledger keeps its full history and the user's
// total XP returns to its prior value.
func (s *AssignmentStore) Uncomplete(id int64, now time.Time) (*model.Assignment, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var userID, taskID int64
	var status, taskName string
	var awarded int
	err = tx.QueryRow(
		`SELECT ut.user_id, ut.status, ut.xp_awarded, t.id, t.name`+
			assignmentFrom+`WHERE ut.id = ?`, id,
	).Scan(&userID, &status, &awarded, &taskID, &taskName)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load assignment: %w", err)
	}

	if status != model.StatusCompleted {
		return nil, ErrNotCompleted
	}

	result, err := tx.Exec(
		`UPDATE user_tasks SET status = ?, completed_at = NULL, xp_awarded = 0 WHERE id = ? AND status = ?`,
		model.StatusPending, id, model.StatusCompleted,
	)
	if err != nil {
		return nil, fmt.Errorf("revert assignment: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return nil, ErrNotCompleted
	}

	meta, err := json.Marshal(map[string]any{"task_id": taskID, "task_name": taskName})
	if err != nil {
		return nil, fmt.Errorf("marshal meta: %w", err)
	}
	_, err = tx.Exec(
		`INSERT INTO xp_events (user_id, amount, source, user_task_id, meta, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		userID, -awarded, model.SourceTaskReversal, id, string(meta), now.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("append reversal: %w", err)
	}

	if err := syncPlantCache(tx, userID, now); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return s.GetByID(id)
}

// DeleteAllForUser removes every assignment for a user and reports how many
// were deleted. Ledger rows are kept; their assignment reference is nulled.
func (s *AssignmentStore) DeleteAllForUser(userID int64) (int64, error) {
	result, err := s.db.Exec(`DELETE FROM user_tasks WHERE user_id = ?`, userID)
	if err != nil {
		return 0, fmt.Errorf("delete assignments: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}
