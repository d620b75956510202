package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/georgec/tidybloom/internal/model"
)

type XPStore struct {
	db *sql.DB
}

func NewXPStore(db *sql.DB) *XPStore {
	return &XPStore{db: db}
}

func scanXPEvent(scanner interface{ Scan(...any) error }) (*model.XPEvent, error) {
	var e model.XPEvent
	var assignmentID, goalID sql.NullInt64
	var meta sql.NullString

	err := scanner.Scan(
		&e.ID, &e.UserID, &e.Amount, &e.Source, &assignmentID, &goalID, &meta, &e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if assignmentID.Valid {
		e.AssignmentID = &assignmentID.Int64
	}
	if goalID.Valid {
		e.GoalID = &goalID.Int64
	}
	if meta.Valid {
		e.Meta = []byte(meta.String)
	}
	return &e, nil
}

const xpEventCols = `id, user_id, amount, source, user_task_id, goal_id, meta, created_at`

// TotalXP sums the ledger for a user. The ledger is the source of truth;
// the plant's xp column is only a cache of this value.
func (s *XPStore) TotalXP(userID int64) (int, error) {
	var total sql.NullInt64
	err := s.db.QueryRow(
		`SELECT COALESCE(SUM(amount), 0) FROM xp_events WHERE user_id = ?`,
		userID,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum ledger: %w", err)
	}
	return int(total.Int64), nil
}

// ListByUser returns a user's ledger rows newest first, optionally filtered
// by source and creation time range.
func (s *XPStore) ListByUser(userID int64, source string, start, end *time.Time) ([]model.XPEvent, error) {
	query := `SELECT ` + xpEventCols + ` FROM xp_events WHERE user_id = ?`
	args := []any{userID}
	if source != "" {
		query += ` AND source = ?`
		args = append(args, source)
	}
	if start != nil {
		query += ` AND created_at >= ?`
		args = append(args, start.UTC())
	}
	if end != nil {
		query += ` AND created_at <= ?`
		args = append(args, end.UTC())
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list xp events: %w", err)
	}
	defer rows.Close()

	var events []model.XPEvent
	for rows.Next() {
		e, err := scanXPEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan xp event: %w", err)
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

// CountForGoalSince reports how many bonus rows exist for a goal in the
// window opening at windowStart. Used by tests to assert at-most-once
// granting.
func (s *XPStore) CountForGoalSince(userID, goalID int64, windowStart time.Time) (int, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM xp_events WHERE user_id = ? AND goal_id = ? AND created_at >= ?`,
		userID, goalID, windowStart.UTC(),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count goal events: %w", err)
	}
	return count, nil
}
