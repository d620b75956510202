package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/georgec/tidybloom/internal/model"
	"github.com/georgec/tidybloom/internal/progression"
)

// goalBonusXP is the flat bonus granted once per goal per window.
const goalBonusXP = 25

type GoalStore struct {
	db *sql.DB
}

func NewGoalStore(db *sql.DB) *GoalStore {
	return &GoalStore{db: db}
}

func scanGoal(scanner interface{ Scan(...any) error }) (*model.CategoryGoal, error) {
	var g model.CategoryGoal
	var active int

	err := scanner.Scan(
		&g.ID, &g.Room, &g.Subcategory, &g.RequiredTasks, &g.Frequency, &active,
		&g.CreatedAt, &g.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	g.IsActive = active != 0
	return &g, nil
}

const goalCols = `id, room, subcategory, required_tasks, frequency, is_active, created_at, updated_at`

func (s *GoalStore) List() ([]model.CategoryGoal, error) {
	rows, err := s.db.Query(`SELECT ` + goalCols + ` FROM category_goals ORDER BY room ASC, subcategory ASC`)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()

	var goals []model.CategoryGoal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		goals = append(goals, *g)
	}
	return goals, rows.Err()
}

func (s *GoalStore) GetByID(id int64) (*model.CategoryGoal, error) {
	row := s.db.QueryRow(`SELECT `+goalCols+` FROM category_goals WHERE id = ?`, id)
	g, err := scanGoal(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get goal: %w", err)
	}
	return g, nil
}

func (s *GoalStore) Update(id int64, room model.Room, subcategory model.Subcategory, requiredTasks int, frequency model.Frequency, isActive bool) (*model.CategoryGoal, error) {
	var active int
	if isActive {
		active = 1
	}

	_, err := s.db.Exec(
		`UPDATE category_goals SET room = ?, subcategory = ?, required_tasks = ?, frequency = ?, is_active = ?, updated_at = datetime('now') WHERE id = ?`,
		room, subcategory, requiredTasks, frequency, active, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update goal: %w", err)
	}
	return s.GetByID(id)
}

// CheckProgress evaluates every active goal against the user's completions
// in the goal's current window and grants the bonus for each newly satisfied
// goal. The grant is an insert guarded by a NOT EXISTS check on
// (goal, window) inside the transaction, so concurrent evaluations cannot
// double-grant. Returns all goals satisfied in their current window, whether
// the bonus was granted just now or earlier in the window.
func (s *GoalStore) CheckProgress(userID int64, now time.Time) ([]model.CategoryGoal, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.Query(`SELECT ` + goalCols + ` FROM category_goals WHERE is_active = 1 ORDER BY room ASC, subcategory ASC`)
	if err != nil {
		return nil, fmt.Errorf("list active goals: %w", err)
	}
	var goals []model.CategoryGoal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		goals = append(goals, *g)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	var completed []model.CategoryGoal
	granted := false

	for _, g := range goals {
		windowStart := progression.WindowStart(g.Frequency, now).UTC()

		var count int
		err := tx.QueryRow(
			`SELECT COUNT(*) FROM user_tasks ut JOIN tasks t ON t.id = ut.task_id
			 WHERE ut.user_id = ? AND ut.status = ? AND ut.completed_at >= ?
			   AND t.room = ? AND t.subcategory = ?`,
			userID, model.StatusCompleted, windowStart, g.Room, g.Subcategory,
		).Scan(&count)
		if err != nil {
			return nil, fmt.Errorf("count completions for goal %d: %w", g.ID, err)
		}

		if count < g.RequiredTasks {
			continue
		}
		completed = append(completed, g)

		meta, err := json.Marshal(map[string]any{
			"goal_id":     g.ID,
			"room":        g.Room,
			"subcategory": g.Subcategory,
			"frequency":   g.Frequency,
		})
		if err != nil {
			return nil, fmt.Errorf("marshal meta: %w", err)
		}

		result, err := tx.Exec(
			`INSERT INTO xp_events (user_id, amount, source, goal_id, meta, created_at)
			 SELECT ?, ?, ?, ?, ?, ?
			 WHERE NOT EXISTS (
			     SELECT 1 FROM xp_events WHERE user_id = ? AND goal_id = ? AND created_at >= ?
			 )`,
			userID, goalBonusXP, model.SourceCategoryGoal, g.ID, string(meta), now.UTC(),
			userID, g.ID, windowStart,
		)
		if err != nil {
			return nil, fmt.Errorf("grant bonus for goal %d: %w", g.ID, err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("rows affected: %w", err)
		}
		if n > 0 {
			granted = true
		}
	}

	if granted {
		if err := syncPlantCache(tx, userID, now); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return completed, nil
}
