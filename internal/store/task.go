package store

import (
	"database/sql"
	"fmt"

	"github.com/georgec/tidybloom/internal/model"
)

type TaskStore struct {
	db *sql.DB
}

func NewTaskStore(db *sql.DB) *TaskStore {
	return &TaskStore{db: db}
}

func scanTask(scanner interface{ Scan(...any) error }) (*model.Task, error) {
	var t model.Task
	var active int

	err := scanner.Scan(
		&t.ID, &t.Name, &t.Room, &t.Subcategory, &t.Frequency,
		&t.BaseXP, &active, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.IsActive = active != 0
	return &t, nil
}

const taskCols = `id, name, room, subcategory, frequency, base_xp, is_active, created_at, updated_at`

func (s *TaskStore) Create(name string, room model.Room, subcategory model.Subcategory, frequency model.Frequency, baseXP int, isActive bool) (*model.Task, error) {
	var active int
	if isActive {
		active = 1
	}

	result, err := s.db.Exec(
		`INSERT INTO tasks (name, room, subcategory, frequency, base_xp, is_active) VALUES (?, ?, ?, ?, ?, ?)`,
		name, room, subcategory, frequency, baseXP, active,
	)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *TaskStore) GetByID(id int64) (*model.Task, error) {
	row := s.db.QueryRow(`SELECT `+taskCols+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

func (s *TaskStore) List() ([]model.Task, error) {
	rows, err := s.db.Query(`SELECT ` + taskCols + ` FROM tasks ORDER BY room ASC, subcategory ASC, name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

func (s *TaskStore) ListByRoom(room model.Room) ([]model.Task, error) {
	rows, err := s.db.Query(
		`SELECT `+taskCols+` FROM tasks WHERE room = ? ORDER BY subcategory ASC, name ASC`,
		room,
	)
	if err != nil {
		return nil, fmt.Errorf("list tasks by room: %w", err)
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

func (s *TaskStore) Update(id int64, name string, room model.Room, subcategory model.Subcategory, frequency model.Frequency, baseXP int, isActive bool) (*model.Task, error) {
	var active int
	if isActive {
		active = 1
	}

	_, err := s.db.Exec(
		`UPDATE tasks SET name = ?, room = ?, subcategory = ?, frequency = ?, base_xp = ?, is_active = ?, updated_at = datetime('now') WHERE id = ?`,
		name, room, subcategory, frequency, baseXP, active, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	return s.GetByID(id)
}
