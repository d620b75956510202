package store

import (
	"database/sql"
	"fmt"

	"github.com/georgec/tidybloom/internal/model"
	"github.com/georgec/tidybloom/internal/progression"
)

type StageStore struct {
	db *sql.DB
}

func NewStageStore(db *sql.DB) *StageStore {
	return &StageStore{db: db}
}

func (s *StageStore) List() ([]model.GrowthStage, error) {
	rows, err := s.db.Query(`SELECT id, stage, required_xp FROM growth_stages ORDER BY required_xp ASC`)
	if err != nil {
		return nil, fmt.Errorf("list growth stages: %w", err)
	}
	defer rows.Close()

	var stages []model.GrowthStage
	for rows.Next() {
		var g model.GrowthStage
		if err := rows.Scan(&g.ID, &g.Stage, &g.RequiredXP); err != nil {
			return nil, fmt.Errorf("scan growth stage: %w", err)
		}
		stages = append(stages, g)
	}
	return stages, rows.Err()
}

// ListThresholds returns the stage thresholds in ascending order, validated
// as strictly increasing. Seed data that violates the invariant is an error
// here rather than a divide-by-zero later.
func (s *StageStore) ListThresholds() ([]progression.Threshold, error) {
	return loadThresholds(s.db)
}

type queryer interface {
	Query(query string, args ...any) (*sql.Rows, error)
}

func loadThresholds(q queryer) ([]progression.Threshold, error) {
	rows, err := q.Query(`SELECT stage, required_xp FROM growth_stages ORDER BY required_xp ASC`)
	if err != nil {
		return nil, fmt.Errorf("load thresholds: %w", err)
	}
	defer rows.Close()

	var thresholds []progression.Threshold
	for rows.Next() {
		var t progression.Threshold
		if err := rows.Scan(&t.Stage, &t.RequiredXP); err != nil {
			return nil, fmt.Errorf("scan threshold: %w", err)
		}
		thresholds = append(thresholds, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := progression.ValidateThresholds(thresholds); err != nil {
		return nil, fmt.Errorf("invalid stage seed data: %w", err)
	}
	return thresholds, nil
}
