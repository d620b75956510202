package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/georgec/tidybloom/internal/model"
	"github.com/georgec/tidybloom/internal/progression"
)

const defaultPlantNickname = "My First Sprout"

type PlantStore struct {
	db *sql.DB
}

func NewPlantStore(db *sql.DB) *PlantStore {
	return &PlantStore{db: db}
}

func scanPlant(scanner interface{ Scan(...any) error }) (*model.Plant, error) {
	var p model.Plant
	err := scanner.Scan(
		&p.ID, &p.OwnerID, &p.Nickname, &p.GrowthStage, &p.XP, &p.Health,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

const plantCols = `id, owner_id, nickname, growth_stage, xp, health, created_at, updated_at`

// Create inserts a plant and immediately derives its cached XP and growth
// stage from the owner's ledger, so a plant created after XP was already
// earned never reads stale zeros.
func (s *PlantStore) Create(ownerID int64, nickname string) (*model.Plant, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		`INSERT INTO plants (owner_id, nickname) VALUES (?, ?)`,
		ownerID, nickname,
	)
	if err != nil {
		return nil, fmt.Errorf("insert plant: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	if err := syncPlantCache(tx, ownerID, time.Now()); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return s.GetByID(id)
}

func (s *PlantStore) GetByID(id int64) (*model.Plant, error) {
	row := s.db.QueryRow(`SELECT `+plantCols+` FROM plants WHERE id = ?`, id)
	p, err := scanPlant(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get plant: %w", err)
	}
	return p, nil
}

func (s *PlantStore) List() ([]model.Plant, error) {
	rows, err := s.db.Query(`SELECT ` + plantCols + ` FROM plants ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list plants: %w", err)
	}
	defer rows.Close()

	var plants []model.Plant
	for rows.Next() {
		p, err := scanPlant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan plant: %w", err)
		}
		plants = append(plants, *p)
	}
	return plants, rows.Err()
}

func (s *PlantStore) ListByOwner(ownerID int64) ([]model.Plant, error) {
	rows, err := s.db.Query(
		`SELECT `+plantCols+` FROM plants WHERE owner_id = ? ORDER BY id ASC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("list plants by owner: %w", err)
	}
	defer rows.Close()

	var plants []model.Plant
	for rows.Next() {
		p, err := scanPlant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan plant: %w", err)
		}
		plants = append(plants, *p)
	}
	return plants, rows.Err()
}

// GetOrCreateDefault returns the user's first plant, creating one at SEED
// with full health if none exists yet.
func (s *PlantStore) GetOrCreateDefault(ownerID int64) (*model.Plant, error) {
	row := s.db.QueryRow(
		`SELECT `+plantCols+` FROM plants WHERE owner_id = ? ORDER BY id ASC LIMIT 1`,
		ownerID,
	)
	p, err := scanPlant(row)
	if err == nil {
		return p, nil
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("get plant by owner: %w", err)
	}
	return s.Create(ownerID, defaultPlantNickname)
}

// Update changes the user-editable fields. XP and growth stage are a derived
// cache owned by the ledger; they cannot be set from outside.
func (s *PlantStore) Update(id int64, nickname string, health int) (*model.Plant, error) {
	_, err := s.db.Exec(
		`UPDATE plants SET nickname = ?, health = ?, updated_at = datetime('now') WHERE id = ?`,
		nickname, health, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update plant: %w", err)
	}
	return s.GetByID(id)
}

func (s *PlantStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM plants WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete plant: %w", err)
	}
	return nil
}

// syncPlantCache recomputes the cached XP and growth stage for all of the
// user's plants from the ledger sum, inside the caller's transaction. Every
// code path that writes a ledger row must call this before committing.
func syncPlantCache(tx *sql.Tx, userID int64, now time.Time) error {
	var total sql.NullInt64
	err := tx.QueryRow(
		`SELECT COALESCE(SUM(amount), 0) FROM xp_events WHERE user_id = ?`,
		userID,
	).Scan(&total)
	if err != nil {
		return fmt.Errorf("sum ledger: %w", err)
	}

	thresholds, err := loadThresholds(tx)
	if err != nil {
		return err
	}
	prog, err := progression.Compute(int(total.Int64), thresholds)
	if err != nil {
		return fmt.Errorf("compute stage: %w", err)
	}

	_, err = tx.Exec(
		`UPDATE plants SET xp = ?, growth_stage = ?, updated_at = ? WHERE owner_id = ?`,
		total.Int64, prog.Current.Stage, now.UTC(), userID,
	)
	if err != nil {
		return fmt.Errorf("sync plant cache: %w", err)
	}
	return nil
}
