package store

import (
	"testing"
	"time"

	"github.com/georgec/tidybloom/internal/model"
)

func TestGetOrCreateDefaultPlant(t *testing.T) {
	ts := setupTestDB(t)

	user := mustUser(t, ts, "nina")

	plant, err := ts.plants.GetOrCreateDefault(user.ID)
	if err != nil {
		t.Fatalf("get or create: %v", err)
	}
	if plant.Nickname != defaultPlantNickname {
		t.Errorf("nickname = %q, want %q", plant.Nickname, defaultPlantNickname)
	}
	if plant.GrowthStage != model.StageSeed {
		t.Errorf("stage = %q, want SEED", plant.GrowthStage)
	}
	if plant.XP != 0 {
		t.Errorf("xp = %d, want 0", plant.XP)
	}
	if plant.Health != 100 {
		t.Errorf("health = %d, want 100", plant.Health)
	}

	// Second call returns the same plant, not a new one.
	again, err := ts.plants.GetOrCreateDefault(user.ID)
	if err != nil {
		t.Fatalf("second get or create: %v", err)
	}
	if again.ID != plant.ID {
		t.Errorf("plant id = %d, want %d", again.ID, plant.ID)
	}

	plants, _ := ts.plants.List()
	if len(plants) != 1 {
		t.Errorf("expected 1 plant, got %d", len(plants))
	}
}

func TestPlantCRUD(t *testing.T) {
	ts := setupTestDB(t)

	user := mustUser(t, ts, "oscar")

	plant, err := ts.plants.Create(user.ID, "Fernando")
	if err != nil {
		t.Fatalf("create plant: %v", err)
	}
	if plant.Nickname != "Fernando" {
		t.Errorf("nickname = %q, want Fernando", plant.Nickname)
	}

	got, err := ts.plants.GetByID(plant.ID)
	if err != nil {
		t.Fatalf("get plant: %v", err)
	}
	if got.Nickname != "Fernando" {
		t.Errorf("got nickname = %q, want Fernando", got.Nickname)
	}

	updated, err := ts.plants.Update(plant.ID, "Fern", 80)
	if err != nil {
		t.Fatalf("update plant: %v", err)
	}
	if updated.Nickname != "Fern" {
		t.Errorf("updated nickname = %q, want Fern", updated.Nickname)
	}
	if updated.Health != 80 {
		t.Errorf("health = %d, want 80", updated.Health)
	}
	// The cache fields are not client-writable.
	if updated.XP != 0 || updated.GrowthStage != model.StageSeed {
		t.Errorf("cache fields changed by update: xp=%d stage=%q", updated.XP, updated.GrowthStage)
	}

	if err := ts.plants.Delete(plant.ID); err != nil {
		t.Fatalf("delete plant: %v", err)
	}
	got, err = ts.plants.GetByID(plant.ID)
	if err != nil {
		t.Fatalf("get deleted plant: %v", err)
	}
	if got != nil {
		t.Error("expected nil for deleted plant")
	}
}

func TestPlantRecreatedAfterXPKeepsCacheInSync(t *testing.T) {
	ts := setupTestDB(t)

	user := mustUser(t, ts, "petra")
	task := mustTask(t, ts, "Sweep the hall", model.RoomLivingroom, model.SubcategoryHomeCare, 5)
	plant, err := ts.plants.GetOrCreateDefault(user.ID)
	if err != nil {
		t.Fatalf("create plant: %v", err)
	}

	a, err := ts.assignments.Create(user.ID, task.ID)
	if err != nil {
		t.Fatalf("create assignment: %v", err)
	}
	if _, err := ts.assignments.Complete(a.ID, time.Now()); err != nil {
		t.Fatalf("complete: %v", err)
	}

	// A plant created while the ledger is non-zero must start from the
	// ledger sum, not from zero.
	if err := ts.plants.Delete(plant.ID); err != nil {
		t.Fatalf("delete plant: %v", err)
	}
	recreated, err := ts.plants.GetOrCreateDefault(user.ID)
	if err != nil {
		t.Fatalf("recreate plant: %v", err)
	}

	total, err := ts.xp.TotalXP(user.ID)
	if err != nil {
		t.Fatalf("total xp: %v", err)
	}
	if total != 5 {
		t.Fatalf("ledger sum = %d, want 5", total)
	}
	if recreated.XP != total {
		t.Errorf("recreated plant xp = %d, want %d", recreated.XP, total)
	}

	second, err := ts.plants.Create(user.ID, "Second fern")
	if err != nil {
		t.Fatalf("create second plant: %v", err)
	}
	if second.XP != total {
		t.Errorf("second plant xp = %d, want %d", second.XP, total)
	}
}

func TestPlantGetByIDNotFound(t *testing.T) {
	ts := setupTestDB(t)

	got, err := ts.plants.GetByID(9999)
	if err != nil {
		t.Fatalf("get plant: %v", err)
	}
	if got != nil {
		t.Error("expected nil for nonexistent plant")
	}
}
