package store

import (
	"testing"

	"github.com/georgec/tidybloom/internal/database"
	"github.com/georgec/tidybloom/internal/model"
)

func TestStageSeedData(t *testing.T) {
	ts := setupTestDB(t)

	stages, err := ts.stages.List()
	if err != nil {
		t.Fatalf("list stages: %v", err)
	}
	if len(stages) != 4 {
		t.Fatalf("got %d stages, want 4", len(stages))
	}

	expected := []struct {
		stage      string
		requiredXP int
	}{
		{model.StageSeed, 0},
		{model.StageSprout, 100},
		{model.StageMature, 250},
		{model.StageBloom, 500},
	}
	for i, exp := range expected {
		if stages[i].Stage != exp.stage {
			t.Errorf("stage[%d] = %q, want %q", i, stages[i].Stage, exp.stage)
		}
		if stages[i].RequiredXP != exp.requiredXP {
			t.Errorf("stage[%d] required_xp = %d, want %d", i, stages[i].RequiredXP, exp.requiredXP)
		}
	}
}

func TestListThresholdsOrdered(t *testing.T) {
	ts := setupTestDB(t)

	thresholds, err := ts.stages.ListThresholds()
	if err != nil {
		t.Fatalf("list thresholds: %v", err)
	}
	if len(thresholds) != 4 {
		t.Fatalf("got %d thresholds, want 4", len(thresholds))
	}
	if thresholds[0].RequiredXP != 0 {
		t.Errorf("first threshold required_xp = %d, want 0", thresholds[0].RequiredXP)
	}
	for i := 1; i < len(thresholds); i++ {
		if thresholds[i].RequiredXP <= thresholds[i-1].RequiredXP {
			t.Errorf("thresholds not strictly increasing at %d: %d <= %d",
				i, thresholds[i].RequiredXP, thresholds[i-1].RequiredXP)
		}
	}
}

func TestListThresholdsRejectsCorruptSeed(t *testing.T) {
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, err := db.Exec(`UPDATE growth_stages SET required_xp = 0 WHERE stage = 'SPROUT'`); err != nil {
		t.Fatalf("corrupt seed: %v", err)
	}

	stages := NewStageStore(db)
	if _, err := stages.ListThresholds(); err == nil {
		t.Error("expected error for non-increasing thresholds")
	}
}
