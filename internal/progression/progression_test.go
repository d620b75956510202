package progression

import (
	"math"
	"testing"
)

func defaultThresholds() []Threshold {
	return []Threshold{
		{Stage: "SEED", RequiredXP: 0},
		{Stage: "SPROUT", RequiredXP: 100},
		{Stage: "MATURE", RequiredXP: 250},
		{Stage: "BLOOM", RequiredXP: 500},
	}
}

func TestComputeMidStage(t *testing.T) {
	p, err := Compute(180, defaultThresholds())
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if p.Current.Stage != "SPROUT" {
		t.Errorf("current = %q, want SPROUT", p.Current.Stage)
	}
	if p.Next == nil || p.Next.Stage != "MATURE" {
		t.Errorf("next = %v, want MATURE", p.Next)
	}
	want := (180.0 - 100.0) / (250.0 - 100.0) * 100
	if math.Abs(p.PercentToNext-want) > 0.001 {
		t.Errorf("percent = %v, want %v", p.PercentToNext, want)
	}
}

func TestComputeExactThresholdIsAtStage(t *testing.T) {
	p, err := Compute(100, defaultThresholds())
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if p.Current.Stage != "SPROUT" {
		t.Errorf("current at exact threshold = %q, want SPROUT", p.Current.Stage)
	}
	if p.PercentToNext != 0 {
		t.Errorf("percent at threshold = %v, want 0", p.PercentToNext)
	}
}

func TestComputeFinalStage(t *testing.T) {
	p, err := Compute(9000, defaultThresholds())
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if p.Current.Stage != "BLOOM" {
		t.Errorf("current = %q, want BLOOM", p.Current.Stage)
	}
	if p.Next != nil {
		t.Errorf("next = %v, want nil at final stage", p.Next)
	}
	if p.PercentToNext != 100 {
		t.Errorf("percent = %v, want 100", p.PercentToNext)
	}
}

func TestComputeBelowFirstThresholdDefaultsToFirst(t *testing.T) {
	thresholds := []Threshold{
		{Stage: "SEED", RequiredXP: 50},
		{Stage: "SPROUT", RequiredXP: 100},
	}
	p, err := Compute(10, thresholds)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if p.Current.Stage != "SEED" {
		t.Errorf("current = %q, want SEED", p.Current.Stage)
	}
	if p.PercentToNext != 0 {
		t.Errorf("percent should clamp to 0, got %v", p.PercentToNext)
	}
}

func TestComputeInvariants(t *testing.T) {
	thresholds := defaultThresholds()
	for xp := 0; xp <= 600; xp += 7 {
		p, err := Compute(xp, thresholds)
		if err != nil {
			t.Fatalf("compute(%d): %v", xp, err)
		}
		if p.Current.RequiredXP > xp {
			t.Errorf("xp=%d: current requires %d XP", xp, p.Current.RequiredXP)
		}
		if p.Next != nil && p.Next.RequiredXP <= xp {
			t.Errorf("xp=%d: next requires %d XP, should be above total", xp, p.Next.RequiredXP)
		}
		if p.PercentToNext < 0 || p.PercentToNext > 100 {
			t.Errorf("xp=%d: percent out of range: %v", xp, p.PercentToNext)
		}
	}
}

func TestValidateThresholds(t *testing.T) {
	if err := ValidateThresholds(nil); err == nil {
		t.Error("expected error for empty thresholds")
	}
	if err := ValidateThresholds([]Threshold{
		{Stage: "SEED", RequiredXP: 0},
		{Stage: "SPROUT", RequiredXP: 0},
	}); err == nil {
		t.Error("expected error for non-increasing thresholds")
	}
	if err := ValidateThresholds(defaultThresholds()); err != nil {
		t.Errorf("valid thresholds rejected: %v", err)
	}
}
