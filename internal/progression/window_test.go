package progression

import (
	"testing"
	"time"

	"github.com/georgec/tidybloom/internal/model"
)

func TestWindowStartDaily(t *testing.T) {
	now := time.Date(2025, 8, 20, 15, 30, 45, 0, time.UTC) // Wednesday
	got := WindowStart(model.FrequencyDaily, now)
	want := time.Date(2025, 8, 20, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("daily window start = %v, want %v", got, want)
	}
}

func TestWindowStartWeekly(t *testing.T) {
	now := time.Date(2025, 8, 20, 15, 30, 0, 0, time.UTC) // Wednesday
	got := WindowStart(model.FrequencyWeekly, now)
	want := time.Date(2025, 8, 17, 0, 0, 0, 0, time.UTC) // previous Sunday
	if !got.Equal(want) {
		t.Errorf("weekly window start = %v, want %v", got, want)
	}
}

func TestWindowStartWeeklyOnSunday(t *testing.T) {
	// A Sunday belongs to the window it opens.
	now := time.Date(2025, 8, 17, 9, 0, 0, 0, time.UTC)
	got := WindowStart(model.FrequencyWeekly, now)
	want := time.Date(2025, 8, 17, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("weekly window start on Sunday = %v, want %v", got, want)
	}
}

func TestWindowStartMonthly(t *testing.T) {
	now := time.Date(2025, 8, 20, 15, 30, 0, 0, time.UTC)
	got := WindowStart(model.FrequencyMonthly, now)
	want := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("monthly window start = %v, want %v", got, want)
	}
}

func TestWindowStartKeepsLocation(t *testing.T) {
	loc := time.FixedZone("PST", -8*3600)
	now := time.Date(2025, 1, 15, 23, 0, 0, 0, loc)
	got := WindowStart(model.FrequencyDaily, now)
	if got.Location() != loc {
		t.Errorf("window start location = %v, want %v", got.Location(), loc)
	}
	if got.Hour() != 0 {
		t.Errorf("window start hour = %d, want 0", got.Hour())
	}
}
