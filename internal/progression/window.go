package progression

import (
	"time"

	"github.com/georgec/tidybloom/internal/model"
)

// WindowStart returns the start of the recurrence window containing now for
// the given frequency:
//
//	DAILY   — start of the current calendar day
//	WEEKLY  — most recent Sunday at midnight (calendar Sunday, not locale)
//	MONTHLY — first day of the current calendar month
//
// The window end is implicitly "now". Times are computed in now's location.
func WindowStart(freq model.Frequency, now time.Time) time.Time {
	switch freq {
	case model.FrequencyWeekly:
		day := startOfDay(now)
		return day.AddDate(0, 0, -int(now.Weekday()))
	case model.FrequencyMonthly:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	default:
		return startOfDay(now)
	}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
