// Package progression computes growth stages from cumulative XP and the
// recurrence windows used by category goals.
package progression

import "fmt"

// Threshold is one growth stage entry. Thresholds are always handled as an
// ascending list by RequiredXP.
type Threshold struct {
	Stage      string `json:"stage"`
	RequiredXP int    `json:"required_xp"`
}

// Progress describes where a user sits between stages. Next is nil at the
// final stage, in which case PercentToNext is 100.
type Progress struct {
	Current       Threshold  `json:"current_stage"`
	Next          *Threshold `json:"next_stage"`
	PercentToNext float64    `json:"progress_to_next"`
}

// ValidateThresholds checks that the list is non-empty and strictly
// increasing by required XP. Strictly increasing rules out a zero-width gap
// between adjacent stages, which would make the percent calculation divide
// by zero.
func ValidateThresholds(thresholds []Threshold) error {
	if len(thresholds) == 0 {
		return fmt.Errorf("no growth stage thresholds")
	}
	for i := 1; i < len(thresholds); i++ {
		if thresholds[i].RequiredXP <= thresholds[i-1].RequiredXP {
			return fmt.Errorf("threshold %q (%d XP) must require more XP than %q (%d XP)",
				thresholds[i].Stage, thresholds[i].RequiredXP,
				thresholds[i-1].Stage, thresholds[i-1].RequiredXP)
		}
	}
	return nil
}

// Compute returns the current stage, next stage, and percent progress toward
// the next stage for the given total XP. Thresholds must be validated
// (ascending, strictly increasing) before calling.
//
// The current stage is the last threshold whose required XP is <= totalXP;
// hitting a threshold exactly places the user AT that stage. Total XP below
// the first threshold defaults to the first stage.
func Compute(totalXP int, thresholds []Threshold) (Progress, error) {
	if err := ValidateThresholds(thresholds); err != nil {
		return Progress{}, err
	}

	current := 0
	for i, t := range thresholds {
		if totalXP >= t.RequiredXP {
			current = i
		}
	}

	p := Progress{Current: thresholds[current]}

	if current == len(thresholds)-1 {
		p.PercentToNext = 100
		return p, nil
	}

	next := thresholds[current+1]
	p.Next = &next

	span := float64(next.RequiredXP - p.Current.RequiredXP)
	pct := float64(totalXP-p.Current.RequiredXP) / span * 100
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	p.PercentToNext = pct
	return p, nil
}
