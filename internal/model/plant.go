package model

import "time"

// Growth stages, in progression order.
const (
	StageSeed   = "SEED"
	StageSprout = "SPROUT"
	StageMature = "MATURE"
	StageBloom  = "BLOOM"
)

// GrowthStage maps a stage name to the cumulative XP needed to reach it.
// Seed data; required XP must be strictly increasing across stages.
type GrowthStage struct {
	ID         int64  `json:"id"`
	Stage      string `json:"stage"`
	RequiredXP int    `json:"required_xp"`
}

// Plant is a user's virtual plant. XP and GrowthStage are a cache derived
// from the ledger sum; every ledger write resyncs them in the same
// transaction.
type Plant struct {
	ID          int64     `json:"id"`
	OwnerID     int64     `json:"owner_id"`
	Nickname    string    `json:"nickname"`
	GrowthStage string    `json:"growth_stage"`
	XP          int       `json:"xp"`
	Health      int       `json:"health"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
