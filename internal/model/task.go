package model

import "time"

// Room identifies where in the home a task happens.
type Room string

const (
	RoomKitchen    Room = "KITCHEN"
	RoomBathroom   Room = "BATHROOM"
	RoomLivingroom Room = "LIVINGROOM"
	RoomBedroom    Room = "BEDROOM"
)

// Subcategory splits tasks into care of the home vs care of yourself.
type Subcategory string

const (
	SubcategoryHomeCare     Subcategory = "HOME_CARE"
	SubcategoryPersonalCare Subcategory = "PERSONAL_CARE"
)

// Frequency is how often a task (or goal) recurs.
type Frequency string

const (
	FrequencyDaily   Frequency = "DAILY"
	FrequencyWeekly  Frequency = "WEEKLY"
	FrequencyMonthly Frequency = "MONTHLY"
)

func ValidRoom(r string) bool {
	switch Room(r) {
	case RoomKitchen, RoomBathroom, RoomLivingroom, RoomBedroom:
		return true
	}
	return false
}

func ValidSubcategory(s string) bool {
	switch Subcategory(s) {
	case SubcategoryHomeCare, SubcategoryPersonalCare:
		return true
	}
	return false
}

func ValidFrequency(f string) bool {
	switch Frequency(f) {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly:
		return true
	}
	return false
}

// Task is a catalog entry describing a completable chore. Catalog rows are
// seeded and rarely change.
type Task struct {
	ID          int64       `json:"id"`
	Name        string      `json:"name"`
	Room        Room        `json:"room"`
	Subcategory Subcategory `json:"subcategory"`
	Frequency   Frequency   `json:"frequency"`
	BaseXP      int         `json:"base_xp"`
	IsActive    bool        `json:"is_active"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// Assignment statuses. COMPLETED and EXPIRED are terminal.
const (
	StatusPending   = "PENDING"
	StatusCompleted = "COMPLETED"
	StatusExpired   = "EXPIRED"
)

func ValidStatus(s string) bool {
	return s == StatusPending || s == StatusCompleted || s == StatusExpired
}

// Assignment ties a catalog task to a user with its own completion lifecycle.
// XPAwarded stays 0 until the assignment is completed.
type Assignment struct {
	ID          int64      `json:"id"`
	UserID      int64      `json:"user_id"`
	TaskID      int64      `json:"task_id"`
	Status      string     `json:"status"`
	CompletedAt *time.Time `json:"completed_at"`
	XPAwarded   int        `json:"xp_awarded"`
	CreatedAt   time.Time  `json:"created_at"`

	// Task is populated on reads that join the catalog.
	Task *Task `json:"task,omitempty"`
}
