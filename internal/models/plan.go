package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PlanStatus is the lifecycle state of a plan
type PlanStatus string

const (
	PlanActive    PlanStatus = "active"
	PlanStopped   PlanStatus = "stopped"
	PlanCompleted PlanStatus = "completed"
)

// Valid reports whether s is a known status
func (s PlanStatus) Valid() bool {
	switch s {
	case PlanActive, PlanStopped, PlanCompleted:
		return true
	}
	return false
}

// Plan represents a compound wagering plan. StartWager, Odds and Days never
// change after creation; only Status does.
type Plan struct {
	ID         string          `json:"id"`
	UserID     string          `json:"user_id"`
	Name       string          `json:"name"`
	StartWager decimal.Decimal `json:"start_wager"`
	Odds       decimal.Decimal `json:"odds"`
	Days       int             `json:"days"`
	Status     PlanStatus      `json:"status"`
	HMAC       string          `json:"-"`
	CreatedAt  time.Time       `json:"created_at"`
}

// PlanDetails is a plan with its day entries and derived statistics
type PlanDetails struct {
	Plan       Plan       `json:"plan"`
	DayEntries []DayEntry `json:"day_entries"`
	Stats      PlanStats  `json:"stats"`
}
