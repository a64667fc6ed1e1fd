package models

import "github.com/shopspring/decimal"

// DayResult is the recorded outcome of a day
type DayResult string

const (
	ResultPending DayResult = "pending"
	ResultWin     DayResult = "win"
	ResultLoss    DayResult = "loss"
)

// Valid reports whether r is a known result
func (r DayResult) Valid() bool {
	switch r {
	case ResultPending, ResultWin, ResultLoss:
		return true
	}
	return false
}

// DayEntry represents one scheduled day of a plan
type DayEntry struct {
	ID       string          `json:"id"`
	PlanID   string          `json:"plan_id"`
	Day      int             `json:"day"`
	Wager    decimal.Decimal `json:"wager"`
	Odds     decimal.Decimal `json:"odds"`
	Winnings decimal.Decimal `json:"winnings"` // Wager * Odds
	Result   DayResult       `json:"result"`
}
