package models

import "github.com/shopspring/decimal"

// PlanStats represents progress metrics derived from a plan and its entries
type PlanStats struct {
	CurrentDay         int             `json:"current_day"` // May exceed TotalDays once finished
	ProgressPercentage int             `json:"progress_percentage"`
	CurrentWager       decimal.Decimal `json:"current_wager"`
	PotentialFinal     decimal.Decimal `json:"potential_final"`
	WinRate            int             `json:"win_rate"`
	CompletedDays      int             `json:"completed_days"`
	TotalDays          int             `json:"total_days"`
	Wins               int             `json:"wins"`
	Losses             int             `json:"losses"`
}

// DashboardSummary represents aggregate figures across a user's plans
type DashboardSummary struct {
	TotalPlans        int             `json:"total_plans"`
	ActivePlans       int             `json:"active_plans"`
	CompletedPlans    int             `json:"completed_plans"`
	StoppedPlans      int             `json:"stopped_plans"`
	TotalInvestment   decimal.Decimal `json:"total_investment"`
	PotentialWinnings decimal.Decimal `json:"potential_winnings"` // Active plans only
	SuccessRate       int             `json:"success_rate"`
}
