package progression

import (
	"github.com/shopspring/decimal"

	"github.com/Dan9191/money-marathon/internal/models"
)

// Stats derives progress metrics from a plan and its day-ordered entries.
func Stats(plan models.Plan, entries []models.DayEntry) models.PlanStats {
	wins := countResult(entries, models.ResultWin)
	losses := countResult(entries, models.ResultLoss)
	completed := len(entries) - countResult(entries, models.ResultPending)

	st := models.PlanStats{
		CurrentDay:         completed + 1,
		ProgressPercentage: roundPercent(completed, plan.Days),
		CurrentWager:       decimal.Zero,
		PotentialFinal:     decimal.Zero,
		WinRate:            roundPercent(wins, completed),
		CompletedDays:      completed,
		TotalDays:          plan.Days,
		Wins:               wins,
		Losses:             losses,
	}
	for _, e := range entries {
		if e.Day == st.CurrentDay {
			st.CurrentWager = e.Wager
			break
		}
	}
	if len(entries) > 0 {
		st.PotentialFinal = entries[len(entries)-1].Winnings
	}
	return st
}

// Summarize aggregates a user's plans for the dashboard.
func Summarize(plans []models.Plan) models.DashboardSummary {
	sum := models.DashboardSummary{
		TotalPlans:        len(plans),
		TotalInvestment:   decimal.Zero,
		PotentialWinnings: decimal.Zero,
	}
	for _, p := range plans {
		sum.TotalInvestment = sum.TotalInvestment.Add(p.StartWager)
		switch p.Status {
		case models.PlanActive:
			sum.ActivePlans++
			sum.PotentialWinnings = sum.PotentialWinnings.Add(FinalWinnings(p))
		case models.PlanCompleted:
			sum.CompletedPlans++
		case models.PlanStopped:
			sum.StoppedPlans++
		}
	}
	sum.SuccessRate = roundPercent(sum.CompletedPlans, sum.TotalPlans)
	return sum
}

// roundPercent returns 100*n/d rounded half up, or 0 when d is 0.
func roundPercent(n, d int) int {
	if d <= 0 {
		return 0
	}
	return (200*n + d) / (2 * d)
}
