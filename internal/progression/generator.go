package progression

import (
	"github.com/shopspring/decimal"

	"github.com/Dan9191/money-marathon/internal/models"
)

// Generate returns the full progression for plan: one pending entry per day,
// each day's wager being the previous day's winnings.
func Generate(plan models.Plan) ([]models.DayEntry, error) {
	if err := ValidatePlan(plan); err != nil {
		return nil, err
	}
	return compound(plan, 1, plan.StartWager), nil
}

// RecalculateFromDay returns fresh pending entries for days fromDay..plan.Days.
// The wager at fromDay is rebuilt from the plan's start wager and odds alone;
// outcomes recorded before fromDay do not influence it.
func RecalculateFromDay(plan models.Plan, fromDay int) ([]models.DayEntry, error) {
	if err := ValidatePlan(plan); err != nil {
		return nil, err
	}
	if err := ValidateDay(plan, fromDay); err != nil {
		return nil, err
	}
	return compound(plan, fromDay, WagerAt(plan, fromDay)), nil
}

// WagerAt returns startWager * odds^(day-1).
func WagerAt(plan models.Plan, day int) decimal.Decimal {
	wager := plan.StartWager
	for d := 1; d < day; d++ {
		wager = wager.Mul(plan.Odds)
	}
	return wager
}

// FinalWinnings returns the winnings of the plan's last day if every day is won.
func FinalWinnings(plan models.Plan) decimal.Decimal {
	return WagerAt(plan, plan.Days+1)
}

func compound(plan models.Plan, fromDay int, wager decimal.Decimal) []models.DayEntry {
	entries := make([]models.DayEntry, 0, plan.Days-fromDay+1)
	for day := fromDay; day <= plan.Days; day++ {
		winnings := wager.Mul(plan.Odds)
		entries = append(entries, models.DayEntry{
			PlanID:   plan.ID,
			Day:      day,
			Wager:    wager,
			Odds:     plan.Odds,
			Winnings: winnings,
			Result:   models.ResultPending,
		})
		wager = winnings
	}
	return entries
}
