package progression

import (
	"strconv"

	apperr "github.com/Dan9191/money-marathon/internal/errors"
	"github.com/Dan9191/money-marathon/internal/models"
)

// RecordResult sets the result of day within a copy of entries and returns it.
// Only pending days accept a result, and only win or loss.
func RecordResult(entries []models.DayEntry, day int, result models.DayResult) ([]models.DayEntry, error) {
	if result != models.ResultWin && result != models.ResultLoss {
		return nil, apperr.Invalid("result", "must be %q or %q", models.ResultWin, models.ResultLoss)
	}
	idx := -1
	for i := range entries {
		if entries[i].Day == day {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, apperr.NotFound("day entry", strconv.Itoa(day))
	}
	if entries[idx].Result != models.ResultPending {
		return nil, apperr.Invalid("result", "day %d is already recorded as %s", day, entries[idx].Result)
	}

	updated := make([]models.DayEntry, len(entries))
	copy(updated, entries)
	updated[idx].Result = result
	return updated, nil
}

// AfterResult returns the plan status once result has been recorded and
// entries reflects that update. A loss always stops the plan; a win completes
// it when every day is won.
func AfterResult(plan models.Plan, entries []models.DayEntry, result models.DayResult) models.PlanStatus {
	switch result {
	case models.ResultLoss:
		return models.PlanStopped
	case models.ResultWin:
		if countResult(entries, models.ResultWin) == plan.Days {
			return models.PlanCompleted
		}
	}
	return plan.Status
}

// ValidateRestart rejects restarting a completed plan. Completed plans have
// no pending days left and stay completed.
func ValidateRestart(plan models.Plan) error {
	if plan.Status == models.PlanCompleted {
		return apperr.Invalid("status", "plan %s is completed and cannot be restarted", plan.ID)
	}
	return nil
}

// AfterRestart reactivates a stopped plan and leaves any other status alone.
func AfterRestart(status models.PlanStatus) models.PlanStatus {
	if status == models.PlanStopped {
		return models.PlanActive
	}
	return status
}

// CheckEntries fails unless entries hold exactly one row per day 1..plan.Days,
// ordered by day.
func CheckEntries(plan models.Plan, entries []models.DayEntry) error {
	if len(entries) != plan.Days {
		return apperr.Inconsistent("plan %s has %d day entries, want %d", plan.ID, len(entries), plan.Days)
	}
	for i, e := range entries {
		if e.Day != i+1 {
			return apperr.Inconsistent("plan %s entry %d is day %d", plan.ID, i, e.Day)
		}
		if !e.Result.Valid() {
			return apperr.Inconsistent("plan %s day %d has result %q", plan.ID, e.Day, e.Result)
		}
	}
	return nil
}

func countResult(entries []models.DayEntry, result models.DayResult) int {
	n := 0
	for _, e := range entries {
		if e.Result == result {
			n++
		}
	}
	return n
}
