package progression

import (
	"errors"
	"testing"

	apperr "github.com/Dan9191/money-marathon/internal/errors"
	"github.com/Dan9191/money-marathon/internal/models"
)

func record(t *testing.T, plan *models.Plan, entries []models.DayEntry, day int, result models.DayResult) []models.DayEntry {
	t.Helper()
	updated, err := RecordResult(entries, day, result)
	if err != nil {
		t.Fatalf("RecordResult(day %d, %s): %v", day, result, err)
	}
	plan.Status = AfterResult(*plan, updated, result)
	return updated
}

func TestStatus_WinThenLossStops(t *testing.T) {
	plan := testPlan("100", "1.5", 3)
	entries, _ := Generate(plan)

	entries = record(t, &plan, entries, 1, models.ResultWin)
	if plan.Status != models.PlanActive {
		t.Fatalf("after win status=%s want active", plan.Status)
	}
	entries = record(t, &plan, entries, 2, models.ResultLoss)
	if plan.Status != models.PlanStopped {
		t.Fatalf("after loss status=%s want stopped", plan.Status)
	}

	// Restarting from the lost day rebuilds its wager from the parameters only.
	fresh, err := RecalculateFromDay(plan, 2)
	if err != nil {
		t.Fatalf("RecalculateFromDay: %v", err)
	}
	if !fresh[0].Wager.Equal(entries[1].Wager) {
		t.Fatalf("restart wager=%s original=%s", fresh[0].Wager, entries[1].Wager)
	}
	if got := AfterRestart(plan.Status); got != models.PlanActive {
		t.Fatalf("after restart status=%s want active", got)
	}
}

func TestStatus_SingleDayWinCompletes(t *testing.T) {
	plan := testPlan("50", "2", 1)
	entries, _ := Generate(plan)
	record(t, &plan, entries, 1, models.ResultWin)
	if plan.Status != models.PlanCompleted {
		t.Fatalf("status=%s want completed", plan.Status)
	}
}

func TestStatus_AllWinsComplete(t *testing.T) {
	plan := testPlan("10", "1.2", 4)
	entries, _ := Generate(plan)
	for day := 1; day <= 4; day++ {
		entries = record(t, &plan, entries, day, models.ResultWin)
		want := models.PlanActive
		if day == 4 {
			want = models.PlanCompleted
		}
		if plan.Status != want {
			t.Fatalf("after day %d status=%s want %s", day, plan.Status, want)
		}
	}
}

func TestStatus_LossOnAnyDayStops(t *testing.T) {
	for day := 1; day <= 3; day++ {
		plan := testPlan("100", "1.5", 3)
		entries, _ := Generate(plan)
		record(t, &plan, entries, day, models.ResultLoss)
		if plan.Status != models.PlanStopped {
			t.Fatalf("loss on day %d status=%s want stopped", day, plan.Status)
		}
	}
}

func TestAfterRestart(t *testing.T) {
	tests := []struct {
		in, want models.PlanStatus
	}{
		{models.PlanStopped, models.PlanActive},
		{models.PlanActive, models.PlanActive},
		{models.PlanCompleted, models.PlanCompleted},
	}
	for _, tt := range tests {
		if got := AfterRestart(tt.in); got != tt.want {
			t.Fatalf("AfterRestart(%s)=%s want %s", tt.in, got, tt.want)
		}
	}
}

func TestAfterResult_LossAlwaysStops(t *testing.T) {
	for _, status := range []models.PlanStatus{models.PlanActive, models.PlanStopped, models.PlanCompleted} {
		plan := testPlan("100", "1.5", 2)
		plan.Status = status
		entries, _ := Generate(plan)
		entries[0].Result = models.ResultLoss
		if got := AfterResult(plan, entries, models.ResultLoss); got != models.PlanStopped {
			t.Fatalf("loss on %s plan: status=%s want stopped", status, got)
		}
	}
}

func TestValidateRestart(t *testing.T) {
	plan := testPlan("100", "1.5", 2)
	for _, status := range []models.PlanStatus{models.PlanActive, models.PlanStopped} {
		plan.Status = status
		if err := ValidateRestart(plan); err != nil {
			t.Fatalf("restart of %s plan: %v", status, err)
		}
	}
	plan.Status = models.PlanCompleted
	if err := ValidateRestart(plan); !errors.Is(err, apperr.ErrInvalidParameter) {
		t.Fatalf("restart of completed plan err=%v want ErrInvalidParameter", err)
	}
}

func TestRecordResult_Rejections(t *testing.T) {
	plan := testPlan("100", "1.5", 3)
	entries, _ := Generate(plan)

	if _, err := RecordResult(entries, 1, models.ResultPending); !errors.Is(err, apperr.ErrInvalidParameter) {
		t.Fatalf("pending result err=%v want ErrInvalidParameter", err)
	}
	if _, err := RecordResult(entries, 9, models.ResultWin); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("missing day err=%v want ErrNotFound", err)
	}

	lost, err := RecordResult(entries, 2, models.ResultLoss)
	if err != nil {
		t.Fatalf("RecordResult: %v", err)
	}
	if entries[1].Result != models.ResultPending {
		t.Fatalf("input slice was modified")
	}
	for _, r := range []models.DayResult{models.ResultWin, models.ResultLoss} {
		if _, err := RecordResult(lost, 2, r); !errors.Is(err, apperr.ErrInvalidParameter) {
			t.Fatalf("re-recording loss as %s err=%v want ErrInvalidParameter", r, err)
		}
	}
}

func TestCheckEntries(t *testing.T) {
	plan := testPlan("100", "1.5", 3)
	entries, _ := Generate(plan)
	if err := CheckEntries(plan, entries); err != nil {
		t.Fatalf("CheckEntries: %v", err)
	}

	gap := []models.DayEntry{entries[0], entries[2]}
	if err := CheckEntries(plan, gap); !errors.Is(err, apperr.ErrInconsistentState) {
		t.Fatalf("gap err=%v want ErrInconsistentState", err)
	}

	dup := []models.DayEntry{entries[0], entries[0], entries[2]}
	if err := CheckEntries(plan, dup); !errors.Is(err, apperr.ErrInconsistentState) {
		t.Fatalf("duplicate err=%v want ErrInconsistentState", err)
	}

	bad := append([]models.DayEntry(nil), entries...)
	bad[1].Result = "draw"
	if err := CheckEntries(plan, bad); !errors.Is(err, apperr.ErrInconsistentState) {
		t.Fatalf("bad result err=%v want ErrInconsistentState", err)
	}
}
