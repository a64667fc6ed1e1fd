package service

import (
	"context"
	"fmt"

	apperr "github.com/Dan9191/money-marathon/internal/errors"
	"github.com/Dan9191/money-marathon/internal/models"
	"github.com/Dan9191/money-marathon/internal/progression"
	"github.com/Dan9191/money-marathon/internal/repository"
	"github.com/Dan9191/money-marathon/internal/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PlanInput holds the parameters of a new plan
type PlanInput struct {
	Name       string
	StartWager decimal.Decimal
	Odds       decimal.Decimal
	Days       int
}

// CreatePlan stores a new plan together with its generated progression
func (s *Service) CreatePlan(ctx context.Context, p models.Principal, in PlanInput) (*models.PlanDetails, error) {
	name, err := validatePlanName(in.Name)
	if err != nil {
		return nil, err
	}
	plan, err := progression.Normalize(models.Plan{
		ID:         uuid.NewString(),
		UserID:     p.ID,
		Name:       name,
		StartWager: in.StartWager,
		Odds:       in.Odds,
		Days:       in.Days,
		Status:     models.PlanActive,
	})
	if err != nil {
		return nil, err
	}
	entries, err := progression.Generate(plan)
	if err != nil {
		return nil, err
	}
	plan.HMAC = utils.GeneratePlanHMAC(plan, s.config.HMACSecret)

	err = s.repo.InTx(ctx, func(tx repository.Tx) error {
		if err := tx.InsertPlan(ctx, &plan); err != nil {
			return err
		}
		entries, err = tx.InsertDayEntries(ctx, entries)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Infof("Plan %s created for user %s: %s x %s over %d days", plan.ID, p.ID, plan.StartWager, plan.Odds, plan.Days)
	return details(plan, entries), nil
}

// ListPlans returns the caller's plans, newest first
func (s *Service) ListPlans(ctx context.Context, p models.Principal) ([]models.Plan, error) {
	plans, err := s.repo.ListPlansByUser(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	if plans == nil {
		plans = []models.Plan{}
	}
	return plans, nil
}

// GetPlan returns a plan with its entries and statistics
func (s *Service) GetPlan(ctx context.Context, p models.Principal, planID string) (*models.PlanDetails, error) {
	plan, err := s.repo.FindPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	if err := authorize(p, plan); err != nil {
		return nil, err
	}
	entries, err := s.repo.LoadDayEntries(ctx, planID)
	if err != nil {
		return nil, err
	}
	if err := progression.CheckEntries(*plan, entries); err != nil {
		return nil, err
	}
	return details(*plan, entries), nil
}

// DeletePlan removes a plan and its day entries
func (s *Service) DeletePlan(ctx context.Context, p models.Principal, planID string) error {
	plan, err := s.repo.FindPlan(ctx, planID)
	if err != nil {
		return err
	}
	if err := authorize(p, plan); err != nil {
		return err
	}
	if err := s.repo.DeletePlan(ctx, planID); err != nil {
		return err
	}
	s.log.Infof("Plan %s deleted by user %s", planID, p.ID)
	return nil
}

// UpdateDayResult records the outcome of a day and applies the resulting
// status transition in the same transaction.
func (s *Service) UpdateDayResult(ctx context.Context, p models.Principal, planID string, day int, result models.DayResult) (*models.PlanDetails, error) {
	var out *models.PlanDetails
	var previous models.PlanStatus

	err := s.repo.InTx(ctx, func(tx repository.Tx) error {
		plan, entries, err := s.lockPlan(ctx, tx, p, planID)
		if err != nil {
			return err
		}
		if err := progression.ValidateDay(*plan, day); err != nil {
			return err
		}
		updated, err := progression.RecordResult(entries, day, result)
		if err != nil {
			return err
		}
		if err := tx.UpdateDayResult(ctx, planID, day, result); err != nil {
			return err
		}

		previous = plan.Status
		plan.Status = progression.AfterResult(*plan, updated, result)
		if plan.Status != previous {
			if err := tx.UpdatePlanStatus(ctx, planID, plan.Status); err != nil {
				return err
			}
		}
		out = details(*plan, updated)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Infof("Plan %s day %d recorded as %s (status %s)", planID, day, result, out.Plan.Status)
	if out.Plan.Status != previous {
		s.notifyTransition(p, out, day)
	}
	return out, nil
}

// RestartPlan regenerates the entries from fromDay onwards and reactivates a
// stopped plan. Entries before fromDay are left untouched. Completed plans
// cannot be restarted.
func (s *Service) RestartPlan(ctx context.Context, p models.Principal, planID string, fromDay int) (*models.PlanDetails, error) {
	var out *models.PlanDetails

	err := s.repo.InTx(ctx, func(tx repository.Tx) error {
		plan, _, err := s.lockPlan(ctx, tx, p, planID)
		if err != nil {
			return err
		}
		if err := progression.ValidateRestart(*plan); err != nil {
			return err
		}
		fresh, err := progression.RecalculateFromDay(*plan, fromDay)
		if err != nil {
			return err
		}
		if _, err := tx.DeleteDayEntriesFromDay(ctx, planID, fromDay); err != nil {
			return err
		}
		if _, err := tx.InsertDayEntries(ctx, fresh); err != nil {
			return err
		}
		entries, err := tx.LoadDayEntries(ctx, planID)
		if err != nil {
			return err
		}
		if err := progression.CheckEntries(*plan, entries); err != nil {
			return err
		}

		if next := progression.AfterRestart(plan.Status); next != plan.Status {
			if err := tx.UpdatePlanStatus(ctx, planID, next); err != nil {
				return err
			}
			plan.Status = next
		}
		out = details(*plan, entries)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Infof("Plan %s restarted from day %d (status %s)", planID, fromDay, out.Plan.Status)
	return out, nil
}

// Dashboard summarises the caller's plans
func (s *Service) Dashboard(ctx context.Context, p models.Principal) (models.DashboardSummary, error) {
	plans, err := s.repo.ListPlansByUser(ctx, p.ID)
	if err != nil {
		return models.DashboardSummary{}, err
	}
	return progression.Summarize(plans), nil
}

// lockPlan locks the plan row and loads a consistent snapshot of its entries
func (s *Service) lockPlan(ctx context.Context, tx repository.Tx, p models.Principal, planID string) (*models.Plan, []models.DayEntry, error) {
	plan, err := tx.LockPlan(ctx, planID)
	if err != nil {
		return nil, nil, err
	}
	if err := authorize(p, plan); err != nil {
		return nil, nil, err
	}
	if err := utils.VerifyPlanHMAC(*plan, s.config.HMACSecret); err != nil {
		return nil, nil, fmt.Errorf("%v: %w", err, apperr.ErrInconsistentState)
	}
	entries, err := tx.LoadDayEntries(ctx, planID)
	if err != nil {
		return nil, nil, err
	}
	if err := progression.CheckEntries(*plan, entries); err != nil {
		return nil, nil, err
	}
	return plan, entries, nil
}

func (s *Service) notifyTransition(p models.Principal, d *models.PlanDetails, day int) {
	if s.notifier == nil {
		return
	}
	var err error
	switch d.Plan.Status {
	case models.PlanCompleted:
		err = s.notifier.SendPlanCompleted(p.Email, p.Name, d.Plan, d.Stats)
	case models.PlanStopped:
		err = s.notifier.SendPlanStopped(p.Email, p.Name, d.Plan, day)
	}
	if err != nil {
		s.log.WithError(err).Warnf("Failed to notify %s about plan %s", p.Email, d.Plan.ID)
	}
}

func authorize(p models.Principal, plan *models.Plan) error {
	if plan.UserID != p.ID {
		return fmt.Errorf("plan %s belongs to another user: %w", plan.ID, apperr.ErrForbidden)
	}
	return nil
}

func details(plan models.Plan, entries []models.DayEntry) *models.PlanDetails {
	if entries == nil {
		entries = []models.DayEntry{}
	}
	return &models.PlanDetails{
		Plan:       plan,
		DayEntries: entries,
		Stats:      progression.Stats(plan, entries),
	}
}
