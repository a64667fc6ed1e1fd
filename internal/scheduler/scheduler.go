// Package scheduler runs the periodic reminder job for active plans.
package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/Dan9191/money-marathon/internal/models"
	"github.com/Dan9191/money-marathon/internal/progression"
)

// Reminder delivers the daily reminder for one plan
type Reminder interface {
	SendDayReminder(to, name string, plan models.Plan, stats models.PlanStats) error
}

// PlanSource is the read side of the store the job needs
type PlanSource interface {
	ListPlansByStatus(ctx context.Context, status models.PlanStatus) ([]models.Plan, error)
	LoadDayEntries(ctx context.Context, planID string) ([]models.DayEntry, error)
	FindUserByID(ctx context.Context, id string) (*models.User, error)
}

type Scheduler struct {
	cron     *cron.Cron
	plans    PlanSource
	reminder Reminder
	log      *logrus.Logger
	baseCtx  context.Context
}

func New(ctx context.Context, plans PlanSource, reminder Reminder, log *logrus.Logger) *Scheduler {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Scheduler{
		cron:     cron.New(),
		plans:    plans,
		reminder: reminder,
		log:      log,
		baseCtx:  ctx,
	}
}

// ScheduleReminders registers the reminder job under a standard five-field
// cron spec.
func (s *Scheduler) ScheduleReminders(spec string) error {
	_, err := s.cron.AddFunc(spec, func() {
		sent, err := s.SendReminders(s.baseCtx)
		if err != nil {
			s.log.WithError(err).Error("Reminder run failed")
			return
		}
		s.log.Infof("Reminder run finished: %d sent", sent)
	})
	if err != nil {
		return fmt.Errorf("invalid reminder schedule %q: %w", spec, err)
	}
	return nil
}

func (s *Scheduler) Start() {
	s.log.Info("Scheduler started")
	s.cron.Start()
}

// Stop waits for a running job to finish
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info("Scheduler stopped")
}

// SendReminders reminds the owner of every active plan of the wager due on
// its current day. A failure for one plan is logged and skipped.
func (s *Scheduler) SendReminders(ctx context.Context) (int, error) {
	plans, err := s.plans.ListPlansByStatus(ctx, models.PlanActive)
	if err != nil {
		return 0, fmt.Errorf("failed to list active plans: %w", err)
	}

	users := map[string]*models.User{}
	sent := 0
	for _, plan := range plans {
		if err := ctx.Err(); err != nil {
			return sent, err
		}
		log := s.log.WithField("plan_id", plan.ID)

		user, ok := users[plan.UserID]
		if !ok {
			if user, err = s.plans.FindUserByID(ctx, plan.UserID); err != nil {
				log.WithError(err).Warn("Skipping reminder: failed to load owner")
				continue
			}
			users[plan.UserID] = user
		}
		entries, err := s.plans.LoadDayEntries(ctx, plan.ID)
		if err != nil {
			log.WithError(err).Warn("Skipping reminder: failed to load day entries")
			continue
		}
		if err := progression.CheckEntries(plan, entries); err != nil {
			log.WithError(err).Error("Skipping reminder: plan entries are inconsistent")
			continue
		}

		stats := progression.Stats(plan, entries)
		if stats.CurrentDay > plan.Days {
			continue
		}
		if err := s.reminder.SendDayReminder(user.Email, user.Name, plan, stats); err != nil {
			log.WithError(err).Warn("Failed to send reminder")
			continue
		}
		sent++
	}
	return sent, nil
}
