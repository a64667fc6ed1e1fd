package email

import (
	"fmt"
	"net/smtp"

	"github.com/Dan9191/money-marathon/internal/config"
	"github.com/Dan9191/money-marathon/internal/models"
	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"
)

// Sender handles sending emails via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: logger,
	}
}

// SendDayReminder reminds the owner of the wager due on the plan's current day
func (s *Sender) SendDayReminder(to, name string, plan models.Plan, stats models.PlanStats) error {
	subject := fmt.Sprintf("%s: day %d of %d", plan.Name, stats.CurrentDay, plan.Days)
	body := fmt.Sprintf("Dear %s,\n\n", name)
	body += fmt.Sprintf(
		"Today is day %d of your plan %q.\n"+
			"Wager: %s\n"+
			"Odds: %s\n"+
			"Progress so far: %d%% (%d of %d days recorded)\n"+
			"Winnings if every remaining day is won: %s\n",
		stats.CurrentDay, plan.Name, stats.CurrentWager.StringFixed(2), plan.Odds.StringFixed(2),
		stats.ProgressPercentage, stats.CompletedDays, plan.Days, stats.PotentialFinal.StringFixed(2),
	)
	return s.send(to, subject, body)
}

// SendPlanCompleted congratulates the owner on winning every day of a plan
func (s *Sender) SendPlanCompleted(to, name string, plan models.Plan, stats models.PlanStats) error {
	subject := fmt.Sprintf("%s completed", plan.Name)
	body := fmt.Sprintf("Dear %s,\n\n", name)
	body += fmt.Sprintf(
		"You won all %d days of your plan %q.\n"+
			"Starting wager: %s\n"+
			"Final winnings: %s\n",
		plan.Days, plan.Name, plan.StartWager.StringFixed(2), stats.PotentialFinal.StringFixed(2),
	)
	return s.send(to, subject, body)
}

// SendPlanStopped notifies the owner that a loss stopped the plan
func (s *Sender) SendPlanStopped(to, name string, plan models.Plan, day int) error {
	subject := fmt.Sprintf("%s stopped", plan.Name)
	body := fmt.Sprintf("Dear %s,\n\n", name)
	body += fmt.Sprintf(
		"Day %d of your plan %q was recorded as a loss and the plan has been stopped.\n"+
			"You can restart the plan from any day to continue.\n",
		day, plan.Name,
	)
	return s.send(to, subject, body)
}

func (s *Sender) send(to, subject, body string) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	e.Subject = subject
	body += "\nBest regards,\nMoney Marathon"
	e.Text = []byte(body)

	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	err := e.Send(addr, auth)
	if err != nil {
		s.logger.Errorf("Failed to send email to %s: %v", to, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Infof("Email sent to %s: %s", to, e.Subject)
	return nil
}
