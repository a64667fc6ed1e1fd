// Package progression computes compound wagering progressions and derives
// plan status and statistics from recorded day outcomes.
//
// Every function here is pure: it reads its arguments, performs exact decimal
// arithmetic and returns new values. Persistence, locking and logging belong
// to the callers.
package progression

import (
	"github.com/shopspring/decimal"

	apperr "github.com/Dan9191/money-marathon/internal/errors"
	"github.com/Dan9191/money-marathon/internal/models"
)

const (
	MinDays = 1
	MaxDays = 365

	// AmountScale is the number of decimal places kept for plan inputs.
	AmountScale = 2

	// Bounds on raw input decimals, checked before any arithmetic touches them.
	maxInputScale    = 18
	maxInputExponent = 12
	maxInputDigits   = 32
)

var (
	MinStartWager = decimal.NewFromInt(1)
	MaxStartWager = decimal.RequireFromString("9999999999.99")
	MaxOdds       = decimal.RequireFromString("99.99")
	one           = decimal.NewFromInt(1)
)

// Normalize rounds the plan's start wager and odds to AmountScale places.
// Inputs with an exponent or coefficient far outside any valid amount are
// rejected first, since rescaling them is unbounded work.
func Normalize(plan models.Plan) (models.Plan, error) {
	if err := checkInput("start_wager", plan.StartWager); err != nil {
		return plan, err
	}
	if err := checkInput("odds", plan.Odds); err != nil {
		return plan, err
	}
	plan.StartWager = plan.StartWager.Round(AmountScale)
	plan.Odds = plan.Odds.Round(AmountScale)
	return plan, nil
}

func checkInput(field string, v decimal.Decimal) error {
	exp := v.Exponent()
	if exp < -maxInputScale || exp > maxInputExponent || v.NumDigits() > maxInputDigits {
		return apperr.Invalid(field, "is not a valid amount")
	}
	return nil
}

// ValidatePlan checks the parameter invariants a plan must satisfy before a
// progression can be computed for it.
func ValidatePlan(plan models.Plan) error {
	if plan.StartWager.LessThan(MinStartWager) {
		return apperr.Invalid("start_wager", "must be at least %s", MinStartWager)
	}
	if plan.StartWager.GreaterThan(MaxStartWager) {
		return apperr.Invalid("start_wager", "must not exceed %s", MaxStartWager)
	}
	if !plan.Odds.GreaterThan(one) {
		return apperr.Invalid("odds", "must be greater than 1")
	}
	if plan.Odds.GreaterThan(MaxOdds) {
		return apperr.Invalid("odds", "must not exceed %s", MaxOdds)
	}
	if plan.Days < MinDays || plan.Days > MaxDays {
		return apperr.Invalid("days", "must be between %d and %d", MinDays, MaxDays)
	}
	return nil
}

// ValidateDay checks that day lies within the plan's duration.
func ValidateDay(plan models.Plan, day int) error {
	if day < 1 || day > plan.Days {
		return apperr.Invalid("day", "must be between 1 and %d", plan.Days)
	}
	return nil
}
