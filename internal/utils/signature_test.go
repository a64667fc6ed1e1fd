package utils

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/Dan9191/money-marathon/internal/models"
)

func signedPlan(secret string) models.Plan {
	p := models.Plan{
		ID:         "p1",
		UserID:     "u1",
		StartWager: decimal.RequireFromString("100"),
		Odds:       decimal.RequireFromString("1.5"),
		Days:       3,
	}
	p.HMAC = GeneratePlanHMAC(p, secret)
	return p
}

func TestVerifyPlanHMAC(t *testing.T) {
	p := signedPlan("s3cret")
	if err := VerifyPlanHMAC(p, "s3cret"); err != nil {
		t.Fatalf("VerifyPlanHMAC: %v", err)
	}

	// Trailing zeros must not change the signature.
	p.StartWager = decimal.RequireFromString("100.00")
	if err := VerifyPlanHMAC(p, "s3cret"); err != nil {
		t.Fatalf("VerifyPlanHMAC with rescaled wager: %v", err)
	}
}

func TestVerifyPlanHMAC_Mismatch(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.Plan)
		secret string
	}{
		{"wrong secret", func(*models.Plan) {}, "other"},
		{"odds changed", func(p *models.Plan) { p.Odds = decimal.RequireFromString("1.6") }, "s3cret"},
		{"days changed", func(p *models.Plan) { p.Days = 4 }, "s3cret"},
		{"owner changed", func(p *models.Plan) { p.UserID = "u2" }, "s3cret"},
		{"missing", func(p *models.Plan) { p.HMAC = "" }, "s3cret"},
		{"not hex", func(p *models.Plan) { p.HMAC = "zz" }, "s3cret"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := signedPlan("s3cret")
			tt.mutate(&p)
			if err := VerifyPlanHMAC(p, tt.secret); err == nil {
				t.Fatalf("expected verification failure")
			}
		})
	}
}
