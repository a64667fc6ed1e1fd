package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/Dan9191/money-marathon/internal/models"
)

// GeneratePlanHMAC signs the immutable parameters of a plan
func GeneratePlanHMAC(plan models.Plan, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	data := plan.ID + "|" + plan.UserID + "|" +
		plan.StartWager.StringFixed(2) + "|" + plan.Odds.StringFixed(2) + "|" +
		strconv.Itoa(plan.Days)
	h.Write([]byte(data))
	return hex.EncodeToString(h.Sum(nil))
}

// VerifyPlanHMAC checks that the plan parameters still match their signature
func VerifyPlanHMAC(plan models.Plan, secret string) error {
	if plan.HMAC == "" {
		return fmt.Errorf("plan %s has no signature", plan.ID)
	}
	want, err := hex.DecodeString(GeneratePlanHMAC(plan, secret))
	if err != nil {
		return fmt.Errorf("failed to encode signature: %w", err)
	}
	got, err := hex.DecodeString(plan.HMAC)
	if err != nil {
		return fmt.Errorf("failed to decode signature: %w", err)
	}
	if !hmac.Equal(got, want) {
		return fmt.Errorf("plan %s parameters do not match signature", plan.ID)
	}
	return nil
}
