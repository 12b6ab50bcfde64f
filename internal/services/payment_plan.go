package services

import (
	"math"
	"time"

	"groupbuy/internal/models"
)

// BuildPaymentRounds computes the round set for an order from its total cost,
// any fixed surcharge (air-cargo cost) and the chosen plan.
//
// Full plan: a single round of totalCost + surcharge, no due date.
// Installment plan: firstPayment = round-to-cent(totalCost * 0.5) + surcharge,
// secondPayment = the remainder of the base total, due at dueDate. The two
// amounts always sum to exactly totalCost + surcharge; the odd cent, if any,
// lands in the first round.
//
// The function is pure: the same inputs always produce identical amounts, so
// a round is never silently re-priced after creation.
func BuildPaymentRounds(totalCost, surcharge float64, plan models.PaymentPlan, dueDate *time.Time) ([]models.PaymentRound, error) {
	if totalCost <= 0 {
		return nil, NewDomainError(CodeInvalidPlan, "total cost must be positive, got %.2f", totalCost)
	}
	if surcharge < 0 {
		return nil, NewDomainError(CodeInvalidPlan, "surcharge must not be negative, got %.2f", surcharge)
	}

	switch plan {
	case models.PlanFull:
		return []models.PaymentRound{
			{
				Name:   models.RoundFirst,
				Amount: roundCents(totalCost + surcharge),
				Status: models.RoundPending,
			},
		}, nil

	case models.PlanInstallment:
		half := roundCents(totalCost * 0.5)
		first := roundCents(half + surcharge)
		second := roundCents(totalCost - half)
		return []models.PaymentRound{
			{
				Name:   models.RoundFirst,
				Amount: first,
				Status: models.RoundPending,
			},
			{
				Name:    models.RoundSecond,
				Amount:  second,
				Status:  models.RoundPending,
				DueDate: dueDate,
			},
		}, nil

	default:
		return nil, NewDomainError(CodeInvalidPlan, "unknown payment plan %q", plan)
	}
}

// roundCents rounds a monetary amount to the nearest cent.
func roundCents(amount float64) float64 {
	return math.Round(amount*100) / 100
}
