package services

import (
	"errors"
	"log"
	"time"

	"groupbuy/internal/models"
	"groupbuy/internal/repositories"
	"groupbuy/pkg/rabbitmq"
)

// VerificationService is the state machine applying admin verify/reject
// decisions to payment rounds.
//
// Transitions per round: pending -> verified (terminal) or pending ->
// rejected. A first-payment rejection is terminal; a rejected second payment
// stays decidable: the admin may re-decide it here, or the customer reopens
// it to pending with a fresh submission (see OrderService.SubmitRoundProof).
// The state machine, not the UI, is the sole enforcer of irreversibility.
type VerificationService struct {
	orderRepo repositories.OrderRepository
	notifier  *NotificationService
	publisher rabbitmq.Publisher
	now       func() time.Time
}

// NewVerificationService creates a new VerificationService.
func NewVerificationService(orderRepo repositories.OrderRepository, notifier *NotificationService, publisher rabbitmq.Publisher) *VerificationService {
	return &VerificationService{
		orderRepo: orderRepo,
		notifier:  notifier,
		publisher: publisher,
		now:       time.Now,
	}
}

// VerifyRound applies an admin decision to one round of one order and returns
// the updated order. Notes are required on rejection and become the
// customer-visible reason.
//
// The write is a compare-and-set on the round's observed status, so a retry
// of an already-applied decision fails with TERMINAL_STATE (or
// CONCURRENCY_CONFLICT when racing another admin) and never double-applies
// the transition or double-emits the customer notification. Re-rejecting a
// rejected second payment refreshes the notes; verifying it clears it.
func (s *VerificationService) VerifyRound(orderID string, roundName models.RoundName, decision models.RoundStatus, notes string) (*models.Order, error) {
	if decision != models.RoundVerified && decision != models.RoundRejected {
		return nil, NewDomainError(CodeValidation, "decision must be verified or rejected, got %q", decision)
	}
	if decision == models.RoundRejected && notes == "" {
		return nil, NewDomainError(CodeValidation, "rejection requires a reason in notes")
	}

	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		if isNotFound(err) {
			return nil, NewDomainError(CodeNotFound, "order %s not found", orderID)
		}
		return nil, NewDomainError(CodeStorageUnavailable, "failed to load order %s: %v", orderID, err)
	}

	round := order.Round(roundName)
	if round == nil {
		return nil, NewDomainError(CodeRoundNotFound, "order %s has no %s round under the %s plan", orderID, roundName, order.PaymentPlan)
	}
	if roundName == models.RoundSecond {
		first := order.Round(models.RoundFirst)
		if first == nil || first.Status != models.RoundVerified {
			return nil, NewDomainError(CodeSequenceViolation, "second payment of order %s cannot be decided before the first payment is verified", orderID)
		}
	}
	if round.Details == nil {
		return nil, NewDomainError(CodeNoProofSubmitted, "%s of order %s has no submitted payment proof", roundName, orderID)
	}
	if round.Terminal() {
		return nil, NewDomainError(CodeTerminalState, "%s of order %s was already %s", roundName, orderID, round.Status)
	}
	// A rejected second payment is not terminal: the goods were released on
	// first-payment verification, so the admin may re-decide it directly.
	expected := round.Status

	var verifiedAt *time.Time
	if decision == models.RoundVerified {
		t := s.now()
		verifiedAt = &t
	}

	if err := s.casRoundStatus(orderID, roundName, expected, decision, notes, verifiedAt); err != nil {
		return nil, err
	}

	event := models.PaymentEvent{
		OrderID:       orderID,
		Round:         roundName,
		Decision:      decision,
		Notes:         notes,
		Amount:        round.Amount,
		CustomerID:    order.UserID,
		CampaignTitle: order.CampaignTitle,
	}
	if err := s.notifier.NotifyPaymentDecision(event); err != nil {
		return nil, err
	}

	routingKey := models.EventPaymentVerified
	if decision == models.RoundRejected {
		routingKey = models.EventPaymentRejected
	}
	if s.publisher != nil {
		if err := s.publisher.Publish(routingKey, event); err != nil {
			log.Printf("Warning: failed to publish %s event for order %s: %v", routingKey, orderID, err)
		}
	}

	updated, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		// The decision is already committed and notified at this point.
		return nil, NewDomainError(CodeStorageUnavailable, "decision for order %s was applied but the reload failed: %v", orderID, err)
	}
	return updated, nil
}

// casRoundStatus performs the conditional write, retrying a storage failure
// once before surfacing it. A lost race is reported as CONCURRENCY_CONFLICT,
// never retried: the other writer's decision stands.
func (s *VerificationService) casRoundStatus(orderID string, roundName models.RoundName, expected, decision models.RoundStatus, notes string, verifiedAt *time.Time) error {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		err := s.orderRepo.CompareAndSetRoundStatus(orderID, roundName, expected, decision, notes, verifiedAt)
		if err == nil {
			return nil
		}
		var conflict repositories.ErrRoundConflict
		if errors.As(err, &conflict) {
			return NewDomainError(CodeConcurrencyConflict, "%s of order %s was decided by another admin", roundName, orderID)
		}
		lastErr = err
		log.Printf("Round status write failed for order %s (attempt %d): %v", orderID, attempt+1, err)
	}
	return NewDomainError(CodeStorageUnavailable, "could not persist decision for order %s: %v", orderID, lastErr)
}
