package services

import (
	"fmt"
	"log"

	"groupbuy/internal/models"
	"groupbuy/internal/repositories"
)

// NotificationService persists notification records for verification and
// order lifecycle events. Notifications are the customer's only asynchronous
// signal that a payment was accepted or rejected, so a failed write is
// retried once and then surfaced, never swallowed.
type NotificationService struct {
	repo repositories.NotificationRepository
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(repo repositories.NotificationRepository) *NotificationService {
	return &NotificationService{
		repo: repo,
	}
}

// Notify persists a single notification, retrying the write once.
func (s *NotificationService) Notify(recipient string, typ models.NotificationType, orderID, title, message string) error {
	n := &models.Notification{
		Recipient: recipient,
		Type:      typ,
		OrderID:   orderID,
		Title:     title,
		Message:   message,
	}
	if err := s.repo.Create(n); err != nil {
		log.Printf("Notification write failed, retrying once: %v", err)
		n.ID = ""
		if err := s.repo.Create(n); err != nil {
			return NewDomainError(CodeStorageUnavailable, "could not persist notification for %s: %v", recipient, err)
		}
	}
	return nil
}

// NotifyPaymentDecision tells the order's customer about a verify/reject
// decision. The rejection reason is always included in the message.
func (s *NotificationService) NotifyPaymentDecision(event models.PaymentEvent) error {
	round := "first payment"
	if event.Round == models.RoundSecond {
		round = "second payment"
	}

	var title, message string
	if event.Decision == models.RoundVerified {
		title = "Payment verified"
		message = fmt.Sprintf("Your %s of %.2f for %q has been verified.", round, event.Amount, event.CampaignTitle)
	} else {
		title = "Payment rejected"
		message = fmt.Sprintf("Your %s of %.2f for %q was rejected: %s. Please contact support or resubmit.", round, event.Amount, event.CampaignTitle, event.Notes)
	}
	return s.Notify(event.CustomerID, models.NotificationPayment, event.OrderID, title, message)
}

// NotifyPaymentSubmitted tells admins a customer filed payment proof.
func (s *NotificationService) NotifyPaymentSubmitted(event models.PaymentEvent) error {
	round := "first payment"
	if event.Round == models.RoundSecond {
		round = "second payment"
	}
	return s.Notify(models.RecipientAdmins, models.NotificationPayment, event.OrderID,
		"Payment proof submitted",
		fmt.Sprintf("A customer submitted %s proof of %.2f for %q.", round, event.Amount, event.CampaignTitle))
}

// NotifyOrderCreated tells admins a new order was placed.
func (s *NotificationService) NotifyOrderCreated(event models.OrderEvent) error {
	return s.Notify(models.RecipientAdmins, models.NotificationOrder, event.OrderID,
		"New order",
		fmt.Sprintf("New order for %q totalling %.2f.", event.CampaignTitle, event.Total))
}

// NotifyOrderStatus tells the customer their order's shipping status moved.
func (s *NotificationService) NotifyOrderStatus(event models.OrderEvent) error {
	return s.Notify(event.CustomerID, models.NotificationOrder, event.OrderID,
		"Order update",
		fmt.Sprintf("Your order for %q is now %s.", event.CampaignTitle, event.Status))
}

// ListForRecipient returns a recipient's notifications, newest first.
func (s *NotificationService) ListForRecipient(recipient string) ([]models.Notification, error) {
	return s.repo.ListByRecipient(recipient)
}

// MarkRead flags one notification as read.
func (s *NotificationService) MarkRead(id, recipient string) error {
	return s.repo.MarkRead(id, recipient)
}

// MarkAllRead flags all of a recipient's notifications as read.
func (s *NotificationService) MarkAllRead(recipient string) (int64, error) {
	return s.repo.MarkAllRead(recipient)
}

// Delete removes one notification.
func (s *NotificationService) Delete(id, recipient string) error {
	return s.repo.Delete(id, recipient)
}
