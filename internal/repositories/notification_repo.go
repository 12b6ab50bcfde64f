package repositories

import "groupbuy/internal/models"

// NotificationRepository defines the interface for notification data access.
type NotificationRepository interface {
	Create(notification *models.Notification) error
	ListByRecipient(recipient string) ([]models.Notification, error)
	MarkRead(id string, recipient string) error
	MarkAllRead(recipient string) (int64, error)
	Delete(id string, recipient string) error
}
