package repositories

import (
	"fmt"

	"groupbuy/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMNotificationRepository is a GORM implementation of NotificationRepository.
type GORMNotificationRepository struct {
	db *gorm.DB
}

// NewGORMNotificationRepository creates a new instance of GORMNotificationRepository.
func NewGORMNotificationRepository(db *gorm.DB) *GORMNotificationRepository {
	return &GORMNotificationRepository{
		db: db,
	}
}

// Create persists a notification.
func (r *GORMNotificationRepository) Create(notification *models.Notification) error {
	if notification.ID == "" {
		notification.ID = uuid.New().String()
	}
	if err := r.db.Create(notification).Error; err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

// ListByRecipient returns a recipient's notifications, newest first.
func (r *GORMNotificationRepository) ListByRecipient(recipient string) ([]models.Notification, error) {
	var notifications []models.Notification
	if err := r.db.Where("recipient = ?", recipient).Order("created_at DESC").Find(&notifications).Error; err != nil {
		return nil, fmt.Errorf("failed to list notifications for %s: %w", recipient, err)
	}
	return notifications, nil
}

// MarkRead flags one of the recipient's notifications as read.
func (r *GORMNotificationRepository) MarkRead(id string, recipient string) error {
	res := r.db.Model(&models.Notification{}).
		Where("id = ? AND recipient = ?", id, recipient).
		Update("read", true)
	if res.Error != nil {
		return fmt.Errorf("failed to mark notification %s read: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("notification with ID %s not found", id)
	}
	return nil
}

// MarkAllRead flags all of a recipient's notifications as read.
func (r *GORMNotificationRepository) MarkAllRead(recipient string) (int64, error) {
	res := r.db.Model(&models.Notification{}).
		Where("recipient = ? AND read = ?", recipient, false).
		Update("read", true)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to mark notifications read for %s: %w", recipient, res.Error)
	}
	return res.RowsAffected, nil
}

// Delete removes one of the recipient's notifications.
func (r *GORMNotificationRepository) Delete(id string, recipient string) error {
	res := r.db.Delete(&models.Notification{}, "id = ? AND recipient = ?", id, recipient)
	if res.Error != nil {
		return fmt.Errorf("failed to delete notification %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("notification with ID %s not found", id)
	}
	return nil
}
