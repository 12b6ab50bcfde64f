package repositories

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"groupbuy/internal/models"

	"github.com/google/uuid"
)

// MockNotificationRepository is an in-memory implementation of NotificationRepository.
type MockNotificationRepository struct {
	notifications map[string]models.Notification
	mu            sync.RWMutex

	// FailCreates makes the next N Create calls fail, for exercising the
	// emitter's retry path in tests.
	FailCreates int
}

// NewMockNotificationRepository creates a new instance of MockNotificationRepository.
func NewMockNotificationRepository() *MockNotificationRepository {
	return &MockNotificationRepository{
		notifications: make(map[string]models.Notification),
	}
}

// Create persists a notification.
func (r *MockNotificationRepository) Create(notification *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.FailCreates > 0 {
		r.FailCreates--
		return fmt.Errorf("notification store unavailable")
	}

	if notification.ID == "" {
		notification.ID = uuid.New().String()
	}
	notification.CreatedAt = time.Now()
	r.notifications[notification.ID] = *notification
	return nil
}

// ListByRecipient returns a recipient's notifications, newest first.
func (r *MockNotificationRepository) ListByRecipient(recipient string) ([]models.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]models.Notification, 0)
	for _, n := range r.notifications {
		if n.Recipient == recipient {
			list = append(list, n)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return list, nil
}

// MarkRead flags one of the recipient's notifications as read.
func (r *MockNotificationRepository) MarkRead(id string, recipient string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.notifications[id]
	if !ok || n.Recipient != recipient {
		return fmt.Errorf("notification with ID %s not found", id)
	}
	n.Read = true
	r.notifications[id] = n
	return nil
}

// MarkAllRead flags all of a recipient's notifications as read.
func (r *MockNotificationRepository) MarkAllRead(recipient string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var updated int64
	for id, n := range r.notifications {
		if n.Recipient == recipient && !n.Read {
			n.Read = true
			r.notifications[id] = n
			updated++
		}
	}
	return updated, nil
}

// Delete removes one of the recipient's notifications.
func (r *MockNotificationRepository) Delete(id string, recipient string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.notifications[id]
	if !ok || n.Recipient != recipient {
		return fmt.Errorf("notification with ID %s not found", id)
	}
	delete(r.notifications, id)
	return nil
}
