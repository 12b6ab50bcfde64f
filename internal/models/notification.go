package models

import "time"

// NotificationType categorizes what a notification is about.
type NotificationType string

const (
	NotificationOrder   NotificationType = "order"
	NotificationPayment NotificationType = "payment"
	NotificationMessage NotificationType = "message"
	NotificationPrivate NotificationType = "private-message"
)

// RecipientAdmins addresses a notification to every admin rather than a
// single user.
const RecipientAdmins = "admins"

// Notification is a persisted message for a user or for the admin group.
// It is only ever created by the notification service and mutated via the
// explicit read/mark-all/delete operations.
type Notification struct {
	ID        string           `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Recipient string           `json:"recipient" gorm:"index;type:varchar(36)"`
	Type      NotificationType `json:"type" gorm:"type:varchar(20)"`
	OrderID   string           `json:"order_id,omitempty" gorm:"index;type:varchar(36)"`
	Title     string           `json:"title" gorm:"type:varchar(200)"`
	Message   string           `json:"message" gorm:"type:varchar(1000)"`
	Read      bool             `json:"read" gorm:"index"`
	CreatedAt time.Time        `json:"created_at"`
}
