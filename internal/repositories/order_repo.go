package repositories

import (
	"time"

	"groupbuy/internal/models"
)

// OrderFilter narrows List results. PaymentStatus is matched against the
// derived overall status (or the pending-second queue) by the service layer;
// Status and Search are pushed down to the store.
type OrderFilter struct {
	Status        models.OrderStatus
	PaymentStatus string
	Search        string
}

// ShippingUpdate carries the mutable fulfillment fields of an order.
// Nil fields are left untouched.
type ShippingUpdate struct {
	Status            *models.OrderStatus
	TrackingNumber    *string
	EstimatedDelivery *time.Time
}

// ErrRoundConflict is returned by CompareAndSetRoundStatus when the round was
// not in the expected status at write time (another writer won the race).
type ErrRoundConflict struct{}

func (ErrRoundConflict) Error() string { return "round status changed concurrently" }

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	List(filter OrderFilter) ([]models.Order, error)
	GetByID(id string) (*models.Order, error)
	Create(order *models.Order) error
	UpdateShipping(id string, update ShippingUpdate) error

	// CompareAndSetRoundStatus transitions a round from expected to next in a
	// single atomic write, recording verifiedAt and/or rejection notes.
	// Returns ErrRoundConflict when the round is no longer in expected.
	CompareAndSetRoundStatus(orderID string, round models.RoundName, expected, next models.RoundStatus, notes string, verifiedAt *time.Time) error

	// SubmitRoundDetails stores customer proof on a round currently in expected
	// status and resets the round to pending (the reopen path for a rejected
	// second round). Returns ErrRoundConflict on a lost race.
	SubmitRoundDetails(orderID string, round models.RoundName, expected models.RoundStatus, details *models.PaymentDetails) error

	Delete(id string) error
	DeleteByStatus(status models.OrderStatus) (int64, error)
}
