package repositories

import (
	"fmt"
	"strings"
	"time"

	"groupbuy/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMOrderRepository is a GORM implementation of OrderRepository. Payment
// rounds are normalized into their own table keyed by (order_id, name); the
// conditional UPDATE on the round's current status provides the optimistic
// concurrency guarantee for verification.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{
		db: db,
	}
}

// List retrieves orders matching the store-level filter fields, rounds included.
func (r *GORMOrderRepository) List(filter OrderFilter) ([]models.Order, error) {
	query := r.db.Preload("Rounds")
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		term := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where(
			"lower(id) LIKE ? OR lower(customer_name) LIKE ? OR lower(customer_email) LIKE ? OR lower(campaign_title) LIKE ?",
			"%"+strings.ToLower(filter.Search), term, term, term,
		)
	}

	var orders []models.Order
	if err := query.Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// GetByID retrieves a single order with its rounds.
func (r *GORMOrderRepository) GetByID(id string) (*models.Order, error) {
	var order models.Order
	if err := r.db.Preload("Rounds").First(&order, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("order with ID %s not found", id)
		}
		return nil, fmt.Errorf("failed to get order by ID %s: %w", id, err)
	}
	return &order, nil
}

// Create creates a new order together with its payment rounds.
func (r *GORMOrderRepository) Create(order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	for i := range order.Rounds {
		order.Rounds[i].OrderID = order.ID
	}
	if err := r.db.Create(order).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

// UpdateShipping applies the non-nil fulfillment fields to an order.
func (r *GORMOrderRepository) UpdateShipping(id string, update ShippingUpdate) error {
	columns := map[string]interface{}{}
	if update.Status != nil {
		columns["status"] = *update.Status
	}
	if update.TrackingNumber != nil {
		columns["tracking_number"] = *update.TrackingNumber
	}
	if update.EstimatedDelivery != nil {
		columns["estimated_delivery"] = *update.EstimatedDelivery
	}
	if len(columns) == 0 {
		return nil
	}

	res := r.db.Model(&models.Order{}).Where("id = ?", id).Updates(columns)
	if res.Error != nil {
		return fmt.Errorf("failed to update shipping for order %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("order with ID %s not found for shipping update", id)
	}
	return nil
}

// CompareAndSetRoundStatus transitions a round with a conditional UPDATE on
// its current status. Zero rows affected means another writer got there first.
func (r *GORMOrderRepository) CompareAndSetRoundStatus(orderID string, round models.RoundName, expected, next models.RoundStatus, notes string, verifiedAt *time.Time) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var existing models.PaymentRound
		if err := tx.First(&existing, "order_id = ? AND name = ?", orderID, round).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("order %s has no round %s", orderID, round)
			}
			return fmt.Errorf("failed to load round %s of order %s: %w", round, orderID, err)
		}

		details := existing.Details
		if notes != "" {
			if details == nil {
				details = &models.PaymentDetails{}
			}
			details.Notes = notes
		}

		// Struct update with an explicit Select: map values skip the JSON
		// serializer on the details column, struct fields go through it.
		res := tx.Model(&models.PaymentRound{}).
			Where("order_id = ? AND name = ? AND status = ?", orderID, round, expected).
			Select("status", "verified_at", "details").
			Updates(models.PaymentRound{Status: next, VerifiedAt: verifiedAt, Details: details})
		if res.Error != nil {
			return fmt.Errorf("failed to update round %s of order %s: %w", round, orderID, res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrRoundConflict{}
		}
		return nil
	})
}

// SubmitRoundDetails stores customer proof and resets the round to pending,
// guarded by the same conditional-UPDATE discipline as verification.
func (r *GORMOrderRepository) SubmitRoundDetails(orderID string, round models.RoundName, expected models.RoundStatus, details *models.PaymentDetails) error {
	res := r.db.Model(&models.PaymentRound{}).
		Where("order_id = ? AND name = ? AND status = ?", orderID, round, expected).
		Select("status", "verified_at", "details").
		Updates(models.PaymentRound{Status: models.RoundPending, VerifiedAt: nil, Details: details})
	if res.Error != nil {
		return fmt.Errorf("failed to submit details for round %s of order %s: %w", round, orderID, res.Error)
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := r.db.Model(&models.PaymentRound{}).
			Where("order_id = ? AND name = ?", orderID, round).Count(&count).Error; err == nil && count == 0 {
			return fmt.Errorf("order %s has no round %s", orderID, round)
		}
		return ErrRoundConflict{}
	}
	return nil
}

// Delete removes an order and, via the FK constraint, its rounds.
func (r *GORMOrderRepository) Delete(id string) error {
	res := r.db.Delete(&models.Order{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete order: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("order with ID %s not found for deletion", id)
	}
	// SQLite in tests does not always enforce the cascade.
	r.db.Delete(&models.PaymentRound{}, "order_id = ?", id)
	return nil
}

// DeleteByStatus removes every order in the given status, returning the count.
func (r *GORMOrderRepository) DeleteByStatus(status models.OrderStatus) (int64, error) {
	var ids []string
	if err := r.db.Model(&models.Order{}).Where("status = ?", status).Pluck("id", &ids).Error; err != nil {
		return 0, fmt.Errorf("failed to find orders with status %s: %w", status, err)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	res := r.db.Delete(&models.Order{}, "id IN ?", ids)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to bulk delete orders: %w", res.Error)
	}
	r.db.Delete(&models.PaymentRound{}, "order_id IN ?", ids)
	return res.RowsAffected, nil
}
