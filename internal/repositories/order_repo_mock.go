package repositories

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"groupbuy/internal/models"

	"github.com/google/uuid"
)

// MockOrderRepository is an in-memory implementation of OrderRepository.
// The compare-and-set operations re-check the round status under the write
// lock, so it honors the same race semantics as the SQL implementation.
type MockOrderRepository struct {
	orders map[string]models.Order
	mu     sync.RWMutex
}

// NewMockOrderRepository creates a new instance of MockOrderRepository.
func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{
		orders: make(map[string]models.Order),
	}
}

// List returns all orders matching the store-level filter fields.
func (r *MockOrderRepository) List(filter OrderFilter) ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	orderList := make([]models.Order, 0, len(r.orders))
	for _, order := range r.orders {
		if filter.Status != "" && order.Status != filter.Status {
			continue
		}
		if filter.Search != "" && !matchesSearch(&order, filter.Search) {
			continue
		}
		orderList = append(orderList, cloneOrder(order))
	}
	return orderList, nil
}

func matchesSearch(o *models.Order, term string) bool {
	term = strings.ToLower(term)
	return strings.HasSuffix(strings.ToLower(o.ID), term) ||
		strings.Contains(strings.ToLower(o.CustomerName), term) ||
		strings.Contains(strings.ToLower(o.CustomerEmail), term) ||
		strings.Contains(strings.ToLower(o.CampaignTitle), term)
}

// GetByID returns an order by its ID.
func (r *MockOrderRepository) GetByID(id string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, fmt.Errorf("order with ID %s not found", id)
	}
	copied := cloneOrder(order)
	return &copied, nil
}

// Create adds a new order.
func (r *MockOrderRepository) Create(order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	order.CreatedAt = time.Now()
	order.UpdatedAt = time.Now()
	r.orders[order.ID] = cloneOrder(*order)
	return nil
}

// UpdateShipping applies the non-nil fulfillment fields to an order.
func (r *MockOrderRepository) UpdateShipping(id string, update ShippingUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return fmt.Errorf("order with ID %s not found for shipping update", id)
	}
	if update.Status != nil {
		order.Status = *update.Status
	}
	if update.TrackingNumber != nil {
		order.TrackingNumber = *update.TrackingNumber
	}
	if update.EstimatedDelivery != nil {
		order.EstimatedDelivery = update.EstimatedDelivery
	}
	order.UpdatedAt = time.Now()
	r.orders[id] = order
	return nil
}

// CompareAndSetRoundStatus transitions a round only if it is still in the
// expected status, mirroring the SQL conditional UPDATE.
func (r *MockOrderRepository) CompareAndSetRoundStatus(orderID string, roundName models.RoundName, expected, next models.RoundStatus, notes string, verifiedAt *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[orderID]
	if !ok {
		return fmt.Errorf("order with ID %s not found", orderID)
	}
	round := order.Round(roundName)
	if round == nil {
		return fmt.Errorf("order %s has no round %s", orderID, roundName)
	}
	if round.Status != expected {
		return ErrRoundConflict{}
	}

	round.Status = next
	round.VerifiedAt = verifiedAt
	if notes != "" {
		if round.Details == nil {
			round.Details = &models.PaymentDetails{}
		}
		round.Details.Notes = notes
	}
	order.UpdatedAt = time.Now()
	r.orders[orderID] = order
	return nil
}

// SubmitRoundDetails stores proof and resets the round to pending, only if
// the round is still in the expected status.
func (r *MockOrderRepository) SubmitRoundDetails(orderID string, roundName models.RoundName, expected models.RoundStatus, details *models.PaymentDetails) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[orderID]
	if !ok {
		return fmt.Errorf("order with ID %s not found", orderID)
	}
	round := order.Round(roundName)
	if round == nil {
		return fmt.Errorf("order %s has no round %s", orderID, roundName)
	}
	if round.Status != expected {
		return ErrRoundConflict{}
	}

	round.Details = details
	round.Status = models.RoundPending
	round.VerifiedAt = nil
	order.UpdatedAt = time.Now()
	r.orders[orderID] = order
	return nil
}

// Delete removes an order.
func (r *MockOrderRepository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.orders[id]; !ok {
		return fmt.Errorf("order with ID %s not found for deletion", id)
	}
	delete(r.orders, id)
	return nil
}

// DeleteByStatus removes every order in the given status, returning the count.
func (r *MockOrderRepository) DeleteByStatus(status models.OrderStatus) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var deleted int64
	for id, order := range r.orders {
		if order.Status == status {
			delete(r.orders, id)
			deleted++
		}
	}
	return deleted, nil
}

// cloneOrder deep-copies the rounds slice so callers cannot mutate stored
// state through returned pointers.
func cloneOrder(o models.Order) models.Order {
	rounds := make([]models.PaymentRound, len(o.Rounds))
	copy(rounds, o.Rounds)
	for i := range rounds {
		if rounds[i].Details != nil {
			d := *rounds[i].Details
			rounds[i].Details = &d
		}
	}
	o.Rounds = rounds
	return o
}
