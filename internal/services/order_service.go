package services

import (
	"errors"
	"log"
	"strings"
	"time"

	"groupbuy/internal/models"
	"groupbuy/internal/repositories"
	"groupbuy/pkg/rabbitmq"

	"github.com/google/uuid"
)

// OrderService handles order creation, querying, fulfillment mutation and
// customer payment-proof submission.
type OrderService struct {
	orderRepo    repositories.OrderRepository
	campaignRepo repositories.CampaignRepository
	notifier     *NotificationService
	publisher    rabbitmq.Publisher
	now          func() time.Time
}

// NewOrderService creates a new OrderService.
func NewOrderService(orderRepo repositories.OrderRepository, campaignRepo repositories.CampaignRepository, notifier *NotificationService, publisher rabbitmq.Publisher) *OrderService {
	return &OrderService{
		orderRepo:    orderRepo,
		campaignRepo: campaignRepo,
		notifier:     notifier,
		publisher:    publisher,
		now:          time.Now,
	}
}

// CreateOrderRequest is the customer-facing order placement payload.
type CreateOrderRequest struct {
	UserID        string             `json:"user_id" validate:"required"`
	CustomerName  string             `json:"customer_name" validate:"required"`
	CustomerEmail string             `json:"customer_email" validate:"required,email"`
	CampaignID    string             `json:"campaign_id" validate:"required"`
	Quantity      int                `json:"quantity" validate:"required,gt=0"`
	PaymentPlan   models.PaymentPlan `json:"payment_plan" validate:"required"`
}

// CreateOrder places an order against an open campaign, reserving stock and
// building the payment rounds from the plan policy.
func (s *OrderService) CreateOrder(req CreateOrderRequest) (*models.Order, error) {
	campaign, err := s.campaignRepo.GetByID(req.CampaignID)
	if err != nil {
		return nil, NewDomainError(CodeNotFound, "campaign %s not found", req.CampaignID)
	}
	if !campaign.Open(s.now()) {
		return nil, NewDomainError(CodeValidation, "campaign %q is closed or out of stock", campaign.Title)
	}

	totalCost := campaign.Price * float64(req.Quantity)
	dueDate := campaign.ShippingDeadline
	rounds, err := BuildPaymentRounds(totalCost, campaign.AirCargoCost, req.PaymentPlan, &dueDate)
	if err != nil {
		return nil, err
	}

	if err := s.campaignRepo.AdjustStock(campaign.ID, -req.Quantity); err != nil {
		return nil, NewDomainError(CodeValidation, "could not reserve stock: %v", err)
	}

	order := &models.Order{
		ID:            uuid.New().String(),
		UserID:        req.UserID,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		CampaignID:    campaign.ID,
		CampaignTitle: campaign.Title,
		Quantity:      req.Quantity,
		TotalCost:     totalCost,
		Surcharge:     campaign.AirCargoCost,
		PaymentPlan:   req.PaymentPlan,
		Rounds:        rounds,
		Status:        models.OrderPending,
	}

	if err := s.orderRepo.Create(order); err != nil {
		// Give the reserved stock back; the order never existed.
		if restockErr := s.campaignRepo.AdjustStock(campaign.ID, req.Quantity); restockErr != nil {
			log.Printf("Failed to restock campaign %s after order create failure: %v", campaign.ID, restockErr)
		}
		return nil, NewDomainError(CodeStorageUnavailable, "failed to create order: %v", err)
	}

	event := models.OrderEvent{
		OrderID:       order.ID,
		CustomerID:    order.UserID,
		Status:        order.Status,
		CampaignTitle: order.CampaignTitle,
		Total:         order.TotalCost,
	}
	if err := s.notifier.NotifyOrderCreated(event); err != nil {
		return nil, err
	}
	s.publish(models.EventOrderCreated, event)

	return order, nil
}

// ListOrders returns orders matching the filter. Shipping status and search
// are handled by the store; paymentStatus is re-derived from round state here
// so it can never drift from the rounds themselves.
func (s *OrderService) ListOrders(filter repositories.OrderFilter) ([]models.Order, error) {
	if filter.Status != "" && !models.ValidOrderStatuses[filter.Status] {
		return nil, NewDomainError(CodeValidation, "invalid order status: %s", filter.Status)
	}

	orders, err := s.orderRepo.List(filter)
	if err != nil {
		return nil, NewDomainError(CodeStorageUnavailable, "failed to list orders: %v", err)
	}
	if filter.PaymentStatus == "" {
		return orders, nil
	}

	now := s.now()
	filtered := make([]models.Order, 0, len(orders))
	for _, o := range orders {
		if filter.PaymentStatus == models.PaymentStatusPendingSecond {
			if o.PendingSecond() {
				filtered = append(filtered, o)
			}
			continue
		}
		if string(o.OverallPaymentStatus(now)) == filter.PaymentStatus {
			filtered = append(filtered, o)
		}
	}
	return filtered, nil
}

// GetOrderByID retrieves a single order.
func (s *OrderService) GetOrderByID(id string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		if isNotFound(err) {
			return nil, NewDomainError(CodeNotFound, "order %s not found", id)
		}
		return nil, NewDomainError(CodeStorageUnavailable, "failed to get order %s: %v", id, err)
	}
	return order, nil
}

// ShippingRequest carries the admin fulfillment mutation.
type ShippingRequest struct {
	Status            *models.OrderStatus `json:"status,omitempty"`
	TrackingNumber    *string             `json:"tracking_number,omitempty"`
	EstimatedDelivery *time.Time          `json:"estimated_delivery,omitempty"`
}

// UpdateShipping applies a shipping-status or tracking change. Any status may
// move to any other status so an admin can correct mistakes; transitions into
// cancelled or delivered do not notify the customer, every other status
// change does. Payment rounds are never touched here.
func (s *OrderService) UpdateShipping(id string, req ShippingRequest) (*models.Order, error) {
	if req.Status == nil && req.TrackingNumber == nil && req.EstimatedDelivery == nil {
		return nil, NewDomainError(CodeValidation, "nothing to update")
	}
	if req.Status != nil && !models.ValidOrderStatuses[*req.Status] {
		return nil, NewDomainError(CodeValidation, "invalid order status: %s", *req.Status)
	}

	update := repositories.ShippingUpdate{
		Status:            req.Status,
		TrackingNumber:    req.TrackingNumber,
		EstimatedDelivery: req.EstimatedDelivery,
	}
	if err := s.orderRepo.UpdateShipping(id, update); err != nil {
		if isNotFound(err) {
			return nil, NewDomainError(CodeNotFound, "order %s not found", id)
		}
		return nil, NewDomainError(CodeStorageUnavailable, "failed to update order %s: %v", id, err)
	}

	order, err := s.GetOrderByID(id)
	if err != nil {
		return nil, err
	}

	if req.Status != nil {
		event := models.OrderEvent{
			OrderID:       order.ID,
			CustomerID:    order.UserID,
			Status:        order.Status,
			CampaignTitle: order.CampaignTitle,
			Total:         order.TotalCost,
		}
		if *req.Status != models.OrderCancelled && *req.Status != models.OrderDelivered {
			if err := s.notifier.NotifyOrderStatus(event); err != nil {
				return nil, err
			}
		}
		s.publish(models.EventOrderStatus, event)
	}

	return order, nil
}

// SubmitRoundProof stores a customer's payment proof on a pending round. A
// rejected second payment may be resubmitted, which reopens it to pending;
// first-round decisions are final and cannot be resubmitted over.
func (s *OrderService) SubmitRoundProof(orderID string, roundName models.RoundName, details models.PaymentDetails) (*models.Order, error) {
	order, err := s.GetOrderByID(orderID)
	if err != nil {
		return nil, err
	}

	round := order.Round(roundName)
	if round == nil {
		return nil, NewDomainError(CodeRoundNotFound, "order %s has no %s round under the %s plan", orderID, roundName, order.PaymentPlan)
	}

	expected := models.RoundPending
	switch round.Status {
	case models.RoundPending:
	case models.RoundRejected:
		if roundName != models.RoundSecond {
			return nil, NewDomainError(CodeTerminalState, "%s of order %s was already %s", roundName, orderID, round.Status)
		}
		expected = models.RoundRejected
	default:
		return nil, NewDomainError(CodeTerminalState, "%s of order %s was already %s", roundName, orderID, round.Status)
	}

	now := s.now()
	details.SubmittedAt = &now
	if err := s.orderRepo.SubmitRoundDetails(orderID, roundName, expected, &details); err != nil {
		var conflict repositories.ErrRoundConflict
		if errors.As(err, &conflict) {
			return nil, NewDomainError(CodeConcurrencyConflict, "%s of order %s changed concurrently", roundName, orderID)
		}
		return nil, NewDomainError(CodeStorageUnavailable, "failed to submit proof for order %s: %v", orderID, err)
	}

	event := models.PaymentEvent{
		OrderID:       orderID,
		Round:         roundName,
		Amount:        round.Amount,
		CustomerID:    order.UserID,
		CampaignTitle: order.CampaignTitle,
	}
	if err := s.notifier.NotifyPaymentSubmitted(event); err != nil {
		return nil, err
	}
	s.publish(models.EventPaymentSubmitted, event)

	return s.GetOrderByID(orderID)
}

// DeleteOrder removes a single order. Rounds go with it; stock is not
// returned, deletion is an administrative purge, not a cancellation.
func (s *OrderService) DeleteOrder(id string) error {
	if err := s.orderRepo.Delete(id); err != nil {
		if isNotFound(err) {
			return NewDomainError(CodeNotFound, "order %s not found", id)
		}
		return NewDomainError(CodeStorageUnavailable, "failed to delete order %s: %v", id, err)
	}
	return nil
}

// BulkDeleteOrders removes every order in the given status and reports the
// count. An empty status deletes nothing; a full purge must name each status.
func (s *OrderService) BulkDeleteOrders(status models.OrderStatus) (int64, error) {
	if status == "" {
		return 0, nil
	}
	if !models.ValidOrderStatuses[status] {
		return 0, NewDomainError(CodeValidation, "invalid order status: %s", status)
	}
	count, err := s.orderRepo.DeleteByStatus(status)
	if err != nil {
		return 0, NewDomainError(CodeStorageUnavailable, "failed to bulk delete orders: %v", err)
	}
	return count, nil
}

func (s *OrderService) publish(routingKey string, event interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(routingKey, event); err != nil {
		log.Printf("Warning: failed to publish %s event: %v", routingKey, err)
	}
}

func isNotFound(err error) bool {
	return err != nil && strings.Contains(err.Error(), "not found")
}
