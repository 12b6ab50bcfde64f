package models

// Event routing keys published to the payment event queue.
const (
	EventPaymentVerified  = "payment.verified"
	EventPaymentRejected  = "payment.rejected"
	EventPaymentSubmitted = "payment.submitted"
	EventOrderCreated     = "order.created"
	EventOrderStatus      = "order.status_changed"
)

// PaymentEvent is emitted by the verification engine after a round decision
// and by the submission path when a customer files proof.
type PaymentEvent struct {
	OrderID       string      `json:"order_id"`
	Round         RoundName   `json:"round"`
	Decision      RoundStatus `json:"decision"`
	Notes         string      `json:"notes,omitempty"`
	Amount        float64     `json:"amount"`
	CustomerID    string      `json:"customer_id"`
	CampaignTitle string      `json:"campaign_title"`
}

// OrderEvent is emitted when an order is created or its shipping status changes.
type OrderEvent struct {
	OrderID       string      `json:"order_id"`
	CustomerID    string      `json:"customer_id"`
	Status        OrderStatus `json:"status"`
	CampaignTitle string      `json:"campaign_title"`
	Total         float64     `json:"total"`
}
