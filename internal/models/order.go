package models

import "time"

// PaymentPlan selects how an order's total is split into payment rounds.
type PaymentPlan string

const (
	PlanFull        PaymentPlan = "full"
	PlanInstallment PaymentPlan = "installment"
)

// RoundName identifies one payment round within an order.
type RoundName string

const (
	RoundFirst  RoundName = "firstPayment"
	RoundSecond RoundName = "secondPayment"
)

// RoundStatus is the verification state of a single payment round.
type RoundStatus string

const (
	RoundPending  RoundStatus = "pending"
	RoundVerified RoundStatus = "verified"
	RoundRejected RoundStatus = "rejected"
)

// PaymentStatus is the overall payment status derived from round states.
// It is never stored; see Order.OverallPaymentStatus.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentPartial   PaymentStatus = "partial"
	PaymentCompleted PaymentStatus = "completed"
	PaymentRejected  PaymentStatus = "rejected"
	PaymentOverdue   PaymentStatus = "overdue"
)

// PaymentStatusPendingSecond is a derived list-filter value, not a stored status:
// installment orders whose second round has submitted proof awaiting admin action.
const PaymentStatusPendingSecond = "pending-second"

// OrderStatus is the shipping lifecycle status of an order.
type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderConfirmed  OrderStatus = "confirmed"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

// ValidOrderStatuses enumerates every accepted shipping status.
var ValidOrderStatuses = map[OrderStatus]bool{
	OrderPending:    true,
	OrderProcessing: true,
	OrderConfirmed:  true,
	OrderShipped:    true,
	OrderDelivered:  true,
	OrderCancelled:  true,
}

// PaymentDetails is the proof a customer submits for one round.
// A round with nil details has nothing to verify yet.
type PaymentDetails struct {
	SenderName    string     `json:"sender_name" validate:"required"`
	PaymentMethod string     `json:"payment_method" validate:"required"`
	TransactionID string     `json:"transaction_id" validate:"required"`
	PaymentDate   time.Time  `json:"payment_date" validate:"required"`
	ScreenshotRef string     `json:"screenshot_ref" validate:"required"`
	Notes         string     `json:"notes,omitempty"`
	SubmittedAt   *time.Time `json:"submitted_at,omitempty"`
}

// PaymentRound is one expected payment within an order's plan.
// Amount and DueDate are fixed at round creation and never re-priced.
type PaymentRound struct {
	ID         uint            `json:"-" gorm:"primaryKey"`
	OrderID    string          `json:"-" gorm:"index:idx_round_order_name,unique;type:varchar(36)"`
	Name       RoundName       `json:"name" gorm:"index:idx_round_order_name,unique;type:varchar(20)"`
	Amount     float64         `json:"amount"`
	Status     RoundStatus     `json:"status" gorm:"type:varchar(10);index"`
	DueDate    *time.Time      `json:"due_date,omitempty" gorm:"index"`
	Details    *PaymentDetails `json:"payment_details,omitempty" gorm:"serializer:json"`
	VerifiedAt *time.Time      `json:"verified_at,omitempty"`
}

// Terminal reports whether no further transition is permitted out of the
// round's current status. First-round decisions are final; a rejected second
// round can be reopened by a fresh customer submission.
func (r *PaymentRound) Terminal() bool {
	switch r.Name {
	case RoundFirst:
		return r.Status == RoundVerified || r.Status == RoundRejected
	case RoundSecond:
		return r.Status == RoundVerified
	}
	return false
}

// Order is a customer's purchase within a campaign, owning its payment rounds.
type Order struct {
	ID                string         `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID            string         `json:"user_id" gorm:"index;type:varchar(36)"`
	CustomerName      string         `json:"customer_name" gorm:"type:varchar(100)"`
	CustomerEmail     string         `json:"customer_email" gorm:"type:varchar(255)"`
	CampaignID        string         `json:"campaign_id" gorm:"index;type:varchar(36)"`
	CampaignTitle     string         `json:"campaign_title" gorm:"type:varchar(200)"`
	Quantity          int            `json:"quantity"`
	TotalCost         float64        `json:"total_cost"`
	Surcharge         float64        `json:"surcharge"`
	PaymentPlan       PaymentPlan    `json:"payment_plan" gorm:"type:varchar(15)"`
	Rounds            []PaymentRound `json:"rounds" gorm:"foreignKey:OrderID;references:ID;constraint:OnDelete:CASCADE"`
	Status            OrderStatus    `json:"status" gorm:"type:varchar(15);index"`
	TrackingNumber    string         `json:"tracking_number,omitempty" gorm:"type:varchar(100)"`
	EstimatedDelivery *time.Time     `json:"estimated_delivery,omitempty"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

// Round returns the order's round with the given name, or nil if the plan
// does not include it.
func (o *Order) Round(name RoundName) *PaymentRound {
	for i := range o.Rounds {
		if o.Rounds[i].Name == name {
			return &o.Rounds[i]
		}
	}
	return nil
}

// OverallPaymentStatus derives the aggregate payment status from round state.
// Under the full plan it mirrors the single round; under installment it is
// completed when both rounds are verified and partial once the first is.
// An unpaid round past its due date reads as overdue. This is the only place
// the aggregate is computed; it is never stored alongside the rounds.
func (o *Order) OverallPaymentStatus(now time.Time) PaymentStatus {
	first := o.Round(RoundFirst)
	if first == nil {
		return PaymentPending
	}

	if o.PaymentPlan == PlanFull {
		switch first.Status {
		case RoundVerified:
			return PaymentCompleted
		case RoundRejected:
			return PaymentRejected
		}
		if overdue(first, now) {
			return PaymentOverdue
		}
		return PaymentPending
	}

	second := o.Round(RoundSecond)
	switch {
	case first.Status == RoundVerified && second != nil && second.Status == RoundVerified:
		return PaymentCompleted
	case first.Status == RoundVerified:
		if second != nil && overdue(second, now) {
			return PaymentOverdue
		}
		return PaymentPartial
	case first.Status == RoundRejected:
		return PaymentRejected
	default:
		if overdue(first, now) {
			return PaymentOverdue
		}
		return PaymentPending
	}
}

// PendingSecond reports whether the order sits in the admin's actionable
// second-round queue: first verified, second pending with proof submitted.
func (o *Order) PendingSecond() bool {
	if o.PaymentPlan != PlanInstallment {
		return false
	}
	first := o.Round(RoundFirst)
	second := o.Round(RoundSecond)
	return first != nil && first.Status == RoundVerified &&
		second != nil && second.Status == RoundPending && second.Details != nil
}

func overdue(r *PaymentRound, now time.Time) bool {
	return r.Status == RoundPending && r.DueDate != nil && r.DueDate.Before(now)
}
