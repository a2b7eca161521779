package models

import (
	"time"
)

type OrderStatus string

const (
	OrderPending         OrderStatus = "pending"
	OrderAwaitingPayment OrderStatus = "awaiting_payment"
	OrderPaid            OrderStatus = "paid"
	OrderPaymentFailed   OrderStatus = "payment_failed"
	OrderShipped         OrderStatus = "shipped"
	OrderDelivered       OrderStatus = "delivered"
	OrderCancelled       OrderStatus = "cancelled"
)

// validTransitions is the authoritative order state machine. Requesting a
// payment intent moves pending to awaiting_payment, webhook events settle
// awaiting_payment, fulfilment staff advance paid orders, and cancellation
// is allowed from any state before shipped.
var validTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:         {OrderAwaitingPayment, OrderCancelled},
	OrderAwaitingPayment: {OrderPaid, OrderPaymentFailed, OrderCancelled},
	OrderPaid:            {OrderShipped, OrderCancelled},
	OrderShipped:         {OrderDelivered},
}

func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	for _, next := range validTransitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

func (s OrderStatus) IsTerminal() bool {
	return len(validTransitions[s]) == 0
}

func IsValidStatus(s string) bool {
	switch OrderStatus(s) {
	case OrderPending, OrderAwaitingPayment, OrderPaid, OrderPaymentFailed,
		OrderShipped, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

type Order struct {
	ID              uint        `json:"id" gorm:"primaryKey"`
	UserID          uint        `json:"user_id" gorm:"not null;index"`
	Status          OrderStatus `json:"status" gorm:"not null;default:'pending'"`
	Subtotal        float64     `json:"subtotal" gorm:"not null"`
	DeliveryFee     float64     `json:"delivery_fee" gorm:"not null"`
	TotalAmount     float64     `json:"total_amount" gorm:"not null"`
	RecipientName   string      `json:"recipient_name" gorm:"not null"`
	RecipientPhone  string      `json:"recipient_phone" gorm:"not null"`
	Address         string      `json:"address" gorm:"type:text;not null"`
	AreaCode        string      `json:"area_code" gorm:"not null"`
	Instructions    string      `json:"instructions" gorm:"type:text"`
	DeliveryOption  string      `json:"delivery_option"`
	TrackingNumber  *string     `json:"tracking_number" gorm:"uniqueIndex"`
	PaymentIntentID *string     `json:"payment_intent_id" gorm:"index"`
	Items           []OrderItem `json:"items" gorm:"foreignKey:OrderID"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}
