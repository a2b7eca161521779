package models

import (
	"testing"
)

func TestOrderStatusTransitions(t *testing.T) {
	tests := []struct {
		from    OrderStatus
		to      OrderStatus
		allowed bool
	}{
		{OrderPending, OrderAwaitingPayment, true},
		{OrderPending, OrderCancelled, true},
		{OrderPending, OrderShipped, false},
		{OrderPending, OrderPaid, false},
		{OrderAwaitingPayment, OrderPaid, true},
		{OrderAwaitingPayment, OrderPaymentFailed, true},
		{OrderAwaitingPayment, OrderCancelled, true},
		{OrderAwaitingPayment, OrderShipped, false},
		{OrderPaid, OrderShipped, true},
		{OrderPaid, OrderCancelled, true},
		{OrderPaid, OrderDelivered, false},
		{OrderShipped, OrderDelivered, true},
		{OrderShipped, OrderCancelled, false},
		{OrderDelivered, OrderCancelled, false},
		{OrderCancelled, OrderPending, false},
		{OrderPaymentFailed, OrderPaid, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"_to_"+string(tt.to), func(t *testing.T) {
			if got := tt.from.CanTransitionTo(tt.to); got != tt.allowed {
				t.Errorf("CanTransitionTo(%s -> %s) = %v, want %v", tt.from, tt.to, got, tt.allowed)
			}
		})
	}
}

func TestTerminalStatuses(t *testing.T) {
	terminal := []OrderStatus{OrderDelivered, OrderCancelled, OrderPaymentFailed}
	for _, s := range terminal {
		if !s.IsTerminal() {
			t.Errorf("expected %s to be terminal", s)
		}
	}

	open := []OrderStatus{OrderPending, OrderAwaitingPayment, OrderPaid, OrderShipped}
	for _, s := range open {
		if s.IsTerminal() {
			t.Errorf("expected %s not to be terminal", s)
		}
	}
}

func TestOrderItemLineTotal(t *testing.T) {
	item := OrderItem{Quantity: 3, UnitPrice: 1200, Surcharge: 200}
	if got := item.LineTotal(); got != 4200 {
		t.Errorf("LineTotal() = %v, want 4200", got)
	}
}
