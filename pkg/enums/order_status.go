package enums

import (
	"fmt"
	"strings"
)

// OrderStatus tracks an order through the escrow lifecycle.
type OrderStatus string

const (
	OrderStatusPending         OrderStatus = "PENDING"
	OrderStatusRejected        OrderStatus = "REJECTED"
	OrderStatusAwaitingPayment OrderStatus = "AWAITING_PAYMENT"
	OrderStatusPaid            OrderStatus = "PAID"
	OrderStatusShipped         OrderStatus = "SHIPPED"
	OrderStatusDelivered       OrderStatus = "DELIVERED"
	OrderStatusCompleted       OrderStatus = "COMPLETED"
	OrderStatusCancelled       OrderStatus = "CANCELLED"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusRejected,
	OrderStatusAwaitingPayment,
	OrderStatusPaid,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCompleted,
	OrderStatusCancelled,
}

// String implements fmt.Stringer.
func (s OrderStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known OrderStatus.
func (s OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are expected from s.
func (s OrderStatus) IsTerminal() bool {
	switch s {
	case OrderStatusRejected, OrderStatusCompleted, OrderStatusCancelled:
		return true
	default:
		return false
	}
}

// PaymentLabel derives the human payment label shown in order tables.
// It replaces the free-text payment_status column the legacy app carried
// alongside the status enum, so the two can never disagree.
func (s OrderStatus) PaymentLabel() string {
	switch s {
	case OrderStatusPaid, OrderStatusShipped, OrderStatusDelivered:
		return "Paid (In Escrow)"
	case OrderStatusCompleted:
		return "Released"
	case OrderStatusCancelled, OrderStatusRejected:
		return "Cancelled"
	default:
		return "Unpaid"
	}
}

// ParseOrderStatus converts raw input into an OrderStatus. Matching is
// case-insensitive since the status-update entry point accepts either form.
func ParseOrderStatus(value string) (OrderStatus, error) {
	normalized := strings.ToUpper(strings.TrimSpace(value))
	for _, candidate := range validOrderStatuses {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}
