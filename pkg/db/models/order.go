package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/threadbazaar/threadbazaar-backend/pkg/enums"
)

// Order is a single-wholesaler order carved out of a retailer checkout.
type Order struct {
	ID              uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	OrderNumber     string              `gorm:"column:order_number;uniqueIndex;not null"`
	RetailerOrgID   uuid.UUID           `gorm:"column:retailer_org_id;type:uuid;not null;index"`
	WholesalerOrgID uuid.UUID           `gorm:"column:wholesaler_org_id;type:uuid;not null;index"`
	Status          enums.OrderStatus   `gorm:"column:status;type:text;not null;default:'PENDING'"`
	PaymentMethod   enums.PaymentMethod `gorm:"column:payment_method;type:text;not null;default:'upi'"`

	Subtotal       decimal.Decimal `gorm:"column:subtotal;type:numeric(12,2);not null"`
	ShippingCharge decimal.Decimal `gorm:"column:shipping_charge;type:numeric(12,2);not null;default:0"`
	GSTAmount      decimal.Decimal `gorm:"column:gst_amount;type:numeric(12,2);not null;default:0"`
	GrandTotal     decimal.Decimal `gorm:"column:grand_total;type:numeric(12,2);not null"`

	RazorpayOrderID   *string    `gorm:"column:razorpay_order_id"`
	RazorpayPaymentID *string    `gorm:"column:razorpay_payment_id"`
	PaidAt            *time.Time `gorm:"column:paid_at"`

	Retailer   *Organization `gorm:"foreignKey:RetailerOrgID"`
	Wholesaler *Organization `gorm:"foreignKey:WholesalerOrgID"`
	Items      []OrderItem   `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Shipment   *Shipment     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Payout     *Payout       `gorm:"foreignKey:OrderID"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// PaymentStatusLabel derives the payment display string from the order
// status rather than storing free text alongside it.
func (o *Order) PaymentStatusLabel() string {
	switch o.Status {
	case enums.OrderStatusAwaitingPayment:
		return "payment due"
	case enums.OrderStatusPaid, enums.OrderStatusShipped, enums.OrderStatusDelivered:
		return "paid"
	case enums.OrderStatusCompleted:
		return "paid out"
	case enums.OrderStatusRejected, enums.OrderStatusCancelled:
		return "not collected"
	default:
		return "unpaid"
	}
}
