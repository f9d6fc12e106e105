package models

import (
	"time"

	"github.com/google/uuid"
)

// Shipment records dispatch details for an order. One per order.
type Shipment struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	OrderID        uuid.UUID `gorm:"column:order_id;type:uuid;uniqueIndex;not null"`
	Courier        string    `gorm:"column:courier;not null"`
	TrackingNumber string    `gorm:"column:tracking_number;not null"`
	DocumentRef    *string   `gorm:"column:document_ref"`
	ShippedAt      time.Time `gorm:"column:shipped_at;not null"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
