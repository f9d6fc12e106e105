package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payout records a completed escrow release to a wholesaler.
type Payout struct {
	ID              uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	OrderID         uuid.UUID `gorm:"column:order_id;type:uuid;uniqueIndex;not null"`
	WholesalerOrgID uuid.UUID `gorm:"column:wholesaler_org_id;type:uuid;not null;index"`

	GrossAmount decimal.Decimal `gorm:"column:gross_amount;type:numeric(12,2);not null"`
	Commission  decimal.Decimal `gorm:"column:commission;type:numeric(12,2);not null"`
	NetAmount   decimal.Decimal `gorm:"column:net_amount;type:numeric(12,2);not null"`

	TransferID string    `gorm:"column:transfer_id;not null"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}
