package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/threadbazaar/threadbazaar-backend/pkg/types"
)

// MoqOption is a prepacked size assortment a retailer must buy in whole
// multiples of. Availability is never stored; it is computed against the
// live stock ledger on read.
type MoqOption struct {
	ID        uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	ProductID uuid.UUID        `gorm:"column:product_id;type:uuid;not null;index"`
	Config    types.PackConfig `gorm:"column:config;type:jsonb;not null"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
