package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/threadbazaar/threadbazaar-backend/pkg/types"
)

// OrderItem is a frozen line of an order. Product name, SKU and unit
// price are snapshots taken at checkout so later edits to the listing
// never rewrite history.
type OrderItem struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	OrderID   uuid.UUID `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null"`

	ProductName string          `gorm:"column:product_name;not null"`
	SKU         string          `gorm:"column:sku;not null"`
	UnitPrice   decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	Quantity    int             `gorm:"column:quantity;not null"`
	LineTotal   decimal.Decimal `gorm:"column:line_total;type:numeric(12,2);not null"`

	// Pack breakdown for MOQ lines. Nil for plain quantity lines.
	PackLabel   *string          `gorm:"column:pack_label"`
	NumPacks    int              `gorm:"column:num_packs;not null;default:0"`
	PackDetails types.PackConfig `gorm:"column:pack_details;type:jsonb"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
