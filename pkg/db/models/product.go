package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a wholesaler listing. The SKU is assigned once at creation
// and never changes or gets reused, even after archival.
type Product struct {
	ID             uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	OwnerOrgID     uuid.UUID       `gorm:"column:owner_org_id;type:uuid;not null;index"`
	CategoryID     uuid.UUID       `gorm:"column:category_id;type:uuid;not null"`
	SKU            string          `gorm:"column:sku;uniqueIndex;not null"`
	Name           string          `gorm:"column:name;not null"`
	Description    *string         `gorm:"column:description"`
	WholesalePrice decimal.Decimal `gorm:"column:wholesale_price;type:numeric(12,2);not null"`
	RetailPrice    decimal.Decimal `gorm:"column:retail_price;type:numeric(12,2);not null"`
	IsActive       bool            `gorm:"column:is_active;not null;default:true"`

	Owner      *Organization `gorm:"foreignKey:OwnerOrgID"`
	Category   *Category     `gorm:"foreignKey:CategoryID"`
	Stocks     []SizeStock   `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	MoqOptions []MoqOption   `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
