package models

import (
	"time"

	"github.com/google/uuid"
)

// SizeStock is one received batch of a single size. A product can carry
// several rows per size; quantities stay >= 1 and rows are deleted when
// they hit zero.
type SizeStock struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null;index"`
	SizeID    uuid.UUID `gorm:"column:size_id;type:uuid;not null;index"`
	Quantity  int       `gorm:"column:quantity;not null"`
	BatchRef  *string   `gorm:"column:batch_ref"`

	Size *Size `gorm:"foreignKey:SizeID"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
