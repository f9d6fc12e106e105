package models

import (
	"time"

	"github.com/google/uuid"
)

// Size is a named garment size, e.g. "M" or "XL".
type Size struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name      string    `gorm:"column:name;uniqueIndex;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

// CategorySize pins the ordered set of sizes a category supports.
// Position drives display ordering in stock ledgers and pack labels.
type CategorySize struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	CategoryID uuid.UUID `gorm:"column:category_id;type:uuid;not null;uniqueIndex:idx_category_size"`
	SizeID     uuid.UUID `gorm:"column:size_id;type:uuid;not null;uniqueIndex:idx_category_size"`
	Position   int       `gorm:"column:position;not null;default:0"`

	Category *Category `gorm:"foreignKey:CategoryID"`
	Size     *Size     `gorm:"foreignKey:SizeID"`
}
