package models

import (
	"time"

	"github.com/google/uuid"
)

// Category is a product classification, e.g. "Shirts".
type Category struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name      string    `gorm:"column:name;uniqueIndex;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
