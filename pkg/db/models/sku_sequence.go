package models

// SkuSequence is a monotonic counter per owner and category prefix pair.
// Counting rows would recycle numbers after archival, so the high-water
// mark lives here instead.
type SkuSequence struct {
	OwnerPrefix    string `gorm:"column:owner_prefix;primaryKey"`
	CategoryPrefix string `gorm:"column:category_prefix;primaryKey"`
	NextSeq        int    `gorm:"column:next_seq;not null;default:1"`
}

func (SkuSequence) TableName() string {
	return "sku_sequences"
}
