// Package inventory is the authoritative source of per-size stock
// availability and the sole mutator of stock quantities.
package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/threadbazaar/threadbazaar-backend/pkg/types"
)

// SizeAvailability is the aggregate quantity for one size of a product.
type SizeAvailability struct {
	SizeID   uuid.UUID `json:"size_id"`
	SizeName string    `json:"size_name"`
	Quantity int       `json:"quantity"`
}

// Repository reads and aggregates the stock ledger.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	AggregateStock(ctx context.Context, productID uuid.UUID) ([]SizeAvailability, error)
	CanFulfill(ctx context.Context, productID uuid.UUID, cfg types.PackConfig) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds the ledger repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// AggregateStock sums batch rows per size. Sizes come back in the
// category's display order, then by name for sizes the category does
// not pin.
func (r *repository) AggregateStock(ctx context.Context, productID uuid.UUID) ([]SizeAvailability, error) {
	if productID == uuid.Nil {
		return nil, fmt.Errorf("product id required")
	}

	var rows []SizeAvailability
	err := r.db.WithContext(ctx).
		Table("size_stocks").
		Select("size_stocks.size_id AS size_id, sizes.name AS size_name, SUM(size_stocks.quantity) AS quantity").
		Joins("JOIN sizes ON sizes.id = size_stocks.size_id").
		Joins("JOIN products ON products.id = size_stocks.product_id").
		Joins("LEFT JOIN category_sizes ON category_sizes.category_id = products.category_id AND category_sizes.size_id = size_stocks.size_id").
		Where("size_stocks.product_id = ?", productID).
		Group("size_stocks.size_id, sizes.name, category_sizes.position").
		Order("COALESCE(category_sizes.position, 2147483647), sizes.name").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("aggregating stock: %w", err)
	}
	return rows, nil
}

// CanFulfill reports whether one whole pack can be cut from current
// stock: every size in the configuration must have at least its
// per-pack count available.
func (r *repository) CanFulfill(ctx context.Context, productID uuid.UUID, cfg types.PackConfig) (bool, error) {
	if cfg.IsEmpty() {
		return false, nil
	}

	rows, err := r.AggregateStock(ctx, productID)
	if err != nil {
		return false, err
	}

	available := make(map[string]int, len(rows))
	for _, row := range rows {
		available[row.SizeName] = row.Quantity
	}

	for size, count := range cfg {
		if count <= 0 {
			continue
		}
		if available[size] < count {
			return false, nil
		}
	}
	return true, nil
}
