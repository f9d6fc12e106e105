package catalog

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/threadbazaar/threadbazaar-backend/internal/inventory"
	"github.com/threadbazaar/threadbazaar-backend/pkg/db/models"
	"github.com/threadbazaar/threadbazaar-backend/pkg/types"
)

// CreateProductInput carries a new listing's fields.
type CreateProductInput struct {
	CategoryID     uuid.UUID
	Name           string
	Description    *string
	WholesalePrice decimal.Decimal
	RetailPrice    decimal.Decimal
}

// UpdateProductInput carries editable listing fields. The SKU is not
// among them.
type UpdateProductInput struct {
	Name           *string
	Description    *string
	WholesalePrice *decimal.Decimal
	RetailPrice    *decimal.Decimal
	IsActive       *bool
}

// StockIntake is one received lot: per-size quantities plus an
// optional batch reference.
type StockIntake struct {
	Quantities map[uuid.UUID]int
	BatchRef   *string
}

// PackOption is one fulfillable MOQ pack exposed to retailers.
type PackOption struct {
	ID            uuid.UUID        `json:"id"`
	Label         string           `json:"label"`
	TotalQuantity int              `json:"total_quantity"`
	Ratio         types.PackConfig `json:"ratio"`
}

// ProductDetail is the vendor/read view of one listing.
type ProductDetail struct {
	Product        *models.Product              `json:"product"`
	Stock          []inventory.SizeAvailability `json:"stock"`
	AvailablePacks []PackOption                 `json:"available_packs"`
}
