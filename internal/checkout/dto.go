package checkout

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/threadbazaar/threadbazaar-backend/pkg/enums"
)

// CartLine is one cart entry handed to checkout. UnitPrice is the
// price quoted to the retailer when the line was added; it is copied
// onto the order item untouched. PackLabel, when set, names the MOQ
// pack the quantity was built from and drives per-size deduction.
type CartLine struct {
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	PackLabel *string         `json:"pack_label,omitempty"`
}

// Input is the full checkout request.
type Input struct {
	RetailerOrgID uuid.UUID
	PaymentMethod enums.PaymentMethod
	Lines         []CartLine
}
