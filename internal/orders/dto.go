package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/threadbazaar/threadbazaar-backend/pkg/db/models"
	"github.com/threadbazaar/threadbazaar-backend/pkg/enums"
)

// Actor is the authenticated identity attempting an order operation.
type Actor struct {
	UserID  uuid.UUID
	OrgID   uuid.UUID
	OrgType enums.OrgType
	Role    enums.Role
}

// IsAdmin reports whether the actor carries the administrative role.
func (a Actor) IsAdmin() bool {
	return a.Role == enums.RoleAdmin
}

// ShippingCharges carries the wholesaler's quoted shipping and GST for
// a pending order.
type ShippingCharges struct {
	ShippingCharge decimal.Decimal
	GSTAmount      decimal.Decimal
}

// ShipmentInput carries dispatch details for a paid order. DocumentRef
// points at an invoice or delivery challan and may be empty.
type ShipmentInput struct {
	Courier        string
	TrackingNumber string
	DocumentRef    *string
	ShippedAt      *time.Time
}

// ListFilters narrows order listings. Search matches the order number
// prefix; Since bounds the creation time.
type ListFilters struct {
	Status *enums.OrderStatus
	Search string
	Since  *time.Time
}

// ListResult is one page of orders plus the follow-up cursor.
type ListResult struct {
	Orders     []models.Order
	NextCursor string
}

// StatusCount is one row of the per-status dashboard summary.
type StatusCount struct {
	Status enums.OrderStatus `json:"status"`
	Count  int64             `json:"count"`
}
