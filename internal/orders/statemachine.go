// Package orders drives an order through its escrow lifecycle: the
// transition table, actor gating and the operations that move status.
package orders

import (
	"fmt"

	"github.com/threadbazaar/threadbazaar-backend/pkg/db/models"
	"github.com/threadbazaar/threadbazaar-backend/pkg/enums"
	pkgerrors "github.com/threadbazaar/threadbazaar-backend/pkg/errors"
)

// allowedTransitions is the full lifecycle. Anything outside it is an
// invalid transition unless an admin forces it.
var allowedTransitions = map[enums.OrderStatus][]enums.OrderStatus{
	enums.OrderStatusPending:         {enums.OrderStatusAwaitingPayment, enums.OrderStatusRejected},
	enums.OrderStatusAwaitingPayment: {enums.OrderStatusPaid, enums.OrderStatusCancelled},
	enums.OrderStatusPaid:            {enums.OrderStatusShipped},
	enums.OrderStatusShipped:         {enums.OrderStatusDelivered, enums.OrderStatusCompleted},
	enums.OrderStatusDelivered:       {enums.OrderStatusCompleted},
}

// CanTransition reports whether the table allows from -> to.
func CanTransition(from, to enums.OrderStatus) bool {
	for _, target := range allowedTransitions[from] {
		if target == to {
			return true
		}
	}
	return false
}

// Authorize checks whether the actor may move the order to target.
// Wholesalers own AWAITING_PAYMENT, REJECTED and SHIPPED; retailers own
// CANCELLED; every other target is admin territory. Admins pass
// unconditionally. Gating runs before the transition table so a
// retailer poking at SHIPPED is rejected no matter the current state.
func Authorize(actor Actor, order *models.Order, target enums.OrderStatus) error {
	if actor.IsAdmin() {
		return nil
	}

	switch target {
	case enums.OrderStatusAwaitingPayment, enums.OrderStatusRejected, enums.OrderStatusShipped:
		if actor.OrgType != enums.OrgTypeWholesaler || actor.OrgID != order.WholesalerOrgID {
			return pkgerrors.New(pkgerrors.CodeUnauthorized,
				fmt.Sprintf("only the order's wholesaler may set status %s", target))
		}
	case enums.OrderStatusCancelled:
		if actor.OrgType != enums.OrgTypeRetailer || actor.OrgID != order.RetailerOrgID {
			return pkgerrors.New(pkgerrors.CodeUnauthorized, "only the order's retailer may cancel")
		}
	default:
		return pkgerrors.New(pkgerrors.CodeUnauthorized,
			fmt.Sprintf("status %s requires an administrative actor", target))
	}
	return nil
}

// invalidTransition builds the standard rejection naming both states.
func invalidTransition(from, to enums.OrderStatus) error {
	return pkgerrors.New(pkgerrors.CodeStateConflict,
		fmt.Sprintf("cannot move order from %s to %s", from, to))
}
