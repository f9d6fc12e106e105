package controllers

import (
	"net/http"

	"github.com/threadbazaar/threadbazaar-backend/api/middleware"
	"github.com/threadbazaar/threadbazaar-backend/api/responses"
	"github.com/threadbazaar/threadbazaar-backend/api/validators"
	"github.com/threadbazaar/threadbazaar-backend/internal/checkout"
	"github.com/threadbazaar/threadbazaar-backend/pkg/enums"
	pkgerrors "github.com/threadbazaar/threadbazaar-backend/pkg/errors"
	"github.com/threadbazaar/threadbazaar-backend/pkg/logger"
)

type checkoutRequest struct {
	PaymentMethod string              `json:"payment_method"`
	Lines         []checkout.CartLine `json:"lines" validate:"required,min=1"`
}

// Checkout converts the caller's cart into per-wholesaler orders.
func Checkout(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		orgID, ok := middleware.OrgIDFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "organization context missing"))
			return
		}

		var req checkoutRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var method enums.PaymentMethod
		if req.PaymentMethod != "" {
			parsed, parseErr := enums.ParsePaymentMethod(req.PaymentMethod)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "unknown payment method"))
				return
			}
			method = parsed
		}

		created, err := svc.CreateFromCart(r.Context(), checkout.Input{
			RetailerOrgID: orgID,
			PaymentMethod: method,
			Lines:         req.Lines,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{"orders": created})
	}
}
