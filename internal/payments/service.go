// Package payments bridges the escrow lifecycle to the payment
// gateway: collecting the retailer's money and releasing it to the
// wholesaler once goods have shipped.
package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/threadbazaar/threadbazaar-backend/internal/orders"
	"github.com/threadbazaar/threadbazaar-backend/pkg/config"
	"github.com/threadbazaar/threadbazaar-backend/pkg/db/models"
	"github.com/threadbazaar/threadbazaar-backend/pkg/enums"
	pkgerrors "github.com/threadbazaar/threadbazaar-backend/pkg/errors"
	"github.com/threadbazaar/threadbazaar-backend/pkg/metrics"
	"github.com/threadbazaar/threadbazaar-backend/pkg/razorpay"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service defines the gateway-facing payment operations.
type Service interface {
	CaptureIntent(ctx context.Context, actor orders.Actor, orderID uuid.UUID) (*CaptureIntentResult, error)
	VerifyAndRecord(ctx context.Context, input VerificationInput) (*models.Order, error)
	ReleaseToPayee(ctx context.Context, actor orders.Actor, orderID uuid.UUID) (*models.Order, error)
}

type service struct {
	repo    *orders.Repository
	tx      txRunner
	gateway razorpay.Gateway
	cfg     config.PaymentsConfig
	metrics *metrics.FulfillmentMetrics
}

// NewService builds the payments service. Metrics may be nil.
func NewService(repo *orders.Repository, tx txRunner, gateway razorpay.Gateway, cfg config.PaymentsConfig, m *metrics.FulfillmentMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if gateway == nil {
		return nil, fmt.Errorf("payment gateway required")
	}
	return &service{repo: repo, tx: tx, gateway: gateway, cfg: cfg, metrics: m}, nil
}

// CaptureIntent registers a gateway order for an AWAITING_PAYMENT
// order so the retailer can pay. Calling it again returns the already
// registered intent.
func (s *service) CaptureIntent(ctx context.Context, actor orders.Actor, orderID uuid.UUID) (*CaptureIntentResult, error) {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && actor.OrgID != order.RetailerOrgID {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "only the order's retailer may pay")
	}
	if order.Status != enums.OrderStatusAwaitingPayment {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("order is %s, payment requires AWAITING_PAYMENT", order.Status))
	}

	amount := toMinorUnits(order.GrandTotal)
	if order.RazorpayOrderID != nil {
		return &CaptureIntentResult{
			GatewayOrderID: *order.RazorpayOrderID,
			Amount:         amount,
			Currency:       s.cfg.Currency,
		}, nil
	}

	gatewayOrder, err := s.gateway.CreateOrder(ctx, amount, s.cfg.Currency, order.OrderNumber)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create gateway order")
	}

	err = s.repo.UpdateFields(ctx, order.ID, map[string]any{
		"razorpay_order_id": gatewayOrder.ID,
	})
	if err != nil {
		return nil, err
	}

	return &CaptureIntentResult{
		GatewayOrderID: gatewayOrder.ID,
		Amount:         amount,
		Currency:       s.cfg.Currency,
	}, nil
}

// VerifyAndRecord applies a gateway payment callback. A bad signature
// mutates nothing; a replay of an applied payment is a no-op.
func (s *service) VerifyAndRecord(ctx context.Context, input VerificationInput) (*models.Order, error) {
	if input.GatewayOrderID == "" || input.GatewayPaymentID == "" {
		s.metrics.IncWebhook("invalid")
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "gateway order and payment ids required")
	}

	if !s.gateway.VerifyPaymentSignature(input.GatewayOrderID, input.GatewayPaymentID, input.Signature) {
		s.metrics.IncWebhook("verification_failed")
		return nil, pkgerrors.New(pkgerrors.CodeVerificationFailed, "payment signature mismatch")
	}

	order, err := s.repo.FindByGatewayOrderID(ctx, input.GatewayOrderID)
	if err != nil {
		s.metrics.IncWebhook("unknown_order")
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no order for gateway order id")
		}
		return nil, err
	}

	// replay of an already applied capture
	if order.Status == enums.OrderStatusPaid &&
		order.RazorpayPaymentID != nil && *order.RazorpayPaymentID == input.GatewayPaymentID {
		s.metrics.IncWebhook("duplicate")
		return order, nil
	}
	if order.Status != enums.OrderStatusAwaitingPayment {
		s.metrics.IncWebhook("state_conflict")
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("order is %s, capture requires AWAITING_PAYMENT", order.Status))
	}

	method := order.PaymentMethod
	if parsed, err := enums.ParsePaymentMethod(input.Method); err == nil {
		method = parsed
	}

	now := time.Now().UTC()
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).UpdateFields(ctx, order.ID, map[string]any{
			"status":              enums.OrderStatusPaid,
			"razorpay_payment_id": input.GatewayPaymentID,
			"payment_method":      method,
			"paid_at":             now,
		})
	})
	if err != nil {
		return nil, err
	}
	s.metrics.IncWebhook("success")
	s.metrics.IncStatusTransition(enums.OrderStatusPaid.String())

	order.Status = enums.OrderStatusPaid
	order.RazorpayPaymentID = &input.GatewayPaymentID
	order.PaymentMethod = method
	order.PaidAt = &now
	return order, nil
}

// ReleaseToPayee settles escrowed funds to the wholesaler, withholding
// the platform commission, and completes the order. Commission is
// applied to the grand total, so the platform also takes its cut of
// shipping and GST.
func (s *service) ReleaseToPayee(ctx context.Context, actor orders.Actor, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && actor.OrgID != order.WholesalerOrgID {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "only the order's wholesaler may request release")
	}
	if order.Status != enums.OrderStatusShipped {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("order is %s, release requires SHIPPED", order.Status))
	}
	if order.Payout != nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "payout already recorded")
	}
	if order.RazorpayPaymentID == nil {
		s.metrics.IncPayout("no_payment")
		return nil, pkgerrors.New(pkgerrors.CodePayout, "order has no captured gateway payment")
	}

	wholesaler, err := s.repo.FindOrganization(ctx, order.WholesalerOrgID)
	if err != nil {
		return nil, err
	}
	if !wholesaler.HasCompleteBankDetails() {
		s.metrics.IncPayout("payee_misconfigured")
		return nil, pkgerrors.New(pkgerrors.CodePayout, "wholesaler payout details are incomplete")
	}
	if wholesaler.RazorpayAccountID == nil || *wholesaler.RazorpayAccountID == "" {
		s.metrics.IncPayout("payee_misconfigured")
		return nil, pkgerrors.New(pkgerrors.CodePayout, "wholesaler has no linked gateway account")
	}

	gross := order.GrandTotal
	commission := gross.Mul(decimal.NewFromFloat(s.cfg.CommissionPercent)).Div(decimal.NewFromInt(100)).Round(2)
	net := gross.Sub(commission)

	transfer, err := s.gateway.TransferToAccount(ctx, *order.RazorpayPaymentID, *wholesaler.RazorpayAccountID, toMinorUnits(net), s.cfg.Currency)
	if err != nil {
		s.metrics.IncPayout("gateway_error")
		return nil, pkgerrors.Wrap(pkgerrors.CodePayout, err, "gateway transfer failed")
	}

	payout := &models.Payout{
		ID:              uuid.New(),
		OrderID:         order.ID,
		WholesalerOrgID: order.WholesalerOrgID,
		GrossAmount:     gross,
		Commission:      commission,
		NetAmount:       net,
		TransferID:      transfer.ID,
	}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.CreatePayout(ctx, payout); err != nil {
			return err
		}
		return repo.UpdateStatus(ctx, order.ID, enums.OrderStatusCompleted)
	})
	if err != nil {
		return nil, err
	}
	s.metrics.IncPayout("success")
	s.metrics.IncStatusTransition(enums.OrderStatusCompleted.String())

	order.Status = enums.OrderStatusCompleted
	order.Payout = payout
	return order, nil
}

func (s *service) loadOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, err
	}
	return order, nil
}

// toMinorUnits converts a rupee amount to paise.
func toMinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}
