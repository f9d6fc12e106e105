package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/threadbazaar/threadbazaar-backend/pkg/db/models"
	"github.com/threadbazaar/threadbazaar-backend/pkg/enums"
	pkgerrors "github.com/threadbazaar/threadbazaar-backend/pkg/errors"
	"github.com/threadbazaar/threadbazaar-backend/pkg/metrics"
	"github.com/threadbazaar/threadbazaar-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service defines order lifecycle operations past checkout.
type Service interface {
	GetOrder(ctx context.Context, actor Actor, orderID uuid.UUID) (*models.Order, error)
	GetByNumber(ctx context.Context, actor Actor, orderNumber string) (*models.Order, error)
	ListOrders(ctx context.Context, actor Actor, params pagination.Params, filters ListFilters) (*ListResult, error)
	StatusSummary(ctx context.Context, actor Actor) ([]StatusCount, error)
	UpdateStatus(ctx context.Context, actor Actor, orderID uuid.UUID, requested string) (*models.Order, error)
	Cancel(ctx context.Context, actor Actor, orderID uuid.UUID) (*models.Order, error)
	AddShippingAndGST(ctx context.Context, actor Actor, orderID uuid.UUID, charges ShippingCharges) (*models.Order, error)
	CreateShipment(ctx context.Context, actor Actor, orderID uuid.UUID, input ShipmentInput) (*models.Order, error)
}

type service struct {
	repo    *Repository
	tx      txRunner
	metrics *metrics.FulfillmentMetrics
}

// NewService builds the order lifecycle service. Metrics may be nil.
func NewService(repo *Repository, tx txRunner, m *metrics.FulfillmentMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx, metrics: m}, nil
}

func (s *service) GetOrder(ctx context.Context, actor Actor, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := requireParty(actor, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *service) GetByNumber(ctx context.Context, actor Actor, orderNumber string) (*models.Order, error) {
	order, err := s.repo.FindByOrderNumber(ctx, orderNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, err
	}
	if err := requireParty(actor, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *service) ListOrders(ctx context.Context, actor Actor, params pagination.Params, filters ListFilters) (*ListResult, error) {
	if actor.IsAdmin() {
		return s.repo.ListAll(ctx, params, filters)
	}
	switch actor.OrgType {
	case enums.OrgTypeRetailer:
		return s.repo.ListForRetailer(ctx, actor.OrgID, params, filters)
	case enums.OrgTypeWholesaler:
		return s.repo.ListForWholesaler(ctx, actor.OrgID, params, filters)
	default:
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "organization context missing")
	}
}

func (s *service) StatusSummary(ctx context.Context, actor Actor) ([]StatusCount, error) {
	switch actor.OrgType {
	case enums.OrgTypeRetailer:
		return s.repo.CountByStatus(ctx, "retailer_org_id", actor.OrgID)
	case enums.OrgTypeWholesaler:
		return s.repo.CountByStatus(ctx, "wholesaler_org_id", actor.OrgID)
	default:
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "organization context missing")
	}
}

// UpdateStatus is the generic transition entry point. It changes the
// status column and nothing else.
func (s *service) UpdateStatus(ctx context.Context, actor Actor, orderID uuid.UUID, requested string) (*models.Order, error) {
	target, err := enums.ParseOrderStatus(requested)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}

	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := Authorize(actor, order, target); err != nil {
		return nil, err
	}
	if order.Status == target {
		return order, nil
	}
	if !actor.IsAdmin() && !CanTransition(order.Status, target) {
		return nil, invalidTransition(order.Status, target)
	}

	if err := s.repo.UpdateStatus(ctx, order.ID, target); err != nil {
		return nil, err
	}
	s.recordTransition(target)
	order.Status = target
	return order, nil
}

// Cancel is the retailer's convenience wrapper. Only pending orders can
// be pulled back; admins may cancel anything.
func (s *service) Cancel(ctx context.Context, actor Actor, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := Authorize(actor, order, enums.OrderStatusCancelled); err != nil {
		return nil, err
	}
	if order.Status == enums.OrderStatusCancelled {
		return order, nil
	}
	if !actor.IsAdmin() && order.Status != enums.OrderStatusPending {
		return nil, invalidTransition(order.Status, enums.OrderStatusCancelled)
	}

	if err := s.repo.UpdateStatus(ctx, order.ID, enums.OrderStatusCancelled); err != nil {
		return nil, err
	}
	s.recordTransition(enums.OrderStatusCancelled)
	order.Status = enums.OrderStatusCancelled
	return order, nil
}

// AddShippingAndGST quotes delivery charges on a pending order and
// hands it to the retailer for payment.
func (s *service) AddShippingAndGST(ctx context.Context, actor Actor, orderID uuid.UUID, charges ShippingCharges) (*models.Order, error) {
	if charges.ShippingCharge.IsNegative() || charges.GSTAmount.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "charges cannot be negative")
	}

	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := Authorize(actor, order, enums.OrderStatusAwaitingPayment); err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && !CanTransition(order.Status, enums.OrderStatusAwaitingPayment) {
		return nil, invalidTransition(order.Status, enums.OrderStatusAwaitingPayment)
	}

	grandTotal := order.Subtotal.Add(charges.ShippingCharge).Add(charges.GSTAmount)
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).UpdateFields(ctx, order.ID, map[string]any{
			"shipping_charge": charges.ShippingCharge,
			"gst_amount":      charges.GSTAmount,
			"grand_total":     grandTotal,
			"status":          enums.OrderStatusAwaitingPayment,
		})
	})
	if err != nil {
		return nil, err
	}
	s.recordTransition(enums.OrderStatusAwaitingPayment)

	order.ShippingCharge = charges.ShippingCharge
	order.GSTAmount = charges.GSTAmount
	order.GrandTotal = grandTotal
	order.Status = enums.OrderStatusAwaitingPayment
	return order, nil
}

// CreateShipment records dispatch details and moves the order to
// SHIPPED in one transaction.
func (s *service) CreateShipment(ctx context.Context, actor Actor, orderID uuid.UUID, input ShipmentInput) (*models.Order, error) {
	if input.Courier == "" || input.TrackingNumber == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "courier and tracking number required")
	}

	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := Authorize(actor, order, enums.OrderStatusShipped); err != nil {
		return nil, err
	}
	if order.Shipment != nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "order already has a shipment")
	}
	if !actor.IsAdmin() && !CanTransition(order.Status, enums.OrderStatusShipped) {
		return nil, invalidTransition(order.Status, enums.OrderStatusShipped)
	}

	shippedAt := timeOrNow(input.ShippedAt)
	shipment := &models.Shipment{
		ID:             uuid.New(),
		OrderID:        order.ID,
		Courier:        input.Courier,
		TrackingNumber: input.TrackingNumber,
		DocumentRef:    input.DocumentRef,
		ShippedAt:      shippedAt,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.CreateShipment(ctx, shipment); err != nil {
			return err
		}
		return repo.UpdateStatus(ctx, order.ID, enums.OrderStatusShipped)
	})
	if err != nil {
		return nil, err
	}
	s.recordTransition(enums.OrderStatusShipped)

	order.Shipment = shipment
	order.Status = enums.OrderStatusShipped
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

func (s *service) recordTransition(to enums.OrderStatus) {
	s.metrics.IncStatusTransition(to.String())
}

func timeOrNow(t *time.Time) time.Time {
	if t != nil {
		return *t
	}
	return time.Now().UTC()
}

// requireParty restricts reads to the order's two organizations.
func requireParty(actor Actor, order *models.Order) error {
	if actor.IsAdmin() {
		return nil
	}
	if actor.OrgID == order.RetailerOrgID || actor.OrgID == order.WholesalerOrgID {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeForbidden, "order belongs to a different organization")
}
