// Package checkout turns a retailer's cart into per-wholesaler orders
// inside one stock-reserving transaction.
package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/threadbazaar/threadbazaar-backend/internal/inventory"
	"github.com/threadbazaar/threadbazaar-backend/internal/orders"
	"github.com/threadbazaar/threadbazaar-backend/pkg/db"
	"github.com/threadbazaar/threadbazaar-backend/pkg/db/models"
	"github.com/threadbazaar/threadbazaar-backend/pkg/enums"
	pkgerrors "github.com/threadbazaar/threadbazaar-backend/pkg/errors"
	"github.com/threadbazaar/threadbazaar-backend/pkg/metrics"
	"github.com/threadbazaar/threadbazaar-backend/pkg/packs"
)

// orderNumberAttempts bounds retries when a generated order number
// collides with an existing one.
const orderNumberAttempts = 3

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service is the checkout entry point.
type Service interface {
	CreateFromCart(ctx context.Context, input Input) ([]models.Order, error)
}

type service struct {
	tx      txRunner
	repo    *Repository
	orders  *orders.Repository
	metrics *metrics.FulfillmentMetrics
}

// NewService builds the checkout service. Metrics may be nil.
func NewService(tx txRunner, repo *Repository, ordersRepo *orders.Repository, m *metrics.FulfillmentMetrics) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("checkout repository required")
	}
	if ordersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	return &service{tx: tx, repo: repo, orders: ordersRepo, metrics: m}, nil
}

// partition groups one wholesaler's cart lines.
type partition struct {
	wholesalerOrgID uuid.UUID
	lines           []preparedLine
}

// preparedLine is a cart line with its product and parsed pack resolved.
type preparedLine struct {
	line     CartLine
	product  models.Product
	pack     *packs.Pack
	numPacks int
}

// CreateFromCart validates the cart, reserves stock for every pack
// line and creates one PENDING order per wholesaler. Everything runs
// in a single transaction: a shortfall anywhere rolls back the whole
// checkout and no order survives.
func (s *service) CreateFromCart(ctx context.Context, input Input) ([]models.Order, error) {
	start := time.Now()

	created, err := s.createFromCart(ctx, input)
	outcome := "success"
	if err != nil {
		outcome = "error"
		if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeInsufficientStock {
			outcome = "shortfall"
			if shortfalls, ok := typed.Details().([]inventory.Shortfall); ok {
				for _, shortfall := range shortfalls {
					s.metrics.IncStockShortfall(shortfall.SizeName)
				}
			}
		}
	}
	s.metrics.ObserveCheckout(outcome, time.Since(start))
	return created, err
}

func (s *service) createFromCart(ctx context.Context, input Input) ([]models.Order, error) {
	if input.RetailerOrgID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "retailer organization id required")
	}
	if len(input.Lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}
	paymentMethod := input.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = enums.PaymentMethodUPI
	}
	if !paymentMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid payment method %q", paymentMethod))
	}
	for _, line := range input.Lines {
		if line.Quantity < 1 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "line quantity must be at least 1")
		}
		if !line.UnitPrice.IsPositive() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "line unit price must be positive")
		}
	}

	retailer, err := s.repo.FindOrganization(ctx, input.RetailerOrgID)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "retailer organization not found")
	}
	if retailer.OrgType != enums.OrgTypeRetailer {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only retailers can check out")
	}

	partitions, err := s.preparePartitions(ctx, input.Lines)
	if err != nil {
		return nil, err
	}

	requests, err := s.buildReservations(ctx, partitions)
	if err != nil {
		return nil, err
	}

	// Order number collisions surface as unique violations and retry
	// the whole transaction with fresh numbers.
	var created []models.Order
	for attempt := 0; attempt < orderNumberAttempts; attempt++ {
		created, err = s.runCheckout(ctx, input.RetailerOrgID, paymentMethod, partitions, requests)
		if err == nil {
			return created, nil
		}
		if !db.IsUniqueViolation(err, "order_number") {
			return nil, err
		}
	}
	return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "could not allocate order numbers")
}

func (s *service) preparePartitions(ctx context.Context, lines []CartLine) ([]*partition, error) {
	productIDs := make([]uuid.UUID, 0, len(lines))
	seen := make(map[uuid.UUID]bool, len(lines))
	for _, line := range lines {
		if !seen[line.ProductID] {
			seen[line.ProductID] = true
			productIDs = append(productIDs, line.ProductID)
		}
	}

	products, err := s.repo.ProductsByID(ctx, productIDs)
	if err != nil {
		return nil, err
	}
	for _, id := range productIDs {
		if _, ok := products[id]; !ok {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("product %s not found", id))
		}
	}

	ownerIDs := make([]uuid.UUID, 0, len(products))
	seenOwners := make(map[uuid.UUID]bool, len(products))
	for _, product := range products {
		if !seenOwners[product.OwnerOrgID] {
			seenOwners[product.OwnerOrgID] = true
			ownerIDs = append(ownerIDs, product.OwnerOrgID)
		}
	}
	owners, err := s.repo.OrganizationsByID(ctx, ownerIDs)
	if err != nil {
		return nil, err
	}
	for _, owner := range owners {
		if owner.OrgType != enums.OrgTypeWholesaler {
			return nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("product owner %s is not a wholesaler", owner.Name))
		}
	}

	// one partition per wholesaler, in first-appearance order
	byOwner := make(map[uuid.UUID]*partition)
	var ordered []*partition
	for _, line := range lines {
		product := products[line.ProductID]
		if !product.IsActive {
			return nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("product %s is no longer available", product.Name))
		}

		prepared := preparedLine{line: line, product: product}
		if line.PackLabel != nil {
			pack, err := packs.ParseLabel(*line.PackLabel)
			if err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err,
					fmt.Sprintf("invalid pack label on %s", product.Name))
			}
			prepared.pack = pack
			prepared.numPacks = line.Quantity / pack.TotalPieces
		}

		part, ok := byOwner[product.OwnerOrgID]
		if !ok {
			part = &partition{wholesalerOrgID: product.OwnerOrgID}
			byOwner[product.OwnerOrgID] = part
			ordered = append(ordered, part)
		}
		part.lines = append(part.lines, prepared)
	}
	return ordered, nil
}

func (s *service) buildReservations(ctx context.Context, partitions []*partition) ([]inventory.ReservationRequest, error) {
	nameSet := make(map[string]bool)
	for _, part := range partitions {
		for _, prepared := range part.lines {
			if prepared.pack == nil {
				continue
			}
			for _, name := range prepared.pack.Sizes {
				nameSet[name] = true
			}
		}
	}
	if len(nameSet) == 0 {
		return nil, nil
	}

	names := make([]string, 0, len(nameSet))
	for name := range nameSet {
		names = append(names, name)
	}
	sizes, err := s.repo.SizesByName(ctx, names)
	if err != nil {
		return nil, err
	}

	var requests []inventory.ReservationRequest
	for _, part := range partitions {
		for _, prepared := range part.lines {
			if prepared.pack == nil || prepared.numPacks == 0 {
				continue
			}
			for i, name := range prepared.pack.Sizes {
				qty := prepared.numPacks * prepared.pack.Ratios[i]
				if qty == 0 {
					continue
				}
				size, ok := sizes[name]
				if !ok {
					return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("size %q not found", name))
				}
				requests = append(requests, inventory.ReservationRequest{
					ProductID: prepared.product.ID,
					SizeID:    size.ID,
					SizeName:  size.Name,
					Qty:       qty,
				})
			}
		}
	}
	return requests, nil
}

func (s *service) runCheckout(ctx context.Context, retailerOrgID uuid.UUID, paymentMethod enums.PaymentMethod, partitions []*partition, requests []inventory.ReservationRequest) ([]models.Order, error) {
	var created []models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if len(requests) > 0 {
			if err := inventory.ReserveStock(ctx, tx, requests); err != nil {
				return err
			}
		}

		repo := s.orders.WithTx(tx)
		for _, part := range partitions {
			number, err := orders.NewOrderNumber()
			if err != nil {
				return err
			}

			subtotal := decimal.Zero
			items := make([]models.OrderItem, 0, len(part.lines))
			for _, prepared := range part.lines {
				lineTotal := prepared.line.UnitPrice.Mul(decimal.NewFromInt(int64(prepared.line.Quantity)))
				subtotal = subtotal.Add(lineTotal)

				item := models.OrderItem{
					ID:          uuid.New(),
					ProductID:   prepared.product.ID,
					ProductName: prepared.product.Name,
					SKU:         prepared.product.SKU,
					UnitPrice:   prepared.line.UnitPrice,
					Quantity:    prepared.line.Quantity,
					LineTotal:   lineTotal,
				}
				if prepared.pack != nil {
					item.PackLabel = prepared.line.PackLabel
					item.NumPacks = prepared.numPacks
					item.PackDetails = prepared.pack.Config()
				}
				items = append(items, item)
			}

			order := &models.Order{
				ID:              uuid.New(),
				OrderNumber:     number,
				RetailerOrgID:   retailerOrgID,
				WholesalerOrgID: part.wholesalerOrgID,
				Status:          enums.OrderStatusPending,
				PaymentMethod:   paymentMethod,
				Subtotal:        subtotal,
				ShippingCharge:  decimal.Zero,
				GSTAmount:       decimal.Zero,
				GrandTotal:      subtotal,
				Items:           items,
			}
			if _, err := repo.Create(ctx, order); err != nil {
				return err
			}
			created = append(created, *order)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}
