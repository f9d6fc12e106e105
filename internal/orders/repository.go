package orders

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/threadbazaar/threadbazaar-backend/pkg/db/models"
	"github.com/threadbazaar/threadbazaar-backend/pkg/enums"
	"github.com/threadbazaar/threadbazaar-backend/pkg/pagination"
)

// Repository wires together order persistence helpers.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create inserts the order together with its line items.
func (r *Repository) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

// FindByID loads the order with items, shipment and payout.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Preload("Shipment").
		Preload("Payout").
		First(&order, "id = ?", id).
		Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// FindByOrderNumber loads the order by its human reference.
func (r *Repository) FindByOrderNumber(ctx context.Context, number string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Shipment").
		Preload("Payout").
		First(&order, "order_number = ?", number).
		Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// FindByGatewayOrderID loads the order correlated to a gateway order.
func (r *Repository) FindByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		First(&order, "razorpay_order_id = ?", gatewayOrderID).
		Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// UpdateStatus persists a status change and nothing else.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Update("status", status).
		Error
}

// UpdateFields applies a partial update to the order row.
func (r *Repository) UpdateFields(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Updates(updates).
		Error
}

// CreateShipment inserts the order's shipment row. The unique index on
// order_id enforces the one-to-one.
func (r *Repository) CreateShipment(ctx context.Context, shipment *models.Shipment) error {
	return r.db.WithContext(ctx).Create(shipment).Error
}

// CreatePayout inserts the order's payout record.
func (r *Repository) CreatePayout(ctx context.Context, payout *models.Payout) error {
	return r.db.WithContext(ctx).Create(payout).Error
}

// ListForRetailer pages through a retailer's orders, newest first.
func (r *Repository) ListForRetailer(ctx context.Context, retailerOrgID uuid.UUID, params pagination.Params, filters ListFilters) (*ListResult, error) {
	qb := r.db.WithContext(ctx).Where("retailer_org_id = ?", retailerOrgID)
	return r.listOrders(qb, params, filters)
}

// ListForWholesaler pages through a wholesaler's orders, newest first.
func (r *Repository) ListForWholesaler(ctx context.Context, wholesalerOrgID uuid.UUID, params pagination.Params, filters ListFilters) (*ListResult, error) {
	qb := r.db.WithContext(ctx).Where("wholesaler_org_id = ?", wholesalerOrgID)
	return r.listOrders(qb, params, filters)
}

// ListAll pages through every order. Admin surface only.
func (r *Repository) ListAll(ctx context.Context, params pagination.Params, filters ListFilters) (*ListResult, error) {
	return r.listOrders(r.db.WithContext(ctx), params, filters)
}

func (r *Repository) listOrders(qb *gorm.DB, params pagination.Params, filters ListFilters) (*ListResult, error) {
	pageSize := pagination.NormalizeLimit(params.Limit)
	limitWithBuffer := pagination.LimitWithBuffer(params.Limit)

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}

	if filters.Status != nil {
		qb = qb.Where("status = ?", *filters.Status)
	}
	if filters.Search != "" {
		qb = qb.Where("order_number LIKE ?", strings.ToUpper(filters.Search)+"%")
	}
	if filters.Since != nil {
		qb = qb.Where("created_at >= ?", *filters.Since)
	}
	if cursor != nil {
		qb = qb.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Order
	err = qb.Preload("Items").Order("created_at DESC").Order("id DESC").Limit(limitWithBuffer).Find(&rows).Error
	if err != nil {
		return nil, err
	}

	nextCursor := ""
	if len(rows) > pageSize {
		rows = rows[:pageSize]
		last := rows[len(rows)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}

	return &ListResult{Orders: rows, NextCursor: nextCursor}, nil
}

// CountByStatus summarizes one organization's orders per status. The
// column picks which side of the order the organization sits on.
func (r *Repository) CountByStatus(ctx context.Context, column string, orgID uuid.UUID) ([]StatusCount, error) {
	var rows []StatusCount
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("status, COUNT(*) AS count").
		Where(column+" = ?", orgID).
		Group("status").
		Order("status ASC").
		Scan(&rows).
		Error
	return rows, err
}

// FindOrganization loads an organization row.
func (r *Repository) FindOrganization(ctx context.Context, id uuid.UUID) (*models.Organization, error) {
	var org models.Organization
	if err := r.db.WithContext(ctx).First(&org, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &org, nil
}
