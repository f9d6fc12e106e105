// Package catalog owns product listings, stock intake and MOQ pack
// configurations for wholesaler organizations.
package catalog

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/threadbazaar/threadbazaar-backend/pkg/db/models"
	"github.com/threadbazaar/threadbazaar-backend/pkg/pagination"
)

// Repository wires together catalog persistence helpers.
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

// FindByID loads the product without associations.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindDetail loads the product with its stock batches and pack options.
func (r *Repository) FindDetail(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Stocks", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Preload("Stocks.Size").
		Preload("MoqOptions", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		First(&product, "id = ?", id).
		Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// CreateProduct inserts a new product row.
func (r *Repository) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// UpdateProduct updates an existing product row.
func (r *Repository) UpdateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Save(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// ArchiveProduct deactivates a listing. The row and its SKU stay
// behind so the sequence is never reused.
func (r *Repository) ArchiveProduct(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", id).
		Update("is_active", false).
		Error
}

// ProductListFilters narrows product listings.
type ProductListFilters struct {
	Query       string
	CategoryID  *uuid.UUID
	ActiveOnly  bool
	InStockOnly bool
}

// ProductListResult is one page of products plus the follow-up cursor.
type ProductListResult struct {
	Products   []models.Product
	NextCursor string
}

// ListByOwner pages through one wholesaler's products, newest first.
func (r *Repository) ListByOwner(ctx context.Context, ownerOrgID uuid.UUID, params pagination.Params, filters ProductListFilters) (*ProductListResult, error) {
	qb := r.db.WithContext(ctx).Where("owner_org_id = ?", ownerOrgID)
	return r.listProducts(ctx, qb, params, filters)
}

// ListPublic pages through active, in-stock products across all
// wholesalers.
func (r *Repository) ListPublic(ctx context.Context, params pagination.Params, filters ProductListFilters) (*ProductListResult, error) {
	filters.ActiveOnly = true
	filters.InStockOnly = true
	return r.listProducts(ctx, r.db.WithContext(ctx), params, filters)
}

func (r *Repository) listProducts(ctx context.Context, qb *gorm.DB, params pagination.Params, filters ProductListFilters) (*ProductListResult, error) {
	pageSize := pagination.NormalizeLimit(params.Limit)
	limitWithBuffer := pagination.LimitWithBuffer(params.Limit)

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}

	if filters.CategoryID != nil {
		qb = qb.Where("category_id = ?", *filters.CategoryID)
	}
	if filters.ActiveOnly {
		qb = qb.Where("is_active = ?", true)
	}
	if filters.InStockOnly {
		qb = qb.Where("COALESCE((SELECT SUM(quantity) FROM size_stocks WHERE size_stocks.product_id = products.id), 0) > 0")
	}
	if search := strings.TrimSpace(filters.Query); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		qb = qb.Where("(LOWER(name) LIKE ? OR LOWER(sku) LIKE ?)", pattern, pattern)
	}
	if cursor != nil {
		qb = qb.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Product
	err = qb.Order("created_at DESC").Order("id DESC").Limit(limitWithBuffer).Find(&rows).Error
	if err != nil {
		return nil, err
	}

	nextCursor := ""
	if len(rows) > pageSize {
		rows = rows[:pageSize]
		last := rows[len(rows)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}

	return &ProductListResult{Products: rows, NextCursor: nextCursor}, nil
}

// AddStockBatches inserts new batch rows. Zero-quantity entries are
// rejected upstream; this is pure persistence.
func (r *Repository) AddStockBatches(ctx context.Context, batches []models.SizeStock) error {
	if len(batches) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&batches).Error
}

// ReplaceMoqOptions swaps the full pack option set for a product.
func (r *Repository) ReplaceMoqOptions(ctx context.Context, productID uuid.UUID, options []models.MoqOption) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Where("product_id = ?", productID).Delete(&models.MoqOption{}).Error; err != nil {
		return err
	}
	if len(options) == 0 {
		return nil
	}
	return tx.Create(&options).Error
}

// ListMoqOptions returns pack options in configuration creation order.
func (r *Repository) ListMoqOptions(ctx context.Context, productID uuid.UUID) ([]models.MoqOption, error) {
	var rows []models.MoqOption
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at ASC").
		Find(&rows).
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

// FindCategory loads a category row.
func (r *Repository) FindCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).First(&category, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// SizesByID resolves size rows for the given ids.
func (r *Repository) SizesByID(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Size, error) {
	var rows []models.Size
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]models.Size, len(rows))
	for _, row := range rows {
		out[row.ID] = row
	}
	return out, nil
}

// CategorySizeOrder returns the category's size names in display order.
func (r *Repository) CategorySizeOrder(ctx context.Context, categoryID uuid.UUID) ([]string, error) {
	var names []string
	err := r.db.WithContext(ctx).
		Table("category_sizes").
		Joins("JOIN sizes ON sizes.id = category_sizes.size_id").
		Where("category_sizes.category_id = ?", categoryID).
		Order("category_sizes.position ASC").
		Pluck("sizes.name", &names).
		Error
	return names, err
}

// Products holding this many units or fewer count as low stock.
const lowStockThreshold = 5

// DashboardCounts summarizes a wholesaler's catalog.
type DashboardCounts struct {
	TotalProducts      int64 `json:"total_products"`
	ActiveProducts     int64 `json:"active_products"`
	OutOfStockProducts int64 `json:"out_of_stock_products"`
	LowStockProducts   int64 `json:"low_stock_products"`
	TotalStockUnits    int64 `json:"total_stock_units"`
}

// CountDashboard aggregates product and stock counts for one owner.
func (r *Repository) CountDashboard(ctx context.Context, ownerOrgID uuid.UUID) (*DashboardCounts, error) {
	var counts DashboardCounts

	err := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("owner_org_id = ?", ownerOrgID).
		Count(&counts.TotalProducts).Error
	if err != nil {
		return nil, err
	}
	err = r.db.WithContext(ctx).Model(&models.Product{}).
		Where("owner_org_id = ? AND is_active = ?", ownerOrgID, true).
		Count(&counts.ActiveProducts).Error
	if err != nil {
		return nil, err
	}

	onHand := "COALESCE((SELECT SUM(quantity) FROM size_stocks WHERE size_stocks.product_id = products.id), 0)"
	err = r.db.WithContext(ctx).Model(&models.Product{}).
		Where("owner_org_id = ? AND is_active = ?", ownerOrgID, true).
		Where(onHand + " = 0").
		Count(&counts.OutOfStockProducts).Error
	if err != nil {
		return nil, err
	}
	err = r.db.WithContext(ctx).Model(&models.Product{}).
		Where("owner_org_id = ? AND is_active = ?", ownerOrgID, true).
		Where(onHand+" BETWEEN 1 AND ?", lowStockThreshold).
		Count(&counts.LowStockProducts).Error
	if err != nil {
		return nil, err
	}

	var units *int64
	err = r.db.WithContext(ctx).
		Table("size_stocks").
		Joins("JOIN products ON products.id = size_stocks.product_id").
		Where("products.owner_org_id = ?", ownerOrgID).
		Select("SUM(size_stocks.quantity)").
		Scan(&units).Error
	if err != nil {
		return nil, err
	}
	if units != nil {
		counts.TotalStockUnits = *units
	}
	return &counts, nil
}
