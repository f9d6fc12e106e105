package inventory

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/threadbazaar/threadbazaar-backend/pkg/db/models"
	"github.com/threadbazaar/threadbazaar-backend/pkg/enums"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:inventory_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.Organization{},
		&models.Category{},
		&models.Size{},
		&models.CategorySize{},
		&models.Product{},
		&models.SizeStock{},
	))
	return db
}

func createWholesaler(t *testing.T, db *gorm.DB) *models.Organization {
	t.Helper()

	org := &models.Organization{
		ID:      uuid.New(),
		Name:    "Test Wholesaler",
		OrgType: enums.OrgTypeWholesaler,
		Email:   "wholesale@example.com",
	}
	require.NoError(t, db.Create(org).Error)
	return org
}

func createCategory(t *testing.T, db *gorm.DB, name string) *models.Category {
	t.Helper()

	category := &models.Category{ID: uuid.New(), Name: name}
	require.NoError(t, db.Create(category).Error)
	return category
}

func createSize(t *testing.T, db *gorm.DB, name string) *models.Size {
	t.Helper()

	size := &models.Size{ID: uuid.New(), Name: name}
	require.NoError(t, db.Create(size).Error)
	return size
}

func pinCategorySize(t *testing.T, db *gorm.DB, category *models.Category, size *models.Size, position int) {
	t.Helper()

	require.NoError(t, db.Create(&models.CategorySize{
		ID:         uuid.New(),
		CategoryID: category.ID,
		SizeID:     size.ID,
		Position:   position,
	}).Error)
}

func createProduct(t *testing.T, db *gorm.DB, owner *models.Organization, category *models.Category, sku string) *models.Product {
	t.Helper()

	product := &models.Product{
		ID:             uuid.New(),
		OwnerOrgID:     owner.ID,
		CategoryID:     category.ID,
		SKU:            sku,
		Name:           "Test Product " + sku,
		WholesalePrice: decimal.NewFromInt(250),
		RetailPrice:    decimal.NewFromInt(400),
		IsActive:       true,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func createBatch(t *testing.T, db *gorm.DB, product *models.Product, size *models.Size, qty int, age time.Duration) *models.SizeStock {
	t.Helper()

	stock := &models.SizeStock{
		ID:        uuid.New(),
		ProductID: product.ID,
		SizeID:    size.ID,
		Quantity:  qty,
		CreatedAt: time.Now().UTC().Add(-age),
	}
	require.NoError(t, db.Create(stock).Error)
	return stock
}

func totalStock(t *testing.T, db *gorm.DB, product *models.Product, size *models.Size) int {
	t.Helper()

	var total *int
	require.NoError(t, db.Model(&models.SizeStock{}).
		Where("product_id = ? AND size_id = ?", product.ID, size.ID).
		Select("SUM(quantity)").
		Scan(&total).Error)
	if total == nil {
		return 0
	}
	return *total
}
