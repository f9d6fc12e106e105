package checkout

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/threadbazaar/threadbazaar-backend/internal/orders"
	"github.com/threadbazaar/threadbazaar-backend/pkg/db"
	"github.com/threadbazaar/threadbazaar-backend/pkg/db/models"
	"github.com/threadbazaar/threadbazaar-backend/pkg/enums"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:checkout_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, conn.AutoMigrate(
		&models.Organization{},
		&models.Category{},
		&models.Size{},
		&models.Product{},
		&models.SizeStock{},
		&models.Order{},
		&models.OrderItem{},
	))
	return conn
}

func newTestService(t *testing.T, conn *gorm.DB) Service {
	t.Helper()

	svc, err := NewService(db.NewWithConn(conn), NewRepository(conn), orders.NewRepository(conn), nil)
	require.NoError(t, err)
	return svc
}

func createOrg(t *testing.T, conn *gorm.DB, name string, orgType enums.OrgType) *models.Organization {
	t.Helper()

	org := &models.Organization{
		ID:      uuid.New(),
		Name:    name,
		OrgType: orgType,
		Email:   "org@example.com",
	}
	require.NoError(t, conn.Create(org).Error)
	return org
}

func createSize(t *testing.T, conn *gorm.DB, name string) *models.Size {
	t.Helper()

	size := &models.Size{ID: uuid.New(), Name: name}
	require.NoError(t, conn.Create(size).Error)
	return size
}

func createProduct(t *testing.T, conn *gorm.DB, owner *models.Organization, name, sku string) *models.Product {
	t.Helper()

	category := &models.Category{ID: uuid.New(), Name: "Shirts " + uuid.NewString()[:8]}
	require.NoError(t, conn.Create(category).Error)

	product := &models.Product{
		ID:             uuid.New(),
		OwnerOrgID:     owner.ID,
		CategoryID:     category.ID,
		SKU:            sku,
		Name:           name,
		WholesalePrice: decimal.NewFromInt(300),
		RetailPrice:    decimal.NewFromInt(500),
		IsActive:       true,
	}
	require.NoError(t, conn.Create(product).Error)
	return product
}

func addStock(t *testing.T, conn *gorm.DB, product *models.Product, size *models.Size, qty int) {
	t.Helper()

	require.NoError(t, conn.Create(&models.SizeStock{
		ID:        uuid.New(),
		ProductID: product.ID,
		SizeID:    size.ID,
		Quantity:  qty,
	}).Error)
}

func stockFor(t *testing.T, conn *gorm.DB, product *models.Product, size *models.Size) int {
	t.Helper()

	var total *int
	err := conn.Model(&models.SizeStock{}).
		Where("product_id = ? AND size_id = ?", product.ID, size.ID).
		Select("SUM(quantity)").
		Scan(&total).
		Error
	require.NoError(t, err)
	if total == nil {
		return 0
	}
	return *total
}

func str(s string) *string {
	return &s
}
