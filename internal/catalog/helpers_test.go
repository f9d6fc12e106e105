package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/threadbazaar/threadbazaar-backend/internal/inventory"
	"github.com/threadbazaar/threadbazaar-backend/pkg/db"
	"github.com/threadbazaar/threadbazaar-backend/pkg/db/models"
	"github.com/threadbazaar/threadbazaar-backend/pkg/enums"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:catalog_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, conn.AutoMigrate(
		&models.Organization{},
		&models.Category{},
		&models.Size{},
		&models.CategorySize{},
		&models.Product{},
		&models.SkuSequence{},
		&models.SizeStock{},
		&models.MoqOption{},
	))
	return conn
}

func newTestService(t *testing.T, conn *gorm.DB) Service {
	t.Helper()

	svc, err := NewService(db.NewWithConn(conn), NewRepository(conn), inventory.NewRepository(conn))
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

func createCategory(t *testing.T, conn *gorm.DB, name string) *models.Category {
	t.Helper()

	category := &models.Category{ID: uuid.New(), Name: name}
	require.NoError(t, conn.Create(category).Error)
	return category
}

func createSize(t *testing.T, conn *gorm.DB, name string) *models.Size {
	t.Helper()

	size := &models.Size{ID: uuid.New(), Name: name}
	require.NoError(t, conn.Create(size).Error)
	return size
}

func pinCategorySize(t *testing.T, conn *gorm.DB, category *models.Category, size *models.Size, position int) {
	t.Helper()

	require.NoError(t, conn.Create(&models.CategorySize{
		ID:         uuid.New(),
		CategoryID: category.ID,
		SizeID:     size.ID,
		Position:   position,
	}).Error)
}

func mustCreateProduct(t *testing.T, svc Service, ownerID, categoryID uuid.UUID, name string) *models.Product {
	t.Helper()

	product, err := svc.CreateProduct(context.Background(), ownerID, CreateProductInput{
		CategoryID:     categoryID,
		Name:           name,
		WholesalePrice: decimal.NewFromInt(300),
		RetailPrice:    decimal.NewFromInt(500),
	})
	require.NoError(t, err)
	return product
}
