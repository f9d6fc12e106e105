package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/threadbazaar/threadbazaar-backend/pkg/db/models"
	"github.com/threadbazaar/threadbazaar-backend/pkg/enums"
	pkgerrors "github.com/threadbazaar/threadbazaar-backend/pkg/errors"
	"github.com/threadbazaar/threadbazaar-backend/pkg/pagination"
	"github.com/threadbazaar/threadbazaar-backend/pkg/types"
)

func TestCreateProductRejectsRetailerOwner(t *testing.T) {
	conn := newTestDB(t)
	svc := newTestService(t, conn)

	retailer := createOrg(t, conn, "Corner Shop", enums.OrgTypeRetailer)
	category := createCategory(t, conn, "Shirts")

	_, err := svc.CreateProduct(context.Background(), retailer.ID, CreateProductInput{
		CategoryID:     category.ID,
		Name:           "Oxford",
		WholesalePrice: decimal.NewFromInt(300),
		RetailPrice:    decimal.NewFromInt(500),
	})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeForbidden, typed.Code())
}

func TestCreateProductValidatesPrices(t *testing.T) {
	conn := newTestDB(t)
	svc := newTestService(t, conn)

	owner := createOrg(t, conn, "Acme Traders", enums.OrgTypeWholesaler)
	category := createCategory(t, conn, "Shirts")

	_, err := svc.CreateProduct(context.Background(), owner.ID, CreateProductInput{
		CategoryID:     category.ID,
		Name:           "Oxford",
		WholesalePrice: decimal.Zero,
		RetailPrice:    decimal.NewFromInt(500),
	})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestUpdateProductOwnershipGate(t *testing.T) {
	conn := newTestDB(t)
	svc := newTestService(t, conn)

	owner := createOrg(t, conn, "Acme Traders", enums.OrgTypeWholesaler)
	other := createOrg(t, conn, "Bolt Mills", enums.OrgTypeWholesaler)
	category := createCategory(t, conn, "Shirts")
	product := mustCreateProduct(t, svc, owner.ID, category.ID, "Oxford")

	name := "Renamed"
	_, err := svc.UpdateProduct(context.Background(), other.ID, product.ID, UpdateProductInput{Name: &name})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeForbidden, typed.Code())
}

func TestUpdateProductNeverTouchesSKU(t *testing.T) {
	conn := newTestDB(t)
	svc := newTestService(t, conn)

	owner := createOrg(t, conn, "Acme Traders", enums.OrgTypeWholesaler)
	category := createCategory(t, conn, "Shirts")
	product := mustCreateProduct(t, svc, owner.ID, category.ID, "Oxford")

	name := "Oxford Slim"
	price := decimal.NewFromInt(350)
	updated, err := svc.UpdateProduct(context.Background(), owner.ID, product.ID, UpdateProductInput{
		Name:           &name,
		WholesalePrice: &price,
	})
	require.NoError(t, err)
	assert.Equal(t, product.SKU, updated.SKU)
	assert.Equal(t, "Oxford Slim", updated.Name)
	assert.True(t, updated.WholesalePrice.Equal(price))
}

func TestAddStockValidation(t *testing.T) {
	conn := newTestDB(t)
	svc := newTestService(t, conn)
	ctx := context.Background()

	owner := createOrg(t, conn, "Acme Traders", enums.OrgTypeWholesaler)
	category := createCategory(t, conn, "Shirts")
	small := createSize(t, conn, "S")
	product := mustCreateProduct(t, svc, owner.ID, category.ID, "Oxford")

	err := svc.AddStock(ctx, owner.ID, product.ID, StockIntake{
		Quantities: map[uuid.UUID]int{small.ID: 0},
	})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())

	err = svc.AddStock(ctx, owner.ID, product.ID, StockIntake{
		Quantities: map[uuid.UUID]int{uuid.New(): 3},
	})
	require.Error(t, err)
	typed = pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestAddStockCreatesBatchRows(t *testing.T) {
	conn := newTestDB(t)
	svc := newTestService(t, conn)
	ctx := context.Background()

	owner := createOrg(t, conn, "Acme Traders", enums.OrgTypeWholesaler)
	category := createCategory(t, conn, "Shirts")
	small := createSize(t, conn, "S")
	product := mustCreateProduct(t, svc, owner.ID, category.ID, "Oxford")

	batchRef := "PO-7781"
	require.NoError(t, svc.AddStock(ctx, owner.ID, product.ID, StockIntake{
		Quantities: map[uuid.UUID]int{small.ID: 5},
		BatchRef:   &batchRef,
	}))
	require.NoError(t, svc.AddStock(ctx, owner.ID, product.ID, StockIntake{
		Quantities: map[uuid.UUID]int{small.ID: 3},
	}))

	var rows []models.SizeStock
	require.NoError(t, conn.Where("product_id = ?", product.ID).Find(&rows).Error)
	require.Len(t, rows, 2)

	total := 0
	for _, row := range rows {
		total += row.Quantity
	}
	assert.Equal(t, 8, total)
}

func TestReplaceMoqOptionsSkipsAllZeroConfigs(t *testing.T) {
	conn := newTestDB(t)
	svc := newTestService(t, conn)
	ctx := context.Background()

	owner := createOrg(t, conn, "Acme Traders", enums.OrgTypeWholesaler)
	category := createCategory(t, conn, "Shirts")
	product := mustCreateProduct(t, svc, owner.ID, category.ID, "Oxford")

	err := svc.ReplaceMoqOptions(ctx, owner.ID, product.ID, []types.PackConfig{
		{"S": 1, "M": 1},
		{"S": 0, "M": 0},
	})
	require.NoError(t, err)

	var rows []models.MoqOption
	require.NoError(t, conn.Where("product_id = ?", product.ID).Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, types.PackConfig{"S": 1, "M": 1}, rows[0].Config)
}

func TestListAvailablePacksFiltersByStock(t *testing.T) {
	conn := newTestDB(t)
	svc := newTestService(t, conn)
	ctx := context.Background()

	owner := createOrg(t, conn, "Acme Traders", enums.OrgTypeWholesaler)
	category := createCategory(t, conn, "Shirts")
	small := createSize(t, conn, "S")
	medium := createSize(t, conn, "M")
	large := createSize(t, conn, "L")
	pinCategorySize(t, conn, category, small, 0)
	pinCategorySize(t, conn, category, medium, 1)
	pinCategorySize(t, conn, category, large, 2)

	product := mustCreateProduct(t, svc, owner.ID, category.ID, "Oxford")
	require.NoError(t, svc.AddStock(ctx, owner.ID, product.ID, StockIntake{
		Quantities: map[uuid.UUID]int{small.ID: 5, medium.ID: 1},
	}))

	require.NoError(t, svc.ReplaceMoqOptions(ctx, owner.ID, product.ID, []types.PackConfig{
		{"S": 1, "M": 1},
		{"S": 1, "M": 2},
		{"S": 1, "L": 1},
	}))

	available, err := svc.ListAvailablePacks(ctx, product.ID)
	require.NoError(t, err)
	require.Len(t, available, 1)
	assert.Equal(t, "2 pcs | S,M | 1:1", available[0].Label)
	assert.Equal(t, 2, available[0].TotalQuantity)
}

func TestListOwnerProductsPagination(t *testing.T) {
	conn := newTestDB(t)
	svc := newTestService(t, conn)
	ctx := context.Background()

	owner := createOrg(t, conn, "Acme Traders", enums.OrgTypeWholesaler)
	category := createCategory(t, conn, "Shirts")
	mustCreateProduct(t, svc, owner.ID, category.ID, "Oxford")
	mustCreateProduct(t, svc, owner.ID, category.ID, "Flannel")
	mustCreateProduct(t, svc, owner.ID, category.ID, "Linen")

	page, err := svc.ListOwnerProducts(ctx, owner.ID, pagination.Params{Limit: 2}, ProductListFilters{})
	require.NoError(t, err)
	require.Len(t, page.Products, 2)
	require.NotEmpty(t, page.NextCursor)

	rest, err := svc.ListOwnerProducts(ctx, owner.ID, pagination.Params{Limit: 2, Cursor: page.NextCursor}, ProductListFilters{})
	require.NoError(t, err)
	require.Len(t, rest.Products, 1)
	assert.Empty(t, rest.NextCursor)
}

func TestListPublicProductsHidesUnstocked(t *testing.T) {
	conn := newTestDB(t)
	svc := newTestService(t, conn)
	ctx := context.Background()

	owner := createOrg(t, conn, "Acme Traders", enums.OrgTypeWholesaler)
	category := createCategory(t, conn, "Shirts")
	small := createSize(t, conn, "S")

	stocked := mustCreateProduct(t, svc, owner.ID, category.ID, "Oxford")
	mustCreateProduct(t, svc, owner.ID, category.ID, "Flannel")
	archived := mustCreateProduct(t, svc, owner.ID, category.ID, "Linen")
	require.NoError(t, svc.ArchiveProduct(ctx, owner.ID, archived.ID))

	require.NoError(t, svc.AddStock(ctx, owner.ID, stocked.ID, StockIntake{
		Quantities: map[uuid.UUID]int{small.ID: 4},
	}))

	page, err := svc.ListPublicProducts(ctx, pagination.Params{}, ProductListFilters{})
	require.NoError(t, err)
	require.Len(t, page.Products, 1)
	assert.Equal(t, stocked.ID, page.Products[0].ID)
}

func TestDashboardCounts(t *testing.T) {
	conn := newTestDB(t)
	svc := newTestService(t, conn)
	ctx := context.Background()

	owner := createOrg(t, conn, "Acme Traders", enums.OrgTypeWholesaler)
	category := createCategory(t, conn, "Shirts")
	small := createSize(t, conn, "S")

	active := mustCreateProduct(t, svc, owner.ID, category.ID, "Oxford")
	low := mustCreateProduct(t, svc, owner.ID, category.ID, "Linen")
	mustCreateProduct(t, svc, owner.ID, category.ID, "Denim")
	archived := mustCreateProduct(t, svc, owner.ID, category.ID, "Flannel")
	require.NoError(t, svc.ArchiveProduct(ctx, owner.ID, archived.ID))

	require.NoError(t, svc.AddStock(ctx, owner.ID, active.ID, StockIntake{
		Quantities: map[uuid.UUID]int{small.ID: 7},
	}))
	require.NoError(t, svc.AddStock(ctx, owner.ID, low.ID, StockIntake{
		Quantities: map[uuid.UUID]int{small.ID: 3},
	}))

	counts, err := svc.Dashboard(ctx, owner.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 4, counts.TotalProducts)
	assert.EqualValues(t, 3, counts.ActiveProducts)
	assert.EqualValues(t, 1, counts.OutOfStockProducts)
	assert.EqualValues(t, 1, counts.LowStockProducts)
	assert.EqualValues(t, 10, counts.TotalStockUnits)
}
