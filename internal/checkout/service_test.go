package checkout

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/threadbazaar/threadbazaar-backend/internal/inventory"
	"github.com/threadbazaar/threadbazaar-backend/pkg/db/models"
	"github.com/threadbazaar/threadbazaar-backend/pkg/enums"
	pkgerrors "github.com/threadbazaar/threadbazaar-backend/pkg/errors"
)

func TestCreateFromCartPackDeduction(t *testing.T) {
	conn := newTestDB(t)
	svc := newTestService(t, conn)
	ctx := context.Background()

	retailer := createOrg(t, conn, "Corner Shop", enums.OrgTypeRetailer)
	wholesaler := createOrg(t, conn, "Acme Traders", enums.OrgTypeWholesaler)
	small := createSize(t, conn, "S")
	medium := createSize(t, conn, "M")
	product := createProduct(t, conn, wholesaler, "Oxford", "ACM-SHIR-0001")
	addStock(t, conn, product, small, 5)
	addStock(t, conn, product, medium, 5)

	created, err := svc.CreateFromCart(ctx, Input{
		RetailerOrgID: retailer.ID,
		Lines: []CartLine{{
			ProductID: product.ID,
			Quantity:  4,
			UnitPrice: decimal.NewFromInt(300),
			PackLabel: str("2 pcs | S,M | 1:1"),
		}},
	})
	require.NoError(t, err)
	require.Len(t, created, 1)

	order := created[0]
	assert.Equal(t, enums.OrderStatusPending, order.Status)
	assert.True(t, order.Subtotal.Equal(decimal.NewFromInt(1200)), "got %s", order.Subtotal)
	assert.True(t, order.GrandTotal.Equal(order.Subtotal))
	require.Len(t, order.Items, 1)
	assert.Equal(t, 2, order.Items[0].NumPacks)
	assert.Equal(t, "ACM-SHIR-0001", order.Items[0].SKU)

	// two packs of 1:1 take two units from each size
	assert.Equal(t, 3, stockFor(t, conn, product, small))
	assert.Equal(t, 3, stockFor(t, conn, product, medium))
}

func TestCreateFromCartShortfallCreatesNothing(t *testing.T) {
	conn := newTestDB(t)
	svc := newTestService(t, conn)
	ctx := context.Background()

	retailer := createOrg(t, conn, "Corner Shop", enums.OrgTypeRetailer)
	wholesaler := createOrg(t, conn, "Acme Traders", enums.OrgTypeWholesaler)
	small := createSize(t, conn, "S")
	medium := createSize(t, conn, "M")
	product := createProduct(t, conn, wholesaler, "Oxford", "ACM-SHIR-0001")
	addStock(t, conn, product, small, 5)
	addStock(t, conn, product, medium, 1)

	_, err := svc.CreateFromCart(ctx, Input{
		RetailerOrgID: retailer.ID,
		Lines: []CartLine{{
			ProductID: product.ID,
			Quantity:  4,
			UnitPrice: decimal.NewFromInt(300),
			PackLabel: str("2 pcs | S,M | 1:1"),
		}},
	})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeInsufficientStock, typed.Code())

	shortfalls, ok := typed.Details().([]inventory.Shortfall)
	require.True(t, ok)
	require.Len(t, shortfalls, 1)
	assert.Equal(t, "M", shortfalls[0].SizeName)

	var orderCount int64
	require.NoError(t, conn.Model(&models.Order{}).Count(&orderCount).Error)
	assert.EqualValues(t, 0, orderCount)

	// the satisfiable size is untouched too
	assert.Equal(t, 5, stockFor(t, conn, product, small))
	assert.Equal(t, 1, stockFor(t, conn, product, medium))
}

func TestCreateFromCartMultiWholesalerAtomicity(t *testing.T) {
	conn := newTestDB(t)
	svc := newTestService(t, conn)
	ctx := context.Background()

	retailer := createOrg(t, conn, "Corner Shop", enums.OrgTypeRetailer)
	acme := createOrg(t, conn, "Acme Traders", enums.OrgTypeWholesaler)
	bolt := createOrg(t, conn, "Bolt Mills", enums.OrgTypeWholesaler)
	small := createSize(t, conn, "S")

	stocked := createProduct(t, conn, acme, "Oxford", "ACM-SHIR-0001")
	addStock(t, conn, stocked, small, 10)
	starved := createProduct(t, conn, bolt, "Flannel", "BOL-SHIR-0001")
	addStock(t, conn, starved, small, 1)

	_, err := svc.CreateFromCart(ctx, Input{
		RetailerOrgID: retailer.ID,
		Lines: []CartLine{
			{
				ProductID: stocked.ID,
				Quantity:  2,
				UnitPrice: decimal.NewFromInt(300),
				PackLabel: str("1 pcs | S | 1"),
			},
			{
				ProductID: starved.ID,
				Quantity:  4,
				UnitPrice: decimal.NewFromInt(250),
				PackLabel: str("1 pcs | S | 1"),
			},
		},
	})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeInsufficientStock, typed.Code())

	// the healthy partition must not survive the sibling's failure
	var orderCount int64
	require.NoError(t, conn.Model(&models.Order{}).Count(&orderCount).Error)
	assert.EqualValues(t, 0, orderCount)
	assert.Equal(t, 10, stockFor(t, conn, stocked, small))
	assert.Equal(t, 1, stockFor(t, conn, starved, small))
}

func TestCreateFromCartSplitsPerWholesaler(t *testing.T) {
	conn := newTestDB(t)
	svc := newTestService(t, conn)
	ctx := context.Background()

	retailer := createOrg(t, conn, "Corner Shop", enums.OrgTypeRetailer)
	acme := createOrg(t, conn, "Acme Traders", enums.OrgTypeWholesaler)
	bolt := createOrg(t, conn, "Bolt Mills", enums.OrgTypeWholesaler)

	first := createProduct(t, conn, acme, "Oxford", "ACM-SHIR-0001")
	second := createProduct(t, conn, bolt, "Flannel", "BOL-SHIR-0001")

	created, err := svc.CreateFromCart(ctx, Input{
		RetailerOrgID: retailer.ID,
		Lines: []CartLine{
			{ProductID: first.ID, Quantity: 3, UnitPrice: decimal.NewFromInt(300)},
			{ProductID: second.ID, Quantity: 2, UnitPrice: decimal.NewFromInt(250)},
		},
	})
	require.NoError(t, err)
	require.Len(t, created, 2)

	byWholesaler := make(map[string]models.Order, 2)
	for _, order := range created {
		byWholesaler[order.WholesalerOrgID.String()] = order
	}
	acmeOrder := byWholesaler[acme.ID.String()]
	boltOrder := byWholesaler[bolt.ID.String()]
	assert.True(t, acmeOrder.Subtotal.Equal(decimal.NewFromInt(900)))
	assert.True(t, boltOrder.Subtotal.Equal(decimal.NewFromInt(500)))
	assert.NotEqual(t, acmeOrder.OrderNumber, boltOrder.OrderNumber)
}

func TestCreateFromCartPlainLinesSkipReservation(t *testing.T) {
	conn := newTestDB(t)
	svc := newTestService(t, conn)
	ctx := context.Background()

	retailer := createOrg(t, conn, "Corner Shop", enums.OrgTypeRetailer)
	wholesaler := createOrg(t, conn, "Acme Traders", enums.OrgTypeWholesaler)
	small := createSize(t, conn, "S")
	product := createProduct(t, conn, wholesaler, "Oxford", "ACM-SHIR-0001")
	addStock(t, conn, product, small, 5)

	created, err := svc.CreateFromCart(ctx, Input{
		RetailerOrgID: retailer.ID,
		Lines: []CartLine{{
			ProductID: product.ID,
			Quantity:  3,
			UnitPrice: decimal.NewFromInt(300),
		}},
	})
	require.NoError(t, err)
	require.Len(t, created, 1)

	// only pack-labelled lines drive per-size deduction
	assert.Equal(t, 5, stockFor(t, conn, product, small))
	assert.Equal(t, 0, created[0].Items[0].NumPacks)
	assert.Nil(t, created[0].Items[0].PackLabel)
}

func TestCreateFromCartValidation(t *testing.T) {
	conn := newTestDB(t)
	svc := newTestService(t, conn)
	ctx := context.Background()

	retailer := createOrg(t, conn, "Corner Shop", enums.OrgTypeRetailer)
	wholesaler := createOrg(t, conn, "Acme Traders", enums.OrgTypeWholesaler)
	product := createProduct(t, conn, wholesaler, "Oxford", "ACM-SHIR-0001")

	cases := []struct {
		name  string
		input Input
		code  pkgerrors.Code
	}{
		{
			name:  "empty cart",
			input: Input{RetailerOrgID: retailer.ID},
			code:  pkgerrors.CodeValidation,
		},
		{
			name: "zero quantity",
			input: Input{
				RetailerOrgID: retailer.ID,
				Lines:         []CartLine{{ProductID: product.ID, Quantity: 0, UnitPrice: decimal.NewFromInt(300)}},
			},
			code: pkgerrors.CodeValidation,
		},
		{
			name: "wholesaler as buyer",
			input: Input{
				RetailerOrgID: wholesaler.ID,
				Lines:         []CartLine{{ProductID: product.ID, Quantity: 1, UnitPrice: decimal.NewFromInt(300)}},
			},
			code: pkgerrors.CodeForbidden,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateFromCart(ctx, tc.input)
			require.Error(t, err)
			typed := pkgerrors.As(err)
			require.NotNil(t, typed)
			assert.Equal(t, tc.code, typed.Code())
		})
	}
}
