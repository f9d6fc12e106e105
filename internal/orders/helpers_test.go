package orders

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/threadbazaar/threadbazaar-backend/pkg/db"
	"github.com/threadbazaar/threadbazaar-backend/pkg/db/models"
	"github.com/threadbazaar/threadbazaar-backend/pkg/enums"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:orders_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, conn.AutoMigrate(
		&models.Organization{},
		&models.Order{},
		&models.OrderItem{},
		&models.Shipment{},
		&models.Payout{},
	))
	return conn
}

func newTestService(t *testing.T, conn *gorm.DB) Service {
	t.Helper()

	svc, err := NewService(NewRepository(conn), db.NewWithConn(conn), nil)
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

func createOrder(t *testing.T, conn *gorm.DB, retailer, wholesaler *models.Organization, status enums.OrderStatus) *models.Order {
	t.Helper()

	number, err := NewOrderNumber()
	require.NoError(t, err)

	order := &models.Order{
		ID:              uuid.New(),
		OrderNumber:     number,
		RetailerOrgID:   retailer.ID,
		WholesalerOrgID: wholesaler.ID,
		Status:          status,
		PaymentMethod:   enums.PaymentMethodUPI,
		Subtotal:        decimal.NewFromInt(1200),
		GrandTotal:      decimal.NewFromInt(1200),
	}
	require.NoError(t, conn.Create(order).Error)
	return order
}

func retailerActor(org *models.Organization) Actor {
	return Actor{UserID: uuid.New(), OrgID: org.ID, OrgType: enums.OrgTypeRetailer, Role: enums.RoleMember}
}

func wholesalerActor(org *models.Organization) Actor {
	return Actor{UserID: uuid.New(), OrgID: org.ID, OrgType: enums.OrgTypeWholesaler, Role: enums.RoleMember}
}

func adminActor() Actor {
	return Actor{UserID: uuid.New(), OrgID: uuid.New(), Role: enums.RoleAdmin}
}
