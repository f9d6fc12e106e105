package payments

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/threadbazaar/threadbazaar-backend/internal/orders"
	"github.com/threadbazaar/threadbazaar-backend/pkg/config"
	"github.com/threadbazaar/threadbazaar-backend/pkg/db"
	"github.com/threadbazaar/threadbazaar-backend/pkg/db/models"
	"github.com/threadbazaar/threadbazaar-backend/pkg/enums"
	"github.com/threadbazaar/threadbazaar-backend/pkg/razorpay"
)

const testSecret = "test_secret"

// fakeGateway implements razorpay.Gateway in memory.
type fakeGateway struct {
	createdOrders int
	transfers     int
	failTransfer  bool
	lastAmount    int64
	lastAccountID string
	lastPaymentID string
}

func (f *fakeGateway) CreateOrder(_ context.Context, amount int64, currency, receipt string) (*razorpay.Order, error) {
	f.createdOrders++
	return &razorpay.Order{
		ID:       fmt.Sprintf("order_fake%03d", f.createdOrders),
		Amount:   amount,
		Currency: currency,
		Receipt:  receipt,
		Status:   "created",
	}, nil
}

func (f *fakeGateway) TransferToAccount(_ context.Context, paymentID, accountID string, amount int64, currency string) (*razorpay.Transfer, error) {
	if f.failTransfer {
		return nil, &razorpay.APIError{Status: 502, Body: "gateway sad"}
	}
	f.transfers++
	f.lastAmount = amount
	f.lastAccountID = accountID
	f.lastPaymentID = paymentID
	return &razorpay.Transfer{
		ID:        fmt.Sprintf("trf_fake%03d", f.transfers),
		Recipient: accountID,
		Amount:    amount,
		Currency:  currency,
		Status:    "processed",
	}, nil
}

func (f *fakeGateway) VerifyPaymentSignature(orderID, paymentID, signature string) bool {
	return razorpay.VerifySignature(orderID+"|"+paymentID, signature, testSecret)
}

func sign(orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(testSecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:payments_" + uuid.NewString() + "?mode=memory&cache=shared"
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

func newTestService(t *testing.T, conn *gorm.DB, gateway razorpay.Gateway) Service {
	t.Helper()

	cfg := config.PaymentsConfig{CommissionPercent: 5, Currency: "INR"}
	svc, err := NewService(orders.NewRepository(conn), db.NewWithConn(conn), gateway, cfg, nil)
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

func withBankDetails(t *testing.T, conn *gorm.DB, org *models.Organization) {
	t.Helper()

	account := "000111222333"
	ifsc := "HDFC0001234"
	holder := org.Name
	linked := "acc_fake001"
	org.BankAccountNumber = &account
	org.BankIFSC = &ifsc
	org.BankAccountHolder = &holder
	org.RazorpayAccountID = &linked
	require.NoError(t, conn.Save(org).Error)
}

func createOrder(t *testing.T, conn *gorm.DB, retailer, wholesaler *models.Organization, status enums.OrderStatus) *models.Order {
	t.Helper()

	number, err := orders.NewOrderNumber()
	require.NoError(t, err)

	order := &models.Order{
		ID:              uuid.New(),
		OrderNumber:     number,
		RetailerOrgID:   retailer.ID,
		WholesalerOrgID: wholesaler.ID,
		Status:          status,
		PaymentMethod:   enums.PaymentMethodUPI,
		Subtotal:        decimal.NewFromInt(1200),
		ShippingCharge:  decimal.NewFromInt(150),
		GSTAmount:       decimal.NewFromInt(60),
		GrandTotal:      decimal.NewFromInt(1410),
	}
	require.NoError(t, conn.Create(order).Error)
	return order
}

func markPaid(t *testing.T, conn *gorm.DB, order *models.Order, gatewayOrderID, paymentID string) {
	t.Helper()

	require.NoError(t, conn.Model(order).Updates(map[string]any{
		"razorpay_order_id":   gatewayOrderID,
		"razorpay_payment_id": paymentID,
	}).Error)
	order.RazorpayOrderID = &gatewayOrderID
	order.RazorpayPaymentID = &paymentID
}

func retailerActor(org *models.Organization) orders.Actor {
	return orders.Actor{UserID: uuid.New(), OrgID: org.ID, OrgType: enums.OrgTypeRetailer, Role: enums.RoleMember}
}

func wholesalerActor(org *models.Organization) orders.Actor {
	return orders.Actor{UserID: uuid.New(), OrgID: org.ID, OrgType: enums.OrgTypeWholesaler, Role: enums.RoleMember}
}
