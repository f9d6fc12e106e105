package routes

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/threadbazaar/threadbazaar-backend/internal/catalog"
	checkoutsvc "github.com/threadbazaar/threadbazaar-backend/internal/checkout"
	"github.com/threadbazaar/threadbazaar-backend/internal/inventory"
	"github.com/threadbazaar/threadbazaar-backend/internal/orders"
	"github.com/threadbazaar/threadbazaar-backend/internal/payments"
	"github.com/threadbazaar/threadbazaar-backend/pkg/auth"
	"github.com/threadbazaar/threadbazaar-backend/pkg/config"
	"github.com/threadbazaar/threadbazaar-backend/pkg/db"
	"github.com/threadbazaar/threadbazaar-backend/pkg/db/models"
	"github.com/threadbazaar/threadbazaar-backend/pkg/enums"
	"github.com/threadbazaar/threadbazaar-backend/pkg/logger"
	"github.com/threadbazaar/threadbazaar-backend/pkg/razorpay"
)

const gatewaySecret = "router-test-secret"

type fakeGateway struct {
	createdOrders int
	transfers     int
}

func (f *fakeGateway) CreateOrder(_ context.Context, amount int64, currency, receipt string) (*razorpay.Order, error) {
	f.createdOrders++
	return &razorpay.Order{
		ID:       fmt.Sprintf("order_rt%03d", f.createdOrders),
		Amount:   amount,
		Currency: currency,
		Receipt:  receipt,
		Status:   "created",
	}, nil
}

func (f *fakeGateway) TransferToAccount(_ context.Context, paymentID, accountID string, amount int64, currency string) (*razorpay.Transfer, error) {
	f.transfers++
	return &razorpay.Transfer{
		ID:        fmt.Sprintf("trf_rt%03d", f.transfers),
		Recipient: accountID,
		Amount:    amount,
		Currency:  currency,
		Status:    "processed",
	}, nil
}

func (f *fakeGateway) VerifyPaymentSignature(orderID, paymentID, signature string) bool {
	return razorpay.VerifySignature(orderID+"|"+paymentID, signature, gatewaySecret)
}

func signPayment(orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(gatewaySecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

type testEnv struct {
	router  http.Handler
	conn    *gorm.DB
	jwt     config.JWTConfig
	gateway *fakeGateway
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := "file:routes_" + uuid.NewString() + "?mode=memory&cache=shared"
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
		&models.Order{},
		&models.OrderItem{},
		&models.Shipment{},
		&models.Payout{},
	))

	cfg := &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:            "router-test-jwt-secret",
			Issuer:            "threadbazaar-test",
			ExpirationMinutes: 15,
		},
		Payments: config.PaymentsConfig{CommissionPercent: 5, Currency: "INR"},
	}

	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	dbClient := db.NewWithConn(conn)
	ordersRepo := orders.NewRepository(conn)

	catalogService, err := catalog.NewService(dbClient, catalog.NewRepository(conn), inventory.NewRepository(conn))
	require.NoError(t, err)
	checkoutService, err := checkoutsvc.NewService(dbClient, checkoutsvc.NewRepository(conn), ordersRepo, nil)
	require.NoError(t, err)
	ordersService, err := orders.NewService(ordersRepo, dbClient, nil)
	require.NoError(t, err)

	gateway := &fakeGateway{}
	paymentsService, err := payments.NewService(ordersRepo, dbClient, gateway, cfg.Payments, nil)
	require.NoError(t, err)

	router := NewRouter(cfg, logg, dbClient, nil, nil, catalogService, checkoutService, ordersService, paymentsService)
	return &testEnv{router: router, conn: conn, jwt: cfg.JWT, gateway: gateway}
}

func (e *testEnv) mintToken(t *testing.T, orgID uuid.UUID, orgType enums.OrgType, role enums.Role) string {
	t.Helper()
	token, err := auth.MintAccessToken(e.jwt, time.Now(), auth.AccessTokenPayload{
		UserID:  uuid.New(),
		OrgID:   orgID,
		OrgType: orgType,
		Role:    role,
	})
	require.NoError(t, err)
	return token
}

func (e *testEnv) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dest any) {
	t.Helper()
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope), rec.Body.String())
	require.NoError(t, json.Unmarshal(envelope.Data, dest), rec.Body.String())
}

func (e *testEnv) seedOrg(t *testing.T, name string, orgType enums.OrgType, banked bool) *models.Organization {
	t.Helper()
	org := &models.Organization{
		ID:      uuid.New(),
		Name:    name,
		OrgType: orgType,
		Email:   strings.ToLower(strings.ReplaceAll(name, " ", "")) + "@example.com",
	}
	if banked {
		account := "000111222333"
		ifsc := "HDFC0001234"
		holder := name
		linked := "acc_router001"
		org.BankAccountNumber = &account
		org.BankIFSC = &ifsc
		org.BankAccountHolder = &holder
		org.RazorpayAccountID = &linked
	}
	require.NoError(t, e.conn.Create(org).Error)
	return org
}

func (e *testEnv) seedSize(t *testing.T, name string) *models.Size {
	t.Helper()
	size := &models.Size{ID: uuid.New(), Name: name}
	require.NoError(t, e.conn.Create(size).Error)
	return size
}

func TestRouterRequiresAuth(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/orders", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodGet, "/health/live", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestVendorRoutesRejectRetailers(t *testing.T) {
	env := newTestEnv(t)
	retailer := env.seedOrg(t, "Corner Shop", enums.OrgTypeRetailer, false)
	token := env.mintToken(t, retailer.ID, enums.OrgTypeRetailer, enums.RoleMember)

	rec := env.do(t, http.MethodGet, "/api/v1/vendor/dashboard", token, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAdminRoutesRejectMembers(t *testing.T) {
	env := newTestEnv(t)
	retailer := env.seedOrg(t, "Corner Shop", enums.OrgTypeRetailer, false)
	token := env.mintToken(t, retailer.ID, enums.OrgTypeRetailer, enums.RoleMember)

	rec := env.do(t, http.MethodGet, "/api/v1/admin/orders", token, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

// Walks the whole marketplace flow over HTTP: listing, stocking,
// checkout, charge quoting, payment, shipping and payout release.
func TestRouterFullLifecycle(t *testing.T) {
	env := newTestEnv(t)

	retailer := env.seedOrg(t, "Corner Shop", enums.OrgTypeRetailer, false)
	wholesaler := env.seedOrg(t, "Acme Traders", enums.OrgTypeWholesaler, true)
	category := &models.Category{ID: uuid.New(), Name: "T-Shirts"}
	require.NoError(t, env.conn.Create(category).Error)
	small := env.seedSize(t, "S")
	medium := env.seedSize(t, "M")
	require.NoError(t, env.conn.Create(&models.CategorySize{ID: uuid.New(), CategoryID: category.ID, SizeID: small.ID, Position: 0}).Error)
	require.NoError(t, env.conn.Create(&models.CategorySize{ID: uuid.New(), CategoryID: category.ID, SizeID: medium.ID, Position: 1}).Error)

	vendorToken := env.mintToken(t, wholesaler.ID, enums.OrgTypeWholesaler, enums.RoleMember)
	buyerToken := env.mintToken(t, retailer.ID, enums.OrgTypeRetailer, enums.RoleMember)

	// vendor lists a product
	rec := env.do(t, http.MethodPost, "/api/v1/vendor/products", vendorToken, fmt.Sprintf(
		`{"category_id":%q,"name":"Crew Neck Tee","wholesale_price":"300","retail_price":"500"}`, category.ID))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var product models.Product
	decodeData(t, rec, &product)
	require.NotEqual(t, uuid.Nil, product.ID)
	require.NotEmpty(t, product.SKU)

	// vendor receives stock for both sizes
	rec = env.do(t, http.MethodPost, fmt.Sprintf("/api/v1/vendor/products/%s/stock", product.ID), vendorToken, fmt.Sprintf(
		`{"quantities":{%q:5,%q:5},"batch_ref":"LOT-1"}`, small.ID, medium.ID))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// vendor publishes a 1:1 pack
	rec = env.do(t, http.MethodPut, fmt.Sprintf("/api/v1/vendor/products/%s/packs", product.ID), vendorToken,
		`{"configs":[{"S":1,"M":1}]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// retailer sees the product and its fulfillable packs
	rec = env.do(t, http.MethodGet, fmt.Sprintf("/api/v1/products/%s/packs", product.ID), buyerToken, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var packs []catalog.PackOption
	decodeData(t, rec, &packs)
	require.Len(t, packs, 1)
	assert.Equal(t, "2 pcs | S,M | 1:1", packs[0].Label)

	// retailer checks out two packs
	rec = env.do(t, http.MethodPost, "/api/v1/checkout", buyerToken, fmt.Sprintf(
		`{"payment_method":"upi","lines":[{"product_id":%q,"quantity":4,"unit_price":"300","pack_label":"2 pcs | S,M | 1:1"}]}`, product.ID))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created struct {
		Orders []models.Order `json:"orders"`
	}
	decodeData(t, rec, &created)
	require.Len(t, created.Orders, 1)
	order := created.Orders[0]
	assert.Equal(t, enums.OrderStatusPending, order.Status)
	assert.True(t, order.Subtotal.Equal(order.GrandTotal))

	// wholesaler quotes shipping and GST
	rec = env.do(t, http.MethodPost, fmt.Sprintf("/api/v1/orders/%s/charges", order.ID), vendorToken,
		`{"shipping_charge":"150","gst_amount":"60"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var quoted models.Order
	decodeData(t, rec, &quoted)
	assert.Equal(t, enums.OrderStatusAwaitingPayment, quoted.Status)

	// retailer opens a gateway payment
	rec = env.do(t, http.MethodPost, fmt.Sprintf("/api/v1/orders/%s/pay", order.ID), buyerToken, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var intent payments.CaptureIntentResult
	decodeData(t, rec, &intent)
	require.NotEmpty(t, intent.GatewayOrderID)
	assert.EqualValues(t, 141000, intent.Amount)

	// gateway confirms the payment; no bearer token on this route
	rec = env.do(t, http.MethodPost, "/api/v1/webhooks/razorpay", "", fmt.Sprintf(
		`{"razorpay_order_id":%q,"razorpay_payment_id":"pay_rt001","razorpay_signature":%q,"method":"upi"}`,
		intent.GatewayOrderID, signPayment(intent.GatewayOrderID, "pay_rt001")))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// wholesaler ships
	rec = env.do(t, http.MethodPost, fmt.Sprintf("/api/v1/orders/%s/shipment", order.ID), vendorToken,
		`{"courier":"Delhivery","tracking_number":"DL42"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// escrow releases to the wholesaler
	rec = env.do(t, http.MethodPost, fmt.Sprintf("/api/v1/orders/%s/release", order.ID), vendorToken, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var completed models.Order
	decodeData(t, rec, &completed)
	assert.Equal(t, enums.OrderStatusCompleted, completed.Status)
	require.NotNil(t, completed.Payout)
	assert.Equal(t, 1, env.gateway.transfers)

	// retailer sees the completed order in their listing
	rec = env.do(t, http.MethodGet, "/api/v1/orders?status=COMPLETED", buyerToken, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var list orders.ListResult
	decodeData(t, rec, &list)
	require.Len(t, list.Orders, 1)
	assert.Equal(t, order.ID, list.Orders[0].ID)
}

func TestCheckoutShortfallSurfacesDetails(t *testing.T) {
	env := newTestEnv(t)

	retailer := env.seedOrg(t, "Corner Shop", enums.OrgTypeRetailer, false)
	wholesaler := env.seedOrg(t, "Acme Traders", enums.OrgTypeWholesaler, false)
	category := &models.Category{ID: uuid.New(), Name: "T-Shirts"}
	require.NoError(t, env.conn.Create(category).Error)
	env.seedSize(t, "S")

	vendorToken := env.mintToken(t, wholesaler.ID, enums.OrgTypeWholesaler, enums.RoleMember)
	buyerToken := env.mintToken(t, retailer.ID, enums.OrgTypeRetailer, enums.RoleMember)

	rec := env.do(t, http.MethodPost, "/api/v1/vendor/products", vendorToken, fmt.Sprintf(
		`{"category_id":%q,"name":"Crew Neck Tee","wholesale_price":"300","retail_price":"500"}`, category.ID))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var product models.Product
	decodeData(t, rec, &product)

	// no stock received, so any pack checkout must fail with details
	rec = env.do(t, http.MethodPost, "/api/v1/checkout", buyerToken, fmt.Sprintf(
		`{"lines":[{"product_id":%q,"quantity":1,"unit_price":"300","pack_label":"1 pcs | S | 1"}]}`, product.ID))
	require.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())

	var envelope struct {
		Error struct {
			Code    string          `json:"code"`
			Details json.RawMessage `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "INSUFFICIENT_STOCK", envelope.Error.Code)
	assert.NotEmpty(t, envelope.Error.Details)

	var count int64
	require.NoError(t, env.conn.Model(&models.Order{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}
