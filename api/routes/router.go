package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/threadbazaar/threadbazaar-backend/api/controllers"
	"github.com/threadbazaar/threadbazaar-backend/api/middleware"
	"github.com/threadbazaar/threadbazaar-backend/internal/catalog"
	checkoutsvc "github.com/threadbazaar/threadbazaar-backend/internal/checkout"
	"github.com/threadbazaar/threadbazaar-backend/internal/orders"
	"github.com/threadbazaar/threadbazaar-backend/internal/payments"
	"github.com/threadbazaar/threadbazaar-backend/pkg/config"
	"github.com/threadbazaar/threadbazaar-backend/pkg/db"
	"github.com/threadbazaar/threadbazaar-backend/pkg/enums"
	"github.com/threadbazaar/threadbazaar-backend/pkg/logger"
	"github.com/threadbazaar/threadbazaar-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	metricsHandler http.Handler,
	catalogService catalog.Service,
	checkoutService checkoutsvc.Service,
	ordersService orders.Service,
	paymentsService payments.Service,
) http.Handler {
	// Typed nils must not leak into interface params downstream.
	var idemStore redis.IdempotencyStore
	var cachePinger redis.Pinger
	var rateLimiter redis.RateLimiter
	if redisClient != nil {
		idemStore = redisClient
		cachePinger = redisClient
		rateLimiter = redisClient
	}

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, dbP, cachePinger, logg))
	})

	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	// Gateway callbacks authenticate by signature, not bearer token, so
	// the surface gets a counter-based throttle instead.
	webhookPolicy := middleware.NewRateLimitPolicy(
		"webhook",
		cfg.RateLimit.WebhookWindow,
		cfg.RateLimit.WebhookIPLimit,
		cfg.RateLimit.WebhookOrderLimit,
	)
	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Use(middleware.RateLimit(webhookPolicy, rateLimiter, logg))
		r.Post("/razorpay", controllers.RazorpayWebhook(paymentsService, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(idemStore, logg))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ListPublicProducts(catalogService, logg))
			r.Get("/{productID}", controllers.GetProduct(catalogService, logg))
			r.Get("/{productID}/packs", controllers.ListAvailablePacks(catalogService, logg))
		})

		r.Route("/vendor", func(r chi.Router) {
			r.Use(middleware.RequireOrgType(enums.OrgTypeWholesaler, logg))

			r.Get("/dashboard", controllers.VendorDashboard(catalogService, logg))
			r.Route("/products", func(r chi.Router) {
				r.Get("/", controllers.ListVendorProducts(catalogService, logg))
				r.Post("/", controllers.CreateProduct(catalogService, logg))
				r.Patch("/{productID}", controllers.UpdateProduct(catalogService, logg))
				r.Delete("/{productID}", controllers.ArchiveProduct(catalogService, logg))
				r.Post("/{productID}/stock", controllers.AddStock(catalogService, logg))
				r.Put("/{productID}/packs", controllers.ReplacePacks(catalogService, logg))
			})
		})

		r.Post("/checkout", controllers.Checkout(checkoutService, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.ListOrders(ordersService, logg))
			r.Get("/lookup", controllers.GetOrderByNumber(ordersService, logg))
			r.Get("/summary", controllers.OrderStatusSummary(ordersService, logg))
			r.Get("/{orderID}", controllers.GetOrder(ordersService, logg))
			r.Post("/{orderID}/status", controllers.UpdateOrderStatus(ordersService, logg))
			r.Post("/{orderID}/cancel", controllers.CancelOrder(ordersService, logg))
			r.Post("/{orderID}/charges", controllers.AddOrderCharges(ordersService, logg))
			r.Post("/{orderID}/shipment", controllers.CreateOrderShipment(ordersService, logg))
			r.Post("/{orderID}/pay", controllers.PayOrder(paymentsService, logg))
			r.Post("/{orderID}/release", controllers.ReleaseOrderFunds(paymentsService, logg))
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireRole(enums.RoleAdmin, logg))
			r.Get("/orders", controllers.ListOrders(ordersService, logg))
			r.Post("/orders/{orderID}/status", controllers.UpdateOrderStatus(ordersService, logg))
		})
	})

	return r
}
