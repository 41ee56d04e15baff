package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dinehub/internal/auth"
	"dinehub/internal/bridge"
	"dinehub/internal/cache"
	"dinehub/internal/cart"
	cart_api "dinehub/internal/cart/api"
	cartredis "dinehub/internal/cart/redis"
	"dinehub/internal/checkout"
	checkout_api "dinehub/internal/checkout/api"
	"dinehub/internal/config"
	"dinehub/internal/kafka"
	"dinehub/internal/logger"
	"dinehub/internal/models"
	"dinehub/internal/orders"
	order_api "dinehub/internal/orders/api"
	order_db "dinehub/internal/orders/db"
	"dinehub/internal/payment"
	payment_api "dinehub/internal/payment/api"
	"dinehub/internal/pricing"
	"dinehub/internal/receipt"
	"dinehub/internal/sse"
	"dinehub/internal/tables"
	table_api "dinehub/internal/tables/api"
	table_db "dinehub/internal/tables/db"
	"dinehub/internal/tables/qr"

	"github.com/go-chi/chi/v5"
	chi_middleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
)

func verifyConnections(ctx context.Context, cfg *config.Config, logger *logger.Logger) (*bun.DB, *redis.Client) {
	var sqldb *sql.DB
	var err error
	maxRetries := 5

	for i := 0; i < maxRetries; i++ {
		logger.Info("DATABASE", fmt.Sprintf("Attempting to connect to PostgreSQL (attempt %d/%d)", i+1, maxRetries))
		sqldb, err = sql.Open("postgres", cfg.Database.DSN)
		if err != nil {
			logger.Error("DATABASE", fmt.Sprintf("Failed to open PostgreSQL: %v", err))
			time.Sleep(2 * time.Second)
			continue
		}

		err = sqldb.Ping()
		if err == nil {
			break
		}

		logger.Error("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL: %v", err))
		if i < maxRetries-1 {
			time.Sleep(2 * time.Second)
		}
	}

	if err != nil {
		logger.Fatal("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL after %d attempts: %v", maxRetries, err))
	}

	sqldb.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqldb.SetConnMaxLifetime(cfg.Database.MaxLifetime)
	logger.Info("DATABASE", "✅ PostgreSQL connection successful")

	bunDB := bun.NewDB(sqldb, pgdialect.New())

	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.Redis.Addr,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal("DATABASE", fmt.Sprintf("Redis connection error: %v", err))
	}

	logger.Info("DATABASE", fmt.Sprintf("✅ Redis connection successful to %s", cfg.Redis.Addr))
	return bunDB, redisClient
}

// requestLogger logs every request through the API category once the
// response is written. SSE streams only log when the client disconnects.
func requestLogger(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chi_middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.LogAPI(r.Method, r.URL.Path, fmt.Sprintf("%d", ww.Status()), time.Since(start).String())
		})
	}
}

func main() {
	logger := logger.NewLogger()
	defer logger.Close()

	logger.Info("APP", "Starting DineHub gateway initialization")

	if err := godotenv.Load(); err != nil {
		logger.Warn("CONFIG", ".env file not found, using environment variables")
	} else {
		logger.Info("CONFIG", "Loaded environment variables from .env file")
	}

	cfg := config.Load()
	ctx := context.Background()

	logger.Info("APP", "Verifying database connections")
	bunDB, redisClient := verifyConnections(ctx, cfg, logger)
	defer bunDB.Close()
	defer redisClient.Close()

	topics := kafka.TopicRouter{
		OrderEvents:   cfg.Kafka.Topics.OrderEvents,
		TableEvents:   cfg.Kafka.Topics.TableEvents,
		PaymentEvents: cfg.Kafka.Topics.PaymentEvents,
	}
	if err := kafka.EnsureTopicsExist(cfg.Kafka.Brokers, topics.Topics()); err != nil {
		logger.Warn("KAFKA", fmt.Sprintf("Topic creation might have failed: %v", err))
	} else {
		logger.Info("KAFKA", "Required topics ensured successfully")
	}

	producer := kafka.NewProducer(cfg.Kafka.Brokers, topics, logger)
	defer producer.Close()
	logger.Info("KAFKA", "Kafka producer initialized successfully")

	rates := pricing.Rates{
		TaxBps:           cfg.Pricing.TaxBps,
		ServiceChargeBps: cfg.Pricing.ServiceChargeBps,
	}

	cartStore := cartredis.NewStore(redisClient, cfg.Cart.SessionTTL)
	cartService := cart.NewService(cartStore, rates, logger)

	orderService := orders.NewService(&order_db.DB{Bun: bunDB}, producer, rates, logger)
	tableService := tables.NewService(&table_db.DB{Bun: bunDB}, producer, logger)
	checkoutService := checkout.NewService(&checkout.DB{Bun: bunDB}, logger)

	stripeService, err := payment.NewStripeService(cfg.Stripe.Currency, logger)
	if err != nil {
		logger.Fatal("STRIPE", fmt.Sprintf("Stripe initialization failed: %v", err))
	}

	qrGen := qr.NewQRGenerator(cfg.QR.BaseURL, cfg.QR.Secret)
	receipts := receipt.NewPDFGenerator(os.Getenv("RECEIPT_FONT_PATH"))

	// The bridge consumes the Kafka event stream, drops stale query cache
	// entries, and fans events out to the SSE emitter.
	emitter := sse.NewEventEmitter()
	eventBridge := bridge.New(
		bridge.NewKafkaTransportFactory(cfg.Kafka.Brokers, topics.Topics(), cfg.Kafka.GroupID, logger),
		cache.NewRedisInvalidator(redisClient),
		logger,
	)
	for _, kind := range []models.EventKind{
		models.OrderCreated,
		models.OrderStatusChanged,
		models.PaymentCompleted,
		models.TableStatusChanged,
		models.TableSessionStart,
		models.TableSessionEnd,
	} {
		eventBridge.On(kind, emitter.Emit)
	}
	eventBridge.OnStatusChange(func(status bridge.Status) {
		logger.Info("BRIDGE", fmt.Sprintf("Realtime bridge status: %s", status))
	})
	eventBridge.Connect(bridge.ConnDescriptor{
		TenantID: "gateway",
		Role:     models.RoleStaff,
	})
	defer eventBridge.Disconnect()

	cartHandler := &cart_api.Handler{CartService: cartService, Logger: logger}
	orderHandler := &order_api.Handler{
		OrderService: orderService,
		CartService:  cartService,
		Receipts:     receipts,
		Logger:       logger,
	}
	sseHandler := order_api.NewSSEHandler(logger, emitter)
	tableHandler := &table_api.Handler{TableService: tableService, QR: qrGen, Logger: logger}
	checkoutHandler := &checkout_api.Handler{CheckoutService: checkoutService, Logger: logger}
	paymentHandler := &payment_api.Handler{
		StripeService: stripeService,
		OrderService:  orderService,
		WebhookSecret: cfg.Stripe.WebhookSecret,
		Logger:        logger,
	}

	jwtSecret := []byte(cfg.Auth.JWTSecret)

	logger.Info("HTTP", "Setting up router and middleware")
	r := chi.NewRouter()
	r.Use(requestLogger(logger))

	// --- Public Routes ---
	r.Post("/api/tables/scan", tableHandler.Scan)
	r.Post("/api/payments/webhook", paymentHandler.Webhook)
	r.Get("/api/events/tenant/{tenantID}", sseHandler.HandleTenantEvents)
	r.Get("/api/events/table/{tableID}", sseHandler.HandleTableEvents)
	logger.Info("ROUTER", "Public scan, webhook and SSE endpoints registered")

	// --- Protected Routes ---
	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(jwtSecret))
		logger.Info("AUTH", "JWT middleware applied to protected API routes")

		r.Route("/api", func(r chi.Router) {
			r.Route("/cart/{tenantID}/{sessionID}", func(r chi.Router) {
				r.Get("/", cartHandler.GetCart)
				r.Post("/items", cartHandler.AddItem)
				r.Put("/items/{menuItemID}", cartHandler.UpdateItem)
				r.Delete("/items/{menuItemID}", cartHandler.RemoveItem)
				r.Delete("/", cartHandler.ClearCart)
				r.Post("/discount", cartHandler.ApplyDiscount)
				r.Delete("/discount", cartHandler.RemoveDiscount)
			})
			logger.Info("ROUTER", "Cart routes registered under /api/cart")

			r.Route("/orders", func(r chi.Router) {
				r.Post("/", orderHandler.PlaceOrder)
				r.Get("/{orderId}", orderHandler.GetOrder)
				r.Get("/{orderId}/receipt", orderHandler.Receipt)
				r.With(auth.RequireRole(models.RoleStaff, models.RoleKitchen)).
					Put("/{orderId}/status", orderHandler.UpdateStatus)
			})
			r.With(auth.RequireRole(models.RoleStaff, models.RoleKitchen)).
				Get("/tenants/{tenantID}/orders", orderHandler.ListOrders)
			logger.Info("ROUTER", "Order routes registered under /api/orders")

			r.Post("/checkout/validate-promo", checkoutHandler.ValidatePromo)
			r.Post("/payments/intent", paymentHandler.CreateIntent)
			logger.Info("ROUTER", "Checkout and payment routes registered")

			r.Route("/tenants/{tenantID}/tables", func(r chi.Router) {
				r.Use(auth.RequireRole(models.RoleStaff))
				r.Get("/", tableHandler.ListTables)
				r.Get("/{tableID}/qr", tableHandler.TableQR)
				r.Put("/{tableID}/status", tableHandler.SetStatus)
				r.Post("/{tableID}/end-session", tableHandler.EndSession)
			})
			logger.Info("ROUTER", "Table routes registered under /api/tenants/{tenantID}/tables")
		})
	})

	// No WriteTimeout: the SSE streams are long-lived responses.
	server := &http.Server{
		Addr:        cfg.Server.Port,
		Handler:     r,
		ReadTimeout: cfg.Server.ReadTimeout,
		IdleTimeout: cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("HTTP", fmt.Sprintf("🚀 DineHub gateway running on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	logger.Info("APP", "Service started successfully, waiting for shutdown signal")
	<-stop

	logger.Info("APP", "Shutdown signal received, initiating graceful shutdown")
	ctxShutdown, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctxShutdown); err != nil {
		logger.Error("HTTP", fmt.Sprintf("Server Shutdown Failed: %v", err))
	} else {
		logger.Info("HTTP", "✅ DineHub gateway shutdown complete")
	}
}
