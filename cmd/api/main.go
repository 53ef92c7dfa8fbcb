package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"soukly-backend/config"
	"soukly-backend/internal/delivery/http/middleware"
	v1 "soukly-backend/internal/delivery/http/v1"
	"soukly-backend/internal/events"
	"soukly-backend/internal/infrastructure/cache"
	"soukly-backend/internal/repository/postgres"
	"soukly-backend/internal/usecase"
	"soukly-backend/pkg/logger"
	"soukly-backend/pkg/storage"
	"soukly-backend/pkg/utils"
	"syscall"
	"time"

	"github.com/NYTimes/gziphandler"
	"golang.org/x/time/rate"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg := config.LoadConfig()
	utils.SetSecret(cfg.JWTSecret)

	// Initialize Logger
	logger.Init(cfg.Env, cfg.LogLevel)
	log := logger.Get()

	// Initialize Database
	pgxPool, err := postgres.NewPgxPool(context.Background(), cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	log.Info().Msg("Successfully connected to PostgreSQL via pgx")

	// Initialize Cache (In-Memory)
	// Default expiration 30m, cleanup every 60m
	memCache := cache.NewMemoryCache(30*time.Minute, 60*time.Minute)

	// Initialize Repositories
	productRepo := postgres.NewProductRepository(pgxPool)
	orderRepo := postgres.NewOrderRepository(pgxPool)
	supplierRepo := postgres.NewSupplierRepository(pgxPool)
	settlementRepo := postgres.NewSettlementRepository(pgxPool)
	partnerRepo := postgres.NewPartnerRepository(pgxPool)
	withdrawalRepo := postgres.NewWithdrawalRepository(pgxPool)
	configRepo := postgres.NewConfigRepository(pgxPool, memCache)
	txManager := postgres.NewTransactionManager(pgxPool)

	// --- Storage Module (R2) ---
	r2Storage, err := storage.NewR2Storage(
		context.Background(),
		cfg.R2AccountID,
		cfg.R2AccessKeyID,
		cfg.R2AccessKeySecret,
		cfg.R2BucketName,
		cfg.R2PublicURL,
		cfg.R2UploadTimeout,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize R2 Storage")
	}

	// --- Event plumbing ---
	// Order status changes are emitted via pg_notify inside the status update
	// transaction; the listener feeds them into the in-process hub.
	hub := events.NewHub()
	listener := events.NewListener(pgxPool, hub)

	// --- Modules ---
	cartUC := usecase.NewCartUsecase(productRepo, partnerRepo, configRepo, memCache, cfg.CartTTL)
	orderUC := usecase.NewOrderUsecase(orderRepo, productRepo, partnerRepo, configRepo, txManager, cartUC, hub)
	debtUC := usecase.NewDebtUsecase(orderRepo, supplierRepo, configRepo, memCache)
	settlementUC := usecase.NewSettlementUsecase(settlementRepo, orderRepo, debtUC, txManager, r2Storage)
	closingUC := usecase.NewClosingUsecase(debtUC, settlementRepo, configRepo)
	partnerUC := usecase.NewPartnerUsecase(partnerRepo, withdrawalRepo, orderRepo, configRepo, txManager)

	// Debt recompute and partner commission both react to order changes.
	hub.Subscribe(debtUC.OnOrderChange)
	hub.Subscribe(partnerUC.OnOrderChange)

	cartHandler := v1.NewCartHandler(cartUC, cfg.MaxCartQuantity)
	orderHandler := v1.NewOrderHandler(orderUC)
	supplierHandler := v1.NewSupplierHandler(orderUC, debtUC, settlementUC, closingUC)
	adminHandler := v1.NewAdminHandler(orderUC, settlementUC, partnerUC, configRepo)
	partnerHandler := v1.NewPartnerHandler(partnerUC)

	// Set up Router
	mux := http.NewServeMux()

	// Cart & Checkout (session-scoped, no auth)
	mux.HandleFunc("GET /api/v1/cart", cartHandler.GetCart)
	mux.HandleFunc("POST /api/v1/cart", cartHandler.AddToCart)
	mux.HandleFunc("POST /api/v1/cart/resolve", cartHandler.ResolveConflict)
	mux.HandleFunc("PUT /api/v1/cart/{productId}", cartHandler.UpdateQuantity)
	mux.HandleFunc("DELETE /api/v1/cart/{productId}", cartHandler.RemoveItem)
	mux.HandleFunc("POST /api/v1/cart/promo", cartHandler.ApplyPromo)
	mux.HandleFunc("POST /api/v1/checkout", orderHandler.Checkout)
	mux.HandleFunc("GET /api/v1/orders/{id}", orderHandler.TrackOrder)

	// Supplier (Protected)
	supplierMW := func(h http.HandlerFunc) http.Handler {
		return middleware.AuthMiddleware(middleware.SupplierMiddleware(h))
	}
	mux.Handle("GET /api/v1/supplier/orders/active", supplierMW(supplierHandler.GetActiveOrder))
	mux.Handle("PATCH /api/v1/supplier/orders/{id}/status", supplierMW(supplierHandler.TransitionOrder))
	mux.Handle("GET /api/v1/supplier/wallet", supplierMW(supplierHandler.GetWallet))
	mux.Handle("GET /api/v1/supplier/access", supplierMW(supplierHandler.GetAccessStatus))
	mux.Handle("POST /api/v1/supplier/settlements", supplierMW(supplierHandler.DeclareSettlement))
	mux.Handle("POST /api/v1/supplier/settlements/{id}/proof", supplierMW(supplierHandler.AttachProof))
	mux.Handle("GET /api/v1/supplier/settlements", supplierMW(supplierHandler.ListSettlements))

	// Partner (Protected)
	partnerMW := func(h http.HandlerFunc) http.Handler {
		return middleware.AuthMiddleware(middleware.PartnerMiddleware(h))
	}
	mux.Handle("GET /api/v1/partner/profile", partnerMW(partnerHandler.GetProfile))
	mux.Handle("POST /api/v1/partner/withdrawals", partnerMW(partnerHandler.RequestWithdrawal))
	mux.Handle("GET /api/v1/partner/withdrawals", partnerMW(partnerHandler.ListWithdrawals))

	// Admin (Protected)
	adminMW := func(h http.HandlerFunc) http.Handler {
		return middleware.AuthMiddleware(middleware.AdminMiddleware(h))
	}
	mux.Handle("GET /api/v1/admin/orders", adminMW(adminHandler.ListOrders))
	mux.Handle("POST /api/v1/admin/orders/{id}/complete", adminMW(adminHandler.CompleteOrder))
	mux.Handle("POST /api/v1/admin/orders/{id}/cancel", adminMW(adminHandler.CancelOrder))
	mux.Handle("GET /api/v1/admin/settlements", adminMW(adminHandler.ListSettlements))
	mux.Handle("POST /api/v1/admin/settlements/{id}/approve", adminMW(adminHandler.ApproveSettlement))
	mux.Handle("POST /api/v1/admin/settlements/{id}/reject", adminMW(adminHandler.RejectSettlement))
	mux.Handle("GET /api/v1/admin/withdrawals", adminMW(adminHandler.ListWithdrawals))
	mux.Handle("POST /api/v1/admin/withdrawals/{id}/paid", adminMW(adminHandler.MarkWithdrawalPaid))
	mux.Handle("GET /api/v1/admin/settings", adminMW(adminHandler.GetSettings))
	mux.Handle("PUT /api/v1/admin/settings", adminMW(adminHandler.UpdateSettings))

	// Health Check
	healthHandler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "ok", "db": "connected"}`))
	}
	mux.HandleFunc("GET /healthz", healthHandler)
	mux.HandleFunc("GET /health", healthHandler) // Support root health check for Load Balancers

	addr := fmt.Sprintf(":%s", cfg.Port)

	// Initialize Rate Limiter with lifecycle management
	rateLimiter := middleware.NewRateLimiter(
		context.Background(),
		rate.Limit(cfg.RateLimitPerSecond),
		cfg.RateLimitBurst,
		time.Minute,   // sweep period
		3*time.Minute, // visitor TTL
	)

	// Apply CORS (with config injection), Request Logger, Rate Limit, and Gzip
	handler := middleware.NewCORSMiddleware(cfg)(mux)
	handler = middleware.RequestLogger(handler)
	handler = rateLimiter.Middleware()(handler)
	handler = gziphandler.GzipHandler(handler)

	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	// Background workers
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	go listener.Run(workerCtx)
	go orderUC.RunAutoDelivery(workerCtx, cfg.AutoDeliverySweep)

	// Graceful Shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	logger.ServiceStart("soukly-api", version, cfg.Port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Server shutting down...")

	stopWorkers()
	rateLimiter.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	pgxPool.Close()
	logger.ServiceStop("soukly-api")
}
