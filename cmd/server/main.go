package main

import (
	"log"
	"net/http"
	"time"

	_ "gidxpay/docs" // swagger docs

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"gidxpay/internal/auth"
	"gidxpay/internal/cache"
	"gidxpay/internal/config"
	"gidxpay/internal/db"
	"gidxpay/internal/gidx"
	"gidxpay/internal/handler"
	"gidxpay/internal/ledger"
	"gidxpay/internal/lock"
	"gidxpay/internal/model"
	"gidxpay/internal/repository"
	"gidxpay/internal/router"
	"gidxpay/internal/service"
)

// @title GIDX Payment Reconciliation API
// @version 1.0
// @description Payment and identity verification API mediating deposits, withdrawals and provider callbacks against the GIDX service.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment")
	}

	cfg := config.Load()

	e := echo.New()
	e.Use(middleware.RequestID())

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Wallet{},
		&model.Transaction{},
		&model.ProviderSession{},
		&model.ProviderSessionResponse{},
		&model.PaymentRequest{},
		&model.PaymentStatusTracking{},
	); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	lockManager := lock.NewManager(
		cacheClient.Redis(),
		time.Duration(cfg.LockTTLSec)*time.Second,
		time.Duration(cfg.LockWaitMs)*time.Millisecond,
	)

	// Repositories
	userRepo := repository.NewUserRepository(gormDB)
	paymentRepo := repository.NewPaymentRequestRepository(gormDB)
	trackingRepo := repository.NewPaymentStatusTrackingRepository(gormDB)
	sessionRepo := repository.NewSessionRepository(gormDB)
	transactionRepo := repository.NewTransactionRepository(gormDB)
	walletRepo := repository.NewWalletRepository(gormDB)
	txManager := repository.NewTxManager(gormDB)

	// Auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret)
	tokenStore := auth.NewTokenStore(cacheClient)

	// Services
	gateway := gidx.NewClient(cfg.Gidx)
	ledgerService := ledger.NewService(transactionRepo, walletRepo, lockManager)
	identity := service.NewCustomerIdentityProvider(userRepo)
	gidxService := service.NewGidxService(
		gateway,
		ledgerService,
		identity,
		paymentRepo,
		trackingRepo,
		sessionRepo,
		txManager,
		cacheClient,
	)
	authService := service.NewAuthService(userRepo, jwtService, tokenStore)

	// Handlers
	authHandler := handler.NewAuthHandler(authService)
	gidxHandler := handler.NewGidxHandler(gidxService, userRepo)
	walletHandler := handler.NewWalletHandler(gidxService, ledgerService, userRepo)

	router.Register(e, cfg, authHandler, gidxHandler, walletHandler)

	log.Printf("GIDX mode: %s, callback URL: %s", cfg.Gidx.Mode, cfg.Gidx.CallbackURL)
	log.Printf("Swagger documentation available at: http://localhost:%s/swagger/index.html", cfg.ServerPort)

	addr := ":" + cfg.ServerPort
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server start: %v", err)
	}
}
