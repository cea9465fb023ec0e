package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"

	"gidxpay/internal/config"
	"gidxpay/internal/handler"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	authHandler *handler.AuthHandler,
	gidxHandler *handler.GidxHandler,
	walletHandler *handler.WalletHandler,
) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// Public routes
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/refresh", authHandler.Refresh)
	api.POST("/auth/logout", authHandler.Logout)

	// Provider webhook. Unauthenticated: GIDX posts here directly.
	api.POST("/tsevo/callback", gidxHandler.Callback)

	// Secured routes (require JWT authentication)
	secured := api.Group("", echojwt.WithConfig(echojwt.Config{
		SigningKey:  []byte(cfg.JWTSecret),
		TokenLookup: "header:" + echo.HeaderAuthorization,
	}))

	// Provider session and identity routes
	secured.POST("/gidx/sessions", gidxHandler.CreateSession)
	secured.GET("/gidx/customer-profile", gidxHandler.GetCustomerProfile)
	secured.POST("/gidx/documents", gidxHandler.UploadDocument)
	secured.GET("/gidx/payment-requests", gidxHandler.ListPaymentRequests)
	secured.POST("/gidx/payment-requests/:id/fail", gidxHandler.MarkAsFailed)

	// Wallet routes
	secured.GET("/wallet/balance", walletHandler.GetBalance)
	secured.GET("/withdrawals/preview", walletHandler.PreviewWithdrawal)
	secured.POST("/withdrawals", walletHandler.CreateWithdrawal)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
