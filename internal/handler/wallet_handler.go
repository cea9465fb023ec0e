package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"gidxpay/internal/errors"
	"gidxpay/internal/gidx"
	"gidxpay/internal/ledger"
	"gidxpay/internal/repository"
	"gidxpay/internal/service"
)

// WalletHandler handles balance and withdrawal endpoints.
type WalletHandler struct {
	gidxService   service.GidxService
	ledgerService ledger.Service
	userRepo      repository.UserRepository
}

// NewWalletHandler creates a new wallet handler.
func NewWalletHandler(gidxService service.GidxService, ledgerService ledger.Service, userRepo repository.UserRepository) *WalletHandler {
	return &WalletHandler{
		gidxService:   gidxService,
		ledgerService: ledgerService,
		userRepo:      userRepo,
	}
}

// GetBalance godoc
// @Summary Get the user's wallet balance
// @Tags wallet
// @Produce json
// @Security BearerAuth
// @Success 200 {object} ledger.Balance
// @Failure 401 {object} errors.ErrorResponse
// @Router /wallet/balance [get]
func (h *WalletHandler) GetBalance(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	balance, err := h.ledgerService.GetUserBalance(c.Request().Context(), userID)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, balance)
}

// PreviewWithdrawal godoc
// @Summary Preview how a withdrawal splits across coins and cash
// @Tags wallet
// @Produce json
// @Security BearerAuth
// @Param amount query string true "Withdrawal amount"
// @Success 200 {object} ledger.Split
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /withdrawals/preview [get]
func (h *WalletHandler) PreviewWithdrawal(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	amount, err := decimal.NewFromString(c.QueryParam("amount"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid amount",
			Code:  "INVALID_AMOUNT",
		})
	}

	split, err := h.gidxService.PreviewWithdrawal(c.Request().Context(), userID, amount)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, split)
}

// CreateWithdrawalRequest represents a withdrawal submission. CoinsAmount
// and CashAmount echo the previewed split.
type CreateWithdrawalRequest struct {
	Amount      decimal.Decimal `json:"amount" validate:"required"`
	CoinsAmount decimal.Decimal `json:"coins_amount"`
	CashAmount  decimal.Decimal `json:"cash_amount"`
	DeviceGPS   *gidx.DeviceGPS `json:"device_gps,omitempty"`
}

// CreateWithdrawal godoc
// @Summary Submit a withdrawal
// @Description Splits the amount across coins and cash settlement and runs
// @Description both branches. Each branch reports success or failure
// @Description independently in the response.
// @Tags wallet
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateWithdrawalRequest true "Withdrawal data"
// @Success 201 {object} service.CreateWithdrawResult
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /withdrawals [post]
func (h *WalletHandler) CreateWithdrawal(c echo.Context) error {
	var req CreateWithdrawalRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid request body",
			Code:  "INVALID_REQUEST",
		})
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: err.Error(),
			Code:  "VALIDATION_ERROR",
		})
	}

	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	user, err := h.userRepo.FindByID(c.Request().Context(), userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
			Error: "user not found",
			Code:  "USER_NOT_FOUND",
		})
	}

	result, err := h.gidxService.CreateWithdrawRequests(c.Request().Context(), user, service.CreateWithdrawInput{
		Amount:      req.Amount,
		CoinsAmount: req.CoinsAmount,
		CashAmount:  req.CashAmount,
		IPAddress:   c.RealIP(),
		DeviceGPS:   req.DeviceGPS,
	})
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusCreated, result)
}
