package handler

import (
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"gidxpay/internal/errors"
	"gidxpay/internal/gidx"
	"gidxpay/internal/model"
	"gidxpay/internal/repository"
	"gidxpay/internal/service"
)

// maxDocumentSize bounds identity document uploads.
const maxDocumentSize = 10 << 20

// GidxHandler handles provider session, identity and callback endpoints.
type GidxHandler struct {
	gidxService service.GidxService
	userRepo    repository.UserRepository
}

// NewGidxHandler creates a new gidx handler.
func NewGidxHandler(gidxService service.GidxService, userRepo repository.UserRepository) *GidxHandler {
	return &GidxHandler{gidxService: gidxService, userRepo: userRepo}
}

func (h *GidxHandler) currentUser(c echo.Context) (*model.User, error) {
	userID, err := currentUserID(c)
	if err != nil {
		return nil, err
	}
	user, err := h.userRepo.FindByID(c.Request().Context(), userID)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
			Error: "user not found",
			Code:  "USER_NOT_FOUND",
		})
	}
	return user, nil
}

// CreateSessionRequest represents a session creation request.
type CreateSessionRequest struct {
	Type      string          `json:"type" validate:"required,oneof=profile pay payout"`
	Amount    decimal.Decimal `json:"amount"`
	DeviceGPS *gidx.DeviceGPS `json:"device_gps,omitempty"`
}

// CreateSession godoc
// @Summary Create a provider session
// @Description Opens a profile, pay or payout session with the payment provider.
// @Tags gidx
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateSessionRequest true "Session data"
// @Success 201 {object} service.CreateSessionResult
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 502 {object} errors.ErrorResponse
// @Router /gidx/sessions [post]
func (h *GidxHandler) CreateSession(c echo.Context) error {
	var req CreateSessionRequest
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

	user, err := h.currentUser(c)
	if err != nil {
		return err
	}

	result, err := h.gidxService.CreateSession(c.Request().Context(), user, service.CreateSessionInput{
		Type:      service.SessionType(req.Type),
		Amount:    req.Amount,
		IPAddress: c.RealIP(),
		DeviceGPS: req.DeviceGPS,
	})
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusCreated, result)
}

// Callback godoc
// @Summary Provider webhook
// @Description Receives GIDX status callbacks. Always acknowledges: processing
// @Description outcomes are internal.
// @Tags gidx
// @Accept json
// @Success 204
// @Router /tsevo/callback [post]
func (h *GidxHandler) Callback(c echo.Context) error {
	payload, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.NoContent(http.StatusNoContent)
	}

	h.gidxService.HandleCallback(c.Request().Context(), payload)
	return c.NoContent(http.StatusNoContent)
}

// GetCustomerProfile godoc
// @Summary Get the user's identity verification profile
// @Tags gidx
// @Produce json
// @Security BearerAuth
// @Success 200 {object} gidx.CustomerProfileResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 502 {object} errors.ErrorResponse
// @Router /gidx/customer-profile [get]
func (h *GidxHandler) GetCustomerProfile(c echo.Context) error {
	user, err := h.currentUser(c)
	if err != nil {
		return err
	}

	profile, err := h.gidxService.GetCustomerProfile(c.Request().Context(), user)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, profile)
}

// UploadDocument godoc
// @Summary Upload an identity document
// @Tags gidx
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param category_type formData int true "Document category"
// @Param file formData file true "Document file"
// @Success 200 {object} map[string]string
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 502 {object} errors.ErrorResponse
// @Router /gidx/documents [post]
func (h *GidxHandler) UploadDocument(c echo.Context) error {
	user, err := h.currentUser(c)
	if err != nil {
		return err
	}

	categoryType, err := strconv.Atoi(c.FormValue("category_type"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid category_type",
			Code:  "INVALID_CATEGORY_TYPE",
		})
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "file is required",
			Code:  "FILE_REQUIRED",
		})
	}
	if fileHeader.Size > maxDocumentSize {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "file too large",
			Code:  "FILE_TOO_LARGE",
		})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "unreadable file",
			Code:  "INVALID_FILE",
		})
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "unreadable file",
			Code:  "INVALID_FILE",
		})
	}

	if err := h.gidxService.UploadDocument(c.Request().Context(), user, categoryType, fileHeader.Filename, content); err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "document registered",
	})
}

// ListPaymentRequests godoc
// @Summary List the user's payment requests
// @Tags gidx
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.PaymentRequest
// @Failure 401 {object} errors.ErrorResponse
// @Router /gidx/payment-requests [get]
func (h *GidxHandler) ListPaymentRequests(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	requests, err := h.gidxService.ListPaymentRequests(c.Request().Context(), userID)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, requests)
}

// MarkAsFailed godoc
// @Summary Manually mark a payment request as failed
// @Tags gidx
// @Produce json
// @Security BearerAuth
// @Param id path int true "Payment request id"
// @Success 200 {object} map[string]string
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /gidx/payment-requests/{id}/fail [post]
func (h *GidxHandler) MarkAsFailed(c echo.Context) error {
	actorID, err := currentUserID(c)
	if err != nil {
		return err
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid payment request id",
			Code:  "INVALID_ID",
		})
	}

	if err := h.gidxService.MarkAsFailed(c.Request().Context(), uint(id), actorID); err != nil {
		var httpErr *errors.HTTPError
		if e, ok := err.(*errors.HTTPError); ok {
			httpErr = e
		} else {
			httpErr = errors.MapErrorToHTTP(err)
		}
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "payment request marked as failed",
	})
}
