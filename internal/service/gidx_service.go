package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"gidxpay/internal/cache"
	apperrors "gidxpay/internal/errors"
	"gidxpay/internal/gidx"
	"gidxpay/internal/ledger"
	"gidxpay/internal/metrics"
	"gidxpay/internal/model"
	"gidxpay/internal/repository"
)

const (
	defaultCurrency = "USD"

	profileCacheTTL = 5 * time.Minute
)

// Gateway is the provider API surface the engine depends on.
type Gateway interface {
	CallbackURL() string
	CreateProfileSession(ctx context.Context, req *gidx.SessionRequest) (*gidx.SessionResponse, error)
	CreatePaySession(ctx context.Context, req *gidx.SessionRequest) (*gidx.SessionResponse, error)
	CreatePayoutSession(ctx context.Context, amount float64) (*gidx.SessionResponse, error)
	GetPaymentDetail(ctx context.Context, merchantSessionID, merchantTransactionID string) (*gidx.PaymentDetailResponse, error)
	GetSessionStatus(ctx context.Context, merchantSessionID string) (*gidx.SessionStatusResponse, error)
	GetCustomerProfile(ctx context.Context, customerID string) (*gidx.CustomerProfileResponse, error)
	UploadDocument(ctx context.Context, customerID string, categoryType int, filename string, file []byte) error
}

// SessionType selects which provider session a client wants to open.
type SessionType string

const (
	SessionTypeProfile SessionType = "profile"
	SessionTypePay     SessionType = "pay"
	SessionTypePayout  SessionType = "payout"
)

// CreateSessionInput is the client request for a new provider session.
type CreateSessionInput struct {
	Type      SessionType
	Amount    decimal.Decimal
	IPAddress string
	DeviceGPS *gidx.DeviceGPS
}

// CreateSessionResult is returned to the client after a session was opened.
type CreateSessionResult struct {
	PaymentRequestID      uint     `json:"payment_request_id,omitempty"`
	MerchantSessionID     string   `json:"merchant_session_id"`
	MerchantTransactionID string   `json:"merchant_transaction_id,omitempty"`
	SessionID             string   `json:"session_id"`
	SessionURL            string   `json:"session_url"`
	SessionExpirationTime string   `json:"session_expiration_time,omitempty"`
	SessionScore          float64  `json:"session_score,omitempty"`
	ReasonCodes           []string `json:"reason_codes,omitempty"`
}

// CreateWithdrawInput is the client request for a withdrawal. CoinsAmount
// and CashAmount echo the split the client previewed; the request is
// rejected when they no longer match the current balance.
type CreateWithdrawInput struct {
	Amount      decimal.Decimal
	CoinsAmount decimal.Decimal
	CashAmount  decimal.Decimal
	IPAddress   string
	DeviceGPS   *gidx.DeviceGPS
}

// CashWithdrawResult is the outcome of the external-payout branch of a
// withdrawal.
type CashWithdrawResult struct {
	PaymentRequest *model.PaymentRequest `json:"payment_request,omitempty"`
	Session        *CreateSessionResult  `json:"session,omitempty"`
	ErrorMessage   string                `json:"error,omitempty"`
}

// CoinsWithdrawResult is the outcome of the internally settled branch of a
// withdrawal.
type CoinsWithdrawResult struct {
	PaymentRequest *model.PaymentRequest `json:"payment_request,omitempty"`
	ErrorMessage   string                `json:"error,omitempty"`
}

// CreateWithdrawResult reports both branches of a withdrawal independently.
// A branch is nil when the split assigned it a zero amount.
type CreateWithdrawResult struct {
	Cash  *CashWithdrawResult  `json:"cash,omitempty"`
	Coins *CoinsWithdrawResult `json:"coins,omitempty"`
}

// GidxService is the reconciliation engine: it originates sessions and
// payment requests, and reconciles provider callbacks against the ledger.
type GidxService interface {
	CreateSession(ctx context.Context, user *model.User, input CreateSessionInput) (*CreateSessionResult, error)
	PreviewWithdrawal(ctx context.Context, userID uint, amount decimal.Decimal) (ledger.Split, error)
	CreateWithdrawRequests(ctx context.Context, user *model.User, input CreateWithdrawInput) (*CreateWithdrawResult, error)
	// HandleCallback processes one provider webhook delivery. It never
	// fails toward the caller: processing errors are logged and absorbed so
	// the provider is always acknowledged.
	HandleCallback(ctx context.Context, payload []byte)
	GetCustomerProfile(ctx context.Context, user *model.User) (*gidx.CustomerProfileResponse, error)
	UploadDocument(ctx context.Context, user *model.User, categoryType int, filename string, file []byte) error
	// MarkAsFailed is the manual operator transition to failed.
	MarkAsFailed(ctx context.Context, paymentRequestID, actorID uint) error
	ListPaymentRequests(ctx context.Context, userID uint) ([]model.PaymentRequest, error)
}

type gidxService struct {
	gateway      Gateway
	ledger       ledger.Service
	identity     CustomerIdentityProvider
	paymentRepo  repository.PaymentRequestRepository
	trackingRepo repository.PaymentStatusTrackingRepository
	sessionRepo  repository.SessionRepository
	txm          repository.TxManager
	cache        *cache.Client
}

// NewGidxService wires the reconciliation engine.
func NewGidxService(
	gateway Gateway,
	ledgerSvc ledger.Service,
	identity CustomerIdentityProvider,
	paymentRepo repository.PaymentRequestRepository,
	trackingRepo repository.PaymentStatusTrackingRepository,
	sessionRepo repository.SessionRepository,
	txm repository.TxManager,
	cacheClient *cache.Client,
) GidxService {
	return &gidxService{
		gateway:      gateway,
		ledger:       ledgerSvc,
		identity:     identity,
		paymentRepo:  paymentRepo,
		trackingRepo: trackingRepo,
		sessionRepo:  sessionRepo,
		txm:          txm,
		cache:        cacheClient,
	}
}

// MapPaymentStatus translates a provider payment status code into the local
// payment request status.
func MapPaymentStatus(code int) (model.PaymentRequestStatus, error) {
	switch code {
	case gidx.PaymentStatusCodeNotFound, gidx.PaymentStatusCodeIneligible, gidx.PaymentStatusCodeFailed:
		return model.PaymentStatusFailed, nil
	case gidx.PaymentStatusCodePending, gidx.PaymentStatusCodeProcessing:
		return model.PaymentStatusPending, nil
	case gidx.PaymentStatusCodeComplete:
		return model.PaymentStatusCompleted, nil
	case gidx.PaymentStatusCodeReversed:
		return model.PaymentStatusReversed, nil
	}
	return "", fmt.Errorf("%w: code %d", apperrors.ErrUnknownPaymentStatus, code)
}

// statusForDetail maps a payment detail to a local status. A detail without
// a status code reads as pending: the provider has accepted the payment but
// not yet assigned it a state.
func statusForDetail(detail *gidx.PaymentDetail) (model.PaymentRequestStatus, error) {
	if detail.PaymentStatusCode == nil {
		return model.PaymentStatusPending, nil
	}
	return MapPaymentStatus(*detail.PaymentStatusCode)
}

// CreateSession opens a provider session of the requested type.
func (s *gidxService) CreateSession(ctx context.Context, user *model.User, input CreateSessionInput) (*CreateSessionResult, error) {
	switch input.Type {
	case SessionTypeProfile:
		return s.createProfileSession(ctx, user, input)
	case SessionTypePay:
		return s.createDepositSession(ctx, user, input)
	case SessionTypePayout:
		return s.createPayoutSession(ctx, input)
	}
	return nil, apperrors.NewHTTPError(400, "unknown session type", "INVALID_SESSION_TYPE")
}

func (s *gidxService) createProfileSession(ctx context.Context, user *model.User, input CreateSessionInput) (*CreateSessionResult, error) {
	customerID, err := s.identity.GetOrCreateCustomerID(ctx, user)
	if err != nil {
		return nil, err
	}

	req := s.sessionRequest(customerID, input.IPAddress, input.DeviceGPS)
	session, err := s.storeSessionRequest(ctx, user.ID, model.ServiceTypeCustomerRegistration, customerID, req)
	if err != nil {
		return nil, err
	}

	resp, err := s.gateway.CreateProfileSession(ctx, req)
	if err != nil {
		return nil, err
	}

	s.storeSessionResponse(ctx, user.ID, customerID, model.ServiceTypeCustomerRegistration, session, resp)

	return sessionResult(0, req, resp), nil
}

// createDepositSession originates a deposit: the payment request and its
// audit records are committed before the provider is called, so a crashed
// or failed provider call leaves a correlatable record behind.
func (s *gidxService) createDepositSession(ctx context.Context, user *model.User, input CreateSessionInput) (*CreateSessionResult, error) {
	if input.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, apperrors.ErrInvalidAmount
	}

	customerID, err := s.identity.GetOrCreateCustomerID(ctx, user)
	if err != nil {
		return nil, err
	}

	req := s.paymentSessionRequest(customerID, input.Amount, gidx.PayActionPay, input.IPAddress, input.DeviceGPS)

	var pr *model.PaymentRequest
	var session *model.ProviderSession
	err = s.txm.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		session, err = s.storeSessionRequest(ctx, user.ID, model.ServiceTypePayment, customerID, req)
		if err != nil {
			return err
		}
		pr, err = s.storePaymentRequest(ctx, user.ID, model.PaymentTypeDeposit, req, input.Amount, &session.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	resp, err := s.gateway.CreatePaySession(ctx, req)
	if err != nil {
		log.Printf("gidx: deposit session call failed payment_request_id=%d: %v", pr.ID, err)
		return nil, err
	}

	s.storeSessionResponse(ctx, user.ID, customerID, model.ServiceTypePayment, session, resp)

	return sessionResult(pr.ID, req, resp), nil
}

func (s *gidxService) createPayoutSession(ctx context.Context, input CreateSessionInput) (*CreateSessionResult, error) {
	if input.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, apperrors.ErrInvalidAmount
	}
	resp, err := s.gateway.CreatePayoutSession(ctx, input.Amount.InexactFloat64())
	if err != nil {
		return nil, err
	}
	return &CreateSessionResult{
		MerchantSessionID:     resp.MerchantSessionID,
		MerchantTransactionID: resp.MerchantTransactionID,
		SessionID:             resp.SessionID,
		SessionURL:            resp.SessionURL,
		SessionExpirationTime: resp.SessionExpirationTime,
		SessionScore:          resp.SessionScore,
		ReasonCodes:           resp.ReasonCodes,
	}, nil
}

// PreviewWithdrawal computes the split a withdrawal of amount would use
// against the current balance.
func (s *gidxService) PreviewWithdrawal(ctx context.Context, userID uint, amount decimal.Decimal) (ledger.Split, error) {
	balance, err := s.ledger.GetUserBalance(ctx, userID)
	if err != nil {
		return ledger.Split{}, err
	}
	return ledger.SplitWithdrawAmount(amount, balance)
}

// CreateWithdrawRequests splits a withdrawal across the cash and coins
// settlement paths and runs each branch independently. A failed branch is
// reported in its result and never rolls back the other.
func (s *gidxService) CreateWithdrawRequests(ctx context.Context, user *model.User, input CreateWithdrawInput) (*CreateWithdrawResult, error) {
	balance, err := s.ledger.GetUserBalance(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	split, err := ledger.SplitWithdrawAmount(input.Amount, balance)
	if err != nil {
		return nil, err
	}
	requested := ledger.Split{CoinsAmount: input.CoinsAmount, CashAmount: input.CashAmount}
	if err := ledger.ValidateSplitPreview(requested, split); err != nil {
		return nil, err
	}

	result := &CreateWithdrawResult{}
	if split.CashAmount.IsPositive() {
		result.Cash = s.createCashWithdraw(ctx, user, split.CashAmount, input)
	}
	if split.CoinsAmount.IsPositive() {
		result.Coins = s.createCoinsWithdraw(ctx, user, split.CoinsAmount)
	}
	return result, nil
}

// createCashWithdraw debits cash and opens a payout session. The debit and
// the payment request commit atomically; the provider call happens after,
// so a failed call leaves the debit standing to be reconciled by callback
// or manual action.
func (s *gidxService) createCashWithdraw(ctx context.Context, user *model.User, amount decimal.Decimal, input CreateWithdrawInput) *CashWithdrawResult {
	customerID, err := s.identity.GetOrCreateCustomerID(ctx, user)
	if err != nil {
		return &CashWithdrawResult{ErrorMessage: err.Error()}
	}

	req := s.paymentSessionRequest(customerID, amount, gidx.PayActionPayout, input.IPAddress, input.DeviceGPS)

	var pr *model.PaymentRequest
	var session *model.ProviderSession
	var locked *ledger.LockedTransaction
	defer func() {
		if locked != nil {
			locked.Lock.Release()
		}
	}()

	err = s.txm.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		session, err = s.storeSessionRequest(ctx, user.ID, model.ServiceTypePayment, customerID, req)
		if err != nil {
			return err
		}
		pr, err = s.storePaymentRequest(ctx, user.ID, model.PaymentTypeWithdraw, req, amount, &session.ID)
		if err != nil {
			return err
		}

		locked, err = s.ledger.CreateTransaction(ctx, ledger.TransactionInput{
			UserID:           user.ID,
			Type:             model.TxTypeCashWithdrawDebit,
			Amount:           amount.Neg(),
			ExtTransactionID: &pr.MerchantTransactionID,
		})
		if err != nil {
			return err
		}
		metrics.LedgerTransactions.WithLabelValues(string(model.TxTypeCashWithdrawDebit)).Inc()

		pr.TransactionID = &locked.Transaction.ID
		return s.paymentRepo.Update(ctx, pr)
	})
	if err != nil {
		log.Printf("gidx: cash withdraw failed user_id=%d: %v", user.ID, err)
		return &CashWithdrawResult{ErrorMessage: err.Error()}
	}

	resp, err := s.gateway.CreatePaySession(ctx, req)
	if err != nil {
		log.Printf("gidx: payout session call failed payment_request_id=%d: %v", pr.ID, err)
		return &CashWithdrawResult{PaymentRequest: pr, ErrorMessage: err.Error()}
	}

	s.storeSessionResponse(ctx, user.ID, customerID, model.ServiceTypePayment, session, resp)

	return &CashWithdrawResult{PaymentRequest: pr, Session: sessionResult(pr.ID, req, resp)}
}

// createCoinsWithdraw settles the coins part internally: debit, payment
// request and tracking commit in one unit, all or nothing.
func (s *gidxService) createCoinsWithdraw(ctx context.Context, user *model.User, amount decimal.Decimal) *CoinsWithdrawResult {
	var pr *model.PaymentRequest
	var locked *ledger.LockedTransaction
	defer func() {
		if locked != nil {
			locked.Lock.Release()
		}
	}()

	err := s.txm.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		pr = &model.PaymentRequest{
			UserID:                user.ID,
			Status:                model.PaymentStatusPending,
			Type:                  model.PaymentTypeRefund,
			MerchantTransactionID: uuid.NewString(),
			Amount:                amount,
			Currency:              defaultCurrency,
		}
		if err = s.paymentRepo.Create(ctx, pr); err != nil {
			return err
		}

		locked, err = s.ledger.CreateTransaction(ctx, ledger.TransactionInput{
			UserID: user.ID,
			Type:   model.TxTypeCoinsWithdrawDebit,
			Amount: amount.Neg(),
		})
		if err != nil {
			return err
		}
		metrics.LedgerTransactions.WithLabelValues(string(model.TxTypeCoinsWithdrawDebit)).Inc()

		pr.TransactionID = &locked.Transaction.ID
		if err = s.paymentRepo.Update(ctx, pr); err != nil {
			return err
		}
		return s.storeTracking(ctx, pr, nil, nil, model.ActionTypeAutomatic, nil)
	})
	if err != nil {
		log.Printf("gidx: coins withdraw failed user_id=%d: %v", user.ID, err)
		return &CoinsWithdrawResult{ErrorMessage: err.Error()}
	}

	return &CoinsWithdrawResult{PaymentRequest: pr}
}

// HandleCallback processes one provider webhook delivery. The payload can
// arrive either as the bare callback body or wrapped as {"result": "<json>"}.
func (s *gidxService) HandleCallback(ctx context.Context, payload []byte) {
	raw := payload
	var wrapper struct {
		Result string `json:"result"`
	}
	if err := json.Unmarshal(payload, &wrapper); err == nil && wrapper.Result != "" {
		raw = []byte(wrapper.Result)
	}

	var cb gidx.CallbackPayload
	if err := json.Unmarshal(raw, &cb); err != nil {
		log.Printf("gidx: undecodable callback payload=%q: %v", payload, err)
		metrics.CallbacksFailed.WithLabelValues("bad_payload").Inc()
		return
	}
	metrics.CallbacksReceived.WithLabelValues(cb.ServiceType).Inc()

	switch model.GidxServiceType(cb.ServiceType) {
	case model.ServiceTypePayment:
		if err := s.handlePaymentCallback(ctx, &cb); err != nil {
			log.Printf("gidx: payment callback failed merchant_transaction_id=%s payload=%q: %v",
				cb.MerchantTransactionID, raw, err)
			metrics.CallbacksFailed.WithLabelValues("payment").Inc()
		}
	case model.ServiceTypeCustomerRegistration:
		// Identity results are fetched on demand; the callback is audit only.
		log.Printf("gidx: customer registration callback merchant_session_id=%s status_code=%d",
			cb.MerchantSessionID, cb.StatusCode)
	default:
		log.Printf("gidx: callback with unknown service type %q payload=%q", cb.ServiceType, raw)
		metrics.CallbacksFailed.WithLabelValues("unknown_service_type").Inc()
	}
}

func (s *gidxService) handlePaymentCallback(ctx context.Context, cb *gidx.CallbackPayload) error {
	pr, err := s.paymentRepo.FindLastByMerchantTransactionID(ctx, cb.MerchantTransactionID)
	if err != nil {
		return err
	}
	if pr == nil {
		log.Printf("gidx: callback for unknown merchant_transaction_id=%s, discarded", cb.MerchantTransactionID)
		return nil
	}

	// Callback fields are untrusted; the payment detail re-fetched from the
	// provider is the authoritative input for every decision below.
	detailResp, err := s.gateway.GetPaymentDetail(ctx, cb.MerchantSessionID, pr.MerchantTransactionID)
	if err != nil {
		return err
	}
	detail := detailResp.First()
	if detail == nil {
		return apperrors.ErrPaymentRequestNotFound
	}

	newStatus, err := statusForDetail(detail)
	if err != nil {
		return err
	}

	sessionResponseID := s.storeCallbackResponse(ctx, pr, cb, detail)

	switch pr.Type {
	case model.PaymentTypeDeposit:
		return s.reconcileDeposit(ctx, pr, detail, newStatus, sessionResponseID)
	case model.PaymentTypeWithdraw:
		return s.reconcileWithdraw(ctx, pr, detail, newStatus, sessionResponseID)
	}
	log.Printf("gidx: payment callback for %s request id=%d ignored", pr.Type, pr.ID)
	return nil
}

// reconcileDeposit applies a deposit settlement: on completion it credits
// coins exactly once and links the transaction, in the same atomic unit as
// the status change.
func (s *gidxService) reconcileDeposit(ctx context.Context, pr *model.PaymentRequest, detail *gidx.PaymentDetail, newStatus model.PaymentRequestStatus, sessionResponseID *uint) error {
	oldStatus := pr.Status
	if newStatus == oldStatus {
		return nil
	}
	if !oldStatus.CanTransition(newStatus) {
		log.Printf("gidx: anomalous transition %s -> %s on deposit request id=%d, ignored",
			oldStatus, newStatus, pr.ID)
		return nil
	}

	var locked *ledger.LockedTransaction
	defer func() {
		if locked != nil {
			locked.Lock.Release()
		}
	}()

	err := s.txm.WithTransaction(ctx, func(ctx context.Context) error {
		if newStatus == model.PaymentStatusCompleted && pr.TransactionID == nil {
			existing, err := s.ledger.GetTransactionByExtID(ctx, pr.MerchantTransactionID)
			if err != nil {
				return err
			}
			if existing != nil {
				return apperrors.ErrDuplicateTransaction
			}

			locked, err = s.ledger.CreateTransaction(ctx, ledger.TransactionInput{
				UserID:           pr.UserID,
				Type:             model.TxTypeCoinsOrderCredit,
				Amount:           pr.Amount,
				ExtTransactionID: &pr.MerchantTransactionID,
			})
			if err != nil {
				return err
			}
			metrics.LedgerTransactions.WithLabelValues(string(model.TxTypeCoinsOrderCredit)).Inc()
			pr.TransactionID = &locked.Transaction.ID
		}

		pr.Status = newStatus
		pr.MethodType = detail.PaymentMethodType
		if err := s.paymentRepo.Update(ctx, pr); err != nil {
			return err
		}
		return s.storeTracking(ctx, pr, nil, &oldStatus, model.ActionTypeProviderCallback, sessionResponseID)
	})
	if err != nil {
		return err
	}

	metrics.StatusTransitions.WithLabelValues(string(pr.Type), string(newStatus)).Inc()
	return nil
}

// reconcileWithdraw applies a withdrawal settlement: a failed or reversed
// payout refunds the original debit exactly once, in the same atomic unit
// as the status change.
func (s *gidxService) reconcileWithdraw(ctx context.Context, pr *model.PaymentRequest, detail *gidx.PaymentDetail, newStatus model.PaymentRequestStatus, sessionResponseID *uint) error {
	oldStatus := pr.Status

	// The refund is owed whenever the provider settles the payout as failed
	// or reversed and the debit has no reversal yet, even if the status was
	// already moved there by hand. Only then does status equality make the
	// callback a no-op.
	refundable := newStatus == model.PaymentStatusFailed || newStatus == model.PaymentStatusReversed
	needsRefund := refundable && pr.TransactionID != nil && pr.ReversalTransactionID == nil

	statusChanges := newStatus != oldStatus
	if statusChanges && !oldStatus.CanTransition(newStatus) {
		log.Printf("gidx: anomalous transition %s -> %s on withdraw request id=%d, ignored",
			oldStatus, newStatus, pr.ID)
		statusChanges = false
	}
	if !statusChanges && !needsRefund {
		return nil
	}

	var locked *ledger.LockedTransaction
	defer func() {
		if locked != nil {
			locked.Lock.Release()
		}
	}()

	err := s.txm.WithTransaction(ctx, func(ctx context.Context) error {
		if needsRefund {
			original, err := s.ledger.GetTransactionByExtID(ctx, pr.MerchantTransactionID)
			if err != nil {
				return err
			}
			if original == nil {
				return fmt.Errorf("debit for merchant_transaction_id=%s not found", pr.MerchantTransactionID)
			}

			locked, err = s.ledger.Refund(ctx, original)
			if err != nil {
				return err
			}
			metrics.LedgerTransactions.WithLabelValues(string(model.TxTypeReversalCredit)).Inc()
			pr.ReversalTransactionID = &locked.Transaction.ID
		}

		if statusChanges {
			pr.Status = newStatus
		}
		pr.MethodType = detail.PaymentMethodType
		if err := s.paymentRepo.Update(ctx, pr); err != nil {
			return err
		}
		if !statusChanges {
			return nil
		}
		return s.storeTracking(ctx, pr, nil, &oldStatus, model.ActionTypeProviderCallback, sessionResponseID)
	})
	if err != nil {
		return err
	}

	if statusChanges {
		metrics.StatusTransitions.WithLabelValues(string(pr.Type), string(newStatus)).Inc()
	}
	return nil
}

// GetCustomerProfile fetches the user's identity verification profile. The
// profile is cached briefly to absorb client polling.
func (s *gidxService) GetCustomerProfile(ctx context.Context, user *model.User) (*gidx.CustomerProfileResponse, error) {
	if !user.HasMerchantCustomerID() {
		return nil, apperrors.ErrCustomerNotFound
	}
	customerID := *user.MerchantCustomerID

	cacheKey := "gidx:profile:" + customerID
	if cached, err := s.cache.Get(ctx, cacheKey); err == nil && cached != nil {
		var profile gidx.CustomerProfileResponse
		if err := json.Unmarshal(cached, &profile); err == nil {
			return &profile, nil
		}
	}

	profile, err := s.gateway.GetCustomerProfile(ctx, customerID)
	if err != nil {
		return nil, err
	}

	if encoded, err := json.Marshal(profile); err == nil {
		s.cache.Set(ctx, cacheKey, encoded, profileCacheTTL)
	}
	return profile, nil
}

// UploadDocument registers an identity document with the provider.
func (s *gidxService) UploadDocument(ctx context.Context, user *model.User, categoryType int, filename string, file []byte) error {
	customerID, err := s.identity.GetOrCreateCustomerID(ctx, user)
	if err != nil {
		return err
	}
	return s.gateway.UploadDocument(ctx, customerID, categoryType, filename, file)
}

// MarkAsFailed transitions a payment request to failed on operator action.
func (s *gidxService) MarkAsFailed(ctx context.Context, paymentRequestID, actorID uint) error {
	pr, err := s.paymentRepo.FindByID(ctx, paymentRequestID)
	if err != nil {
		return apperrors.ErrPaymentRequestNotFound
	}

	oldStatus := pr.Status
	if oldStatus == model.PaymentStatusFailed {
		return nil
	}
	if !oldStatus.CanTransition(model.PaymentStatusFailed) {
		return apperrors.NewHTTPError(409, "payment request is in a terminal status", "TERMINAL_STATUS")
	}

	err = s.txm.WithTransaction(ctx, func(ctx context.Context) error {
		pr.Status = model.PaymentStatusFailed
		if err := s.paymentRepo.Update(ctx, pr); err != nil {
			return err
		}
		return s.storeTracking(ctx, pr, &actorID, &oldStatus, model.ActionTypeManual, nil)
	})
	if err != nil {
		return err
	}

	metrics.StatusTransitions.WithLabelValues(string(pr.Type), string(model.PaymentStatusFailed)).Inc()
	return nil
}

func (s *gidxService) ListPaymentRequests(ctx context.Context, userID uint) ([]model.PaymentRequest, error) {
	return s.paymentRepo.ListByUserID(ctx, userID)
}

// sessionRequest builds the base request shared by all session types.
func (s *gidxService) sessionRequest(customerID, ipAddress string, gps *gidx.DeviceGPS) *gidx.SessionRequest {
	return &gidx.SessionRequest{
		MerchantSessionID:  uuid.NewString(),
		MerchantCustomerID: customerID,
		CustomerIPAddress:  ipAddress,
		CallbackURL:        s.gateway.CallbackURL(),
		DeviceGPS:          gps,
	}
}

// paymentSessionRequest builds a cashier session request carrying a fresh
// merchant transaction id.
func (s *gidxService) paymentSessionRequest(customerID string, amount decimal.Decimal, payAction, ipAddress string, gps *gidx.DeviceGPS) *gidx.SessionRequest {
	req := s.sessionRequest(customerID, ipAddress, gps)
	req.MerchantOrderID = uuid.NewString()
	req.MerchantTransactionID = uuid.NewString()
	req.PayActionCode = payAction
	req.CashierPaymentAmount = &gidx.CashierPaymentAmount{
		PaymentAmount:       amount.InexactFloat64(),
		PaymentCurrencyCode: defaultCurrency,
	}
	return req
}

// storeSessionRequest writes the outbound request audit record.
func (s *gidxService) storeSessionRequest(ctx context.Context, userID uint, serviceType model.GidxServiceType, customerID string, req *gidx.SessionRequest) (*model.ProviderSession, error) {
	raw, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal session request: %w", err)
	}

	session := &model.ProviderSession{
		UserID:             userID,
		MerchantSessionID:  req.MerchantSessionID,
		MerchantCustomerID: customerID,
		ServiceType:        serviceType,
		IPAddress:          req.CustomerIPAddress,
		RequestRaw:         string(raw),
	}
	if req.MerchantTransactionID != "" {
		session.MerchantTransactionID = &req.MerchantTransactionID
	}
	if req.DeviceGPS != nil {
		if loc, err := json.Marshal(req.DeviceGPS); err == nil {
			location := string(loc)
			session.DeviceLocation = &location
		}
	}

	if err := s.sessionRepo.CreateRequest(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// storeSessionResponse writes the inbound response audit record. Best
// effort: an audit failure never fails the operation that got the response.
func (s *gidxService) storeSessionResponse(ctx context.Context, userID uint, customerID string, serviceType model.GidxServiceType, session *model.ProviderSession, resp *gidx.SessionResponse) {
	raw, err := json.Marshal(resp)
	if err != nil {
		log.Printf("gidx: marshal session response: %v", err)
		return
	}

	record := &model.ProviderSessionResponse{
		UserID:             userID,
		MerchantSessionID:  resp.MerchantSessionID,
		MerchantCustomerID: customerID,
		ServiceType:        serviceType,
		StatusCode:         resp.ResponseCode,
		StatusMessage:      resp.ResponseMessage,
		SessionScore:       resp.SessionScore,
		ResponseRaw:        string(raw),
	}
	if session != nil {
		record.GidxSessionID = &session.ID
	}
	if resp.MerchantTransactionID != "" {
		record.MerchantTransactionID = &resp.MerchantTransactionID
	}

	if err := s.sessionRepo.CreateResponse(ctx, record); err != nil {
		log.Printf("gidx: store session response merchant_session_id=%s: %v", resp.MerchantSessionID, err)
	}
}

// storePaymentRequest creates a payment request in its initial status with
// its initial tracking row.
func (s *gidxService) storePaymentRequest(ctx context.Context, userID uint, prType model.PaymentRequestType, req *gidx.SessionRequest, amount decimal.Decimal, sessionID *uint) (*model.PaymentRequest, error) {
	status := model.PaymentStatusNew
	if prType == model.PaymentTypeWithdraw {
		status = model.PaymentStatusPending
	}

	pr := &model.PaymentRequest{
		UserID:                userID,
		Status:                status,
		Type:                  prType,
		MerchantTransactionID: req.MerchantTransactionID,
		GidxSessionID:         sessionID,
		Amount:                amount,
		Currency:              defaultCurrency,
	}
	if err := s.paymentRepo.Create(ctx, pr); err != nil {
		return nil, err
	}
	if err := s.storeTracking(ctx, pr, nil, nil, model.ActionTypeAutomatic, nil); err != nil {
		return nil, err
	}
	return pr, nil
}

// storeTracking appends one status tracking row for the request's current
// status.
func (s *gidxService) storeTracking(ctx context.Context, pr *model.PaymentRequest, actionBy *uint, oldStatus *model.PaymentRequestStatus, actionType model.PaymentActionType, sessionResponseID *uint) error {
	return s.trackingRepo.Create(ctx, &model.PaymentStatusTracking{
		PaymentRequestID:  pr.ID,
		ActionBy:          actionBy,
		ActionType:        actionType,
		OldStatus:         oldStatus,
		Status:            pr.Status,
		SessionResponseID: sessionResponseID,
	})
}

// storeCallbackResponse audits the re-fetched settlement detail against the
// originating session audit row so the tracking entry can point at the
// provider evidence behind the transition. Best effort.
func (s *gidxService) storeCallbackResponse(ctx context.Context, pr *model.PaymentRequest, cb *gidx.CallbackPayload, detail *gidx.PaymentDetail) *uint {
	session, err := s.sessionRepo.FindRequestByMerchantSessionID(ctx, cb.MerchantSessionID)
	if err != nil {
		log.Printf("gidx: correlate session merchant_session_id=%s: %v", cb.MerchantSessionID, err)
	}

	raw, err := json.Marshal(detail)
	if err != nil {
		log.Printf("gidx: marshal payment detail: %v", err)
		return nil
	}

	record := &model.ProviderSessionResponse{
		UserID:                pr.UserID,
		MerchantSessionID:     cb.MerchantSessionID,
		MerchantTransactionID: &pr.MerchantTransactionID,
		ServiceType:           model.ServiceTypePayment,
		StatusMessage:         detail.PaymentStatusMessage,
		ResponseRaw:           string(raw),
	}
	if session != nil {
		record.GidxSessionID = &session.ID
		record.MerchantCustomerID = session.MerchantCustomerID
	}
	if detail.PaymentStatusCode != nil {
		record.StatusCode = *detail.PaymentStatusCode
	}

	if err := s.sessionRepo.CreateResponse(ctx, record); err != nil {
		log.Printf("gidx: store callback response merchant_session_id=%s: %v", cb.MerchantSessionID, err)
		return nil
	}
	return &record.ID
}

func sessionResult(paymentRequestID uint, req *gidx.SessionRequest, resp *gidx.SessionResponse) *CreateSessionResult {
	result := &CreateSessionResult{
		PaymentRequestID:      paymentRequestID,
		MerchantSessionID:     req.MerchantSessionID,
		MerchantTransactionID: req.MerchantTransactionID,
		SessionID:             resp.SessionID,
		SessionURL:            resp.SessionURL,
		SessionExpirationTime: resp.SessionExpirationTime,
		SessionScore:          resp.SessionScore,
		ReasonCodes:           resp.ReasonCodes,
	}
	return result
}
