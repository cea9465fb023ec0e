package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "gidxpay/internal/errors"
	"gidxpay/internal/gidx"
	"gidxpay/internal/ledger"
	"gidxpay/internal/model"
)

// MockGateway is a mock implementation of Gateway.
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) CallbackURL() string {
	return "https://api.example.com/api/tsevo/callback"
}

func (m *MockGateway) CreateProfileSession(ctx context.Context, req *gidx.SessionRequest) (*gidx.SessionResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gidx.SessionResponse), args.Error(1)
}

func (m *MockGateway) CreatePaySession(ctx context.Context, req *gidx.SessionRequest) (*gidx.SessionResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gidx.SessionResponse), args.Error(1)
}

func (m *MockGateway) CreatePayoutSession(ctx context.Context, amount float64) (*gidx.SessionResponse, error) {
	args := m.Called(ctx, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gidx.SessionResponse), args.Error(1)
}

func (m *MockGateway) GetPaymentDetail(ctx context.Context, merchantSessionID, merchantTransactionID string) (*gidx.PaymentDetailResponse, error) {
	args := m.Called(ctx, merchantSessionID, merchantTransactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gidx.PaymentDetailResponse), args.Error(1)
}

func (m *MockGateway) GetSessionStatus(ctx context.Context, merchantSessionID string) (*gidx.SessionStatusResponse, error) {
	args := m.Called(ctx, merchantSessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gidx.SessionStatusResponse), args.Error(1)
}

func (m *MockGateway) GetCustomerProfile(ctx context.Context, customerID string) (*gidx.CustomerProfileResponse, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gidx.CustomerProfileResponse), args.Error(1)
}

func (m *MockGateway) UploadDocument(ctx context.Context, customerID string, categoryType int, filename string, file []byte) error {
	args := m.Called(ctx, customerID, categoryType, filename, file)
	return args.Error(0)
}

// MockLedger is a mock implementation of ledger.Service.
type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) GetUserBalance(ctx context.Context, userID uint) (ledger.Balance, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(ledger.Balance), args.Error(1)
}

func (m *MockLedger) CreateTransaction(ctx context.Context, input ledger.TransactionInput) (*ledger.LockedTransaction, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.LockedTransaction), args.Error(1)
}

func (m *MockLedger) GetTransactionByExtID(ctx context.Context, extTransactionID string) (*model.Transaction, error) {
	args := m.Called(ctx, extTransactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Transaction), args.Error(1)
}

func (m *MockLedger) Refund(ctx context.Context, tx *model.Transaction) (*ledger.LockedTransaction, error) {
	args := m.Called(ctx, tx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.LockedTransaction), args.Error(1)
}

// MockPaymentRequestRepo is a mock implementation of PaymentRequestRepository.
type MockPaymentRequestRepo struct {
	mock.Mock
}

func (m *MockPaymentRequestRepo) Create(ctx context.Context, pr *model.PaymentRequest) error {
	args := m.Called(ctx, pr)
	return args.Error(0)
}

func (m *MockPaymentRequestRepo) Update(ctx context.Context, pr *model.PaymentRequest) error {
	args := m.Called(ctx, pr)
	return args.Error(0)
}

func (m *MockPaymentRequestRepo) FindByID(ctx context.Context, id uint) (*model.PaymentRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PaymentRequest), args.Error(1)
}

func (m *MockPaymentRequestRepo) FindLastByMerchantTransactionID(ctx context.Context, merchantTransactionID string) (*model.PaymentRequest, error) {
	args := m.Called(ctx, merchantTransactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PaymentRequest), args.Error(1)
}

func (m *MockPaymentRequestRepo) ListByUserID(ctx context.Context, userID uint) ([]model.PaymentRequest, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.PaymentRequest), args.Error(1)
}

// MockTrackingRepo is a mock implementation of PaymentStatusTrackingRepository.
type MockTrackingRepo struct {
	mock.Mock
}

func (m *MockTrackingRepo) Create(ctx context.Context, tracking *model.PaymentStatusTracking) error {
	args := m.Called(ctx, tracking)
	return args.Error(0)
}

func (m *MockTrackingRepo) ListByPaymentRequestID(ctx context.Context, paymentRequestID uint) ([]model.PaymentStatusTracking, error) {
	args := m.Called(ctx, paymentRequestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.PaymentStatusTracking), args.Error(1)
}

// MockSessionRepo is a mock implementation of SessionRepository.
type MockSessionRepo struct {
	mock.Mock
}

func (m *MockSessionRepo) CreateRequest(ctx context.Context, session *model.ProviderSession) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockSessionRepo) CreateResponse(ctx context.Context, response *model.ProviderSessionResponse) error {
	args := m.Called(ctx, response)
	return args.Error(0)
}

func (m *MockSessionRepo) FindRequestByMerchantSessionID(ctx context.Context, merchantSessionID string) (*model.ProviderSession, error) {
	args := m.Called(ctx, merchantSessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ProviderSession), args.Error(1)
}

// MockIdentity is a mock implementation of CustomerIdentityProvider.
type MockIdentity struct {
	mock.Mock
}

func (m *MockIdentity) GetOrCreateCustomerID(ctx context.Context, user *model.User) (string, error) {
	args := m.Called(ctx, user)
	return args.String(0), args.Error(1)
}

// passthroughTxManager runs the closure directly; transactional behavior is
// covered by integration against a real database.
type passthroughTxManager struct{}

func (passthroughTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// noopLock satisfies ledger.Lock without a redis backend.
type noopLock struct{}

func (noopLock) Release() {}

type testEngine struct {
	gateway  *MockGateway
	ledger   *MockLedger
	identity *MockIdentity
	payments *MockPaymentRequestRepo
	tracking *MockTrackingRepo
	sessions *MockSessionRepo
	svc      GidxService
}

func newTestEngine() *testEngine {
	e := &testEngine{
		gateway:  new(MockGateway),
		ledger:   new(MockLedger),
		identity: new(MockIdentity),
		payments: new(MockPaymentRequestRepo),
		tracking: new(MockTrackingRepo),
		sessions: new(MockSessionRepo),
	}
	e.svc = NewGidxService(
		e.gateway,
		e.ledger,
		e.identity,
		e.payments,
		e.tracking,
		e.sessions,
		passthroughTxManager{},
		nil,
	)
	return e
}

func lockedTx(tx *model.Transaction) *ledger.LockedTransaction {
	return &ledger.LockedTransaction{Transaction: tx, Lock: noopLock{}}
}

func intPtr(v int) *int { return &v }

func detailResponse(code *int, methodType string) *gidx.PaymentDetailResponse {
	return &gidx.PaymentDetailResponse{
		PaymentDetails: []gidx.PaymentDetail{
			{PaymentAmount: 50, PaymentMethodType: methodType, PaymentStatusCode: code},
		},
	}
}

func callbackPayload(merchantTransactionID string) []byte {
	return []byte(fmt.Sprintf(
		`{"ServiceType":"Payment","MerchantSessionID":"msid-1","MerchantTransactionID":"%s"}`,
		merchantTransactionID))
}

// expectSettlementAudit covers the session response audit row written for
// every settled payment callback.
func expectSettlementAudit(e *testEngine) {
	e.sessions.On("FindRequestByMerchantSessionID", mock.Anything, "msid-1").Return(nil, nil)
	e.sessions.On("CreateResponse", mock.Anything, mock.Anything).Return(nil)
}

func TestMapPaymentStatus(t *testing.T) {
	tests := []struct {
		code    int
		want    model.PaymentRequestStatus
		wantErr bool
	}{
		{-1, model.PaymentStatusFailed, false},
		{0, model.PaymentStatusPending, false},
		{1, model.PaymentStatusCompleted, false},
		{2, model.PaymentStatusFailed, false},
		{3, model.PaymentStatusFailed, false},
		{4, model.PaymentStatusPending, false},
		{5, model.PaymentStatusReversed, false},
		{9999, "", true},
		{6, "", true},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("code %d", tt.code), func(t *testing.T) {
			got, err := MapPaymentStatus(tt.code)
			if tt.wantErr {
				assert.ErrorIs(t, err, apperrors.ErrUnknownPaymentStatus)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCreateSession_DepositHappyPath(t *testing.T) {
	e := newTestEngine()
	user := &model.User{ID: 7, Email: "alice@example.com"}

	e.identity.On("GetOrCreateCustomerID", mock.Anything, user).Return("cust-7", nil)
	e.sessions.On("CreateRequest", mock.Anything, mock.MatchedBy(func(s *model.ProviderSession) bool {
		return s.UserID == 7 && s.ServiceType == model.ServiceTypePayment && s.MerchantSessionID != ""
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*model.ProviderSession).ID = 11
	}).Return(nil)
	e.payments.On("Create", mock.Anything, mock.MatchedBy(func(pr *model.PaymentRequest) bool {
		return pr.UserID == 7 &&
			pr.Type == model.PaymentTypeDeposit &&
			pr.Status == model.PaymentStatusNew &&
			pr.Amount.Equal(decimal.NewFromInt(50)) &&
			pr.MerchantTransactionID != "" &&
			pr.GidxSessionID != nil && *pr.GidxSessionID == 11
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*model.PaymentRequest).ID = 42
	}).Return(nil)
	e.tracking.On("Create", mock.Anything, mock.MatchedBy(func(tr *model.PaymentStatusTracking) bool {
		return tr.PaymentRequestID == 42 &&
			tr.Status == model.PaymentStatusNew &&
			tr.OldStatus == nil &&
			tr.ActionType == model.ActionTypeAutomatic
	})).Return(nil)
	e.gateway.On("CreatePaySession", mock.Anything, mock.MatchedBy(func(req *gidx.SessionRequest) bool {
		return req.PayActionCode == gidx.PayActionPay &&
			req.MerchantCustomerID == "cust-7" &&
			req.CashierPaymentAmount != nil &&
			req.CashierPaymentAmount.PaymentAmount == 50
	})).Return(&gidx.SessionResponse{
		SessionID:  "sess-1",
		SessionURL: "https://cashier.example.com/sess-1",
	}, nil)
	e.sessions.On("CreateResponse", mock.Anything, mock.Anything).Return(nil)

	result, err := e.svc.CreateSession(context.Background(), user, CreateSessionInput{
		Type:      SessionTypePay,
		Amount:    decimal.NewFromInt(50),
		IPAddress: "203.0.113.5",
	})

	require.NoError(t, err)
	assert.Equal(t, uint(42), result.PaymentRequestID)
	assert.Equal(t, "https://cashier.example.com/sess-1", result.SessionURL)
	assert.NotEmpty(t, result.MerchantTransactionID)
	e.payments.AssertExpectations(t)
	e.tracking.AssertExpectations(t)
	e.gateway.AssertExpectations(t)
}

func TestCreateSession_DepositInvalidAmount(t *testing.T) {
	e := newTestEngine()
	user := &model.User{ID: 7}

	_, err := e.svc.CreateSession(context.Background(), user, CreateSessionInput{
		Type:   SessionTypePay,
		Amount: decimal.Zero,
	})

	assert.ErrorIs(t, err, apperrors.ErrInvalidAmount)
	e.identity.AssertNotCalled(t, "GetOrCreateCustomerID", mock.Anything, mock.Anything)
	e.payments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	e.gateway.AssertNotCalled(t, "CreatePaySession", mock.Anything, mock.Anything)
}

func TestCreateSession_DepositRecordSurvivesProviderFailure(t *testing.T) {
	e := newTestEngine()
	user := &model.User{ID: 7}

	e.identity.On("GetOrCreateCustomerID", mock.Anything, user).Return("cust-7", nil)
	e.sessions.On("CreateRequest", mock.Anything, mock.Anything).Return(nil)
	e.payments.On("Create", mock.Anything, mock.Anything).Return(nil)
	e.tracking.On("Create", mock.Anything, mock.Anything).Return(nil)
	e.gateway.On("CreatePaySession", mock.Anything, mock.Anything).
		Return(nil, &apperrors.ProviderError{HTTPStatus: 500, Message: "down"})

	_, err := e.svc.CreateSession(context.Background(), user, CreateSessionInput{
		Type:   SessionTypePay,
		Amount: decimal.NewFromInt(25),
	})

	var provErr *apperrors.ProviderError
	require.ErrorAs(t, err, &provErr)
	// The payment request was persisted before the provider call.
	e.payments.AssertCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestHandleCallback_DepositCompletedCreditsOnce(t *testing.T) {
	e := newTestEngine()
	expectSettlementAudit(e)
	pr := &model.PaymentRequest{
		ID:                    42,
		UserID:                7,
		Status:                model.PaymentStatusPending,
		Type:                  model.PaymentTypeDeposit,
		MerchantTransactionID: "mtid-1",
		Amount:                decimal.NewFromInt(50),
	}

	e.payments.On("FindLastByMerchantTransactionID", mock.Anything, "mtid-1").Return(pr, nil)
	e.gateway.On("GetPaymentDetail", mock.Anything, "msid-1", "mtid-1").
		Return(detailResponse(intPtr(gidx.PaymentStatusCodeComplete), "CC"), nil)
	e.ledger.On("GetTransactionByExtID", mock.Anything, "mtid-1").Return(nil, nil)
	e.ledger.On("CreateTransaction", mock.Anything, mock.MatchedBy(func(input ledger.TransactionInput) bool {
		return input.UserID == 7 &&
			input.Type == model.TxTypeCoinsOrderCredit &&
			input.Amount.Equal(decimal.NewFromInt(50)) &&
			input.ExtTransactionID != nil && *input.ExtTransactionID == "mtid-1"
	})).Return(lockedTx(&model.Transaction{ID: 77}), nil)
	e.payments.On("Update", mock.Anything, pr).Return(nil)
	e.tracking.On("Create", mock.Anything, mock.MatchedBy(func(tr *model.PaymentStatusTracking) bool {
		return tr.PaymentRequestID == 42 &&
			tr.Status == model.PaymentStatusCompleted &&
			tr.OldStatus != nil && *tr.OldStatus == model.PaymentStatusPending &&
			tr.ActionType == model.ActionTypeProviderCallback
	})).Return(nil)

	e.svc.HandleCallback(context.Background(), callbackPayload("mtid-1"))

	assert.Equal(t, model.PaymentStatusCompleted, pr.Status)
	assert.Equal(t, "CC", pr.MethodType)
	require.NotNil(t, pr.TransactionID)
	assert.Equal(t, uint(77), *pr.TransactionID)
	e.ledger.AssertExpectations(t)
	e.tracking.AssertExpectations(t)
}

func TestHandleCallback_ReplayIsNoOp(t *testing.T) {
	e := newTestEngine()
	expectSettlementAudit(e)
	txID := uint(77)
	pr := &model.PaymentRequest{
		ID:                    42,
		UserID:                7,
		Status:                model.PaymentStatusCompleted,
		Type:                  model.PaymentTypeDeposit,
		MerchantTransactionID: "mtid-1",
		Amount:                decimal.NewFromInt(50),
		TransactionID:         &txID,
	}

	e.payments.On("FindLastByMerchantTransactionID", mock.Anything, "mtid-1").Return(pr, nil)
	e.gateway.On("GetPaymentDetail", mock.Anything, "msid-1", "mtid-1").
		Return(detailResponse(intPtr(gidx.PaymentStatusCodeComplete), "CC"), nil)

	e.svc.HandleCallback(context.Background(), callbackPayload("mtid-1"))

	e.ledger.AssertNotCalled(t, "CreateTransaction", mock.Anything, mock.Anything)
	e.payments.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	e.tracking.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	assert.Equal(t, model.PaymentStatusCompleted, pr.Status)
}

func TestHandleCallback_TerminalStatusNeverRegresses(t *testing.T) {
	e := newTestEngine()
	expectSettlementAudit(e)
	txID := uint(77)
	pr := &model.PaymentRequest{
		ID:                    42,
		UserID:                7,
		Status:                model.PaymentStatusCompleted,
		Type:                  model.PaymentTypeDeposit,
		MerchantTransactionID: "mtid-1",
		Amount:                decimal.NewFromInt(50),
		TransactionID:         &txID,
	}

	e.payments.On("FindLastByMerchantTransactionID", mock.Anything, "mtid-1").Return(pr, nil)
	e.gateway.On("GetPaymentDetail", mock.Anything, "msid-1", "mtid-1").
		Return(detailResponse(intPtr(gidx.PaymentStatusCodeFailed), "CC"), nil)

	e.svc.HandleCallback(context.Background(), callbackPayload("mtid-1"))

	e.payments.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	e.tracking.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	assert.Equal(t, model.PaymentStatusCompleted, pr.Status)
}

func TestHandleCallback_AbsentStatusCodeReadsAsPending(t *testing.T) {
	e := newTestEngine()
	expectSettlementAudit(e)
	pr := &model.PaymentRequest{
		ID:                    42,
		UserID:                7,
		Status:                model.PaymentStatusNew,
		Type:                  model.PaymentTypeDeposit,
		MerchantTransactionID: "mtid-1",
		Amount:                decimal.NewFromInt(50),
	}

	e.payments.On("FindLastByMerchantTransactionID", mock.Anything, "mtid-1").Return(pr, nil)
	e.gateway.On("GetPaymentDetail", mock.Anything, "msid-1", "mtid-1").
		Return(detailResponse(nil, "CC"), nil)
	e.payments.On("Update", mock.Anything, pr).Return(nil)
	e.tracking.On("Create", mock.Anything, mock.Anything).Return(nil)

	e.svc.HandleCallback(context.Background(), callbackPayload("mtid-1"))

	assert.Equal(t, model.PaymentStatusPending, pr.Status)
	e.ledger.AssertNotCalled(t, "CreateTransaction", mock.Anything, mock.Anything)
}

func TestHandleCallback_TrackingLinksSettlementEvidence(t *testing.T) {
	e := newTestEngine()
	pr := &model.PaymentRequest{
		ID:                    42,
		UserID:                7,
		Status:                model.PaymentStatusNew,
		Type:                  model.PaymentTypeDeposit,
		MerchantTransactionID: "mtid-1",
		Amount:                decimal.NewFromInt(50),
	}
	session := &model.ProviderSession{ID: 11, MerchantCustomerID: "cust-7"}

	e.payments.On("FindLastByMerchantTransactionID", mock.Anything, "mtid-1").Return(pr, nil)
	e.gateway.On("GetPaymentDetail", mock.Anything, "msid-1", "mtid-1").
		Return(detailResponse(intPtr(gidx.PaymentStatusCodePending), "CC"), nil)
	e.sessions.On("FindRequestByMerchantSessionID", mock.Anything, "msid-1").Return(session, nil)
	e.sessions.On("CreateResponse", mock.Anything, mock.MatchedBy(func(r *model.ProviderSessionResponse) bool {
		return r.GidxSessionID != nil && *r.GidxSessionID == 11 &&
			r.MerchantCustomerID == "cust-7" &&
			r.MerchantTransactionID != nil && *r.MerchantTransactionID == "mtid-1"
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*model.ProviderSessionResponse).ID = 5
	}).Return(nil)
	e.payments.On("Update", mock.Anything, pr).Return(nil)
	e.tracking.On("Create", mock.Anything, mock.MatchedBy(func(row *model.PaymentStatusTracking) bool {
		return row.SessionResponseID != nil && *row.SessionResponseID == 5
	})).Return(nil)

	e.svc.HandleCallback(context.Background(), callbackPayload("mtid-1"))

	assert.Equal(t, model.PaymentStatusPending, pr.Status)
	e.sessions.AssertExpectations(t)
	e.tracking.AssertExpectations(t)
}

func TestHandleCallback_UnknownStatusCodeAborts(t *testing.T) {
	e := newTestEngine()
	pr := &model.PaymentRequest{
		ID:                    42,
		Status:                model.PaymentStatusPending,
		Type:                  model.PaymentTypeDeposit,
		MerchantTransactionID: "mtid-1",
	}

	e.payments.On("FindLastByMerchantTransactionID", mock.Anything, "mtid-1").Return(pr, nil)
	e.gateway.On("GetPaymentDetail", mock.Anything, "msid-1", "mtid-1").
		Return(detailResponse(intPtr(9999), "CC"), nil)

	e.svc.HandleCallback(context.Background(), callbackPayload("mtid-1"))

	e.payments.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	e.tracking.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	assert.Equal(t, model.PaymentStatusPending, pr.Status)
}

func TestHandleCallback_UnknownMerchantTransactionDiscarded(t *testing.T) {
	e := newTestEngine()

	e.payments.On("FindLastByMerchantTransactionID", mock.Anything, "mtid-unknown").Return(nil, nil)

	e.svc.HandleCallback(context.Background(), callbackPayload("mtid-unknown"))

	e.gateway.AssertNotCalled(t, "GetPaymentDetail", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleCallback_ResultWrapperUnwrapped(t *testing.T) {
	e := newTestEngine()
	expectSettlementAudit(e)
	pr := &model.PaymentRequest{
		ID:                    42,
		Status:                model.PaymentStatusNew,
		Type:                  model.PaymentTypeDeposit,
		MerchantTransactionID: "mtid-1",
	}

	e.payments.On("FindLastByMerchantTransactionID", mock.Anything, "mtid-1").Return(pr, nil)
	e.gateway.On("GetPaymentDetail", mock.Anything, "msid-1", "mtid-1").
		Return(detailResponse(intPtr(gidx.PaymentStatusCodePending), "CC"), nil)
	e.payments.On("Update", mock.Anything, pr).Return(nil)
	e.tracking.On("Create", mock.Anything, mock.Anything).Return(nil)

	inner := string(callbackPayload("mtid-1"))
	wrapped := fmt.Sprintf(`{"result": %q}`, inner)
	e.svc.HandleCallback(context.Background(), []byte(wrapped))

	assert.Equal(t, model.PaymentStatusPending, pr.Status)
}

func TestHandleCallback_BadPayloadSwallowed(t *testing.T) {
	e := newTestEngine()

	e.svc.HandleCallback(context.Background(), []byte("not json"))

	e.payments.AssertNotCalled(t, "FindLastByMerchantTransactionID", mock.Anything, mock.Anything)
}

func TestHandleCallback_WithdrawFailureRefundsOnce(t *testing.T) {
	e := newTestEngine()
	expectSettlementAudit(e)
	txID := uint(88)
	pr := &model.PaymentRequest{
		ID:                    43,
		UserID:                7,
		Status:                model.PaymentStatusPending,
		Type:                  model.PaymentTypeWithdraw,
		MerchantTransactionID: "mtid-2",
		Amount:                decimal.NewFromInt(30),
		TransactionID:         &txID,
	}
	debit := &model.Transaction{
		ID:     88,
		UserID: 7,
		Type:   model.TxTypeCashWithdrawDebit,
		Amount: decimal.NewFromInt(-30),
	}

	e.payments.On("FindLastByMerchantTransactionID", mock.Anything, "mtid-2").Return(pr, nil)
	e.gateway.On("GetPaymentDetail", mock.Anything, "msid-1", "mtid-2").
		Return(detailResponse(intPtr(gidx.PaymentStatusCodeFailed), "ACH"), nil)
	e.ledger.On("GetTransactionByExtID", mock.Anything, "mtid-2").Return(debit, nil)
	e.ledger.On("Refund", mock.Anything, debit).Return(lockedTx(&model.Transaction{ID: 99}), nil)
	e.payments.On("Update", mock.Anything, pr).Return(nil)
	e.tracking.On("Create", mock.Anything, mock.Anything).Return(nil)

	e.svc.HandleCallback(context.Background(), callbackPayload("mtid-2"))

	assert.Equal(t, model.PaymentStatusFailed, pr.Status)
	require.NotNil(t, pr.ReversalTransactionID)
	assert.Equal(t, uint(99), *pr.ReversalTransactionID)
	e.ledger.AssertExpectations(t)
}

func TestHandleCallback_WithdrawAlreadyRefundedNotRefundedAgain(t *testing.T) {
	e := newTestEngine()
	expectSettlementAudit(e)
	txID := uint(88)
	reversalID := uint(99)
	pr := &model.PaymentRequest{
		ID:                    43,
		UserID:                7,
		Status:                model.PaymentStatusFailed,
		Type:                  model.PaymentTypeWithdraw,
		MerchantTransactionID: "mtid-2",
		TransactionID:         &txID,
		ReversalTransactionID: &reversalID,
	}

	e.payments.On("FindLastByMerchantTransactionID", mock.Anything, "mtid-2").Return(pr, nil)
	e.gateway.On("GetPaymentDetail", mock.Anything, "msid-1", "mtid-2").
		Return(detailResponse(intPtr(gidx.PaymentStatusCodeFailed), "ACH"), nil)

	e.svc.HandleCallback(context.Background(), callbackPayload("mtid-2"))

	e.ledger.AssertNotCalled(t, "Refund", mock.Anything, mock.Anything)
	e.payments.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestHandleCallback_ManuallyFailedWithdrawalStillRefunds(t *testing.T) {
	e := newTestEngine()
	expectSettlementAudit(e)
	txID := uint(88)
	pr := &model.PaymentRequest{
		ID:                    43,
		UserID:                7,
		Status:                model.PaymentStatusFailed,
		Type:                  model.PaymentTypeWithdraw,
		MerchantTransactionID: "mtid-2",
		Amount:                decimal.NewFromInt(30),
		TransactionID:         &txID,
	}
	debit := &model.Transaction{
		ID:     88,
		UserID: 7,
		Type:   model.TxTypeCashWithdrawDebit,
		Amount: decimal.NewFromInt(-30),
	}

	// An operator already marked the request failed; the provider's FAILED
	// settlement must still compensate the standing debit.
	e.payments.On("FindLastByMerchantTransactionID", mock.Anything, "mtid-2").Return(pr, nil)
	e.gateway.On("GetPaymentDetail", mock.Anything, "msid-1", "mtid-2").
		Return(detailResponse(intPtr(gidx.PaymentStatusCodeFailed), "ACH"), nil)
	e.ledger.On("GetTransactionByExtID", mock.Anything, "mtid-2").Return(debit, nil)
	e.ledger.On("Refund", mock.Anything, debit).Return(lockedTx(&model.Transaction{ID: 99}), nil)
	e.payments.On("Update", mock.Anything, pr).Return(nil)

	e.svc.HandleCallback(context.Background(), callbackPayload("mtid-2"))

	require.NotNil(t, pr.ReversalTransactionID)
	assert.Equal(t, uint(99), *pr.ReversalTransactionID)
	assert.Equal(t, model.PaymentStatusFailed, pr.Status)
	e.ledger.AssertExpectations(t)
	e.payments.AssertExpectations(t)
	e.tracking.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestHandleCallback_CompletedWithdrawalCanBeReversed(t *testing.T) {
	e := newTestEngine()
	expectSettlementAudit(e)
	txID := uint(88)
	pr := &model.PaymentRequest{
		ID:                    43,
		UserID:                7,
		Status:                model.PaymentStatusCompleted,
		Type:                  model.PaymentTypeWithdraw,
		MerchantTransactionID: "mtid-2",
		Amount:                decimal.NewFromInt(30),
		TransactionID:         &txID,
	}
	debit := &model.Transaction{ID: 88, UserID: 7, Type: model.TxTypeCashWithdrawDebit, Amount: decimal.NewFromInt(-30)}

	e.payments.On("FindLastByMerchantTransactionID", mock.Anything, "mtid-2").Return(pr, nil)
	e.gateway.On("GetPaymentDetail", mock.Anything, "msid-1", "mtid-2").
		Return(detailResponse(intPtr(gidx.PaymentStatusCodeReversed), "ACH"), nil)
	e.ledger.On("GetTransactionByExtID", mock.Anything, "mtid-2").Return(debit, nil)
	e.ledger.On("Refund", mock.Anything, debit).Return(lockedTx(&model.Transaction{ID: 99}), nil)
	e.payments.On("Update", mock.Anything, pr).Return(nil)
	e.tracking.On("Create", mock.Anything, mock.Anything).Return(nil)

	e.svc.HandleCallback(context.Background(), callbackPayload("mtid-2"))

	assert.Equal(t, model.PaymentStatusReversed, pr.Status)
	require.NotNil(t, pr.ReversalTransactionID)
}

func TestCreateWithdrawRequests_StaleSplitRejected(t *testing.T) {
	e := newTestEngine()
	user := &model.User{ID: 7}

	e.ledger.On("GetUserBalance", mock.Anything, uint(7)).
		Return(ledger.Balance{CoinsAmount: decimal.NewFromInt(30), CashAmount: decimal.NewFromInt(100)}, nil)

	// Client previewed against coins=50 but balance has shifted to coins=30.
	_, err := e.svc.CreateWithdrawRequests(context.Background(), user, CreateWithdrawInput{
		Amount:      decimal.NewFromInt(50),
		CoinsAmount: decimal.NewFromInt(50),
		CashAmount:  decimal.Zero,
	})

	assert.ErrorIs(t, err, apperrors.ErrStaleBalance)
	e.payments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	e.ledger.AssertNotCalled(t, "CreateTransaction", mock.Anything, mock.Anything)
}

func TestCreateWithdrawRequests_BranchesAreIsolated(t *testing.T) {
	e := newTestEngine()
	user := &model.User{ID: 7}

	e.ledger.On("GetUserBalance", mock.Anything, uint(7)).
		Return(ledger.Balance{CoinsAmount: decimal.NewFromInt(30), CashAmount: decimal.NewFromInt(100)}, nil)
	e.identity.On("GetOrCreateCustomerID", mock.Anything, user).Return("cust-7", nil)
	e.sessions.On("CreateRequest", mock.Anything, mock.Anything).Return(nil)
	e.payments.On("Create", mock.Anything, mock.Anything).Return(nil)
	e.payments.On("Update", mock.Anything, mock.Anything).Return(nil)
	e.tracking.On("Create", mock.Anything, mock.Anything).Return(nil)

	// Cash debit cannot take the money lock; coins debit succeeds.
	e.ledger.On("CreateTransaction", mock.Anything, mock.MatchedBy(func(input ledger.TransactionInput) bool {
		return input.Type == model.TxTypeCashWithdrawDebit
	})).Return(nil, apperrors.ErrLockBusy)
	e.ledger.On("CreateTransaction", mock.Anything, mock.MatchedBy(func(input ledger.TransactionInput) bool {
		return input.Type == model.TxTypeCoinsWithdrawDebit && input.Amount.Equal(decimal.NewFromInt(-30))
	})).Return(lockedTx(&model.Transaction{ID: 55}), nil)

	result, err := e.svc.CreateWithdrawRequests(context.Background(), user, CreateWithdrawInput{
		Amount:      decimal.NewFromInt(50),
		CoinsAmount: decimal.NewFromInt(30),
		CashAmount:  decimal.NewFromInt(20),
	})

	require.NoError(t, err)
	require.NotNil(t, result.Cash)
	assert.NotEmpty(t, result.Cash.ErrorMessage)
	require.NotNil(t, result.Coins)
	assert.Empty(t, result.Coins.ErrorMessage)
	require.NotNil(t, result.Coins.PaymentRequest)
	assert.Equal(t, model.PaymentTypeRefund, result.Coins.PaymentRequest.Type)
}

func TestCreateWithdrawRequests_CashDebitStandsWhenProviderFails(t *testing.T) {
	e := newTestEngine()
	user := &model.User{ID: 7}

	e.ledger.On("GetUserBalance", mock.Anything, uint(7)).
		Return(ledger.Balance{CoinsAmount: decimal.Zero, CashAmount: decimal.NewFromInt(100)}, nil)
	e.identity.On("GetOrCreateCustomerID", mock.Anything, user).Return("cust-7", nil)
	e.sessions.On("CreateRequest", mock.Anything, mock.Anything).Return(nil)
	e.payments.On("Create", mock.Anything, mock.Anything).Return(nil)
	e.payments.On("Update", mock.Anything, mock.Anything).Return(nil)
	e.tracking.On("Create", mock.Anything, mock.Anything).Return(nil)
	e.ledger.On("CreateTransaction", mock.Anything, mock.Anything).
		Return(lockedTx(&model.Transaction{ID: 55}), nil)
	e.gateway.On("CreatePaySession", mock.Anything, mock.Anything).
		Return(nil, &apperrors.ProviderError{HTTPStatus: 502, Message: "provider down"})

	result, err := e.svc.CreateWithdrawRequests(context.Background(), user, CreateWithdrawInput{
		Amount:     decimal.NewFromInt(40),
		CashAmount: decimal.NewFromInt(40),
	})

	require.NoError(t, err)
	require.NotNil(t, result.Cash)
	// The debit and payment request stand; only the session step failed.
	require.NotNil(t, result.Cash.PaymentRequest)
	assert.NotEmpty(t, result.Cash.ErrorMessage)
	assert.Nil(t, result.Coins)
}

func TestMarkAsFailed(t *testing.T) {
	t.Run("pending request is failed with a manual tracking row", func(t *testing.T) {
		e := newTestEngine()
		pr := &model.PaymentRequest{ID: 42, Status: model.PaymentStatusPending, Type: model.PaymentTypeDeposit}

		e.payments.On("FindByID", mock.Anything, uint(42)).Return(pr, nil)
		e.payments.On("Update", mock.Anything, pr).Return(nil)
		e.tracking.On("Create", mock.Anything, mock.MatchedBy(func(tr *model.PaymentStatusTracking) bool {
			return tr.ActionType == model.ActionTypeManual &&
				tr.ActionBy != nil && *tr.ActionBy == 9 &&
				tr.Status == model.PaymentStatusFailed
		})).Return(nil)

		err := e.svc.MarkAsFailed(context.Background(), 42, 9)
		require.NoError(t, err)
		assert.Equal(t, model.PaymentStatusFailed, pr.Status)
	})

	t.Run("already failed is a no-op", func(t *testing.T) {
		e := newTestEngine()
		pr := &model.PaymentRequest{ID: 42, Status: model.PaymentStatusFailed}

		e.payments.On("FindByID", mock.Anything, uint(42)).Return(pr, nil)

		err := e.svc.MarkAsFailed(context.Background(), 42, 9)
		require.NoError(t, err)
		e.payments.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("completed request cannot be failed", func(t *testing.T) {
		e := newTestEngine()
		pr := &model.PaymentRequest{ID: 42, Status: model.PaymentStatusCompleted}

		e.payments.On("FindByID", mock.Anything, uint(42)).Return(pr, nil)

		err := e.svc.MarkAsFailed(context.Background(), 42, 9)
		require.Error(t, err)
		e.payments.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

func TestGetCustomerProfile_RequiresRegisteredCustomer(t *testing.T) {
	e := newTestEngine()

	_, err := e.svc.GetCustomerProfile(context.Background(), &model.User{ID: 7})

	assert.ErrorIs(t, err, apperrors.ErrCustomerNotFound)
	e.gateway.AssertNotCalled(t, "GetCustomerProfile", mock.Anything, mock.Anything)
}

func TestGetCustomerProfile_FetchesFromProvider(t *testing.T) {
	e := newTestEngine()
	custID := "cust-7"
	user := &model.User{ID: 7, MerchantCustomerID: &custID}

	e.gateway.On("GetCustomerProfile", mock.Anything, "cust-7").Return(&gidx.CustomerProfileResponse{
		MerchantCustomerID:        "cust-7",
		ProfileVerificationStatus: "VERIFIED",
	}, nil)

	profile, err := e.svc.GetCustomerProfile(context.Background(), user)

	require.NoError(t, err)
	assert.Equal(t, "VERIFIED", profile.ProfileVerificationStatus)
}
