package repository

import (
	"context"

	"gorm.io/gorm"

	"gidxpay/internal/model"
)

// PaymentRequestRepository defines payment request persistence operations.
type PaymentRequestRepository interface {
	Create(ctx context.Context, pr *model.PaymentRequest) error
	Update(ctx context.Context, pr *model.PaymentRequest) error
	FindByID(ctx context.Context, id uint) (*model.PaymentRequest, error)
	// FindLastByMerchantTransactionID returns the newest matching request
	// (highest id wins), or nil when none exists.
	FindLastByMerchantTransactionID(ctx context.Context, merchantTransactionID string) (*model.PaymentRequest, error)
	ListByUserID(ctx context.Context, userID uint) ([]model.PaymentRequest, error)
}

type paymentRequestRepository struct {
	db *gorm.DB
}

// NewPaymentRequestRepository creates a new payment request repository.
func NewPaymentRequestRepository(db *gorm.DB) PaymentRequestRepository {
	return &paymentRequestRepository{db: db}
}

// Create creates a new payment request record.
func (r *paymentRequestRepository) Create(ctx context.Context, pr *model.PaymentRequest) error {
	return dbFor(ctx, r.db).Create(pr).Error
}

// Update persists an existing payment request record.
func (r *paymentRequestRepository) Update(ctx context.Context, pr *model.PaymentRequest) error {
	return dbFor(ctx, r.db).Save(pr).Error
}

// FindByID finds a payment request by ID.
func (r *paymentRequestRepository) FindByID(ctx context.Context, id uint) (*model.PaymentRequest, error) {
	var pr model.PaymentRequest
	if err := dbFor(ctx, r.db).Where("id = ?", id).First(&pr).Error; err != nil {
		return nil, err
	}
	return &pr, nil
}

// FindLastByMerchantTransactionID resolves a callback's merchant transaction
// id to the newest matching payment request.
func (r *paymentRequestRepository) FindLastByMerchantTransactionID(ctx context.Context, merchantTransactionID string) (*model.PaymentRequest, error) {
	var pr model.PaymentRequest
	err := dbFor(ctx, r.db).
		Where("merchant_transaction_id = ?", merchantTransactionID).
		Order("id DESC").
		First(&pr).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &pr, nil
}

// ListByUserID lists all payment requests of a user, newest first.
func (r *paymentRequestRepository) ListByUserID(ctx context.Context, userID uint) ([]model.PaymentRequest, error) {
	var prs []model.PaymentRequest
	if err := dbFor(ctx, r.db).Where("user_id = ?", userID).Order("id DESC").Find(&prs).Error; err != nil {
		return nil, err
	}
	return prs, nil
}

// PaymentStatusTrackingRepository defines status tracking persistence.
// Rows are append-only: there is deliberately no update or delete.
type PaymentStatusTrackingRepository interface {
	Create(ctx context.Context, tracking *model.PaymentStatusTracking) error
	ListByPaymentRequestID(ctx context.Context, paymentRequestID uint) ([]model.PaymentStatusTracking, error)
}

type paymentStatusTrackingRepository struct {
	db *gorm.DB
}

// NewPaymentStatusTrackingRepository creates a new tracking repository.
func NewPaymentStatusTrackingRepository(db *gorm.DB) PaymentStatusTrackingRepository {
	return &paymentStatusTrackingRepository{db: db}
}

// Create appends a status transition row.
func (r *paymentStatusTrackingRepository) Create(ctx context.Context, tracking *model.PaymentStatusTracking) error {
	return dbFor(ctx, r.db).Create(tracking).Error
}

// ListByPaymentRequestID returns the transition history, oldest first.
func (r *paymentStatusTrackingRepository) ListByPaymentRequestID(ctx context.Context, paymentRequestID uint) ([]model.PaymentStatusTracking, error) {
	var rows []model.PaymentStatusTracking
	err := dbFor(ctx, r.db).
		Where("payment_request_id = ?", paymentRequestID).
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
