package repository

import (
	"context"

	"gorm.io/gorm"

	"gidxpay/internal/model"
)

// SessionRepository persists the session request/response audit trail.
type SessionRepository interface {
	CreateRequest(ctx context.Context, session *model.ProviderSession) error
	CreateResponse(ctx context.Context, response *model.ProviderSessionResponse) error
	FindRequestByMerchantSessionID(ctx context.Context, merchantSessionID string) (*model.ProviderSession, error)
}

type sessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository creates a new session audit repository.
func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

// CreateRequest stores an outbound session request audit row.
func (r *sessionRepository) CreateRequest(ctx context.Context, session *model.ProviderSession) error {
	return dbFor(ctx, r.db).Create(session).Error
}

// CreateResponse stores an inbound session response audit row.
func (r *sessionRepository) CreateResponse(ctx context.Context, response *model.ProviderSessionResponse) error {
	return dbFor(ctx, r.db).Create(response).Error
}

// FindRequestByMerchantSessionID looks up a session audit row for correlation.
func (r *sessionRepository) FindRequestByMerchantSessionID(ctx context.Context, merchantSessionID string) (*model.ProviderSession, error) {
	var session model.ProviderSession
	err := dbFor(ctx, r.db).Where("merchant_session_id = ?", merchantSessionID).First(&session).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}
