package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PaymentRequestStatus is the lifecycle status of a payment request.
type PaymentRequestStatus string

const (
	PaymentStatusNew            PaymentRequestStatus = "new"
	PaymentStatusSessionCreated PaymentRequestStatus = "session_created"
	PaymentStatusSessionFailed  PaymentRequestStatus = "session_failed"
	PaymentStatusApproved       PaymentRequestStatus = "approved"
	PaymentStatusApprovalFailed PaymentRequestStatus = "approval_failed"
	PaymentStatusRejected       PaymentRequestStatus = "rejected"
	PaymentStatusPending        PaymentRequestStatus = "pending"
	PaymentStatusCompleted      PaymentRequestStatus = "completed"
	PaymentStatusFailed         PaymentRequestStatus = "failed"
	PaymentStatusReversed       PaymentRequestStatus = "transaction_reversed"
)

// IsTerminal reports whether the status ends the lifecycle.
func (s PaymentRequestStatus) IsTerminal() bool {
	switch s {
	case PaymentStatusCompleted, PaymentStatusFailed, PaymentStatusReversed:
		return true
	}
	return false
}

// CanTransition reports whether an automatic transition from s to next is
// allowed. Equal statuses are a no-op handled by the caller. The only
// transition out of a terminal status is completed -> transaction_reversed,
// which happens when a settled withdrawal is reversed by the provider.
func (s PaymentRequestStatus) CanTransition(next PaymentRequestStatus) bool {
	if s == next {
		return false
	}
	if !s.IsTerminal() {
		return true
	}
	return s == PaymentStatusCompleted && next == PaymentStatusReversed
}

// PaymentRequestType distinguishes the direction of a money movement.
type PaymentRequestType string

const (
	PaymentTypeDeposit  PaymentRequestType = "deposit"
	PaymentTypeWithdraw PaymentRequestType = "withdraw"
	PaymentTypeRefund   PaymentRequestType = "refund"
)

// PaymentRequest is the authoritative local record of one money-movement
// attempt. MerchantTransactionID is the idempotency key correlating it with
// every provider-side reference to the same movement.
type PaymentRequest struct {
	ID     uint                 `json:"id" gorm:"primaryKey"`
	UserID uint                 `json:"user_id" gorm:"not null;index"`
	Status PaymentRequestStatus `json:"status" gorm:"type:varchar(20);not null;default:'new';index"`
	Type   PaymentRequestType   `json:"type" gorm:"type:varchar(10);not null;index"`
	// MerchantTransactionID is system-generated, globally unique and immutable
	// after creation.
	MerchantTransactionID string `json:"merchant_transaction_id" gorm:"size:36;not null;uniqueIndex"`
	// GidxSessionID is a lookup reference to the session audit record that
	// originated this request, not an ownership relation.
	GidxSessionID *uint `json:"gidx_session_id,omitempty" gorm:"index"`
	// TransactionID and ReversalTransactionID reference the external ledger.
	// Each is set at most once.
	TransactionID         *uint           `json:"transaction_id,omitempty"`
	ReversalTransactionID *uint           `json:"reversal_transaction_id,omitempty"`
	MethodType            string          `json:"method_type,omitempty" gorm:"size:40;index"`
	Amount                decimal.Decimal `json:"amount" gorm:"type:decimal(10,2);not null"`
	Currency              string          `json:"currency" gorm:"size:3;not null;default:'USD'"`
	CreatedAt             time.Time       `json:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at"`
	DeletedAt             gorm.DeletedAt  `json:"-" gorm:"index"`

	// Relations
	GidxSession    *ProviderSession        `json:"-" gorm:"foreignKey:GidxSessionID"`
	StatusTracking []PaymentStatusTracking `json:"-" gorm:"foreignKey:PaymentRequestID"`
}
