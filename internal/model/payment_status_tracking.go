package model

import "time"

// PaymentActionType records who or what changed a payment request status.
type PaymentActionType string

const (
	ActionTypeManual           PaymentActionType = "manual"
	ActionTypeAutomatic        PaymentActionType = "automatic"
	ActionTypeProviderCallback PaymentActionType = "provider_callback"
)

// PaymentStatusTracking is one row per status transition of a payment
// request. Rows are append-only; ordered by creation they reconstruct the
// full status history.
type PaymentStatusTracking struct {
	ID               uint `json:"id" gorm:"primaryKey"`
	PaymentRequestID uint `json:"payment_request_id" gorm:"not null;index"`
	// ActionBy is the user id for manual changes, nil otherwise.
	ActionBy   *uint             `json:"action_by,omitempty"`
	ActionType PaymentActionType `json:"action_type" gorm:"type:varchar(20);not null"`
	// OldStatus is nil for the initial row written at origination.
	OldStatus *PaymentRequestStatus `json:"old_status,omitempty" gorm:"type:varchar(20)"`
	Status    PaymentRequestStatus  `json:"status" gorm:"type:varchar(20);not null"`
	// SessionResponseID optionally references the provider response that
	// triggered the transition.
	SessionResponseID *uint     `json:"session_response_id,omitempty"`
	CreatedAt         time.Time `json:"created_at"`

	// Relations
	PaymentRequest  PaymentRequest           `json:"-" gorm:"foreignKey:PaymentRequestID"`
	SessionResponse *ProviderSessionResponse `json:"-" gorm:"foreignKey:SessionResponseID"`
}
