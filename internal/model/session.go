package model

import "time"

// GidxServiceType names the provider workflow a session belongs to. The
// values match the ServiceType strings GIDX sends in callbacks.
type GidxServiceType string

const (
	ServiceTypeCustomerRegistration GidxServiceType = "Customer Registration"
	ServiceTypePayment              GidxServiceType = "Payment"
)

// ProviderSession is the audit record of one outbound session request.
// Purely observational: it stores the raw serialized request and is only
// read back for correlation lookups.
type ProviderSession struct {
	ID                    uint            `json:"id" gorm:"primaryKey"`
	UserID                uint            `json:"user_id" gorm:"not null;index"`
	MerchantSessionID     string          `json:"merchant_session_id" gorm:"size:36;not null;uniqueIndex"`
	MerchantCustomerID    string          `json:"merchant_customer_id" gorm:"size:36;not null;index"`
	MerchantTransactionID *string         `json:"merchant_transaction_id,omitempty" gorm:"size:36;index"`
	ServiceType           GidxServiceType `json:"service_type" gorm:"size:40;not null"`
	IPAddress             string          `json:"ip_address,omitempty" gorm:"size:45"`
	DeviceLocation        *string         `json:"device_location,omitempty" gorm:"type:text"`
	RequestRaw            string          `json:"request_raw" gorm:"type:text"`
	CreatedAt             time.Time       `json:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at"`

	// Relations
	Responses []ProviderSessionResponse `json:"-" gorm:"foreignKey:GidxSessionID"`
}

// ProviderSessionResponse is the audit record of one inbound session
// response, paired to its request by merchant session id.
type ProviderSessionResponse struct {
	ID                    uint            `json:"id" gorm:"primaryKey"`
	UserID                uint            `json:"user_id" gorm:"not null;index"`
	GidxSessionID         *uint           `json:"gidx_session_id,omitempty" gorm:"index"`
	MerchantSessionID     string          `json:"merchant_session_id" gorm:"size:36;not null;index"`
	MerchantCustomerID    string          `json:"merchant_customer_id,omitempty" gorm:"size:36;index"`
	MerchantTransactionID *string         `json:"merchant_transaction_id,omitempty" gorm:"size:36;index"`
	ServiceType           GidxServiceType `json:"service_type" gorm:"size:40;not null"`
	StatusCode            int             `json:"status_code"`
	StatusMessage         string          `json:"status_message,omitempty" gorm:"size:255"`
	SessionScore          float64         `json:"session_score,omitempty"`
	ResponseRaw           string          `json:"response_raw" gorm:"type:text"`
	CreatedAt             time.Time       `json:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at"`
}
