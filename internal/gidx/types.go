package gidx

import "encoding/json"

// Payment status codes reported by the provider in payment details.
const (
	PaymentStatusCodeNotFound   = -1
	PaymentStatusCodePending    = 0
	PaymentStatusCodeComplete   = 1
	PaymentStatusCodeIneligible = 2
	PaymentStatusCodeFailed     = 3
	PaymentStatusCodeProcessing = 4
	PaymentStatusCodeReversed   = 5
)

// Pay action codes for cashier sessions.
const (
	PayActionPay    = "PAY"
	PayActionPayout = "PAYOUT"
)

// Document category types accepted by the document registration endpoint.
const (
	DocumentCategoryOther          = 1
	DocumentCategoryDriversLicense = 2
	DocumentCategoryPassport       = 3
	DocumentCategoryMilitaryID     = 4
	DocumentCategoryGovtPhotoID    = 5
	DocumentCategoryStudentPhotoID = 6
	DocumentCategoryUtilityBill    = 7

	// DocumentStatusNotReviewed is the initial status of every upload.
	DocumentStatusNotReviewed = 1
)

// baseRequest carries the environment-scoped credentials merged into every
// outbound call.
type baseRequest struct {
	APIKey         string `json:"ApiKey,omitempty"`
	MerchantID     string `json:"MerchantID,omitempty"`
	ProductTypeID  string `json:"ProductTypeID,omitempty"`
	DeviceTypeID   string `json:"DeviceTypeID,omitempty"`
	ActivityTypeID string `json:"ActivityTypeID,omitempty"`
}

// DeviceGPS is the device location attached to session requests.
type DeviceGPS struct {
	Latitude  float64 `json:"Latitude"`
	Longitude float64 `json:"Longitude"`
}

// CashierPaymentAmount describes the amount block of a cashier session.
type CashierPaymentAmount struct {
	PaymentAmount         float64 `json:"PaymentAmount"`
	PaymentAmountOverride bool    `json:"PaymentAmountOverride"`
	BonusAmount           float64 `json:"BonusAmount"`
	BonusAmountOverride   bool    `json:"BonusAmountOverride"`
	BonusDetails          string  `json:"BonusDetails"`
	PaymentCurrencyCode   string  `json:"PaymentCurrencyCode"`
}

// SessionRequest is the outbound body for profile and cashier session
// creation. Payment fields are empty for profile sessions.
type SessionRequest struct {
	baseRequest

	MerchantSessionID  string     `json:"MerchantSessionID"`
	MerchantCustomerID string     `json:"MerchantCustomerID"`
	CustomerIPAddress  string     `json:"CustomerIpAddress,omitempty"`
	CallbackURL        string     `json:"CallbackURL,omitempty"`
	DeviceGPS          *DeviceGPS `json:"DeviceGPS,omitempty"`

	MerchantOrderID       string                `json:"MerchantOrderID,omitempty"`
	MerchantTransactionID string                `json:"MerchantTransactionID,omitempty"`
	PayActionCode         string                `json:"PayActionCode,omitempty"`
	CashierPaymentAmount  *CashierPaymentAmount `json:"CashierPaymentAmount,omitempty"`
}

// envelope is embedded in every provider response to carry the provider
// level status.
type envelope struct {
	ResponseCode    int    `json:"ResponseCode"`
	ResponseMessage string `json:"ResponseMessage"`
}

func (e envelope) code() int       { return e.ResponseCode }
func (e envelope) message() string { return e.ResponseMessage }

type responder interface {
	code() int
	message() string
}

// SessionResponse is returned by session creation calls.
type SessionResponse struct {
	envelope

	MerchantSessionID     string   `json:"MerchantSessionID"`
	MerchantTransactionID string   `json:"MerchantTransactionID,omitempty"`
	SessionID             string   `json:"SessionID"`
	SessionURL            string   `json:"SessionURL"`
	SessionExpirationTime string   `json:"SessionExpirationTime,omitempty"`
	SessionScore          float64  `json:"SessionScore,omitempty"`
	ReasonCodes           []string `json:"ReasonCodes,omitempty"`
}

// PaymentDetail is one settlement item of a payment detail response.
// PaymentStatusCode is a pointer: the provider omits it while a payment has
// no status yet, which is distinct from code 0 (pending).
type PaymentDetail struct {
	PaymentAmount        float64 `json:"PaymentAmount"`
	PaymentAmountType    string  `json:"PaymentAmountType,omitempty"`
	CurrencyCode         string  `json:"CurrencyCode,omitempty"`
	PaymentMethodType    string  `json:"PaymentMethodType"`
	PaymentStatusCode    *int    `json:"PaymentStatusCode,omitempty"`
	PaymentStatusMessage string  `json:"PaymentStatusMessage,omitempty"`
}

// PaymentDetailResponse is the authoritative payment detail fetched after a
// callback. PaymentDetails carries the settlement items; in practice only
// the first is populated.
type PaymentDetailResponse struct {
	envelope

	MerchantSessionID     string          `json:"MerchantSessionID"`
	MerchantTransactionID string          `json:"MerchantTransactionID"`
	PaymentDetails        []PaymentDetail `json:"PaymentDetails"`
}

// First returns the first payment detail or nil when the list is empty.
func (r *PaymentDetailResponse) First() *PaymentDetail {
	if len(r.PaymentDetails) == 0 {
		return nil
	}
	return &r.PaymentDetails[0]
}

// SessionStatusResponse is returned by the cashier status endpoint.
type SessionStatusResponse struct {
	envelope

	MerchantSessionID    string `json:"MerchantSessionID"`
	SessionStatusCode    int    `json:"SessionStatusCode"`
	SessionStatusMessage string `json:"SessionStatusMessage,omitempty"`
}

// CustomerProfileResponse is returned by the customer identity endpoint.
type CustomerProfileResponse struct {
	envelope

	MerchantCustomerID        string          `json:"MerchantCustomerID"`
	ProfileVerificationStatus string          `json:"ProfileVerificationStatus,omitempty"`
	IdentityConfidenceScore   float64         `json:"IdentityConfidenceScore,omitempty"`
	FraudConfidenceScore      float64         `json:"FraudConfidenceScore,omitempty"`
	ReasonCodes               []string        `json:"ReasonCodes,omitempty"`
	LocationDetail            json.RawMessage `json:"LocationDetail,omitempty"`
}

// CallbackPayload is the body the provider posts to the webhook. It is a
// trigger only: money decisions are made from a re-fetched payment detail,
// never from these fields.
type CallbackPayload struct {
	ServiceType           string   `json:"ServiceType"`
	MerchantSessionID     string   `json:"MerchantSessionID"`
	MerchantTransactionID string   `json:"MerchantTransactionID,omitempty"`
	MerchantCustomerID    string   `json:"MerchantCustomerID,omitempty"`
	StatusCode            int      `json:"StatusCode,omitempty"`
	StatusMessage         string   `json:"StatusMessage,omitempty"`
	SessionScore          float64  `json:"SessionScore,omitempty"`
	ReasonCodes           []string `json:"ReasonCodes,omitempty"`
}
