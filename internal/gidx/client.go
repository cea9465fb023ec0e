package gidx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"gidxpay/internal/config"
	apperrors "gidxpay/internal/errors"
)

const (
	customerProfileURI      = "v3.0/api/CustomerIdentity/CustomerProfile"
	webRegCreateSessionURI  = "v3.0/api/WebReg/CreateSession"
	cashierCreateSessionURI = "v3.0/api/WebCashier/CreateSession"
	cashierSessionStatusURI = "v3.0/api/WebCashier/WebCashierStatus"
	cashierPaymentDetailURI = "v3.0/api/WebCashier/PaymentDetail"
	documentRegistrationURI = "v3.0/api/DocumentLibrary/DocumentRegistration"

	defaultTimeout = 30 * time.Second
)

// Client is a synchronous wrapper around the GIDX HTTP API. It performs no
// retries: a non-2xx status or a non-zero provider response code is surfaced
// to the caller as a *errors.ProviderError.
type Client struct {
	baseURI     string
	callbackURL string
	creds       config.GidxCredentials
	httpClient  *http.Client
}

// NewClient creates a client with credentials resolved once from the
// configured mode (sandbox or live).
func NewClient(cfg config.GidxConfig) *Client {
	return &Client{
		baseURI:     cfg.BaseURI,
		callbackURL: cfg.CallbackURL,
		creds:       cfg.Credentials(),
		httpClient:  &http.Client{Timeout: defaultTimeout},
	}
}

// CallbackURL returns the webhook URL advertised to the provider.
func (c *Client) CallbackURL() string {
	return c.callbackURL
}

// withCredentials fills the credential fields of an outbound request.
func (c *Client) withCredentials(req *SessionRequest) {
	req.APIKey = c.creds.APIKey
	req.MerchantID = c.creds.MerchantID
	req.ProductTypeID = c.creds.ProductTypeID
	req.DeviceTypeID = c.creds.DeviceTypeID
	req.ActivityTypeID = c.creds.ActivityTypeID
}

func (c *Client) credentialValues() url.Values {
	values := url.Values{}
	values.Set("ApiKey", c.creds.APIKey)
	values.Set("MerchantID", c.creds.MerchantID)
	if c.creds.ProductTypeID != "" {
		values.Set("ProductTypeID", c.creds.ProductTypeID)
	}
	if c.creds.DeviceTypeID != "" {
		values.Set("DeviceTypeID", c.creds.DeviceTypeID)
	}
	if c.creds.ActivityTypeID != "" {
		values.Set("ActivityTypeID", c.creds.ActivityTypeID)
	}
	return values
}

// CreateProfileSession starts an identity verification session.
func (c *Client) CreateProfileSession(ctx context.Context, req *SessionRequest) (*SessionResponse, error) {
	c.withCredentials(req)
	var resp SessionResponse
	if err := c.postJSON(ctx, webRegCreateSessionURI, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreatePaySession starts a cashier session (deposit or payout, depending on
// the request's PayActionCode).
func (c *Client) CreatePaySession(ctx context.Context, req *SessionRequest) (*SessionResponse, error) {
	c.withCredentials(req)
	var resp SessionResponse
	if err := c.postJSON(ctx, cashierCreateSessionURI, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreatePayoutSession starts a standalone payout cashier session for the
// given amount.
func (c *Client) CreatePayoutSession(ctx context.Context, amount float64) (*SessionResponse, error) {
	req := &SessionRequest{
		MerchantSessionID: uuid.New().String(),
		PayActionCode:     PayActionPayout,
		CashierPaymentAmount: &CashierPaymentAmount{
			PaymentAmount:         amount,
			PaymentAmountOverride: true,
			BonusAmountOverride:   true,
			PaymentCurrencyCode:   "USD",
		},
	}
	return c.CreatePaySession(ctx, req)
}

// GetPaymentDetail fetches the authoritative payment detail for a session
// and merchant transaction id.
func (c *Client) GetPaymentDetail(ctx context.Context, merchantSessionID, merchantTransactionID string) (*PaymentDetailResponse, error) {
	values := c.credentialValues()
	values.Set("MerchantSessionID", merchantSessionID)
	values.Set("MerchantTransactionID", merchantTransactionID)

	var resp PaymentDetailResponse
	if err := c.getJSON(ctx, cashierPaymentDetailURI, values, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetSessionStatus fetches the status of a cashier session.
func (c *Client) GetSessionStatus(ctx context.Context, merchantSessionID string) (*SessionStatusResponse, error) {
	values := c.credentialValues()
	values.Set("MerchantSessionID", merchantSessionID)

	var resp SessionStatusResponse
	if err := c.getJSON(ctx, cashierSessionStatusURI, values, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetCustomerProfile fetches the identity profile for a customer id.
func (c *Client) GetCustomerProfile(ctx context.Context, customerID string) (*CustomerProfileResponse, error) {
	values := c.credentialValues()
	values.Set("MerchantSessionID", uuid.New().String())
	values.Set("MerchantCustomerID", customerID)

	var resp CustomerProfileResponse
	if err := c.getJSON(ctx, customerProfileURI, values, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// documentMetadata is the json part of a document registration upload.
type documentMetadata struct {
	baseRequest

	MerchantSessionID  string `json:"MerchantSessionID"`
	MerchantCustomerID string `json:"MerchantCustomerID"`
	CategoryType       int    `json:"CategoryType"`
	DocumentStatus     int    `json:"DocumentStatus"`
}

// UploadDocument registers an identity document for a customer. The file is
// sent as multipart form data with the keyed metadata in a "json" field.
func (c *Client) UploadDocument(ctx context.Context, customerID string, categoryType int, filename string, file []byte) error {
	meta := documentMetadata{
		MerchantSessionID:  uuid.New().String(),
		MerchantCustomerID: customerID,
		CategoryType:       categoryType,
		DocumentStatus:     DocumentStatusNotReviewed,
	}
	meta.APIKey = c.creds.APIKey
	meta.MerchantID = c.creds.MerchantID
	meta.ProductTypeID = c.creds.ProductTypeID
	meta.DeviceTypeID = c.creds.DeviceTypeID
	meta.ActivityTypeID = c.creds.ActivityTypeID

	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshal document metadata: %w", err)
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(file); err != nil {
		return fmt.Errorf("write form file: %w", err)
	}
	if err := writer.WriteField("json", string(metaJSON)); err != nil {
		return fmt.Errorf("write json field: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("close multipart writer: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURI+"/"+documentRegistrationURI, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())

	var resp SessionResponse
	return c.do(httpReq, &resp)
}

func (c *Client) postJSON(ctx context.Context, uri string, body interface{}, out responder) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURI+"/"+uri, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	return c.do(httpReq, out)
}

func (c *Client) getJSON(ctx context.Context, uri string, values url.Values, out responder) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURI+"/"+uri+"?"+values.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	return c.do(httpReq, out)
}

// do executes the request and decodes the response. A non-2xx HTTP status or
// a non-zero provider response code is a fatal error for this call; retrying
// is the caller's decision.
func (c *Client) do(req *http.Request, out responder) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("gidx request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read gidx response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var env envelope
		_ = json.Unmarshal(raw, &env)
		msg := env.ResponseMessage
		if msg == "" {
			msg = "unknown error"
		}
		log.Printf("gidx error response (status %d): %s", resp.StatusCode, raw)
		return &apperrors.ProviderError{
			HTTPStatus:   resp.StatusCode,
			ProviderCode: env.ResponseCode,
			Message:      msg,
		}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode gidx response: %w", err)
	}

	if out.code() != 0 {
		log.Printf("gidx error response (code %d): %s", out.code(), raw)
		msg := out.message()
		if msg == "" {
			msg = "unknown error"
		}
		return &apperrors.ProviderError{
			HTTPStatus:   resp.StatusCode,
			ProviderCode: out.code(),
			Message:      msg,
		}
	}

	return nil
}
