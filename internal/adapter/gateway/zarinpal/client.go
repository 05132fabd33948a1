// Package zarinpal implements ports.PaymentGateway against the Zarinpal
// v4 REST API.
package zarinpal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"cafetip/internal/core/ports"

	"github.com/rs/zerolog"
)

const (
	productionAPIBase = "https://api.zarinpal.com"
	productionPayBase = "https://www.zarinpal.com"
	sandboxBase       = "https://sandbox.zarinpal.com"

	codeSuccess         = 100
	codeAlreadyVerified = 101
)

// Client talks to Zarinpal. Amounts cross the wire in Rial, so every
// Toman amount is multiplied by ten on the way out.
type Client struct {
	merchantID string
	apiBase    string
	payBase    string
	httpClient *http.Client
	log        zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points both API and payment page at the given origin.
// Used by tests to target an httptest server.
func WithBaseURL(base string) Option {
	return func(c *Client) {
		c.apiBase = base
		c.payBase = base
	}
}

// NewClient creates a Zarinpal client. sandbox selects the test
// environment, where any merchant ID is accepted.
func NewClient(merchantID string, sandbox bool, timeout time.Duration, log zerolog.Logger, opts ...Option) *Client {
	c := &Client{
		merchantID: merchantID,
		apiBase:    productionAPIBase,
		payBase:    productionPayBase,
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
	if sandbox {
		c.apiBase = sandboxBase
		c.payBase = sandboxBase
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type requestPayload struct {
	MerchantID  string `json:"merchant_id"`
	Amount      int64  `json:"amount"` // Rial
	Description string `json:"description"`
	CallbackURL string `json:"callback_url"`
}

type verifyPayload struct {
	MerchantID string `json:"merchant_id"`
	Amount     int64  `json:"amount"` // Rial
	Authority  string `json:"authority"`
}

type apiResponse struct {
	Data struct {
		Code      int    `json:"code"`
		Message   string `json:"message"`
		Authority string `json:"authority"`
		RefID     int64  `json:"ref_id"`
	} `json:"data"`
	Errors json.RawMessage `json:"errors"`
}

// Initiate opens a payment session and returns the authority plus the
// page the customer must be redirected to.
func (c *Client) Initiate(ctx context.Context, amount int64, description, callbackURL string) (*ports.InitiateResult, error) {
	payload := requestPayload{
		MerchantID:  c.merchantID,
		Amount:      amount * 10,
		Description: description,
		CallbackURL: callbackURL,
	}

	var resp apiResponse
	if err := c.post(ctx, "/pg/v4/payment/request.json", payload, &resp); err != nil {
		return nil, err
	}
	if resp.Data.Code != codeSuccess {
		return nil, fmt.Errorf("zarinpal request rejected: code %d (%s)", resp.Data.Code, resp.Data.Message)
	}
	if resp.Data.Authority == "" {
		return nil, fmt.Errorf("zarinpal request succeeded without authority")
	}

	return &ports.InitiateResult{
		Authority:  resp.Data.Authority,
		PaymentURL: fmt.Sprintf("%s/pg/StartPay/%s", c.payBase, resp.Data.Authority),
	}, nil
}

// Verify confirms a payment. Code 101 means this authority was already
// verified by a previous call; it carries the same ref_id and counts as
// success so replayed callbacks resolve identically.
func (c *Client) Verify(ctx context.Context, authority string, amount int64) (*ports.VerifyResult, error) {
	payload := verifyPayload{
		MerchantID: c.merchantID,
		Amount:     amount * 10,
		Authority:  authority,
	}

	var resp apiResponse
	if err := c.post(ctx, "/pg/v4/payment/verify.json", payload, &resp); err != nil {
		return nil, err
	}
	if resp.Data.Code != codeSuccess && resp.Data.Code != codeAlreadyVerified {
		return nil, fmt.Errorf("zarinpal verification failed: code %d (%s)", resp.Data.Code, resp.Data.Message)
	}

	return &ports.VerifyResult{RefID: resp.Data.RefID}, nil
}

func (c *Client) post(ctx context.Context, path string, payload any, out *apiResponse) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiBase+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call zarinpal: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read zarinpal response: %w", err)
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("zarinpal unavailable: status %d", resp.StatusCode)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode zarinpal response: %w", err)
	}

	c.log.Debug().Str("path", path).Int("code", out.Data.Code).Msg("zarinpal call")
	return nil
}
