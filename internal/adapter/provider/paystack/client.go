// Package paystack is the payment gateway client. It speaks the
// transaction initialize/verify API and reduces every answer to a
// success flag and a reference.
package paystack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"biosecure-pay/config"
	"biosecure-pay/internal/core/ports"

	"github.com/rs/zerolog"
)

const (
	defaultBaseURL = "https://api.paystack.co"
	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 1 << 20
)

// Client implements ports.PaymentGateway.
type Client struct {
	baseURL   string
	secretKey string
	http      *http.Client
	log       zerolog.Logger
}

type initializeRequest struct {
	Email    string `json:"email"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency,omitempty"`
}

type envelope struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Reference string `json:"reference"`
		Status    string `json:"status"`
		Gateway   string `json:"gateway_response"`
	} `json:"data"`
}

// NewClient creates a Paystack client. Every call is bounded by cfg.Timeout.
func NewClient(cfg config.ProviderConfig, log zerolog.Logger) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:   baseURL,
		secretKey: cfg.SecretKey,
		http:      &http.Client{Timeout: timeout},
		log:       log,
	}
}

// Initialize creates a pending payment for recipient and returns its reference.
func (c *Client) Initialize(ctx context.Context, req ports.GatewayInitRequest) (*ports.GatewayInitResult, error) {
	body, err := json.Marshal(initializeRequest{Email: req.Recipient, Amount: req.Amount, Currency: req.Currency})
	if err != nil {
		return nil, fmt.Errorf("marshal initialize request: %w", err)
	}

	status, env, err := c.do(ctx, http.MethodPost, "/transaction/initialize", body)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK || !env.Status || env.Data.Reference == "" {
		c.log.Info().Int("status", status).Str("message", env.Message).Msg("paystack initialize rejected")
		return &ports.GatewayInitResult{Success: false, Message: rejectionMessage(status, env)}, nil
	}
	return &ports.GatewayInitResult{Success: true, Reference: env.Data.Reference, Message: env.Message}, nil
}

// Verify reports whether the payment behind reference completed.
func (c *Client) Verify(ctx context.Context, reference string) (*ports.GatewayVerifyResult, error) {
	status, env, err := c.do(ctx, http.MethodGet, "/transaction/verify/"+url.PathEscape(reference), nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return &ports.GatewayVerifyResult{Success: false, Message: rejectionMessage(status, env)}, nil
	}
	return &ports.GatewayVerifyResult{
		Success: env.Data.Status == "success",
		Status:  env.Data.Status,
		Message: env.Data.Gateway,
	}, nil
}

// do performs one request. Transport failures, 429 and 5xx come back as
// errors; any other status is returned for the caller to interpret.
func (c *Client) do(ctx context.Context, method, path string, body []byte) (int, *envelope, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("create paystack request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.secretKey)
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return 0, nil, fmt.Errorf("paystack %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return 0, nil, fmt.Errorf("read paystack response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return 0, nil, fmt.Errorf("paystack %s %s: status %d", method, path, resp.StatusCode)
	}

	env := &envelope{}
	if len(respBody) > 0 {
		if err := json.Unmarshal(respBody, env); err != nil && resp.StatusCode == http.StatusOK {
			return 0, nil, fmt.Errorf("decode paystack response: %w", err)
		}
	}
	return resp.StatusCode, env, nil
}

func rejectionMessage(status int, env *envelope) string {
	if env.Message != "" {
		return env.Message
	}
	return fmt.Sprintf("status %d", status)
}

var _ ports.PaymentGateway = (*Client)(nil)
