// Package mono is the identity and account-linking provider client.
package mono

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"biosecure-pay/config"
	"biosecure-pay/internal/core/ports"

	"github.com/rs/zerolog"
)

const (
	defaultBaseURL = "https://api.withmono.com"
	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 1 << 20

	headerSecretKey = "mono-sec-key"
)

// Client implements ports.KYCProvider and ports.AccountLinkProvider.
type Client struct {
	baseURL   string
	secretKey string
	http      *http.Client
	log       zerolog.Logger
}

type kycRequest struct {
	BVN       string   `json:"bvn"`
	Documents []string `json:"documents,omitempty"`
}

type kycResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type authRequest struct {
	Code string `json:"code"`
}

type authResponse struct {
	ID          string `json:"id"`
	Message     string `json:"message"`
	Institution struct {
		Name string `json:"name"`
	} `json:"institution"`
	Account struct {
		ID            string `json:"id"`
		AccountNumber string `json:"account_number"`
	} `json:"account"`
}

// NewClient creates a Mono client. Every call is bounded by cfg.Timeout.
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

// VerifyIdentity checks a national identifier (BVN). A 2xx answer verifies;
// a 4xx answer is a refusal.
func (c *Client) VerifyIdentity(ctx context.Context, nationalID string, documents []string) (*ports.KYCResult, error) {
	var out kycResponse
	status, err := c.post(ctx, "/v1/kyc/bvn", kycRequest{BVN: nationalID, Documents: documents}, &out)
	if err != nil {
		return nil, err
	}
	if status >= 400 || strings.EqualFold(out.Status, "failed") {
		msg := out.Message
		if msg == "" {
			msg = fmt.Sprintf("status %d", status)
		}
		return &ports.KYCResult{Verified: false, Message: msg}, nil
	}
	return &ports.KYCResult{Verified: true, Message: out.Message}, nil
}

// ExchangeCode trades a widget authorization code for the linked account.
// Refusals wrap ports.ErrProviderRejected.
func (c *Client) ExchangeCode(ctx context.Context, code string) (*ports.ProviderAccount, error) {
	var out authResponse
	status, err := c.post(ctx, "/account/auth", authRequest{Code: code}, &out)
	if err != nil {
		return nil, err
	}
	if status >= 400 {
		msg := out.Message
		if msg == "" {
			msg = fmt.Sprintf("status %d", status)
		}
		return nil, fmt.Errorf("%w: %s", ports.ErrProviderRejected, msg)
	}

	accountID := out.ID
	if accountID == "" {
		accountID = out.Account.ID
	}
	if accountID == "" {
		return nil, fmt.Errorf("%w: no account id in response", ports.ErrProviderRejected)
	}

	bank := out.Institution.Name
	if bank == "" {
		bank = "Unknown"
	}
	return &ports.ProviderAccount{
		AccountID:     accountID,
		BankName:      bank,
		AccountNumber: out.Account.AccountNumber,
	}, nil
}

// post sends payload and decodes the answer into out. Transport failures,
// 429 and 5xx are errors; other statuses are returned to the caller.
func (c *Client) post(ctx context.Context, path string, payload, out any) (int, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("marshal mono request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("create mono request: %w", err)
	}
	httpReq.Header.Set(headerSecretKey, c.secretKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return 0, fmt.Errorf("mono POST %s: %w", path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return 0, fmt.Errorf("read mono response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return 0, fmt.Errorf("mono POST %s: status %d", path, resp.StatusCode)
	}

	if len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil && resp.StatusCode < 300 {
			return 0, fmt.Errorf("decode mono response: %w", err)
		}
	}
	c.log.Debug().Str("path", path).Int("status", resp.StatusCode).Msg("mono response")
	return resp.StatusCode, nil
}

var (
	_ ports.KYCProvider         = (*Client)(nil)
	_ ports.AccountLinkProvider = (*Client)(nil)
)
