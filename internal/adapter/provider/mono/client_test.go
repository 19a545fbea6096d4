package mono

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"biosecure-pay/config"
	"biosecure-pay/internal/core/ports"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(config.ProviderConfig{BaseURL: srv.URL, SecretKey: "live_sk", Timeout: time.Second}, zerolog.Nop())
}

func TestClient_VerifyIdentity(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		body         string
		wantVerified bool
		wantMessage  string
	}{
		{"verified", http.StatusOK, `{"status":"successful","message":"BVN lookup successful"}`, true, "BVN lookup successful"},
		{"empty body", http.StatusOK, ``, true, ""},
		{"explicit failure", http.StatusOK, `{"status":"failed","message":"BVN mismatch"}`, false, "BVN mismatch"},
		{"rejected", http.StatusBadRequest, `{"message":"Invalid BVN"}`, false, "Invalid BVN"},
		{"rejected without body", http.StatusUnauthorized, ``, false, "status 401"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/v1/kyc/bvn", r.URL.Path)
				assert.Equal(t, "live_sk", r.Header.Get("mono-sec-key"))
				var body map[string]any
				require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
				assert.Equal(t, "22212345678", body["bvn"])
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			res, err := client.VerifyIdentity(context.Background(), "22212345678", []string{"passport.png"})
			require.NoError(t, err)
			assert.Equal(t, tt.wantVerified, res.Verified)
			assert.Equal(t, tt.wantMessage, res.Message)
		})
	}
}

func TestClient_ExchangeCode(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/account/auth", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "code_123", body["code"])
		_, _ = w.Write([]byte(`{"id":"acc_9f","institution":{"name":"GTBank"},"account":{"account_number":"0123456789"}}`))
	})

	acc, err := client.ExchangeCode(context.Background(), "code_123")
	require.NoError(t, err)
	assert.Equal(t, "acc_9f", acc.AccountID)
	assert.Equal(t, "GTBank", acc.BankName)
	assert.Equal(t, "0123456789", acc.AccountNumber)
}

func TestClient_ExchangeCode_NestedAccountID(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"account":{"id":"acc_nested","account_number":"9876"}}`))
	})

	acc, err := client.ExchangeCode(context.Background(), "code_123")
	require.NoError(t, err)
	assert.Equal(t, "acc_nested", acc.AccountID)
	assert.Equal(t, "Unknown", acc.BankName)
}

func TestClient_ExchangeCode_Rejected(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{"bad code", http.StatusBadRequest, `{"message":"Invalid code"}`, "Invalid code"},
		{"no account id", http.StatusOK, `{}`, "no account id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := client.ExchangeCode(context.Background(), "bad")
			require.ErrorIs(t, err, ports.ErrProviderRejected)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestClient_Unavailable(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := client.VerifyIdentity(context.Background(), "22212345678", nil)
	assert.Error(t, err)

	_, err = client.ExchangeCode(context.Background(), "code")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ports.ErrProviderRejected)
}

func TestClient_Timeout(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(1500 * time.Millisecond)
	})

	_, err := client.ExchangeCode(context.Background(), "code")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ports.ErrProviderRejected)
}
