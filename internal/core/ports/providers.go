package ports

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrProviderRejected marks a provider answer that was received but refused
// the request. Anything else returned by a provider client is a transport
// failure (timeout, connection, 5xx).
var ErrProviderRejected = errors.New("provider rejected request")

// GatewayInitRequest is the input to a payment initialization.
type GatewayInitRequest struct {
	Recipient string
	Amount    int64
	Currency  string
}

// GatewayInitResult is the boolean success signal plus provider reference.
type GatewayInitResult struct {
	Success   bool
	Reference string
	Message   string
}

// GatewayVerifyResult is the outcome of a payment verification.
type GatewayVerifyResult struct {
	Success bool
	Status  string
	Message string
}

// PaymentGateway initializes and verifies transfers with the payment provider.
// A non-nil error means the provider could not be reached.
type PaymentGateway interface {
	Initialize(ctx context.Context, req GatewayInitRequest) (*GatewayInitResult, error)
	Verify(ctx context.Context, reference string) (*GatewayVerifyResult, error)
}

// KYCResult is the outcome of an identity check.
type KYCResult struct {
	Verified bool
	Message  string
}

// KYCProvider verifies a user's identity. A non-nil error means the provider
// could not be reached.
type KYCProvider interface {
	VerifyIdentity(ctx context.Context, nationalID string, documents []string) (*KYCResult, error)
}

// ProviderAccount is a bank account as reported by the account-link provider.
// AccountNumber is full length and must be truncated before persisting.
type ProviderAccount struct {
	AccountID     string
	BankName      string
	AccountNumber string
}

// AccountLinkProvider exchanges a one-time authorization code for account details.
type AccountLinkProvider interface {
	ExchangeCode(ctx context.Context, code string) (*ProviderAccount, error)
}

// EncryptionService handles AES-256-GCM encryption/decryption.
type EncryptionService interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// HashService handles password hashing (Argon2id).
type HashService interface {
	Hash(password string) (string, error)
	Verify(password string, hash string) (bool, error)
}

// TokenService handles JWT token operations.
type TokenService interface {
	Generate(userID uuid.UUID) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	UserID uuid.UUID
}

// TemplateMatcher compares a presented biometric sample to an enrolled one.
type TemplateMatcher interface {
	Match(presented, enrolled string) bool
}

// IdempotencyCache maps a client idempotency key to a stored value.
type IdempotencyCache interface {
	Get(ctx context.Context, key string) ([]byte, error) // nil when absent
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// AttemptLimiter counts attempts per key inside a fixed window.
type AttemptLimiter interface {
	// Allow records one attempt and reports whether it is within limit.
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// HealthChecker is a dependency pinged by GET /health.
type HealthChecker interface {
	Name() string
	Ping(ctx context.Context) error
}
