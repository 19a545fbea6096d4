package ports

import (
	"context"
	"time"

	"biosecure-pay/internal/core/domain"

	"github.com/google/uuid"
)

// --- Service Ports (Business Logic) ---

// AuthService defines registration and login.
type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (*AuthResult, error)
	Login(ctx context.Context, identifier, password string) (*AuthResult, error)
}

// RegisterRequest holds input for user registration.
type RegisterRequest struct {
	Email    string
	Phone    string
	FullName string
	Password string
}

// AuthResult is returned by register and login.
type AuthResult struct {
	UserID    uuid.UUID
	Token     string
	ExpiresAt time.Time
}

// KYCService runs identity verification for a user.
type KYCService interface {
	Verify(ctx context.Context, userID uuid.UUID, nationalID string, documents []string) (*domain.User, error)
}

// BiometricService is the biometric registry.
type BiometricService interface {
	Enroll(ctx context.Context, userID uuid.UUID, factor domain.FactorType, template string) (uuid.UUID, error)
	List(ctx context.Context, userID uuid.UUID) ([]domain.BiometricSummary, error)
	Delete(ctx context.Context, id, userID uuid.UUID) (bool, error)
	// GetTemplate returns the decrypted template. Callers must not log it.
	GetTemplate(ctx context.Context, userID uuid.UUID, factor domain.FactorType) (string, bool, error)
}

// LinkAccountInput describes an account linked without the provider exchange.
type LinkAccountInput struct {
	AccountID     string
	BankName      string
	AccountNumber string
}

// AccountService is the account linkage store.
type AccountService interface {
	Link(ctx context.Context, userID uuid.UUID, code string) (*domain.LinkedAccount, error)
	AddLinkedAccount(ctx context.Context, userID uuid.UUID, input LinkAccountInput) (*domain.LinkedAccount, error)
	List(ctx context.Context, userID uuid.UUID) ([]domain.LinkedAccount, error)
	IsLinked(ctx context.Context, userID uuid.UUID, accountID string) (bool, error)
}

// InitiateRequest holds validated input for transaction initiation.
type InitiateRequest struct {
	UserID         uuid.UUID
	Amount         int64
	Currency       string
	Recipient      string
	AccountID      string
	IdempotencyKey string
}

// TransactionService is the authorization state machine.
type TransactionService interface {
	Initiate(ctx context.Context, req InitiateRequest) (*domain.Transaction, error)
	Authenticate(ctx context.Context, userID, txID uuid.UUID, proofs []domain.FactorProof) (*domain.Transaction, error)
	Execute(ctx context.Context, userID, txID uuid.UUID) (*domain.Transaction, error)
	Get(ctx context.Context, userID, txID uuid.UUID) (*domain.Transaction, error)
	List(ctx context.Context, params TransactionListParams) ([]domain.TransactionSummary, error)
}

// StatementFormat selects the rendering of an exported statement.
type StatementFormat string

const (
	StatementFormatPDF  StatementFormat = "pdf"
	StatementFormatXLSX StatementFormat = "xlsx"
)

// Statement is a rendered export ready to stream.
type Statement struct {
	Filename    string
	ContentType string
	Body        []byte
}

// StatementRequest selects whose transactions to export, over which period
// (day, week, month, all) and in which format.
type StatementRequest struct {
	UserID uuid.UUID
	Format StatementFormat
	Period string
}

// StatementService renders a user's transactions as a downloadable file.
type StatementService interface {
	Export(ctx context.Context, req StatementRequest) (*Statement, error)
}

// AuditService records audit entries without blocking the caller.
type AuditService interface {
	Log(ctx context.Context, entry *domain.AuditLog)
}
