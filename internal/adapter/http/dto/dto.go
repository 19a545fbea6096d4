package dto

import (
	"time"

	"biosecure-pay/internal/core/domain"
)

// --- Auth DTOs ---

// RegisterRequest is the payload for POST /api/v1/auth/register.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email,max=254"`
	Phone    string `json:"phone" binding:"omitempty,e164"`
	FullName string `json:"full_name" binding:"omitempty,max=200"`
	Password string `json:"password" binding:"required,min=8,max=128" sanitize:"-"`
}

// LoginRequest is the payload for POST /api/v1/auth/login.
// Identifier is either the email or the phone number.
type LoginRequest struct {
	Identifier string `json:"identifier" binding:"required,max=254"`
	Password   string `json:"password" binding:"required" sanitize:"-"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	UserID string `json:"user_id"`
	Token  string `json:"token"`
	Expiry int64  `json:"expiry"`
}

// --- KYC DTOs ---

// KYCRequest is the payload for POST /api/v1/kyc/verify.
type KYCRequest struct {
	NationalID string   `json:"national_id" binding:"required,numeric,min=8,max=20" sanitize:"-"`
	Documents  []string `json:"documents" binding:"required,min=1,max=10,dive,document_uri"`
}

// KYCResponse reports the user's verification state.
type KYCResponse struct {
	UserID    string           `json:"user_id"`
	KYCStatus domain.KYCStatus `json:"kyc_status"`
	Documents []string         `json:"documents"`
}

// --- Biometric DTOs ---

// EnrollRequest is the payload for POST /api/v1/biometrics.
type EnrollRequest struct {
	Type     string `json:"type" binding:"required"`
	Template string `json:"template" binding:"required,max=65536" sanitize:"-"`
}

// EnrollResponse carries the id of the new enrollment.
type EnrollResponse struct {
	EnrollmentID string `json:"enrollment_id"`
	Type         string `json:"type"`
}

// --- Account DTOs ---

// LinkAccountRequest is the payload for POST /api/v1/accounts/link.
type LinkAccountRequest struct {
	Code string `json:"code" binding:"required,safe_id,max=128"`
}

// AddAccountRequest is the payload for POST /api/v1/accounts.
type AddAccountRequest struct {
	AccountID     string `json:"account_id" binding:"required,safe_id,max=64"`
	BankName      string `json:"bank_name" binding:"required,max=100"`
	AccountNumber string `json:"account_number" binding:"required,numeric,min=4,max=20"`
}

// --- Transaction DTOs ---

// InitiateRequest is the payload for POST /api/v1/transactions.
// Amount is in minor units; its sign is checked by the transaction service.
type InitiateRequest struct {
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency" binding:"omitempty,len=3,alpha"`
	Recipient string `json:"recipient" binding:"required,max=254"`
	AccountID string `json:"account_id" binding:"required,safe_id,max=64"`
}

// FactorProofRequest is one presented biometric factor.
type FactorProofRequest struct {
	Type     string `json:"type" binding:"max=32"`
	Template string `json:"template" binding:"max=65536" sanitize:"-"`
}

// AuthenticateRequest is the payload for POST /api/v1/transactions/:id/authenticate.
// Factor count, type and template are judged by the service so the
// multi-factor policy applies first.
type AuthenticateRequest struct {
	Factors []FactorProofRequest `json:"factors" binding:"max=3,dive"`
}

// TransactionResponse is the full view of a transaction.
type TransactionResponse struct {
	ID                   string                    `json:"id"`
	Amount               int64                     `json:"amount"`
	Currency             string                    `json:"currency"`
	Recipient            string                    `json:"recipient"`
	AccountID            string                    `json:"account_id"`
	State                domain.TransactionState   `json:"state"`
	BiometricFactorsUsed []domain.FactorType       `json:"biometric_factors_used"`
	ProviderReference    string                    `json:"provider_reference,omitempty"`
	History              []domain.TransactionEvent `json:"history"`
	CreatedAt            time.Time                 `json:"created_at"`
	UpdatedAt            time.Time                 `json:"updated_at"`
}

// NewTransactionResponse maps a domain transaction onto its response view.
func NewTransactionResponse(t *domain.Transaction) TransactionResponse {
	factors := t.BiometricFactorsUsed
	if factors == nil {
		factors = []domain.FactorType{}
	}
	return TransactionResponse{
		ID:                   t.ID.String(),
		Amount:               t.Amount,
		Currency:             t.Currency,
		Recipient:            t.Recipient,
		AccountID:            t.AccountID,
		State:                t.State,
		BiometricFactorsUsed: factors,
		ProviderReference:    t.ProviderReference,
		History:              t.History,
		CreatedAt:            t.CreatedAt,
		UpdatedAt:            t.UpdatedAt,
	}
}

// ExecuteResponse is returned once a transaction has been executed.
type ExecuteResponse struct {
	TransactionID     string                  `json:"transaction_id"`
	State             domain.TransactionState `json:"state"`
	ProviderReference string                  `json:"provider_reference"`
}

// TransactionListQuery binds GET /api/v1/transactions query parameters.
type TransactionListQuery struct {
	State  string `form:"state" binding:"omitempty,oneof=initiated authenticated executed"`
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Offset int    `form:"offset" binding:"omitempty,min=0"`
}

// StatementQuery binds GET /api/v1/transactions/statement query parameters.
type StatementQuery struct {
	Format string `form:"format" binding:"omitempty,oneof=pdf xlsx"`
	Period string `form:"period" binding:"omitempty,oneof=day week month all"`
}

// ListResponse wraps a page of items.
type ListResponse struct {
	Items  interface{} `json:"items"`
	Limit  int         `json:"limit"`
	Offset int         `json:"offset"`
}
