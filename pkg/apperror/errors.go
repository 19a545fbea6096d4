package apperror

import (
	"fmt"
	"net/http"
)

// Kind classifies an error by what the caller should do about it.
type Kind string

const (
	KindValidation  Kind = "VALIDATION_ERROR" // caller's input is wrong, never retry as is
	KindNotFound    Kind = "NOT_FOUND"        // absent or not owned by the caller
	KindConflict    Kind = "CONFLICT"         // caller must change input
	KindState       Kind = "STATE_ERROR"      // query current state and adjust
	KindAuthFailure Kind = "AUTH_FAILURE"     // retry with corrected proof
	KindUpstream    Kind = "UPSTREAM_ERROR"   // provider failure, retry after delay
	KindRateLimited Kind = "RATE_LIMITED"
	KindInternal    Kind = "INTERNAL"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Kind       Kind   `json:"error_kind"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, kind Kind, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Kind:       kind,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, kind Kind, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Kind:       kind,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Biometrics (BIO) ----

func ErrInvalidFactorType(factor string) *AppError {
	return New("BIO_001", KindValidation, fmt.Sprintf("invalid biometric type: %q", factor), http.StatusBadRequest)
}

func ErrDuplicateEnrollment(factor string) *AppError {
	return New("BIO_002", KindConflict, fmt.Sprintf("%s already enrolled", factor), http.StatusConflict)
}

func ErrFactorNotEnrolled(factor string) *AppError {
	return New("BIO_003", KindAuthFailure, fmt.Sprintf("no enrolled %s found", factor), http.StatusUnauthorized)
}

func ErrFactorMismatch(factor string) *AppError {
	return New("BIO_004", KindAuthFailure, fmt.Sprintf("%s authentication failed - mismatch", factor), http.StatusUnauthorized)
}

func ErrMultiFactorRequired(required int) *AppError {
	return New("BIO_005", KindAuthFailure,
		fmt.Sprintf("multi-factor required for high-value transactions: at least %d factors", required),
		http.StatusUnauthorized)
}

// ---- Transactions (TXN) ----

func ErrInvalidAccount() *AppError {
	return New("TXN_001", KindValidation, "account is not linked to this user", http.StatusBadRequest)
}

func ErrTransactionNotFound() *AppError {
	return New("TXN_002", KindNotFound, "transaction not found or not awaiting authentication", http.StatusNotFound)
}

func ErrNotAuthenticated() *AppError {
	return New("TXN_003", KindState, "transaction not authenticated", http.StatusConflict)
}

func ErrInvalidStateTransition(from, to string) *AppError {
	return New("TXN_004", KindState,
		fmt.Sprintf("transaction already advanced: cannot move %s -> %s", from, to),
		http.StatusConflict)
}

func ErrInvalidAmount() *AppError {
	return New("TXN_005", KindValidation, "amount must be a positive integer in minor units", http.StatusBadRequest)
}

func ErrKYCRequired() *AppError {
	return New("TXN_006", KindState, "identity verification required before transacting", http.StatusForbidden)
}

func ErrTooManyAttempts() *AppError {
	return New("TXN_007", KindRateLimited, "too many authentication attempts for this transaction", http.StatusTooManyRequests)
}

// ---- Providers (GW, KYC, ACC) ----

func ErrGatewayInitializationFailed(detail string) *AppError {
	return New("GW_001", KindUpstream, "payment initialization failed: "+detail, http.StatusBadGateway)
}

func ErrGatewayVerificationFailed(detail string) *AppError {
	return New("GW_002", KindUpstream, "payment verification failed: "+detail, http.StatusBadGateway)
}

// ErrGatewayUnavailable reports a timeout or connection failure talking to provider.
func ErrGatewayUnavailable(provider string, err error) *AppError {
	return Wrap("GW_003", KindUpstream, provider+" provider unavailable", http.StatusServiceUnavailable, err)
}

func ErrKYCRejected(detail string) *AppError {
	return New("KYC_001", KindUpstream, "identity verification failed: "+detail, http.StatusBadGateway)
}

func ErrAccountLinkFailed(detail string) *AppError {
	return New("ACC_001", KindUpstream, "account linking failed: "+detail, http.StatusBadGateway)
}

// ---- Authentication (AUTH) ----

func ErrInvalidCredentials() *AppError {
	return New("AUTH_001", KindAuthFailure, "invalid credentials", http.StatusUnauthorized)
}

func ErrEmailExists() *AppError {
	return New("AUTH_002", KindConflict, "email already exists", http.StatusConflict)
}

func ErrInvalidToken() *AppError {
	return New("AUTH_003", KindAuthFailure, "invalid or expired token", http.StatusUnauthorized)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", KindRateLimited, "rate limit exceeded", http.StatusTooManyRequests)
}

// ---- Generic ----

// ErrNotFound is the generic not-found error for a named entity.
func ErrNotFound(entity string) *AppError {
	return New("RES_001", KindNotFound, fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

// ---- System & Infrastructure (SYS) ----

func ErrEncryptionFailure(err error) *AppError {
	return Wrap("SYS_003", KindInternal, "encryption service failure", http.StatusInternalServerError, err)
}

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", KindInternal, "internal server error", http.StatusInternalServerError, err)
}

// Validation returns a VAL_001 validation error.
func Validation(message string) *AppError {
	return New("VAL_001", KindValidation, message, http.StatusBadRequest)
}

// ErrPayloadTooLarge rejects a request body over the configured limit.
func ErrPayloadTooLarge(limit int64) *AppError {
	return New("VAL_002", KindValidation, fmt.Sprintf("request body exceeds %d bytes", limit), http.StatusRequestEntityTooLarge)
}
