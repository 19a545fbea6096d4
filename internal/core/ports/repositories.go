package ports

import (
	"context"
	"time"

	"biosecure-pay/internal/core/domain"

	"github.com/google/uuid"
)

// UserRepository defines persistence operations for users and their linked accounts.
type UserRepository interface {
	// Create inserts the user unless the email is taken. Returns false on a duplicate email.
	Create(ctx context.Context, user *domain.User) (bool, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmailOrPhone(ctx context.Context, identifier string) (*domain.User, error)
	UpdateKYC(ctx context.Context, id uuid.UUID, status domain.KYCStatus, nationalIDEnc string, documents []string) error
	// AddLinkedAccount appends without deduplication.
	AddLinkedAccount(ctx context.Context, userID uuid.UUID, account domain.LinkedAccount) error
	ListLinkedAccounts(ctx context.Context, userID uuid.UUID) ([]domain.LinkedAccount, error)
	IsLinked(ctx context.Context, userID uuid.UUID, accountID string) (bool, error)
}

// BiometricRepository defines persistence operations for biometric enrollments.
type BiometricRepository interface {
	// Create inserts the enrollment unless an active one of the same type
	// exists for the user. The check and insert are a single atomic step.
	Create(ctx context.Context, enrollment *domain.BiometricEnrollment) (bool, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.BiometricEnrollment, error)
	// Delete removes the enrollment only when owned by userID.
	Delete(ctx context.Context, id, userID uuid.UUID) (bool, error)
	GetActive(ctx context.Context, userID uuid.UUID, factor domain.FactorType) (*domain.BiometricEnrollment, error)
}

// TransitionUpdate carries the fields written together with a state change.
type TransitionUpdate struct {
	FactorsUsed []domain.FactorType // written only when moving into authenticated
	At          time.Time
}

// TransactionRepository is the transaction ledger.
type TransactionRepository interface {
	Create(ctx context.Context, transaction *domain.Transaction) error
	// GetForUser returns nil when the transaction is absent or owned by someone else.
	GetForUser(ctx context.Context, id, userID uuid.UUID) (*domain.Transaction, error)
	// Transition is a compare-and-swap on state. It returns false when the
	// persisted state was not from, leaving the row untouched.
	Transition(ctx context.Context, id, userID uuid.UUID, from, to domain.TransactionState, update TransitionUpdate) (bool, error)
	List(ctx context.Context, params TransactionListParams) ([]domain.Transaction, error)
}

// TransactionListParams holds filter + pagination for listing transactions.
type TransactionListParams struct {
	UserID uuid.UUID
	State  *domain.TransactionState
	Since  *time.Time // created_at >= Since
	Limit  int
	Offset int
}

// AuditRepository persists audit entries.
type AuditRepository interface {
	Create(ctx context.Context, log *domain.AuditLog) error
}
