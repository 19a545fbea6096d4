package domain

import (
	"time"

	"github.com/google/uuid"
)

// TransactionState is a step of the authorization state machine.
type TransactionState string

const (
	TransactionStateInitiated     TransactionState = "initiated"
	TransactionStateAuthenticated TransactionState = "authenticated"
	TransactionStateExecuted      TransactionState = "executed"
)

// DefaultCurrency is used when an initiation does not name one.
const DefaultCurrency = "NGN"

// Next returns the only state reachable from s. Executed is terminal.
func (s TransactionState) Next() (TransactionState, bool) {
	switch s {
	case TransactionStateInitiated:
		return TransactionStateAuthenticated, true
	case TransactionStateAuthenticated:
		return TransactionStateExecuted, true
	}
	return "", false
}

// IsTerminal returns true if no transition leaves s.
func (s TransactionState) IsTerminal() bool {
	return s == TransactionStateExecuted
}

// CanTransition reports whether from -> to is a legal single forward step.
func CanTransition(from, to TransactionState) bool {
	next, ok := from.Next()
	return ok && next == to
}

// TransactionEvent records one state change in a transaction's history.
type TransactionEvent struct {
	State TransactionState `json:"state"`
	At    time.Time        `json:"at"`
}

// Transaction is the audit record of a biometric-gated transfer.
// Amount is in minor units (kobo, cents); no floating point anywhere.
type Transaction struct {
	ID                   uuid.UUID          `json:"id"`
	UserID               uuid.UUID          `json:"user_id"`
	Amount               int64              `json:"amount"`
	Currency             string             `json:"currency"`
	Recipient            string             `json:"recipient"`
	AccountID            string             `json:"account_id"`
	State                TransactionState   `json:"state"`
	BiometricFactorsUsed []FactorType       `json:"biometric_factors_used"`
	ProviderReference    string             `json:"provider_reference"`
	History              []TransactionEvent `json:"history"`
	CreatedAt            time.Time          `json:"created_at"`
	UpdatedAt            time.Time          `json:"updated_at"`
}

// Apply moves the transaction one step forward, appending to its history.
// Factors are only recorded on the step into authenticated and are frozen after.
func (t *Transaction) Apply(to TransactionState, factors []FactorType, at time.Time) bool {
	if !CanTransition(t.State, to) {
		return false
	}
	if to == TransactionStateAuthenticated {
		t.BiometricFactorsUsed = append([]FactorType(nil), factors...)
	}
	t.State = to
	t.UpdatedAt = at
	t.History = append(t.History, TransactionEvent{State: to, At: at})
	return true
}

// Summary returns the listing view of the transaction.
func (t *Transaction) Summary() TransactionSummary {
	return TransactionSummary{
		ID:        t.ID,
		Amount:    t.Amount,
		Currency:  t.Currency,
		Recipient: t.Recipient,
		State:     t.State,
		CreatedAt: t.CreatedAt,
	}
}

// TransactionSummary is the listing view of a transaction.
type TransactionSummary struct {
	ID        uuid.UUID        `json:"id"`
	Amount    int64            `json:"amount"`
	Currency  string           `json:"currency"`
	Recipient string           `json:"recipient"`
	State     TransactionState `json:"state"`
	CreatedAt time.Time        `json:"created_at"`
}
