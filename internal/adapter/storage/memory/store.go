package memory

import (
	"context"

	"biosecure-pay/internal/core/ports"
)

// Store bundles the in-memory repositories selected by database.driver=memory.
type Store struct {
	Users        *UserRepo
	Biometrics   *BiometricRepo
	Transactions *TransactionRepo
	Audit        *AuditRepo
}

// NewStore creates a Store with empty repositories.
func NewStore() *Store {
	return &Store{
		Users:        NewUserRepo(),
		Biometrics:   NewBiometricRepo(),
		Transactions: NewTransactionRepo(),
		Audit:        NewAuditRepo(),
	}
}

// Name implements ports.HealthChecker.
func (s *Store) Name() string { return "memory" }

// Ping implements ports.HealthChecker. The in-process store is always reachable.
func (s *Store) Ping(context.Context) error { return nil }

var (
	_ ports.UserRepository        = (*UserRepo)(nil)
	_ ports.BiometricRepository   = (*BiometricRepo)(nil)
	_ ports.TransactionRepository = (*TransactionRepo)(nil)
	_ ports.AuditRepository       = (*AuditRepo)(nil)
	_ ports.HealthChecker         = (*Store)(nil)
)
