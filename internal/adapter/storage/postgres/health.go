package postgres

import (
	"context"

	"biosecure-pay/internal/core/ports"
)

// HealthCheck implements ports.HealthChecker for PostgreSQL.
type HealthCheck struct {
	pool Pool
}

// NewHealthCheck creates a PostgreSQL health checker.
func NewHealthCheck(pool Pool) *HealthCheck {
	return &HealthCheck{pool: pool}
}

func (h *HealthCheck) Ping(ctx context.Context) error {
	return h.pool.Ping(ctx)
}

func (h *HealthCheck) Name() string {
	return "postgresql"
}

var (
	_ ports.UserRepository        = (*UserRepo)(nil)
	_ ports.BiometricRepository   = (*BiometricRepo)(nil)
	_ ports.TransactionRepository = (*TransactionRepo)(nil)
	_ ports.AuditRepository       = (*AuditRepo)(nil)
	_ ports.HealthChecker         = (*HealthCheck)(nil)
)
