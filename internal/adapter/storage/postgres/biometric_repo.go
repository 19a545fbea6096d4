package postgres

import (
	"context"
	"errors"
	"fmt"

	"biosecure-pay/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// BiometricRepo implements ports.BiometricRepository.
type BiometricRepo struct {
	pool Pool
}

// NewBiometricRepo creates a new BiometricRepo.
func NewBiometricRepo(pool Pool) *BiometricRepo {
	return &BiometricRepo{pool: pool}
}

// Create relies on the partial unique index over (user_id, factor_type)
// WHERE status = 'active'. A conflicting insert affects no rows.
func (r *BiometricRepo) Create(ctx context.Context, e *domain.BiometricEnrollment) (bool, error) {
	query := `INSERT INTO biometric_enrollments (id, user_id, factor_type, template_enc, enrolled_at, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, factor_type) WHERE status = 'active' DO NOTHING`

	tag, err := r.pool.Exec(ctx, query,
		e.ID, e.UserID, string(e.Type), e.TemplateEnc, e.EnrolledAt, string(e.Status),
	)
	if err != nil {
		return false, fmt.Errorf("insert enrollment: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *BiometricRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.BiometricEnrollment, error) {
	query := `SELECT id, user_id, factor_type, template_enc, enrolled_at, status
		FROM biometric_enrollments WHERE user_id = $1 ORDER BY enrolled_at ASC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	defer rows.Close()

	out := []domain.BiometricEnrollment{}
	for rows.Next() {
		e, err := scanEnrollment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate enrollment rows: %w", err)
	}
	return out, nil
}

// Delete removes the enrollment only when userID owns it.
func (r *BiometricRepo) Delete(ctx context.Context, id, userID uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM biometric_enrollments WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return false, fmt.Errorf("delete enrollment: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *BiometricRepo) GetActive(ctx context.Context, userID uuid.UUID, factor domain.FactorType) (*domain.BiometricEnrollment, error) {
	query := `SELECT id, user_id, factor_type, template_enc, enrolled_at, status
		FROM biometric_enrollments WHERE user_id = $1 AND factor_type = $2 AND status = 'active'`

	e, err := scanEnrollment(r.pool.QueryRow(ctx, query, userID, string(factor)))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return e, err
}

func scanEnrollment(row pgx.Row) (*domain.BiometricEnrollment, error) {
	e := &domain.BiometricEnrollment{}
	var factor, status string
	if err := row.Scan(&e.ID, &e.UserID, &factor, &e.TemplateEnc, &e.EnrolledAt, &status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan enrollment: %w", err)
	}
	e.Type = domain.FactorType(factor)
	e.Status = domain.EnrollmentStatus(status)
	return e, nil
}
