package service

import (
	"context"
	"fmt"
	"time"

	"biosecure-pay/internal/core/domain"
	"biosecure-pay/internal/core/ports"
	"biosecure-pay/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// BiometricServiceImpl implements ports.BiometricService.
// Templates are encrypted before they reach the repository and are never logged.
type BiometricServiceImpl struct {
	repo   ports.BiometricRepository
	encSvc ports.EncryptionService
	log    zerolog.Logger
}

// NewBiometricService creates a new BiometricServiceImpl.
func NewBiometricService(repo ports.BiometricRepository, encSvc ports.EncryptionService, log zerolog.Logger) *BiometricServiceImpl {
	return &BiometricServiceImpl{repo: repo, encSvc: encSvc, log: log}
}

// Enroll stores a new active template. A second active template of the same
// type for the same user is rejected, never overwritten.
func (s *BiometricServiceImpl) Enroll(ctx context.Context, userID uuid.UUID, factor domain.FactorType, template string) (uuid.UUID, error) {
	if !factor.IsValid() {
		return uuid.Nil, apperror.ErrInvalidFactorType(string(factor))
	}
	if template == "" {
		return uuid.Nil, apperror.Validation("template is required")
	}

	templateEnc, err := s.encSvc.Encrypt(template)
	if err != nil {
		return uuid.Nil, apperror.ErrEncryptionFailure(err)
	}

	enrollment := &domain.BiometricEnrollment{
		ID:          uuid.New(),
		UserID:      userID,
		Type:        factor,
		TemplateEnc: templateEnc,
		EnrolledAt:  time.Now().UTC(),
		Status:      domain.EnrollmentStatusActive,
	}

	created, err := s.repo.Create(ctx, enrollment)
	if err != nil {
		return uuid.Nil, apperror.InternalError(fmt.Errorf("create enrollment: %w", err))
	}
	if !created {
		return uuid.Nil, apperror.ErrDuplicateEnrollment(string(factor))
	}

	s.log.Info().
		Str("user_id", userID.String()).
		Str("factor", string(factor)).
		Str("enrollment_id", enrollment.ID.String()).
		Msg("biometric enrolled")

	return enrollment.ID, nil
}

// List returns the user's enrollments without template material.
func (s *BiometricServiceImpl) List(ctx context.Context, userID uuid.UUID) ([]domain.BiometricSummary, error) {
	enrollments, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list enrollments: %w", err))
	}

	out := make([]domain.BiometricSummary, 0, len(enrollments))
	for _, e := range enrollments {
		out = append(out, domain.BiometricSummary{
			ID:         e.ID,
			Type:       e.Type,
			EnrolledAt: e.EnrolledAt,
			Status:     e.Status,
		})
	}
	return out, nil
}

// Delete removes an enrollment owned by userID. Deleting something absent
// or foreign reports false without error.
func (s *BiometricServiceImpl) Delete(ctx context.Context, id, userID uuid.UUID) (bool, error) {
	deleted, err := s.repo.Delete(ctx, id, userID)
	if err != nil {
		return false, apperror.InternalError(fmt.Errorf("delete enrollment: %w", err))
	}
	if deleted {
		s.log.Info().Str("user_id", userID.String()).Str("enrollment_id", id.String()).Msg("biometric deleted")
	}
	return deleted, nil
}

// GetTemplate returns the decrypted active template for (user, factor).
func (s *BiometricServiceImpl) GetTemplate(ctx context.Context, userID uuid.UUID, factor domain.FactorType) (string, bool, error) {
	enrollment, err := s.repo.GetActive(ctx, userID, factor)
	if err != nil {
		return "", false, apperror.InternalError(fmt.Errorf("get enrollment: %w", err))
	}
	if enrollment == nil {
		return "", false, nil
	}

	template, err := s.encSvc.Decrypt(enrollment.TemplateEnc)
	if err != nil {
		return "", false, apperror.ErrEncryptionFailure(err)
	}
	return template, true, nil
}
