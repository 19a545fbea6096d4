package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"biosecure-pay/internal/core/domain"
	"biosecure-pay/internal/core/ports"
	"biosecure-pay/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// KYCServiceImpl implements ports.KYCService.
type KYCServiceImpl struct {
	userRepo ports.UserRepository
	provider ports.KYCProvider
	encSvc   ports.EncryptionService
	log      zerolog.Logger
}

// NewKYCService creates a new KYCServiceImpl. encSvc should be scoped to
// national IDs.
func NewKYCService(userRepo ports.UserRepository, provider ports.KYCProvider, encSvc ports.EncryptionService, log zerolog.Logger) *KYCServiceImpl {
	return &KYCServiceImpl{userRepo: userRepo, provider: provider, encSvc: encSvc, log: log}
}

// Verify checks the user's identity with the provider. On success the user
// becomes verified and the national ID is stored encrypted. A rejected or
// unreachable provider leaves the status untouched.
func (s *KYCServiceImpl) Verify(ctx context.Context, userID uuid.UUID, nationalID string, documents []string) (*domain.User, error) {
	nationalID = strings.TrimSpace(nationalID)
	if nationalID == "" {
		return nil, apperror.Validation("national_id is required")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get user: %w", err))
	}
	if user == nil {
		return nil, apperror.ErrNotFound("user")
	}
	if user.IsKYCVerified() {
		return user, nil
	}

	result, err := s.provider.VerifyIdentity(ctx, nationalID, documents)
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", userID.String()).Msg("kyc provider unavailable")
		return nil, apperror.ErrGatewayUnavailable("kyc", err)
	}
	if !result.Verified {
		s.log.Info().Str("user_id", userID.String()).Msg("kyc rejected")
		return nil, apperror.ErrKYCRejected(result.Message)
	}

	nationalIDEnc, err := s.encSvc.Encrypt(nationalID)
	if err != nil {
		return nil, apperror.ErrEncryptionFailure(err)
	}

	if documents == nil {
		documents = []string{}
	}
	if err := s.userRepo.UpdateKYC(ctx, userID, domain.KYCStatusVerified, nationalIDEnc, documents); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update kyc: %w", err))
	}

	user.KYCStatus = domain.KYCStatusVerified
	user.NationalIDEnc = nationalIDEnc
	user.KYCDocuments = documents
	user.UpdatedAt = time.Now().UTC()

	s.log.Info().Str("user_id", userID.String()).Msg("kyc verified")
	return user, nil
}
