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

// AuthServiceImpl implements ports.AuthService.
type AuthServiceImpl struct {
	userRepo ports.UserRepository
	hashSvc  ports.HashService
	tokenSvc ports.TokenService
	log      zerolog.Logger
}

// NewAuthService creates a new AuthServiceImpl.
func NewAuthService(
	userRepo ports.UserRepository,
	hashSvc ports.HashService,
	tokenSvc ports.TokenService,
	log zerolog.Logger,
) *AuthServiceImpl {
	return &AuthServiceImpl{
		userRepo: userRepo,
		hashSvc:  hashSvc,
		tokenSvc: tokenSvc,
		log:      log,
	}
}

// Register creates a user in KYC pending state and issues a token.
// Email uniqueness is enforced by the repository insert, not a prior lookup.
func (s *AuthServiceImpl) Register(ctx context.Context, req ports.RegisterRequest) (*ports.AuthResult, error) {
	email := normalizeEmail(req.Email)
	if email == "" {
		return nil, apperror.Validation("email is required")
	}
	if req.Password == "" {
		return nil, apperror.Validation("password is required")
	}

	passwordHash, err := s.hashSvc.Hash(req.Password)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("hash password: %w", err))
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:             uuid.New(),
		Email:          email,
		Phone:          strings.TrimSpace(req.Phone),
		FullName:       strings.TrimSpace(req.FullName),
		PasswordHash:   passwordHash,
		KYCStatus:      domain.KYCStatusPending,
		LinkedAccounts: []domain.LinkedAccount{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	created, err := s.userRepo.Create(ctx, user)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create user: %w", err))
	}
	if !created {
		return nil, apperror.ErrEmailExists()
	}

	s.log.Info().Str("user_id", user.ID.String()).Msg("user registered")

	return s.issue(user.ID)
}

// Login accepts either the email or the phone number as identifier.
func (s *AuthServiceImpl) Login(ctx context.Context, identifier, password string) (*ports.AuthResult, error) {
	identifier = strings.TrimSpace(identifier)
	if strings.Contains(identifier, "@") {
		identifier = normalizeEmail(identifier)
	}
	if identifier == "" {
		return nil, apperror.ErrInvalidCredentials()
	}

	user, err := s.userRepo.GetByEmailOrPhone(ctx, identifier)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("find user: %w", err))
	}
	if user == nil {
		return nil, apperror.ErrInvalidCredentials()
	}

	valid, err := s.hashSvc.Verify(password, user.PasswordHash)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("verify password: %w", err))
	}
	if !valid {
		return nil, apperror.ErrInvalidCredentials()
	}

	return s.issue(user.ID)
}

func (s *AuthServiceImpl) issue(userID uuid.UUID) (*ports.AuthResult, error) {
	token, expiresAt, err := s.tokenSvc.Generate(userID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("generate token: %w", err))
	}
	return &ports.AuthResult{UserID: userID, Token: token, ExpiresAt: expiresAt}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
