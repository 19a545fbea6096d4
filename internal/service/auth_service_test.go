package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"biosecure-pay/internal/core/domain"
	"biosecure-pay/internal/core/ports"
	"biosecure-pay/internal/core/ports/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func setupAuthService(t *testing.T) (
	*AuthServiceImpl,
	*mocks.MockUserRepository,
	*mocks.MockHashService,
	*mocks.MockTokenService,
) {
	ctrl := gomock.NewController(t)
	userRepo := mocks.NewMockUserRepository(ctrl)
	hashSvc := mocks.NewMockHashService(ctrl)
	tokenSvc := mocks.NewMockTokenService(ctrl)

	svc := NewAuthService(userRepo, hashSvc, tokenSvc, newTestLogger())
	return svc, userRepo, hashSvc, tokenSvc
}

func TestAuthService_Register_Success(t *testing.T) {
	svc, userRepo, hashSvc, tokenSvc := setupAuthService(t)
	ctx := context.Background()
	expiry := time.Now().Add(time.Hour)

	hashSvc.EXPECT().Hash("StrongP@ss123").Return("$argon2id$hashed", nil)
	userRepo.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, u *domain.User) (bool, error) {
			assert.Equal(t, "ada@example.com", u.Email, "email should be normalized")
			assert.Equal(t, "+2348000000000", u.Phone)
			assert.Equal(t, "$argon2id$hashed", u.PasswordHash)
			assert.Equal(t, domain.KYCStatusPending, u.KYCStatus)
			assert.Empty(t, u.LinkedAccounts)
			return true, nil
		},
	)
	tokenSvc.EXPECT().Generate(gomock.Any()).Return("jwt-token", expiry, nil)

	res, err := svc.Register(ctx, ports.RegisterRequest{
		Email:    "  Ada@Example.com ",
		Phone:    "+2348000000000",
		FullName: "Ada Lovelace",
		Password: "StrongP@ss123",
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, res.UserID)
	assert.Equal(t, "jwt-token", res.Token)
	assert.Equal(t, expiry, res.ExpiresAt)
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	svc, userRepo, hashSvc, _ := setupAuthService(t)
	ctx := context.Background()

	hashSvc.EXPECT().Hash(gomock.Any()).Return("hash", nil)
	userRepo.EXPECT().Create(ctx, gomock.Any()).Return(false, nil)

	_, err := svc.Register(ctx, ports.RegisterRequest{Email: "a@x.com", Password: "pw"})
	assertAppError(t, err, "AUTH_002")
}

func TestAuthService_Register_MissingFields(t *testing.T) {
	svc, _, _, _ := setupAuthService(t)

	_, err := svc.Register(context.Background(), ports.RegisterRequest{Email: " ", Password: "pw"})
	assertAppError(t, err, "VAL_001")

	_, err = svc.Register(context.Background(), ports.RegisterRequest{Email: "a@x.com"})
	assertAppError(t, err, "VAL_001")
}

func TestAuthService_Register_RepoError(t *testing.T) {
	svc, userRepo, hashSvc, _ := setupAuthService(t)

	hashSvc.EXPECT().Hash(gomock.Any()).Return("hash", nil)
	userRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(false, errors.New("db down"))

	_, err := svc.Register(context.Background(), ports.RegisterRequest{Email: "a@x.com", Password: "pw"})
	assertAppError(t, err, "SYS_001")
}

func TestAuthService_Login_ByEmailOrPhone(t *testing.T) {
	tests := []struct {
		name       string
		identifier string
		lookup     string
	}{
		{"email", "Ada@Example.com", "ada@example.com"},
		{"phone", " +2348000000000 ", "+2348000000000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, userRepo, hashSvc, tokenSvc := setupAuthService(t)
			ctx := context.Background()
			user := &domain.User{ID: uuid.New(), PasswordHash: "stored"}

			userRepo.EXPECT().GetByEmailOrPhone(ctx, tt.lookup).Return(user, nil)
			hashSvc.EXPECT().Verify("pw", "stored").Return(true, nil)
			tokenSvc.EXPECT().Generate(user.ID).Return("jwt", time.Now().Add(time.Hour), nil)

			res, err := svc.Login(ctx, tt.identifier, "pw")
			require.NoError(t, err)
			assert.Equal(t, user.ID, res.UserID)
			assert.Equal(t, "jwt", res.Token)
		})
	}
}

func TestAuthService_Login_UserNotFound(t *testing.T) {
	svc, userRepo, _, _ := setupAuthService(t)

	userRepo.EXPECT().GetByEmailOrPhone(gomock.Any(), "ghost@x.com").Return(nil, nil)

	_, err := svc.Login(context.Background(), "ghost@x.com", "pw")
	assertAppError(t, err, "AUTH_001")
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	svc, userRepo, hashSvc, _ := setupAuthService(t)

	userRepo.EXPECT().GetByEmailOrPhone(gomock.Any(), gomock.Any()).
		Return(&domain.User{ID: uuid.New(), PasswordHash: "stored"}, nil)
	hashSvc.EXPECT().Verify("bad", "stored").Return(false, nil)

	_, err := svc.Login(context.Background(), "a@x.com", "bad")
	assertAppError(t, err, "AUTH_001")
}

func TestAuthService_Login_EmptyIdentifier(t *testing.T) {
	svc, _, _, _ := setupAuthService(t)

	_, err := svc.Login(context.Background(), "   ", "pw")
	assertAppError(t, err, "AUTH_001")
}
