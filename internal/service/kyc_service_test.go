package service

import (
	"context"
	"errors"
	"testing"

	"biosecure-pay/internal/core/domain"
	"biosecure-pay/internal/core/ports"
	"biosecure-pay/internal/core/ports/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type kycTestDeps struct {
	svc      *KYCServiceImpl
	userRepo *mocks.MockUserRepository
	provider *mocks.MockKYCProvider
	enc      *mocks.MockEncryptionService
}

func setupKYCService(t *testing.T) *kycTestDeps {
	ctrl := gomock.NewController(t)
	d := &kycTestDeps{
		userRepo: mocks.NewMockUserRepository(ctrl),
		provider: mocks.NewMockKYCProvider(ctrl),
		enc:      mocks.NewMockEncryptionService(ctrl),
	}
	d.svc = NewKYCService(d.userRepo, d.provider, d.enc, newTestLogger())
	return d
}

func TestKYCService_Verify_Success(t *testing.T) {
	d := setupKYCService(t)
	userID := uuid.New()
	docs := []string{"passport.jpg"}

	d.userRepo.EXPECT().GetByID(gomock.Any(), userID).Return(&domain.User{ID: userID, KYCStatus: domain.KYCStatusPending}, nil)
	d.provider.EXPECT().VerifyIdentity(gomock.Any(), "22212345678", docs).Return(&ports.KYCResult{Verified: true}, nil)
	d.enc.EXPECT().Encrypt("22212345678").Return("enc_nin", nil)
	d.userRepo.EXPECT().UpdateKYC(gomock.Any(), userID, domain.KYCStatusVerified, "enc_nin", docs).Return(nil)

	user, err := d.svc.Verify(context.Background(), userID, "22212345678", docs)
	require.NoError(t, err)
	assert.Equal(t, domain.KYCStatusVerified, user.KYCStatus)
	assert.Equal(t, docs, user.KYCDocuments)
}

func TestKYCService_Verify_AlreadyVerified(t *testing.T) {
	d := setupKYCService(t)
	userID := uuid.New()

	d.userRepo.EXPECT().GetByID(gomock.Any(), userID).Return(&domain.User{ID: userID, KYCStatus: domain.KYCStatusVerified}, nil)

	user, err := d.svc.Verify(context.Background(), userID, "222", nil)
	require.NoError(t, err)
	assert.True(t, user.IsKYCVerified())
}

func TestKYCService_Verify_Rejected(t *testing.T) {
	d := setupKYCService(t)
	userID := uuid.New()

	d.userRepo.EXPECT().GetByID(gomock.Any(), userID).Return(&domain.User{ID: userID, KYCStatus: domain.KYCStatusPending}, nil)
	d.provider.EXPECT().VerifyIdentity(gomock.Any(), gomock.Any(), gomock.Any()).Return(&ports.KYCResult{Verified: false, Message: "BVN not found"}, nil)

	_, err := d.svc.Verify(context.Background(), userID, "222", nil)
	assertAppError(t, err, "KYC_001")
}

func TestKYCService_Verify_ProviderUnavailable(t *testing.T) {
	d := setupKYCService(t)
	userID := uuid.New()

	d.userRepo.EXPECT().GetByID(gomock.Any(), userID).Return(&domain.User{ID: userID}, nil)
	d.provider.EXPECT().VerifyIdentity(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("timeout"))

	_, err := d.svc.Verify(context.Background(), userID, "222", nil)
	assertAppError(t, err, "GW_003")
	assertErrorKind(t, err, "UPSTREAM_ERROR")
}

func TestKYCService_Verify_Validation(t *testing.T) {
	d := setupKYCService(t)

	_, err := d.svc.Verify(context.Background(), uuid.New(), " ", nil)
	assertAppError(t, err, "VAL_001")
}

func TestKYCService_Verify_UnknownUser(t *testing.T) {
	d := setupKYCService(t)

	d.userRepo.EXPECT().GetByID(gomock.Any(), gomock.Any()).Return(nil, nil)

	_, err := d.svc.Verify(context.Background(), uuid.New(), "222", nil)
	assertAppError(t, err, "RES_001")
}
