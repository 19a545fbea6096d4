package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"biosecure-pay/internal/core/domain"
	"biosecure-pay/internal/core/ports/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func setupBiometricService(t *testing.T) (*BiometricServiceImpl, *mocks.MockBiometricRepository, *mocks.MockEncryptionService) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockBiometricRepository(ctrl)
	enc := mocks.NewMockEncryptionService(ctrl)
	return NewBiometricService(repo, enc, newTestLogger()), repo, enc
}

func TestBiometricService_Enroll_Success(t *testing.T) {
	svc, repo, enc := setupBiometricService(t)
	ctx := context.Background()
	userID := uuid.New()

	enc.EXPECT().Encrypt("T1").Return("enc_T1", nil)
	repo.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, e *domain.BiometricEnrollment) (bool, error) {
			assert.Equal(t, userID, e.UserID)
			assert.Equal(t, domain.FactorFingerprint, e.Type)
			assert.Equal(t, "enc_T1", e.TemplateEnc, "only ciphertext reaches the repository")
			assert.Equal(t, domain.EnrollmentStatusActive, e.Status)
			return true, nil
		},
	)

	id, err := svc.Enroll(ctx, userID, domain.FactorFingerprint, "T1")
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, id)
}

func TestBiometricService_Enroll_InvalidFactor(t *testing.T) {
	svc, _, _ := setupBiometricService(t)

	_, err := svc.Enroll(context.Background(), uuid.New(), domain.FactorType("iris"), "T1")
	assertAppError(t, err, "BIO_001")
}

func TestBiometricService_Enroll_EmptyTemplate(t *testing.T) {
	svc, _, _ := setupBiometricService(t)

	_, err := svc.Enroll(context.Background(), uuid.New(), domain.FactorFace, "")
	assertAppError(t, err, "VAL_001")
}

func TestBiometricService_Enroll_Duplicate(t *testing.T) {
	svc, repo, enc := setupBiometricService(t)

	enc.EXPECT().Encrypt(gomock.Any()).Return("enc", nil)
	repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(false, nil)

	_, err := svc.Enroll(context.Background(), uuid.New(), domain.FactorVoice, "T2")
	assertAppError(t, err, "BIO_002")
	assertErrorKind(t, err, "CONFLICT")
}

func TestBiometricService_Enroll_EncryptError(t *testing.T) {
	svc, _, enc := setupBiometricService(t)

	enc.EXPECT().Encrypt(gomock.Any()).Return("", errors.New("boom"))

	_, err := svc.Enroll(context.Background(), uuid.New(), domain.FactorVoice, "T2")
	assertAppError(t, err, "SYS_003")
}

func TestBiometricService_List_NoTemplates(t *testing.T) {
	svc, repo, _ := setupBiometricService(t)
	userID := uuid.New()
	now := time.Now()

	repo.EXPECT().ListByUser(gomock.Any(), userID).Return([]domain.BiometricEnrollment{
		{ID: uuid.New(), UserID: userID, Type: domain.FactorFingerprint, TemplateEnc: "secret", EnrolledAt: now, Status: domain.EnrollmentStatusActive},
		{ID: uuid.New(), UserID: userID, Type: domain.FactorVoice, TemplateEnc: "secret", EnrolledAt: now, Status: domain.EnrollmentStatusActive},
	}, nil)

	list, err := svc.List(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, domain.FactorFingerprint, list[0].Type)
	assert.Equal(t, domain.FactorVoice, list[1].Type)
}

func TestBiometricService_Delete(t *testing.T) {
	svc, repo, _ := setupBiometricService(t)
	id, userID := uuid.New(), uuid.New()

	repo.EXPECT().Delete(gomock.Any(), id, userID).Return(true, nil)
	repo.EXPECT().Delete(gomock.Any(), id, userID).Return(false, nil)

	deleted, err := svc.Delete(context.Background(), id, userID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = svc.Delete(context.Background(), id, userID)
	require.NoError(t, err, "deleting twice is not an error")
	assert.False(t, deleted)
}

func TestBiometricService_GetTemplate(t *testing.T) {
	svc, repo, enc := setupBiometricService(t)
	userID := uuid.New()

	repo.EXPECT().GetActive(gomock.Any(), userID, domain.FactorFace).
		Return(&domain.BiometricEnrollment{TemplateEnc: "enc_face"}, nil)
	enc.EXPECT().Decrypt("enc_face").Return("FACE", nil)

	tpl, ok, err := svc.GetTemplate(context.Background(), userID, domain.FactorFace)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "FACE", tpl)
}

func TestBiometricService_GetTemplate_Absent(t *testing.T) {
	svc, repo, _ := setupBiometricService(t)

	repo.EXPECT().GetActive(gomock.Any(), gomock.Any(), domain.FactorVoice).Return(nil, nil)

	tpl, ok, err := svc.GetTemplate(context.Background(), uuid.New(), domain.FactorVoice)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, tpl)
}

func TestExactTemplateMatcher(t *testing.T) {
	m := NewExactTemplateMatcher()

	assert.True(t, m.Match("T1", "T1"))
	assert.False(t, m.Match("T1", "T2"))
	assert.False(t, m.Match("T1", "T1 "))
	assert.False(t, m.Match("", "T1"))
	assert.True(t, m.Match("", ""))
}
