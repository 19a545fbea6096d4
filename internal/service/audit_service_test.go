package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"biosecure-pay/internal/core/domain"
	"biosecure-pay/internal/core/ports/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestAuditService_Log_PersistsToRepo(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockRepo := mocks.NewMockAuditRepository(ctrl)
	svc := NewAuditService(mockRepo, newTestLogger())

	userID := uuid.New()
	txID := uuid.New().String()
	mockRepo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, log *domain.AuditLog) error {
			assert.Equal(t, domain.AuditActionExecute, log.Action)
			assert.Equal(t, txID, log.ResourceID)
			assert.Equal(t, userID, *log.UserID)
			return nil
		},
	)

	svc.Log(context.Background(), &domain.AuditLog{
		ID:           uuid.New(),
		UserID:       &userID,
		Action:       domain.AuditActionExecute,
		ResourceType: "transaction",
		ResourceID:   txID,
		IPAddress:    "127.0.0.1",
		CreatedAt:    time.Now(),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, svc.Wait(ctx))
}

func TestAuditService_Log_RepoErrorIsSwallowed(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockRepo := mocks.NewMockAuditRepository(ctrl)
	svc := NewAuditService(mockRepo, newTestLogger())

	var calls int32
	mockRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Times(3).DoAndReturn(
		func(context.Context, *domain.AuditLog) error {
			atomic.AddInt32(&calls, 1)
			return errors.New("db down")
		},
	)

	for i := 0; i < 3; i++ {
		svc.Log(context.Background(), &domain.AuditLog{ID: uuid.New(), Action: domain.AuditActionLogin})
	}

	require.NoError(t, svc.Wait(context.Background()))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestAuditService_Log_NilRepo(t *testing.T) {
	svc := NewAuditService(nil, newTestLogger())

	svc.Log(context.Background(), &domain.AuditLog{
		ID:           uuid.New(),
		Action:       domain.AuditActionRegister,
		ResourceType: "user",
		IPAddress:    "127.0.0.1",
		CreatedAt:    time.Now(),
	})

	require.NoError(t, svc.Wait(context.Background()))
}

func TestAuditService_Wait_RespectsContext(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockRepo := mocks.NewMockAuditRepository(ctrl)
	svc := NewAuditService(mockRepo, newTestLogger())

	release := make(chan struct{})
	mockRepo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
		func(context.Context, *domain.AuditLog) error {
			<-release
			return nil
		},
	)
	svc.Log(context.Background(), &domain.AuditLog{ID: uuid.New(), Action: domain.AuditActionInitiate})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, svc.Wait(ctx), context.DeadlineExceeded)

	close(release)
	require.NoError(t, svc.Wait(context.Background()))
}
