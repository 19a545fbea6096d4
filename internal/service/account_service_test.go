package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"biosecure-pay/internal/core/domain"
	"biosecure-pay/internal/core/ports"
	"biosecure-pay/internal/core/ports/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func setupAccountService(t *testing.T) (*AccountServiceImpl, *mocks.MockUserRepository, *mocks.MockAccountLinkProvider) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockUserRepository(ctrl)
	linker := mocks.NewMockAccountLinkProvider(ctrl)
	return NewAccountService(repo, linker, newTestLogger()), repo, linker
}

func TestAccountService_AddLinkedAccount_KeepsLast4(t *testing.T) {
	svc, repo, _ := setupAccountService(t)
	userID := uuid.New()

	repo.EXPECT().AddLinkedAccount(gomock.Any(), userID, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ uuid.UUID, a domain.LinkedAccount) error {
			assert.Equal(t, "acc1", a.AccountID)
			assert.Equal(t, "6789", a.AccountNumberLast4)
			assert.False(t, a.LinkedAt.IsZero())
			return nil
		},
	)

	acct, err := svc.AddLinkedAccount(context.Background(), userID, ports.LinkAccountInput{
		AccountID:     "acc1",
		BankName:      "GTBank",
		AccountNumber: "0123456789",
	})
	require.NoError(t, err)
	assert.Equal(t, "6789", acct.AccountNumberLast4)
	assert.Equal(t, "GTBank", acct.BankName)
}

func TestAccountService_AddLinkedAccount_RequiresID(t *testing.T) {
	svc, _, _ := setupAccountService(t)

	_, err := svc.AddLinkedAccount(context.Background(), uuid.New(), ports.LinkAccountInput{BankName: "x"})
	assertAppError(t, err, "VAL_001")
}

func TestAccountService_Link_Success(t *testing.T) {
	svc, repo, linker := setupAccountService(t)
	userID := uuid.New()

	linker.EXPECT().ExchangeCode(gomock.Any(), "code_123").Return(&ports.ProviderAccount{
		AccountID:     "mono_acc",
		BankName:      "Access Bank",
		AccountNumber: "9988776655",
	}, nil)
	repo.EXPECT().AddLinkedAccount(gomock.Any(), userID, gomock.Any()).Return(nil)

	acct, err := svc.Link(context.Background(), userID, "code_123")
	require.NoError(t, err)
	assert.Equal(t, "mono_acc", acct.AccountID)
	assert.Equal(t, "6655", acct.AccountNumberLast4)
}

func TestAccountService_Link_ProviderErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code string
	}{
		{"rejected", fmt.Errorf("%w: invalid code", ports.ErrProviderRejected), "ACC_001"},
		{"unreachable", errors.New("dial tcp: timeout"), "GW_003"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, linker := setupAccountService(t)
			linker.EXPECT().ExchangeCode(gomock.Any(), gomock.Any()).Return(nil, tt.err)

			_, err := svc.Link(context.Background(), uuid.New(), "code")
			assertAppError(t, err, tt.code)
			assertErrorKind(t, err, "UPSTREAM_ERROR")
		})
	}
}

func TestAccountService_Link_EmptyCode(t *testing.T) {
	svc, _, _ := setupAccountService(t)

	_, err := svc.Link(context.Background(), uuid.New(), "  ")
	assertAppError(t, err, "VAL_001")
}

func TestAccountService_ListAndIsLinked(t *testing.T) {
	svc, repo, _ := setupAccountService(t)
	userID := uuid.New()

	repo.EXPECT().ListLinkedAccounts(gomock.Any(), userID).Return(nil, nil)
	repo.EXPECT().IsLinked(gomock.Any(), userID, "acc1").Return(true, nil)

	list, err := svc.List(context.Background(), userID)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)

	linked, err := svc.IsLinked(context.Background(), userID, "acc1")
	require.NoError(t, err)
	assert.True(t, linked)

	linked, err = svc.IsLinked(context.Background(), userID, "")
	require.NoError(t, err)
	assert.False(t, linked)
}
