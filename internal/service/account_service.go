package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"biosecure-pay/internal/core/domain"
	"biosecure-pay/internal/core/ports"
	"biosecure-pay/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// AccountServiceImpl implements ports.AccountService.
type AccountServiceImpl struct {
	userRepo ports.UserRepository
	linker   ports.AccountLinkProvider
	log      zerolog.Logger
}

// NewAccountService creates a new AccountServiceImpl. linker may be nil, in
// which case only direct linking is available.
func NewAccountService(userRepo ports.UserRepository, linker ports.AccountLinkProvider, log zerolog.Logger) *AccountServiceImpl {
	return &AccountServiceImpl{userRepo: userRepo, linker: linker, log: log}
}

// Link exchanges a provider authorization code for the account it grants
// and records it against the user.
func (s *AccountServiceImpl) Link(ctx context.Context, userID uuid.UUID, code string) (*domain.LinkedAccount, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, apperror.Validation("code is required")
	}
	if s.linker == nil {
		return nil, apperror.ErrAccountLinkFailed("account linking provider not configured")
	}

	acct, err := s.linker.ExchangeCode(ctx, code)
	if err != nil {
		if errors.Is(err, ports.ErrProviderRejected) {
			return nil, apperror.ErrAccountLinkFailed(err.Error())
		}
		return nil, apperror.ErrGatewayUnavailable("account link", err)
	}

	return s.AddLinkedAccount(ctx, userID, ports.LinkAccountInput{
		AccountID:     acct.AccountID,
		BankName:      acct.BankName,
		AccountNumber: acct.AccountNumber,
	})
}

// AddLinkedAccount appends an account to the user's list. Only the last four
// digits of the account number are kept. Duplicates are not rejected.
func (s *AccountServiceImpl) AddLinkedAccount(ctx context.Context, userID uuid.UUID, input ports.LinkAccountInput) (*domain.LinkedAccount, error) {
	accountID := strings.TrimSpace(input.AccountID)
	if accountID == "" {
		return nil, apperror.Validation("account_id is required")
	}

	account := domain.LinkedAccount{
		AccountID:          accountID,
		BankName:           strings.TrimSpace(input.BankName),
		AccountNumberLast4: domain.Last4(strings.TrimSpace(input.AccountNumber)),
		LinkedAt:           time.Now().UTC(),
	}

	if err := s.userRepo.AddLinkedAccount(ctx, userID, account); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("add linked account: %w", err))
	}

	s.log.Info().
		Str("user_id", userID.String()).
		Str("account_id", account.AccountID).
		Str("bank", account.BankName).
		Msg("account linked")

	return &account, nil
}

// List returns the user's linked accounts in the order they were added.
func (s *AccountServiceImpl) List(ctx context.Context, userID uuid.UUID) ([]domain.LinkedAccount, error) {
	accounts, err := s.userRepo.ListLinkedAccounts(ctx, userID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list linked accounts: %w", err))
	}
	if accounts == nil {
		accounts = []domain.LinkedAccount{}
	}
	return accounts, nil
}

// IsLinked reports whether accountID belongs to the user.
func (s *AccountServiceImpl) IsLinked(ctx context.Context, userID uuid.UUID, accountID string) (bool, error) {
	if accountID == "" {
		return false, nil
	}
	linked, err := s.userRepo.IsLinked(ctx, userID, accountID)
	if err != nil {
		return false, apperror.InternalError(fmt.Errorf("check linked account: %w", err))
	}
	return linked, nil
}
