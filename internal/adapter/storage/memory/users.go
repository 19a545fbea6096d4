// Package memory provides in-process repositories with the same atomicity
// guarantees as the PostgreSQL adapter. Every mutation happens under a
// single lock, and values are copied in and out so callers never share state.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"biosecure-pay/internal/core/domain"

	"github.com/google/uuid"
)

// UserRepo is an in-memory ports.UserRepository.
type UserRepo struct {
	mu      sync.RWMutex
	users   map[uuid.UUID]*domain.User
	byEmail map[string]uuid.UUID
	order   []uuid.UUID
}

// NewUserRepo creates an empty UserRepo.
func NewUserRepo() *UserRepo {
	return &UserRepo{
		users:   make(map[uuid.UUID]*domain.User),
		byEmail: make(map[string]uuid.UUID),
	}
}

func (r *UserRepo) Create(_ context.Context, u *domain.User) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.byEmail[u.Email]; taken {
		return false, nil
	}
	r.users[u.ID] = copyUser(u)
	r.byEmail[u.Email] = u.ID
	r.order = append(r.order, u.ID)
	return true, nil
}

func (r *UserRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	return copyUser(u), nil
}

// GetByEmailOrPhone matches email first, then the earliest user with that phone.
func (r *UserRepo) GetByEmailOrPhone(_ context.Context, identifier string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if id, ok := r.byEmail[identifier]; ok {
		return copyUser(r.users[id]), nil
	}
	for _, id := range r.order {
		if u := r.users[id]; u.Phone != "" && u.Phone == identifier {
			return copyUser(u), nil
		}
	}
	return nil, nil
}

func (r *UserRepo) UpdateKYC(_ context.Context, id uuid.UUID, status domain.KYCStatus, nationalIDEnc string, documents []string) error {
	return r.mutate(id, func(u *domain.User) {
		u.KYCStatus = status
		u.NationalIDEnc = nationalIDEnc
		u.KYCDocuments = append([]string(nil), documents...)
	})
}

func (r *UserRepo) AddLinkedAccount(_ context.Context, userID uuid.UUID, account domain.LinkedAccount) error {
	return r.mutate(userID, func(u *domain.User) {
		u.LinkedAccounts = append(u.LinkedAccounts, account)
	})
}

func (r *UserRepo) ListLinkedAccounts(_ context.Context, userID uuid.UUID) ([]domain.LinkedAccount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[userID]
	if !ok {
		return []domain.LinkedAccount{}, nil
	}
	return append([]domain.LinkedAccount{}, u.LinkedAccounts...), nil
}

func (r *UserRepo) IsLinked(_ context.Context, userID uuid.UUID, accountID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[userID]
	if !ok {
		return false, nil
	}
	return u.HasLinkedAccount(accountID), nil
}

func (r *UserRepo) mutate(id uuid.UUID, fn func(u *domain.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return fmt.Errorf("user %s not found", id)
	}
	fn(u)
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func copyUser(u *domain.User) *domain.User {
	c := *u
	c.KYCDocuments = append([]string(nil), u.KYCDocuments...)
	c.LinkedAccounts = append([]domain.LinkedAccount{}, u.LinkedAccounts...)
	return &c
}
