package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"biosecure-pay/internal/core/domain"
	"biosecure-pay/internal/core/ports"

	"github.com/google/uuid"
)

// TransactionRepo is an in-memory ports.TransactionRepository.
type TransactionRepo struct {
	mu  sync.RWMutex
	txs map[uuid.UUID]*domain.Transaction
}

// NewTransactionRepo creates an empty TransactionRepo.
func NewTransactionRepo() *TransactionRepo {
	return &TransactionRepo{txs: make(map[uuid.UUID]*domain.Transaction)}
}

func (r *TransactionRepo) Create(_ context.Context, t *domain.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.txs[t.ID]; exists {
		return fmt.Errorf("transaction %s already exists", t.ID)
	}
	r.txs[t.ID] = copyTransaction(t)
	return nil
}

func (r *TransactionRepo) GetForUser(_ context.Context, id, userID uuid.UUID) (*domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.txs[id]
	if !ok || t.UserID != userID {
		return nil, nil
	}
	return copyTransaction(t), nil
}

// Transition applies the state change only if the stored state equals from.
func (r *TransactionRepo) Transition(_ context.Context, id, userID uuid.UUID, from, to domain.TransactionState, update ports.TransitionUpdate) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.txs[id]
	if !ok || t.UserID != userID || t.State != from {
		return false, nil
	}
	return t.Apply(to, update.FactorsUsed, update.At), nil
}

func (r *TransactionRepo) List(_ context.Context, params ports.TransactionListParams) ([]domain.Transaction, error) {
	r.mu.RLock()
	matched := make([]domain.Transaction, 0)
	for _, t := range r.txs {
		if t.UserID != params.UserID {
			continue
		}
		if params.State != nil && t.State != *params.State {
			continue
		}
		if params.Since != nil && t.CreatedAt.Before(*params.Since) {
			continue
		}
		matched = append(matched, *copyTransaction(t))
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	if params.Offset >= len(matched) {
		return []domain.Transaction{}, nil
	}
	matched = matched[params.Offset:]
	if params.Limit > 0 && params.Limit < len(matched) {
		matched = matched[:params.Limit]
	}
	return matched, nil
}

func copyTransaction(t *domain.Transaction) *domain.Transaction {
	c := *t
	c.BiometricFactorsUsed = append([]domain.FactorType{}, t.BiometricFactorsUsed...)
	c.History = append([]domain.TransactionEvent{}, t.History...)
	return &c
}
