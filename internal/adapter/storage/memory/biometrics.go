package memory

import (
	"context"
	"sort"
	"sync"

	"biosecure-pay/internal/core/domain"

	"github.com/google/uuid"
)

type userFactor struct {
	userID uuid.UUID
	factor domain.FactorType
}

// BiometricRepo is an in-memory ports.BiometricRepository. The active index
// plays the role of the partial unique index on (user_id, factor_type).
type BiometricRepo struct {
	mu          sync.RWMutex
	enrollments map[uuid.UUID]domain.BiometricEnrollment
	active      map[userFactor]uuid.UUID
}

// NewBiometricRepo creates an empty BiometricRepo.
func NewBiometricRepo() *BiometricRepo {
	return &BiometricRepo{
		enrollments: make(map[uuid.UUID]domain.BiometricEnrollment),
		active:      make(map[userFactor]uuid.UUID),
	}
}

func (r *BiometricRepo) Create(_ context.Context, e *domain.BiometricEnrollment) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := userFactor{e.UserID, e.Type}
	if e.IsActive() {
		if _, exists := r.active[key]; exists {
			return false, nil
		}
		r.active[key] = e.ID
	}
	r.enrollments[e.ID] = *e
	return true, nil
}

func (r *BiometricRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]domain.BiometricEnrollment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []domain.BiometricEnrollment{}
	for _, e := range r.enrollments {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EnrolledAt.Before(out[j].EnrolledAt) })
	return out, nil
}

func (r *BiometricRepo) Delete(_ context.Context, id, userID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.enrollments[id]
	if !ok || e.UserID != userID {
		return false, nil
	}
	delete(r.enrollments, id)
	key := userFactor{e.UserID, e.Type}
	if r.active[key] == id {
		delete(r.active, key)
	}
	return true, nil
}

func (r *BiometricRepo) GetActive(_ context.Context, userID uuid.UUID, factor domain.FactorType) (*domain.BiometricEnrollment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.active[userFactor{userID, factor}]
	if !ok {
		return nil, nil
	}
	e := r.enrollments[id]
	return &e, nil
}
