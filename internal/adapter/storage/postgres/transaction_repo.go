package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"biosecure-pay/internal/core/domain"
	"biosecure-pay/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const transactionColumns = `id, user_id, amount, currency, recipient, account_id, state,
		biometric_factors_used, provider_reference, history, created_at, updated_at`

// TransactionRepo implements ports.TransactionRepository.
type TransactionRepo struct {
	pool Pool
}

// NewTransactionRepo creates a new TransactionRepo.
func NewTransactionRepo(pool Pool) *TransactionRepo {
	return &TransactionRepo{pool: pool}
}

// Create inserts a new transaction.
func (r *TransactionRepo) Create(ctx context.Context, t *domain.Transaction) error {
	history, err := json.Marshal(t.History)
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}

	query := `INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err = r.pool.Exec(ctx, query,
		t.ID, t.UserID, t.Amount, t.Currency, t.Recipient, t.AccountID, string(t.State),
		factorStrings(t.BiometricFactorsUsed), t.ProviderReference, history,
		t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// GetForUser fetches a transaction owned by userID.
func (r *TransactionRepo) GetForUser(ctx context.Context, id, userID uuid.UUID) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1 AND user_id = $2`

	t, err := scanTransaction(r.pool.QueryRow(ctx, query, id, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return t, err
}

// Transition is a compare-and-swap on state: the row changes only if its
// current state is from. Factors are written only on the move into
// authenticated, leaving them untouched afterwards.
func (r *TransactionRepo) Transition(ctx context.Context, id, userID uuid.UUID, from, to domain.TransactionState, update ports.TransitionUpdate) (bool, error) {
	if !domain.CanTransition(from, to) {
		return false, nil
	}

	event, err := json.Marshal([]domain.TransactionEvent{{State: to, At: update.At}})
	if err != nil {
		return false, fmt.Errorf("marshal history event: %w", err)
	}

	var factors any
	if to == domain.TransactionStateAuthenticated {
		factors = factorStrings(update.FactorsUsed)
	}

	query := `UPDATE transactions
		SET state = $1,
			biometric_factors_used = COALESCE($2::text[], biometric_factors_used),
			history = history || $3::jsonb,
			updated_at = $4
		WHERE id = $5 AND user_id = $6 AND state = $7`

	tag, err := r.pool.Exec(ctx, query, string(to), factors, event, update.At, id, userID, string(from))
	if err != nil {
		return false, fmt.Errorf("transition transaction: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// List fetches the user's transactions, newest first.
func (r *TransactionRepo) List(ctx context.Context, params ports.TransactionListParams) ([]domain.Transaction, error) {
	var conditions []string
	var args []any
	argIdx := 1

	conditions = append(conditions, fmt.Sprintf("user_id = $%d", argIdx))
	args = append(args, params.UserID)
	argIdx++

	if params.State != nil {
		conditions = append(conditions, fmt.Sprintf("state = $%d", argIdx))
		args = append(args, string(*params.State))
		argIdx++
	}
	if params.Since != nil {
		conditions = append(conditions, fmt.Sprintf("created_at >= $%d", argIdx))
		args = append(args, *params.Since)
		argIdx++
	}

	query := fmt.Sprintf(`SELECT %s FROM transactions WHERE %s
		ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		transactionColumns, strings.Join(conditions, " AND "), argIdx, argIdx+1)
	args = append(args, params.Limit, params.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	txns := []domain.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txns = append(txns, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transaction rows: %w", err)
	}
	return txns, nil
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	t := &domain.Transaction{}
	var state string
	var factors []string
	var history []byte
	err := row.Scan(
		&t.ID, &t.UserID, &t.Amount, &t.Currency, &t.Recipient, &t.AccountID, &state,
		&factors, &t.ProviderReference, &history, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan transaction: %w", err)
	}

	t.State = domain.TransactionState(state)
	t.BiometricFactorsUsed = make([]domain.FactorType, 0, len(factors))
	for _, f := range factors {
		t.BiometricFactorsUsed = append(t.BiometricFactorsUsed, domain.FactorType(f))
	}
	t.History = []domain.TransactionEvent{}
	if len(history) > 0 {
		if err := json.Unmarshal(history, &t.History); err != nil {
			return nil, fmt.Errorf("decode history: %w", err)
		}
	}
	return t, nil
}

func factorStrings(factors []domain.FactorType) []string {
	out := make([]string, 0, len(factors))
	for _, f := range factors {
		out = append(out, string(f))
	}
	return out
}
