package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"biosecure-pay/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const userColumns = `id, email, phone, full_name, password_hash, kyc_status, national_id_enc,
		kyc_documents, linked_accounts, created_at, updated_at`

// UserRepo implements ports.UserRepository. Linked accounts live in a JSONB
// array on the user row and are only ever appended to.
type UserRepo struct {
	pool Pool
}

// NewUserRepo creates a new UserRepo.
func NewUserRepo(pool Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

// Create inserts the user unless the email is taken. The unique index on
// email decides, not a prior lookup.
func (r *UserRepo) Create(ctx context.Context, u *domain.User) (bool, error) {
	accounts, err := json.Marshal(nonNilAccounts(u.LinkedAccounts))
	if err != nil {
		return false, fmt.Errorf("marshal linked accounts: %w", err)
	}

	query := `INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (email) DO NOTHING`

	tag, err := r.pool.Exec(ctx, query,
		u.ID, u.Email, u.Phone, u.FullName, u.PasswordHash,
		string(u.KYCStatus), u.NationalIDEnc, nonNilStrings(u.KYCDocuments), accounts,
		u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("insert user: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// GetByID fetches a user by UUID.
func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.pool.QueryRow(ctx, query, id))
}

// GetByEmailOrPhone prefers an email match, then the oldest user with that phone.
func (r *UserRepo) GetByEmailOrPhone(ctx context.Context, identifier string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users
		WHERE email = $1 OR phone = $1
		ORDER BY (email = $1) DESC, created_at ASC
		LIMIT 1`
	return scanUser(r.pool.QueryRow(ctx, query, identifier))
}

func (r *UserRepo) UpdateKYC(ctx context.Context, id uuid.UUID, status domain.KYCStatus, nationalIDEnc string, documents []string) error {
	query := `UPDATE users SET kyc_status = $1, national_id_enc = $2, kyc_documents = $3, updated_at = $4 WHERE id = $5`

	tag, err := r.pool.Exec(ctx, query, string(status), nationalIDEnc, nonNilStrings(documents), time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update kyc: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user not found: %s", id)
	}
	return nil
}

// AddLinkedAccount appends in place with jsonb concatenation.
func (r *UserRepo) AddLinkedAccount(ctx context.Context, userID uuid.UUID, account domain.LinkedAccount) error {
	payload, err := json.Marshal([]domain.LinkedAccount{account})
	if err != nil {
		return fmt.Errorf("marshal linked account: %w", err)
	}

	query := `UPDATE users SET linked_accounts = linked_accounts || $1::jsonb, updated_at = $2 WHERE id = $3`

	tag, err := r.pool.Exec(ctx, query, payload, time.Now().UTC(), userID)
	if err != nil {
		return fmt.Errorf("add linked account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user not found: %s", userID)
	}
	return nil
}

func (r *UserRepo) ListLinkedAccounts(ctx context.Context, userID uuid.UUID) ([]domain.LinkedAccount, error) {
	var raw []byte
	err := r.pool.QueryRow(ctx, `SELECT linked_accounts FROM users WHERE id = $1`, userID).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return []domain.LinkedAccount{}, nil
		}
		return nil, fmt.Errorf("list linked accounts: %w", err)
	}
	return decodeAccounts(raw)
}

// IsLinked uses jsonb containment so the check stays in the database.
func (r *UserRepo) IsLinked(ctx context.Context, userID uuid.UUID, accountID string) (bool, error) {
	needle, err := json.Marshal([]map[string]string{{"account_id": accountID}})
	if err != nil {
		return false, fmt.Errorf("marshal account needle: %w", err)
	}

	query := `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1 AND linked_accounts @> $2::jsonb)`

	var linked bool
	if err := r.pool.QueryRow(ctx, query, userID, needle).Scan(&linked); err != nil {
		return false, fmt.Errorf("check linked account: %w", err)
	}
	return linked, nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	u := &domain.User{}
	var kycStatus string
	var accounts []byte
	err := row.Scan(
		&u.ID, &u.Email, &u.Phone, &u.FullName, &u.PasswordHash,
		&kycStatus, &u.NationalIDEnc, &u.KYCDocuments, &accounts,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	u.KYCStatus = domain.KYCStatus(kycStatus)
	if u.LinkedAccounts, err = decodeAccounts(accounts); err != nil {
		return nil, err
	}
	return u, nil
}

func decodeAccounts(raw []byte) ([]domain.LinkedAccount, error) {
	accounts := []domain.LinkedAccount{}
	if len(raw) == 0 {
		return accounts, nil
	}
	if err := json.Unmarshal(raw, &accounts); err != nil {
		return nil, fmt.Errorf("decode linked accounts: %w", err)
	}
	return accounts, nil
}

func nonNilAccounts(a []domain.LinkedAccount) []domain.LinkedAccount {
	if a == nil {
		return []domain.LinkedAccount{}
	}
	return a
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
