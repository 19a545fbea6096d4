package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"biosecure-pay/internal/core/domain"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUser() *domain.User {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.User{
		ID:             uuid.New(),
		Email:          "a@x.com",
		Phone:          "08011112222",
		FullName:       "Ada Obi",
		PasswordHash:   "$argon2id$hash",
		KYCStatus:      domain.KYCStatusPending,
		KYCDocuments:   []string{},
		LinkedAccounts: []domain.LinkedAccount{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func userColumnNames() []string {
	return []string{"id", "email", "phone", "full_name", "password_hash", "kyc_status", "national_id_enc",
		"kyc_documents", "linked_accounts", "created_at", "updated_at"}
}

func userRow(u *domain.User, accountsJSON string) *pgxmock.Rows {
	return pgxmock.NewRows(userColumnNames()).AddRow(
		u.ID, u.Email, u.Phone, u.FullName, u.PasswordHash, string(u.KYCStatus), u.NationalIDEnc,
		u.KYCDocuments, []byte(accountsJSON), u.CreatedAt, u.UpdatedAt,
	)
}

func TestUserRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewUserRepo(mock)
	u := newTestUser()

	mock.ExpectExec("INSERT INTO users .+ ON CONFLICT \\(email\\) DO NOTHING").
		WithArgs(
			u.ID, u.Email, u.Phone, u.FullName, u.PasswordHash,
			"pending", "", []string{}, []byte("[]"),
			u.CreatedAt, u.UpdatedAt,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	created, err := repo.Create(context.Background(), u)
	require.NoError(t, err)
	assert.True(t, created)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_Create_DuplicateEmail(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewUserRepo(mock)

	mock.ExpectExec("INSERT INTO users").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	created, err := repo.Create(context.Background(), newTestUser())
	require.NoError(t, err)
	assert.False(t, created)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_GetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewUserRepo(mock)
	u := newTestUser()

	mock.ExpectQuery("SELECT .+ FROM users WHERE id").
		WithArgs(u.ID).
		WillReturnRows(userRow(u, `[{"account_id":"acc1","bank_name":"GTBank","account_number_last4":"7890","linked_at":"2026-03-01T12:00:00Z"}]`))

	got, err := repo.GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, u.Email, got.Email)
	assert.Equal(t, domain.KYCStatusPending, got.KYCStatus)
	require.Len(t, got.LinkedAccounts, 1)
	assert.Equal(t, "7890", got.LinkedAccounts[0].AccountNumberLast4)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_GetByID_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewUserRepo(mock)

	mock.ExpectQuery("SELECT .+ FROM users WHERE id").
		WithArgs(pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows(userColumnNames()))

	got, err := repo.GetByID(context.Background(), uuid.New())
	assert.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_GetByEmailOrPhone(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewUserRepo(mock)
	u := newTestUser()

	mock.ExpectQuery("SELECT .+ FROM users\\s+WHERE email = \\$1 OR phone = \\$1").
		WithArgs("08011112222").
		WillReturnRows(userRow(u, "[]"))

	got, err := repo.GetByEmailOrPhone(context.Background(), "08011112222")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, u.ID, got.ID)
	assert.Empty(t, got.LinkedAccounts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_UpdateKYC(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewUserRepo(mock)
	id := uuid.New()

	mock.ExpectExec("UPDATE users SET kyc_status").
		WithArgs("verified", "enc-nin", []string{"doc.png"}, pgxmock.AnyArg(), id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err = repo.UpdateKYC(context.Background(), id, domain.KYCStatusVerified, "enc-nin", []string{"doc.png"})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_UpdateKYC_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewUserRepo(mock)

	mock.ExpectExec("UPDATE users SET kyc_status").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err = repo.UpdateKYC(context.Background(), uuid.New(), domain.KYCStatusVerified, "", nil)
	assert.ErrorContains(t, err, "user not found")
}

func TestUserRepo_AddLinkedAccount(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewUserRepo(mock)
	id := uuid.New()
	acc := domain.LinkedAccount{AccountID: "acc1", BankName: "GTBank", AccountNumberLast4: "7890",
		LinkedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}

	mock.ExpectExec("UPDATE users SET linked_accounts = linked_accounts \\|\\| \\$1::jsonb").
		WithArgs(
			[]byte(`[{"account_id":"acc1","bank_name":"GTBank","account_number_last4":"7890","linked_at":"2026-03-01T12:00:00Z"}]`),
			pgxmock.AnyArg(), id,
		).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	assert.NoError(t, repo.AddLinkedAccount(context.Background(), id, acc))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_ListLinkedAccounts(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewUserRepo(mock)
	id := uuid.New()

	mock.ExpectQuery("SELECT linked_accounts FROM users").
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows([]string{"linked_accounts"}).
			AddRow([]byte(`[{"account_id":"acc1"},{"account_id":"acc1"}]`)))

	accounts, err := repo.ListLinkedAccounts(context.Background(), id)
	require.NoError(t, err)
	assert.Len(t, accounts, 2)

	mock.ExpectQuery("SELECT linked_accounts FROM users").
		WithArgs(pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"linked_accounts"}))

	accounts, err = repo.ListLinkedAccounts(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.NotNil(t, accounts)
	assert.Empty(t, accounts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_IsLinked(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewUserRepo(mock)
	id := uuid.New()

	mock.ExpectQuery("SELECT EXISTS\\(SELECT 1 FROM users WHERE id = \\$1 AND linked_accounts @> \\$2::jsonb\\)").
		WithArgs(id, []byte(`[{"account_id":"acc1"}]`)).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	linked, err := repo.IsLinked(context.Background(), id, "acc1")
	require.NoError(t, err)
	assert.True(t, linked)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(id, pgxmock.AnyArg()).
		WillReturnError(errors.New("connection reset"))

	_, err = repo.IsLinked(context.Background(), id, "acc2")
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
