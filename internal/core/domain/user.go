package domain

import (
	"time"

	"github.com/google/uuid"
)

// KYCStatus represents the identity verification state of a user.
type KYCStatus string

const (
	KYCStatusPending  KYCStatus = "pending"
	KYCStatusVerified KYCStatus = "verified"
)

// LinkedAccount is an external bank account authorised for payouts.
// Only the last four digits of the account number are ever retained.
type LinkedAccount struct {
	AccountID          string    `json:"account_id"`
	BankName           string    `json:"bank_name"`
	AccountNumberLast4 string    `json:"account_number_last4"`
	LinkedAt           time.Time `json:"linked_at"`
}

// User is the identity anchor for enrollments, linked accounts and transactions.
type User struct {
	ID             uuid.UUID       `json:"id"`
	Email          string          `json:"email"`
	Phone          string          `json:"phone,omitempty"`
	FullName       string          `json:"full_name,omitempty"`
	PasswordHash   string          `json:"-"` // Never expose
	KYCStatus      KYCStatus       `json:"kyc_status"`
	NationalIDEnc  string          `json:"-"` // Encrypted, never expose
	KYCDocuments   []string        `json:"kyc_documents,omitempty"`
	LinkedAccounts []LinkedAccount `json:"linked_accounts"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// IsKYCVerified returns true once the KYC provider has confirmed the user.
func (u *User) IsKYCVerified() bool {
	return u.KYCStatus == KYCStatusVerified
}

// HasLinkedAccount reports whether accountID is among the user's linked accounts.
func (u *User) HasLinkedAccount(accountID string) bool {
	for _, acc := range u.LinkedAccounts {
		if acc.AccountID == accountID {
			return true
		}
	}
	return false
}

// Last4 keeps only the trailing four characters of an account number.
func Last4(accountNumber string) string {
	if len(accountNumber) <= 4 {
		return accountNumber
	}
	return accountNumber[len(accountNumber)-4:]
}
