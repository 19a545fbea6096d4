package domain

import (
	"time"

	"github.com/google/uuid"
)

// FactorType enumerates the supported biometric factors.
type FactorType string

const (
	FactorFingerprint FactorType = "fingerprint"
	FactorFace        FactorType = "face"
	FactorVoice       FactorType = "voice"
)

// FactorTypes lists every supported factor in canonical order.
var FactorTypes = []FactorType{FactorFingerprint, FactorFace, FactorVoice}

// IsValid returns true if f is one of the enumerated factor types.
func (f FactorType) IsValid() bool {
	switch f {
	case FactorFingerprint, FactorFace, FactorVoice:
		return true
	}
	return false
}

// EnrollmentStatus represents the state of a biometric enrollment.
type EnrollmentStatus string

const (
	EnrollmentStatusActive   EnrollmentStatus = "active"
	EnrollmentStatusInactive EnrollmentStatus = "inactive"
)

// BiometricEnrollment is one enrolled template for a (user, factor type) pair.
type BiometricEnrollment struct {
	ID          uuid.UUID        `json:"id"`
	UserID      uuid.UUID        `json:"user_id"`
	Type        FactorType       `json:"type"`
	TemplateEnc string           `json:"-"` // AES-256 encrypted, never expose
	EnrolledAt  time.Time        `json:"enrolled_at"`
	Status      EnrollmentStatus `json:"status"`
}

// IsActive returns true if the enrollment can be used for matching.
func (b *BiometricEnrollment) IsActive() bool {
	return b.Status == EnrollmentStatusActive
}

// BiometricSummary is the listing view of an enrollment. It never carries the template.
type BiometricSummary struct {
	ID         uuid.UUID        `json:"id"`
	Type       FactorType       `json:"type"`
	EnrolledAt time.Time        `json:"enrolled_at"`
	Status     EnrollmentStatus `json:"status"`
}

// FactorProof is one biometric sample presented during authentication.
type FactorProof struct {
	Type     FactorType `json:"type"`
	Template string     `json:"template"`
}
