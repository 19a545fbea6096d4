package domain

// Defaults for the multi-factor policy.
const (
	DefaultHighValueThreshold  int64 = 10000
	DefaultMinHighValueFactors       = 2
)

// AuthorizationPolicy decides how many biometric factors a transaction needs.
//
// HighValueThreshold is compared directly against Transaction.Amount, so both
// must be expressed in the same minor currency unit. No conversion is done.
type AuthorizationPolicy struct {
	HighValueThreshold  int64
	MinHighValueFactors int
}

// DefaultAuthorizationPolicy returns the policy with the standard threshold.
func DefaultAuthorizationPolicy() AuthorizationPolicy {
	return AuthorizationPolicy{
		HighValueThreshold:  DefaultHighValueThreshold,
		MinHighValueFactors: DefaultMinHighValueFactors,
	}
}

// IsHighValue returns true if amount strictly exceeds the threshold.
func (p AuthorizationPolicy) IsHighValue(amount int64) bool {
	return amount > p.HighValueThreshold
}

// RequiresMoreFactors reports whether presenting n factors falls short of
// the policy for amount. Only high-value amounts have a minimum here; an
// empty presentation on a low-value amount is a validation concern.
func (p AuthorizationPolicy) RequiresMoreFactors(amount int64, n int) bool {
	return p.IsHighValue(amount) && n < p.MinHighValueFactors
}
