package entity

import "time"

// AuthState is the position of a login attempt in the authentication flow.
type AuthState int8

const (
	AuthStateAnonymous AuthState = iota
	AuthStatePasswordVerified
	AuthStateEnrollmentPending
	AuthStateSecondFactorPending
	AuthStateAuthenticated
)

func (s AuthState) String() string {
	switch s {
	case AuthStatePasswordVerified:
		return "PASSWORD_VERIFIED"
	case AuthStateEnrollmentPending:
		return "ENROLLMENT_PENDING"
	case AuthStateSecondFactorPending:
		return "SECOND_FACTOR_PENDING"
	case AuthStateAuthenticated:
		return "AUTHENTICATED"
	default:
		return "ANONYMOUS"
	}
}

// LoginSession remembers that a password was verified and which step must
// follow. It is consumed when that step succeeds.
type LoginSession struct {
	Identifier string    `json:"identifier"`
	Step       AuthState `json:"step"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// Expired reports whether the session is no longer usable at now.
func (s *LoginSession) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
