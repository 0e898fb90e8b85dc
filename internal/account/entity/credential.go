package entity

import "time"

// Credential is the per-account authentication record, keyed by Identifier.
type Credential struct {
	Identifier   string
	DisplayName  string
	PasswordHash string

	// SecondFactorSecret is the AES-GCM sealed TOTP secret. Empty until
	// enrollment begins; rewritten by each enrollment attempt until the
	// factor is enabled, immutable afterwards.
	SecondFactorSecret  []byte
	SecondFactorEnabled bool

	// LastUsedStep is the TOTP counter of the last code accepted at login.
	LastUsedStep int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasPendingSecret reports whether enrollment has begun but not completed.
func (c *Credential) HasPendingSecret() bool {
	return len(c.SecondFactorSecret) > 0 && !c.SecondFactorEnabled
}

// Clone returns a deep copy so callers can mutate without aliasing the store.
func (c *Credential) Clone() *Credential {
	if c == nil {
		return nil
	}

	cp := *c
	if c.SecondFactorSecret != nil {
		cp.SecondFactorSecret = append([]byte(nil), c.SecondFactorSecret...)
	}
	return &cp
}
