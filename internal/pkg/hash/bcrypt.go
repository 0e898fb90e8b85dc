package hash

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"

	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost is the work factor used when none is configured.
const DefaultBcryptCost = 10

// Bcrypt hashes with bcrypt. When a pepper is configured the plaintext is
// first reduced to base64(HMAC-SHA256(pepper, plaintext)), which keeps the
// input under bcrypt's 72 byte limit regardless of pepper length.
type Bcrypt struct {
	cost   int
	pepper []byte
}

// NewBcrypt returns a bcrypt hasher. A cost outside bcrypt's accepted range
// is replaced by DefaultBcryptCost.
func NewBcrypt(cost int, pepper string) *Bcrypt {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}

	return &Bcrypt{cost: cost, pepper: []byte(pepper)}
}

func (h *Bcrypt) Hash(plaintext string) ([]byte, error) {
	return bcrypt.GenerateFromPassword(h.input(plaintext), h.cost)
}

// Verify reports whether plaintext matches hashed. Malformed digests fail.
func (h *Bcrypt) Verify(hashed, plaintext string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), h.input(plaintext)) == nil
}

func (h *Bcrypt) input(plaintext string) []byte {
	if len(h.pepper) == 0 {
		return []byte(plaintext)
	}

	mac := hmac.New(sha256.New, h.pepper)
	mac.Write([]byte(plaintext))
	return []byte(base64.RawStdEncoding.EncodeToString(mac.Sum(nil)))
}
