package hash

// Hash hashes plaintext secrets and verifies plaintext against a stored digest.
type Hash interface {
	// Hash returns the encoded digest of plaintext.
	Hash(plaintext string) ([]byte, error)
	// Verify reports whether plaintext matches hashed. A malformed digest
	// verifies as false.
	Verify(hashed, plaintext string) bool
}

// New returns the hasher selected by driver. Unknown drivers fall back to bcrypt.
func New(driver string, bcryptCost int, pepper string) Hash {
	if driver == "argon2id" {
		return NewArgon2id(pepper)
	}

	return NewBcrypt(bcryptCost, pepper)
}
