package mfa

// Purpose identifies what a ciphertext protects.
type Purpose string

// PurposeOTPSeed scopes encryption to TOTP shared secrets.
const PurposeOTPSeed Purpose = "otp_seed"

// Scope binds a ciphertext to the account it belongs to. It is fed to
// AES-GCM as additional authenticated data, so a secret copied onto another
// account fails to decrypt.
type Scope struct {
	Identifier string
	Purpose    Purpose
}
