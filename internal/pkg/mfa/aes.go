package mfa

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Ciphertext layout:
//
//	[0..1]   uint16 version
//	[2..13]  nonce
//	[14..]   gcm.Seal output (ciphertext + tag)
const (
	aesGCMVersion uint16 = 1
	gcmNonceSize         = 12
	aesKeyLen            = 32
	headerLen            = 2 + gcmNonceSize
)

var (
	// ErrEncryptorNotConfigured indicates a missing key provider.
	ErrEncryptorNotConfigured = errors.New("mfa: encryptor not configured")
	// ErrPlaintextEmpty indicates an empty plaintext input.
	ErrPlaintextEmpty = errors.New("mfa: plaintext is empty")
	// ErrInvalidKeyLength indicates the key is not 32 bytes.
	ErrInvalidKeyLength = errors.New("mfa: invalid key length")
	// ErrCiphertextTooShort indicates a truncated ciphertext.
	ErrCiphertextTooShort = errors.New("mfa: ciphertext too short")
	// ErrUnsupportedCiphertextVersion indicates an unknown layout version.
	ErrUnsupportedCiphertextVersion = errors.New("mfa: unsupported ciphertext version")
	// ErrDecryptFailed covers wrong key, wrong scope and tampering alike.
	ErrDecryptFailed = errors.New("mfa: decrypt failed")
	// ErrMissingStaticKey indicates an empty static key.
	ErrMissingStaticKey = errors.New("mfa: missing static key")
)

// AESGCMEncryptor implements Encryptor using AES-256-GCM.
type AESGCMEncryptor struct {
	keys KeyProvider
}

// NewAESGCMEncryptor constructs an AES-GCM encryptor.
func NewAESGCMEncryptor(keys KeyProvider) *AESGCMEncryptor {
	return &AESGCMEncryptor{keys: keys}
}

// Encrypt seals plaintext and binds the result to scope.
func (e *AESGCMEncryptor) Encrypt(plaintext []byte, scope Scope) ([]byte, error) {
	if len(plaintext) == 0 {
		return nil, ErrPlaintextEmpty
	}

	gcm, err := e.aead(scope)
	if err != nil {
		return nil, err
	}

	out := make([]byte, headerLen, headerLen+len(plaintext)+gcm.Overhead())
	binary.BigEndian.PutUint16(out[0:2], aesGCMVersion)
	if _, err := io.ReadFull(rand.Reader, out[2:headerLen]); err != nil {
		return nil, fmt.Errorf("mfa: nonce generation failed: %w", err)
	}

	return gcm.Seal(out, out[2:headerLen], plaintext, scopeAAD(scope)), nil
}

// Decrypt opens ciphertext produced by Encrypt for the same scope.
func (e *AESGCMEncryptor) Decrypt(ciphertext []byte, scope Scope) ([]byte, error) {
	if len(ciphertext) <= headerLen {
		return nil, ErrCiphertextTooShort
	}

	if v := binary.BigEndian.Uint16(ciphertext[0:2]); v != aesGCMVersion {
		return nil, fmt.Errorf("mfa: version %d: %w", v, ErrUnsupportedCiphertextVersion)
	}

	gcm, err := e.aead(scope)
	if err != nil {
		return nil, err
	}

	plain, err := gcm.Open(nil, ciphertext[2:headerLen], ciphertext[headerLen:], scopeAAD(scope))
	if err != nil {
		return nil, ErrDecryptFailed
	}

	return plain, nil
}

func (e *AESGCMEncryptor) aead(scope Scope) (cipher.AEAD, error) {
	if e == nil || e.keys == nil {
		return nil, ErrEncryptorNotConfigured
	}

	key, err := e.keys.Key(scope)
	if err != nil {
		return nil, fmt.Errorf("mfa: key provider: %w", err)
	}
	if len(key) != aesKeyLen {
		return nil, fmt.Errorf("mfa: key length %d: %w", len(key), ErrInvalidKeyLength)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("mfa: aes init: %w", err)
	}

	return cipher.NewGCMWithNonceSize(block, gcmNonceSize)
}

// scopeAAD hashes a labelled canonical form so the AAD has a fixed length
// and no separator ambiguity.
func scopeAAD(s Scope) []byte {
	sum := sha256.Sum256(fmt.Appendf(nil, "identifier=%s\npurpose=%s\n", s.Identifier, s.Purpose))
	return sum[:]
}

// StaticKeyProvider returns the same key for every scope.
type StaticKeyProvider struct {
	KeyBytes []byte
}

// NewStaticKeyProvider decodes a base64 key. A 32-byte raw string is also
// accepted for local development.
func NewStaticKeyProvider(encoded string) (StaticKeyProvider, error) {
	if encoded == "" {
		return StaticKeyProvider{}, ErrMissingStaticKey
	}

	if key, err := base64.StdEncoding.DecodeString(encoded); err == nil && len(key) == aesKeyLen {
		return StaticKeyProvider{KeyBytes: key}, nil
	}

	if len(encoded) == aesKeyLen {
		return StaticKeyProvider{KeyBytes: []byte(encoded)}, nil
	}

	return StaticKeyProvider{}, ErrInvalidKeyLength
}

// Key returns a copy of the static key.
func (p StaticKeyProvider) Key(_ Scope) ([]byte, error) {
	if len(p.KeyBytes) == 0 {
		return nil, ErrMissingStaticKey
	}

	k := make([]byte, len(p.KeyBytes))
	copy(k, p.KeyBytes)
	return k, nil
}
