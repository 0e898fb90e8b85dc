package otp

import (
	"crypto/subtle"
	"errors"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// ErrEmptySecret is returned when a code is requested for an empty secret.
var ErrEmptySecret = errors.New("otp: empty secret")

// OTP defines the contract for TOTP operations.
type OTP interface {
	// GenerateSecret creates a fresh base32 secret.
	GenerateSecret() (string, error)
	// ProvisioningURI renders the otpauth URI for an account and secret.
	ProvisioningURI(accountName, secret string) string
	// Generate creates a secret and provisioning URI for an account name.
	Generate(accountName string) (secret string, uri string, err error)
	// Validate checks whether a code is valid at the given time.
	Validate(code, secret string, at time.Time) bool
	// ValidateStep is Validate that also reports the matching time step.
	ValidateStep(code, secret string, at time.Time) (int64, bool)
	// GenerateCode creates a TOTP code for the given secret and time.
	GenerateCode(secret string, at time.Time) (string, error)
}

// Config tunes a TOTP engine. Zero values fall back to RFC 6238 defaults.
type Config struct {
	Issuer     string
	Period     uint
	Skew       uint
	Digits     otp.Digits
	Algorithm  otp.Algorithm
	SecretSize uint
}

// TOTP implements OTP using the Time-based One-Time Password algorithm.
type TOTP struct {
	issuer     string
	period     uint
	skew       uint
	digits     otp.Digits
	algorithm  otp.Algorithm
	secretSize uint
}

// NewTOTP constructs a TOTP instance with sensible defaults.
//
// If digits is not 6 or 8, it falls back to 6 digits. If period is 0, it uses
// the common 30-second period. Secrets shorter than 20 bytes are raised to 20.
func NewTOTP(cfg Config) *TOTP {
	if cfg.Digits != otp.DigitsSix && cfg.Digits != otp.DigitsEight {
		cfg.Digits = otp.DigitsSix
	}

	if cfg.Period == 0 {
		cfg.Period = 30
	}

	if cfg.Skew == 0 {
		cfg.Skew = 1
	}

	switch cfg.Algorithm {
	case otp.AlgorithmSHA1, otp.AlgorithmSHA256, otp.AlgorithmSHA512:
	default:
		cfg.Algorithm = otp.AlgorithmSHA1
	}

	if cfg.SecretSize < 20 {
		cfg.SecretSize = 20 // 160 bits, RFC 4226 recommendation
	}

	return &TOTP{
		issuer:     cfg.Issuer,
		period:     cfg.Period,
		skew:       cfg.Skew,
		digits:     cfg.Digits,
		algorithm:  cfg.Algorithm,
		secretSize: cfg.SecretSize,
	}
}

// GenerateSecret creates a fresh base32 secret without padding.
func (o *TOTP) GenerateSecret() (string, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      o.issuer,
		AccountName: "-",
		Period:      o.period,
		SecretSize:  o.secretSize,
		Digits:      o.digits,
		Algorithm:   o.algorithm,
	})
	if err != nil {
		return "", err
	}

	return key.Secret(), nil
}

// ProvisioningURI renders
// otpauth://totp/<issuer>:<account>?secret=<secret>&issuer=<issuer>.
// Algorithm, digits and period are appended only when they differ from the
// defaults authenticator apps assume.
func (o *TOTP) ProvisioningURI(accountName, secret string) string {
	var b strings.Builder
	b.WriteString("otpauth://totp/")
	b.WriteString(url.PathEscape(o.issuer))
	b.WriteString(":")
	b.WriteString(url.PathEscape(accountName))
	b.WriteString("?secret=")
	b.WriteString(secret)
	b.WriteString("&issuer=")
	b.WriteString(url.QueryEscape(o.issuer))

	if o.algorithm != otp.AlgorithmSHA1 {
		b.WriteString("&algorithm=")
		b.WriteString(o.algorithm.String())
	}
	if o.digits != otp.DigitsSix {
		b.WriteString("&digits=")
		b.WriteString(o.digits.String())
	}
	if o.period != 30 {
		b.WriteString("&period=")
		b.WriteString(strconv.FormatUint(uint64(o.period), 10))
	}

	return b.String()
}

// Generate creates a secret and provisioning URI for an account name.
func (o *TOTP) Generate(accountName string) (secret string, uri string, err error) {
	secret, err = o.GenerateSecret()
	if err != nil {
		return "", "", err
	}

	return secret, o.ProvisioningURI(accountName, secret), nil
}

// Validate checks whether a code is valid at the given time.
func (o *TOTP) Validate(code, secret string, at time.Time) bool {
	_, ok := o.ValidateStep(code, secret, at)
	return ok
}

// ValidateStep checks code against the steps around at and returns the
// counter of the step it matched.
//
// Malformed codes are rejected before any HMAC is computed. Every step in
// the window is evaluated so the time taken does not depend on which one
// matched.
func (o *TOTP) ValidateStep(code, secret string, at time.Time) (int64, bool) {
	if secret == "" || !o.wellFormed(code) {
		return 0, false
	}

	counter := at.Unix() / int64(o.period)
	skew := int64(o.skew)

	var matched int64
	found := 0
	for i := -skew; i <= skew; i++ {
		step := counter + i
		if step < 0 {
			continue
		}

		want, err := o.codeAt(secret, step)
		if err != nil {
			return 0, false
		}

		eq := subtle.ConstantTimeCompare([]byte(want), []byte(code))
		if eq == 1 && found == 0 {
			matched = step
		}
		found |= eq
	}

	return matched, found == 1
}

// GenerateCode creates a TOTP code for the given secret and time.
func (o *TOTP) GenerateCode(secret string, at time.Time) (string, error) {
	if secret == "" {
		return "", ErrEmptySecret
	}

	return o.codeAt(secret, at.Unix()/int64(o.period))
}

func (o *TOTP) codeAt(secret string, step int64) (string, error) {
	return totp.GenerateCodeCustom(secret, time.Unix(step*int64(o.period), 0).UTC(), totp.ValidateOpts{
		Period:    o.period,
		Digits:    o.digits,
		Algorithm: o.algorithm,
	})
}

func (o *TOTP) wellFormed(code string) bool {
	if len(code) != o.digits.Length() {
		return false
	}

	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return false
		}
	}

	return true
}
