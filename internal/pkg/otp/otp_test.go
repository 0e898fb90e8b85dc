package otp

import (
	"encoding/base32"
	"strings"
	"testing"
	"time"

	"github.com/pquerna/otp"
)

// base32 of the ASCII seed "12345678901234567890" from RFC 6238 appendix B.
const rfcSecret = "GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ"

func TestTOTP_GenerateCode_RFC6238Vectors(t *testing.T) {
	engine := NewTOTP(Config{Issuer: "CyberShield", Digits: otp.DigitsEight})

	vectors := []struct {
		unix int64
		want string
	}{
		{59, "94287082"},
		{1111111109, "07081804"},
		{1111111111, "14050471"},
		{1234567890, "89005924"},
		{2000000000, "69279037"},
	}

	for _, v := range vectors {
		got, err := engine.GenerateCode(rfcSecret, time.Unix(v.unix, 0).UTC())
		if err != nil {
			t.Fatalf("GenerateCode(%d): %v", v.unix, err)
		}
		if got != v.want {
			t.Fatalf("GenerateCode(%d): got %s want %s", v.unix, got, v.want)
		}
	}
}

func TestTOTP_GenerateSecret(t *testing.T) {
	engine := NewTOTP(Config{Issuer: "CyberShield"})

	secret, err := engine.GenerateSecret()
	if err != nil {
		t.Fatalf("GenerateSecret: %v", err)
	}
	if strings.Contains(secret, "=") {
		t.Fatalf("secret must not be padded: %s", secret)
	}

	raw, err := base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(secret)
	if err != nil {
		t.Fatalf("secret is not base32: %v", err)
	}
	if len(raw)*8 < 160 {
		t.Fatalf("secret too short: %d bits", len(raw)*8)
	}

	other, _ := engine.GenerateSecret()
	if other == secret {
		t.Fatalf("two secrets should differ")
	}
}

func TestTOTP_ProvisioningURI(t *testing.T) {
	engine := NewTOTP(Config{Issuer: "CyberShield"})

	got := engine.ProvisioningURI("a@x.com", "JBSWY3DPEHPK3PXP")
	want := "otpauth://totp/CyberShield:a@x.com?secret=JBSWY3DPEHPK3PXP&issuer=CyberShield"
	if got != want {
		t.Fatalf("got %s\nwant %s", got, want)
	}

	custom := NewTOTP(Config{Issuer: "CyberShield", Digits: otp.DigitsEight, Period: 60})
	got = custom.ProvisioningURI("a@x.com", "JBSWY3DPEHPK3PXP")
	if !strings.HasSuffix(got, "&digits=8&period=60") {
		t.Fatalf("expected non-default parameters, got %s", got)
	}
}

func TestTOTP_Generate(t *testing.T) {
	engine := NewTOTP(Config{Issuer: "CyberShield"})

	secret, uri, err := engine.Generate("a@x.com")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.Contains(uri, "secret="+secret) {
		t.Fatalf("uri %s does not embed secret %s", uri, secret)
	}
}

func TestTOTP_Validate_Window(t *testing.T) {
	engine := NewTOTP(Config{Issuer: "CyberShield"})
	now := time.Unix(1_700_000_010, 0).UTC()

	code, err := engine.GenerateCode(rfcSecret, now)
	if err != nil {
		t.Fatalf("GenerateCode: %v", err)
	}

	tests := []struct {
		name   string
		offset time.Duration
		want   bool
	}{
		{name: "same step", offset: 0, want: true},
		{name: "one step later", offset: 30 * time.Second, want: true},
		{name: "one step earlier", offset: -30 * time.Second, want: true},
		{name: "three steps later", offset: 90 * time.Second, want: false},
		{name: "three steps earlier", offset: -90 * time.Second, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := engine.Validate(code, rfcSecret, now.Add(tt.offset)); got != tt.want {
				t.Fatalf("Validate at %v: got %v want %v", tt.offset, got, tt.want)
			}
		})
	}
}

func TestTOTP_ValidateStep_ReportsMatchedCounter(t *testing.T) {
	engine := NewTOTP(Config{Issuer: "CyberShield"})
	now := time.Unix(1_700_000_010, 0).UTC()

	code, _ := engine.GenerateCode(rfcSecret, now)

	step, ok := engine.ValidateStep(code, rfcSecret, now.Add(30*time.Second))
	if !ok {
		t.Fatalf("expected code to validate")
	}
	if want := now.Unix() / 30; step != want {
		t.Fatalf("step: got %d want %d", step, want)
	}
}

func TestTOTP_Validate_RejectsMalformed(t *testing.T) {
	engine := NewTOTP(Config{Issuer: "CyberShield"})
	now := time.Unix(1_700_000_010, 0).UTC()
	code, _ := engine.GenerateCode(rfcSecret, now)

	tests := []struct {
		name   string
		code   string
		secret string
	}{
		{name: "empty code", code: "", secret: rfcSecret},
		{name: "too short", code: code[:5], secret: rfcSecret},
		{name: "too long", code: code + "0", secret: rfcSecret},
		{name: "letters", code: "12a456", secret: rfcSecret},
		{name: "spaces", code: " 12345", secret: rfcSecret},
		{name: "empty secret", code: code, secret: ""},
		{name: "invalid secret", code: code, secret: "not base32!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if engine.Validate(tt.code, tt.secret, now) {
				t.Fatalf("expected %q to be rejected", tt.code)
			}
		})
	}
}

func TestTOTP_GenerateCode_EmptySecret(t *testing.T) {
	engine := NewTOTP(Config{})

	if _, err := engine.GenerateCode("", time.Now()); err != ErrEmptySecret {
		t.Fatalf("expected ErrEmptySecret, got %v", err)
	}
}
