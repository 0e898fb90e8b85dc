package config

import (
	"testing"
	"time"
)

const sample = `
app:
  name: cybershield
  cors:
    origins: "https://a.example, ,https://b.example"
  maintenance:
    endpoints:
      - /api/v1/account/register
modules:
  account:
    login_session_ttl_seconds: 300
mfa:
  totp:
    skew: 1
  encryption_key: "MDEyMzQ1Njc4OWFiY2RlZjAxMjM0NTY3ODlhYmNkZWY="
`

func TestViperFromBytes(t *testing.T) {
	cfg, err := NewViperFromBytes("yaml", []byte(sample))
	if err != nil {
		t.Fatalf("NewViperFromBytes: %v", err)
	}
	defer cfg.Close()

	if got := cfg.GetString("app.name"); got != "cybershield" {
		t.Fatalf("app.name: got %q", got)
	}
	if got := cfg.GetSecond("modules.account.login_session_ttl_seconds"); got != 5*time.Minute {
		t.Fatalf("ttl: got %v", got)
	}
	if got := cfg.GetUint("mfa.totp.skew"); got != 1 {
		t.Fatalf("skew: got %d", got)
	}
	if got := len(cfg.GetBinary("mfa.encryption_key")); got != 32 {
		t.Fatalf("key length: got %d", got)
	}

	origins := cfg.GetArray("app.cors.origins")
	if len(origins) != 2 || origins[0] != "https://a.example" || origins[1] != "https://b.example" {
		t.Fatalf("origins: got %#v", origins)
	}

	endpoints := cfg.GetArray("app.maintenance.endpoints")
	if len(endpoints) != 1 || endpoints[0] != "/api/v1/account/register" {
		t.Fatalf("endpoints: got %#v", endpoints)
	}
}

func TestViperFromBytes_EnvOverride(t *testing.T) {
	t.Setenv("CYBERSHIELD_APP_NAME", "from-env")

	cfg, err := NewViperFromBytes("yaml", []byte(sample))
	if err != nil {
		t.Fatalf("NewViperFromBytes: %v", err)
	}

	if got := cfg.GetString("app.name"); got != "from-env" {
		t.Fatalf("app.name: got %q", got)
	}
}

func TestViperFromBytes_RequiresType(t *testing.T) {
	if _, err := NewViperFromBytes(" ", nil); err == nil {
		t.Fatalf("expected error for empty config type")
	}
}
