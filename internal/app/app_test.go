package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shandysiswandi/cybershield/internal/pkg/otp"
)

const testConfig = `
app:
  server:
    max_goroutine: 10
    http:
      address: 127.0.0.1:0
      read_timeout_seconds: 5
      read_header_timeout_seconds: 5
      write_timeout_seconds: 5
      idle_timeout_seconds: 5
instrument:
  enabled: false
  service_name: CyberShield
  log_level: error
hash:
  password:
    driver: bcrypt
  bcrypt:
    cost: 4
mfa:
  secret: 0123456789abcdef0123456789abcdef
  totp:
    issuer: CyberShield
store:
  driver: memory
session:
  driver: memory
messaging:
  driver: memory
`

type envelope struct {
	OK      bool            `json:"ok"`
	Reason  string          `json:"reason"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func startApp(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(testConfig), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIG_PATH", path)

	application := New()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	errChan := application.Serve(l)

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		application.Stop(ctx)

		if err := <-errChan; err != nil && !errors.Is(err, http.ErrServerClosed) {
			t.Errorf("serve: %v", err)
		}
	})

	return "http://" + l.Addr().String()
}

func postJSON(t *testing.T, url string, payload any) (int, envelope) {
	t.Helper()

	buf := &bytes.Buffer{}
	if err := json.NewEncoder(buf).Encode(payload); err != nil {
		t.Fatalf("encode json: %v", err)
	}

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Post(url, "application/json", buf)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		t.Fatalf("decode envelope: %v (%s)", err, body)
	}

	return resp.StatusCode, env
}

func TestApp_TwoFactorLifecycle(t *testing.T) {
	// Arrange
	baseURL := startApp(t)
	creds := map[string]string{"identifier": "a@x.com", "password": "pw1"}
	totp := otp.NewTOTP(otp.Config{Issuer: "CyberShield"})

	// Act & Assert
	status, env := postJSON(t, baseURL+"/api/v1/account/register", map[string]string{
		"identifier": "a@x.com", "display_name": "Al", "password": "pw1",
	})
	if status != http.StatusOK || !env.OK {
		t.Fatalf("register: %d %+v", status, env)
	}

	status, env = postJSON(t, baseURL+"/api/v1/account/login", creds)
	if status != http.StatusOK {
		t.Fatalf("first login: %d %+v", status, env)
	}

	status, env = postJSON(t, baseURL+"/api/v1/account/2fa/setup", map[string]string{"identifier": "a@x.com"})
	if status != http.StatusOK {
		t.Fatalf("setup: %d %+v", status, env)
	}
	var setup struct {
		Secret string `json:"secret"`
	}
	if err := json.Unmarshal(env.Data, &setup); err != nil || setup.Secret == "" {
		t.Fatalf("setup data: %v (%s)", err, env.Data)
	}

	code, err := totp.GenerateCode(setup.Secret, time.Now())
	if err != nil {
		t.Fatalf("generate code: %v", err)
	}
	status, env = postJSON(t, baseURL+"/api/v1/account/2fa/confirm", map[string]string{"identifier": "a@x.com", "code": code})
	if status != http.StatusOK {
		t.Fatalf("confirm: %d %+v", status, env)
	}

	status, env = postJSON(t, baseURL+"/api/v1/account/2fa/verify", map[string]string{"identifier": "a@x.com", "code": code})
	if status != http.StatusUnauthorized || env.Reason != "LOGIN_REQUIRED" {
		t.Fatalf("verify without login: %d %+v", status, env)
	}

	status, env = postJSON(t, baseURL+"/api/v1/account/login", creds)
	if status != http.StatusOK {
		t.Fatalf("second login: %d %+v", status, env)
	}

	status, env = postJSON(t, baseURL+"/api/v1/account/2fa/verify", map[string]string{"identifier": "a@x.com", "code": code})
	var verify struct {
		State string `json:"state"`
	}
	if err := json.Unmarshal(env.Data, &verify); err != nil {
		t.Fatalf("verify data: %v (%s)", err, env.Data)
	}
	if status != http.StatusOK || verify.State != "AUTHENTICATED" {
		t.Fatalf("verify: %d %+v", status, env)
	}
}

func TestApp_LoginUnknownAccount(t *testing.T) {
	// Arrange
	baseURL := startApp(t)

	// Act
	status, env := postJSON(t, baseURL+"/api/v1/account/login", map[string]string{"identifier": "ghost@x.com", "password": "pw1"})

	// Assert
	if status != http.StatusUnauthorized || env.Reason != "INVALID_CREDENTIALS" {
		t.Fatalf("got %d %+v", status, env)
	}
}
