package router

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shandysiswandi/cybershield/internal/pkg/config"
	"github.com/shandysiswandi/cybershield/internal/pkg/goerror"
)

type fixedID string

func (f fixedID) Generate() string { return string(f) }

type echoResp struct {
	Name string `json:"name"`
}

func (echoResp) Message() string { return "echoed" }

func serve(t *testing.T, ro *Router, method, path, body string, headers map[string]string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	ro.ServeHTTP(rec, req)

	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("response is not JSON: %v (%s)", err, rec.Body.String())
	}
	return rec, out
}

func TestRouter_SuccessEnvelope(t *testing.T) {
	ro := NewRouter(Config{UUID: fixedID("cid-generated"), Name: "CyberShield"})
	ro.POST("/echo", func(r *Request) (any, error) {
		var in echoResp
		if err := r.DecodeBody(&in); err != nil {
			return nil, err
		}
		return in, nil
	})

	rec, out := serve(t, ro, http.MethodPost, "/echo", `{"name":"Al"}`, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	if out["ok"] != true || out["message"] != "echoed" {
		t.Fatalf("unexpected envelope: %v", out)
	}
	if data, _ := out["data"].(map[string]any); data["name"] != "Al" {
		t.Fatalf("unexpected data: %v", out["data"])
	}
	if got := rec.Header().Get(HeaderCorrelationID); got != "cid-generated" {
		t.Fatalf("correlation id: got %q", got)
	}
}

func TestRouter_ErrorEnvelope(t *testing.T) {
	ro := NewRouter(Config{})
	ro.POST("/conflict", func(*Request) (any, error) {
		return nil, goerror.NewBusiness("already registered", goerror.CodeConflict)
	})
	ro.POST("/plain", func(*Request) (any, error) {
		return nil, errors.New("leaky detail")
	})
	ro.POST("/decode", func(r *Request) (any, error) {
		var in echoResp
		return nil, r.DecodeBody(&in)
	})

	rec, out := serve(t, ro, http.MethodPost, "/conflict", "", nil)
	if rec.Code != http.StatusConflict || out["ok"] != false || out["reason"] != "CONFLICT" || out["message"] != "already registered" {
		t.Fatalf("conflict: %d %v", rec.Code, out)
	}

	rec, out = serve(t, ro, http.MethodPost, "/plain", "", nil)
	if rec.Code != http.StatusInternalServerError || strings.Contains(rec.Body.String(), "leaky") {
		t.Fatalf("plain error: %d %v", rec.Code, out)
	}

	rec, out = serve(t, ro, http.MethodPost, "/decode", `{"name":"Al","extra":1}`, nil)
	if rec.Code != http.StatusBadRequest || out["reason"] != "INVALID_FORMAT" {
		t.Fatalf("unknown field: %d %v", rec.Code, out)
	}
}

func TestRouter_BuiltinRoutes(t *testing.T) {
	ro := NewRouter(Config{Name: "CyberShield"})

	rec, out := serve(t, ro, http.MethodGet, "/health", "", map[string]string{HeaderCorrelationID: "abc"})
	if rec.Code != http.StatusOK || out["message"] != "ok" {
		t.Fatalf("health: %d %v", rec.Code, out)
	}
	if rec.Header().Get(HeaderCorrelationID) != "abc" {
		t.Fatalf("expected inbound correlation id to be echoed")
	}

	rec, out = serve(t, ro, http.MethodGet, "/nope", "", nil)
	if rec.Code != http.StatusNotFound || out["reason"] != "NOT_FOUND" {
		t.Fatalf("not found: %d %v", rec.Code, out)
	}
}

func TestRouter_RecoversPanic(t *testing.T) {
	ro := NewRouter(Config{})
	ro.GET("/panic", func(*Request) (any, error) { panic("boom") })

	rec, out := serve(t, ro, http.MethodGet, "/panic", "", nil)
	if rec.Code != http.StatusInternalServerError || out["reason"] != "INTERNAL" {
		t.Fatalf("panic: %d %v", rec.Code, out)
	}
}

func TestRouter_Maintenance(t *testing.T) {
	cfg, err := config.NewViperFromBytes("yaml", []byte("app:\n  maintenance:\n    endpoints:\n      - /closed\n"))
	if err != nil {
		t.Fatalf("config: %v", err)
	}

	ro := NewRouter(Config{Config: cfg})
	ro.GET("/closed", func(*Request) (any, error) { return echoResp{}, nil })

	rec, _ := serve(t, ro, http.MethodGet, "/closed", "", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("maintenance: got %d", rec.Code)
	}
}

func TestRealIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:5555"
	if got := realIP(req); got != "10.0.0.1" {
		t.Fatalf("remote addr: got %q", got)
	}

	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.2")
	if got := realIP(req); got != "203.0.113.7" {
		t.Fatalf("forwarded: got %q", got)
	}
}
