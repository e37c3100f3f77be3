package middleware_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sahilkapur/ledgerdesk/pkg/middleware"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func headerAuthenticator(t *testing.T) *middleware.Authenticator {
	t.Helper()

	cfg := &middleware.AuthConfig{}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize: %v", err)
	}

	a, err := middleware.NewAuthenticator(context.Background(), cfg, testLogger())
	if err != nil {
		t.Fatalf("new authenticator: %v", err)
	}
	return a
}

func TestHeaderCallerResolution(t *testing.T) {
	auth := headerAuthenticator(t)

	var resolved middleware.Caller
	handler := auth.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, ok := middleware.CallerFrom(r.Context())
		if !ok {
			t.Error("caller missing from context")
		}
		resolved = c
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/documents", nil)
	req.Header.Set(middleware.HeaderIdentity, "auditor@firm.test")
	req.Header.Set(middleware.HeaderRole, "audit")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if resolved.Identity != "auditor@firm.test" || resolved.Role != "audit" {
		t.Errorf("caller = %+v", resolved)
	}
}

func TestMissingHeadersRejected(t *testing.T) {
	tests := []struct {
		name     string
		identity string
		role     string
	}{
		{"no headers", "", ""},
		{"identity only", "user@firm.test", ""},
		{"role only", "", "audit"},
	}

	auth := headerAuthenticator(t)
	handler := auth.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be reached")
	}))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/documents", nil)
			if tt.identity != "" {
				req.Header.Set(middleware.HeaderIdentity, tt.identity)
			}
			if tt.role != "" {
				req.Header.Set(middleware.HeaderRole, tt.role)
			}

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", rec.Code)
			}
		})
	}
}

func TestWithCallerRoundTrip(t *testing.T) {
	caller := middleware.Caller{Identity: "owner@firm.test", Role: "owner"}
	ctx := middleware.WithCaller(context.Background(), caller)

	got, ok := middleware.CallerFrom(ctx)
	if !ok || got != caller {
		t.Errorf("CallerFrom = %+v, %v", got, ok)
	}

	if _, ok := middleware.CallerFrom(context.Background()); ok {
		t.Error("empty context should carry no caller")
	}
}

func TestAuthConfigValidation(t *testing.T) {
	cfg := &middleware.AuthConfig{Enabled: true}
	if err := cfg.Finalize(nil); err == nil {
		t.Error("enabled auth without issuer should fail validation")
	}

	cfg = &middleware.AuthConfig{}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if cfg.IdentityClaim != "sub" || cfg.RoleClaim != "role" {
		t.Errorf("claim defaults = %q, %q", cfg.IdentityClaim, cfg.RoleClaim)
	}
}
