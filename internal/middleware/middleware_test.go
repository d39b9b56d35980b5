package middleware

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/ourxmas/payment-service/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{SepayAPIKey: "secret-key"}
}

func protectedHandler(called *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		w.WriteHeader(http.StatusOK)
	})
}

func TestAPIKeyMiddlewareAccepts(t *testing.T) {
	called := false
	mw := APIKeyMiddleware(testConfig())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhook/sepay", nil)
	req.Header.Set("Authorization", "Apikey secret-key")
	rec := httptest.NewRecorder()

	mw(protectedHandler(&called)).ServeHTTP(rec, req)

	if !called {
		t.Fatal("expected request to reach the handler")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
}

func TestAPIKeyMiddlewareRejects(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong key", "Apikey wrong-key"},
		{"missing scheme", "secret-key"},
		{"bearer scheme", "Bearer secret-key"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			mw := APIKeyMiddleware(testConfig())
			req := httptest.NewRequest(http.MethodPost, "/api/v1/webhook/sepay", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			mw(protectedHandler(&called)).ServeHTTP(rec, req)

			if called {
				t.Fatal("handler must not run on auth failure")
			}
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected status 401, got %d", rec.Code)
			}
			var body struct {
				Success bool   `json:"success"`
				Error   string `json:"error"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if body.Success || body.Error != "Invalid API key" {
				t.Fatalf("unexpected body: %+v", body)
			}
		})
	}
}

func TestCORSMiddlewareAllowsConfiguredOrigin(t *testing.T) {
	mw := CORSMiddleware([]string{"http://localhost:3000"})
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()

	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})).ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Fatalf("expected allow-origin header, got %q", got)
	}
}

func TestCORSMiddlewarePreflight(t *testing.T) {
	mw := CORSMiddleware([]string{"http://localhost:3000"})
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/transactions", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()

	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("preflight must not reach the handler")
	})).ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", rec.Code)
	}
}

func TestLoggingMiddlewarePassesThrough(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	mw := LoggingMiddleware(logger)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})).ServeHTTP(rec, req)

	if rec.Code != http.StatusTeapot {
		t.Fatalf("expected status to pass through, got %d", rec.Code)
	}
}
