package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestAdminAuth(t *testing.T) {
	tests := []struct {
		name           string
		username       string
		password       string
		token          string
		reqUsername    string
		reqPassword    string
		reqToken       string
		expectedStatus int
	}{
		{
			name:           "no auth configured allows request",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "valid basic auth",
			username:       "admin",
			password:       "secret123",
			reqUsername:    "admin",
			reqPassword:    "secret123",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "wrong basic auth password",
			username:       "admin",
			password:       "secret123",
			reqUsername:    "admin",
			reqPassword:    "nope",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "valid token auth",
			token:          "radar-token",
			reqToken:       "radar-token",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "wrong token",
			token:          "radar-token",
			reqToken:       "other",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "token accepted even with bad basic auth",
			username:       "admin",
			password:       "secret123",
			token:          "radar-token",
			reqToken:       "radar-token",
			reqUsername:    "wrong",
			reqPassword:    "wrong",
			expectedStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &authConfig{
				adminUsername: tt.username,
				adminPassword: tt.password,
				adminToken:    tt.token,
				enabled:       (tt.username != "" && tt.password != "") || tt.token != "",
			}

			handler := adminAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}), cfg)

			req := httptest.NewRequest(http.MethodPost, "/admin/prune", nil)
			if tt.reqUsername != "" || tt.reqPassword != "" {
				req.SetBasicAuth(tt.reqUsername, tt.reqPassword)
			}
			if tt.reqToken != "" {
				req.Header.Set("X-Admin-Token", tt.reqToken)
			}

			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, rr.Code)
			}
			if tt.expectedStatus == http.StatusUnauthorized {
				if auth := rr.Header().Get("WWW-Authenticate"); auth == "" {
					t.Error("expected WWW-Authenticate header on 401 response")
				}
			}
		})
	}
}

func TestRateLimiterWindow(t *testing.T) {
	cfg := &rateLimiterConfig{
		enabled:       true,
		requestsPerIP: 3,
		window:        100 * time.Millisecond,
	}
	limiter := newIPRateLimiter(context.Background(), cfg)

	for i := 0; i < 3; i++ {
		if !limiter.allow("10.0.0.1") {
			t.Errorf("request %d should be allowed", i+1)
		}
	}
	if limiter.allow("10.0.0.1") {
		t.Error("request over limit should be denied")
	}

	time.Sleep(150 * time.Millisecond)

	if !limiter.allow("10.0.0.1") {
		t.Error("request after window expiry should be allowed")
	}
}

func TestRateLimiterPerIP(t *testing.T) {
	cfg := &rateLimiterConfig{
		enabled:       true,
		requestsPerIP: 1,
		window:        time.Second,
	}
	limiter := newIPRateLimiter(context.Background(), cfg)

	if !limiter.allow("10.0.0.1") {
		t.Error("first IP should be allowed")
	}
	if !limiter.allow("10.0.0.2") {
		t.Error("second IP should have its own budget")
	}
	if limiter.allow("10.0.0.1") {
		t.Error("first IP should now be over limit")
	}
}

func TestRateLimiterDisabled(t *testing.T) {
	cfg := &rateLimiterConfig{
		enabled:       false,
		requestsPerIP: 1,
		window:        time.Second,
	}
	limiter := newIPRateLimiter(context.Background(), cfg)

	for i := 0; i < 50; i++ {
		if !limiter.allow("10.0.0.1") {
			t.Errorf("request %d should be allowed when limiter is disabled", i+1)
		}
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	cfg := &rateLimiterConfig{
		enabled:       true,
		requestsPerIP: 2,
		window:        time.Second,
	}
	limiter := newIPRateLimiter(context.Background(), cfg)

	handler := rateLimitMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}), limiter)

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/messages", nil)
		req.RemoteAddr = "10.0.0.1:4242"
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Errorf("request %d: expected 200, got %d", i+1, rr.Code)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/messages", nil)
	req.RemoteAddr = "10.0.0.1:4242"
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", rr.Code)
	}
	if rr.Header().Get("Retry-After") == "" {
		t.Error("expected Retry-After header on 429 response")
	}
}

func TestRateLimitMiddlewareForwardedFor(t *testing.T) {
	cfg := &rateLimiterConfig{
		enabled:       true,
		requestsPerIP: 1,
		window:        time.Second,
	}
	limiter := newIPRateLimiter(context.Background(), cfg)

	handler := rateLimitMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}), limiter)

	// Two requests from different forwarded IPs share a RemoteAddr but must
	// be limited independently.
	for _, ip := range []string{"203.0.113.7", "203.0.113.8"} {
		req := httptest.NewRequest(http.MethodGet, "/messages", nil)
		req.RemoteAddr = "10.0.0.1:4242"
		req.Header.Set("X-Forwarded-For", ip+", 10.0.0.1")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Errorf("forwarded ip %s: expected 200, got %d", ip, rr.Code)
		}
	}
}

func TestLoadRateLimiterConfig(t *testing.T) {
	t.Setenv("RATE_LIMIT_ENABLED", "1")
	t.Setenv("RATE_LIMIT_REQUESTS_PER_IP", "25")
	t.Setenv("RATE_LIMIT_WINDOW_SECONDS", "30")

	cfg := loadRateLimiterConfig()
	if !cfg.enabled {
		t.Error("expected limiter enabled")
	}
	if cfg.requestsPerIP != 25 {
		t.Errorf("requestsPerIP = %d, want 25", cfg.requestsPerIP)
	}
	if cfg.window != 30*time.Second {
		t.Errorf("window = %s, want 30s", cfg.window)
	}

	t.Setenv("RATE_LIMIT_ENABLED", "0")
	if loadRateLimiterConfig().enabled {
		t.Error("expected limiter disabled with RATE_LIMIT_ENABLED=0")
	}
}
