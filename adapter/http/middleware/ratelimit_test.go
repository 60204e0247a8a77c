package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	apierrors "http-logging/errors"
	"http-logging/infrastructure/config"
)

func newTestLimiter(rl config.RateLimitConfig) *RateLimiter {
	return NewRateLimiter(config.NewManagerForTest(&config.Config{RateLimit: rl}))
}

func TestNewRateLimiter(t *testing.T) {
	tests := []struct {
		name    string
		enabled bool
	}{
		{"enabled", true},
		{"disabled", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rl := newTestLimiter(config.RateLimitConfig{Enabled: tt.enabled, GlobalRPS: 100.0})
			if rl == nil {
				t.Fatal("NewRateLimiter returned nil")
			}
			if tt.enabled && rl.global == nil {
				t.Error("Expected global limiter to be initialized when enabled")
			}
			if !tt.enabled && rl.global != nil {
				t.Error("Expected global limiter to be nil when disabled")
			}
		})
	}
}

func TestRateLimiter_Allow(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		rl := newTestLimiter(config.RateLimitConfig{Enabled: false})
		if !rl.Allow("192.168.1.1") {
			t.Error("Expected Allow to return true when disabled")
		}
	})

	t.Run("global limit", func(t *testing.T) {
		rl := newTestLimiter(config.RateLimitConfig{Enabled: true, GlobalRPS: 2.0, BurstFactor: 1.0})
		if !rl.Allow("") {
			t.Error("First request should be allowed")
		}
		if !rl.Allow("") {
			t.Error("Second request should be allowed")
		}
		if rl.Allow("") {
			t.Error("Third request should be rate limited")
		}
	})

	t.Run("per IP limit", func(t *testing.T) {
		rl := newTestLimiter(config.RateLimitConfig{Enabled: true, PerIPRPS: 1.0})
		ip := "192.168.1.1"
		if !rl.Allow(ip) {
			t.Error("First request should be allowed")
		}
		if rl.Allow(ip) {
			t.Error("Second request should be rate limited")
		}
		if !rl.Allow("192.168.1.2") {
			t.Error("Other IPs must not share the limit")
		}
	})
}

func TestRateLimiter_getIPLimiter(t *testing.T) {
	rl := newTestLimiter(config.RateLimitConfig{Enabled: true, PerIPRPS: 100.0})
	ip := "192.168.1.1"

	limiter1 := rl.getIPLimiter(ip)
	if limiter1 == nil {
		t.Fatal("getIPLimiter returned nil")
	}
	if limiter2 := rl.getIPLimiter(ip); limiter1 != limiter2 {
		t.Error("getIPLimiter should return the same instance for same IP")
	}
	if limiter3 := rl.getIPLimiter("192.168.1.2"); limiter1 == limiter3 {
		t.Error("getIPLimiter should return different instances for different IPs")
	}

	rl.Update()
	if rl.getIPLimiter(ip) == limiter1 {
		t.Error("Update should drop cached per-IP limiters")
	}
}

func TestRateLimiter_Middleware(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("disabled", func(t *testing.T) {
		handler := newTestLimiter(config.RateLimitConfig{Enabled: false}).Middleware(ok)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest("POST", "/ping", nil))
		if rec.Code != http.StatusOK {
			t.Errorf("Expected status 200, got %d", rec.Code)
		}
	})

	t.Run("rate limited", func(t *testing.T) {
		handler := newTestLimiter(config.RateLimitConfig{Enabled: true, GlobalRPS: 1.0}).Middleware(ok)

		rec1 := httptest.NewRecorder()
		handler.ServeHTTP(rec1, httptest.NewRequest("POST", "/ping", nil))
		if rec1.Code != http.StatusOK {
			t.Errorf("First request: expected status 200, got %d", rec1.Code)
		}

		req2 := httptest.NewRequest("POST", "/ping", nil)
		req2.Header.Set("X-Request-ID", "req_2")
		rec2 := httptest.NewRecorder()
		handler.ServeHTTP(rec2, req2)
		if rec2.Code != http.StatusTooManyRequests {
			t.Fatalf("Second request: expected status 429, got %d", rec2.Code)
		}
		if rec2.Header().Get("Retry-After") == "" {
			t.Error("Retry-After header missing")
		}
		var body apierrors.APIError
		if err := json.NewDecoder(rec2.Body).Decode(&body); err != nil {
			t.Fatal(err)
		}
		if body.Code != apierrors.ErrRateLimited.Code || body.TraceID != "req_2" {
			t.Errorf("body = %+v", body)
		}
	})
}

func TestExtractIP(t *testing.T) {
	tests := []struct {
		name       string
		headers    map[string]string
		remoteAddr string
		expected   string
	}{
		{
			name:     "X-Forwarded-For",
			headers:  map[string]string{"X-Forwarded-For": "192.168.1.1"},
			expected: "192.168.1.1",
		},
		{
			name:     "X-Forwarded-For chain",
			headers:  map[string]string{"X-Forwarded-For": "10.0.0.1, 10.0.0.2"},
			expected: "10.0.0.1",
		},
		{
			name:     "X-Real-IP",
			headers:  map[string]string{"X-Real-IP": "192.168.1.2"},
			expected: "192.168.1.2",
		},
		{
			name:       "RemoteAddr",
			remoteAddr: "192.168.1.3:12345",
			expected:   "192.168.1.3",
		},
		{
			name:     "X-Forwarded-For priority",
			headers:  map[string]string{"X-Forwarded-For": "192.168.1.1", "X-Real-IP": "192.168.1.2"},
			expected: "192.168.1.1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			if tt.remoteAddr != "" {
				req.RemoteAddr = tt.remoteAddr
			}

			if ip := ExtractIP(req); ip != tt.expected {
				t.Errorf("Expected IP %s, got %s", tt.expected, ip)
			}
		})
	}
}

func TestRateLimiter_Concurrent(t *testing.T) {
	rl := newTestLimiter(config.RateLimitConfig{Enabled: true, GlobalRPS: 1000.0, PerIPRPS: 100.0})

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			ip := "192.168.1." + strconv.Itoa(idx%10)
			rl.Allow(ip)
			rl.getIPLimiter(ip)
			if idx%25 == 0 {
				rl.Update()
			}
		}(i)
	}
	wg.Wait()
}

func TestRateLimiter_BurstFactor(t *testing.T) {
	rl := newTestLimiter(config.RateLimitConfig{Enabled: true, GlobalRPS: 10.0, BurstFactor: 2.0})
	if rl.global == nil {
		t.Fatal("global limiter not initialized")
	}

	allowedCount := 0
	for i := 0; i < 25; i++ {
		if rl.Allow("") {
			allowedCount++
		}
	}
	if allowedCount < 20 {
		t.Errorf("Expected at least 20 allowed requests with burst factor 2.0, got %d", allowedCount)
	}
}
