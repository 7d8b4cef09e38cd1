package server

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimiterAllowAndDeny(t *testing.T) {
	// 60 requests/min is 1/s with a burst of 2.
	limiter := NewRateLimiter(60, time.Minute, 2, nil)
	defer limiter.Close()

	if !limiter.Allow("ip:10.0.0.1") {
		t.Error("first request should be allowed")
	}
	if !limiter.Allow("ip:10.0.0.1") {
		t.Error("second request should be allowed within burst")
	}
	if limiter.Allow("ip:10.0.0.1") {
		t.Error("third immediate request should be denied")
	}

	// A different key has its own bucket.
	if !limiter.Allow("ip:10.0.0.2") {
		t.Error("different key should be unaffected")
	}
}

func TestRateLimiterStats(t *testing.T) {
	limiter := NewRateLimiter(120, time.Minute, 5, nil)
	defer limiter.Close()

	limiter.Allow("ip:10.0.0.1")
	limiter.Allow("api:key-1")

	stats := limiter.GetStats()
	if stats["active_limiters"] != 2 {
		t.Errorf("active_limiters = %v, want 2", stats["active_limiters"])
	}
	if stats["burst_capacity"] != 5 {
		t.Errorf("burst_capacity = %v, want 5", stats["burst_capacity"])
	}
	if stats["rate_per_minute"] != 120.0 {
		t.Errorf("rate_per_minute = %v, want 120", stats["rate_per_minute"])
	}
}

func TestGetRateLimitKey(t *testing.T) {
	tests := []struct {
		name     string
		apiKey   string
		bearer   string
		byAPIKey bool
		byIP     bool
		want     string
	}{
		{"api key header", "secret", "", true, true, "api:secret"},
		{"bearer fallback", "", "token123", true, true, "api:token123"},
		{"ip fallback", "", "", true, true, "ip:192.0.2.1"},
		{"ip only", "secret", "", false, true, "ip:192.0.2.1"},
		{"nothing enabled", "secret", "", false, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("POST", "/api/answer", nil)
			r.RemoteAddr = "192.0.2.1:12345"
			if tt.apiKey != "" {
				r.Header.Set("X-API-Key", tt.apiKey)
			}
			if tt.bearer != "" {
				r.Header.Set("Authorization", "Bearer "+tt.bearer)
			}

			if got := getRateLimitKey(r, tt.byAPIKey, tt.byIP); got != tt.want {
				t.Errorf("getRateLimitKey() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		xRealIP    string
		want       string
	}{
		{"remote addr", "192.0.2.1:12345", "", "", "192.0.2.1"},
		{"x-forwarded-for", "10.0.0.1:80", "203.0.113.5, 10.0.0.1", "", "203.0.113.5"},
		{"x-real-ip", "10.0.0.1:80", "", "203.0.113.9", "203.0.113.9"},
		{"invalid xff falls through", "192.0.2.1:12345", "not-an-ip", "", "192.0.2.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/health", nil)
			r.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xRealIP != "" {
				r.Header.Set("X-Real-IP", tt.xRealIP)
			}

			if got := getClientIP(r); got != tt.want {
				t.Errorf("getClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseFirstIP(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"203.0.113.5", "203.0.113.5"},
		{"203.0.113.5, 10.0.0.1", "203.0.113.5"},
		{" bogus , 203.0.113.5", "203.0.113.5"},
		{"bogus", ""},
		{"", ""},
	}

	for _, tt := range tests {
		if got := parseFirstIP(tt.input); got != tt.want {
			t.Errorf("parseFirstIP(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
