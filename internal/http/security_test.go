package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestExtractClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		xri        string
		want       string
	}{
		{"direct", "203.0.113.7:5000", "", "", "203.0.113.7"},
		{"untrusted peer ignores xff", "203.0.113.7:5000", "198.51.100.1", "", "203.0.113.7"},
		{"trusted proxy xff", "10.0.0.2:5000", "198.51.100.1, 10.0.0.2", "", "198.51.100.1"},
		{"trusted proxy x-real-ip", "127.0.0.1:5000", "", "198.51.100.9", "198.51.100.9"},
		{"trusted proxy bad header", "127.0.0.1:5000", "not-an-ip", "", "127.0.0.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				r.Header.Set("X-Real-IP", tt.xri)
			}
			if got := extractClientIP(r); got != tt.want {
				t.Errorf("extractClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsSuspicious(t *testing.T) {
	var counter int64
	if isSuspicious(httptest.NewRequest(http.MethodGet, "/transactions", nil), &counter) {
		t.Error("plain request flagged")
	}
	if !isSuspicious(httptest.NewRequest(http.MethodGet, "/../.env", nil), &counter) {
		t.Error("path traversal not flagged")
	}
	if !isSuspicious(httptest.NewRequest("TRACE", "/", nil), &counter) {
		t.Error("TRACE not flagged")
	}
	if counter != 2 {
		t.Errorf("counter = %d, want 2", counter)
	}
}

func TestRateLimiterWindow(t *testing.T) {
	rl := newRateLimiter(2, time.Minute)
	defer rl.stop()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	if !rl.allow("a") || !rl.allow("a") {
		t.Fatal("first two requests should pass")
	}
	if rl.allow("a") {
		t.Fatal("third request in window should be rejected")
	}
	if !rl.allow("b") {
		t.Fatal("other clients are independent")
	}
	if rl.rejected() != 1 {
		t.Errorf("rejected = %d, want 1", rl.rejected())
	}

	now = now.Add(time.Minute)
	if !rl.allow("a") {
		t.Fatal("new window should reset the count")
	}

	now = now.Add(time.Hour)
	rl.cleanupStaleEntries()
	if rl.activeClients() != 0 {
		t.Errorf("activeClients = %d after cleanup", rl.activeClients())
	}
}
