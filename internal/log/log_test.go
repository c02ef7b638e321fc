package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"", slog.LevelInfo, false},
		{"debug", slog.LevelDebug, false},
		{"WARN", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"verbose", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) err=%v wantErr=%v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q)=%v want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestLoggerComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelDebug, Component: ComponentReset, Output: &buf})
	l.Info("tick")
	l.WithComponent(ComponentWishlist).Info("refresh")

	out := buf.String()
	if !strings.Contains(out, "component=reset") || !strings.Contains(out, "component=wishlist") {
		t.Fatalf("missing component attrs: %s", out)
	}
	if strings.Count(out, "component=") != 2 {
		t.Fatalf("component logged more than once per record: %s", out)
	}
}

func TestRequestIDContext(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelDebug, Output: &buf})
	ctx := context.WithValue(context.Background(), LoggerContextKey, l)
	ctx = WithRequestID(ctx, "req_1")

	if got := RequestID(ctx); got != "req_1" {
		t.Fatalf("RequestID=%q", got)
	}
	FromContext(ctx).Info("hello")
	if !strings.Contains(buf.String(), "request_id=req_1") {
		t.Fatalf("request id not attached: %s", buf.String())
	}
}

func TestStructuredLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(New(Config{Level: slog.LevelDebug, Component: ComponentHTTP, Output: &buf}))
	r := httptest.NewRequest(http.MethodGet, "/summary", nil)

	sl.LogHTTPEnd(context.Background(), r, http.StatusNotFound, 3, "1.2.3.4")
	if !strings.Contains(buf.String(), "level=WARN") {
		t.Fatalf("4xx should log at warn: %s", buf.String())
	}
	buf.Reset()
	sl.LogHTTPEnd(context.Background(), r, http.StatusInternalServerError, 3, "1.2.3.4")
	if !strings.Contains(buf.String(), "level=ERROR") {
		t.Fatalf("5xx should log at error: %s", buf.String())
	}
	buf.Reset()
	sl.LogError(context.Background(), "boom", errors.New("disk full"), ErrorTypeDatabase, OpReset, nil)
	if !strings.Contains(buf.String(), "error_type=database_error") || !strings.Contains(buf.String(), "operation=reset") {
		t.Fatalf("missing fields: %s", buf.String())
	}
}

func TestFromContextDefault(t *testing.T) {
	if FromContext(context.Background()).Component() != "unknown" {
		t.Fatal("expected fallback logger")
	}
}
