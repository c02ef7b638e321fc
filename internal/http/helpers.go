package http

import (
	"strings"

	"github.com/google/uuid"
)

// sanitizeInput removes control characters (except tab, newline and carriage
// return) and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// generateRequestID honours a caller-supplied X-Request-ID when it looks
// sane, otherwise mints a new one.
func generateRequestID(incoming string) string {
	incoming = strings.TrimSpace(incoming)
	if incoming != "" && len(incoming) <= 64 && !strings.ContainsAny(incoming, " \t\r\n") {
		return incoming
	}
	return "req_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
}
