package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"accounting/internal/core"
	ports "accounting/internal/sheets"
)

// Archive keeps archived reset rows in memory. It stands in for the Sheets
// archive in development and tests.
type Archive struct {
	mu   sync.Mutex
	rows map[string][]core.Transaction // keyed by reset day
}

var _ ports.Archive = (*Archive)(nil)

func New() *Archive {
	return &Archive{rows: map[string][]core.Transaction{}}
}

// ArchiveReset stores the rows and returns a synthetic reference.
func (a *Archive) ArchiveReset(_ context.Context, day string, txs []core.Transaction) (string, error) {
	if _, err := time.Parse(time.DateOnly, day); err != nil {
		return "", fmt.Errorf("invalid reset day %q: %w", day, err)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.rows[day] = append(a.rows[day], txs...)
	return fmt.Sprintf("mem:%s:%d", day, len(a.rows[day])), nil
}

func (a *Archive) ArchivedDays(_ context.Context, year int) (map[string]bool, error) {
	prefix := fmt.Sprintf("%04d-", year)
	a.mu.Lock()
	defer a.mu.Unlock()
	out := map[string]bool{}
	for day := range a.rows {
		if strings.HasPrefix(day, prefix) {
			out[day] = true
		}
	}
	return out, nil
}

// Rows returns a copy of what was archived for day.
func (a *Archive) Rows(day string) []core.Transaction {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]core.Transaction(nil), a.rows[day]...)
}
