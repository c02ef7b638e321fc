package sheets

import (
	"context"

	"accounting/internal/core"
)

// Ports for outbound adapters.
type (
	// ResetArchiver keeps a copy of the transactions a monthly reset removed.
	ResetArchiver interface {
		// ArchiveReset appends the rows removed by the reset on day (YYYY-MM-DD)
		// and returns a reference to where they were written.
		ArchiveReset(ctx context.Context, day string, txs []core.Transaction) (ref string, err error)
	}

	// ArchiveReader lists which reset days are already archived for a year,
	// so a redelivered reset event is not written twice.
	ArchiveReader interface {
		ArchivedDays(ctx context.Context, year int) (map[string]bool, error)
	}

	Archive interface {
		ResetArchiver
		ArchiveReader
	}
)
