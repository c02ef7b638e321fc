package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"accounting/internal/amqp"
	ports "accounting/internal/sheets"
)

// ArchiveHandler returns an AMQP handler that writes the rows removed by a
// reset to archive. A reset day already present in the archive is
// acknowledged without writing again.
func ArchiveHandler(archive ports.Archive) func(context.Context, *amqp.ResetAppliedMessage) error {
	return func(ctx context.Context, msg *amqp.ResetAppliedMessage) error {
		day, err := time.Parse(time.DateOnly, msg.Day)
		if err != nil {
			return fmt.Errorf("reset message day %q: %w", msg.Day, err)
		}
		done, err := archive.ArchivedDays(ctx, day.Year())
		if err != nil {
			return fmt.Errorf("read archive: %w", err)
		}
		if done[msg.Day] {
			slog.InfoContext(ctx, "Reset already archived", "day", msg.Day)
			return nil
		}
		ref, err := archive.ArchiveReset(ctx, msg.Day, msg.Transactions())
		if err != nil {
			return fmt.Errorf("archive reset %s: %w", msg.Day, err)
		}
		slog.InfoContext(ctx, "Reset archived", "day", msg.Day, "rows", len(msg.Archived), "ref", ref)
		return nil
	}
}
