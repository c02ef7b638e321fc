package services

import (
	"context"
	"log/slog"

	"accounting/internal/amqp"
)

// EventPublisher announces committed ledger changes. *amqp.Client
// satisfies it.
type EventPublisher interface {
	PublishLedgerEvent(ctx context.Context, msg *amqp.LedgerEventMessage) error
	PublishResetApplied(ctx context.Context, msg *amqp.ResetAppliedMessage) error
}

// publishEvent never fails the caller: the ledger write already committed.
func publishEvent(ctx context.Context, p EventPublisher, msg *amqp.LedgerEventMessage) {
	if p == nil {
		slog.DebugContext(ctx, "Publisher not configured, skipping event", "type", msg.Type)
		return
	}
	if err := p.PublishLedgerEvent(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "Failed to publish ledger event",
			"type", msg.Type,
			"entity_id", msg.EntityID,
			"error", err)
	}
}
