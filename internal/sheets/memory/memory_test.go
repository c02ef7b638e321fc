package memory

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"accounting/internal/core"
)

func TestArchiveResetAndDays(t *testing.T) {
	a := New()
	ctx := context.Background()
	txs := []core.Transaction{{ID: 1, Date: time.Now(), Description: "Rent", Amount: decimal.NewFromInt(5), Kind: core.Expense}}

	ref, err := a.ArchiveReset(ctx, "2024-03-15", txs)
	if err != nil || ref != "mem:2024-03-15:1" {
		t.Fatalf("unexpected archive: ref=%q err=%v", ref, err)
	}
	if _, err := a.ArchiveReset(ctx, "2023-12-15", txs); err != nil {
		t.Fatal(err)
	}

	days, err := a.ArchivedDays(ctx, 2024)
	if err != nil {
		t.Fatal(err)
	}
	if len(days) != 1 || !days["2024-03-15"] {
		t.Fatalf("unexpected days: %v", days)
	}
	if got := a.Rows("2024-03-15"); len(got) != 1 || got[0].Description != "Rent" {
		t.Fatalf("unexpected rows: %+v", got)
	}
}

func TestArchiveRejectsBadDay(t *testing.T) {
	if _, err := New().ArchiveReset(context.Background(), "15/03/2024", nil); err == nil {
		t.Fatal("expected error for malformed day")
	}
}
