package google

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"accounting/internal/core"
)

func TestNewFromEnv_MissingSpreadsheetID(t *testing.T) {
	t.Setenv("GOOGLE_SPREADSHEET_ID", "")

	_, err := NewFromEnv(context.Background())
	if err == nil {
		t.Fatal("expected error for missing GOOGLE_SPREADSHEET_ID")
	}
	if err.Error() != "missing GOOGLE_SPREADSHEET_ID" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestNewSheetsService_MissingCredentials(t *testing.T) {
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_JSON", "")
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_FILE", "")
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")

	_, err := newSheetsService(context.Background())
	if err == nil {
		t.Fatal("expected error for missing credentials")
	}
}

func TestNewSheetsService_UnreadableFile(t *testing.T) {
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_JSON", "")
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_FILE", "/nonexistent/creds.json")

	if _, err := newSheetsService(context.Background()); err == nil {
		t.Fatal("expected error for unreadable credentials file")
	}
}

func TestClient_NotInitialized(t *testing.T) {
	c := New(nil, "test", "")
	if c.archiveBase != defaultArchiveSheet {
		t.Errorf("archiveBase = %q, want %q", c.archiveBase, defaultArchiveSheet)
	}
	if _, err := c.ArchiveReset(context.Background(), "2024-01-15", nil); err == nil {
		t.Error("expected error without service")
	}
	if _, err := c.ArchivedDays(context.Background(), 2024); err == nil {
		t.Error("expected error without service")
	}
}

func TestYearPrefixedName(t *testing.T) {
	tests := []struct {
		baseName string
		year     int
		expected string
	}{
		{"Archive", 2025, "2025 Archive"},
		{"", 2023, ""},
		{"Old Ledger", 2022, "2022 Old Ledger"},
		{"2025 Already Prefixed", 2024, "2025 Already Prefixed"},
	}

	for _, tt := range tests {
		got := yearPrefixedName(tt.baseName, tt.year)
		if got != tt.expected {
			t.Errorf("yearPrefixedName(%q, %d) = %q, want %q",
				tt.baseName, tt.year, got, tt.expected)
		}
	}
}

func TestArchiveRowsRoundTrip(t *testing.T) {
	date := time.Date(2024, 1, 10, 14, 30, 0, 0, time.UTC)
	txs := []core.Transaction{
		{ID: 4, Date: date, Description: "Salary", Amount: decimal.NewFromInt(1500), Kind: core.Income},
		{ID: 5, Date: date, Description: "Kettle", Amount: decimal.RequireFromString("1234.56"), Kind: core.Shopping},
	}

	values := archiveRows("2024-01-15", txs)
	// Simulate what Sheets returns: a header plus locale formatted numbers.
	matrix := append([][]interface{}{{"Reset", "Date", "Description", "Kind", "Amount", "ID"}}, values...)
	matrix[2][4] = "1,234.56"
	matrix = append(matrix, []interface{}{"garbage"})

	rows := parseArchiveRows(matrix)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	for i, r := range rows {
		if r.ResetDay != "2024-01-15" {
			t.Errorf("row %d reset day = %q", i, r.ResetDay)
		}
		want := txs[i]
		got := r.Transaction
		if got.ID != want.ID || got.Kind != want.Kind || got.Description != want.Description {
			t.Errorf("row %d = %+v, want %+v", i, got, want)
		}
		if !got.Amount.Equal(want.Amount) || !got.Date.Equal(date) {
			t.Errorf("row %d amount/date = %s %v", i, got.Amount, got.Date)
		}
	}
}

func TestResetYear(t *testing.T) {
	if y, err := resetYear("2026-03-01"); err != nil || y != 2026 {
		t.Fatalf("resetYear = %d, %v", y, err)
	}
	if _, err := resetYear("March"); err == nil {
		t.Fatal("expected error")
	}
}

func TestArchivedDays_ServedFromCache(t *testing.T) {
	c := New(nil, "test", "")
	c.days.Set(2024, map[string]bool{"2024-01-15": true})

	days, err := c.ArchivedDays(context.Background(), 2024)
	if err != nil {
		t.Fatalf("ArchivedDays: %v", err)
	}
	if !days["2024-01-15"] {
		t.Fatalf("cached day missing: %v", days)
	}

	days["2024-02-15"] = true
	again, _ := c.ArchivedDays(context.Background(), 2024)
	if again["2024-02-15"] {
		t.Error("caller mutation leaked into the cache")
	}
}
