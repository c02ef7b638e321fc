package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"accounting/internal/cache"
	"accounting/internal/core"
	ports "accounting/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

const defaultArchiveSheet = "Archive"

// Archive columns: reset day, date, description, kind, amount, transaction id.
const archiveColumns = "A:F"

// archivedDaysTTL bounds how stale the per-year archived-day sets may be
// when the sheet is edited by hand.
const archivedDaysTTL = 10 * time.Minute

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	// Base name without year (e.g. "Archive"); the reset year is prefixed.
	archiveBase string
	days        *cache.LRU[int, map[string]bool]
}

var _ ports.Archive = (*Client)(nil)

// NewFromEnv creates a Sheets client from environment variables.
// Required: GOOGLE_SPREADSHEET_ID
// Optional: GOOGLE_ARCHIVE_SHEET_NAME (default "Archive")
// Auth: GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE or
// GOOGLE_APPLICATION_CREDENTIALS.
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return New(svc, spreadsheetID, os.Getenv("GOOGLE_ARCHIVE_SHEET_NAME")), nil
}

func New(svc *gsheet.Service, spreadsheetID, archiveBase string) *Client {
	archiveBase = strings.TrimSpace(archiveBase)
	if archiveBase == "" {
		archiveBase = defaultArchiveSheet
	}
	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		archiveBase:   archiveBase,
		days:          cache.NewLRU[int, map[string]bool](8, archivedDaysTTL),
	}
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		b, err := os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = b
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	slog.InfoContext(ctx, "Google Sheets service created", "credentials_size", len(credentialsJSON))
	return service, nil
}

// ArchiveReset appends one row per removed transaction to "<year> <base>".
func (c *Client) ArchiveReset(ctx context.Context, day string, txs []core.Transaction) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}
	year, err := resetYear(day)
	if err != nil {
		return "", err
	}
	if len(txs) == 0 {
		return "", nil
	}

	sheet := yearPrefixedName(c.archiveBase, year)
	rng := fmt.Sprintf("%s!%s", sheet, archiveColumns)
	vr := &gsheet.ValueRange{Values: archiveRows(day, txs)}

	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append to %s: %w", sheet, err)
	}

	c.days.Update(year, func(days map[string]bool) map[string]bool {
		days[day] = true
		return days
	})

	ref := rng
	if resp.Updates != nil && resp.Updates.UpdatedRange != "" {
		ref = resp.Updates.UpdatedRange
	}
	slog.InfoContext(ctx, "Archived reset rows", "day", day, "rows", len(txs), "range", ref)
	return ref, nil
}

// ArchivedDays reads the reset-day column of the year's archive sheet.
// Results are cached per year and kept current by ArchiveReset.
func (c *Client) ArchivedDays(ctx context.Context, year int) (map[string]bool, error) {
	if days, ok := c.days.Get(year); ok {
		return copyDays(days), nil
	}
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	rng := fmt.Sprintf("%s!%s", yearPrefixedName(c.archiveBase, year), archiveColumns)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	days := map[string]bool{}
	for _, row := range parseArchiveRows(resp.Values) {
		days[row.ResetDay] = true
	}
	c.days.Set(year, days)
	return copyDays(days), nil
}

func copyDays(in map[string]bool) map[string]bool {
	out := make(map[string]bool, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func resetYear(day string) (int, error) {
	t, err := time.Parse(time.DateOnly, day)
	if err != nil {
		return 0, fmt.Errorf("invalid reset day %q: %w", day, err)
	}
	return t.Year(), nil
}

// yearPrefixedName returns "<year> <base>" unless base already starts with a 4-digit year.
func yearPrefixedName(base string, year int) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return base
	}
	if len(base) >= 5 {
		if y, err := strconv.Atoi(base[0:4]); err == nil && base[4] == ' ' && y > 1900 && y < 3000 {
			return base
		}
	}
	return fmt.Sprintf("%d %s", year, base)
}
