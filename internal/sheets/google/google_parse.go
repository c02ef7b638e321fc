package google

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"accounting/internal/core"
)

const archiveDateLayout = "2006-01-02 15:04"

// ArchivedRow is one parsed line of the archive sheet.
type ArchivedRow struct {
	ResetDay    string
	Transaction core.Transaction
}

func archiveRows(day string, txs []core.Transaction) [][]interface{} {
	rows := make([][]interface{}, 0, len(txs))
	for _, t := range txs {
		rows = append(rows, []interface{}{
			day,
			t.Date.UTC().Format(archiveDateLayout),
			t.Description,
			string(t.Kind),
			core.FormatAmount(t.Amount),
			t.ID,
		})
	}
	return rows
}

// parseArchiveRows converts a values matrix (as returned by Sheets API)
// back into archived transactions. Header and malformed rows are skipped.
func parseArchiveRows(values [][]interface{}) []ArchivedRow {
	var out []ArchivedRow
	for _, raw := range values {
		row := toStrings(raw)
		if len(row) < 5 {
			continue
		}
		if _, err := time.Parse(time.DateOnly, row[0]); err != nil {
			continue
		}
		date, err := time.Parse(archiveDateLayout, row[1])
		if err != nil {
			continue
		}
		kind, err := core.ParseKind(row[3])
		if err != nil {
			continue
		}
		// Sheets may reformat the number with locale separators.
		amount, err := core.NormalizePrice(row[4])
		if err != nil {
			continue
		}
		var id int64
		if len(row) > 5 {
			id, _ = strconv.ParseInt(row[5], 10, 64)
		}
		out = append(out, ArchivedRow{
			ResetDay: row[0],
			Transaction: core.Transaction{
				ID:          id,
				Date:        date,
				Description: row[2],
				Amount:      amount,
				Kind:        kind,
			},
		})
	}
	return out
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}
