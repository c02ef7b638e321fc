package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"accounting/internal/core"
	applog "accounting/internal/log"
	"accounting/internal/services"
)

type transactionJSON struct {
	ID          int64  `json:"id"`
	Date        string `json:"date"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Kind        string `json:"kind"`
}

type shoppingItemJSON struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Price string `json:"price"`
}

type summaryJSON struct {
	Income   string `json:"income"`
	Expense  string `json:"expense"`
	NetWorth string `json:"net_worth"`
}

type resetJSON struct {
	Status   string           `json:"status"`
	Day      string           `json:"day"`
	ResetDay int              `json:"reset_day,omitempty"`
	NetWorth string           `json:"net_worth,omitempty"`
	Removed  int              `json:"removed"`
	Opening  *transactionJSON `json:"opening,omitempty"`
}

type errorJSON struct {
	Error     string `json:"error"`
	Field     string `json:"field,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func toTransactionJSON(t core.Transaction) transactionJSON {
	return transactionJSON{
		ID:          t.ID,
		Date:        t.Date.UTC().Format(time.RFC3339),
		Description: t.Description,
		Amount:      core.FormatAmount(t.Amount),
		Kind:        string(t.Kind),
	}
}

func toTransactionsJSON(txs []core.Transaction) []transactionJSON {
	out := make([]transactionJSON, 0, len(txs))
	for _, t := range txs {
		out = append(out, toTransactionJSON(t))
	}
	return out
}

func toShoppingItemJSON(it core.ShoppingItem) shoppingItemJSON {
	return shoppingItemJSON{ID: it.ID, Name: it.Name, Price: core.FormatAmount(it.Price)}
}

func toSummaryJSON(s core.Summary) summaryJSON {
	return summaryJSON{
		Income:   core.FormatAmount(s.Income),
		Expense:  core.FormatAmount(s.Expense),
		NetWorth: core.FormatAmount(s.NetWorth),
	}
}

func toResetJSON(r services.ResetResult) resetJSON {
	out := resetJSON{Status: r.Status, Day: r.Day, ResetDay: r.ResetDay, Removed: r.Removed}
	if r.Fired() {
		out.NetWorth = core.FormatAmount(r.NetWorth)
	}
	if r.Opening != nil {
		o := toTransactionJSON(*r.Opening)
		out.Opening = &o
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Encode response failed", "error", err)
	}
}

// statusFor maps domain error kinds onto HTTP status codes.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, core.ErrValidation):
		return http.StatusUnprocessableEntity, applog.ErrorTypeValidation
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound, applog.ErrorTypeNotFound
	case errors.Is(err, core.ErrFetch):
		return http.StatusBadGateway, applog.ErrorTypeNetwork
	case errors.Is(err, core.ErrStorage):
		return http.StatusInternalServerError, applog.ErrorTypeDatabase
	default:
		return http.StatusInternalServerError, applog.ErrorTypeInternal
	}
}

// writeError renders err as JSON. Server-side failures are logged and their
// details withheld from the client.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status, kind := statusFor(err)
	body := errorJSON{Error: err.Error(), RequestID: applog.RequestID(r.Context())}

	var verr *core.ValidationError
	if errors.As(err, &verr) {
		body.Field = verr.Field
	}
	if status >= http.StatusInternalServerError {
		s.slogger.LogError(r.Context(), "Request failed", err, kind, op,
			applog.NewFields().WithHTTPRequest(r.Method, r.URL.Path, "", "", ""))
		if status != http.StatusBadGateway {
			body.Error = "internal error"
		}
	}
	writeJSON(w, status, body)
}
