package http

import (
	"errors"
	"net/http"

	"accounting/internal/core"
	applog "accounting/internal/log"
	"accounting/internal/services"
)

// invalidBody reports an undecodable request body as a validation failure.
func invalidBody(err error) error {
	var verr *core.ValidationError
	if errors.As(err, &verr) {
		return err
	}
	return core.Invalid("body", "malformed request body")
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := s.ledger.ListTransactions(r.Context())
	if err != nil {
		s.writeError(w, r, applog.OpList, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionsJSON(txs))
}

// handleCreateTransaction accepts date, description, amount and kind. The
// date defaults to now.
func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		s.writeError(w, r, applog.OpCreate, invalidBody(err))
		return
	}
	date, err := ParseDate(p.Get("date"), s.clock())
	if err != nil {
		s.writeError(w, r, applog.OpCreate, err)
		return
	}

	t, err := s.ledger.AddTransaction(r.Context(), services.NewTransaction{
		Date:        date,
		Description: p.Get("description"),
		Amount:      p.Get("amount"),
		Kind:        p.Get("kind"),
	})
	if err != nil {
		s.writeError(w, r, applog.OpCreate, err)
		return
	}
	s.slogger.LogTransactionCreated(r.Context(), t.ID, t.Description, core.FormatAmount(t.Amount), string(t.Kind))
	writeJSON(w, http.StatusCreated, toTransactionJSON(t))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, applog.OpDelete, err)
		return
	}
	if err := s.ledger.DeleteTransaction(r.Context(), id); err != nil {
		s.writeError(w, r, applog.OpDelete, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
