package http

import (
	"net/http"

	applog "accounting/internal/log"
)

func (s *Server) handleListShopping(w http.ResponseWriter, r *http.Request) {
	items, err := s.ledger.ListShoppingItems(r.Context())
	if err != nil {
		s.writeError(w, r, applog.OpList, err)
		return
	}
	out := make([]shoppingItemJSON, 0, len(items))
	for _, it := range items {
		out = append(out, toShoppingItemJSON(it))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateShopping(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		s.writeError(w, r, applog.OpCreate, invalidBody(err))
		return
	}
	item, err := s.ledger.AddShoppingItem(r.Context(), p.Get("name"), p.Get("price"))
	if err != nil {
		s.writeError(w, r, applog.OpCreate, err)
		return
	}
	writeJSON(w, http.StatusCreated, toShoppingItemJSON(item))
}

func (s *Server) handleDeleteShopping(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.RemoveShoppingItem(r.Context(), r.PathValue("name")); err != nil {
		s.writeError(w, r, applog.OpDelete, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handlePurchase moves a pending item into the ledger as a Shopping
// transaction and returns that transaction.
func (s *Server) handlePurchase(w http.ResponseWriter, r *http.Request) {
	t, err := s.ledger.MarkPurchased(r.Context(), r.PathValue("name"))
	if err != nil {
		s.writeError(w, r, applog.OpPurchase, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTransactionJSON(t))
}
