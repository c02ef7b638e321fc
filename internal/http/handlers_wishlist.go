package http

import (
	"net/http"
	"strconv"

	"accounting/internal/core"
	applog "accounting/internal/log"
)

func (s *Server) handleGetWishlistAccount(w http.ResponseWriter, r *http.Request) {
	email, linked, err := s.ledger.WishlistLinked(r.Context())
	if err != nil {
		s.writeError(w, r, applog.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"linked": linked, "email": email})
}

// handleLinkWishlistAccount stores the wishlist credentials. The password is
// never echoed back.
func (s *Server) handleLinkWishlistAccount(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		s.writeError(w, r, applog.OpUpdate, invalidBody(err))
		return
	}
	creds := core.Credentials{Email: p.Get("email"), Password: p.Get("password")}
	if err := s.ledger.LinkWishlistAccount(r.Context(), creds); err != nil {
		s.writeError(w, r, applog.OpUpdate, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"linked": true, "email": creds.Email})
}

func (s *Server) handleUnlinkWishlistAccount(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.UnlinkWishlistAccount(r.Context()); err != nil {
		s.writeError(w, r, applog.OpDelete, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleWishlistMerge merges a caller-supplied batch, either a bare JSON
// array or {"items": [...]}.
func (s *Server) handleWishlistMerge(w http.ResponseWriter, r *http.Request) {
	if s.reconciler == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorJSON{Error: "wishlist not configured"})
		return
	}
	p := NewRequestBodyParser(r)
	var items []core.WishlistItem
	if err := p.Decode(&items); err != nil {
		var wrapped struct {
			Items []core.WishlistItem `json:"items"`
		}
		if err := p.Decode(&wrapped); err != nil {
			s.writeError(w, r, applog.OpMerge, err)
			return
		}
		items = wrapped.Items
	}

	res, err := s.reconciler.Merge(r.Context(), items)
	if err != nil {
		s.writeError(w, r, applog.OpMerge, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleWishlistRefresh starts a background refresh and answers 202. With
// ?wait=true it refreshes inline and returns the merge counts.
func (s *Server) handleWishlistRefresh(w http.ResponseWriter, r *http.Request) {
	if s.reconciler == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorJSON{Error: "wishlist not configured"})
		return
	}
	if wait, _ := strconv.ParseBool(r.URL.Query().Get("wait")); wait {
		res, err := s.reconciler.Refresh(r.Context())
		if err != nil {
			s.writeError(w, r, applog.OpRefresh, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
		return
	}

	logger := s.logger.WithComponent(applog.ComponentWishlist)
	s.reconciler.RefreshAsync(r.Context(), func(res core.MergeResult, err error) {
		if err != nil {
			return
		}
		logger.Info("Wishlist refresh finished", applog.NewFields().
			WithOperation(applog.OpRefresh).
			WithMerge(res.Inserted, res.Updated, res.Skipped).
			ToSlice()...)
	})
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "refreshing"})
}
