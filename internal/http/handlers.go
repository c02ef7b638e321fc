package http

import (
	"context"
	"net/http"
	"time"

	applog "accounting/internal/log"
)

// handleHealth is the liveness check.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": s.clock().UTC().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	})
}

// handleReady checks the database and reports background workers.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := map[string]any{}

	switch {
	case s.db == nil:
		checks["database"] = "not_configured"
		status, httpStatus = "not_ready", http.StatusServiceUnavailable
	default:
		if err := s.db.Ping(ctx); err != nil {
			checks["database"] = "failed: " + err.Error()
			status, httpStatus = "not_ready", http.StatusServiceUnavailable
		} else {
			checks["database"] = "ok"
		}
	}

	if s.scheduler != nil {
		checks["reset_scheduler"] = map[string]any{
			"running": s.scheduler.IsRunning(),
			"state":   s.scheduler.State(s.clock()).String(),
		}
	}
	if s.reconciler != nil {
		checks["wishlist_refresher"] = map[string]any{"running": s.reconciler.IsRunning()}
	}
	checks["rate_limiter"] = map[string]any{
		"active_clients": s.rateLimiter.activeClients(),
		"rejected":       s.rateLimiter.rejected(),
	}
	checks["suspicious_requests"] = s.suspiciousCount()

	writeJSON(w, httpStatus, map[string]any{
		"status":    status,
		"timestamp": s.clock().UTC().Format(time.RFC3339),
		"checks":    checks,
	})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := s.ledger.Summary(r.Context())
	if err != nil {
		s.writeError(w, r, applog.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, toSummaryJSON(sum))
}

func (s *Server) handleGetSetting(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	value, err := s.ledger.GetSetting(r.Context(), name)
	if err != nil {
		s.writeError(w, r, applog.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"name": name, "value": value})
}

func (s *Server) handlePutSetting(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		s.writeError(w, r, applog.OpUpdate, invalidBody(err))
		return
	}
	name := r.PathValue("name")
	value := p.Get("value")
	if err := s.ledger.UpsertSetting(r.Context(), name, value); err != nil {
		s.writeError(w, r, applog.OpUpdate, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"name": name, "value": value})
}

// handleReset runs one reset attempt for the current time. Calling it on a
// day other than the configured one, or twice on the same day, is a no-op
// reported through the status field.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if s.scheduler == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorJSON{Error: "reset scheduler not configured"})
		return
	}
	res, err := s.scheduler.TryReset(r.Context(), s.clock())
	if err != nil {
		s.writeError(w, r, applog.OpReset, err)
		return
	}
	writeJSON(w, http.StatusOK, toResetJSON(res))
}

func (s *Server) handleResetState(w http.ResponseWriter, r *http.Request) {
	if s.scheduler == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorJSON{Error: "reset scheduler not configured"})
		return
	}
	now := s.clock()
	writeJSON(w, http.StatusOK, map[string]any{
		"state":   s.scheduler.State(now).String(),
		"day":     now.Format(time.DateOnly),
		"running": s.scheduler.IsRunning(),
	})
}
