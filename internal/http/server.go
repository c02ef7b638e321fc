package http

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	applog "accounting/internal/log"
	"accounting/internal/services"
)

// Pinger is checked by /readyz.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the services the API exposes. Reconciler may be nil when no
// wishlist source is configured; the wishlist routes then answer 503.
type Deps struct {
	Ledger     *services.LedgerService
	Scheduler  *services.ResetScheduler
	Reconciler *services.WishlistReconciler
	DB         Pinger
	Logger     *applog.Logger
}

type Server struct {
	http.Server
	ledger     *services.LedgerService
	scheduler  *services.ResetScheduler
	reconciler *services.WishlistReconciler
	db         Pinger

	logger      *applog.Logger
	slogger     *applog.StructuredLogger
	rateLimiter *rateLimiter
	clock       func() time.Time
	started     time.Time

	suspicious   int64
	shutdownOnce sync.Once
}

// NewServer wires routes and middleware, returning a ready-to-run server.
func NewServer(addr string, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	logger = logger.WithComponent(applog.ComponentHTTP)

	s := &Server{
		ledger:      deps.Ledger,
		scheduler:   deps.Scheduler,
		reconciler:  deps.Reconciler,
		db:          deps.DB,
		logger:      logger,
		slogger:     applog.NewStructuredLogger(logger),
		rateLimiter: newRateLimiter(60, time.Minute),
		clock:       time.Now,
		started:     time.Now(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /transactions", s.handleListTransactions)
	mux.HandleFunc("POST /transactions", s.handleCreateTransaction)
	mux.HandleFunc("DELETE /transactions/{id}", s.handleDeleteTransaction)
	mux.HandleFunc("GET /summary", s.handleSummary)

	mux.HandleFunc("GET /shopping", s.handleListShopping)
	mux.HandleFunc("POST /shopping", s.handleCreateShopping)
	mux.HandleFunc("DELETE /shopping/{name}", s.handleDeleteShopping)
	mux.HandleFunc("POST /shopping/{name}/purchase", s.handlePurchase)

	mux.HandleFunc("GET /settings/{name}", s.handleGetSetting)
	mux.HandleFunc("PUT /settings/{name}", s.handlePutSetting)

	mux.HandleFunc("GET /wishlist/account", s.handleGetWishlistAccount)
	mux.HandleFunc("PUT /wishlist/account", s.handleLinkWishlistAccount)
	mux.HandleFunc("DELETE /wishlist/account", s.handleUnlinkWishlistAccount)
	mux.HandleFunc("POST /wishlist/merge", s.handleWishlistMerge)
	mux.HandleFunc("POST /wishlist/refresh", s.handleWishlistRefresh)

	mux.HandleFunc("GET /reset", s.handleResetState)
	mux.HandleFunc("POST /reset", s.handleReset)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           applog.Middleware(logger)(s.withMiddleware(mux)),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
	return s
}

// Shutdown stops the rate limiter and drains the HTTP server. Safe to call
// more than once.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

// withMiddleware adds request IDs, security headers, rate limiting for
// mutating methods and structured request logs.
func (s *Server) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := extractClientIP(r)
		requestID := generateRequestID(r.Header.Get("X-Request-ID"))

		ctx := applog.WithRequestID(r.Context(), requestID)
		r = r.WithContext(ctx)
		w.Header().Set("X-Request-ID", requestID)
		setSecurityHeaders(w.Header())

		s.slogger.LogHTTPStart(ctx, r, clientIP)
		if isSuspicious(r, &s.suspicious) {
			s.logger.WarnContext(ctx, "Suspicious request",
				applog.FieldComponent, applog.ComponentSecurity,
				applog.FieldClientIP, clientIP,
				applog.FieldMethod, r.Method,
				applog.FieldPath, r.URL.Path)
		}

		if r.Method != http.MethodGet && r.Method != http.MethodHead && !s.rateLimiter.allow(clientIP) {
			s.logger.WarnContext(ctx, "Rate limit exceeded",
				applog.FieldComponent, applog.ComponentRateLimit,
				applog.FieldClientIP, clientIP,
				applog.FieldMethod, r.Method,
				applog.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeJSON(w, http.StatusTooManyRequests, errorJSON{Error: "rate limit exceeded", RequestID: requestID})
			s.slogger.LogHTTPEnd(ctx, r, http.StatusTooManyRequests, time.Since(start).Milliseconds(), clientIP)
			return
		}

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)
		s.slogger.LogHTTPEnd(ctx, r, rw.statusCode, time.Since(start).Milliseconds(), clientIP)
	})
}

// responseWriter captures the status code for logging.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (s *Server) suspiciousCount() int64 {
	return atomic.LoadInt64(&s.suspicious)
}
