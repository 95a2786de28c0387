// Package http serves the engine's operations as a JSON API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"pursetto/internal/config"
	"pursetto/internal/core"
	"pursetto/internal/log"
	"pursetto/internal/middleware/trace"
	"pursetto/internal/obs"
	"pursetto/internal/services"
)

type Server struct {
	http.Server

	engine      *services.Engine
	feed        *Feed
	rateLimiter *rateLimiter
	logger      *log.Logger
	periodMode  core.PeriodMode

	shutdownOnce sync.Once
}

// NewServer wires the engine behind the JSON routes. The returned
// server owns the announcement feed that must be installed as the
// engine's notification sink.
func NewServer(cfg *config.Config, engine *services.Engine, feed *Feed, logger *log.Logger) *Server {
	s := &Server{
		engine:      engine,
		feed:        feed,
		rateLimiter: newRateLimiter(),
		logger:      logger.WithComponent(log.ComponentHTTP),
		periodMode:  core.PeriodMode(cfg.PeriodMode),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.Handle("/metrics", obs.Handler())

	mux.HandleFunc("/api/period", s.handlePeriod)
	mux.HandleFunc("/api/period/current", s.handleCurrentPeriod)
	mux.HandleFunc("/api/expense", s.handleExpense)
	mux.HandleFunc("/api/no-spend", s.handleNoSpend)
	mux.HandleFunc("/api/period/clear", s.handleClearPeriod)
	mux.HandleFunc("/api/navigate", s.handleNavigate)
	mux.HandleFunc("/api/profile", s.handleProfile)
	mux.HandleFunc("/api/allowance", s.handleAllowance)
	mux.HandleFunc("/api/goal", s.handleActivateGoal)
	mux.HandleFunc("/api/goals", s.handleGoals)
	mux.HandleFunc("/api/favourite", s.handleFavourite)
	mux.HandleFunc("/api/favourites", s.handleFavourites)
	mux.HandleFunc("/api/favourite/reify", s.handleReifyFavourite)
	mux.HandleFunc("/api/notifications", s.handleNotifications)
	mux.HandleFunc("/api/reset", s.handleReset)

	traceMW := trace.NewMiddleware(extractClientIP)
	handler := log.Middleware(s.logger)(
		traceMW.Middleware(
			securityHeaders(
				s.rateLimitMiddleware(
					obs.Instrument(mux)))))

	s.Server = http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// rateLimitMiddleware rejects clients over the per-IP budget with 429.
func (s *Server) rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientIP := extractClientIP(r)
		if !s.rateLimiter.allow(clientIP) {
			s.logger.Warn("Rate limit exceeded", log.FieldClientIP, clientIP, log.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
