// Package server exposes the planner over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/lectio-ai/lectio/pkg/models"
)

const shutdownTimeout = 5 * time.Second

// Default audience for /v1/readings when a parameter is omitted.
const (
	DefaultAgeGroup = models.AgeAdult
	DefaultGender   = models.GenderAll
)

// Planner is the behavior the server needs from planner.Planner.
type Planner interface {
	GenerateReadings(ctx context.Context, ageGroup, gender string) []models.ReadingEntry
	Stats() models.PlannerStats
	CacheStats(ctx context.Context) (models.CacheStats, error)
}

// StatsResponse is the body of GET /v1/stats.
type StatsResponse struct {
	Cache   models.CacheStats   `json:"cache"`
	Planner models.PlannerStats `json:"planner"`
}

// Server is the Lectio HTTP API.
type Server struct {
	listen  string
	planner Planner
	clock   clockwork.Clock
	logger  *zap.Logger
	router  chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithClock sets the clock used to compute week numbers.
func WithClock(clock clockwork.Clock) Option {
	return func(s *Server) { s.clock = clock }
}

// New creates a Server with all routes registered.
func New(listen string, p Planner, logger *zap.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		listen:  listen,
		planner: p,
		clock:   clockwork.NewRealClock(),
		logger:  logger,
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/readings", s.handleReadings)
		r.Get("/stats", s.handleStats)
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSONError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe starts the server with graceful shutdown support.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.listen)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.listen, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is canceled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("lectio listening", zap.String("addr", ln.Addr().String()))
		errCh <- srv.Serve(ln)
	}()

	select {
	case <-ctx.Done():
		shutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		<-errCh
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReadings(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	ageGroup := q.Get("age_group")
	if ageGroup == "" {
		ageGroup = DefaultAgeGroup
	}
	gender := q.Get("gender")
	if gender == "" {
		gender = DefaultGender
	}

	readings := s.planner.GenerateReadings(r.Context(), ageGroup, gender)
	writeJSON(w, http.StatusOK, models.ReadingPlan{
		Week:     models.WeekNumber(s.clock.Now()),
		AgeGroup: ageGroup,
		Gender:   gender,
		Readings: readings,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	cacheStats, err := s.planner.CacheStats(r.Context())
	if err != nil {
		s.logger.Error("cache stats failed", zap.Error(err))
		writeJSONError(w, http.StatusInternalServerError, "cache stats unavailable")
		return
	}
	writeJSON(w, http.StatusOK, StatsResponse{
		Cache:   cacheStats,
		Planner: s.planner.Stats(),
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			s.logger.Info("request",
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)))
		}()
		next.ServeHTTP(ww, r)
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	fmt.Fprintf(w, `{"error":{"message":%q,"type":"lectio_error","code":%d}}`, message, code)
}
