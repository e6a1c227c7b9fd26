// Package server exposes the boards and the chat proxy over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sadopc/studyboard/internal/chat"
	"github.com/sadopc/studyboard/internal/poller"
	"github.com/sadopc/studyboard/internal/store"
	"github.com/sadopc/studyboard/internal/weekly"
)

type Fetcher interface {
	Fetch(ctx context.Context, pageToken string) (*chat.Page, error)
}

// ViewerStore backs /api/viewers/{name}. *store.Store implements it.
type ViewerStore interface {
	GetViewer(name string) (*store.Viewer, error)
	ListVisitStamps(viewer string) ([]string, error)
	ListSessions(f store.SessionFilter) ([]store.Session, error)
}

// ChatStatus reports the state of the chat poller.
type ChatStatus interface {
	Status() poller.Status
}

type Server struct {
	profiles weekly.Lister
	fetcher  Fetcher
	viewers  ViewerStore
	chat     ChatStatus
	loc      *time.Location
	log      *zap.Logger
	now      func() time.Time

	gatherer    prometheus.Gatherer
	metricsUser string
	metricsPass string
	visitors    *visitors
	trustProxy  bool
}

type Option func(*Server)

// WithMetricsAuth protects /metrics with HTTP basic auth.
func WithMetricsAuth(user, pass string) Option {
	return func(s *Server) {
		s.metricsUser = user
		s.metricsPass = pass
	}
}

// WithGatherer sets the registry served on /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) { s.gatherer = g }
}

// WithRateLimit sets the per-client request rate.
func WithRateLimit(r rate.Limit, burst int) Option {
	return func(s *Server) { s.visitors = newVisitors(r, burst) }
}

// WithViewers enables the per-viewer history endpoint.
func WithViewers(v ViewerStore) Option {
	return func(s *Server) { s.viewers = v }
}

// WithChatStatus adds the poller state to /health.
func WithChatStatus(c ChatStatus) Option {
	return func(s *Server) { s.chat = c }
}

// WithTrustedProxy keys rate limiting on X-Forwarded-For. Only set it when a
// proxy in front of the server overwrites that header.
func WithTrustedProxy() Option {
	return func(s *Server) { s.trustProxy = true }
}

func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		if now != nil {
			s.now = now
		}
	}
}

// New builds a server. fetcher may be nil when no video is configured.
func New(profiles weekly.Lister, fetcher Fetcher, loc *time.Location, log *zap.Logger, opts ...Option) *Server {
	if loc == nil {
		loc = time.Local
	}
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		profiles: profiles,
		fetcher:  fetcher,
		loc:      loc,
		log:      log,
		now:      time.Now,
		gatherer: prometheus.DefaultGatherer,
		visitors: newVisitors(5, 30),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(s.monitor, s.rateLimit)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/youtube", s.handleYouTube).Methods(http.MethodGet)
	api.HandleFunc("/weekly", s.handleWeekly).Methods(http.MethodGet)
	api.HandleFunc("/visit-stamps", s.handleVisitStamps).Methods(http.MethodGet)
	api.HandleFunc("/leaderboard", s.handleLeaderboard).Methods(http.MethodGet)
	if s.viewers != nil {
		api.HandleFunc("/viewers/{name}", s.handleViewer).Methods(http.MethodGet)
	}

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	var metrics http.Handler = promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})
	if s.metricsUser != "" {
		metrics = basicAuth(s.metricsUser, s.metricsPass, metrics)
	}
	r.Handle("/metrics", metrics)

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)
	recovery := handlers.RecoveryHandler(handlers.RecoveryLogger(zap.NewStdLog(s.log)), handlers.PrintRecoveryStack(true))
	return recovery(cors(r))
}

// Run serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go s.visitors.cleanup(ctx, time.Minute, 3*time.Minute)

	errc := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.log.Info("http server stopped")
	return nil
}

func (s *Server) today() time.Time {
	return weekly.CivilDate(s.now(), s.loc)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
