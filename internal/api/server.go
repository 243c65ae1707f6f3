// Package api exposes the assistant over HTTP for the website chat widget.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"bailey-assistant/internal/assistant/chat"
	"bailey-assistant/internal/assistant/settings"
	"bailey-assistant/internal/common/config"
	"bailey-assistant/internal/common/logger"
)

const DefaultMaxBodyBytes int64 = 64 << 10

// Responder is the engine surface the API needs.
type Responder interface {
	GenerateResponse(ctx context.Context, message string, history []chat.Turn, opts chat.Options) chat.GeneratedResponse
	Stream(ctx context.Context, message string, history []chat.Turn, opts chat.Options) <-chan chat.Chunk
}

// ReadinessChecker reports whether backing services are reachable.
type ReadinessChecker interface {
	Check(ctx context.Context) error
}

// Server routes chat, admin and health requests.
type Server struct {
	router    *mux.Router
	handler   http.Handler
	engine    Responder
	settings  settings.Store
	readiness ReadinessChecker
	config    config.HTTPConfig
	logger    logger.Logger
	server    *http.Server
}

func NewServer(cfg config.HTTPConfig, engine Responder, store settings.Store, readiness ReadinessChecker, log logger.Logger) *Server {
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if cfg.Address == "" {
		cfg.Address = ":8080"
	}

	s := &Server{
		router:    mux.NewRouter(),
		engine:    engine,
		settings:  store,
		readiness: readiness,
		config:    cfg,
		logger:    log.WithFields(map[string]interface{}{"component": "api"}),
	}
	s.setupRoutes()

	s.handler = s.router
	if len(cfg.AllowedOrigins) > 0 {
		c := cors.New(cors.Options{
			AllowedOrigins: cfg.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Content-Type", "Accept"},
			MaxAge:         600,
		})
		s.handler = c.Handler(s.router)
	}

	s.server = &http.Server{
		Addr:              cfg.Address,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/chat", s.handleChat).Methods(http.MethodPost)
	api.HandleFunc("/chat/stream", s.handleChatStream).Methods(http.MethodPost)

	admin := api.PathPrefix("/admin").Subrouter()
	admin.HandleFunc("/settings/invalidate", s.handleInvalidateSettings).Methods(http.MethodPost)

	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/ready", s.handleReady).Methods(http.MethodGet)
	s.router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
}

// Handler returns the routed handler with CORS applied.
func (s *Server) Handler() http.Handler { return s.handler }

// Start blocks serving until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("starting chat api", map[string]interface{}{"address": s.config.Address})
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("stopping chat api", nil)
	return s.server.Shutdown(ctx)
}
