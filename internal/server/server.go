// Package server exposes the formatter over HTTP and WebSocket.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/haytac/message-formatter/internal/formatter"
	"github.com/haytac/message-formatter/internal/metrics"
	"github.com/haytac/message-formatter/pkg/interfaces"
)

// Config holds the service settings that are not part of the catalog.
type Config struct {
	DefaultLocation formatter.Location
	AllowedOrigins  []string
	Sanitize        bool
	MaxMessageBytes int64
	RateLimitRPS    float64
	RateLimitBurst  int
}

// FormatRequest is the body of POST /api/format and of every WebSocket frame.
type FormatRequest struct {
	Text     string `json:"text"`
	Location string `json:"location,omitempty"`
}

// FormatResponse carries either the rendered fragment or an error.
type FormatResponse struct {
	HTML  string `json:"html,omitempty"`
	Error string `json:"error,omitempty"`
}

// Server routes requests to the formatter.
type Server struct {
	formatter interfaces.MessageFormatter
	contexts  interfaces.ContextProvider
	cfg       Config
	policy    *bluemonday.Policy
	limiter   *clientLimiter
	origins   *originChecker
	upgrader  websocket.Upgrader
	logger    zerolog.Logger
	router    chi.Router
}

// errBadRequest marks failures caused by the request rather than the catalog.
var errBadRequest = errors.New("bad request")

// New creates a Server and builds its routes.
func New(f interfaces.MessageFormatter, contexts interfaces.ContextProvider, cfg Config, logger zerolog.Logger) *Server {
	if cfg.MaxMessageBytes <= 0 {
		cfg.MaxMessageBytes = 64 * 1024
	}
	s := &Server{
		formatter: f,
		contexts:  contexts,
		cfg:       cfg,
		limiter:   newClientLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
		origins:   newOriginChecker(cfg.AllowedOrigins, logger),
		logger:    logger,
	}
	if cfg.Sanitize {
		s.policy = OutputPolicy()
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.origins.check,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(s.logger))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = io.WriteString(w, "ok")
	})
	r.Handle("/metrics", metrics.Handler())
	r.With(s.rateLimit("http")).Post("/api/format", s.handleFormat)
	r.Get("/ws", s.handleWebSocket)
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleFormat(w http.ResponseWriter, r *http.Request) {
	var req FormatRequest
	body := http.MaxBytesReader(w, r.Body, s.cfg.MaxMessageBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, FormatResponse{Error: "invalid request body"})
		return
	}

	out, err := s.format("http", req)
	if err != nil {
		status := http.StatusUnprocessableEntity
		if errors.Is(err, errBadRequest) {
			status = http.StatusBadRequest
		}
		writeJSON(w, status, FormatResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, FormatResponse{HTML: out})
}

// format runs one request through the pipeline and records metrics.
func (s *Server) format(transport string, req FormatRequest) (string, error) {
	loc := s.cfg.DefaultLocation
	if req.Location != "" {
		parsed, err := formatter.ParseLocation(req.Location)
		if err != nil {
			return "", fmt.Errorf("%w: %v", errBadRequest, err)
		}
		loc = parsed
	}

	start := time.Now()
	out, err := s.formatter.Format(req.Text, s.contexts.Context(loc))
	metrics.FormatDuration.WithLabelValues(transport).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.MessagesFormatted.WithLabelValues(transport, "error").Inc()
		s.logger.Error().Err(err).Str("transport", transport).Msg("Failed to format message")
		return "", err
	}
	metrics.MessagesFormatted.WithLabelValues(transport, "ok").Inc()

	if s.policy != nil {
		out = s.policy.Sanitize(out)
	}
	return out, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// requestLogger logs one line per request with zerolog.
func requestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("duration", time.Since(start)).
				Str("remote", r.RemoteAddr).
				Msg("Handled request")
		})
	}
}
