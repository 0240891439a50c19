// Package health serves the liveness endpoint.
package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

const checkTimeout = 5 * time.Second

// Check reports the state of one dependency. A non-nil error marks the
// service degraded; detail is rendered either way.
type Check struct {
	Name string
	Run  func(ctx context.Context) (detail any, err error)
}

type checkResult struct {
	Status string `json:"status"`
	Detail any    `json:"detail,omitempty"`
	Error  string `json:"error,omitempty"`
}

type report struct {
	Status string                 `json:"status"`
	Checks map[string]checkResult `json:"checks"`
}

// Server exposes GET /healthz. An empty address disables it.
type Server struct {
	addr   string
	checks []Check
	logger *zap.Logger
	srv    *http.Server
}

func NewServer(addr string, logger *zap.Logger, checks ...Check) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{addr: addr, checks: checks, logger: logger}
	if addr != "" {
		s.srv = &http.Server{
			Addr:              addr,
			Handler:           s.Handler(),
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      10 * time.Second,
		}
	}
	return s
}

// Handler returns the router. It is usable without starting the server.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.Recoverer)
	r.Method(http.MethodGet, "/healthz", otelhttp.NewHandler(http.HandlerFunc(s.health), "healthz"))
	return r
}

// Start listens in the background.
func (s *Server) Start() {
	if s.srv == nil {
		s.logger.Info("Health endpoint disabled")
		return
	}

	go func() {
		s.logger.Info("Health endpoint listening", zap.String("addr", s.addr))
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Health endpoint failed", zap.Error(err))
		}
	}()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
	defer cancel()

	rep := report{Status: "ok", Checks: make(map[string]checkResult, len(s.checks))}
	statusCode := http.StatusOK

	for _, check := range s.checks {
		detail, err := check.Run(ctx)
		result := checkResult{Status: "ok", Detail: detail}
		if err != nil {
			s.logger.Warn("Health check failed", zap.String("check", check.Name), zap.Error(err))
			result.Status = "failing"
			result.Error = err.Error()
			rep.Status = "degraded"
			statusCode = http.StatusServiceUnavailable
		}
		rep.Checks[check.Name] = result
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(rep); err != nil {
		s.logger.Debug("Failed to write health report", zap.Error(err))
	}
}
