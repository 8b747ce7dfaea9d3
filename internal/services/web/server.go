// Package web hosts the calculator web service.
package web

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/louisbranch/calculadora-oposicion/internal/oposicion"
	"github.com/louisbranch/calculadora-oposicion/internal/platform/timeouts"
	"github.com/louisbranch/calculadora-oposicion/internal/services/web/analytics"
	"github.com/louisbranch/calculadora-oposicion/internal/services/web/platform/httpx"
	"github.com/louisbranch/calculadora-oposicion/internal/services/web/platform/i18n"
	"github.com/louisbranch/calculadora-oposicion/internal/services/web/platform/observability"
	"github.com/louisbranch/calculadora-oposicion/internal/services/web/routepath"
	"github.com/louisbranch/calculadora-oposicion/internal/services/web/static"
	"github.com/louisbranch/calculadora-oposicion/internal/services/web/views"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Config defines startup inputs for the web service.
type Config struct {
	HTTPAddr string
	// BaseURL is the path prefix every page lives under.
	BaseURL     string
	AnalyticsID string
	Source      oposicion.Source
	// Runs is optional and adds the last scrape date to the statistics page.
	Runs views.RunSource
	// Registry receives the service metrics. A registry with the Go and
	// process collectors is created when nil.
	Registry *prometheus.Registry
	Logger   *log.Logger
	Now      func() time.Time
}

// Server hosts the web HTTP surface and lifecycle.
type Server struct {
	httpAddr   string
	httpServer *http.Server
}

// NewHandler builds the root handler: the mounted app under the base path,
// the stylesheet, health and metrics endpoints.
func NewHandler(cfg Config) (http.Handler, error) {
	if cfg.Registry == nil {
		cfg.Registry = prometheus.NewRegistry()
		cfg.Registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}

	a, err := NewApp(cfg)
	if err != nil {
		return nil, err
	}
	appHandler, err := a.Mount(AnchorID)
	if err != nil {
		return nil, fmt.Errorf("mount app: %w", err)
	}
	tracker, ok := analytics.FromApp(a)
	if !ok {
		return nil, errors.New("analytics capability is not installed")
	}
	base := a.Navigator().Base()
	staticPrefix := base + routepath.StaticPrefix

	rootMux := http.NewServeMux()
	rootMux.Handle(staticPrefix, http.StripPrefix(staticPrefix, http.FileServer(http.FS(static.FS))))
	readOnly := httpx.AllowMethods(http.MethodGet, http.MethodHead)
	rootMux.Handle(routepath.Health, readOnly(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})))
	rootMux.Handle(routepath.Metrics, readOnly(tracker.MetricsHandler()))
	rootMux.Handle("/", appHandler)

	return httpx.Chain(rootMux,
		httpx.RequestID(),
		httpx.RecoverPanic(cfg.Logger),
		observability.Tracing(nil),
		i18n.Middleware(base),
		observability.RequestLogger(cfg.Logger),
	), nil
}

// NewServer validates config and constructs a web server.
func NewServer(_ context.Context, cfg Config) (*Server, error) {
	httpAddr := strings.TrimSpace(cfg.HTTPAddr)
	if httpAddr == "" {
		return nil, errors.New("http address is required")
	}
	handler, err := NewHandler(cfg)
	if err != nil {
		return nil, fmt.Errorf("compose web handler: %w", err)
	}
	return &Server{
		httpAddr: httpAddr,
		httpServer: &http.Server{
			Addr:              httpAddr,
			Handler:           handler,
			ReadHeaderTimeout: timeouts.ReadHeader,
		},
	}, nil
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	if s == nil {
		return ""
	}
	return s.httpAddr
}

// ListenAndServe serves HTTP traffic until context cancellation or server stop.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s == nil {
		return errors.New("web server is nil")
	}
	if ctx == nil {
		return errors.New("context is required")
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		err := s.httpServer.Shutdown(shutdownCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("shutdown web http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve web http: %w", err)
	}
}

// Close closes open server resources.
func (s *Server) Close() {
	if s == nil || s.httpServer == nil {
		return
	}
	_ = s.httpServer.Close()
}
