package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hrygo/agenda/internal/profile"
	"github.com/hrygo/agenda/plugin/ai"
	"github.com/hrygo/agenda/plugin/ai/cache"
	"github.com/hrygo/agenda/plugin/ai/event"
	"github.com/hrygo/agenda/plugin/ai/timeout"
	"github.com/hrygo/agenda/plugin/caldav"
	"github.com/hrygo/agenda/server/internal/observability"
	apiv1 "github.com/hrygo/agenda/server/router/api/v1"
	"github.com/hrygo/agenda/store"
)

// Server is the agenda HTTP server.
type Server struct {
	Profile *profile.Profile
	Store   *store.Store

	echoServer *echo.Echo
	registry   *prometheus.Registry
	cache      *cache.Service
}

// NewServer wires the extractor, CalDAV publisher and API routes.
// A misconfigured LLM does not prevent startup; parsing reports it instead.
func NewServer(ctx context.Context, profile *profile.Profile, store *store.Store) (*Server, error) {
	s := &Server{
		Store:    store,
		Profile:  profile,
		registry: prometheus.NewRegistry(),
	}
	s.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	echoServer := echo.New()
	echoServer.Debug = profile.IsDev()
	echoServer.HideBanner = true
	echoServer.HidePort = true
	echoServer.Use(middleware.Recover())
	echoServer.Use(middleware.RequestID())
	s.echoServer = echoServer

	echoServer.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "Service ready.")
	})
	echoServer.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))

	s.cache = cache.NewService(cache.DefaultServiceConfig())
	extractor, err := event.NewFromConfig(ai.NewConfigFromProfile(profile), s.cache, 0)
	if err != nil {
		slog.Warn("event extraction disabled", slog.String("error", err.Error()))
	}

	apiV1Service := apiv1.NewAPIV1Service(profile, store, extractor, observability.NewMetrics(s.registry))
	if profile.IsCalDAVEnabled() {
		publisher, err := caldav.NewPublisher(profile.CalDAVURL, profile.CalDAVUser, profile.CalDAVPassword, profile.CalDAVPath, nil)
		if err != nil {
			return nil, errors.Wrap(err, "failed to create caldav publisher")
		}
		apiV1Service.Publisher = publisher
	}
	apiV1Service.RegisterRoutes(echoServer)
	go apiV1Service.RunCleanup(ctx)

	return s, nil
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.echoServer
}

// Start listens on the configured address and serves until Shutdown.
func (s *Server) Start(ctx context.Context) error {
	address := fmt.Sprintf("%s:%d", s.Profile.Addr, s.Profile.Port)
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return errors.Wrap(err, "failed to listen")
	}
	s.echoServer.Listener = listener

	go func() {
		if err := s.echoServer.Start(address); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("failed to start echo server", slog.String("error", err.Error()))
		}
	}()
	slog.Info("server started", slog.String("address", listener.Addr().String()))
	return nil
}

// Shutdown stops the HTTP server and closes the store.
func (s *Server) Shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, timeout.ShutdownTimeout)
	defer cancel()

	slog.Info("server shutting down")
	if err := s.echoServer.Shutdown(ctx); err != nil {
		slog.Error("failed to shutdown server", slog.String("error", err.Error()))
	}
	s.cache.Close()
	if err := s.Store.Close(); err != nil {
		slog.Error("failed to close database", slog.String("error", err.Error()))
	}
	slog.Info("agenda stopped properly")
}
