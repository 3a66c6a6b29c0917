package rest

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"github.com/dmitrijs2005/bioguard/internal/logging"
)

const shutdownTimeout = 10 * time.Second

type Server struct {
	address string
	echo    *echo.Echo
	logger  logging.Logger
}

// NewServer builds the echo instance with the middleware chain and the
// handler's routes. bodyLimit caps request bodies ("12M" style); empty
// means no limit.
func NewServer(address string, h *Handler, logger logging.Logger, bodyLimit string) *Server {
	logger = logger.With("module", "http_server")

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = newErrorHandler(logger)

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(otelecho.Middleware("bioguard"))
	e.Use(RequestLogger(logger))
	e.Use(middleware.CORS())
	if bodyLimit != "" {
		e.Use(middleware.BodyLimit(bodyLimit))
	}

	h.RegisterRoutes(e)

	return &Server{address: address, echo: e, logger: logger}
}

// Handler exposes the router, mostly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info(ctx, "Starting HTTP server", "address", s.address)
		if err := s.echo.Start(s.address); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info(ctx, "Stopping HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.echo.Shutdown(shutdownCtx)
}
