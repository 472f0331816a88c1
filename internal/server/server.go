package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/yigit/bgrs/internal/bootstrap"
	"github.com/yigit/bgrs/internal/config"
)

// shutdownTimeout bounds the graceful stop of the ops HTTP server
const shutdownTimeout = 10 * time.Second

// Server holds the state of the BGRS listener and the optional ops API.
type Server struct {
	config *config.Config
	deps   *bootstrap.Dependencies
	router *gin.Engine
	logger zerolog.Logger
}

// NewServer creates and initializes a new server instance by calling bootstrap functions.
func NewServer(opts bootstrap.Options) (*Server, error) {
	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to load config or setup logger: %w", err)
	}

	deps, err := bootstrap.BuildDependencies(cfg, lgr)
	if err != nil {
		return nil, fmt.Errorf("failed to setup dependencies: %w", err)
	}

	if err := bootstrap.SetupCatalog(context.Background(), cfg, deps, lgr); err != nil {
		return nil, fmt.Errorf("failed to load course catalog: %w", err)
	}

	return New(cfg, deps, lgr), nil
}

// New assembles a server from already built dependencies
func New(cfg *config.Config, deps *bootstrap.Dependencies, lgr zerolog.Logger) *Server {
	s := &Server{
		config: cfg,
		deps:   deps,
		logger: lgr,
	}
	if cfg.Ops.Enabled {
		s.router = bootstrap.SetupRouter(cfg, deps, lgr)
	}
	return s
}

// Run listens on the configured address and serves until SIGINT or SIGTERM.
func (s *Server) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", s.config.ServerAddress())
	if err != nil {
		return fmt.Errorf("error starting server: %w", err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts BGRS connections on ln and runs the ops API until ctx is done. It
// closes ln before returning.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.deps.Hub.Run(ctx)
		return nil
	})

	g.Go(func() error {
		return s.acceptLoop(ctx, ln)
	})

	g.Go(func() error {
		<-ctx.Done()
		s.logger.Info().Msg("Shutting down BGRS listener...")
		return ln.Close()
	})

	if s.router != nil {
		httpServer := &http.Server{
			Addr:         s.config.OpsAddress(),
			Handler:      s.router,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  120 * time.Second,
		}
		g.Go(func() error {
			s.logger.Info().Str("addr", httpServer.Addr).Msg("Ops HTTP server listening")
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("ops server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				s.logger.Error().Err(err).Msg("Ops HTTP server shutdown error")
				return err
			}
			s.logger.Info().Msg("Ops HTTP server gracefully stopped.")
			return nil
		})
	}

	err := g.Wait()
	s.logger.Info().Msg("Server shutdown process complete.")
	return err
}

// acceptLoop hands every accepted connection to the hub until the listener closes
func (s *Server) acceptLoop(ctx context.Context, ln net.Listener) error {
	s.logger.Info().Str("addr", ln.Addr().String()).Msg("BGRS server listening")
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				s.logger.Warn().Err(err).Msg("Temporary accept error")
				continue
			}
			return fmt.Errorf("accept: %w", err)
		}
		if !s.deps.Hub.Attach(conn) {
			return nil
		}
	}
}
