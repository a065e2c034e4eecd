// Package server assembles the HTTP API and owns the listener lifecycle.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
)

// Server timeouts.
const (
	ReadHeaderTimeout = 5 * time.Second
	ReadTimeout       = 30 * time.Second
	WriteTimeout      = 30 * time.Second
	IdleTimeout       = 2 * time.Minute
)

// Server is a running HTTP server. It is the only handle to the listener:
// callers stop it through Shutdown or by canceling the context given to Start.
type Server struct {
	srv      *http.Server
	listener net.Listener
	grp      *errgroup.Group
	cancel   context.CancelFunc
}

// Start listens on addr and serves handler until ctx is canceled or Shutdown
// is called. Use "127.0.0.1:0" for a random port.
func Start(ctx context.Context, addr string, handler http.Handler, shutdownTimeout time.Duration, logger *slog.Logger) (*Server, error) {
	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	grp, ctx := errgroup.WithContext(ctx)
	s := &Server{
		srv: &http.Server{
			Handler:           handler,
			ReadHeaderTimeout: ReadHeaderTimeout,
			ReadTimeout:       ReadTimeout,
			WriteTimeout:      WriteTimeout,
			IdleTimeout:       IdleTimeout,
			ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelError),
		},
		listener: listener,
		grp:      grp,
		cancel:   cancel,
	}

	grp.Go(func() error {
		err := s.srv.Serve(listener)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})

	grp.Go(func() error {
		<-ctx.Done()
		logger.InfoContext(ctx, "shutting down", slog.String("address", s.Addr()))
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		return s.srv.Shutdown(shutdownCtx)
	})

	logger.InfoContext(ctx, "listening", slog.String("address", s.Addr()))
	return s, nil
}

// Addr is the address the server is bound to.
func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

// Wait blocks until the server has stopped and returns the first error.
func (s *Server) Wait() error {
	return s.grp.Wait()
}

// Shutdown stops accepting connections, drains in-flight requests and waits
// for the server to stop.
func (s *Server) Shutdown() error {
	s.cancel()
	return s.Wait()
}
