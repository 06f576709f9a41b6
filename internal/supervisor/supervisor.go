// Package supervisor implements the Lifecycle Supervisor: signal-driven
// startup and an ordered, deadline-bounded shutdown across the HTTP server,
// Host Core, Session Manager, and config watcher.
package supervisor

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/MrWong99/mcphost/internal/bridge/session"
	"github.com/MrWong99/mcphost/internal/config"
	"github.com/MrWong99/mcphost/pkg/mcphost"
)

// defaultShutdownTimeout bounds the context Shutdown hands to its teardown
// steps. When it expires, the HTTP server's Shutdown returns the context
// error; nothing force-exits the process.
const defaultShutdownTimeout = 10 * time.Second

// Supervisor owns the process's top-level run/shutdown sequencing, grounded
// on the teacher's cmd/glyphoxa/main.go run() function.
type Supervisor struct {
	HTTPServer      *http.Server
	Host            mcphost.HostAPI
	Sessions        *session.Manager
	Watcher         *config.Watcher // optional; nil when config.Load is one-shot
	ShutdownTimeout time.Duration
}

// New constructs a Supervisor with the documented default shutdown timeout.
func New(httpServer *http.Server, host mcphost.HostAPI, sessions *session.Manager, watcher *config.Watcher) *Supervisor {
	return &Supervisor{
		HTTPServer:      httpServer,
		Host:            host,
		Sessions:        sessions,
		Watcher:         watcher,
		ShutdownTimeout: defaultShutdownTimeout,
	}
}

// Run starts the Host Core and HTTP server, then blocks until ctx is
// cancelled (typically by an OS signal via [context/signal.NotifyContext]),
// at which point it performs an ordered shutdown and returns.
func (s *Supervisor) Run(ctx context.Context) error {
	if err := s.Host.Start(ctx); err != nil {
		return err
	}

	serveErr := make(chan error, 1)
	go func() {
		if err := s.HTTPServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
			return
		}
		serveErr <- nil
	}()

	slog.Info("mcphost bridge ready", "addr", s.HTTPServer.Addr)

	select {
	case <-ctx.Done():
		slog.Info("shutdown signal received, stopping")
		return s.Shutdown(context.Background())
	case err := <-serveErr:
		if err != nil {
			slog.Error("http server exited unexpectedly", "err", err)
			_ = s.Shutdown(context.Background())
			return err
		}
		return nil
	}
}

// Shutdown tears down, in order: the config watcher's poll loop, the HTTP
// server (which stops accepting connections and waits for in-flight
// requests; hijacked WebSocket connections are not closed by this step),
// the Host Core, and the Session Manager's sweep timer — all
// bounded by [Supervisor.ShutdownTimeout]. Per spec §7's "start/stop never
// propagate individual failures" policy extended to shutdown, every step
// runs even if an earlier one failed; errors are joined and returned
// together.
func (s *Supervisor) Shutdown(ctx context.Context) error {
	timeout := s.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var errs []error

	if s.Watcher != nil {
		s.Watcher.Stop()
	}

	if err := s.HTTPServer.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}

	if err := s.Host.Stop(ctx); err != nil {
		errs = append(errs, err)
	}

	s.Sessions.Stop()

	if len(errs) == 0 {
		return nil
	}
	return errors.Join(errs...)
}
