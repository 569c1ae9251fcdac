package app

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"
)

const defaultShutdownTimeout = 10 * time.Second

// Start serves HTTP and returns a channel that is closed once a termination
// signal arrives and the drain period has passed. /health answers 503 during
// the drain so the load balancer stops routing new requests first.
func (a *App) Start() <-chan struct{} {
	terminated := make(chan struct{})

	go func() {
		slog.Info("http server listening", "address", a.httpServer.Addr)

		if err := a.httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			slog.Error("failed to listen and serve http server", "error", err)
			os.Exit(1)
		}
	}()

	go func() {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
		defer stop()
		<-ctx.Done()

		a.ready.Store(false)
		drain := a.config.GetSecond("app.server.shutdown_drain_seconds")
		slog.Info("termination signal received, draining", "drain", drain.String())
		time.Sleep(drain)

		close(terminated)
	}()

	return terminated
}

// ShutdownTimeout bounds Stop, read from app.server.shutdown_timeout_seconds.
func (a *App) ShutdownTimeout() time.Duration {
	if d := a.config.GetSecond("app.server.shutdown_timeout_seconds"); d > 0 {
		return d
	}
	return defaultShutdownTimeout
}

// Serve runs the HTTP server on l. Tests use it with an ephemeral listener.
func (a *App) Serve(l net.Listener) <-chan error {
	errChan := make(chan error, 1)

	go func() {
		errChan <- a.httpServer.Serve(l)
		close(errChan)
	}()

	return errChan
}

// Stop finishes in-flight requests, cancels background consumers and waits
// for them, then releases resources in reverse registration order.
func (a *App) Stop(ctx context.Context) {
	a.ready.Store(false)

	if err := a.httpServer.Shutdown(ctx); err != nil {
		slog.ErrorContext(ctx, "failed to close resources", "name", "HTTP Server", "error", err)
	}

	if a.cancel != nil {
		a.cancel()
	}
	if err := a.goroutine.Wait(); err != nil {
		slog.ErrorContext(ctx, "background workers returned errors", "error", err)
	}

	for _, c := range slices.Backward(a.closers) {
		if err := c.fn(ctx); err != nil {
			slog.ErrorContext(ctx, "failed to close resources", "name", c.name, "error", err)
		}
	}

	slog.InfoContext(ctx, "application stopped")
}
