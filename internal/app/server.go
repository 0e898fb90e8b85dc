package app

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
)

// Start serves HTTP on the configured address. The returned channel is
// closed once SIGINT, SIGTERM or SIGHUP arrives; the caller then calls Stop.
func (a *App) Start() <-chan struct{} {
	l, err := net.Listen("tcp", a.httpServer.Addr)
	if err != nil {
		slog.Error("failed to listen http server", "address", a.httpServer.Addr, "error", err)
		os.Exit(1)
	}

	slog.Info("http server listening", "address", l.Addr().String(),
		"store_driver", a.config.GetString("store.driver"),
		"session_driver", a.config.GetString("session.driver"),
		"messaging_driver", a.config.GetString("messaging.driver"),
	)

	go func() {
		if err := <-a.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server stopped unexpectedly", "error", err)
			os.Exit(1)
		}
	}()

	done := make(chan struct{})
	sigCtx, stop := signal.NotifyContext(a.ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)

	go func() {
		defer stop()
		<-sigCtx.Done()

		slog.Info("shutdown signal received")
		close(done)
	}()

	return done
}

// Serve runs the HTTP server on l. The channel yields the serve error once.
func (a *App) Serve(l net.Listener) <-chan error {
	errChan := make(chan error, 1)

	go func() {
		defer close(errChan)
		errChan <- a.httpServer.Serve(l)
	}()

	return errChan
}

// Stop drains in-flight requests, waits for pending event publishes and
// releases connections in reverse dependency order.
func (a *App) Stop(ctx context.Context) {
	defer a.cancel()

	if err := a.httpServer.Shutdown(ctx); err != nil {
		slog.ErrorContext(ctx, "failed to close resources", "name", "HTTP Server", "error", err)
	}

	if err := a.goroutine.Wait(); err != nil {
		slog.ErrorContext(ctx, "background task failed", "error", err)
	}

	for _, closer := range a.closers {
		if err := closer.fn(ctx); err != nil {
			slog.ErrorContext(ctx, "failed to close resources", "name", closer.name, "error", err)
		}
	}

	slog.InfoContext(ctx, "application stopped")
}
