// Command product-inventory serves product CRUD requests either as an AWS
// Lambda function behind API Gateway or as a plain HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awslambda "github.com/aws/aws-lambda-go/lambda"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"productinventory/internal/adapters/httpapi"
	lambdaadapter "productinventory/internal/adapters/lambda"
	"productinventory/internal/config"
	"productinventory/internal/dispatch"
	"productinventory/internal/logging"
	"productinventory/internal/observability"
	"productinventory/internal/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger, sync, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = sync() }()
	logger.Info("service_starting", "runtime", cfg.Runtime, "driver", cfg.Store.Driver)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder := observability.NewRecorder(reg)

	ctx := context.Background()
	backend, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	closeStore := func() error { return nil }
	if c, ok := backend.(io.Closer); ok {
		closeStore = c.Close
	}

	d := dispatch.New(
		store.Instrument(backend, recorder, logger),
		dispatch.WithLogger(logger),
		dispatch.WithRecorder(recorder),
		dispatch.WithMissingAsNotFound(cfg.Dispatch.MissingAs404),
	)

	switch cfg.Runtime {
	case config.RuntimeHTTP:
		defer func() { _ = closeStore() }()
		return serveHTTP(cfg.HTTP, httpapi.NewRouter(d, reg), logger)
	default:
		// StartWithOptions never returns; deferred calls do not run here.
		awslambda.StartWithOptions(lambdaadapter.Handler(d),
			awslambda.WithEnableSIGTERM(onSIGTERM(logger, closeStore, sync)))
		return nil
	}
}

// onSIGTERM returns the Lambda shutdown hook. It runs every closer in order
// and logs the ones that fail.
func onSIGTERM(logger *slog.Logger, closers ...func() error) func() {
	return func() {
		logger.Info("shutdown_signal", "signal", "SIGTERM")
		for _, c := range closers {
			if err := c(); err != nil {
				logger.Warn("shutdown_close_error", "error", err.Error())
			}
		}
	}
}

func serveHTTP(cfg config.HTTPConfig, handler http.Handler, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("http_listen", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errc:
		if err != nil {
			logger.Error("http_server_error", "error", err.Error())
			return err
		}
		return nil
	case s := <-sigc:
		logger.Info("shutdown_signal", "signal", s.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("http_shutdown_error", "error", err.Error())
		return err
	}
	logger.Info("service_stopped")
	return nil
}
