package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/vango-dev/vstore/internal/errors"
	"github.com/vango-dev/vstore/pkg/metrics"
	"github.com/vango-dev/vstore/pkg/persist"
	"github.com/vango-dev/vstore/pkg/store"
)

const shutdownTimeout = 10 * time.Second

func serveCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the configured backend over HTTP",
		Long: `Serve the configured backend over HTTP.

Routes:
  GET    /items/{key}   value, or 404
  PUT    /items/{key}   store the request body
  DELETE /items/{key}   remove the key
  GET    /healthz       liveness
  GET    /metrics       Prometheus metrics (serve.metrics_path)

Other vstore processes reach it with storage.backend = "remote".`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				a.cfg.Serve.Addr = addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides serve.addr)")

	return cmd
}

// serve runs the HTTP server until ctx is done, then shuts it down.
func (a *app) serve(ctx context.Context) error {
	storage, closeStorage, err := a.openStorage(ctx)
	if err != nil {
		return err
	}
	defer closeStorage()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	handler, changes := a.serveHandler(storage, registry)
	defer changes.Close()

	srv := &http.Server{
		Addr:              a.cfg.Serve.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("server starting", "address", srv.Addr, "backend", a.cfg.Storage.Backend)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != http.ErrServerClosed {
			return errors.New("V060").Wrap(err)
		}
		return nil

	case <-ctx.Done():
		a.logger.Info("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return errors.New("V060").Wrap(err)
		}
		a.logger.Info("server shutdown complete")
		return nil
	}
}

// serveHandler builds the router for serve. Writes through it are published
// on the returned store, whose activity is exported as metrics.
func (a *app) serveHandler(storage persist.Storage, registry *prometheus.Registry) (http.Handler, *store.Store[string]) {
	collector := metrics.New(metrics.WithRegistry(registry))
	changes := store.New("",
		store.WithName("changes"),
		store.WithLogger(a.logger),
		store.WithObserver(collector))
	changes.Subscribe(func(key string) {
		if key != "" {
			a.logger.Debug("item changed", "key", key)
		}
	})

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(persist.EscapedRoutePath)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok\n"))
	})
	r.Handle(a.cfg.Serve.MetricsPath, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	r.Mount("/", persist.NewHandler(&notifyingStorage{Storage: storage, changes: changes}))

	return r, changes
}

// notifyingStorage publishes the key of every successful write.
type notifyingStorage struct {
	persist.Storage
	changes *store.Store[string]
}

func (s *notifyingStorage) SetItem(ctx context.Context, key, value string) error {
	if err := s.Storage.SetItem(ctx, key, value); err != nil {
		return err
	}
	s.changes.Publish(key)
	return nil
}

func (s *notifyingStorage) RemoveItem(ctx context.Context, key string) error {
	if err := s.Storage.RemoveItem(ctx, key); err != nil {
		return err
	}
	s.changes.Publish(key)
	return nil
}
