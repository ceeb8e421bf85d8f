package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"forensdesk/internal/adapters/httpapi"
	"forensdesk/internal/config"
	"forensdesk/internal/metrics"
	"forensdesk/internal/wiring"
)

const shutdownTimeout = 10 * time.Second

func main() {
	listen := flag.String("listen", "", "API listen address (overrides FORENSDESK_LISTEN)")
	flag.Parse()

	if err := run(*listen); err != nil {
		fmt.Fprintln(os.Stderr, "forensdesk-server:", err)
		os.Exit(1)
	}
}

func run(listen string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if listen != "" {
		cfg.ListenAddr = listen
	}

	lg, err := wiring.Logger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = lg.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := wiring.Build(ctx, cfg, lg, nil)
	if err != nil {
		return err
	}

	gin.SetMode(gin.ReleaseMode)
	api := httpapi.NewServer(rt.Workspace, rt.Acquirer, lg)

	servers := []*http.Server{{
		Addr:              cfg.ListenAddr,
		Handler:           api.Router(cfg.MetricsAddr == ""),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}}
	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		servers = append(servers, &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		})
	}

	errCh := make(chan error, len(servers))
	for _, srv := range servers {
		go func(srv *http.Server) {
			lg.Info("listening", zap.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("%s: %w", srv.Addr, err)
			}
		}(srv)
	}

	var serveErr error
	select {
	case <-ctx.Done():
		lg.Info("shutting down")
	case serveErr = <-errCh:
		lg.Error("server failed", zap.Error(serveErr))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	for _, srv := range servers {
		serveErr = multierr.Append(serveErr, srv.Shutdown(shutdownCtx))
	}
	return multierr.Append(serveErr, rt.Close())
}
