package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/erazemk/mechatrack/internal/api"
	"github.com/erazemk/mechatrack/internal/auth"
	"github.com/erazemk/mechatrack/internal/cache"
	"github.com/erazemk/mechatrack/internal/imaging"
	"github.com/erazemk/mechatrack/internal/metrics"
	"github.com/erazemk/mechatrack/internal/store"
)

func serve(ctx context.Context, a *app) error {
	secret := a.cfg.JWT.Secret
	if secret == "" {
		// Auto-generated on first run and kept in the database.
		var err error
		secret, err = store.GetJWTSecret(ctx, a.db)
		if err != nil {
			return err
		}
	}

	revoked := &store.RevokedTokens{DB: a.db}
	tokens := &auth.Tokens{
		Secret:  secret,
		Issuer:  a.cfg.JWT.Issuer,
		TTL:     a.cfg.JWT.TTL,
		Revoked: revoked,
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	deps := api.Deps{
		Config:  a.cfg,
		Logger:  a.log,
		DB:      a.db,
		Auth:    &auth.Service{Users: &store.Users{DB: a.db}, Tokens: tokens},
		Revoked: revoked,
		Items:   &store.Items{DB: a.db},
		Tools:   &store.Tools{DB: a.db},
		Jobs:    &store.Jobs{DB: a.db},
		Images:  imaging.NewProcessor(a.cfg.Images.MaxUploadBytes),
		Metrics: metrics.NewHTTPMetrics(registry),
	}

	if a.cfg.Redis.RateLimitEnabled() {
		client, err := cache.New(ctx, a.cfg.Redis)
		if err != nil {
			return err
		}
		a.closers = append([]func() error{client.Close}, a.closers...)
		deps.RateLimiter = client
		a.log.Info(ctx, "auth rate limiting enabled")
	}

	server := &http.Server{
		Addr:              a.cfg.App.Addr,
		Handler:           api.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	shutdownErr := make(chan error, 1)
	go func() {
		sig, ok := <-quit
		if !ok {
			return
		}
		a.log.Info(a.log.WithField(ctx, "signal", sig.String()), "shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		shutdownErr <- server.Shutdown(shutdownCtx)
	}()

	a.log.Info(a.log.WithFields(ctx, map[string]any{
		"addr": a.cfg.App.Addr,
		"env":  a.cfg.App.Env,
	}), "server started")

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	if err := <-shutdownErr; err != nil {
		return err
	}

	a.log.Info(ctx, "server stopped")
	return nil
}
