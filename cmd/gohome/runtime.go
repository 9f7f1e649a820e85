package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"gohome/internal/api"
	"gohome/internal/core/store"
	"gohome/internal/core/timekeeper"
	"gohome/internal/telemetry"
	"gohome/internal/ui/preferences"
)

const shutdownTimeout = 5 * time.Second

// tracker bundles the time keeper with the HTTP server that exposes it.
type tracker struct {
	keeper *timekeeper.TimeKeeper
	server *http.Server
	logger zerolog.Logger
	cancel context.CancelFunc
}

func newTracker(settings preferences.Settings, logger zerolog.Logger) (*tracker, error) {
	keeper := timekeeper.New(store.New(), settings.TrackerConfig(), timekeeper.Config{TickInterval: settings.TickInterval}, logger)

	ctx, cancel := context.WithCancel(context.Background())
	var metrics http.Handler
	if settings.MetricsEnabled {
		collector := telemetry.NewCollector(keeper)
		handler, err := telemetry.Handler(collector)
		if err != nil {
			cancel()
			return nil, err
		}
		metrics = handler
		go collector.Observe(ctx, keeper.Subscribe(64))
	}

	server := &http.Server{
		Handler:           api.New(keeper, metrics, logger).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return &tracker{keeper: keeper, server: server, logger: logger, cancel: cancel}, nil
}

// start begins ticking and serves the API on listener.
func (t *tracker) start(listener net.Listener) {
	t.keeper.Start()
	go func() {
		t.logger.Info().Str("addr", listener.Addr().String()).Msg("HTTP API listening")
		if err := t.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			t.logger.Error().Err(err).Msg("http server error")
		}
	}()
}

func (t *tracker) stop() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := t.server.Shutdown(ctx); err != nil {
		t.logger.Error().Err(err).Msg("graceful shutdown failed")
	}
	t.keeper.Stop()
	t.cancel()
}
