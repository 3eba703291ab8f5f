package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sirrobot01/dockdeck/pkg/api"
	"github.com/sirrobot01/dockdeck/pkg/config"
	"github.com/sirrobot01/dockdeck/pkg/dispatch"
	"github.com/sirrobot01/dockdeck/pkg/metrics"
	cruntime "github.com/sirrobot01/dockdeck/pkg/runtime"
	"github.com/sirrobot01/dockdeck/pkg/scheduler"
	"github.com/sirrobot01/dockdeck/pkg/storage"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Create configuration from CLI args
	cfg := config.FromArgs()

	// Setup zerolog
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.SetGlobalLevel(cfg.Level())
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})

	// Validate config
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid config")
	}

	log.Info().
		Int("port", cfg.Port).
		Str("data_dir", cfg.DataDir).
		Str("runtime", cfg.Runtime).
		Str("socket", cfg.Socket).
		Msg("Starting dockdeck")

	// Initialize storage
	store, err := storage.New(cfg.StoragePath())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize storage")
	}
	defer store.Close()

	// One runtime session for the whole process; without it nothing can run
	runtimeClient, err := cruntime.New(cfg.Runtime, cfg.Socket)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize container runtime")
	}
	defer func(runtimeClient cruntime.Client) {
		err := runtimeClient.Close()
		if err != nil {
			log.Error().Err(err).Msg("Error closing container runtime client")
		}
	}(runtimeClient)

	recorder := metrics.New()
	dispatcher := dispatch.New(runtimeClient,
		dispatch.WithRecorder(recorder),
		dispatch.WithRecorder(storage.NewHistoryRecorder(store)),
	)

	historyScheduler := scheduler.New(store, cfg.HistoryPrune, cfg.HistoryRetention)
	if err := historyScheduler.Start(); err != nil {
		log.Fatal().Err(err).Msg("Failed to start scheduler")
	}
	defer historyScheduler.Stop()

	apiServer := api.NewServer(dispatcher, store)

	// Setup routes
	mux := http.NewServeMux()
	mux.Handle("/api/", apiServer.Handler())
	mux.Handle("/metrics", recorder.Handler())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		// Request contexts end on shutdown so followed log streams return
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", server.Addr).Msg("Server started")
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Graceful shutdown timed out, closing")
			return server.Close()
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Server error")
	}
}
