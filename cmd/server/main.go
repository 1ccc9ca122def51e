package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Afa-Tecnologia/alfa360-sub004/internal/cache"
	"github.com/Afa-Tecnologia/alfa360-sub004/internal/config"
	"github.com/Afa-Tecnologia/alfa360-sub004/internal/infra"
	"github.com/Afa-Tecnologia/alfa360-sub004/internal/repository"
	"github.com/Afa-Tecnologia/alfa360-sub004/internal/router"
	"github.com/Afa-Tecnologia/alfa360-sub004/internal/worker"
)

func main() {
	// Structured logger — dev: pretty, prod: JSON
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	// Worker pool for async register events plus a cron that refreshes the
	// cached register status on a fixed interval, so the snapshot never goes
	// stale for longer than the poll window even when an event is lost.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	caixaRepo := repository.NewCaixaRepository(db)
	statusCache := cache.NewStatusCache(rdb, cfg.StatusCacheTTL())

	workerHandlers := &worker.EventHandlers{
		Status: worker.NewStatusWorker(caixaRepo, statusCache),
	}
	worker.StartWorkerPool(ctx, rdb, workerHandlers, cfg.WorkerPoolSize)

	scheduler, err := worker.StartStatusRefresher(ctx, caixaRepo, statusCache, cfg.StatusPollInterval())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to start status refresher")
	}

	r := router.New(cfg, db, rdb)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("caixa service listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	if err := scheduler.Shutdown(); err != nil {
		log.Warn().Err(err).Msg("scheduler shutdown")
	}
	log.Info().Msg("server exited")
}
