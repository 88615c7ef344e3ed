package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"casitas/internal/config"
	"casitas/internal/infra"
	"casitas/internal/repository"
	"casitas/internal/router"
	"casitas/internal/service"
	"casitas/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Structured logger: dev pretty, prod JSON
	zerolog.TimeFieldFormat = time.RFC3339
	if cfg.Env != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	if cfg.MigrationsEnabled {
		if err := infra.RunMigrations(db); err != nil {
			log.Fatal().Err(err).Msg("failed to run migrations")
		}
	}

	rdb, err := infra.NewRedis(context.Background(), cfg.RedisURL, cfg.RedisPoolSize)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Email queue: services notify through the dispatcher, the pool delivers
	// through the SMTP breaker.
	cola := worker.NewRedisCola(rdb)
	dispatcher := worker.NewDispatcher(cola)
	smtpCB := infra.NewCircuitBreaker(infra.DefaultCBConfig("smtp"))
	pool := worker.NewPool(cola, map[string]worker.Handler{
		worker.JobEmail: worker.NewEmailWorker(infra.NewMailer(cfg), smtpCB),
	})
	pool.Start(ctx, cfg.WorkerPoolSize)

	var cron *worker.MorosidadCron
	if cfg.MorosidadCronEnabled {
		morosidad := service.NewMorosidadService(
			repository.NewGastoComunRepository(db),
			repository.NewMultaRepository(db),
			repository.NewResidenteRepository(db),
			repository.NewRegistroRepository(db),
			dispatcher,
			cfg,
		)
		cron = worker.NewMorosidadCron(morosidad, cfg.MorosidadIntervalo())
		cron.Start(ctx)
	}

	r := router.New(cfg, db, rdb, dispatcher, smtpCB)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("Casitas backend listening on :%d", cfg.Port)
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
		log.Error().Err(err).Msg("forced shutdown")
	}

	cancel()
	pool.Wait()
	if cron != nil {
		cron.Wait()
	}
	if err := rdb.Close(); err != nil {
		log.Warn().Err(err).Msg("redis close")
	}
	log.Info().Msg("server exited")
}
