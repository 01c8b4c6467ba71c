package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"portfolio/config"
	"portfolio/db"
	"portfolio/handlers"
	"portfolio/logger"
)

func main() {
	cfg, err := config.Load(config.DefaultOptions)
	if err != nil {
		boot := logger.New(nil, "", "")
		boot.Fatal().Err(err).Msg("config")
	}
	log := logger.New(nil, cfg.Log, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Открываем хранилище проектов и закрываем его при выходе
	store, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("db open")
	}
	defer store.Close()

	deps, err := handlers.FromConfig(cfg, store, log)
	if err != nil {
		log.Fatal().Err(err).Msg("handlers")
	}
	router, err := handlers.NewRouter(deps)
	if err != nil {
		log.Fatal().Err(err).Msg("router")
	}

	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Log().Str("listen", cfg.Listen).Msg("server listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("listen")
	}
}
