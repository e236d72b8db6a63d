package main

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"yt-extract-api/internal/config"
	"yt-extract-api/internal/monitor"
	"yt-extract-api/internal/orchestrator"
	"yt-extract-api/internal/server"
	"yt-extract-api/internal/storage"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	configManager := config.NewManager()
	cfg, err := configManager.Load("")
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading configuration")
	}
	logger := configManager.GetLogger()

	history, err := storage.NewSQLite(cfg.Database.Path)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing storage")
	}
	defer history.Close()

	mon := monitor.NewMonitor()

	orch, cleanup, err := orchestrator.FromConfig(context.Background(), cfg, history, mon.Metrics(), logger)
	if err != nil {
		log.Fatal().Err(err).Msg("Error assembling orchestrator")
	}
	defer cleanup()

	srv := server.NewServer(cfg, orch, history, mon, logger)
	if err := srv.Run(); err != nil {
		log.Fatal().Err(err).Msg("Error running server")
	}
}
