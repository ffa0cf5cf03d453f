package main

import (
	"errors"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"github.com/Garsondee/Flight-Scope/internal/app"
	"github.com/Garsondee/Flight-Scope/internal/config"
	"github.com/Garsondee/Flight-Scope/internal/logging"
	"github.com/Garsondee/Flight-Scope/internal/telemetry"
)

func main() {
	config.Flags(pflag.CommandLine)
	pflag.Parse()

	if err := config.LoadEnv(".env"); err != nil {
		log.Fatal().Err(err).Msg("loading .env")
	}
	v := config.New()
	if err := config.BindFlags(v, pflag.CommandLine); err != nil {
		log.Fatal().Err(err).Msg("binding flags")
	}
	path, _ := pflag.CommandLine.GetString("config")
	cfg, err := config.Load(v, path)
	if err != nil {
		log.Fatal().Err(err).Msg("loading config")
	}

	opts := logging.Options{Level: cfg.LogLevel}
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.LogFile).Msg("opening log file")
		}
		defer f.Close()
		opts.File = f
	}
	logger, _ := logging.Setup(opts)

	metrics, err := telemetry.Global()
	if err != nil {
		logger.Fatal().Err(err).Msg("creating metrics")
	}

	g, err := app.New(cfg, logger, metrics)
	if err != nil {
		logger.Fatal().Err(err).Str("scene", cfg.Scene).Msg("simulation init failed")
	}

	ebiten.SetWindowTitle(cfg.Window.Title)
	ebiten.SetWindowSize(cfg.Window.Width, cfg.Window.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(ebiten.SyncWithFPS)

	logger.Info().Str("scene", g.Scene()).Msg("viewer starting")
	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, app.ErrQuit) {
		logger.Fatal().Err(err).Msg("viewer stopped")
	}
}
