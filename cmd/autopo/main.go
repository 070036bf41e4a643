package main

import (
	"os"

	"github.com/andresuchdata/autopo-proposals/internal/config"
	"github.com/andresuchdata/autopo-proposals/pkg/logger"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func main() {
	cfg := config.Load()
	logger.Setup(cfg.Log.Level, cfg.Log.Format)

	app := &cli.App{
		Name:  "autopo",
		Usage: "Generate and manage purchase-order proposals",
		Commands: []*cli.Command{
			generateCommand(cfg),
			migrateCommand(),
			exportsCommand(cfg),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("command failed")
	}
}
