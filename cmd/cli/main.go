package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/dragoncontacts/internal/buildinfo"
	"github.com/dmitrijs2005/dragoncontacts/internal/client/cli"
	"github.com/dmitrijs2005/dragoncontacts/internal/client/config"
	"github.com/dmitrijs2005/dragoncontacts/internal/logging"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := logging.New(cfg.LogFormat, cfg.LogLevel, os.Stderr)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := app.Run(ctx); err != nil {
		log.Fatalf("%v", err)
	}
}
