package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/chatserver/internal/logging"
	"github.com/dmitrijs2005/chatserver/internal/server"
	"github.com/dmitrijs2005/chatserver/internal/server/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()

	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.NewJSON(os.Stdout, cfg.LogLevel)

	app, err := server.NewApp(ctx, cfg, logger)
	if err != nil {
		logger.Error(ctx, "startup failed", "error", err)
		os.Exit(1)
	}

	app.Run(ctx)

}
