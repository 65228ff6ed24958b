package main

import (
	"context"
	"errors"
	"os"

	"github.com/desertthunder/taskcal/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	configPath := os.Getenv("TASKCAL_CONFIG")
	if configPath == "" {
		configPath = "config.toml"
	}

	config, err := loadConfig(configPath, os.LookupEnv)
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	shared.SetLogLevel(logger, shared.ParseLogLevel(config.LogLevel))

	runner := NewRunner(RunnerOpts{
		Config: config,
		Logger: logger,
	})

	app := &cli.Command{
		Name:     "taskcal",
		Usage:    "Mirror tagged Asana tasks into Google Calendar",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	err = app.Run(context.Background(), os.Args)
	runner.Close()
	if err != nil {
		if errors.Is(err, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		}
		logger.Fatalf("application error: %v", err)
	}
}
