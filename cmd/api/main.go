package main

import (
	"context"
	"os"

	"github.com/spf13/pflag"
	"github.com/yigit/campusbuddy/internal/bootstrap"
	"github.com/yigit/campusbuddy/internal/pkg/logger"
	"github.com/yigit/campusbuddy/internal/server"
)

func main() {
	configPath := pflag.StringP("config", "c", bootstrap.DefaultConfigPath, "path to the YAML config file")
	pflag.Parse()

	srv, err := server.NewServer(context.Background(), *configPath)
	if err != nil {
		// Error details are logged within the bootstrap functions
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	logger.Info().Msg("Application finished gracefully.")
}
