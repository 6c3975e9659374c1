// Command matchrun runs one buddy matching pass for a campus and prints the
// result as JSON. It is meant for cron jobs and manual operator runs.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"github.com/yigit/campusbuddy/internal/bootstrap"
	"github.com/yigit/campusbuddy/internal/db"
	"github.com/yigit/campusbuddy/internal/pkg/apperrors"
	"github.com/yigit/campusbuddy/internal/pkg/logger"
)

func main() {
	configPath := pflag.StringP("config", "c", bootstrap.DefaultConfigPath, "path to the YAML config file")
	campus := pflag.String("campus", "", "campus to match (required)")
	migrate := pflag.Bool("migrate", false, "apply pending migrations before matching")
	pflag.Parse()

	os.Exit(run(*configPath, *campus, *migrate))
}

func run(configPath, campus string, migrate bool) int {
	if campus == "" {
		fmt.Fprintln(os.Stderr, "matchrun: --campus is required")
		pflag.Usage()
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger(configPath)
	if err != nil {
		return 1
	}

	database, err := db.NewPostgresDB(ctx, cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return 1
	}
	defer database.Close()

	if migrate {
		if err := bootstrap.Migrate(ctx, cfg, database, lgr); err != nil {
			return 1
		}
	}

	deps := bootstrap.BuildDependencies(cfg, database, lgr)
	result, runErr := deps.BuddyService.RunMatching(ctx, campus)

	// A failed run can still have committed matches; report them either way
	if result != nil {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			logger.Error().Err(err).Msg("Failed to write result")
		}
	}

	if runErr != nil {
		lgr.Error().Err(runErr).Str("campus", campus).Msg("Matching run failed")
		if errors.Is(runErr, apperrors.ErrInvalidInput) {
			return 2
		}
		return 1
	}
	return 0
}
