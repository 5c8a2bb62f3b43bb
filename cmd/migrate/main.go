// This file is used to run database migrations
// How to run:
// DATABASE_URL=postgres://... go run ./cmd/migrate          # Run all pending migrations
// go run ./cmd/migrate -db postgres://... -down            # Rollback all migrations
// go run ./cmd/migrate -steps 1                            # Run one migration
// go run ./cmd/migrate -steps -1                           # Rollback one migration
// go run ./cmd/migrate -force 1                            # Force version 1
// go run ./cmd/migrate -path file://internal/db/migrations/sql  # Read migrations from disk
//
// Without -path the migrations compiled into the binary are used. Any failure
// exits with status 1.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"

	"github.com/celestiaorg/memberenv/config"
	"github.com/celestiaorg/memberenv/internal/constants"
	"github.com/celestiaorg/memberenv/internal/db/migrations"
	"github.com/celestiaorg/memberenv/internal/logger"
)

func main() {
	logger.InitializeAndConfigure()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Fatalf("Error loading .env file: %v", err)
	}

	var (
		dbURLFlag = flag.String("db", "", "Database URL (optional, defaults to "+constants.EnvDatabaseURL+")")
		migPath   = flag.String("path", "", "Migration source URL such as file://internal/db/migrations/sql (defaults to the embedded migrations)")
		down      = flag.Bool("down", false, "Roll back migrations")
		steps     = flag.Int("steps", 0, "Number of migrations to apply (up or down)")
		force     = flag.Int("force", -1, "Force a specific version")
		retries   = flag.Int("retries", 1, "Number of connection attempts")
		retryWait = flag.Duration("retry-wait", time.Second, "Wait time between attempts")
	)
	flag.Parse()

	dbURL := config.GetEnv(constants.EnvDatabaseURL, "")
	if *dbURLFlag != "" {
		dbURL = *dbURLFlag
	}
	if dbURL == "" {
		logger.Fatalf("No database URL: set %s or pass -db", constants.EnvDatabaseURL)
	}

	if err := run(migrations.Config{
		MigrationsPath: *migPath,
		DatabaseURL:    dbURL,
		RetryAttempts:  *retries,
		RetryDelay:     *retryWait,
	}, *down, *steps, *force); err != nil {
		logger.Fatalf("%v", err)
	}
}

func run(cfg migrations.Config, down bool, steps, force int) error {
	service, err := migrations.NewMigrationService(cfg)
	if err != nil {
		return fmt.Errorf("failed to create migration service: %w", err)
	}
	defer func() {
		if err := service.Close(); err != nil {
			logger.Warnf("Failed to close migration service: %v", err)
		}
	}()

	switch {
	case force >= 0:
		if err := service.Force(force); err != nil {
			return fmt.Errorf("failed to force version %d: %w", force, err)
		}
		logger.Infof("Successfully forced version to %d", force)
		return nil
	case steps != 0:
		if err := service.Steps(steps); err != nil {
			return err
		}
		logger.Infof("Successfully applied %d steps", steps)
		return nil
	case down:
		if err := service.Down(); err != nil {
			return err
		}
	default:
		if err := service.Up(); err != nil {
			return err
		}
	}

	version, dirty, err := service.Version()
	if err != nil {
		logger.Warnf("Could not get final version: %v", err)
		return nil
	}
	logger.InfoWithFields("Migrations applied", map[string]interface{}{
		"version": version,
		"dirty":   dirty,
	})
	return nil
}
