// Package config loads the settings of the test environment from .env and the process environment
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"

	envconfig "github.com/celestiaorg/memberenv/config"
	"github.com/celestiaorg/memberenv/internal/constants"
)

// Defaults for the ephemeral environment
const (
	DefaultPostgresImage  = "postgres:16-alpine"
	DefaultRedisImage     = "redis:7-alpine"
	DefaultDBName         = "test"
	DefaultDBUser         = "test"
	DefaultDBPassword     = "test"
	DefaultBcryptCost     = 10
	DefaultCaseTimeout    = 10 * time.Second
	DefaultStartupTimeout = 60 * time.Second
	DefaultListenAddr     = ":8089"
)

// EnvConfig represents the configuration of the test environment
type EnvConfig struct {
	PostgresImage  string
	RedisImage     string
	DBName         string
	DBUser         string
	DBPassword     string
	BcryptCost     int
	CaseTimeout    time.Duration
	StartupTimeout time.Duration
	// MigrateCommand is the external migration tool; empty means migrations run in-process
	MigrateCommand string
	ListenAddr     string
	// ServerAddress is the base URL of a running fixture server, used by CLI commands
	ServerAddress string
	// DatabaseURL is only used by commands that work against an already running store
	DatabaseURL string
}

// LoadEnvConfig reads .env if present and builds the configuration from the environment.
// A missing .env file is not an error.
func LoadEnvConfig() (*EnvConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	return NewEnvConfig()
}

// NewEnvConfig builds the configuration from the process environment only
func NewEnvConfig() (*EnvConfig, error) {
	cost, err := envconfig.GetEnvInt(constants.EnvBcryptCost, DefaultBcryptCost)
	if err != nil {
		return nil, err
	}
	caseTimeout, err := envconfig.GetEnvDuration(constants.EnvCaseTimeout, DefaultCaseTimeout)
	if err != nil {
		return nil, err
	}
	startupTimeout, err := envconfig.GetEnvDuration(constants.EnvStartupTimeout, DefaultStartupTimeout)
	if err != nil {
		return nil, err
	}

	cfg := &EnvConfig{
		PostgresImage:  envconfig.GetEnv(constants.EnvPostgresImage, DefaultPostgresImage),
		RedisImage:     envconfig.GetEnv(constants.EnvRedisImage, DefaultRedisImage),
		DBName:         envconfig.GetEnv(constants.EnvDBName, DefaultDBName),
		DBUser:         envconfig.GetEnv(constants.EnvDBUser, DefaultDBUser),
		DBPassword:     envconfig.GetEnv(constants.EnvDBPassword, DefaultDBPassword),
		BcryptCost:     cost,
		CaseTimeout:    caseTimeout,
		StartupTimeout: startupTimeout,
		MigrateCommand: envconfig.GetEnv(constants.EnvMigrateCommand, ""),
		ListenAddr:     envconfig.GetEnv(constants.EnvListenAddr, DefaultListenAddr),
		ServerAddress:  envconfig.GetEnv(constants.EnvServerAddress, ""),
		DatabaseURL:    envconfig.GetEnv(constants.EnvDatabaseURL, ""),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate validates the configuration
func (c *EnvConfig) Validate() error {
	if c.PostgresImage == "" || c.RedisImage == "" {
		return fmt.Errorf("container images are required")
	}
	if c.DBName == "" || c.DBUser == "" {
		return fmt.Errorf("database name and user are required")
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return fmt.Errorf("%s must be between 4 and 31, got %d", constants.EnvBcryptCost, c.BcryptCost)
	}
	return nil
}
