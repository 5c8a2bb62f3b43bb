package containers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/celestiaorg/memberenv/internal/config"
	"github.com/celestiaorg/memberenv/internal/db"
	"github.com/celestiaorg/memberenv/internal/logger"
)

const postgresPort = "5432/tcp"

// Settings configures the Docker-backed provisioner
type Settings struct {
	PostgresImage  string
	RedisImage     string
	DBName         string
	DBUser         string
	DBPassword     string
	StartupTimeout time.Duration
}

// SettingsFromConfig extracts the container settings from the environment configuration
func SettingsFromConfig(cfg *config.EnvConfig) Settings {
	return Settings{
		PostgresImage:  cfg.PostgresImage,
		RedisImage:     cfg.RedisImage,
		DBName:         cfg.DBName,
		DBUser:         cfg.DBUser,
		DBPassword:     cfg.DBPassword,
		StartupTimeout: cfg.StartupTimeout,
	}
}

func (s Settings) withDefaults() Settings {
	if s.PostgresImage == "" {
		s.PostgresImage = config.DefaultPostgresImage
	}
	if s.RedisImage == "" {
		s.RedisImage = config.DefaultRedisImage
	}
	if s.DBName == "" {
		s.DBName = config.DefaultDBName
	}
	if s.DBUser == "" {
		s.DBUser = config.DefaultDBUser
	}
	if s.DBPassword == "" {
		s.DBPassword = config.DefaultDBPassword
	}
	if s.StartupTimeout <= 0 {
		s.StartupTimeout = config.DefaultStartupTimeout
	}
	return s
}

// DockerProvisioner starts containers through testcontainers-go
type DockerProvisioner struct {
	settings Settings
}

// NewDockerProvisioner creates a DockerProvisioner, filling unset settings with defaults
func NewDockerProvisioner(settings Settings) *DockerProvisioner {
	return &DockerProvisioner{settings: settings.withDefaults()}
}

// Settings returns the effective settings
func (p *DockerProvisioner) Settings() Settings {
	return p.settings
}

// StartPostgres implements Provisioner
func (p *DockerProvisioner) StartPostgres(ctx context.Context) (Postgres, error) {
	start := time.Now()
	c, err := tcpostgres.Run(ctx, p.settings.PostgresImage,
		tcpostgres.WithDatabase(p.settings.DBName),
		tcpostgres.WithUsername(p.settings.DBUser),
		tcpostgres.WithPassword(p.settings.DBPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(p.settings.StartupTimeout),
		),
	)
	if err != nil {
		if c != nil {
			_ = c.Terminate(context.Background())
		}
		return nil, fmt.Errorf("failed to start postgres container: %w", err)
	}

	host, err := c.Host(ctx)
	if err != nil {
		_ = c.Terminate(context.Background())
		return nil, fmt.Errorf("failed to get postgres host: %w", err)
	}
	port, err := c.MappedPort(ctx, postgresPort)
	if err != nil {
		_ = c.Terminate(context.Background())
		return nil, fmt.Errorf("failed to get postgres port: %w", err)
	}

	endpoint := db.Endpoint{
		Host:     host,
		Port:     port.Int(),
		Database: p.settings.DBName,
		User:     p.settings.DBUser,
		Password: p.settings.DBPassword,
		SSLMode:  db.DefaultSSLMode,
	}
	logger.InfoWithFields("postgres container ready", map[string]interface{}{
		"image":    p.settings.PostgresImage,
		"host":     host,
		"port":     endpoint.Port,
		"duration": time.Since(start).String(),
	})
	return &postgresContainer{container: c, endpoint: endpoint}, nil
}

// StartRedis implements Provisioner
func (p *DockerProvisioner) StartRedis(ctx context.Context) (Redis, error) {
	start := time.Now()
	c, err := tcredis.Run(ctx, p.settings.RedisImage,
		testcontainers.WithWaitStrategy(
			wait.ForLog("Ready to accept connections").
				WithStartupTimeout(p.settings.StartupTimeout),
		),
	)
	if err != nil {
		if c != nil {
			_ = c.Terminate(context.Background())
		}
		return nil, fmt.Errorf("failed to start redis container: %w", err)
	}

	url, err := c.ConnectionString(ctx)
	if err != nil {
		_ = c.Terminate(context.Background())
		return nil, fmt.Errorf("failed to get redis connection string: %w", err)
	}

	logger.InfoWithFields("redis container ready", map[string]interface{}{
		"image":    p.settings.RedisImage,
		"url":      url,
		"duration": time.Since(start).String(),
	})
	return &redisContainer{container: c, url: url}, nil
}

type postgresContainer struct {
	container *tcpostgres.PostgresContainer
	endpoint  db.Endpoint
	once      sync.Once
	err       error
}

func (c *postgresContainer) Endpoint() db.Endpoint {
	return c.endpoint
}

func (c *postgresContainer) Stop(ctx context.Context) error {
	c.once.Do(func() {
		if err := c.container.Terminate(ctx); err != nil {
			c.err = fmt.Errorf("failed to stop postgres container: %w", err)
		}
	})
	return c.err
}

type redisContainer struct {
	container *tcredis.RedisContainer
	url       string
	once      sync.Once
	err       error
}

func (c *redisContainer) URL() string {
	return c.url
}

func (c *redisContainer) Stop(ctx context.Context) error {
	c.once.Do(func() {
		if err := c.container.Terminate(ctx); err != nil {
			c.err = fmt.Errorf("failed to stop redis container: %w", err)
		}
	})
	return c.err
}
