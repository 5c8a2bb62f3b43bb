package test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/celestiaorg/memberenv/internal/cache"
	"github.com/celestiaorg/memberenv/internal/config"
	"github.com/celestiaorg/memberenv/internal/containers"
	"github.com/celestiaorg/memberenv/internal/db"
	"github.com/celestiaorg/memberenv/internal/db/migrations"
	"github.com/celestiaorg/memberenv/internal/fixtures"
	"github.com/celestiaorg/memberenv/internal/logger"
	"github.com/celestiaorg/memberenv/internal/security"
)

// Environment owns the containers and the shared handles of one test run.
// All methods are safe to call from multiple goroutines, but cases that use
// the environment must run sequentially.
type Environment struct {
	mu    sync.Mutex
	state State

	provisioner    containers.Provisioner
	migrator       migrations.Migrator
	hasher         *security.Hasher
	caseTimeout    time.Duration
	startupTimeout time.Duration
	ormLogLevel    gormlogger.LogLevel
	cleanup        func()

	// Containers
	postgres containers.Postgres
	redis    containers.Redis

	databaseURL   string
	schemaApplied bool

	// Shared handles
	sqlDB  *sql.DB
	orm    *gorm.DB
	cache  *cache.Client
	seeder *fixtures.Seeder
}

// New creates an environment in StateUninitialized. Nothing is started until
// Start or Setup is called.
func New(opts ...Option) *Environment {
	env := &Environment{
		state:          StateUninitialized,
		hasher:         security.NewHasher(security.FixtureCost),
		caseTimeout:    DefaultCaseTimeout,
		startupTimeout: DefaultStartupTimeout,
		ormLogLevel:    gormlogger.Warn,
	}
	for _, opt := range opts {
		opt(env)
	}
	if env.provisioner == nil {
		env.provisioner = containers.NewDockerProvisioner(containers.Settings{
			StartupTimeout: env.startupTimeout,
		})
	}
	if env.migrator == nil {
		env.migrator = migrations.NewEmbeddedMigrator()
	}
	return env
}

// NewFromConfig creates an environment from the loaded configuration.
// Options are applied after the configuration and take precedence.
func NewFromConfig(cfg *config.EnvConfig, opts ...Option) (*Environment, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}
	migrator, err := migrations.FromCommand(cfg.MigrateCommand)
	if err != nil {
		return nil, fmt.Errorf("invalid migration command: %w", err)
	}
	base := []Option{
		WithProvisioner(containers.NewDockerProvisioner(containers.SettingsFromConfig(cfg))),
		WithMigrator(migrator),
		WithHasherCost(cfg.BcryptCost),
		WithCaseTimeout(cfg.CaseTimeout),
		WithStartupTimeout(cfg.StartupTimeout),
	}
	return New(append(base, opts...)...), nil
}

// Setup runs Start, ApplySchema and OpenHandles. If any step fails the
// environment is torn down before the error is returned.
func (e *Environment) Setup(ctx context.Context) error {
	err := e.Start(ctx)
	if err == nil {
		err = e.ApplySchema(ctx, "")
	}
	if err == nil {
		err = e.OpenHandles(ctx)
	}
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrAlreadyStarted) || errors.Is(err, ErrTornDown) {
		return err
	}

	teardownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), DefaultTeardownTimeout)
	defer cancel()
	if tdErr := e.Teardown(teardownCtx); tdErr != nil {
		return multierror.Append(err, tdErr)
	}
	return err
}

// Start provisions the PostgreSQL container and then the Redis container,
// waiting for each to accept connections. Redis is not attempted when
// PostgreSQL fails. A started PostgreSQL container is kept for Teardown even
// when Redis fails.
func (e *Environment) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch e.state {
	case StateUninitialized:
	case StateTornDown:
		return ErrTornDown
	default:
		return ErrAlreadyStarted
	}
	e.setState(StateStarting)

	ctx, cancel := context.WithTimeout(ctx, e.startupTimeout)
	defer cancel()
	started := time.Now()

	pg, err := e.provisioner.StartPostgres(ctx)
	if err != nil {
		e.setState(StateFailed)
		return fmt.Errorf("failed to start postgres: %w", err)
	}
	e.postgres = pg

	rd, err := e.provisioner.StartRedis(ctx)
	if err != nil {
		e.setState(StateFailed)
		return fmt.Errorf("failed to start redis: %w", err)
	}
	e.redis = rd

	endpoint := pg.Endpoint()
	logger.InfoWithFields("Containers ready", map[string]interface{}{
		"postgres_host": endpoint.Host,
		"postgres_port": endpoint.Port,
		"redis_url":     rd.URL(),
		"duration":      time.Since(started).String(),
	})
	return nil
}

// ApplySchema migrates the database at connectionURI. An empty connectionURI
// selects the URI of the started PostgreSQL container.
func (e *Environment) ApplySchema(ctx context.Context, connectionURI string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireStarting("ApplySchema"); err != nil {
		return err
	}
	if e.schemaApplied {
		return fmt.Errorf("%w: schema already applied", ErrOutOfOrder)
	}
	if connectionURI == "" {
		connectionURI = e.postgres.Endpoint().URI()
	}

	started := time.Now()
	if err := e.migrator.Migrate(ctx, connectionURI); err != nil {
		e.setState(StateFailed)
		if !errors.Is(err, migrations.ErrMigrationFailed) {
			err = fmt.Errorf("%w: %v", migrations.ErrMigrationFailed, err)
		}
		return err
	}
	e.databaseURL = connectionURI
	e.schemaApplied = true

	logger.InfoWithFields("Schema applied", map[string]interface{}{
		"duration": time.Since(started).String(),
	})
	return nil
}

// OpenHandles opens the single long-lived database connection, the ORM client
// and the cache client, then moves the environment to StateReady.
func (e *Environment) OpenHandles(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireStarting("OpenHandles"); err != nil {
		return err
	}
	if !e.schemaApplied {
		return fmt.Errorf("%w: OpenHandles called before ApplySchema", ErrOutOfOrder)
	}

	sqlDB, err := db.OpenSingle(e.databaseURL)
	if err != nil {
		e.setState(StateFailed)
		return fmt.Errorf("failed to open database connection: %w", err)
	}
	e.sqlDB = sqlDB

	orm, err := db.NewORM(e.databaseURL, db.ORMOptions{LogLevel: e.ormLogLevel})
	if err != nil {
		e.setState(StateFailed)
		return err
	}
	e.orm = orm

	cacheClient, err := cache.NewClientFromURL(ctx, e.redis.URL())
	if err != nil {
		e.setState(StateFailed)
		return fmt.Errorf("failed to open cache client: %w", err)
	}
	e.cache = cacheClient

	e.seeder = fixtures.NewSeeder(e.sqlDB, e.hasher)
	e.setState(StateReady)
	return nil
}

// Reset deletes every row of the managed tables. A failed reset leaves the
// store in an unknown state, so the environment moves to StateFailed.
func (e *Environment) Reset(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireReady(); err != nil {
		return err
	}
	if err := e.seeder.Reset(ctx); err != nil {
		e.setState(StateFailed)
		return fmt.Errorf("failed to reset state: %w", err)
	}
	return nil
}

// SeedMember inserts a member with a local password credential
func (e *Environment) SeedMember(ctx context.Context, email, password string) (*fixtures.SeededMember, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireReady(); err != nil {
		return nil, err
	}
	return e.seeder.SeedMember(ctx, email, password)
}

// SeedTemporaryMember inserts a pending registration
func (e *Environment) SeedTemporaryMember(ctx context.Context, code, nickname, email, password string) (*fixtures.SeededTempMember, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireReady(); err != nil {
		return nil, err
	}
	return e.seeder.SeedTemporaryMember(ctx, code, nickname, email, password)
}

// Teardown releases everything the environment holds, in order: ORM client,
// database connection, PostgreSQL container, cache client, Redis container.
// Every step is attempted; failures are returned together in step order.
// Cleanup functions run last, after the lock is released. Calling Teardown
// again is a no-op.
func (e *Environment) Teardown(ctx context.Context) error {
	cleanup, err := e.teardown(ctx)
	if cleanup != nil {
		cleanup()
	}
	return err
}

func (e *Environment) teardown(ctx context.Context) (func(), error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == StateTornDown {
		return nil, nil
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultTeardownTimeout)
		defer cancel()
	}

	var result *multierror.Error
	step := func(name string, fn func() error) {
		if err := fn(); err != nil {
			logger.ErrorWithFields("Teardown step failed", map[string]interface{}{
				"step":  name,
				"error": err.Error(),
			})
			result = multierror.Append(result, fmt.Errorf("failed to %s: %w", name, err))
		}
	}

	if e.orm != nil {
		step("close ORM client", func() error { return db.CloseORM(e.orm) })
	}
	if e.sqlDB != nil {
		step("close database connection", e.sqlDB.Close)
	}
	if e.postgres != nil {
		step("stop postgres container", func() error { return e.postgres.Stop(ctx) })
	}
	if e.cache != nil {
		step("close cache client", e.cache.Close)
	}
	if e.redis != nil {
		step("stop redis container", func() error { return e.redis.Stop(ctx) })
	}
	cleanup := e.cleanup
	e.cleanup = nil

	e.setState(StateTornDown)
	return cleanup, result.ErrorOrNil()
}

// CaseContext returns a context bounded by the per-case timeout. It is
// canceled when t finishes. A case still running once the budget is spent is
// marked failed, whether or not it watches the context.
func (e *Environment) CaseContext(t testing.TB) context.Context {
	budget := e.caseTimeout
	ctx, cancel := context.WithTimeout(context.Background(), budget)
	watchdog := time.AfterFunc(budget, func() {
		t.Errorf("case exceeded %s budget", budget)
	})
	t.Cleanup(func() {
		watchdog.Stop()
		cancel()
	})
	return ctx
}

// BeginCase resets the store and returns the case context. It fails t
// immediately when the reset fails.
func (e *Environment) BeginCase(t testing.TB) context.Context {
	t.Helper()
	ctx := e.CaseContext(t)
	require.NoError(t, e.Reset(ctx), "Failed to reset test environment")
	return ctx
}

// State returns the current lifecycle state
func (e *Environment) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// CaseTimeout returns the per-case time budget
func (e *Environment) CaseTimeout() time.Duration {
	return e.caseTimeout
}

// DB returns the shared database connection. After Teardown the handle is
// closed and every call on it fails.
func (e *Environment) DB() *sql.DB {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sqlDB
}

// ORM returns the shared ORM client
func (e *Environment) ORM() *gorm.DB {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.orm
}

// Cache returns the shared cache client
func (e *Environment) Cache() *cache.Client {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cache
}

// Hasher returns the hasher used for seeded credentials
func (e *Environment) Hasher() *security.Hasher {
	return e.hasher
}

// Endpoint returns the connection parameters of the PostgreSQL container,
// or the zero Endpoint before Start.
func (e *Environment) Endpoint() db.Endpoint {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.postgres == nil {
		return db.Endpoint{}
	}
	return e.postgres.Endpoint()
}

// DatabaseURL returns the connection string the schema was applied to
func (e *Environment) DatabaseURL() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.databaseURL
}

// CacheURL returns the connection URL of the Redis container, or "" before Start
func (e *Environment) CacheURL() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.redis == nil {
		return ""
	}
	return e.redis.URL()
}

func (e *Environment) setState(to State) {
	logger.DebugWithFields("Test environment state changed", map[string]interface{}{
		"from": e.state.String(),
		"to":   to.String(),
	})
	e.state = to
}

func (e *Environment) requireReady() error {
	switch e.state {
	case StateReady:
		return nil
	case StateTornDown:
		return ErrTornDown
	default:
		return fmt.Errorf("%w: state is %s", ErrNotReady, e.state)
	}
}

func (e *Environment) requireStarting(op string) error {
	switch {
	case e.state == StateTornDown:
		return ErrTornDown
	case e.state != StateStarting:
		return fmt.Errorf("%w: %s called in state %s", ErrOutOfOrder, op, e.state)
	case e.postgres == nil || e.redis == nil:
		return fmt.Errorf("%w: %s called before Start", ErrOutOfOrder, op)
	}
	return nil
}
