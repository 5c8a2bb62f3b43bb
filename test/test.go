package test

import (
	"time"

	gormlogger "gorm.io/gorm/logger"

	"github.com/celestiaorg/memberenv/internal/containers"
	"github.com/celestiaorg/memberenv/internal/db/migrations"
	"github.com/celestiaorg/memberenv/internal/security"
)

// DefaultCaseTimeout is the time budget of a single test case
const DefaultCaseTimeout = 10 * time.Second

// DefaultStartupTimeout bounds provisioning of both containers
const DefaultStartupTimeout = 60 * time.Second

// DefaultTeardownTimeout bounds Teardown when the caller's context has no deadline
const DefaultTeardownTimeout = 30 * time.Second

// Option represents a configuration option for the environment.
type Option func(*Environment)

// WithProvisioner replaces the Docker provisioner
func WithProvisioner(p containers.Provisioner) Option {
	return func(env *Environment) {
		env.provisioner = p
	}
}

// WithMigrator replaces the in-process migrator
func WithMigrator(m migrations.Migrator) Option {
	return func(env *Environment) {
		env.migrator = m
	}
}

// WithHasherCost sets the bcrypt cost of seeded credentials.
// Tests that seed many members can lower it; fixtures default to security.FixtureCost.
func WithHasherCost(cost int) Option {
	return func(env *Environment) {
		env.hasher = security.NewHasher(cost)
	}
}

// WithCaseTimeout returns an option that sets the per-case time budget.
func WithCaseTimeout(timeout time.Duration) Option {
	return func(env *Environment) {
		if timeout > 0 {
			env.caseTimeout = timeout
		}
	}
}

// WithStartupTimeout returns an option that bounds container startup.
func WithStartupTimeout(timeout time.Duration) Option {
	return func(env *Environment) {
		if timeout > 0 {
			env.startupTimeout = timeout
		}
	}
}

// WithORMLogLevel sets the log level of the ORM client
func WithORMLogLevel(level gormlogger.LogLevel) Option {
	return func(env *Environment) {
		env.ormLogLevel = level
	}
}

// WithCleanupFunc returns an option that adds a cleanup function to be
// called at the end of Teardown. Later registrations run first.
func WithCleanupFunc(cleanup func()) Option {
	return func(env *Environment) {
		oldCleanup := env.cleanup
		env.cleanup = func() {
			if cleanup != nil {
				cleanup()
			}
			if oldCleanup != nil {
				oldCleanup()
			}
		}
	}
}
