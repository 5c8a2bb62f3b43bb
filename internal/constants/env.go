// Package constants provides centralized definitions of constants used throughout the application
package constants

// Environment variable names
const (
	// EnvDatabaseURL carries the connection string handed to the migration tool
	EnvDatabaseURL = "DATABASE_URL"

	// EnvPostgresImage is the image used for the ephemeral relational store
	EnvPostgresImage = "MEMBERENV_POSTGRES_IMAGE"
	// EnvRedisImage is the image used for the ephemeral cache
	EnvRedisImage = "MEMBERENV_REDIS_IMAGE"

	// EnvDBName is the database created inside the ephemeral store
	EnvDBName = "MEMBERENV_DB_NAME"
	// EnvDBUser is the superuser created inside the ephemeral store
	EnvDBUser = "MEMBERENV_DB_USER"
	// EnvDBPassword is the password of EnvDBUser
	EnvDBPassword = "MEMBERENV_DB_PASSWORD"

	// EnvBcryptCost is the cost factor used when hashing fixture passwords
	EnvBcryptCost = "BCRYPT_COST"

	// EnvCaseTimeout bounds a single test case (Go duration, e.g. "10s")
	EnvCaseTimeout = "MEMBERENV_CASE_TIMEOUT"
	// EnvStartupTimeout bounds container startup (Go duration)
	EnvStartupTimeout = "MEMBERENV_STARTUP_TIMEOUT"

	// EnvMigrateCommand, when set, runs migrations as an external process instead of in-process
	EnvMigrateCommand = "MEMBERENV_MIGRATE_COMMAND"

	// EnvListenAddr is where the fixture control server listens
	EnvListenAddr = "MEMBERENV_LISTEN_ADDR"
	// EnvServerAddress points CLI commands at a running fixture server
	EnvServerAddress = "MEMBERENV_SERVER_ADDRESS"

	// EnvLogLevel is read by the logger
	EnvLogLevel = "LOG_LEVEL"
)
