// Package db provides connectivity to the ephemeral relational store
package db

import (
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/celestiaorg/memberenv/internal/logger"
)

// Database configuration constants
const (
	// DefaultSSLMode is used when an Endpoint does not set one; ephemeral containers have no TLS
	DefaultSSLMode = "disable"
	// uniqueViolation is the PostgreSQL SQLSTATE for unique constraint violations
	uniqueViolation = "23505"
)

// Endpoint holds the connection parameters reported by a running store
type Endpoint struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
	SSLMode  string
}

// Validate checks that the endpoint can be turned into a connection string
func (e Endpoint) Validate() error {
	if e.Host == "" {
		return fmt.Errorf("host is required")
	}
	if e.Port <= 0 || e.Port > 65535 {
		return fmt.Errorf("invalid port %d", e.Port)
	}
	if e.Database == "" {
		return fmt.Errorf("database is required")
	}
	if e.User == "" {
		return fmt.Errorf("user is required")
	}
	return nil
}

// URI returns the endpoint as a postgres:// connection string
func (e Endpoint) URI() string {
	sslMode := e.SSLMode
	if sslMode == "" {
		sslMode = DefaultSSLMode
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(e.User, e.Password),
		Host:     e.Host + ":" + strconv.Itoa(e.Port),
		Path:     "/" + e.Database,
		RawQuery: url.Values{"sslmode": []string{sslMode}}.Encode(),
	}
	return u.String()
}

// Open opens a Postgres connection pool using the given DSN and verifies it with a ping.
// Caller must call Close when done.
func Open(dsn string) (*sql.DB, error) {
	conn, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return conn, nil
}

// OpenSingle opens a handle that holds exactly one long-lived connection.
// Every statement issued through it runs on the same session.
func OpenSingle(dsn string) (*sql.DB, error) {
	conn, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(0)
	conn.SetConnMaxIdleTime(0)
	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return conn, nil
}

// ORMOptions configures the ORM client
type ORMOptions struct {
	LogLevel gormlogger.LogLevel
}

// NewORM creates the ORM client for the given datasource URL. The URL is always
// passed explicitly so the client can never pick up a developer or production
// database from the environment.
func NewORM(datasourceURL string, opts ORMOptions) (*gorm.DB, error) {
	if datasourceURL == "" {
		return nil, fmt.Errorf("datasource URL is required")
	}
	orm, err := gorm.Open(postgres.Open(datasourceURL), &gorm.Config{
		Logger: logger.GormLogger(opts.LogLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open ORM client: %w", err)
	}
	return orm, nil
}

// CloseORM releases the connection pool behind an ORM client
func CloseORM(orm *gorm.DB) error {
	if orm == nil {
		return nil
	}
	sqlDB, err := orm.DB()
	if err != nil {
		return fmt.Errorf("failed to get ORM connection pool: %w", err)
	}
	return sqlDB.Close()
}

// IsDuplicateKeyError checks if the given error is a PostgreSQL duplicate key error
func IsDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolation
	}
	return errors.Is(postgres.Dialector{}.Translate(err), gorm.ErrDuplicatedKey)
}
