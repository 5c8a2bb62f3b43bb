// Package containers starts the ephemeral PostgreSQL and Redis instances used by
// end-to-end tests. Each instance listens on a port Docker assigns dynamically
// and is only returned once it reports ready.
package containers

import (
	"context"

	"github.com/celestiaorg/memberenv/internal/db"
)

// Postgres is a running relational store
type Postgres interface {
	// Endpoint returns the connection parameters of the store
	Endpoint() db.Endpoint
	// Stop terminates the instance; calling it again is a no-op
	Stop(ctx context.Context) error
}

// Redis is a running cache
type Redis interface {
	// URL returns the redis:// connection URL
	URL() string
	// Stop terminates the instance; calling it again is a no-op
	Stop(ctx context.Context) error
}

// Provisioner starts ephemeral backing services
type Provisioner interface {
	StartPostgres(ctx context.Context) (Postgres, error)
	StartRedis(ctx context.Context) (Redis, error)
}
