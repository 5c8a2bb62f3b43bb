package test

import (
	"context"
	"errors"
	"fmt"
	"net/http/httptest"

	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/celestiaorg/memberenv/internal/api"
	"github.com/celestiaorg/memberenv/internal/fixtures"
)

// NewFixtureServer serves the environment's fixture operations over HTTP for
// suites that drive the environment from another process. The server is
// closed during Teardown. It returns ErrTornDown once the environment has
// been torn down.
func (e *Environment) NewFixtureServer() (*httptest.Server, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == StateTornDown {
		return nil, ErrTornDown
	}

	server := httptest.NewServer(adaptor.FiberApp(api.NewApp(fixtureAdapter{env: e})))
	WithCleanupFunc(server.Close)(e)
	return server, nil
}

// fixtureAdapter maps lifecycle errors to api.ErrUnavailable
type fixtureAdapter struct {
	env *Environment
}

func (a fixtureAdapter) Reset(ctx context.Context) error {
	return unavailable(a.env.Reset(ctx))
}

func (a fixtureAdapter) SeedMember(ctx context.Context, email, password string) (*fixtures.SeededMember, error) {
	m, err := a.env.SeedMember(ctx, email, password)
	return m, unavailable(err)
}

func (a fixtureAdapter) SeedTemporaryMember(ctx context.Context, code, nickname, email, password string) (*fixtures.SeededTempMember, error) {
	m, err := a.env.SeedTemporaryMember(ctx, code, nickname, email, password)
	return m, unavailable(err)
}

func unavailable(err error) error {
	if errors.Is(err, ErrNotReady) || errors.Is(err, ErrTornDown) {
		return fmt.Errorf("%w: %v", api.ErrUnavailable, err)
	}
	return err
}

// Fixtures returns the environment as an api.Fixtures implementation
func (e *Environment) Fixtures() api.Fixtures {
	return fixtureAdapter{env: e}
}
