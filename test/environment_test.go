package test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/celestiaorg/memberenv/internal/api/client"
	"github.com/celestiaorg/memberenv/internal/config"
	"github.com/celestiaorg/memberenv/internal/containers"
	"github.com/celestiaorg/memberenv/internal/db"
	"github.com/celestiaorg/memberenv/internal/db/migrations"
	"github.com/celestiaorg/memberenv/internal/security"
)

// stopLog records container stops in the order they happen
type stopLog struct {
	mu    sync.Mutex
	steps []string
}

func (l *stopLog) add(step string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.steps = append(l.steps, step)
}

type fakePostgres struct {
	log     *stopLog
	stopErr error
	stopped int
}

func (p *fakePostgres) Endpoint() db.Endpoint {
	// Nothing listens on port 1, so opening handles fails fast
	return db.Endpoint{Host: "127.0.0.1", Port: 1, Database: "test", User: "test", Password: "test"}
}

func (p *fakePostgres) Stop(context.Context) error {
	p.stopped++
	p.log.add("stop postgres")
	return p.stopErr
}

type fakeRedis struct {
	log     *stopLog
	stopErr error
	stopped int
}

func (r *fakeRedis) URL() string { return "redis://127.0.0.1:1/0" }

func (r *fakeRedis) Stop(context.Context) error {
	r.stopped++
	r.log.add("stop redis")
	return r.stopErr
}

type fakeProvisioner struct {
	pg    *fakePostgres
	rd    *fakeRedis
	pgErr error
	rdErr error
	// Start calls in the order they happen
	starts []string
}

func (p *fakeProvisioner) StartPostgres(context.Context) (containers.Postgres, error) {
	p.starts = append(p.starts, "postgres")
	if p.pgErr != nil {
		return nil, p.pgErr
	}
	return p.pg, nil
}

func (p *fakeProvisioner) StartRedis(context.Context) (containers.Redis, error) {
	p.starts = append(p.starts, "redis")
	if p.rdErr != nil {
		return nil, p.rdErr
	}
	return p.rd, nil
}

type fakeMigrator struct {
	err  error
	urls []string
}

func (m *fakeMigrator) Migrate(_ context.Context, databaseURL string) error {
	m.urls = append(m.urls, databaseURL)
	return m.err
}

func newFakes() (*fakeProvisioner, *fakeMigrator, *stopLog) {
	log := &stopLog{}
	return &fakeProvisioner{
		pg: &fakePostgres{log: log},
		rd: &fakeRedis{log: log},
	}, &fakeMigrator{}, log
}

func TestNew_Defaults(t *testing.T) {
	env := New()

	assert.Equal(t, StateUninitialized, env.State())
	assert.Equal(t, DefaultCaseTimeout, env.CaseTimeout())
	assert.Equal(t, security.FixtureCost, env.Hasher().Cost)
	assert.IsType(t, &containers.DockerProvisioner{}, env.provisioner)
	assert.IsType(t, &migrations.EmbeddedMigrator{}, env.migrator)
	assert.Equal(t, db.Endpoint{}, env.Endpoint())
	assert.Empty(t, env.CacheURL())
	assert.Nil(t, env.DB())
}

func TestNewFromConfig(t *testing.T) {
	t.Run("nil config", func(t *testing.T) {
		_, err := NewFromConfig(nil)
		assert.Error(t, err)
	})

	t.Run("command migrator", func(t *testing.T) {
		cfg := &config.EnvConfig{
			BcryptCost:     4,
			CaseTimeout:    3 * time.Second,
			StartupTimeout: time.Minute,
			MigrateCommand: "go run ./cmd/migrate",
		}
		env, err := NewFromConfig(cfg)
		require.NoError(t, err)

		migrator, ok := env.migrator.(*migrations.CommandMigrator)
		require.True(t, ok, "migrator should run the configured command")
		assert.Equal(t, "go", migrator.Name)
		assert.Equal(t, 4, env.Hasher().Cost)
		assert.Equal(t, 3*time.Second, env.CaseTimeout())
	})

	t.Run("options take precedence", func(t *testing.T) {
		cfg := &config.EnvConfig{BcryptCost: 4, CaseTimeout: 3 * time.Second}
		env, err := NewFromConfig(cfg, WithCaseTimeout(7*time.Second))
		require.NoError(t, err)
		assert.Equal(t, 7*time.Second, env.CaseTimeout())
	})
}

func TestEnvironment_OperationsBeforeStart(t *testing.T) {
	prov, mig, _ := newFakes()
	env := New(WithProvisioner(prov), WithMigrator(mig))
	ctx := context.Background()

	_, err := env.SeedMember(ctx, "a@example.com", "pw")
	assert.ErrorIs(t, err, ErrNotReady)

	_, err = env.SeedTemporaryMember(ctx, "123456", "n", "a@example.com", "pw")
	assert.ErrorIs(t, err, ErrNotReady)

	assert.ErrorIs(t, env.Reset(ctx), ErrNotReady)
	assert.ErrorIs(t, env.ApplySchema(ctx, ""), ErrOutOfOrder)
	assert.ErrorIs(t, env.OpenHandles(ctx), ErrOutOfOrder)

	_, err = env.CountRows(ctx, "member.member")
	assert.ErrorIs(t, err, ErrNotReady)

	assert.Equal(t, StateUninitialized, env.State())
	assert.Empty(t, mig.urls, "migrator should not run")
}

func TestEnvironment_StartTwice(t *testing.T) {
	prov, mig, _ := newFakes()
	env := New(WithProvisioner(prov), WithMigrator(mig))
	ctx := context.Background()

	require.NoError(t, env.Start(ctx))
	assert.Equal(t, StateStarting, env.State())
	assert.ErrorIs(t, env.Start(ctx), ErrAlreadyStarted)

	// Handles are opened only after the schema is applied
	assert.ErrorIs(t, env.OpenHandles(ctx), ErrOutOfOrder)
	_, err := env.SeedMember(ctx, "a@example.com", "pw")
	assert.ErrorIs(t, err, ErrNotReady)

	require.NoError(t, env.Teardown(ctx))
	assert.Equal(t, 1, prov.pg.stopped)
	assert.Equal(t, 1, prov.rd.stopped)
}

func TestEnvironment_ProvisioningFailure(t *testing.T) {
	prov, mig, _ := newFakes()
	prov.rdErr = errors.New("image pull failed")
	env := New(WithProvisioner(prov), WithMigrator(mig))
	ctx := context.Background()

	err := env.Start(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis")
	assert.Equal(t, StateFailed, env.State())

	_, err = env.SeedMember(ctx, "a@example.com", "pw")
	assert.ErrorIs(t, err, ErrNotReady)

	require.NoError(t, env.Teardown(ctx))
	assert.Equal(t, 1, prov.pg.stopped, "started postgres container should be stopped")
	assert.Equal(t, 0, prov.rd.stopped)
	assert.Equal(t, StateTornDown, env.State())
	assert.Equal(t, []string{"postgres", "redis"}, prov.starts)
}

func TestEnvironment_PostgresFailureSkipsRedis(t *testing.T) {
	prov, mig, _ := newFakes()
	prov.pgErr = errors.New("port already allocated")
	env := New(WithProvisioner(prov), WithMigrator(mig))
	ctx := context.Background()

	err := env.Start(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to start postgres")
	assert.Equal(t, StateFailed, env.State())
	assert.Equal(t, []string{"postgres"}, prov.starts, "redis must not start after postgres failed")

	require.NoError(t, env.Teardown(ctx))
	assert.Equal(t, 0, prov.pg.stopped)
	assert.Equal(t, 0, prov.rd.stopped)
}

func TestEnvironment_SetupMigrationFailure(t *testing.T) {
	prov, mig, log := newFakes()
	mig.err = errors.New("exit status 1")
	env := New(WithProvisioner(prov), WithMigrator(mig))

	err := env.Setup(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, migrations.ErrMigrationFailed)
	assert.Equal(t, StateTornDown, env.State())

	require.Len(t, mig.urls, 1)
	assert.Equal(t, prov.pg.Endpoint().URI(), mig.urls[0], "migrator should receive the container URI")
	assert.Equal(t, []string{"stop postgres", "stop redis"}, log.steps)
}

func TestEnvironment_SetupOpenHandlesFailure(t *testing.T) {
	prov, mig, _ := newFakes()
	env := New(WithProvisioner(prov), WithMigrator(mig))

	err := env.Setup(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database connection")
	assert.Equal(t, StateTornDown, env.State())
	assert.Equal(t, 1, prov.pg.stopped)
	assert.Equal(t, 1, prov.rd.stopped)
}

func TestEnvironment_ApplySchemaExplicitURI(t *testing.T) {
	prov, mig, _ := newFakes()
	env := New(WithProvisioner(prov), WithMigrator(mig))
	ctx := context.Background()
	defer func() { _ = env.Teardown(ctx) }()

	require.NoError(t, env.Start(ctx))
	require.NoError(t, env.ApplySchema(ctx, "postgres://u:p@db:5432/app?sslmode=disable"))
	assert.Equal(t, []string{"postgres://u:p@db:5432/app?sslmode=disable"}, mig.urls)
	assert.Equal(t, "postgres://u:p@db:5432/app?sslmode=disable", env.DatabaseURL())

	assert.ErrorIs(t, env.ApplySchema(ctx, ""), ErrOutOfOrder)
}

func TestEnvironment_TeardownAggregatesErrors(t *testing.T) {
	prov, mig, log := newFakes()
	errPG := errors.New("postgres stop timed out")
	errRedis := errors.New("redis stop timed out")
	prov.pg.stopErr = errPG
	prov.rd.stopErr = errRedis
	env := New(WithProvisioner(prov), WithMigrator(mig))
	ctx := context.Background()

	require.NoError(t, env.Start(ctx))
	err := env.Teardown(ctx)
	require.Error(t, err)

	assert.ErrorIs(t, err, errPG)
	assert.ErrorIs(t, err, errRedis)
	assert.Equal(t, []string{"stop postgres", "stop redis"}, log.steps, "every step should be attempted in order")

	msg := err.Error()
	assert.Less(t, strings.Index(msg, errPG.Error()), strings.Index(msg, errRedis.Error()))
	assert.Equal(t, StateTornDown, env.State())
}

func TestEnvironment_TornDownIsTerminal(t *testing.T) {
	prov, mig, _ := newFakes()
	env := New(WithProvisioner(prov), WithMigrator(mig))
	ctx := context.Background()

	require.NoError(t, env.Start(ctx))
	require.NoError(t, env.Teardown(ctx))
	require.NoError(t, env.Teardown(ctx), "second teardown should be a no-op")
	assert.Equal(t, 1, prov.pg.stopped)

	assert.ErrorIs(t, env.Start(ctx), ErrTornDown)
	assert.ErrorIs(t, env.Setup(ctx), ErrTornDown)
	assert.ErrorIs(t, env.Reset(ctx), ErrTornDown)
	_, err := env.SeedMember(ctx, "a@example.com", "pw")
	assert.ErrorIs(t, err, ErrTornDown)
}

func TestEnvironment_TeardownBeforeStart(t *testing.T) {
	prov, mig, log := newFakes()
	env := New(WithProvisioner(prov), WithMigrator(mig))

	require.NoError(t, env.Teardown(context.Background()))
	assert.Equal(t, StateTornDown, env.State())
	assert.Empty(t, log.steps)
}

func TestEnvironment_CleanupFuncs(t *testing.T) {
	prov, mig, _ := newFakes()
	var calls []string
	env := New(
		WithProvisioner(prov),
		WithMigrator(mig),
		WithCleanupFunc(func() { calls = append(calls, "first") }),
		WithCleanupFunc(func() { calls = append(calls, "second") }),
	)

	require.NoError(t, env.Teardown(context.Background()))
	require.NoError(t, env.Teardown(context.Background()))
	assert.Equal(t, []string{"second", "first"}, calls)
}

func TestEnvironment_CaseContext(t *testing.T) {
	t.Run("default timeout", func(t *testing.T) {
		env := New()
		ctx := env.CaseContext(t)

		deadline, ok := ctx.Deadline()
		require.True(t, ok, "context should have deadline")
		assert.WithinDuration(t, time.Now().Add(DefaultCaseTimeout), deadline, time.Second)
	})

	t.Run("custom timeout", func(t *testing.T) {
		env := New(WithCaseTimeout(2 * time.Second))
		ctx := env.CaseContext(t)

		deadline, ok := ctx.Deadline()
		require.True(t, ok)
		assert.WithinDuration(t, time.Now().Add(2*time.Second), deadline, time.Second)
	})

	t.Run("canceled when the case ends", func(t *testing.T) {
		env := New()
		var ctx context.Context
		t.Run("case", func(t *testing.T) {
			ctx = env.CaseContext(t)
		})
		assert.ErrorIs(t, ctx.Err(), context.Canceled)
	})

	t.Run("overrunning case fails", func(t *testing.T) {
		env := New(WithCaseTimeout(50 * time.Millisecond))
		rec := &recordingTB{}
		defer rec.finish()

		env.CaseContext(rec)
		// The case never looks at its context
		time.Sleep(150 * time.Millisecond)

		require.Eventually(t, rec.failed, time.Second, 10*time.Millisecond)
		assert.Contains(t, rec.messages()[0], "case exceeded 50ms budget")
	})

	t.Run("case within budget passes", func(t *testing.T) {
		env := New(WithCaseTimeout(50 * time.Millisecond))
		rec := &recordingTB{}

		env.CaseContext(rec)
		rec.finish()
		time.Sleep(150 * time.Millisecond)

		assert.False(t, rec.failed(), "watchdog should be stopped when the case ends")
	})
}

// recordingTB captures failures and cleanups of a case without failing the
// enclosing test
type recordingTB struct {
	testing.TB

	mu       sync.Mutex
	errs     []string
	cleanups []func()
}

func (r *recordingTB) Helper() {}

func (r *recordingTB) Errorf(format string, args ...interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, fmt.Sprintf(format, args...))
}

func (r *recordingTB) Cleanup(f func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cleanups = append(r.cleanups, f)
}

func (r *recordingTB) failed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.errs) > 0
}

func (r *recordingTB) messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.errs...)
}

func (r *recordingTB) finish() {
	r.mu.Lock()
	cleanups := r.cleanups
	r.cleanups = nil
	r.mu.Unlock()
	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}
}

func TestEnvironment_FixtureServerNotReady(t *testing.T) {
	prov, mig, _ := newFakes()
	env := New(WithProvisioner(prov), WithMigrator(mig))
	server, err := env.NewFixtureServer()
	require.NoError(t, err)

	c, err := client.NewClient(&client.Options{BaseURL: server.URL, Timeout: 5 * time.Second})
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, c.Health(ctx))

	err = c.Reset(ctx)
	var fiberErr *fiber.Error
	require.ErrorAs(t, err, &fiberErr)
	assert.Equal(t, http.StatusServiceUnavailable, fiberErr.Code)

	require.NoError(t, env.Teardown(ctx))
	assert.Error(t, c.Health(ctx), "server should be closed by teardown")
}

func TestEnvironment_FixtureServerAfterTeardown(t *testing.T) {
	prov, mig, _ := newFakes()
	var cleanups int
	env := New(WithProvisioner(prov), WithMigrator(mig), WithCleanupFunc(func() { cleanups++ }))
	require.NoError(t, env.Teardown(context.Background()))

	server, err := env.NewFixtureServer()
	assert.ErrorIs(t, err, ErrTornDown)
	assert.Nil(t, server)

	require.NoError(t, env.Teardown(context.Background()))
	assert.Equal(t, 1, cleanups)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "uninitialized", StateUninitialized.String())
	assert.Equal(t, "starting", StateStarting.String())
	assert.Equal(t, "ready", StateReady.String())
	assert.Equal(t, "failed", StateFailed.String())
	assert.Equal(t, "torn_down", StateTornDown.String())
	assert.Equal(t, "unknown", State(42).String())
}
