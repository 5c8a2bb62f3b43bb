package migrations

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/celestiaorg/memberenv/internal/constants"
)

// ErrMigrationFailed marks a schema migration that did not complete.
// No test can run against an unmigrated schema, so callers treat it as fatal.
var ErrMigrationFailed = errors.New("schema migration failed")

// Migrator brings the database at databaseURL up to the latest schema
type Migrator interface {
	Migrate(ctx context.Context, databaseURL string) error
}

// EmbeddedMigrator applies the embedded migrations in-process
type EmbeddedMigrator struct {
	Config Config
}

// NewEmbeddedMigrator returns a migrator using DefaultConfig
func NewEmbeddedMigrator() *EmbeddedMigrator {
	return &EmbeddedMigrator{Config: DefaultConfig()}
}

// Migrate implements Migrator
func (m *EmbeddedMigrator) Migrate(ctx context.Context, databaseURL string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrMigrationFailed, err)
	}
	cfg := m.Config
	cfg.DatabaseURL = databaseURL

	service, err := NewMigrationService(cfg)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMigrationFailed, err)
	}
	defer func() { _ = service.Close() }()

	if err := service.Up(); err != nil {
		return fmt.Errorf("%w: %v", ErrMigrationFailed, err)
	}
	return nil
}

// CommandMigrator runs an external migration tool. The connection string is
// handed over in the DATABASE_URL environment variable and the tool must exit 0.
type CommandMigrator struct {
	Name string
	Args []string
	// Dir is the working directory of the tool; empty means the current directory
	Dir string
}

// ParseCommand splits a command line such as "go run ./cmd/migrate" into a CommandMigrator
func ParseCommand(command string) (*CommandMigrator, error) {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return nil, errors.New("migration command is empty")
	}
	return &CommandMigrator{Name: fields[0], Args: fields[1:]}, nil
}

// Migrate implements Migrator
func (m *CommandMigrator) Migrate(ctx context.Context, databaseURL string) error {
	cmd := exec.CommandContext(ctx, m.Name, m.Args...)
	cmd.Dir = m.Dir
	cmd.Env = append(os.Environ(), constants.EnvDatabaseURL+"="+databaseURL)

	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("%w: %s exited with code %d: %s",
				ErrMigrationFailed, m.Name, exitErr.ExitCode(), strings.TrimSpace(output.String()))
		}
		return fmt.Errorf("%w: failed to run %s: %v", ErrMigrationFailed, m.Name, err)
	}
	return nil
}

// FromCommand returns a CommandMigrator when command is set, otherwise the embedded migrator
func FromCommand(command string) (Migrator, error) {
	if strings.TrimSpace(command) == "" {
		return NewEmbeddedMigrator(), nil
	}
	return ParseCommand(command)
}
