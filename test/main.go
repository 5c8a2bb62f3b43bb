package test

import (
	"context"
	"testing"

	"github.com/celestiaorg/memberenv/internal/config"
	"github.com/celestiaorg/memberenv/internal/logger"
)

// RunMain runs a test binary inside an environment and returns its exit code.
// bind receives the ready environment before any test runs. Use it from TestMain:
//
//	var env *test.Environment
//
//	func TestMain(m *testing.M) {
//	    os.Exit(test.RunMain(m, func(e *test.Environment) { env = e }))
//	}
//
// Each test then starts with env.BeginCase(t).
func RunMain(m *testing.M, bind func(*Environment), opts ...Option) int {
	cfg, err := config.LoadEnvConfig()
	if err != nil {
		logger.Errorf("Failed to load environment configuration: %v", err)
		return 1
	}
	env, err := NewFromConfig(cfg, opts...)
	if err != nil {
		logger.Errorf("Failed to create test environment: %v", err)
		return 1
	}
	if err := env.Setup(context.Background()); err != nil {
		logger.Errorf("Failed to set up test environment: %v", err)
		return 1
	}
	if bind != nil {
		bind(env)
	}

	code := m.Run()

	if err := env.Teardown(context.Background()); err != nil {
		logger.Errorf("Failed to tear down test environment: %v", err)
		if code == 0 {
			code = 1
		}
	}
	return code
}
