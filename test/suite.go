package test

import (
	"context"

	"github.com/stretchr/testify/suite"

	"github.com/celestiaorg/memberenv/internal/config"
)

// Suite runs the environment lifecycle around a testify suite: SetupSuite
// starts the environment, SetupTest resets it and TearDownSuite tears it down.
// Embed it in a suite struct and use Env and Context from the test methods.
type Suite struct {
	suite.Suite

	// Env is created in SetupSuite unless it is set beforehand
	Env *Environment
	// Options are applied when SetupSuite creates Env
	Options []Option

	ctx context.Context
}

// SetupSuite sets up the test suite
func (s *Suite) SetupSuite() {
	if s.Env == nil {
		cfg, err := config.LoadEnvConfig()
		s.Require().NoError(err, "Failed to load environment configuration")

		env, err := NewFromConfig(cfg, s.Options...)
		s.Require().NoError(err, "Failed to create test environment")
		s.Env = env
	}
	s.Require().NoError(s.Env.Setup(context.Background()), "Failed to set up test environment")
}

// TearDownSuite tears down the test suite
func (s *Suite) TearDownSuite() {
	if s.Env == nil {
		return
	}
	s.NoError(s.Env.Teardown(context.Background()), "Failed to tear down test environment")
}

// SetupTest resets the store before each case
func (s *Suite) SetupTest() {
	s.ctx = s.Env.CaseContext(s.T())
	s.Require().NoError(s.Env.Reset(s.ctx), "Failed to reset test environment")
}

// Context returns the current case's context, bounded by the case timeout
func (s *Suite) Context() context.Context {
	if s.ctx == nil {
		return context.Background()
	}
	return s.ctx
}
