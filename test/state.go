package test

import "errors"

// State is a stage of the environment lifecycle
type State int

const (
	// StateUninitialized is the state of a new environment
	StateUninitialized State = iota
	// StateStarting covers provisioning, migration and opening handles
	StateStarting
	// StateReady accepts resets and seeding
	StateReady
	// StateFailed is entered when any lifecycle step fails; only Teardown is accepted
	StateFailed
	// StateTornDown is terminal
	StateTornDown
)

var (
	// ErrNotReady is returned by operations that need a Ready environment
	ErrNotReady = errors.New("test environment is not ready")
	// ErrAlreadyStarted is returned when Start is called more than once
	ErrAlreadyStarted = errors.New("test environment already started")
	// ErrTornDown is returned by every operation after Teardown
	ErrTornDown = errors.New("test environment has been torn down")
	// ErrOutOfOrder is returned when a startup step is called before the one it depends on
	ErrOutOfOrder = errors.New("test environment startup step out of order")
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateStarting:
		return "starting"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	case StateTornDown:
		return "torn_down"
	default:
		return "unknown"
	}
}
