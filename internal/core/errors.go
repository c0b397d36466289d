package core

import (
	"errors"
)

var (
	// Channel errors.
	ErrChannel     = errors.New("signal channel error")
	ErrNoSignal    = errors.New("no demand signal could be claimed")
	ErrNotHeld     = errors.New("message is not held by this client")
	ErrNoSuchQueue = errors.New("signal queue not found")

	// Orchestration errors.
	ErrOrchestrator       = errors.New("orchestrator error")
	ErrFleetNotFound      = errors.New("fleet not found")
	ErrFleetNotReady      = errors.New("fleet did not become ready in time")
	ErrEndpointResolution = errors.New("failed to resolve endpoint")
	ErrDuplicateEndpoint  = errors.New("duplicate endpoint")
	ErrNoEndpoints        = errors.New("no endpoints to hand off")

	// Startup errors.
	ErrUnauthorized  = errors.New("unauthorized")
	ErrIdentity      = errors.New("failed to verify identity")
	ErrInvalidConfig = errors.New("invalid configuration")
	ErrUnknownAction = errors.New("unknown provision action")
	ErrNotRoot       = errors.New("must be run as root")
)
