// Package gateway declares the ports to the payment network. The real
// network SDK (session management, tokenization, wallet APIs) lives behind
// these interfaces and is consumed as an opaque asynchronous service; the
// pipeline never performs provider I/O itself. gatewaytest provides
// scripted in-memory implementations.
package gateway

import "context"

// Environment selects provider endpoints and debug behavior.
type Environment string

const (
	EnvironmentTest       Environment = "TEST"
	EnvironmentProduction Environment = "PRODUCTION"
)

// ClientFactory bootstraps one authenticated session from an authorization
// credential. Single attempt, no retry: a retry normally arrives with a
// fresh credential and is the caller's responsibility.
type ClientFactory interface {
	Create(ctx context.Context, authorization string) (Session, error)
}

// Session is the authenticated connection for one activation cycle. It is
// owned by the lifecycle controller; adapters borrow a reference and must
// never tear it down.
type Session interface {
	// Teardown releases the session and every resource the network
	// created from it. Called exactly once, by the owning cycle.
	Teardown(ctx context.Context) error
}
