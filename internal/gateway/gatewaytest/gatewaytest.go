// Package gatewaytest provides scripted in-memory implementations of the
// gateway ports. Every fake follows the same pattern: exported func
// fields override behavior per test, and a nil field falls back to a
// plausible success default. Call counters are safe for concurrent use
// because adapters activate concurrently.
package gatewaytest

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/yourorg/payment-activation/internal/gateway"
)

// ClientFactory is a scripted gateway.ClientFactory.
type ClientFactory struct {
	CreateFunc func(ctx context.Context, authorization string) (gateway.Session, error)

	mu             sync.Mutex
	createCalls    int
	authorizations []string
}

// Create implements gateway.ClientFactory.
func (f *ClientFactory) Create(ctx context.Context, authorization string) (gateway.Session, error) {
	f.mu.Lock()
	f.createCalls++
	f.authorizations = append(f.authorizations, authorization)
	f.mu.Unlock()

	if f.CreateFunc != nil {
		return f.CreateFunc(ctx, authorization)
	}
	return NewSession(), nil
}

// CreateCalls reports how many sessions were requested.
func (f *ClientFactory) CreateCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.createCalls
}

// Authorizations returns the credentials passed to Create, in order.
func (f *ClientFactory) Authorizations() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.authorizations...)
}

// Session is a scripted gateway.Session.
type Session struct {
	ID           string
	TeardownFunc func(ctx context.Context) error

	mu            sync.Mutex
	teardownCalls int
}

// NewSession creates a Session with a random id.
func NewSession() *Session {
	return &Session{ID: uuid.NewString()}
}

// Teardown implements gateway.Session.
func (s *Session) Teardown(ctx context.Context) error {
	s.mu.Lock()
	s.teardownCalls++
	s.mu.Unlock()

	if s.TeardownFunc != nil {
		return s.TeardownFunc(ctx)
	}
	return nil
}

// TeardownCalls reports how often the session was torn down.
func (s *Session) TeardownCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.teardownCalls
}
