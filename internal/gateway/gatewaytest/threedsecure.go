package gatewaytest

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/yourorg/payment-activation/internal/gateway"
	"github.com/yourorg/payment-activation/internal/payment"
)

// ThreeDSecureGateway is a scripted gateway.ThreeDSecureGateway.
type ThreeDSecureGateway struct {
	CreateFunc func(ctx context.Context, session gateway.Session, version int) (gateway.ThreeDSecure, error)

	mu      sync.Mutex
	created []*ThreeDSecure
}

// Create implements gateway.ThreeDSecureGateway.
func (g *ThreeDSecureGateway) Create(
	ctx context.Context,
	session gateway.Session,
	version int,
) (gateway.ThreeDSecure, error) {
	if g.CreateFunc != nil {
		return g.CreateFunc(ctx, session, version)
	}
	tds := &ThreeDSecure{}
	g.mu.Lock()
	g.created = append(g.created, tds)
	g.mu.Unlock()
	return tds, nil
}

// Created returns the fakes produced by the default Create.
func (g *ThreeDSecureGateway) Created() []*ThreeDSecure {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]*ThreeDSecure(nil), g.created...)
}

// ThreeDSecure is a scripted gateway.ThreeDSecure. The default VerifyCard
// re-issues the payload with a fresh nonce and liability shifted, the way
// a successful frictionless verification does.
type ThreeDSecure struct {
	VerifyCardFunc func(ctx context.Context, opts gateway.VerifyCardOptions) (payment.Payload, error)

	mu          sync.Mutex
	subscribers []func(data gateway.LookupData, next func())
	removals    int
	verifyCalls int
	lastVerify  gateway.VerifyCardOptions
}

// OnLookupComplete implements gateway.ThreeDSecure.
func (t *ThreeDSecure) OnLookupComplete(fn func(data gateway.LookupData, next func())) (remove func()) {
	t.mu.Lock()
	t.subscribers = append(t.subscribers, fn)
	index := len(t.subscribers) - 1
	t.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			t.mu.Lock()
			t.subscribers[index] = nil
			t.removals++
			t.mu.Unlock()
		})
	}
}

// EmitLookup delivers a lookup event to the live subscribers and reports
// whether every subscriber called the continuation.
func (t *ThreeDSecure) EmitLookup(data gateway.LookupData) bool {
	t.mu.Lock()
	subscribers := append([]func(gateway.LookupData, func()){}, t.subscribers...)
	t.mu.Unlock()

	continued := true
	for _, fn := range subscribers {
		if fn == nil {
			continue
		}
		called := false
		fn(data, func() { called = true })
		continued = continued && called
	}
	return continued
}

// Removals reports how many subscriptions were detached.
func (t *ThreeDSecure) Removals() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.removals
}

// VerifyCard implements gateway.ThreeDSecure.
func (t *ThreeDSecure) VerifyCard(ctx context.Context, opts gateway.VerifyCardOptions) (payment.Payload, error) {
	t.mu.Lock()
	t.verifyCalls++
	t.lastVerify = opts
	t.mu.Unlock()

	if t.VerifyCardFunc != nil {
		return t.VerifyCardFunc(ctx, opts)
	}
	return payment.Payload{
		Type:             payment.PayloadTypeCreditCard,
		Nonce:            uuid.NewString(),
		Details:          payment.PayloadDetails{Bin: opts.Bin},
		LiabilityShifted: true,
	}, nil
}

// VerifyCalls reports how many verifications ran.
func (t *ThreeDSecure) VerifyCalls() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.verifyCalls
}

// LastVerify returns the options of the most recent verification.
func (t *ThreeDSecure) LastVerify() gateway.VerifyCardOptions {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastVerify
}
