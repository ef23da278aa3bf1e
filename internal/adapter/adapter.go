// Package adapter contains one activation adapter per payment method
// family. Each adapter composes the shared session handle with its own
// descriptor into a mount callback; adapters are independent and one
// failing never affects its siblings.
package adapter

import (
	"context"
	"sync"

	"github.com/yourorg/payment-activation/internal/config"
	"github.com/yourorg/payment-activation/internal/dom"
	"github.com/yourorg/payment-activation/internal/gateway"
	"github.com/yourorg/payment-activation/internal/payment"
)

// Gateways bundles the payment-network ports the adapters draw from. Only
// the ports needed by configured methods have to be non-nil.
type Gateways struct {
	HostedFields gateway.HostedFieldsGateway
	ThreeDSecure gateway.ThreeDSecureGateway
	DeviceWallet gateway.DeviceWalletGateway
	ScriptWallet gateway.ScriptWalletGateway
	Checkout     gateway.CheckoutGateway
	LocalPayment gateway.LocalPaymentGateway
}

// Verifier is the optional 3-D Secure step wrapped around the card
// adapter's raw token.
type Verifier interface {
	Verify(ctx context.Context, amount payment.Amount, raw payment.Payload, billing map[string]string) (payment.Payload, error)
}

// Callbacks are the cycle-scoped reporting hooks handed to adapters. The
// lifecycle controller builds them so that both outcomes also fire the
// caller's payment-end hook and stale cycles become no-ops.
type Callbacks struct {
	// PaymentRequestable forwards a successful payload.
	PaymentRequestable func(el dom.Element, payload payment.Payload)
	// PaymentError reports a failed sub-flow.
	PaymentError func(el dom.Element, method payment.Method, reason error)
	// PaymentStart may veto a click; always non-nil.
	PaymentStart func(ev dom.Event, el dom.Element) bool
	// ActivationError reports an adapter failure that surfaces after the
	// ready map was published (e.g. mount-time field creation).
	ActivationError func(method payment.Method, reason error)
}

// Env is everything an adapter needs for one activation cycle. The
// session is borrowed: adapters never tear it down.
type Env struct {
	Session     gateway.Session
	Config      *config.Config
	Amount      payment.Amount
	Environment gateway.Environment
	Gateways    Gateways
	Verifier    Verifier
	Callbacks   Callbacks

	// FlowContext outlives Activate and is cancelled at cycle teardown;
	// click sub-flows run on it.
	FlowContext context.Context

	// RegisterReleaser adds a per-method resource release to the cycle
	// teardown (e.g. hosted-fields teardown).
	RegisterReleaser func(release func(ctx context.Context))
}

// Adapter turns one method descriptor into a mount callback. A nil
// callback with a *payment.CapabilityError means the method cannot be
// offered on this device; any other error is an adapter failure.
type Adapter interface {
	Method() payment.Method
	Activate(ctx context.Context, env *Env) (dom.MountFunc, error)
}

// mountOnce wraps bind into a MountFunc that tolerates nil (detach) and
// is idempotent for repeated mounts of the same element.
func mountOnce(bind func(el dom.Element)) dom.MountFunc {
	var mu sync.Mutex
	var current dom.Element
	return func(el dom.Element) {
		mu.Lock()
		if el == nil {
			current = nil
			mu.Unlock()
			return
		}
		if el == current {
			mu.Unlock()
			return
		}
		current = el
		mu.Unlock()
		bind(el)
	}
}

// clickGuard rejects re-entrant clicks on one control: the control is
// disabled for the duration of an in-flight attempt and re-enabled when
// the attempt settles.
type clickGuard struct {
	mu   sync.Mutex
	busy bool
}

func (g *clickGuard) begin(el dom.Element) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.busy {
		return false
	}
	g.busy = true
	el.SetEnabled(false)
	return true
}

func (g *clickGuard) end(el dom.Element) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.busy = false
	el.SetEnabled(true)
}
