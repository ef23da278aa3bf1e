// Package lifecycle drives activation cycles: one cycle per
// (credential, amount) configuration identity, from session bootstrap
// through concurrent method initialization to a published ready-methods
// map, and eventually to an idempotent teardown. The controller owns the
// session handle; adapters only borrow it.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/yourorg/payment-activation/internal/adapter"
	"github.com/yourorg/payment-activation/internal/config"
	"github.com/yourorg/payment-activation/internal/coordinator"
	"github.com/yourorg/payment-activation/internal/dom"
	"github.com/yourorg/payment-activation/internal/gateway"
	"github.com/yourorg/payment-activation/internal/metrics"
	"github.com/yourorg/payment-activation/internal/payment"
)

// State is the controller's position in the cycle state machine.
type State int

const (
	StateIdle State = iota
	StateSessionCreating
	StateMethodsInitializing
	StateReady
	StateFailed
	StateTornDown
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateSessionCreating:
		return "SessionCreating"
	case StateMethodsInitializing:
		return "MethodsInitializing"
	case StateReady:
		return "Ready"
	case StateFailed:
		return "Failed"
	case StateTornDown:
		return "TornDown"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// threeDSecureVersion is the verification protocol version in use.
const threeDSecureVersion = 2

// defaultDebounceWindow suppresses a duplicate bootstrap for the same
// identity re-triggered by a hosting framework within a short window.
const defaultDebounceWindow = 100 * time.Millisecond

// Options configure a Controller.
type Options struct {
	ClientFactory gateway.ClientFactory
	ThreeDSecure  gateway.ThreeDSecureGateway
	Gateways      adapter.Gateways
	Coordinator   *coordinator.Coordinator
	// DebounceWindow defaults to 100ms when zero.
	DebounceWindow time.Duration
}

// Controller runs activation cycles for one logical component instance.
type Controller struct {
	clientFactory gateway.ClientFactory
	threeDSecure  gateway.ThreeDSecureGateway
	gateways      adapter.Gateways
	coordinator   *coordinator.Coordinator
	debounce      time.Duration

	mu           sync.Mutex
	state        State
	current      *cycle
	lastIdentity config.Identity
	lastCreation time.Time
}

// cycle is one activation cycle's private state.
type cycle struct {
	id        string
	identity  config.Identity
	createdAt time.Time
	cfg       *config.Config

	session    gateway.Session
	flowCtx    context.Context
	flowCancel context.CancelFunc

	releaserMu sync.Mutex
	releasers  []func(ctx context.Context)
	released   bool

	teardownOnce sync.Once
	methods      payment.Methods
}

// NewController creates a Controller.
func NewController(opts Options) *Controller {
	if opts.ClientFactory == nil {
		panic("ClientFactory cannot be nil")
	}
	if opts.Coordinator == nil {
		panic("Coordinator cannot be nil")
	}
	debounce := opts.DebounceWindow
	if debounce == 0 {
		debounce = defaultDebounceWindow
	}
	return &Controller{
		clientFactory: opts.ClientFactory,
		threeDSecure:  opts.ThreeDSecure,
		gateways:      opts.Gateways,
		coordinator:   opts.Coordinator,
		debounce:      debounce,
		state:         StateIdle,
	}
}

// State returns the controller's current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Methods returns the published ready-methods map. ok is false until the
// current cycle reaches Ready; callers should show their loading
// placeholder meanwhile.
func (c *Controller) Methods() (payment.Methods, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateReady || c.current == nil {
		return nil, false
	}
	return c.current.methods, true
}

// Placeholder returns the caller's loading content while no map is
// published.
func (c *Controller) Placeholder(cfg *config.Config) string {
	if _, ok := c.Methods(); ok {
		return ""
	}
	if cfg.OnLoading != nil {
		return cfg.OnLoading()
	}
	return "..."
}

// Apply drives the controller toward the given configuration. A changed
// identity tears down the previous cycle exactly once and bootstraps a
// new one; an unchanged identity is a no-op. The returned error is the
// session bootstrap failure, already reported through OnError.
func (c *Controller) Apply(ctx context.Context, cfg *config.Config) error {
	tracer := otel.Tracer("lifecycle")
	ctx, span := tracer.Start(ctx, "Controller.Apply")
	defer span.End()

	if err := cfg.Validate(); err != nil {
		return err
	}
	identity := cfg.Identity()
	span.SetAttributes(attribute.String("cycle.identity", identity.AmountKey))

	c.mu.Lock()
	if c.current != nil && c.current.identity == identity {
		// Same configuration, live cycle: nothing to do.
		c.mu.Unlock()
		return nil
	}
	if c.lastIdentity == identity && time.Since(c.lastCreation) < c.debounce {
		// Double-invocation guard: a second bootstrap for the identity we
		// just started would create two sessions and leak one.
		c.mu.Unlock()
		log.Printf("lifecycle: suppressed duplicate bootstrap for %s", identity)
		return nil
	}

	previous := c.current
	cy := &cycle{
		id:        uuid.NewString(),
		identity:  identity,
		createdAt: time.Now(),
		cfg:       cfg,
	}
	cy.flowCtx, cy.flowCancel = context.WithCancel(context.Background())
	c.current = cy
	c.state = StateSessionCreating
	c.lastIdentity = identity
	c.lastCreation = cy.createdAt
	c.mu.Unlock()

	if previous != nil {
		c.teardownCycle(ctx, previous)
	}

	return c.bootstrap(ctx, cy)
}

// Teardown tears down the current cycle, if any. Safe to call repeatedly.
func (c *Controller) Teardown(ctx context.Context) {
	c.mu.Lock()
	cy := c.current
	c.mu.Unlock()
	if cy != nil {
		c.teardownCycle(ctx, cy)
	}
}

func (c *Controller) bootstrap(ctx context.Context, cy *cycle) error {
	cfg := cy.cfg

	start := time.Now()
	session, err := c.clientFactory.Create(ctx, cfg.Authorization)
	metrics.ObserveSessionCreate(time.Since(start).Seconds())
	if err != nil {
		sessionErr := &payment.SessionError{Err: err}
		c.failCycle(cy, sessionErr)
		return sessionErr
	}
	cy.session = session
	if cy.done() {
		// Torn down while the session was still being created; the teardown
		// pass could not see it, so release it here.
		if err := session.Teardown(ctx); err != nil {
			log.Printf("lifecycle: session teardown: %v", err)
		}
		return nil
	}

	var verifier adapter.Verifier
	if cfg.ThreeDSecure {
		if c.threeDSecure == nil {
			sessionErr := &payment.SessionError{Err: fmt.Errorf("verification requested but no gateway configured")}
			c.failCycle(cy, sessionErr)
			c.teardownCycle(ctx, cy)
			return sessionErr
		}
		tds, err := c.threeDSecure.Create(ctx, session, threeDSecureVersion)
		if err != nil {
			sessionErr := &payment.SessionError{Err: fmt.Errorf("creating verification instance: %w", err)}
			c.failCycle(cy, sessionErr)
			c.teardownCycle(ctx, cy)
			return sessionErr
		}
		// The lookup subscription attaches here; its detach is a cycle
		// releaser so a teardown racing the bootstrap still runs it.
		remove := tds.OnLookupComplete(func(data gateway.LookupData, next func()) {
			log.Printf("lifecycle: verification lookup complete for cycle %s", cy.id)
			next()
		})
		cy.addReleaser(func(context.Context) { remove() })
		verifier = &threeDSVerifier{instance: tds}
	}

	c.mu.Lock()
	if c.current != cy {
		// Superseded while bootstrapping; discard quietly.
		c.mu.Unlock()
		c.teardownCycle(ctx, cy)
		return nil
	}
	c.state = StateMethodsInitializing
	c.mu.Unlock()

	env := &adapter.Env{
		Session:          session,
		Config:           cfg,
		Amount:           cfg.Amount,
		Environment:      cfg.Environment,
		Gateways:         c.gateways,
		Verifier:         verifier,
		Callbacks:        c.cycleCallbacks(cy),
		FlowContext:      cy.flowCtx,
		RegisterReleaser: cy.addReleaser,
	}

	methods := c.coordinator.ActivateAll(ctx, env, buildAdapters(cfg), func(method payment.Method, reason error) {
		if cy.done() {
			return
		}
		if cfg.OnError != nil {
			cfg.OnError(method, reason)
		}
	})

	c.mu.Lock()
	if c.current != cy {
		// A newer identity arrived while methods were initializing; the
		// stale map is discarded by identity, never published.
		c.mu.Unlock()
		c.teardownCycle(ctx, cy)
		return nil
	}
	cy.methods = methods
	c.state = StateReady
	c.mu.Unlock()

	metrics.CountCycle(metrics.ResultReady)
	log.Printf("lifecycle: cycle %s ready with %d method(s)", cy.id, len(methods))
	return nil
}

// failCycle records a session-level abort: terminal, reported without a
// method identifier.
func (c *Controller) failCycle(cy *cycle, reason error) {
	c.mu.Lock()
	if c.current == cy {
		c.state = StateFailed
	}
	c.mu.Unlock()

	metrics.CountCycle(metrics.ResultSessionError)
	if cy.cfg.OnError != nil {
		cy.cfg.OnError("", reason)
	}
}

// teardownCycle releases everything the cycle owns, exactly once: the
// registered releasers in reverse order (verification detach, per-method
// resources), the session handle, the published map, then the caller's
// teardown notification.
func (c *Controller) teardownCycle(ctx context.Context, cy *cycle) {
	cy.teardownOnce.Do(func() {
		cy.flowCancel()

		cy.releaserMu.Lock()
		releasers := cy.releasers
		cy.releasers = nil
		cy.released = true
		cy.releaserMu.Unlock()
		for i := len(releasers) - 1; i >= 0; i-- {
			releasers[i](ctx)
		}

		if cy.session != nil {
			if err := cy.session.Teardown(ctx); err != nil {
				log.Printf("lifecycle: session teardown: %v", err)
			}
		}

		c.mu.Lock()
		cy.methods = nil
		if c.current == cy {
			c.current = nil
			c.state = StateTornDown
		}
		c.mu.Unlock()

		metrics.CountCycle(metrics.ResultTornDown)
		if cy.cfg.OnTeardown != nil {
			cy.cfg.OnTeardown()
		}
	})
}

// addReleaser registers a teardown action. A registration that arrives
// after the cycle was already torn down runs at once so the resource
// cannot outlive the cycle.
func (cy *cycle) addReleaser(release func(ctx context.Context)) {
	cy.releaserMu.Lock()
	if cy.released {
		cy.releaserMu.Unlock()
		release(context.Background())
		return
	}
	cy.releasers = append(cy.releasers, release)
	cy.releaserMu.Unlock()
}

// done reports whether the cycle was torn down; late callbacks from a
// torn-down cycle become no-ops.
func (cy *cycle) done() bool {
	select {
	case <-cy.flowCtx.Done():
		return true
	default:
		return false
	}
}

// cycleCallbacks builds the adapter-facing hooks: both payment outcomes
// also fire the caller's payment-end hook, and everything is suppressed
// once the cycle is torn down.
func (c *Controller) cycleCallbacks(cy *cycle) adapter.Callbacks {
	cfg := cy.cfg
	return adapter.Callbacks{
		PaymentRequestable: func(el dom.Element, payload payment.Payload) {
			if cy.done() {
				return
			}
			metrics.CountPayment(string(payload.Method), metrics.ResultRequestable)
			if err := cfg.OnPaymentRequestable(cy.flowCtx, payload); err != nil {
				log.Printf("lifecycle: payment requestable hook: %v", err)
			}
			if cfg.OnPaymentEnd != nil {
				cfg.OnPaymentEnd(el)
			}
		},
		PaymentError: func(el dom.Element, method payment.Method, reason error) {
			if cy.done() {
				return
			}
			if isCancelled(reason) {
				metrics.CountPayment(string(method), metrics.ResultCancelled)
			} else {
				metrics.CountPayment(string(method), metrics.ResultError)
			}
			if cfg.OnPaymentError != nil {
				cfg.OnPaymentError(method, reason)
			}
			if cfg.OnPaymentEnd != nil {
				cfg.OnPaymentEnd(el)
			}
		},
		PaymentStart: func(ev dom.Event, el dom.Element) bool {
			if cy.done() {
				return false
			}
			if cfg.OnPaymentStart != nil {
				return cfg.OnPaymentStart(ev, el)
			}
			return true
		},
		ActivationError: func(method payment.Method, reason error) {
			if cy.done() {
				return
			}
			metrics.CountMethodActivation(string(method), metrics.ResultError)
			if cfg.OnError != nil {
				cfg.OnError(method, reason)
			}
		},
	}
}

// buildAdapters maps present descriptors to adapters; descriptor presence
// is the sole trigger for attempting a method.
func buildAdapters(cfg *config.Config) []adapter.Adapter {
	var adapters []adapter.Adapter
	if cfg.Alipay != nil {
		opts := *cfg.Alipay
		if opts.Method == "" {
			opts.Method = payment.MethodAlipay
		}
		adapters = append(adapters, adapter.LocalPayment{Options: &opts})
	}
	if cfg.ApplePay != nil {
		adapters = append(adapters, adapter.ApplePay{})
	}
	if cfg.Card != nil {
		adapters = append(adapters, adapter.Card{})
	}
	if cfg.GooglePay != nil {
		adapters = append(adapters, adapter.GooglePay{})
	}
	if cfg.PayPal != nil {
		adapters = append(adapters, adapter.PayPal{})
	}
	return adapters
}

func isCancelled(err error) bool {
	var cancelled *payment.CancelledError
	return errors.As(err, &cancelled)
}
