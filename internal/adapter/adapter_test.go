package adapter

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yourorg/payment-activation/internal/config"
	"github.com/yourorg/payment-activation/internal/dom"
	"github.com/yourorg/payment-activation/internal/gateway/gatewaytest"
	"github.com/yourorg/payment-activation/internal/payment"
)

// capture records every callback an adapter fires during a test.
type capture struct {
	mu sync.Mutex

	payloads          []payment.Payload
	paymentErrors     []error
	paymentMethods    []payment.Method
	activationErrors  []error
	activationMethods []payment.Method
	starts            int
	releasers         []func(ctx context.Context)

	// vetoStart makes PaymentStart reject every click.
	vetoStart bool
}

func (c *capture) callbacks() Callbacks {
	return Callbacks{
		PaymentRequestable: func(el dom.Element, payload payment.Payload) {
			c.mu.Lock()
			defer c.mu.Unlock()
			c.payloads = append(c.payloads, payload)
		},
		PaymentError: func(el dom.Element, method payment.Method, reason error) {
			c.mu.Lock()
			defer c.mu.Unlock()
			c.paymentErrors = append(c.paymentErrors, reason)
			c.paymentMethods = append(c.paymentMethods, method)
		},
		PaymentStart: func(ev dom.Event, el dom.Element) bool {
			c.mu.Lock()
			defer c.mu.Unlock()
			c.starts++
			return !c.vetoStart
		},
		ActivationError: func(method payment.Method, reason error) {
			c.mu.Lock()
			defer c.mu.Unlock()
			c.activationErrors = append(c.activationErrors, reason)
			c.activationMethods = append(c.activationMethods, method)
		},
	}
}

func (c *capture) register(release func(ctx context.Context)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.releasers = append(c.releasers, release)
}

// newTestEnv builds an Env over scripted gateways and a capture for its
// callbacks.
func newTestEnv(cfg *config.Config, gws Gateways) (*Env, *capture) {
	rec := &capture{}
	if cfg.Amount.Currency == "" {
		cfg.Amount = payment.Amount{Currency: "EUR", Total: 19.99}
	}
	env := &Env{
		Session:          gatewaytest.NewSession(),
		Config:           cfg,
		Amount:           cfg.Amount,
		Environment:      cfg.Environment,
		Gateways:         gws,
		Callbacks:        rec.callbacks(),
		FlowContext:      context.Background(),
		RegisterReleaser: rec.register,
	}
	return env, rec
}

func TestMountOnceIgnoresRepeatedAndNilMounts(t *testing.T) {
	binds := 0
	mount := mountOnce(func(el dom.Element) { binds++ })

	el := dom.NewMemoryElement("target")
	mount(el)
	mount(el)
	assert.Equal(t, 1, binds)

	mount(nil)
	mount(el)
	assert.Equal(t, 2, binds)
}

func TestClickGuardDisablesControlWhileBusy(t *testing.T) {
	var guard clickGuard
	el := dom.NewMemoryElement("button")

	assert.True(t, guard.begin(el))
	assert.False(t, el.Enabled())
	assert.False(t, guard.begin(el))

	guard.end(el)
	assert.True(t, el.Enabled())
	assert.True(t, guard.begin(el))
}
