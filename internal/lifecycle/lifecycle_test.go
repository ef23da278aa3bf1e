package lifecycle

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/payment-activation/internal/adapter"
	"github.com/yourorg/payment-activation/internal/config"
	"github.com/yourorg/payment-activation/internal/coordinator"
	"github.com/yourorg/payment-activation/internal/dom"
	"github.com/yourorg/payment-activation/internal/gateway"
	"github.com/yourorg/payment-activation/internal/gateway/gatewaytest"
	"github.com/yourorg/payment-activation/internal/payment"
)

// fixture bundles a controller with its scripted gateways and a recording
// config.
type fixture struct {
	controller *Controller
	factory    *gatewaytest.ClientFactory
	hosted     *gatewaytest.HostedFieldsGateway
	threeDS    *gatewaytest.ThreeDSecureGateway

	mu            sync.Mutex
	payloads      []payment.Payload
	errors        []error
	errorMethods  []payment.Method
	paymentErrors []error
	ends          int
	teardowns     int
}

func newFixture(debounce time.Duration) *fixture {
	f := &fixture{
		factory: &gatewaytest.ClientFactory{},
		hosted:  &gatewaytest.HostedFieldsGateway{},
		threeDS: &gatewaytest.ThreeDSecureGateway{},
	}
	f.controller = NewController(Options{
		ClientFactory: f.factory,
		ThreeDSecure:  f.threeDS,
		Gateways: adapter.Gateways{
			HostedFields: f.hosted,
			DeviceWallet: &gatewaytest.DeviceWalletGateway{},
			ScriptWallet: &gatewaytest.ScriptWalletGateway{},
			Checkout:     &gatewaytest.CheckoutGateway{},
			LocalPayment: &gatewaytest.LocalPaymentGateway{},
		},
		Coordinator:    coordinator.New(nil),
		DebounceWindow: debounce,
	})
	return f
}

func (f *fixture) config(authorization string, total float64) *config.Config {
	return &config.Config{
		Amount:        payment.Amount{Currency: "EUR", Total: total},
		Authorization: authorization,
		Environment:   gateway.EnvironmentTest,
		Card:          &config.CardOptions{},
		OnError: func(method payment.Method, reason error) {
			f.mu.Lock()
			defer f.mu.Unlock()
			f.errors = append(f.errors, reason)
			f.errorMethods = append(f.errorMethods, method)
		},
		OnPaymentError: func(method payment.Method, reason error) {
			f.mu.Lock()
			defer f.mu.Unlock()
			f.paymentErrors = append(f.paymentErrors, reason)
		},
		OnPaymentRequestable: func(ctx context.Context, payload payment.Payload) error {
			f.mu.Lock()
			defer f.mu.Unlock()
			f.payloads = append(f.payloads, payload)
			return nil
		},
		OnPaymentEnd: func(el dom.Element) {
			f.mu.Lock()
			defer f.mu.Unlock()
			f.ends++
		},
		OnTeardown: func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			f.teardowns++
		},
	}
}

func mountCardForm(methods payment.Methods) (*dom.MemoryElement, *dom.MemoryElement) {
	form := dom.NewMemoryElement("card-form")
	form.Append(dom.NewMemoryElement("number"))
	form.Append(dom.NewMemoryElement("cvv"))
	submit := form.Append(dom.NewMemoryElement("pay").SetAttr("type", "submit"))
	methods[payment.MethodCard](form)
	return form, submit
}

func TestApplyPublishesReadyMethods(t *testing.T) {
	f := newFixture(time.Millisecond)

	_, ok := f.controller.Methods()
	assert.False(t, ok)
	assert.Equal(t, StateIdle, f.controller.State())

	err := f.controller.Apply(context.Background(), f.config("tok-1", 10))
	require.NoError(t, err)

	assert.Equal(t, StateReady, f.controller.State())
	methods, ok := f.controller.Methods()
	require.True(t, ok)
	assert.True(t, methods.Has(payment.MethodCard))
	assert.Equal(t, 1, f.factory.CreateCalls())
}

func TestApplySessionFailureReportsMethodlessError(t *testing.T) {
	f := newFixture(time.Millisecond)
	bootErr := errors.New("bad authorization")
	f.factory.CreateFunc = func(ctx context.Context, authorization string) (gateway.Session, error) {
		return nil, bootErr
	}

	err := f.controller.Apply(context.Background(), f.config("tok-bad", 10))

	var sessErr *payment.SessionError
	require.ErrorAs(t, err, &sessErr)
	assert.Equal(t, StateFailed, f.controller.State())

	_, ok := f.controller.Methods()
	assert.False(t, ok)

	require.Len(t, f.errors, 1)
	assert.Equal(t, payment.Method(""), f.errorMethods[0])
	assert.ErrorAs(t, f.errors[0], &sessErr)
	// No hosted fields were ever attempted.
	assert.Empty(t, f.hosted.Created())
}

func TestApplySameIdentityIsNoOp(t *testing.T) {
	f := newFixture(time.Millisecond)

	require.NoError(t, f.controller.Apply(context.Background(), f.config("tok-1", 10)))
	require.NoError(t, f.controller.Apply(context.Background(), f.config("tok-1", 10)))

	assert.Equal(t, 1, f.factory.CreateCalls())
	assert.Zero(t, f.teardowns)
}

func TestApplyChangedIdentityTearsDownPreviousCycle(t *testing.T) {
	f := newFixture(time.Millisecond)

	require.NoError(t, f.controller.Apply(context.Background(), f.config("tok-1", 10)))
	first := f.factory.Authorizations()
	require.Equal(t, []string{"tok-1"}, first)

	require.NoError(t, f.controller.Apply(context.Background(), f.config("tok-1", 25)))

	assert.Equal(t, 2, f.factory.CreateCalls())
	assert.Equal(t, 1, f.teardowns)
	assert.Equal(t, StateReady, f.controller.State())
}

func TestTeardownIsIdempotent(t *testing.T) {
	f := newFixture(time.Millisecond)
	var session *gatewaytest.Session
	f.factory.CreateFunc = func(ctx context.Context, authorization string) (gateway.Session, error) {
		session = gatewaytest.NewSession()
		return session, nil
	}

	require.NoError(t, f.controller.Apply(context.Background(), f.config("tok-1", 10)))

	f.controller.Teardown(context.Background())
	f.controller.Teardown(context.Background())

	assert.Equal(t, 1, f.teardowns)
	assert.Equal(t, 1, session.TeardownCalls())
	assert.Equal(t, StateTornDown, f.controller.State())
	_, ok := f.controller.Methods()
	assert.False(t, ok)
}

func TestTeardownReleasesHostedFields(t *testing.T) {
	f := newFixture(time.Millisecond)

	require.NoError(t, f.controller.Apply(context.Background(), f.config("tok-1", 10)))
	methods, ok := f.controller.Methods()
	require.True(t, ok)
	mountCardForm(methods)

	require.Len(t, f.hosted.Created(), 1)
	f.controller.Teardown(context.Background())
	assert.Equal(t, 1, f.hosted.Created()[0].TeardownCalls())
}

func TestDebounceSuppressesDuplicateBootstrap(t *testing.T) {
	f := newFixture(time.Hour)

	require.NoError(t, f.controller.Apply(context.Background(), f.config("tok-1", 10)))
	f.controller.Teardown(context.Background())

	// The same identity re-applied inside the window is dropped.
	require.NoError(t, f.controller.Apply(context.Background(), f.config("tok-1", 10)))
	assert.Equal(t, 1, f.factory.CreateCalls())

	// A different identity is never debounced.
	require.NoError(t, f.controller.Apply(context.Background(), f.config("tok-2", 10)))
	assert.Equal(t, 2, f.factory.CreateCalls())
}

func TestCardClickFlowsThroughControllerCallbacks(t *testing.T) {
	f := newFixture(time.Millisecond)

	require.NoError(t, f.controller.Apply(context.Background(), f.config("tok-1", 10)))
	methods, ok := f.controller.Methods()
	require.True(t, ok)

	_, submit := mountCardForm(methods)
	submit.Click()

	require.Len(t, f.payloads, 1)
	assert.Equal(t, payment.MethodCard, f.payloads[0].Method)
	assert.Equal(t, 1, f.ends)
}

func TestThreeDSecureVerifierWiredIntoCardFlow(t *testing.T) {
	f := newFixture(time.Millisecond)
	cfg := f.config("tok-1", 49.5)
	cfg.ThreeDSecure = true

	require.NoError(t, f.controller.Apply(context.Background(), cfg))
	methods, ok := f.controller.Methods()
	require.True(t, ok)

	_, submit := mountCardForm(methods)
	submit.Click()

	require.Len(t, f.payloads, 1)
	assert.True(t, f.payloads[0].LiabilityShifted)

	tds := f.threeDS.Created()[0]
	assert.Equal(t, 1, tds.VerifyCalls())
	assert.Equal(t, "49.50", tds.LastVerify().Amount)

	// The lookup subscription is detached exactly once at teardown.
	f.controller.Teardown(context.Background())
	assert.Equal(t, 1, tds.Removals())
}

func TestThreeDSecureCreateFailureAbortsCycle(t *testing.T) {
	f := newFixture(time.Millisecond)
	f.threeDS.CreateFunc = func(ctx context.Context, session gateway.Session, version int) (gateway.ThreeDSecure, error) {
		return nil, errors.New("3ds unavailable")
	}
	cfg := f.config("tok-1", 10)
	cfg.ThreeDSecure = true

	err := f.controller.Apply(context.Background(), cfg)

	var sessErr *payment.SessionError
	require.ErrorAs(t, err, &sessErr)
	_, ok := f.controller.Methods()
	assert.False(t, ok)
	// The bootstrap session was still released.
	assert.Equal(t, 1, f.teardowns)
}

func TestTeardownDuringBootstrapStillDetachesLookup(t *testing.T) {
	f := newFixture(time.Millisecond)
	tds := &gatewaytest.ThreeDSecure{}
	f.threeDS.CreateFunc = func(ctx context.Context, session gateway.Session, version int) (gateway.ThreeDSecure, error) {
		// Tear down while the verification instance is still being
		// created; the subscription does not exist yet at this point.
		f.controller.Teardown(ctx)
		return tds, nil
	}
	cfg := f.config("tok-1", 10)
	cfg.ThreeDSecure = true

	require.NoError(t, f.controller.Apply(context.Background(), cfg))

	// The late-registered detach ran immediately instead of leaking.
	assert.Equal(t, 1, tds.Removals())
	assert.Equal(t, 1, f.teardowns)
	_, ok := f.controller.Methods()
	assert.False(t, ok)
}

func TestCallbacksAfterTeardownAreNoOps(t *testing.T) {
	f := newFixture(time.Millisecond)

	require.NoError(t, f.controller.Apply(context.Background(), f.config("tok-1", 10)))
	methods, ok := f.controller.Methods()
	require.True(t, ok)

	_, submit := mountCardForm(methods)
	f.controller.Teardown(context.Background())

	submit.Click()
	assert.Empty(t, f.payloads)
	assert.Zero(t, f.ends)
}

func TestApplyRejectsInvalidConfig(t *testing.T) {
	f := newFixture(time.Millisecond)
	cfg := f.config("", 10)

	err := f.controller.Apply(context.Background(), cfg)
	assert.Error(t, err)
	assert.Equal(t, StateIdle, f.controller.State())
	assert.Zero(t, f.factory.CreateCalls())
}
