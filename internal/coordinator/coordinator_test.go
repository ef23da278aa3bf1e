package coordinator

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/payment-activation/internal/adapter"
	"github.com/yourorg/payment-activation/internal/config"
	"github.com/yourorg/payment-activation/internal/dom"
	"github.com/yourorg/payment-activation/internal/gateway"
	"github.com/yourorg/payment-activation/internal/payment"
	"github.com/yourorg/payment-activation/internal/policy"
)

// stubAdapter is a scripted adapter for coordinator tests.
type stubAdapter struct {
	method payment.Method
	mount  dom.MountFunc
	err    error
	delay  chan struct{}
}

func (s stubAdapter) Method() payment.Method { return s.method }

func (s stubAdapter) Activate(ctx context.Context, env *adapter.Env) (dom.MountFunc, error) {
	if s.delay != nil {
		<-s.delay
	}
	return s.mount, s.err
}

type reportSink struct {
	mu      sync.Mutex
	methods []payment.Method
	reasons []error
}

func (r *reportSink) report(method payment.Method, reason error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.methods = append(r.methods, method)
	r.reasons = append(r.reasons, reason)
}

func testEnv() *adapter.Env {
	return &adapter.Env{
		Config:      &config.Config{},
		Amount:      payment.Amount{Currency: "EUR", Total: 25},
		Environment: gateway.EnvironmentTest,
		FlowContext: context.Background(),
	}
}

func noopMount(el dom.Element) {}

func TestActivateAllCollectsReadyMethods(t *testing.T) {
	c := New(nil)
	sink := &reportSink{}

	adapters := []adapter.Adapter{
		stubAdapter{method: payment.MethodCard, mount: noopMount},
		stubAdapter{method: payment.MethodPayPal, mount: noopMount},
	}

	ready := c.ActivateAll(context.Background(), testEnv(), adapters, sink.report)

	assert.Len(t, ready, 2)
	assert.True(t, ready.Has(payment.MethodCard))
	assert.True(t, ready.Has(payment.MethodPayPal))
	assert.Empty(t, sink.methods)
}

func TestActivateAllFailureIsolatedToItsMethod(t *testing.T) {
	c := New(nil)
	sink := &reportSink{}
	boom := errors.New("create failed")

	adapters := []adapter.Adapter{
		stubAdapter{method: payment.MethodCard, mount: noopMount},
		stubAdapter{method: payment.MethodGooglePay, err: boom},
	}

	ready := c.ActivateAll(context.Background(), testEnv(), adapters, sink.report)

	assert.Len(t, ready, 1)
	assert.True(t, ready.Has(payment.MethodCard))
	require.Len(t, sink.methods, 1)
	assert.Equal(t, payment.MethodGooglePay, sink.methods[0])
	assert.ErrorIs(t, sink.reasons[0], boom)
}

func TestActivateAllNilMountWithoutErrorIsUnavailable(t *testing.T) {
	c := New(nil)
	sink := &reportSink{}

	adapters := []adapter.Adapter{
		stubAdapter{method: payment.MethodApplePay},
	}

	ready := c.ActivateAll(context.Background(), testEnv(), adapters, sink.report)

	assert.Empty(t, ready)
	require.Len(t, sink.reasons, 1)
	var capErr *payment.CapabilityError
	assert.ErrorAs(t, sink.reasons[0], &capErr)
}

func TestActivateAllWaitsForSlowestAdapter(t *testing.T) {
	c := New(nil)
	sink := &reportSink{}
	release := make(chan struct{})

	adapters := []adapter.Adapter{
		stubAdapter{method: payment.MethodCard, mount: noopMount},
		stubAdapter{method: payment.MethodPayPal, mount: noopMount, delay: release},
	}

	done := make(chan payment.Methods)
	go func() {
		done <- c.ActivateAll(context.Background(), testEnv(), adapters, sink.report)
	}()

	select {
	case <-done:
		t.Fatal("map published before all adapters settled")
	default:
	}

	close(release)
	ready := <-done
	assert.Len(t, ready, 2)
}

func TestActivateAllPolicyBlocksMethod(t *testing.T) {
	pol, err := policy.NewMethodPolicy([]policy.RuleConfig{
		{Name: "NoWalletOverCap", Expression: "method != 'googlePay' || total < 10"},
	})
	require.NoError(t, err)

	c := New(pol)
	sink := &reportSink{}

	adapters := []adapter.Adapter{
		stubAdapter{method: payment.MethodCard, mount: noopMount},
		stubAdapter{method: payment.MethodGooglePay, mount: noopMount},
	}

	ready := c.ActivateAll(context.Background(), testEnv(), adapters, sink.report)

	assert.Len(t, ready, 1)
	assert.False(t, ready.Has(payment.MethodGooglePay))
	require.Len(t, sink.reasons, 1)
	var capErr *payment.CapabilityError
	require.ErrorAs(t, sink.reasons[0], &capErr)
	assert.Contains(t, capErr.Reason, "NoWalletOverCap")
}
