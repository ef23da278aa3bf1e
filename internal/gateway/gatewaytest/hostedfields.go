package gatewaytest

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/yourorg/payment-activation/internal/gateway"
	"github.com/yourorg/payment-activation/internal/payment"
)

// HostedFieldsGateway is a scripted gateway.HostedFieldsGateway.
type HostedFieldsGateway struct {
	CreateFunc func(ctx context.Context, session gateway.Session, opts gateway.HostedFieldsOptions) (gateway.HostedFields, error)

	mu       sync.Mutex
	created  []*HostedFields
	lastOpts gateway.HostedFieldsOptions
}

// Create implements gateway.HostedFieldsGateway. The default keeps the
// created fake reachable through Created for later scripting.
func (g *HostedFieldsGateway) Create(
	ctx context.Context,
	session gateway.Session,
	opts gateway.HostedFieldsOptions,
) (gateway.HostedFields, error) {
	g.mu.Lock()
	g.lastOpts = opts
	g.mu.Unlock()

	if g.CreateFunc != nil {
		return g.CreateFunc(ctx, session, opts)
	}

	hf := NewHostedFields(opts)
	g.mu.Lock()
	g.created = append(g.created, hf)
	g.mu.Unlock()
	return hf, nil
}

// Created returns the fakes produced by the default Create.
func (g *HostedFieldsGateway) Created() []*HostedFields {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]*HostedFields(nil), g.created...)
}

// LastOptions returns the options from the most recent Create call.
func (g *HostedFieldsGateway) LastOptions() gateway.HostedFieldsOptions {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastOpts
}

// HostedFields is a scripted gateway.HostedFields. The default state marks
// every configured field valid.
type HostedFields struct {
	StateFunc    func() gateway.FieldsState
	TokenizeFunc func(ctx context.Context, opts gateway.TokenizeOptions) (payment.Payload, error)
	TeardownFunc func(ctx context.Context) error

	mu            sync.Mutex
	configured    []gateway.FieldKey
	focused       []gateway.FieldKey
	tokenizeCalls int
	teardownCalls int
}

// NewHostedFields creates a fake over the configured field set.
func NewHostedFields(opts gateway.HostedFieldsOptions) *HostedFields {
	hf := &HostedFields{}
	for _, key := range gateway.FieldKeys {
		if _, ok := opts.Fields[key]; ok {
			hf.configured = append(hf.configured, key)
		}
	}
	return hf
}

// State implements gateway.HostedFields.
func (h *HostedFields) State() gateway.FieldsState {
	if h.StateFunc != nil {
		return h.StateFunc()
	}
	state := gateway.FieldsState{Fields: map[gateway.FieldKey]gateway.FieldState{}}
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, key := range h.configured {
		state.Fields[key] = gateway.FieldState{IsValid: true}
	}
	return state
}

// Focus implements gateway.HostedFields.
func (h *HostedFields) Focus(key gateway.FieldKey) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.focused = append(h.focused, key)
}

// Focused returns the keys focused so far, in order.
func (h *HostedFields) Focused() []gateway.FieldKey {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]gateway.FieldKey(nil), h.focused...)
}

// Tokenize implements gateway.HostedFields.
func (h *HostedFields) Tokenize(ctx context.Context, opts gateway.TokenizeOptions) (payment.Payload, error) {
	h.mu.Lock()
	h.tokenizeCalls++
	h.mu.Unlock()

	if h.TokenizeFunc != nil {
		return h.TokenizeFunc(ctx, opts)
	}
	return payment.Payload{
		Type:  payment.PayloadTypeCreditCard,
		Nonce: uuid.NewString(),
		Details: payment.PayloadDetails{
			Bin:      "411111",
			CardType: "Visa",
			LastFour: "1111",
			LastTwo:  "11",
		},
	}, nil
}

// TokenizeCalls reports how many tokenization attempts were made.
func (h *HostedFields) TokenizeCalls() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.tokenizeCalls
}

// Teardown implements gateway.HostedFields.
func (h *HostedFields) Teardown(ctx context.Context) error {
	h.mu.Lock()
	h.teardownCalls++
	h.mu.Unlock()

	if h.TeardownFunc != nil {
		return h.TeardownFunc(ctx)
	}
	return nil
}

// TeardownCalls reports how often the field set was released.
func (h *HostedFields) TeardownCalls() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.teardownCalls
}
