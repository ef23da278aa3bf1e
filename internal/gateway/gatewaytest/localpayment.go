package gatewaytest

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/yourorg/payment-activation/internal/gateway"
	"github.com/yourorg/payment-activation/internal/payment"
)

// LocalPaymentGateway is a scripted gateway.LocalPaymentGateway.
type LocalPaymentGateway struct {
	CreateFunc func(ctx context.Context, session gateway.Session, merchantAccountID string) (gateway.LocalPaymentInstance, error)

	mu      sync.Mutex
	created []*LocalPaymentInstance
}

// Create implements gateway.LocalPaymentGateway.
func (g *LocalPaymentGateway) Create(
	ctx context.Context,
	session gateway.Session,
	merchantAccountID string,
) (gateway.LocalPaymentInstance, error) {
	if g.CreateFunc != nil {
		return g.CreateFunc(ctx, session, merchantAccountID)
	}
	inst := &LocalPaymentInstance{}
	g.mu.Lock()
	g.created = append(g.created, inst)
	g.mu.Unlock()
	return inst, nil
}

// Created returns the instances produced by the default Create.
func (g *LocalPaymentGateway) Created() []*LocalPaymentInstance {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]*LocalPaymentInstance(nil), g.created...)
}

// LocalPaymentInstance is a scripted gateway.LocalPaymentInstance. The
// default StartPayment issues a payment id, runs the start hook, and
// succeeds only if the continuation was called, matching the real popup
// which never opens without it.
type LocalPaymentInstance struct {
	StartPaymentFunc func(ctx context.Context, req gateway.StartPaymentRequest) (payment.Payload, error)

	mu       sync.Mutex
	requests []gateway.StartPaymentRequest
}

// StartPayment implements gateway.LocalPaymentInstance.
func (i *LocalPaymentInstance) StartPayment(
	ctx context.Context,
	req gateway.StartPaymentRequest,
) (payment.Payload, error) {
	i.mu.Lock()
	i.requests = append(i.requests, req)
	i.mu.Unlock()

	if i.StartPaymentFunc != nil {
		return i.StartPaymentFunc(ctx, req)
	}

	started := false
	if req.OnPaymentStart != nil {
		req.OnPaymentStart(gateway.LocalPaymentStartData{PaymentID: uuid.NewString()}, func() {
			started = true
		})
	} else {
		started = true
	}
	if !started {
		return payment.Payload{}, &payment.CancelledError{Message: "local payment was not started"}
	}
	return payment.Payload{
		Type:  payment.PayloadTypePayPalAccount,
		Nonce: uuid.NewString(),
	}, nil
}

// Requests returns the StartPayment requests received so far.
func (i *LocalPaymentInstance) Requests() []gateway.StartPaymentRequest {
	i.mu.Lock()
	defer i.mu.Unlock()
	return append([]gateway.StartPaymentRequest(nil), i.requests...)
}
