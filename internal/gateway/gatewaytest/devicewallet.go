package gatewaytest

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/yourorg/payment-activation/internal/gateway"
	"github.com/yourorg/payment-activation/internal/payment"
)

// DeviceWalletGateway is a scripted gateway.DeviceWalletGateway. The zero
// value reports a fully capable device.
type DeviceWalletGateway struct {
	AvailableFunc       func() bool
	SupportsVersionFunc func(version int) bool
	CanMakePaymentsFunc func() bool
	CreateHandleFunc    func(ctx context.Context, session gateway.Session) (gateway.DeviceWallet, error)

	mu      sync.Mutex
	created []*DeviceWallet
}

// Available implements gateway.DeviceWalletGateway.
func (g *DeviceWalletGateway) Available() bool {
	if g.AvailableFunc != nil {
		return g.AvailableFunc()
	}
	return true
}

// SupportsVersion implements gateway.DeviceWalletGateway.
func (g *DeviceWalletGateway) SupportsVersion(version int) bool {
	if g.SupportsVersionFunc != nil {
		return g.SupportsVersionFunc(version)
	}
	return true
}

// CanMakePayments implements gateway.DeviceWalletGateway.
func (g *DeviceWalletGateway) CanMakePayments() bool {
	if g.CanMakePaymentsFunc != nil {
		return g.CanMakePaymentsFunc()
	}
	return true
}

// CreateHandle implements gateway.DeviceWalletGateway.
func (g *DeviceWalletGateway) CreateHandle(ctx context.Context, session gateway.Session) (gateway.DeviceWallet, error) {
	if g.CreateHandleFunc != nil {
		return g.CreateHandleFunc(ctx, session)
	}
	w := &DeviceWallet{}
	g.mu.Lock()
	g.created = append(g.created, w)
	g.mu.Unlock()
	return w, nil
}

// Created returns the handles produced by the default CreateHandle.
func (g *DeviceWalletGateway) Created() []*DeviceWallet {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]*DeviceWallet(nil), g.created...)
}

// DeviceWallet is a scripted gateway.DeviceWallet. The default NewSession
// produces a WalletSession whose Begin immediately authorizes, so a test
// exercising the happy path needs no scripting at all.
type DeviceWallet struct {
	CreatePaymentRequestFunc func(req gateway.WalletPaymentRequest) gateway.WalletPaymentRequest
	NewSessionFunc           func(version int, req gateway.WalletPaymentRequest) (gateway.WalletSession, error)
	PerformValidationFunc    func(ctx context.Context, validationURL, displayName string) (any, error)
	TokenizeFunc             func(ctx context.Context, token any) (payment.Payload, error)

	mu       sync.Mutex
	sessions []*WalletSession
}

// CreatePaymentRequest implements gateway.DeviceWallet.
func (w *DeviceWallet) CreatePaymentRequest(req gateway.WalletPaymentRequest) gateway.WalletPaymentRequest {
	if w.CreatePaymentRequestFunc != nil {
		return w.CreatePaymentRequestFunc(req)
	}
	return req
}

// NewSession implements gateway.DeviceWallet.
func (w *DeviceWallet) NewSession(version int, req gateway.WalletPaymentRequest) (gateway.WalletSession, error) {
	if w.NewSessionFunc != nil {
		return w.NewSessionFunc(version, req)
	}
	s := &WalletSession{}
	w.mu.Lock()
	w.sessions = append(w.sessions, s)
	w.mu.Unlock()
	return s, nil
}

// Sessions returns the sessions produced by the default NewSession.
func (w *DeviceWallet) Sessions() []*WalletSession {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]*WalletSession(nil), w.sessions...)
}

// PerformValidation implements gateway.DeviceWallet.
func (w *DeviceWallet) PerformValidation(ctx context.Context, validationURL, displayName string) (any, error) {
	if w.PerformValidationFunc != nil {
		return w.PerformValidationFunc(ctx, validationURL, displayName)
	}
	return map[string]string{"validationURL": validationURL, "displayName": displayName}, nil
}

// Tokenize implements gateway.DeviceWallet.
func (w *DeviceWallet) Tokenize(ctx context.Context, token any) (payment.Payload, error) {
	if w.TokenizeFunc != nil {
		return w.TokenizeFunc(ctx, token)
	}
	return payment.Payload{
		Type:  payment.PayloadTypeApplePay,
		Nonce: uuid.NewString(),
	}, nil
}

// WalletSession is a scripted gateway.WalletSession. Begin runs the
// scripted event sequence synchronously: BeginFunc when set, otherwise a
// single authorization event.
type WalletSession struct {
	BeginFunc func(s *WalletSession)

	mu                 sync.Mutex
	onValidateMerchant func(gateway.WalletValidationEvent)
	onAuthorized       func(gateway.WalletAuthorizationEvent)
	onCancel           func(gateway.WalletCancelEvent)

	aborted          bool
	merchantSessions []any
	completions      []gateway.WalletPaymentStatus
}

// OnValidateMerchant implements gateway.WalletSession.
func (s *WalletSession) OnValidateMerchant(fn func(gateway.WalletValidationEvent)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onValidateMerchant = fn
}

// OnPaymentAuthorized implements gateway.WalletSession.
func (s *WalletSession) OnPaymentAuthorized(fn func(gateway.WalletAuthorizationEvent)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onAuthorized = fn
}

// OnCancel implements gateway.WalletSession.
func (s *WalletSession) OnCancel(fn func(gateway.WalletCancelEvent)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onCancel = fn
}

// Begin implements gateway.WalletSession.
func (s *WalletSession) Begin() {
	if s.BeginFunc != nil {
		s.BeginFunc(s)
		return
	}
	s.Authorize(gateway.WalletAuthorizationEvent{Token: "wallet-token"})
}

// Abort implements gateway.WalletSession.
func (s *WalletSession) Abort() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.aborted = true
}

// Aborted reports whether the sheet was aborted.
func (s *WalletSession) Aborted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.aborted
}

// CompleteMerchantValidation implements gateway.WalletSession.
func (s *WalletSession) CompleteMerchantValidation(merchantSession any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.merchantSessions = append(s.merchantSessions, merchantSession)
}

// MerchantSessions returns the validated merchant sessions.
func (s *WalletSession) MerchantSessions() []any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]any(nil), s.merchantSessions...)
}

// CompletePayment implements gateway.WalletSession.
func (s *WalletSession) CompletePayment(status gateway.WalletPaymentStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.completions = append(s.completions, status)
}

// Completions returns the statuses the sheet was completed with.
func (s *WalletSession) Completions() []gateway.WalletPaymentStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]gateway.WalletPaymentStatus(nil), s.completions...)
}

// RequestValidation drives the merchant-validation event.
func (s *WalletSession) RequestValidation(ev gateway.WalletValidationEvent) {
	s.mu.Lock()
	fn := s.onValidateMerchant
	s.mu.Unlock()
	if fn != nil {
		fn(ev)
	}
}

// Authorize drives the authorization event.
func (s *WalletSession) Authorize(ev gateway.WalletAuthorizationEvent) {
	s.mu.Lock()
	fn := s.onAuthorized
	s.mu.Unlock()
	if fn != nil {
		fn(ev)
	}
}

// Cancel drives the cancellation event.
func (s *WalletSession) Cancel(ev gateway.WalletCancelEvent) {
	s.mu.Lock()
	fn := s.onCancel
	s.mu.Unlock()
	if fn != nil {
		fn(ev)
	}
}
