package gatewaytest

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/yourorg/payment-activation/internal/dom"
	"github.com/yourorg/payment-activation/internal/gateway"
	"github.com/yourorg/payment-activation/internal/payment"
)

// CheckoutGateway is a scripted gateway.CheckoutGateway.
type CheckoutGateway struct {
	CreateCheckoutFunc      func(ctx context.Context, session gateway.Session, merchantAccountID string) (gateway.Checkout, error)
	CreateDataCollectorFunc func(ctx context.Context, session gateway.Session) (any, error)

	mu      sync.Mutex
	created []*Checkout
}

// CreateCheckout implements gateway.CheckoutGateway.
func (g *CheckoutGateway) CreateCheckout(
	ctx context.Context,
	session gateway.Session,
	merchantAccountID string,
) (gateway.Checkout, error) {
	if g.CreateCheckoutFunc != nil {
		return g.CreateCheckoutFunc(ctx, session, merchantAccountID)
	}
	co := &Checkout{}
	g.mu.Lock()
	g.created = append(g.created, co)
	g.mu.Unlock()
	return co, nil
}

// Created returns the instances produced by the default CreateCheckout.
func (g *CheckoutGateway) Created() []*Checkout {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]*Checkout(nil), g.created...)
}

// CreateDataCollector implements gateway.CheckoutGateway.
func (g *CheckoutGateway) CreateDataCollector(ctx context.Context, session gateway.Session) (any, error) {
	if g.CreateDataCollectorFunc != nil {
		return g.CreateDataCollectorFunc(ctx, session)
	}
	return map[string]string{"deviceData": uuid.NewString()}, nil
}

// Checkout is a scripted gateway.Checkout. Buttons records every config it
// receives; the returned button is eligible and renders successfully
// unless Eligible or RenderErr is scripted per button.
type Checkout struct {
	LoadSDKFunc         func(ctx context.Context, cfg gateway.SDKConfig) error
	CreatePaymentFunc   func(ctx context.Context, opts gateway.CheckoutPaymentOptions) (string, error)
	TokenizePaymentFunc func(ctx context.Context, data gateway.ApprovalData) (payment.Payload, error)
	ButtonsFunc         func(cfg gateway.ButtonConfig) gateway.CheckoutButton

	mu            sync.Mutex
	sdkConfigs    []gateway.SDKConfig
	paymentCalls  []gateway.CheckoutPaymentOptions
	tokenizeCalls []gateway.ApprovalData
	buttons       []*CheckoutButton
}

// LoadSDK implements gateway.Checkout.
func (c *Checkout) LoadSDK(ctx context.Context, cfg gateway.SDKConfig) error {
	c.mu.Lock()
	c.sdkConfigs = append(c.sdkConfigs, cfg)
	c.mu.Unlock()

	if c.LoadSDKFunc != nil {
		return c.LoadSDKFunc(ctx, cfg)
	}
	return nil
}

// SDKConfigs returns the configs LoadSDK received.
func (c *Checkout) SDKConfigs() []gateway.SDKConfig {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]gateway.SDKConfig(nil), c.sdkConfigs...)
}

// CreatePayment implements gateway.Checkout.
func (c *Checkout) CreatePayment(ctx context.Context, opts gateway.CheckoutPaymentOptions) (string, error) {
	c.mu.Lock()
	c.paymentCalls = append(c.paymentCalls, opts)
	c.mu.Unlock()

	if c.CreatePaymentFunc != nil {
		return c.CreatePaymentFunc(ctx, opts)
	}
	return uuid.NewString(), nil
}

// PaymentCalls returns the options CreatePayment received.
func (c *Checkout) PaymentCalls() []gateway.CheckoutPaymentOptions {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]gateway.CheckoutPaymentOptions(nil), c.paymentCalls...)
}

// TokenizePayment implements gateway.Checkout.
func (c *Checkout) TokenizePayment(ctx context.Context, data gateway.ApprovalData) (payment.Payload, error) {
	c.mu.Lock()
	c.tokenizeCalls = append(c.tokenizeCalls, data)
	c.mu.Unlock()

	if c.TokenizePaymentFunc != nil {
		return c.TokenizePaymentFunc(ctx, data)
	}
	return payment.Payload{
		Type:  payment.PayloadTypePayPalAccount,
		Nonce: uuid.NewString(),
	}, nil
}

// Buttons implements gateway.Checkout.
func (c *Checkout) Buttons(cfg gateway.ButtonConfig) gateway.CheckoutButton {
	if c.ButtonsFunc != nil {
		return c.ButtonsFunc(cfg)
	}
	b := &CheckoutButton{Config: cfg, Eligible: true}
	c.mu.Lock()
	c.buttons = append(c.buttons, b)
	c.mu.Unlock()
	return b
}

// RenderedButtons returns the buttons produced by the default Buttons.
func (c *Checkout) RenderedButtons() []*CheckoutButton {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*CheckoutButton(nil), c.buttons...)
}

// CheckoutButton is a scripted gateway.CheckoutButton. Config holds the
// callbacks the adapter wired, so a test can drive approval, cancel and
// error flows directly.
type CheckoutButton struct {
	Config    gateway.ButtonConfig
	Eligible  bool
	RenderErr error

	mu        sync.Mutex
	container dom.Element
}

// IsEligible implements gateway.CheckoutButton.
func (b *CheckoutButton) IsEligible() bool { return b.Eligible }

// Render implements gateway.CheckoutButton.
func (b *CheckoutButton) Render(container dom.Element) error {
	if b.RenderErr != nil {
		return b.RenderErr
	}
	b.mu.Lock()
	b.container = container
	b.mu.Unlock()
	return nil
}

// Container returns where the button rendered, or nil.
func (b *CheckoutButton) Container() dom.Element {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.container
}

// Click runs the full scripted interaction: the click veto, order
// creation, then approval. It mirrors what the hosted button does when a
// buyer completes checkout.
func (b *CheckoutButton) Click() {
	if b.Config.OnClick != nil && !b.Config.OnClick() {
		return
	}
	create := b.Config.CreateOrder
	if create == nil {
		create = b.Config.CreateBillingAgreement
	}
	var orderID string
	if create != nil {
		id, err := create()
		if err != nil {
			if b.Config.OnError != nil {
				b.Config.OnError(err)
			}
			return
		}
		orderID = id
	}
	if b.Config.OnApprove != nil {
		b.Config.OnApprove(gateway.ApprovalData{OrderID: orderID, PayerID: "payer"})
	}
}
