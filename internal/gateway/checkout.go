package gateway

import (
	"context"

	"github.com/yourorg/payment-activation/internal/dom"
	"github.com/yourorg/payment-activation/internal/payment"
)

// Intent is the checkout network's transaction intent.
type Intent string

const (
	IntentAuthorize Intent = "authorize"
	IntentCapture   Intent = "capture"
	IntentSale      Intent = "sale"
	IntentTokenize  Intent = "tokenize"
)

// FlowType selects the one-time checkout flow or the vault flow.
type FlowType string

const (
	FlowCheckout FlowType = "checkout"
	FlowVault    FlowType = "vault"
)

// SDKConfig parameterizes the one-time SDK load for the current cycle.
type SDKConfig struct {
	Currency   string
	Components string
	Intent     Intent
	Debug      bool
	Vault      bool
}

// CheckoutPaymentOptions describe one order or billing-agreement creation.
type CheckoutPaymentOptions struct {
	Flow                    FlowType
	Amount                  string
	Currency                string
	Intent                  Intent
	RequestBillingAgreement bool
}

// ApprovalData identifies an approved order or agreement.
type ApprovalData struct {
	OrderID      string
	PayerID      string
	BillingToken string
}

// CancelData carries the network's cancellation details.
type CancelData struct {
	OrderID string
}

// ButtonConfig wires one interactive button variant. Exactly one of
// CreateOrder (checkout flow) or CreateBillingAgreement (vault flow) is
// set.
type ButtonConfig struct {
	FundingSource          string
	Style                  map[string]string
	CreateOrder            func() (string, error)
	CreateBillingAgreement func() (string, error)
	OnApprove              func(data ApprovalData)
	// OnClick may veto the interaction by returning false.
	OnClick  func() bool
	OnCancel func(data CancelData)
	OnError  func(err error)
}

// CheckoutButton is one rendered funding-source button.
type CheckoutButton interface {
	IsEligible() bool
	Render(container dom.Element) error
}

// CheckoutGateway creates redirect-checkout instances and the device-data
// collector used by the vault flow.
type CheckoutGateway interface {
	CreateCheckout(ctx context.Context, session Session, merchantAccountID string) (Checkout, error)
	CreateDataCollector(ctx context.Context, session Session) (any, error)
}

// Checkout is the per-cycle checkout instance.
type Checkout interface {
	LoadSDK(ctx context.Context, cfg SDKConfig) error
	CreatePayment(ctx context.Context, opts CheckoutPaymentOptions) (string, error)
	TokenizePayment(ctx context.Context, data ApprovalData) (payment.Payload, error)
	Buttons(cfg ButtonConfig) CheckoutButton
}
