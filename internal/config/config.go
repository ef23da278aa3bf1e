// Package config defines the caller-supplied configuration for one
// activation cycle: the amount, the authorization credential, one
// descriptor per wanted payment method and the callback hooks. Presence of
// a method descriptor is the sole trigger for attempting that method's
// adapter.
package config

import (
	"context"
	"fmt"

	"github.com/yourorg/payment-activation/internal/dom"
	"github.com/yourorg/payment-activation/internal/gateway"
	"github.com/yourorg/payment-activation/internal/payment"
)

// SubmitDecision is the card pre-submit hook outcome.
type SubmitDecision int

const (
	// SubmitDefault runs the default validation path.
	SubmitDefault SubmitDecision = iota
	// SubmitAccept skips the default validation and proceeds.
	SubmitAccept
	// SubmitReject aborts the submission.
	SubmitReject
)

// CardOptions configures the direct-entry (hosted fields) adapter.
type CardOptions struct {
	BillingAddress map[string]string
	Styles         map[string]map[string]string
	Vault          bool
	// FieldSetup lets the caller customize a field before creation.
	FieldSetup func(key gateway.FieldKey, el dom.Element, field *gateway.FieldConfig)
	// Setup runs once against the created hosted-fields instance.
	Setup func(fields gateway.HostedFields)
	// OnSubmit may short-circuit the default validation.
	OnSubmit func(state gateway.FieldsState) SubmitDecision
}

// ApplePayOptions configures the device-wallet adapter.
type ApplePayOptions struct {
	TotalLabel  string
	DisplayName string
}

// GooglePayOptions configures the script-wallet adapter.
type GooglePayOptions struct {
	MerchantID       string
	TotalPriceStatus string
	Version          int
}

// PayPalOptions configures the redirect-checkout adapter.
type PayPalOptions struct {
	// ButtonStyle applies to every funding source unless ButtonStyles has
	// a per-source entry.
	ButtonStyle       map[string]string
	ButtonStyles      map[string]map[string]string
	Debug             *bool
	FundingSources    []string
	MerchantAccountID string
	Vault             bool
	Intent            gateway.Intent
	// OnDataCollected receives the device-data collector when vaulting.
	OnDataCollected func(collector any)
}

// LocalPaymentOptions configures the local-transfer adapter.
type LocalPaymentOptions struct {
	CountryCode       string
	Fallback          *gateway.LocalPaymentFallback
	Method            payment.Method
	MerchantAccountID string
	Personal          gateway.LocalPaymentPersonalData
	WindowOptions     *gateway.LocalPaymentWindowOptions
	// OnLocalPaymentStart persists the provider-issued payment id
	// server-side. The popup continuation fires only after it returns nil.
	OnLocalPaymentStart func(ctx context.Context, data gateway.LocalPaymentStartData) error
}

// Config is the input of one activation cycle. Its identity is the
// (authorization, amount) pair; changing either starts a new cycle.
type Config struct {
	Amount        payment.Amount
	Authorization string
	Environment   gateway.Environment
	ThreeDSecure  bool

	Alipay    *LocalPaymentOptions
	ApplePay  *ApplePayOptions
	Card      *CardOptions
	GooglePay *GooglePayOptions
	PayPal    *PayPalOptions

	// OnError reports adapter initialization failures keyed by method; a
	// session failure is reported with the empty method.
	OnError func(method payment.Method, reason error)
	// OnLoading supplies placeholder content while no map is published.
	OnLoading func() string
	// OnPaymentError reports a failed transaction sub-flow.
	OnPaymentError func(method payment.Method, reason error)
	// OnPaymentRequestable forwards a successful payload for settlement.
	OnPaymentRequestable func(ctx context.Context, payload payment.Payload) error
	// OnPaymentStart may veto a click-triggered sub-flow.
	OnPaymentStart func(ev dom.Event, el dom.Element) bool
	// OnPaymentEnd runs after a sub-flow settles, success or failure.
	OnPaymentEnd func(el dom.Element)
	// OnTeardown is notified exactly once when the cycle is torn down.
	OnTeardown func()
}

// Identity is the activation-cycle identity.
type Identity struct {
	Authorization string
	AmountKey     string
}

// Identity derives the cycle identity from the config.
func (c *Config) Identity() Identity {
	return Identity{
		Authorization: c.Authorization,
		AmountKey:     c.Amount.Key(),
	}
}

// Validate checks the fields the pipeline itself depends on. Business
// validation of amount and currency stays with the caller.
func (c *Config) Validate() error {
	if c.Authorization == "" {
		return fmt.Errorf("config: authorization is required")
	}
	if c.Amount.Currency == "" {
		return fmt.Errorf("config: amount currency is required")
	}
	if c.OnPaymentRequestable == nil {
		return fmt.Errorf("config: OnPaymentRequestable hook is required")
	}
	return nil
}

// String implements fmt.Stringer for log lines; the credential is not
// included.
func (id Identity) String() string {
	return fmt.Sprintf("amount=%s credential_len=%d", id.AmountKey, len(id.Authorization))
}
