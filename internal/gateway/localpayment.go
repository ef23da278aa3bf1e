package gateway

import (
	"context"

	"github.com/yourorg/payment-activation/internal/payment"
)

// LocalPaymentStartData is issued by the network when a local-payment
// attempt starts. PaymentID must be persisted server-side before the
// popup proceeds so the later webhook can be reconciled.
type LocalPaymentStartData struct {
	PaymentID string
}

// LocalPaymentAddress is the buyer address passed to the network.
type LocalPaymentAddress struct {
	CountryCode string
}

// LocalPaymentFallback configures the redirect fallback when the popup
// cannot be used.
type LocalPaymentFallback struct {
	URL        string
	ButtonText string
}

// LocalPaymentPersonalData is optional buyer data for the popup.
type LocalPaymentPersonalData struct {
	GivenName               string
	Surname                 string
	Email                   string
	Phone                   string
	BIC                     string
	ShippingAddressRequired bool
	Address                 LocalPaymentAddress
}

// LocalPaymentWindowOptions size the popup window.
type LocalPaymentWindowOptions struct {
	Width  int
	Height int
}

// StartPaymentRequest describes one local-payment attempt. OnPaymentStart
// receives the provider-issued payment id and a continuation; the popup
// opens only when the continuation is called.
type StartPaymentRequest struct {
	PaymentType    payment.Method
	Amount         string
	CurrencyCode   string
	Fallback       *LocalPaymentFallback
	Address        LocalPaymentAddress
	Personal       LocalPaymentPersonalData
	WindowOptions  *LocalPaymentWindowOptions
	OnPaymentStart func(data LocalPaymentStartData, start func())
}

// LocalPaymentGateway creates local-payment instances from a session.
type LocalPaymentGateway interface {
	Create(ctx context.Context, session Session, merchantAccountID string) (LocalPaymentInstance, error)
}

// LocalPaymentInstance drives the popup-based local payment flow.
type LocalPaymentInstance interface {
	StartPayment(ctx context.Context, req StartPaymentRequest) (payment.Payload, error)
}
