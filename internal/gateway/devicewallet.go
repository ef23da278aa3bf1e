package gateway

import (
	"context"

	"github.com/yourorg/payment-activation/internal/payment"
)

// DeviceWalletVersion is the platform wallet protocol version the pipeline
// requires.
const DeviceWalletVersion = 3

// WalletPaymentStatus completes a wallet session after authorization.
type WalletPaymentStatus int

const (
	WalletStatusSuccess WalletPaymentStatus = iota
	WalletStatusFailure
)

// WalletPaymentRequest describes the in-OS payment sheet contents.
type WalletPaymentRequest struct {
	TotalLabel                   string
	TotalAmount                  string
	RequiredBillingContactFields []string
}

// WalletValidationEvent is delivered when the platform asks the merchant
// to validate itself.
type WalletValidationEvent struct {
	ValidationURL string
}

// WalletAuthorizationEvent carries the wallet's payment credential.
type WalletAuthorizationEvent struct {
	Token any
}

// WalletCancelEvent is delivered when the buyer dismisses the sheet.
type WalletCancelEvent struct {
	Reason string
}

// DeviceWalletGateway gates on platform capabilities and creates wallet
// handles. Available reports whether the platform wallet API exists at
// all; SupportsVersion and CanMakePayments are the device-level checks.
type DeviceWalletGateway interface {
	Available() bool
	SupportsVersion(version int) bool
	CanMakePayments() bool
	CreateHandle(ctx context.Context, session Session) (DeviceWallet, error)
}

// DeviceWallet is the per-cycle wallet handle.
type DeviceWallet interface {
	// CreatePaymentRequest merges provider defaults into the request.
	CreatePaymentRequest(req WalletPaymentRequest) WalletPaymentRequest
	// NewSession creates a short-lived, single-use wallet session. It must
	// be created fresh inside a click handler; reusing one across clicks
	// fails.
	NewSession(version int, req WalletPaymentRequest) (WalletSession, error)
	// PerformValidation validates the merchant for the given URL and
	// returns an opaque merchant session.
	PerformValidation(ctx context.Context, validationURL, displayName string) (any, error)
	// Tokenize exchanges the wallet's payment credential for a payload.
	Tokenize(ctx context.Context, token any) (payment.Payload, error)
}

// WalletSession is one in-flight payment sheet presentation.
type WalletSession interface {
	OnValidateMerchant(fn func(WalletValidationEvent))
	OnPaymentAuthorized(fn func(WalletAuthorizationEvent))
	OnCancel(fn func(WalletCancelEvent))
	Begin()
	Abort()
	CompleteMerchantValidation(merchantSession any)
	CompletePayment(status WalletPaymentStatus)
}
