package gateway

import (
	"context"

	"github.com/yourorg/payment-activation/internal/payment"
)

// ScriptWalletOptions configure the wallet payment instance.
type ScriptWalletOptions struct {
	MerchantID       string
	Version          int
	TotalPriceStatus string
}

// TransactionInfo is the amount portion of a payment-data request.
type TransactionInfo struct {
	CurrencyCode     string
	TotalPrice       string
	TotalPriceStatus string
}

// PaymentDataRequest is the wallet's request descriptor built from the
// transaction info.
type PaymentDataRequest struct {
	APIVersion            int
	APIVersionMinor       int
	AllowedPaymentMethods []string
	TransactionInfo       TransactionInfo
}

// ScriptWalletGateway covers the web wallet whose runtime arrives as a
// dynamically loaded script. ScriptPresent reports whether the runtime is
// already in the process; LoadScript fetches it. The adapter guarantees
// LoadScript is called at most once per process, with concurrent callers
// collapsed onto the same in-flight load.
type ScriptWalletGateway interface {
	ScriptPresent() bool
	LoadScript(ctx context.Context) error
	CreateInstance(ctx context.Context, session Session, opts ScriptWalletOptions) (ScriptWalletInstance, error)
	NewPaymentsClient(env Environment) (PaymentsClient, error)
}

// ScriptWalletInstance builds requests and parses wallet responses.
type ScriptWalletInstance interface {
	CreateDataRequest(ctx context.Context, info TransactionInfo) (PaymentDataRequest, error)
	ParseResponse(ctx context.Context, paymentData any) (payment.Payload, error)
}

// PaymentsClient is the wallet-side client used for the readiness probe
// and for requesting payment data on click.
type PaymentsClient interface {
	IsReadyToPay(ctx context.Context, req PaymentDataRequest) (bool, error)
	LoadPaymentData(ctx context.Context, req PaymentDataRequest) (any, error)
}
