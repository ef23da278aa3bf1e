package gateway

import (
	"context"

	"github.com/yourorg/payment-activation/internal/payment"
)

// VerifyCardOptions parameterize one 3-D Secure verification.
type VerifyCardOptions struct {
	Amount         string
	Nonce          string
	Bin            string
	BillingAddress map[string]string
}

// LookupData is delivered when the verification lookup completes; the
// subscriber must call next to let the challenge proceed.
type LookupData struct {
	PaymentMethodNonce string
	Details            map[string]string
}

// ThreeDSecureGateway creates verification instances from a session.
type ThreeDSecureGateway interface {
	Create(ctx context.Context, session Session, version int) (ThreeDSecure, error)
}

// ThreeDSecure is one step-up verification instance. The lookup
// subscription attached at construction must be removed at teardown;
// leaking it causes spurious callbacks after the cycle is gone.
type ThreeDSecure interface {
	OnLookupComplete(fn func(data LookupData, next func())) (remove func())
	VerifyCard(ctx context.Context, opts VerifyCardOptions) (payment.Payload, error)
}
