package lifecycle

import (
	"context"

	"github.com/yourorg/payment-activation/internal/gateway"
	"github.com/yourorg/payment-activation/internal/payment"
)

// threeDSVerifier adapts a verification instance to the card adapter's
// Verifier port.
type threeDSVerifier struct {
	instance gateway.ThreeDSecure
}

func (v *threeDSVerifier) Verify(
	ctx context.Context,
	amount payment.Amount,
	raw payment.Payload,
	billing map[string]string,
) (payment.Payload, error) {
	return v.instance.VerifyCard(ctx, gateway.VerifyCardOptions{
		Amount:         amount.FormatTotal(),
		Nonce:          raw.Nonce,
		Bin:            raw.Details.Bin,
		BillingAddress: billing,
	})
}
