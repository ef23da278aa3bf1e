package adapter

import (
	"context"
	"fmt"

	"github.com/yourorg/payment-activation/internal/dom"
	"github.com/yourorg/payment-activation/internal/gateway"
	"github.com/yourorg/payment-activation/internal/payment"
)

// ApplePay is the device-wallet adapter: the in-OS payment sheet, gated by
// platform and device capability checks.
type ApplePay struct{}

// Method implements Adapter.
func (ApplePay) Method() payment.Method { return payment.MethodApplePay }

// Activate implements Adapter. Both capability checks run before any
// network call; a negative result is a CapabilityError, not a failure.
func (ApplePay) Activate(ctx context.Context, env *Env) (dom.MountFunc, error) {
	opts := env.Config.ApplePay
	if opts == nil {
		return nil, fmt.Errorf("adapter: applePay descriptor missing")
	}
	wallet := env.Gateways.DeviceWallet
	if wallet == nil {
		return nil, fmt.Errorf("adapter: device wallet gateway not configured")
	}

	if !wallet.Available() {
		return nil, &payment.CapabilityError{Reason: "this device does not support the platform wallet"}
	}
	if !wallet.SupportsVersion(gateway.DeviceWalletVersion) || !wallet.CanMakePayments() {
		return nil, &payment.CapabilityError{Reason: "this device cannot make payments"}
	}

	handle, err := wallet.CreateHandle(ctx, env.Session)
	if err != nil {
		return nil, fmt.Errorf("adapter: creating device wallet handle: %w", err)
	}

	request := handle.CreatePaymentRequest(gateway.WalletPaymentRequest{
		TotalLabel:  opts.TotalLabel,
		TotalAmount: env.Amount.FormatTotal(),
		// Billing postal data is requested with every transaction so the
		// processor can score it.
		RequiredBillingContactFields: []string{"postalAddress"},
	})

	return mountOnce(func(button dom.Element) {
		button.On(dom.EventClick, func(ev dom.Event) {
			if !env.Callbacks.PaymentStart(ev, button) {
				return
			}
			applePayClick(env, opts.DisplayName, handle, request, button)
		})
	}), nil
}

// applePayClick presents one payment sheet. The wallet session is created
// fresh per click; the platform rejects a reused one.
func applePayClick(
	env *Env,
	displayName string,
	handle gateway.DeviceWallet,
	request gateway.WalletPaymentRequest,
	button dom.Element,
) {
	session, err := handle.NewSession(gateway.DeviceWalletVersion, request)
	if err != nil {
		env.Callbacks.PaymentError(button, payment.MethodApplePay, err)
		return
	}

	session.OnCancel(func(ev gateway.WalletCancelEvent) {
		env.Callbacks.PaymentError(button, payment.MethodApplePay, &payment.CancelledError{
			Message: "wallet payment cancelled",
			Data:    ev,
		})
	})

	session.OnValidateMerchant(func(ev gateway.WalletValidationEvent) {
		merchantSession, err := handle.PerformValidation(env.FlowContext, ev.ValidationURL, displayName)
		if err != nil {
			env.Callbacks.PaymentError(button, payment.MethodApplePay, err)
			session.Abort()
			return
		}
		session.CompleteMerchantValidation(merchantSession)
	})

	session.OnPaymentAuthorized(func(ev gateway.WalletAuthorizationEvent) {
		payload, err := handle.Tokenize(env.FlowContext, ev.Token)
		if err != nil {
			env.Callbacks.PaymentError(button, payment.MethodApplePay, &payment.TokenizeError{Err: err})
			session.CompletePayment(gateway.WalletStatusFailure)
			return
		}
		payload.Method = payment.MethodApplePay
		env.Callbacks.PaymentRequestable(button, payload)
		session.CompletePayment(gateway.WalletStatusSuccess)
	})

	session.Begin()
}
