package adapter

import (
	"context"
	"fmt"

	"github.com/yourorg/payment-activation/internal/config"
	"github.com/yourorg/payment-activation/internal/dom"
	"github.com/yourorg/payment-activation/internal/gateway"
	"github.com/yourorg/payment-activation/internal/payment"
)

// LocalPayment is the local-transfer adapter: a popup-based local method
// with a server-correlated payment id. The same adapter serves any
// configured local method (e.g. alipay).
type LocalPayment struct {
	Options *config.LocalPaymentOptions
}

// Method implements Adapter.
func (a LocalPayment) Method() payment.Method {
	if a.Options == nil {
		return ""
	}
	return a.Options.Method
}

// Activate implements Adapter.
func (a LocalPayment) Activate(ctx context.Context, env *Env) (dom.MountFunc, error) {
	opts := a.Options
	if opts == nil || opts.Method == "" {
		return nil, fmt.Errorf("adapter: local payment descriptor missing")
	}
	gw := env.Gateways.LocalPayment
	if gw == nil {
		return nil, fmt.Errorf("adapter: local payment gateway not configured")
	}

	instance, err := gw.Create(ctx, env.Session, opts.MerchantAccountID)
	if err != nil {
		return nil, fmt.Errorf("adapter: creating local payment instance: %w", err)
	}

	method := opts.Method
	return mountOnce(func(button dom.Element) {
		var guard clickGuard
		button.On(dom.EventClick, func(ev dom.Event) {
			if !guard.begin(button) {
				return
			}
			defer guard.end(button)

			if !env.Callbacks.PaymentStart(ev, button) {
				return
			}

			// Set when the persistence hook fails: the failure is already
			// reported and the aborted StartPayment must not report again.
			hookFailed := false
			payload, err := instance.StartPayment(env.FlowContext, gateway.StartPaymentRequest{
				PaymentType:   method,
				Amount:        env.Amount.FormatTotal(),
				CurrencyCode:  env.Amount.Currency,
				Fallback:      opts.Fallback,
				Address:       gateway.LocalPaymentAddress{CountryCode: opts.CountryCode},
				Personal:      opts.Personal,
				WindowOptions: opts.WindowOptions,
				OnPaymentStart: func(data gateway.LocalPaymentStartData, start func()) {
					// The continuation must not fire before the caller has
					// persisted the payment id: a missed id means a
					// completed payment cannot be reconciled later.
					if opts.OnLocalPaymentStart == nil {
						start()
						return
					}
					if err := opts.OnLocalPaymentStart(env.FlowContext, data); err != nil {
						hookFailed = true
						env.Callbacks.PaymentError(button, method, err)
						return
					}
					start()
				},
			})
			if err != nil {
				if !hookFailed {
					env.Callbacks.PaymentError(button, method, err)
				}
				return
			}
			payload.Method = method
			env.Callbacks.PaymentRequestable(button, payload)
		})
	}), nil
}
