package adapter

import (
	"context"
	"fmt"
	"sync"

	"github.com/yourorg/payment-activation/internal/dom"
	"github.com/yourorg/payment-activation/internal/gateway"
	"github.com/yourorg/payment-activation/internal/payment"
)

// walletScript guards the process-wide wallet runtime load: the script is
// fetched at most once per process and concurrent callers collapse onto
// the same in-flight load. The result, success or failure, is cached.
var walletScript struct {
	mu   sync.Mutex
	done chan struct{}
	err  error
}

func ensureWalletScript(ctx context.Context, gw gateway.ScriptWalletGateway) error {
	if gw.ScriptPresent() {
		return nil
	}

	walletScript.mu.Lock()
	if walletScript.done == nil {
		done := make(chan struct{})
		walletScript.done = done
		go func() {
			walletScript.err = gw.LoadScript(context.Background())
			close(done)
		}()
	}
	done := walletScript.done
	walletScript.mu.Unlock()

	select {
	case <-done:
		return walletScript.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// resetWalletScript clears the cached load; tests only.
func resetWalletScript() {
	walletScript.mu.Lock()
	walletScript.done = nil
	walletScript.err = nil
	walletScript.mu.Unlock()
}

// GooglePay is the script-wallet adapter: runtime script load, payment
// instance creation, readiness probe, then a click flow that requests
// payment data from the wallet.
type GooglePay struct{}

// Method implements Adapter.
func (GooglePay) Method() payment.Method { return payment.MethodGooglePay }

// Activate implements Adapter. A negative readiness probe yields no mount
// callback and a CapabilityError, distinct from an adapter failure.
func (GooglePay) Activate(ctx context.Context, env *Env) (dom.MountFunc, error) {
	opts := env.Config.GooglePay
	if opts == nil {
		return nil, fmt.Errorf("adapter: googlePay descriptor missing")
	}
	gw := env.Gateways.ScriptWallet
	if gw == nil {
		return nil, fmt.Errorf("adapter: script wallet gateway not configured")
	}

	if err := ensureWalletScript(ctx, gw); err != nil {
		return nil, fmt.Errorf("adapter: loading wallet script: %w", err)
	}

	version := opts.Version
	if version == 0 {
		version = 2
	}
	totalPriceStatus := opts.TotalPriceStatus
	if totalPriceStatus == "" {
		totalPriceStatus = "FINAL"
	}

	instance, err := gw.CreateInstance(ctx, env.Session, gateway.ScriptWalletOptions{
		MerchantID:       opts.MerchantID,
		Version:          version,
		TotalPriceStatus: totalPriceStatus,
	})
	if err != nil {
		return nil, fmt.Errorf("adapter: creating wallet payment instance: %w", err)
	}

	client, err := gw.NewPaymentsClient(env.Environment)
	if err != nil {
		return nil, fmt.Errorf("adapter: creating wallet payments client: %w", err)
	}

	request, err := instance.CreateDataRequest(ctx, gateway.TransactionInfo{
		CurrencyCode:     env.Amount.Currency,
		TotalPrice:       env.Amount.FormatTotal(),
		TotalPriceStatus: totalPriceStatus,
	})
	if err != nil {
		return nil, fmt.Errorf("adapter: building payment data request: %w", err)
	}

	ready, err := client.IsReadyToPay(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("adapter: wallet readiness probe: %w", err)
	}
	if !ready {
		return nil, &payment.CapabilityError{Reason: "wallet isReadyToPay reported not ready"}
	}

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

			paymentData, err := client.LoadPaymentData(env.FlowContext, request)
			if err != nil {
				env.Callbacks.PaymentError(button, payment.MethodGooglePay, err)
				return
			}
			payload, err := instance.ParseResponse(env.FlowContext, paymentData)
			if err != nil {
				env.Callbacks.PaymentError(button, payment.MethodGooglePay, &payment.TokenizeError{Err: err})
				return
			}
			payload.Method = payment.MethodGooglePay
			env.Callbacks.PaymentRequestable(button, payload)
		})
	}), nil
}
