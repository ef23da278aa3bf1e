package adapter

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/yourorg/payment-activation/internal/config"
	"github.com/yourorg/payment-activation/internal/dom"
	"github.com/yourorg/payment-activation/internal/gateway"
	"github.com/yourorg/payment-activation/internal/payment"
)

const (
	defaultCheckoutContainerID = "paypal-container"
	fundingContainerPrefix     = "fundingsource-"
	eligibleTrueClass          = "paypal-eligible-true"
	eligibleFalseClass         = "paypal-eligible-false"
)

// PayPal is the redirect/popup adapter: one interactive button per
// configured funding source, rendered by the checkout network.
type PayPal struct{}

// Method implements Adapter.
func (PayPal) Method() payment.Method { return payment.MethodPayPal }

// Activate implements Adapter.
func (PayPal) Activate(ctx context.Context, env *Env) (dom.MountFunc, error) {
	opts := env.Config.PayPal
	if opts == nil {
		return nil, fmt.Errorf("adapter: paypal descriptor missing")
	}
	gw := env.Gateways.Checkout
	if gw == nil {
		return nil, fmt.Errorf("adapter: checkout gateway not configured")
	}

	vault := opts.Vault
	intent := opts.Intent
	if intent == "" {
		if vault {
			intent = gateway.IntentTokenize
		} else {
			intent = gateway.IntentCapture
		}
	}
	debug := env.Environment == gateway.EnvironmentTest
	if opts.Debug != nil {
		debug = *opts.Debug
	}

	// Device data collection for the vault flow.
	if vault && opts.OnDataCollected != nil {
		collector, err := gw.CreateDataCollector(ctx, env.Session)
		if err != nil {
			log.Printf("adapter: paypal data collector: %v", err)
		} else {
			opts.OnDataCollected(collector)
		}
	}

	checkout, err := gw.CreateCheckout(ctx, env.Session, opts.MerchantAccountID)
	if err != nil {
		return nil, fmt.Errorf("adapter: creating checkout instance: %w", err)
	}

	if err := checkout.LoadSDK(ctx, gateway.SDKConfig{
		Currency:   env.Amount.Currency,
		Components: "buttons,funding-eligibility",
		Intent:     intent,
		Debug:      debug,
		Vault:      vault,
	}); err != nil {
		return nil, fmt.Errorf("adapter: loading checkout SDK: %w", err)
	}

	sources := opts.FundingSources
	if len(sources) == 0 {
		sources = []string{"paypal"}
	}

	return mountOnce(func(container dom.Element) {
		if container.ID() == "" {
			container.SetID(defaultCheckoutContainerID)
		}
		single := len(sources) == 1
		for _, source := range sources {
			renderFundingSource(env, opts, checkout, container, source, single, vault, intent)
		}
	}), nil
}

func renderFundingSource(
	env *Env,
	opts *config.PayPalOptions,
	checkout gateway.Checkout,
	container dom.Element,
	source string,
	single bool,
	vault bool,
	intent gateway.Intent,
) {
	style := opts.ButtonStyle
	if perSource, ok := opts.ButtonStyles[source]; ok {
		style = perSource
	}

	paymentOpts := gateway.CheckoutPaymentOptions{
		Amount:                  env.Amount.FormatTotal(),
		Currency:                env.Amount.Currency,
		Intent:                  intent,
		RequestBillingAgreement: vault,
	}
	if vault {
		paymentOpts.Flow = gateway.FlowVault
	} else {
		paymentOpts.Flow = gateway.FlowCheckout
	}

	cfg := gateway.ButtonConfig{
		FundingSource: source,
		Style:         style,
		OnClick: func() bool {
			return env.Callbacks.PaymentStart(dom.Event{Type: dom.EventClick}, container)
		},
		OnApprove: func(data gateway.ApprovalData) {
			payload, err := checkout.TokenizePayment(env.FlowContext, data)
			if err != nil {
				// Network-specific error shapes collapse into a uniform
				// tokenize failure.
				env.Callbacks.PaymentError(container, payment.MethodPayPal, &payment.TokenizeError{Err: err})
				return
			}
			payload.Method = payment.MethodPayPal
			env.Callbacks.PaymentRequestable(container, payload)
		},
		OnCancel: func(data gateway.CancelData) {
			env.Callbacks.PaymentError(container, payment.MethodPayPal, &payment.CancelledError{
				Message: "checkout payment cancelled",
				Data:    data,
			})
		},
		OnError: func(err error) {
			env.Callbacks.PaymentError(container, payment.MethodPayPal, err)
		},
	}
	createPayment := func() (string, error) {
		return checkout.CreatePayment(env.FlowContext, paymentOpts)
	}
	if vault {
		cfg.CreateBillingAgreement = createPayment
	} else {
		cfg.CreateOrder = createPayment
	}

	button := checkout.Buttons(cfg)

	if single {
		if err := button.Render(container); err != nil {
			env.Callbacks.PaymentError(container, payment.MethodPayPal, err)
		}
		return
	}

	containerID := fundingContainerPrefix + strings.ToLower(source)
	sourceContainer := container.Query("#" + containerID)
	if sourceContainer == nil {
		env.Callbacks.PaymentError(container, payment.MethodPayPal, &payment.ConfigError{
			Reason: fmt.Sprintf("no container %s defined for the funding source %s", containerID, source),
		})
		return
	}

	// Eligibility only marks the variant's container; it never fails the
	// adapter.
	if button.IsEligible() {
		sourceContainer.RemoveClass(eligibleFalseClass)
		sourceContainer.AddClass(eligibleTrueClass)
		if err := button.Render(sourceContainer); err != nil {
			env.Callbacks.PaymentError(container, payment.MethodPayPal, err)
		}
	} else {
		sourceContainer.RemoveClass(eligibleTrueClass)
		sourceContainer.AddClass(eligibleFalseClass)
	}
}
