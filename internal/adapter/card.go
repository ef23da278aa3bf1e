package adapter

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/yourorg/payment-activation/internal/config"
	"github.com/yourorg/payment-activation/internal/dom"
	"github.com/yourorg/payment-activation/internal/gateway"
	"github.com/yourorg/payment-activation/internal/payment"
)

// submitSelector locates the submit-like control inside a mounted card
// container.
const submitSelector = `[type="submit"], #submit`

// Card is the direct-entry adapter: it builds hosted card input fields
// from the sub-elements present in the mounted container and drives the
// validate / veto / tokenize / verify click sub-flow.
type Card struct{}

// Method implements Adapter.
func (Card) Method() payment.Method { return payment.MethodCard }

// Activate implements Adapter. Field discovery and creation happen at
// mount time because the field set is derived from the container's
// sub-elements; a rejected creation is reported as a FieldSetupError
// through the activation error channel, fatal to this adapter only.
func (Card) Activate(ctx context.Context, env *Env) (dom.MountFunc, error) {
	opts := env.Config.Card
	if opts == nil {
		return nil, fmt.Errorf("adapter: card descriptor missing")
	}
	if env.Gateways.HostedFields == nil {
		return nil, fmt.Errorf("adapter: hosted fields gateway not configured")
	}

	return mountOnce(func(container dom.Element) {
		bindCard(env, opts, container)
	}), nil
}

func bindCard(env *Env, opts *config.CardOptions, container dom.Element) {
	submit := container.Query(submitSelector)
	if submit == nil {
		log.Printf("adapter: card container %q has no submit control, skipping mount", container.ID())
		return
	}

	// Only sub-elements present under the stable #<key> convention become
	// hosted fields.
	fields := make(map[gateway.FieldKey]*gateway.FieldConfig)
	for _, key := range gateway.FieldKeys {
		selector := "#" + string(key)
		keyField := container.Query(selector)
		if keyField == nil {
			continue
		}
		ds := keyField.Dataset()
		field := &gateway.FieldConfig{
			Selector:    selector,
			Placeholder: ds["placeholder"],
			Type:        ds["type"],
		}
		fields[key] = field
		if opts.FieldSetup != nil {
			opts.FieldSetup(key, keyField, field)
		}
	}

	hostedFields, err := env.Gateways.HostedFields.Create(env.FlowContext, env.Session, gateway.HostedFieldsOptions{
		Fields: fields,
		Styles: opts.Styles,
	})
	if err != nil {
		env.Callbacks.ActivationError(payment.MethodCard, &payment.FieldSetupError{Err: err})
		return
	}
	env.RegisterReleaser(func(ctx context.Context) {
		if err := hostedFields.Teardown(ctx); err != nil {
			log.Printf("adapter: hosted fields teardown: %v", err)
		}
	})

	if opts.Setup != nil {
		opts.Setup(hostedFields)
	}

	var guard clickGuard
	submit.On(dom.EventClick, func(ev dom.Event) {
		if !guard.begin(submit) {
			return
		}
		done := func() { guard.end(submit) }
		cardSubmit(env, opts, hostedFields, submit, ev, done)
	})
}

// cardSubmit runs one click sub-flow. done re-enables the control and is
// called exactly once, on every exit path that settles the attempt.
func cardSubmit(
	env *Env,
	opts *config.CardOptions,
	hostedFields gateway.HostedFields,
	submit dom.Element,
	ev dom.Event,
	done func(),
) {
	state := hostedFields.State()

	decision := config.SubmitDefault
	if opts.OnSubmit != nil {
		decision = opts.OnSubmit(state)
	}
	if decision == config.SubmitReject {
		done()
		return
	}
	if decision != config.SubmitAccept {
		// Default validation: focus the first invalid field and abort
		// before any network call.
		for _, key := range gateway.FieldKeys {
			field, ok := state.Fields[key]
			if !ok {
				continue
			}
			if !field.IsValid {
				hostedFields.Focus(key)
				done()
				return
			}
		}
	}

	if !env.Callbacks.PaymentStart(ev, submit) {
		done()
		return
	}

	defer done()

	payload, err := hostedFields.Tokenize(env.FlowContext, gateway.TokenizeOptions{
		BillingAddress: opts.BillingAddress,
		Vault:          opts.Vault,
	})
	if err != nil {
		env.Callbacks.PaymentError(submit, payment.MethodCard, &payment.TokenizeError{Err: err})
		return
	}
	if payload.Nonce == "" {
		env.Callbacks.PaymentError(submit, payment.MethodCard, &payment.TokenizeError{Err: errors.New("unknown")})
		return
	}
	payload.Method = payment.MethodCard

	if env.Verifier != nil {
		verified, err := env.Verifier.Verify(env.FlowContext, env.Amount, payload, opts.BillingAddress)
		if err != nil {
			// The raw token is discarded; a failed verification is never
			// surfaced as success.
			env.Callbacks.PaymentError(submit, payment.MethodCard, &payment.VerificationError{Err: err})
			return
		}
		verified.Method = payment.MethodCard
		env.Callbacks.PaymentRequestable(submit, verified)
		return
	}

	env.Callbacks.PaymentRequestable(submit, payload)
}
