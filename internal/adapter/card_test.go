package adapter

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/payment-activation/internal/config"
	"github.com/yourorg/payment-activation/internal/dom"
	"github.com/yourorg/payment-activation/internal/gateway"
	"github.com/yourorg/payment-activation/internal/gateway/gatewaytest"
	"github.com/yourorg/payment-activation/internal/payment"
)

// cardForm builds a container with number/cvv/expirationDate fields and a
// submit control.
func cardForm() (*dom.MemoryElement, *dom.MemoryElement) {
	form := dom.NewMemoryElement("card-form")
	form.Append(dom.NewMemoryElement("number").SetData("placeholder", "Card number"))
	form.Append(dom.NewMemoryElement("cvv").SetData("placeholder", "CVV").SetData("type", "password"))
	form.Append(dom.NewMemoryElement("expirationDate").SetData("placeholder", "MM/YY"))
	submit := form.Append(dom.NewMemoryElement("pay").SetAttr("type", "submit"))
	return form, submit
}

func TestCardSubmitTokenizesAndForwardsPayload(t *testing.T) {
	hfGateway := &gatewaytest.HostedFieldsGateway{}
	cfg := &config.Config{Card: &config.CardOptions{}}
	env, rec := newTestEnv(cfg, Gateways{HostedFields: hfGateway})

	mount, err := Card{}.Activate(context.Background(), env)
	require.NoError(t, err)
	require.NotNil(t, mount)

	form, submit := cardForm()
	mount(form)

	opts := hfGateway.LastOptions()
	assert.Len(t, opts.Fields, 3)
	assert.Equal(t, "password", opts.Fields[gateway.FieldCVV].Type)
	assert.Equal(t, "Card number", opts.Fields[gateway.FieldNumber].Placeholder)

	submit.Click()

	require.Len(t, rec.payloads, 1)
	assert.Equal(t, payment.MethodCard, rec.payloads[0].Method)
	assert.NotEmpty(t, rec.payloads[0].Nonce)
	assert.Equal(t, 1, rec.starts)
	assert.True(t, submit.Enabled())
}

func TestCardFocusesFirstInvalidFieldBeforeAnyNetworkCall(t *testing.T) {
	hfGateway := &gatewaytest.HostedFieldsGateway{}
	cfg := &config.Config{Card: &config.CardOptions{}}
	env, rec := newTestEnv(cfg, Gateways{HostedFields: hfGateway})

	mount, err := Card{}.Activate(context.Background(), env)
	require.NoError(t, err)

	form, submit := cardForm()
	mount(form)

	hf := hfGateway.Created()[0]
	hf.StateFunc = func() gateway.FieldsState {
		return gateway.FieldsState{Fields: map[gateway.FieldKey]gateway.FieldState{
			gateway.FieldNumber:         {IsValid: true},
			gateway.FieldCVV:            {IsValid: false, IsEmpty: true},
			gateway.FieldExpirationDate: {IsValid: false},
		}}
	}

	submit.Click()

	// cvv precedes expirationDate in field order.
	assert.Equal(t, []gateway.FieldKey{gateway.FieldCVV}, hf.Focused())
	assert.Zero(t, hf.TokenizeCalls())
	assert.Empty(t, rec.payloads)
	assert.Empty(t, rec.paymentErrors)
	assert.True(t, submit.Enabled())
}

func TestCardOnSubmitAcceptSkipsDefaultValidation(t *testing.T) {
	hfGateway := &gatewaytest.HostedFieldsGateway{}
	cfg := &config.Config{Card: &config.CardOptions{
		OnSubmit: func(state gateway.FieldsState) config.SubmitDecision {
			return config.SubmitAccept
		},
	}}
	env, rec := newTestEnv(cfg, Gateways{HostedFields: hfGateway})

	mount, err := Card{}.Activate(context.Background(), env)
	require.NoError(t, err)

	form, submit := cardForm()
	mount(form)

	hf := hfGateway.Created()[0]
	hf.StateFunc = func() gateway.FieldsState {
		return gateway.FieldsState{Fields: map[gateway.FieldKey]gateway.FieldState{
			gateway.FieldNumber: {IsValid: false},
		}}
	}

	submit.Click()

	assert.Equal(t, 1, hf.TokenizeCalls())
	assert.Len(t, rec.payloads, 1)
}

func TestCardOnSubmitRejectAbortsSilently(t *testing.T) {
	hfGateway := &gatewaytest.HostedFieldsGateway{}
	cfg := &config.Config{Card: &config.CardOptions{
		OnSubmit: func(state gateway.FieldsState) config.SubmitDecision {
			return config.SubmitReject
		},
	}}
	env, rec := newTestEnv(cfg, Gateways{HostedFields: hfGateway})

	mount, err := Card{}.Activate(context.Background(), env)
	require.NoError(t, err)

	form, submit := cardForm()
	mount(form)
	submit.Click()

	assert.Zero(t, hfGateway.Created()[0].TokenizeCalls())
	assert.Empty(t, rec.payloads)
	assert.Zero(t, rec.starts)
	assert.True(t, submit.Enabled())
}

func TestCardStartVetoStopsTokenization(t *testing.T) {
	hfGateway := &gatewaytest.HostedFieldsGateway{}
	cfg := &config.Config{Card: &config.CardOptions{}}
	env, rec := newTestEnv(cfg, Gateways{HostedFields: hfGateway})
	rec.vetoStart = true

	mount, err := Card{}.Activate(context.Background(), env)
	require.NoError(t, err)

	form, submit := cardForm()
	mount(form)
	submit.Click()

	assert.Equal(t, 1, rec.starts)
	assert.Zero(t, hfGateway.Created()[0].TokenizeCalls())
	assert.Empty(t, rec.payloads)
	assert.True(t, submit.Enabled())
}

func TestCardTokenizeFailureReportsTokenizeError(t *testing.T) {
	hfGateway := &gatewaytest.HostedFieldsGateway{}
	cfg := &config.Config{Card: &config.CardOptions{}}
	env, rec := newTestEnv(cfg, Gateways{HostedFields: hfGateway})

	mount, err := Card{}.Activate(context.Background(), env)
	require.NoError(t, err)

	form, submit := cardForm()
	mount(form)

	hf := hfGateway.Created()[0]
	hf.TokenizeFunc = func(ctx context.Context, opts gateway.TokenizeOptions) (payment.Payload, error) {
		return payment.Payload{}, errors.New("declined")
	}

	submit.Click()

	require.Len(t, rec.paymentErrors, 1)
	var tokErr *payment.TokenizeError
	assert.ErrorAs(t, rec.paymentErrors[0], &tokErr)
	assert.Equal(t, payment.MethodCard, rec.paymentMethods[0])
	assert.Empty(t, rec.payloads)
}

func TestCardVerificationFailureDiscardsRawToken(t *testing.T) {
	hfGateway := &gatewaytest.HostedFieldsGateway{}
	cfg := &config.Config{Card: &config.CardOptions{}}
	env, rec := newTestEnv(cfg, Gateways{HostedFields: hfGateway})
	env.Verifier = verifierFunc(func(ctx context.Context, amount payment.Amount, raw payment.Payload, billing map[string]string) (payment.Payload, error) {
		return payment.Payload{}, errors.New("authentication failed")
	})

	mount, err := Card{}.Activate(context.Background(), env)
	require.NoError(t, err)

	form, submit := cardForm()
	mount(form)
	submit.Click()

	require.Len(t, rec.paymentErrors, 1)
	var verErr *payment.VerificationError
	assert.ErrorAs(t, rec.paymentErrors[0], &verErr)
	assert.Empty(t, rec.payloads)
}

func TestCardVerifiedPayloadReplacesRawToken(t *testing.T) {
	hfGateway := &gatewaytest.HostedFieldsGateway{}
	cfg := &config.Config{Card: &config.CardOptions{}}
	env, rec := newTestEnv(cfg, Gateways{HostedFields: hfGateway})
	env.Verifier = verifierFunc(func(ctx context.Context, amount payment.Amount, raw payment.Payload, billing map[string]string) (payment.Payload, error) {
		return payment.Payload{Nonce: "verified-nonce", LiabilityShifted: true}, nil
	})

	mount, err := Card{}.Activate(context.Background(), env)
	require.NoError(t, err)

	form, submit := cardForm()
	mount(form)
	submit.Click()

	require.Len(t, rec.payloads, 1)
	assert.Equal(t, "verified-nonce", rec.payloads[0].Nonce)
	assert.True(t, rec.payloads[0].LiabilityShifted)
	assert.Equal(t, payment.MethodCard, rec.payloads[0].Method)
}

func TestCardCreateFailureReportsFieldSetupError(t *testing.T) {
	hfGateway := &gatewaytest.HostedFieldsGateway{
		CreateFunc: func(ctx context.Context, session gateway.Session, opts gateway.HostedFieldsOptions) (gateway.HostedFields, error) {
			return nil, errors.New("fields rejected")
		},
	}
	cfg := &config.Config{Card: &config.CardOptions{}}
	env, rec := newTestEnv(cfg, Gateways{HostedFields: hfGateway})

	mount, err := Card{}.Activate(context.Background(), env)
	require.NoError(t, err)

	form, _ := cardForm()
	mount(form)

	require.Len(t, rec.activationErrors, 1)
	var setupErr *payment.FieldSetupError
	assert.ErrorAs(t, rec.activationErrors[0], &setupErr)
	assert.Equal(t, payment.MethodCard, rec.activationMethods[0])
}

func TestCardWithoutSubmitControlSkipsBinding(t *testing.T) {
	hfGateway := &gatewaytest.HostedFieldsGateway{}
	cfg := &config.Config{Card: &config.CardOptions{}}
	env, rec := newTestEnv(cfg, Gateways{HostedFields: hfGateway})

	mount, err := Card{}.Activate(context.Background(), env)
	require.NoError(t, err)

	bare := dom.NewMemoryElement("no-submit")
	mount(bare)

	assert.Empty(t, hfGateway.Created())
	assert.Empty(t, rec.activationErrors)
}

func TestCardRegistersHostedFieldsReleaser(t *testing.T) {
	hfGateway := &gatewaytest.HostedFieldsGateway{}
	cfg := &config.Config{Card: &config.CardOptions{}}
	env, rec := newTestEnv(cfg, Gateways{HostedFields: hfGateway})

	mount, err := Card{}.Activate(context.Background(), env)
	require.NoError(t, err)

	form, _ := cardForm()
	mount(form)

	require.Len(t, rec.releasers, 1)
	rec.releasers[0](context.Background())
	assert.Equal(t, 1, hfGateway.Created()[0].TeardownCalls())
}

// verifierFunc adapts a function to the Verifier interface.
type verifierFunc func(ctx context.Context, amount payment.Amount, raw payment.Payload, billing map[string]string) (payment.Payload, error)

func (f verifierFunc) Verify(ctx context.Context, amount payment.Amount, raw payment.Payload, billing map[string]string) (payment.Payload, error) {
	return f(ctx, amount, raw, billing)
}
