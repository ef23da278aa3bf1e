package gateway

import (
	"context"

	"github.com/yourorg/payment-activation/internal/payment"
)

// FieldKey names one hosted card input field.
type FieldKey string

const (
	FieldCardholderName  FieldKey = "cardholderName"
	FieldCVV             FieldKey = "cvv"
	FieldExpirationDate  FieldKey = "expirationDate"
	FieldExpirationMonth FieldKey = "expirationMonth"
	FieldExpirationYear  FieldKey = "expirationYear"
	FieldNumber          FieldKey = "number"
	FieldPostalCode      FieldKey = "postalCode"
)

// FieldKeys is the fixed, ordered set of recognized field keys. The order
// also decides which invalid field receives focus first.
var FieldKeys = []FieldKey{
	FieldCardholderName,
	FieldCVV,
	FieldExpirationDate,
	FieldExpirationMonth,
	FieldExpirationYear,
	FieldNumber,
	FieldPostalCode,
}

// FieldConfig describes one hosted field to be created by the network.
type FieldConfig struct {
	Selector    string
	Placeholder string
	Type        string
}

// HostedFieldsOptions configures hosted field creation.
type HostedFieldsOptions struct {
	Fields map[FieldKey]*FieldConfig
	Styles map[string]map[string]string
}

// FieldState is the validation state of one field.
type FieldState struct {
	IsValid bool
	IsEmpty bool
}

// FieldsState is the validation state of the whole field set.
type FieldsState struct {
	Fields map[FieldKey]FieldState
}

// TokenizeOptions parameterize a hosted-fields tokenization attempt.
type TokenizeOptions struct {
	BillingAddress map[string]string
	Vault          bool
}

// HostedFieldsGateway creates hosted field sets from a session.
type HostedFieldsGateway interface {
	Create(ctx context.Context, session Session, opts HostedFieldsOptions) (HostedFields, error)
}

// HostedFields is one created set of hosted card inputs.
type HostedFields interface {
	State() FieldsState
	Focus(key FieldKey)
	Tokenize(ctx context.Context, opts TokenizeOptions) (payment.Payload, error)
	// Teardown releases the hosted inputs. Registered by the card adapter
	// as a cycle releaser.
	Teardown(ctx context.Context) error
}
