package payment

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yourorg/payment-activation/internal/dom"
)

func TestAmountFormatTotal(t *testing.T) {
	zero, three := 0, 3
	assert.Equal(t, "12.34", Amount{Currency: "USD", Total: 12.34}.FormatTotal())
	assert.Equal(t, "12.00", Amount{Currency: "USD", Total: 12}.FormatTotal())
	// Only an absent FractionDigits defaults to 2; an explicit 0 keeps
	// zero-decimal currencies whole.
	assert.Equal(t, "100.00", Amount{Currency: "JPY", Total: 100}.FormatTotal())
	assert.Equal(t, "100", Amount{Currency: "JPY", Total: 100, FractionDigits: &zero}.FormatTotal())
	assert.Equal(t, "0.125", Amount{Currency: "BHD", Total: 0.125, FractionDigits: &three}.FormatTotal())
}

func TestAmountKeyIsStable(t *testing.T) {
	a := Amount{Currency: "EUR", Total: 19.9}
	b := Amount{Currency: "EUR", Total: 19.90}
	assert.Equal(t, a.Key(), b.Key())
	assert.NotEqual(t, a.Key(), Amount{Currency: "USD", Total: 19.9}.Key())
	assert.Equal(t, "EUR:19.90", a.Key())
}

func TestPayloadClassifiers(t *testing.T) {
	assert.True(t, Payload{Type: PayloadTypeCreditCard}.IsCard())
	assert.True(t, Payload{Type: PayloadTypeApplePay}.IsApplePay())
	assert.True(t, Payload{Type: PayloadTypePayPalAccount}.IsPayPal())
	assert.True(t, Payload{Type: PayloadTypeAndroidPay}.IsGooglePay())
}

func TestGooglePayCardTagNeedsBinData(t *testing.T) {
	// A network-tokenized wallet card arrives under the generic card tag;
	// only the attached bin data marks it as a wallet payload.
	plain := Payload{Type: PayloadTypeCreditCard}
	assert.False(t, plain.IsGooglePay())
	assert.True(t, plain.IsCard())

	tokenized := Payload{
		Type:    PayloadTypeCreditCard,
		BinData: map[string]string{"prepaid": "No"},
	}
	assert.True(t, tokenized.IsGooglePay())
}

func TestMethodsHas(t *testing.T) {
	m := Methods{MethodCard: func(el dom.Element) {}}
	assert.True(t, m.Has(MethodCard))
	assert.False(t, m.Has(MethodPayPal))
	assert.False(t, Methods(nil).Has(MethodCard))
}

func TestErrorUnwrapping(t *testing.T) {
	cause := errors.New("declined")

	var tokErr *TokenizeError
	assert.ErrorAs(t, error(&TokenizeError{Err: cause}), &tokErr)
	assert.ErrorIs(t, &TokenizeError{Err: cause}, cause)
	assert.ErrorIs(t, &SessionError{Err: cause}, cause)
	assert.ErrorIs(t, &FieldSetupError{Err: cause}, cause)
	assert.ErrorIs(t, &VerificationError{Err: cause}, cause)
}

func TestCancelledErrorCarriesProviderData(t *testing.T) {
	data := map[string]string{"reason": "sheet dismissed"}
	err := &CancelledError{Message: "wallet payment cancelled", Data: data}

	assert.Equal(t, "wallet payment cancelled", err.Error())

	var cancelled *CancelledError
	assert.ErrorAs(t, error(err), &cancelled)
	assert.Equal(t, data, cancelled.Data)
}

func TestCapabilityErrorMessage(t *testing.T) {
	err := &CapabilityError{Reason: "this device cannot make payments"}
	assert.Contains(t, err.Error(), "method unavailable")
	assert.Contains(t, err.Error(), "cannot make payments")
}
