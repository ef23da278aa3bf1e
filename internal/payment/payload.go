package payment

import "github.com/yourorg/payment-activation/internal/dom"

// Payload type tags as reported by the payment network. Some methods share
// a tag, see the classifiers below.
const (
	PayloadTypeCreditCard    = "CreditCard"
	PayloadTypeAndroidPay    = "AndroidPayCard"
	PayloadTypeApplePay      = "ApplePayCard"
	PayloadTypePayPalAccount = "PayPalAccount"
)

// PayloadDetails carries the instrument details attached to a tokenized
// payload.
type PayloadDetails struct {
	Bin      string `json:"bin,omitempty"`
	CardType string `json:"cardType,omitempty"`
	LastFour string `json:"lastFour,omitempty"`
	LastTwo  string `json:"lastTwo,omitempty"`
}

// Payload is the result of one successful transaction sub-flow: a token
// (nonce) plus provider-specific shape. It is a tagged union discriminated
// by Type plus disambiguating fields; exactly one concrete shape applies
// per transaction.
type Payload struct {
	Type        string         `json:"type"`
	Nonce       string         `json:"nonce"`
	Description string         `json:"description,omitempty"`
	Details     PayloadDetails `json:"details,omitempty"`

	// BinData is only populated by the script-wallet flow. Its presence
	// disambiguates a wallet token reported under the generic card tag.
	BinData map[string]string `json:"binData,omitempty"`

	// LiabilityShifted is set by the 3-D Secure verification step.
	LiabilityShifted bool `json:"liabilityShifted,omitempty"`

	// Method records which adapter produced the payload.
	Method Method `json:"method,omitempty"`
}

// IsApplePay reports whether the payload came from the device-wallet flow.
func (p Payload) IsApplePay() bool {
	return p.Type == PayloadTypeApplePay
}

// IsCard reports whether the payload is a hosted-fields card token.
func (p Payload) IsCard() bool {
	return p.Type == PayloadTypeCreditCard
}

// IsGooglePay reports whether the payload came from the script-wallet
// flow. The provider reports either the wallet tag or, for network
// tokenized cards, the generic card tag with bin data attached; the
// disambiguation rule lives here so a provider contract change is a
// one-line fix.
func (p Payload) IsGooglePay() bool {
	return p.Type == PayloadTypeAndroidPay ||
		(p.Type == PayloadTypeCreditCard && len(p.BinData) > 0)
}

// IsPayPal reports whether the payload is a redirect-checkout or
// local-transfer authorization.
func (p Payload) IsPayPal() bool {
	return p.Type == PayloadTypePayPalAccount
}

// Methods is the ready-methods map published once per activation cycle:
// only methods whose adapter initialized successfully appear. A new cycle
// replaces the map wholesale, it is never patched in place.
type Methods map[Method]dom.MountFunc

// Has reports whether a mount callback exists for the method.
func (m Methods) Has(method Method) bool {
	_, ok := m[method]
	return ok
}
