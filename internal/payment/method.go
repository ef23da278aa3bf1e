package payment

// Method identifies one payment method family. The set is closed per
// deployment: adapters are registered against these values and the ready
// map is keyed by them.
type Method string

const (
	MethodCard      Method = "card"
	MethodApplePay  Method = "applePay"
	MethodGooglePay Method = "googlePay"
	MethodPayPal    Method = "paypal"
	MethodAlipay    Method = "alipay"
)

// String implements fmt.Stringer.
func (m Method) String() string { return string(m) }
