package config

import (
	"fmt"

	"github.com/yourorg/payment-activation/internal/gateway"
	"github.com/yourorg/payment-activation/internal/payment"
)

// Request is the wire form of an activation configuration as accepted by
// a hosting service. It carries only data; hooks are attached by the host
// when building the Config.
type Request struct {
	Authorization string         `json:"authorization"`
	Amount        payment.Amount `json:"amount"`
	Environment   string         `json:"environment,omitempty"`
	ThreeDSecure  bool           `json:"threeDSecure,omitempty"`
	Methods       RequestMethods `json:"methods"`
}

// RequestMethods lists the wanted method descriptors. A present block
// requests that method.
type RequestMethods struct {
	Card      *CardRequest      `json:"card,omitempty"`
	ApplePay  *ApplePayRequest  `json:"applePay,omitempty"`
	GooglePay *GooglePayRequest `json:"googlePay,omitempty"`
	PayPal    *PayPalRequest    `json:"paypal,omitempty"`
	Alipay    *AlipayRequest    `json:"alipay,omitempty"`
}

// CardRequest is the wire form of CardOptions.
type CardRequest struct {
	Vault          bool              `json:"vault,omitempty"`
	BillingAddress map[string]string `json:"billingAddress,omitempty"`
}

// ApplePayRequest is the wire form of ApplePayOptions.
type ApplePayRequest struct {
	TotalLabel  string `json:"totalLabel,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
}

// GooglePayRequest is the wire form of GooglePayOptions.
type GooglePayRequest struct {
	MerchantID       string `json:"merchantId,omitempty"`
	TotalPriceStatus string `json:"totalPriceStatus,omitempty"`
	Version          int    `json:"version,omitempty"`
}

// PayPalRequest is the wire form of PayPalOptions.
type PayPalRequest struct {
	FundingSources    []string `json:"fundingSources,omitempty"`
	MerchantAccountID string   `json:"merchantAccountId,omitempty"`
	Vault             bool     `json:"vault,omitempty"`
	Intent            string   `json:"intent,omitempty"`
}

// AlipayRequest is the wire form of the alipay local-payment descriptor.
type AlipayRequest struct {
	CountryCode       string `json:"countryCode,omitempty"`
	MerchantAccountID string `json:"merchantAccountId,omitempty"`
}

// Build maps a Request onto a Config. Hooks are left nil for the host to
// attach.
func Build(req *Request) (*Config, error) {
	if req == nil {
		return nil, fmt.Errorf("config: request cannot be nil")
	}
	env := gateway.Environment(req.Environment)
	if env == "" {
		env = gateway.EnvironmentTest
	}
	if env != gateway.EnvironmentTest && env != gateway.EnvironmentProduction {
		return nil, fmt.Errorf("config: unknown environment %q", req.Environment)
	}

	cfg := &Config{
		Amount:        req.Amount,
		Authorization: req.Authorization,
		Environment:   env,
		ThreeDSecure:  req.ThreeDSecure,
	}

	if m := req.Methods.Card; m != nil {
		cfg.Card = &CardOptions{Vault: m.Vault, BillingAddress: m.BillingAddress}
	}
	if m := req.Methods.ApplePay; m != nil {
		cfg.ApplePay = &ApplePayOptions{TotalLabel: m.TotalLabel, DisplayName: m.DisplayName}
	}
	if m := req.Methods.GooglePay; m != nil {
		cfg.GooglePay = &GooglePayOptions{
			MerchantID:       m.MerchantID,
			TotalPriceStatus: m.TotalPriceStatus,
			Version:          m.Version,
		}
	}
	if m := req.Methods.PayPal; m != nil {
		cfg.PayPal = &PayPalOptions{
			FundingSources:    m.FundingSources,
			MerchantAccountID: m.MerchantAccountID,
			Vault:             m.Vault,
			Intent:            gateway.Intent(m.Intent),
		}
	}
	if m := req.Methods.Alipay; m != nil {
		cfg.Alipay = &LocalPaymentOptions{
			CountryCode:       m.CountryCode,
			MerchantAccountID: m.MerchantAccountID,
			Method:            payment.MethodAlipay,
		}
	}
	return cfg, nil
}
