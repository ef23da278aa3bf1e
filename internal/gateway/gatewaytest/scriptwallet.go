package gatewaytest

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/yourorg/payment-activation/internal/gateway"
	"github.com/yourorg/payment-activation/internal/payment"
)

// ScriptWalletGateway is a scripted gateway.ScriptWalletGateway. The zero
// value reports the script as absent and loads it successfully on demand.
type ScriptWalletGateway struct {
	ScriptPresentFunc     func() bool
	LoadScriptFunc        func(ctx context.Context) error
	CreateInstanceFunc    func(ctx context.Context, session gateway.Session, opts gateway.ScriptWalletOptions) (gateway.ScriptWalletInstance, error)
	NewPaymentsClientFunc func(env gateway.Environment) (gateway.PaymentsClient, error)

	mu        sync.Mutex
	loadCalls int
	lastOpts  gateway.ScriptWalletOptions
}

// ScriptPresent implements gateway.ScriptWalletGateway.
func (g *ScriptWalletGateway) ScriptPresent() bool {
	if g.ScriptPresentFunc != nil {
		return g.ScriptPresentFunc()
	}
	return false
}

// LoadScript implements gateway.ScriptWalletGateway.
func (g *ScriptWalletGateway) LoadScript(ctx context.Context) error {
	g.mu.Lock()
	g.loadCalls++
	g.mu.Unlock()

	if g.LoadScriptFunc != nil {
		return g.LoadScriptFunc(ctx)
	}
	return nil
}

// LoadCalls reports how often the script was fetched.
func (g *ScriptWalletGateway) LoadCalls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.loadCalls
}

// CreateInstance implements gateway.ScriptWalletGateway.
func (g *ScriptWalletGateway) CreateInstance(
	ctx context.Context,
	session gateway.Session,
	opts gateway.ScriptWalletOptions,
) (gateway.ScriptWalletInstance, error) {
	g.mu.Lock()
	g.lastOpts = opts
	g.mu.Unlock()

	if g.CreateInstanceFunc != nil {
		return g.CreateInstanceFunc(ctx, session, opts)
	}
	return &ScriptWalletInstance{}, nil
}

// LastOptions returns the options from the most recent CreateInstance.
func (g *ScriptWalletGateway) LastOptions() gateway.ScriptWalletOptions {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastOpts
}

// NewPaymentsClient implements gateway.ScriptWalletGateway.
func (g *ScriptWalletGateway) NewPaymentsClient(env gateway.Environment) (gateway.PaymentsClient, error) {
	if g.NewPaymentsClientFunc != nil {
		return g.NewPaymentsClientFunc(env)
	}
	return &PaymentsClient{}, nil
}

// ScriptWalletInstance is a scripted gateway.ScriptWalletInstance.
type ScriptWalletInstance struct {
	CreateDataRequestFunc func(ctx context.Context, info gateway.TransactionInfo) (gateway.PaymentDataRequest, error)
	ParseResponseFunc     func(ctx context.Context, paymentData any) (payment.Payload, error)
}

// CreateDataRequest implements gateway.ScriptWalletInstance.
func (i *ScriptWalletInstance) CreateDataRequest(
	ctx context.Context,
	info gateway.TransactionInfo,
) (gateway.PaymentDataRequest, error) {
	if i.CreateDataRequestFunc != nil {
		return i.CreateDataRequestFunc(ctx, info)
	}
	return gateway.PaymentDataRequest{
		APIVersion:            2,
		AllowedPaymentMethods: []string{"CARD"},
		TransactionInfo:       info,
	}, nil
}

// ParseResponse implements gateway.ScriptWalletInstance.
func (i *ScriptWalletInstance) ParseResponse(ctx context.Context, paymentData any) (payment.Payload, error) {
	if i.ParseResponseFunc != nil {
		return i.ParseResponseFunc(ctx, paymentData)
	}
	return payment.Payload{
		Type:  payment.PayloadTypeAndroidPay,
		Nonce: uuid.NewString(),
	}, nil
}

// PaymentsClient is a scripted gateway.PaymentsClient. The zero value is
// ready to pay and returns an opaque payment-data blob.
type PaymentsClient struct {
	IsReadyToPayFunc    func(ctx context.Context, req gateway.PaymentDataRequest) (bool, error)
	LoadPaymentDataFunc func(ctx context.Context, req gateway.PaymentDataRequest) (any, error)
}

// IsReadyToPay implements gateway.PaymentsClient.
func (c *PaymentsClient) IsReadyToPay(ctx context.Context, req gateway.PaymentDataRequest) (bool, error) {
	if c.IsReadyToPayFunc != nil {
		return c.IsReadyToPayFunc(ctx, req)
	}
	return true, nil
}

// LoadPaymentData implements gateway.PaymentsClient.
func (c *PaymentsClient) LoadPaymentData(ctx context.Context, req gateway.PaymentDataRequest) (any, error) {
	if c.LoadPaymentDataFunc != nil {
		return c.LoadPaymentDataFunc(ctx, req)
	}
	return map[string]string{"token": uuid.NewString()}, nil
}
