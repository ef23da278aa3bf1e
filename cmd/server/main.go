// Command server exposes the activation pipeline over HTTP for local
// exploration. Every request runs one full cycle against scripted
// in-memory gateways: bootstrap, concurrent method activation, a
// simulated card submission, then teardown, and responds with the ready
// methods plus the recorded report entries.
package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/yourorg/payment-activation/internal/adapter"
	"github.com/yourorg/payment-activation/internal/config"
	"github.com/yourorg/payment-activation/internal/coordinator"
	"github.com/yourorg/payment-activation/internal/dom"
	"github.com/yourorg/payment-activation/internal/gateway/gatewaytest"
	"github.com/yourorg/payment-activation/internal/lifecycle"
	"github.com/yourorg/payment-activation/internal/monitor"
	"github.com/yourorg/payment-activation/internal/payment"
	"github.com/yourorg/payment-activation/internal/policy"
	"github.com/yourorg/payment-activation/internal/reporting"
)

type activateResponse struct {
	ReadyMethods  []string                 `json:"readyMethods"`
	State         string                   `json:"state"`
	Entries       []reportedEntry          `json:"entries"`
	Retrospective *reporting.Retrospective `json:"retrospective"`
}

type reportedEntry struct {
	Method string `json:"method,omitempty"`
	Kind   string `json:"kind"`
	Reason string `json:"reason,omitempty"`
	Nonce  string `json:"nonce,omitempty"`
}

func activateHandler(cm *monitor.ContractMonitor) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := c.GetRawData()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read request body: " + err.Error()})
			return
		}

		valid, validationErrors, err := cm.Validate(body)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
			return
		}
		if !valid {
			c.JSON(http.StatusBadRequest, gin.H{"error": monitor.FormatErrors(validationErrors)})
			return
		}

		var req config.Request
		if err := json.Unmarshal(body, &req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
			return
		}

		cfg, err := config.Build(&req)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		recorder := reporting.NewRecorder()
		cfg.OnError = recorder.ActivationError
		cfg.OnPaymentError = recorder.PaymentError
		cfg.OnPaymentRequestable = func(ctx context.Context, payload payment.Payload) error {
			recorder.Payment(payload)
			return nil
		}

		rules := []policy.RuleConfig{
			{Name: "PositiveAmount", Expression: "total > 0"},
		}
		methodPolicy, err := policy.NewMethodPolicy(rules)
		if err != nil {
			log.Printf("Error creating method policy: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server configuration error: failed to initialize policy"})
			return
		}

		controller := lifecycle.NewController(lifecycle.Options{
			ClientFactory: &gatewaytest.ClientFactory{},
			ThreeDSecure:  &gatewaytest.ThreeDSecureGateway{},
			Gateways: adapter.Gateways{
				HostedFields: &gatewaytest.HostedFieldsGateway{},
				ThreeDSecure: &gatewaytest.ThreeDSecureGateway{},
				DeviceWallet: &gatewaytest.DeviceWalletGateway{},
				ScriptWallet: &gatewaytest.ScriptWalletGateway{},
				Checkout:     &gatewaytest.CheckoutGateway{},
				LocalPayment: &gatewaytest.LocalPaymentGateway{},
			},
			Coordinator: coordinator.New(methodPolicy),
		})

		ctx := c.Request.Context()
		if err := controller.Apply(ctx, cfg); err != nil {
			log.Printf("Activation cycle failed: %v", err)
		}
		defer controller.Teardown(ctx)

		methods, ready := controller.Methods()
		containers := map[payment.Method]*dom.MemoryElement{}
		var names []string
		for method, mount := range methods {
			names = append(names, string(method))
			container := demoContainer(method)
			containers[method] = container
			mount(container)
		}

		// One simulated buyer interaction per interactive method.
		if ready {
			for method, container := range containers {
				clickDemoControl(method, container)
			}
		}

		resp := activateResponse{
			ReadyMethods:  names,
			State:         controller.State().String(),
			Retrospective: recorder.Retrospective(),
		}
		for _, e := range recorder.Entries() {
			re := reportedEntry{
				Method: string(e.Method),
				Kind:   string(e.Kind),
				Reason: e.Reason,
			}
			if e.Payload != nil {
				re.Nonce = e.Payload.Nonce
			}
			resp.Entries = append(resp.Entries, re)
		}
		c.JSON(http.StatusOK, resp)
	}
}

// demoContainer builds a plausible mount target for the method: the card
// form gets field sub-elements and a submit control, everything else is a
// single button or container.
func demoContainer(method payment.Method) *dom.MemoryElement {
	container := dom.NewMemoryElement(string(method) + "-demo")
	if method == payment.MethodCard {
		container.Append(dom.NewMemoryElement("number").SetData("placeholder", "Card number"))
		container.Append(dom.NewMemoryElement("cvv").SetData("placeholder", "CVV"))
		container.Append(dom.NewMemoryElement("expirationDate").SetData("placeholder", "MM/YY"))
		container.Append(dom.NewMemoryElement("pay-button").SetAttr("type", "submit"))
	}
	return container
}

func clickDemoControl(method payment.Method, container *dom.MemoryElement) {
	if method == payment.MethodCard {
		if submit, ok := container.Query(`[type="submit"]`).(*dom.MemoryElement); ok {
			submit.Click()
		}
		return
	}
	container.Click()
}

func setupRouter() (*gin.Engine, error) {
	cm, err := monitor.NewContractMonitor()
	if err != nil {
		return nil, err
	}
	router := gin.Default()
	router.POST("/activate", activateHandler(cm))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return router, nil
}

func initTracing() (func(context.Context) error, error) {
	exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, err
	}
	provider := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
	otel.SetTracerProvider(provider)
	return provider.Shutdown, nil
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment")
	}

	shutdown, err := initTracing()
	if err != nil {
		log.Fatalf("Failed to initialize tracing: %v", err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			log.Printf("Error shutting down tracer provider: %v", err)
		}
	}()

	router, err := setupRouter()
	if err != nil {
		log.Fatalf("Failed to set up router: %v", err)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Println("Starting server on :" + port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
