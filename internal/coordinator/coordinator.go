// Package coordinator fans an activation cycle out over the configured
// method adapters. Adapters run concurrently and unordered; every
// adapter's failure is caught and reported independently, and the ready
// map is handed back in one piece only after all attempted adapters have
// settled, so the rendering layer never observes a partially-ready state.
package coordinator

import (
	"context"
	"errors"
	"log"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/yourorg/payment-activation/internal/adapter"
	"github.com/yourorg/payment-activation/internal/metrics"
	"github.com/yourorg/payment-activation/internal/payment"
	"github.com/yourorg/payment-activation/internal/policy"
)

// Coordinator invokes adapters and aggregates their mount callbacks.
type Coordinator struct {
	policy *policy.MethodPolicy
}

// New creates a Coordinator. policy may be nil, meaning no eligibility
// rules.
func New(pol *policy.MethodPolicy) *Coordinator {
	return &Coordinator{policy: pol}
}

// ActivateAll runs every adapter concurrently and returns the map of
// methods that produced a mount callback. report receives one entry per
// failed, ineligible or blocked adapter, keyed by method; it must be safe
// for concurrent use.
func (c *Coordinator) ActivateAll(
	ctx context.Context,
	env *adapter.Env,
	adapters []adapter.Adapter,
	report func(method payment.Method, reason error),
) payment.Methods {
	tracer := otel.Tracer("coordinator")
	ctx, span := tracer.Start(ctx, "Coordinator.ActivateAll")
	defer span.End()
	span.SetAttributes(attribute.Int("adapters.requested", len(adapters)))

	var mu sync.Mutex
	var wg sync.WaitGroup
	ready := make(payment.Methods)

	for _, a := range adapters {
		wg.Add(1)
		go func(a adapter.Adapter) {
			defer wg.Done()
			method := a.Method()

			if c.policy != nil {
				decision, err := c.policy.Evaluate(method, env.Amount, env.Environment)
				if err != nil {
					metrics.CountMethodActivation(string(method), metrics.ResultError)
					report(method, err)
					return
				}
				if !decision.Allow {
					metrics.CountMethodActivation(string(method), metrics.ResultBlocked)
					report(method, &payment.CapabilityError{
						Reason: "method blocked by eligibility rule " + decision.Rule,
					})
					return
				}
			}

			mount, err := a.Activate(ctx, env)
			if err != nil {
				var capErr *payment.CapabilityError
				if errors.As(err, &capErr) {
					metrics.CountMethodActivation(string(method), metrics.ResultUnavailable)
				} else {
					metrics.CountMethodActivation(string(method), metrics.ResultError)
				}
				log.Printf("coordinator: method %s did not activate: %v", method, err)
				report(method, err)
				return
			}
			if mount == nil {
				// An adapter returning neither a mount nor an error is a
				// readiness failure, never silently dropped.
				metrics.CountMethodActivation(string(method), metrics.ResultUnavailable)
				report(method, &payment.CapabilityError{Reason: "adapter produced no mount callback"})
				return
			}

			metrics.CountMethodActivation(string(method), metrics.ResultReady)
			mu.Lock()
			ready[method] = mount
			mu.Unlock()
		}(a)
	}

	wg.Wait()
	span.SetAttributes(attribute.Int("adapters.ready", len(ready)))
	return ready
}
