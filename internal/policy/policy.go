// Package policy evaluates dynamic eligibility rules over payment
// methods. Rules are caller-configured boolean expressions with the
// method, amount and environment in scope; a method is only handed to its
// adapter when every rule passes. An empty rule set allows everything.
package policy

import (
	"fmt"

	"github.com/Knetic/govaluate"

	"github.com/yourorg/payment-activation/internal/gateway"
	"github.com/yourorg/payment-activation/internal/payment"
)

// RuleConfig is one named rule expression, e.g.
// {Name: "NoWalletOverCap", Expression: "method != 'googlePay' || total < 500"}.
type RuleConfig struct {
	Name       string
	Expression string
}

// Decision is the outcome of evaluating the rule set for one method.
type Decision struct {
	Allow bool
	// Rule names the first rule that blocked the method, empty when
	// allowed.
	Rule string
}

type compiledRule struct {
	name string
	expr *govaluate.EvaluableExpression
}

// MethodPolicy holds the compiled rule set.
type MethodPolicy struct {
	rules []compiledRule
}

// NewMethodPolicy compiles the rule expressions.
func NewMethodPolicy(rules []RuleConfig) (*MethodPolicy, error) {
	compiled := make([]compiledRule, 0, len(rules))
	for _, rule := range rules {
		expr, err := govaluate.NewEvaluableExpression(rule.Expression)
		if err != nil {
			return nil, fmt.Errorf("policy: compiling rule %q: %w", rule.Name, err)
		}
		compiled = append(compiled, compiledRule{name: rule.Name, expr: expr})
	}
	return &MethodPolicy{rules: compiled}, nil
}

// Evaluate runs every rule for the method. The first rule that yields
// false blocks the method; a rule that does not yield a boolean is an
// error.
func (p *MethodPolicy) Evaluate(
	method payment.Method,
	amount payment.Amount,
	env gateway.Environment,
) (Decision, error) {
	params := map[string]any{
		"method":      string(method),
		"currency":    amount.Currency,
		"total":       amount.Total,
		"environment": string(env),
	}

	for _, rule := range p.rules {
		result, err := rule.expr.Evaluate(params)
		if err != nil {
			return Decision{}, fmt.Errorf("policy: evaluating rule %q: %w", rule.name, err)
		}
		allowed, ok := result.(bool)
		if !ok {
			return Decision{}, fmt.Errorf("policy: rule %q did not evaluate to a boolean", rule.name)
		}
		if !allowed {
			return Decision{Allow: false, Rule: rule.name}, nil
		}
	}
	return Decision{Allow: true}, nil
}
