// Package monitor validates inbound activation requests against a JSON
// schema before a Config is built from them.
package monitor

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// activationRequestSchema describes the wire form of config.Request. The
// schema ships with the binary so validation needs no filesystem access.
const activationRequestSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "title": "ActivationRequest",
  "type": "object",
  "required": ["authorization", "amount", "methods"],
  "properties": {
    "authorization": {"type": "string", "minLength": 1},
    "amount": {
      "type": "object",
      "required": ["currency", "total"],
      "properties": {
        "currency": {"type": "string", "minLength": 3, "maxLength": 3},
        "total": {"type": "number", "exclusiveMinimum": 0},
        "fractionDigits": {"type": "integer", "minimum": 0, "maximum": 4}
      }
    },
    "environment": {"type": "string", "enum": ["TEST", "PRODUCTION"]},
    "threeDSecure": {"type": "boolean"},
    "methods": {
      "type": "object",
      "minProperties": 1,
      "properties": {
        "card": {"type": "object"},
        "applePay": {"type": "object"},
        "googlePay": {"type": "object"},
        "paypal": {"type": "object"},
        "alipay": {"type": "object"}
      },
      "additionalProperties": false
    }
  }
}`

// ContractMonitor validates activation request documents.
type ContractMonitor struct {
	schema *gojsonschema.Schema
}

// NewContractMonitor compiles the embedded schema.
func NewContractMonitor() (*ContractMonitor, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(activationRequestSchema))
	if err != nil {
		return nil, fmt.Errorf("monitor: compiling activation request schema: %w", err)
	}
	return &ContractMonitor{schema: schema}, nil
}

// Validate checks the request body against the schema. It returns true
// when valid, otherwise false plus one message per violation.
func (cm *ContractMonitor) Validate(requestBody []byte) (bool, []string, error) {
	result, err := cm.schema.Validate(gojsonschema.NewBytesLoader(requestBody))
	if err != nil {
		return false, nil, fmt.Errorf("monitor: validation failed to run: %w", err)
	}
	if result.Valid() {
		return true, nil, nil
	}
	var errors []string
	for _, desc := range result.Errors() {
		errors = append(errors, desc.String())
	}
	return false, errors, nil
}

// FormatErrors joins validation messages into one line for logs and
// responses.
func FormatErrors(validationErrors []string) string {
	if len(validationErrors) == 0 {
		return ""
	}
	return "Validation errors: " + strings.Join(validationErrors, "; ")
}
