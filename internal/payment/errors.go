package payment

import "fmt"

// SessionError means the session with the payment network could not be
// established. It is fatal to the whole activation cycle and is reported
// without a method identifier.
type SessionError struct {
	Err error
}

func (e *SessionError) Error() string {
	return fmt.Sprintf("payment: session bootstrap failed: %v", e.Err)
}

func (e *SessionError) Unwrap() error { return e.Err }

// FieldSetupError means hosted field creation was rejected by the network.
// Fatal to the card adapter only.
type FieldSetupError struct {
	Err error
}

func (e *FieldSetupError) Error() string {
	return fmt.Sprintf("payment: hosted field setup rejected: %v", e.Err)
}

func (e *FieldSetupError) Unwrap() error { return e.Err }

// VerificationError means the 3-D Secure step failed. The raw token is
// discarded and never surfaced.
type VerificationError struct {
	Err error
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("payment: card verification failed: %v", e.Err)
}

func (e *VerificationError) Unwrap() error { return e.Err }

// CapabilityError is not a failure: the device or browser cannot offer the
// method at all, so no mount callback is produced. It is reported through
// the error channel as informational.
type CapabilityError struct {
	Reason string
}

func (e *CapabilityError) Error() string {
	return fmt.Sprintf("payment: method unavailable: %s", e.Reason)
}

// TokenizeError means the network rejected the tokenization attempt.
type TokenizeError struct {
	Err error
}

func (e *TokenizeError) Error() string {
	return fmt.Sprintf("payment: tokenize failed: %v", e.Err)
}

func (e *TokenizeError) Unwrap() error { return e.Err }

// CancelledError means the buyer backed out of the flow. Data carries the
// provider's cancellation event so callers can special-case it.
type CancelledError struct {
	Message string
	Data    any
}

func (e *CancelledError) Error() string { return e.Message }

// ConfigError means the caller's configuration cannot be honored, e.g. a
// designated variant container is missing.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("payment: configuration error: %s", e.Reason)
}
