// Package reporting collects the pipeline's asynchronous reports: per
// method activation failures, capability notices, payment outcomes. The
// Recorder implements the caller's error and payment channels in one
// thread-safe place and can summarize a cycle after the fact.
package reporting

import (
	"errors"
	"sync"
	"time"

	"github.com/yourorg/payment-activation/internal/payment"
)

// Kind classifies one report entry.
type Kind string

const (
	// KindSessionError is a method-less cycle abort.
	KindSessionError Kind = "SESSION_ERROR"
	// KindActivationError is an adapter that failed to initialize.
	KindActivationError Kind = "ACTIVATION_ERROR"
	// KindCapability is the informational "device cannot pay" notice.
	KindCapability Kind = "CAPABILITY"
	// KindPaymentError is a failed click-triggered sub-flow.
	KindPaymentError Kind = "PAYMENT_ERROR"
	// KindCancelled is a buyer-initiated abort.
	KindCancelled Kind = "CANCELLED"
	// KindPayment is a successful, requestable payload.
	KindPayment Kind = "PAYMENT"
)

// Entry is one recorded report.
type Entry struct {
	Timestamp time.Time
	Method    payment.Method
	Kind      Kind
	Reason    string
	Payload   *payment.Payload
}

// Recorder accumulates entries for one component instance.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) add(e Entry) {
	e.Timestamp = time.Now()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
}

// ActivationError records an adapter (or session) initialization failure.
// Capability rejections are classified as informational; the empty method
// marks a session-level abort.
func (r *Recorder) ActivationError(method payment.Method, reason error) {
	kind := KindActivationError
	var capErr *payment.CapabilityError
	var sessErr *payment.SessionError
	switch {
	case errors.As(reason, &capErr):
		kind = KindCapability
	case method == "" || errors.As(reason, &sessErr):
		kind = KindSessionError
	}
	r.add(Entry{Method: method, Kind: kind, Reason: reason.Error()})
}

// PaymentError records a failed sub-flow, distinguishing buyer
// cancellation from provider failure.
func (r *Recorder) PaymentError(method payment.Method, reason error) {
	kind := KindPaymentError
	var cancelled *payment.CancelledError
	if errors.As(reason, &cancelled) {
		kind = KindCancelled
	}
	r.add(Entry{Method: method, Kind: kind, Reason: reason.Error()})
}

// Payment records a requestable payload.
func (r *Recorder) Payment(payload payment.Payload) {
	p := payload
	r.add(Entry{Method: payload.Method, Kind: KindPayment, Payload: &p})
}

// Entries returns a copy of everything recorded so far.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Reset drops all entries, e.g. between cycles in tests.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = nil
}

// Retrospective summarizes the recorded entries.
type Retrospective struct {
	TotalEntries      int
	Payments          int
	PaymentErrors     int
	Cancellations     int
	ActivationErrors  int
	CapabilityNotices int
	SessionErrors     int
	ByMethod          map[string]int
	KindBreakdown     map[Kind]int
	DateFrom          time.Time
	DateTo            time.Time
}

// Retrospective aggregates the entries into counts by kind and method.
func (r *Recorder) Retrospective() *Retrospective {
	entries := r.Entries()
	report := &Retrospective{
		ByMethod:      make(map[string]int),
		KindBreakdown: make(map[Kind]int),
	}

	for _, e := range entries {
		report.TotalEntries++
		report.KindBreakdown[e.Kind]++
		if e.Method != "" {
			report.ByMethod[string(e.Method)]++
		}
		switch e.Kind {
		case KindPayment:
			report.Payments++
		case KindPaymentError:
			report.PaymentErrors++
		case KindCancelled:
			report.Cancellations++
		case KindActivationError:
			report.ActivationErrors++
		case KindCapability:
			report.CapabilityNotices++
		case KindSessionError:
			report.SessionErrors++
		}
		if report.DateFrom.IsZero() || e.Timestamp.Before(report.DateFrom) {
			report.DateFrom = e.Timestamp
		}
		if e.Timestamp.After(report.DateTo) {
			report.DateTo = e.Timestamp
		}
	}
	return report
}
