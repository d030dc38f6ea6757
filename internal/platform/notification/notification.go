// Package notification provides the outbound email boundary used by the
// missed-dose alert job: a sender interface, an SMTP implementation, and a
// recording mock for tests.
package notification

import (
	"context"
	"errors"
	"sync"
)

// Message is one outbound email. Text and HTML carry the same content in the
// two representations; both are always set by the alert renderer.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// EmailSender delivers a single message and reports success or a delivery
// error. Implementations must not retry; the caller owns failure handling.
type EmailSender interface {
	Send(ctx context.Context, msg Message) error
}

// SendCall records a single call to a MockEmailSender.
type SendCall struct {
	Msg Message
}

// MockEmailSender is a test double for EmailSender.
type MockEmailSender struct {
	mu         sync.Mutex
	calls      []SendCall
	ShouldFail bool
	FailError  string

	// FailTo makes only sends to this recipient fail, for partial-failure
	// scenarios.
	FailTo string
}

// Send records the call and optionally returns an error.
func (m *MockEmailSender) Send(_ context.Context, msg Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, SendCall{Msg: msg})
	if m.ShouldFail || (m.FailTo != "" && msg.To == m.FailTo) {
		reason := m.FailError
		if reason == "" {
			reason = "mock send failure"
		}
		return errors.New(reason)
	}
	return nil
}

// Calls returns a copy of the recorded sends.
func (m *MockEmailSender) Calls() []SendCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SendCall, len(m.calls))
	copy(out, m.calls)
	return out
}
