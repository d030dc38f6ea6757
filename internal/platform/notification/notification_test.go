package notification

import (
	"context"
	"strings"
	"testing"
)

func TestMockEmailSender_RecordsCalls(t *testing.T) {
	mock := &MockEmailSender{}
	msg := Message{To: "care@example.com", Subject: "hi", Text: "t", HTML: "<p>t</p>"}

	if err := mock.Send(context.Background(), msg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	calls := mock.Calls()
	if len(calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(calls))
	}
	if calls[0].Msg.To != "care@example.com" {
		t.Errorf("recipient = %q", calls[0].Msg.To)
	}
}

func TestMockEmailSender_FailTo(t *testing.T) {
	mock := &MockEmailSender{FailTo: "bad@example.com"}

	if err := mock.Send(context.Background(), Message{To: "ok@example.com"}); err != nil {
		t.Errorf("unexpected error for ok recipient: %v", err)
	}
	if err := mock.Send(context.Background(), Message{To: "bad@example.com"}); err == nil {
		t.Error("expected error for failing recipient")
	}
	if len(mock.Calls()) != 2 {
		t.Error("failed send should still be recorded")
	}
}

func TestSMTPConfig_Validate(t *testing.T) {
	cfg := SMTPConfig{Host: "smtp.example.com", Port: "587", Username: "u", Password: "p"}
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	cfg.Password = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for missing password")
	}
}

func TestNewSMTPSender_DefaultsFromToUsername(t *testing.T) {
	s, err := NewSMTPSender(SMTPConfig{Host: "h", Port: "587", Username: "alerts@example.com", Password: "p"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.cfg.From != "alerts@example.com" {
		t.Errorf("From = %q, want the username", s.cfg.From)
	}
}

func TestBuildMIME(t *testing.T) {
	msg := Message{
		To:      "care@example.com",
		Subject: "Missed medication alert",
		Text:    "plain body",
		HTML:    "<p>rich body</p>",
	}
	payload := string(buildMIME("alerts@example.com", msg))

	for _, want := range []string{
		"From: MedsBuddy <alerts@example.com>",
		"To: care@example.com",
		"Subject: Missed medication alert",
		"multipart/alternative",
		"text/plain; charset=UTF-8",
		"plain body",
		"text/html; charset=UTF-8",
		"<p>rich body</p>",
	} {
		if !strings.Contains(payload, want) {
			t.Errorf("payload missing %q", want)
		}
	}
	// The text part must precede the HTML part.
	if strings.Index(payload, "plain body") > strings.Index(payload, "<p>rich body</p>") {
		t.Error("text part should come before the HTML part")
	}
}
