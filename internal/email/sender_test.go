package email

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"member-tracker-go/internal/config"
	"member-tracker-go/pkg/logger"
)

func TestNewSenderSelectsProvider(t *testing.T) {
	sender, err := NewSender(config.EmailConfig{Provider: "console"}, logger.Discard())
	if err != nil {
		t.Fatalf("NewSender: %v", err)
	}
	if _, ok := sender.(*Console); !ok {
		t.Fatalf("expected console sender, got %T", sender)
	}

	sender, err = NewSender(config.EmailConfig{Provider: "SMTP", SMTPHost: "mail.example.edu", SMTPPort: 25}, logger.Discard())
	if err != nil {
		t.Fatalf("NewSender: %v", err)
	}
	if _, ok := sender.(*SMTP); !ok {
		t.Fatalf("expected smtp sender, got %T", sender)
	}

	sender, err = NewSender(config.EmailConfig{Provider: "sendgrid", SendgridAPIKey: "key"}, logger.Discard())
	if err != nil {
		t.Fatalf("NewSender: %v", err)
	}
	if _, ok := sender.(*Sendgrid); !ok {
		t.Fatalf("expected sendgrid sender, got %T", sender)
	}
}

func TestNewSenderRejectsIncompleteConfig(t *testing.T) {
	cases := []config.EmailConfig{
		{Provider: "smtp"},
		{Provider: "sendgrid"},
		{Provider: "pigeon"},
	}
	for _, cfg := range cases {
		if _, err := NewSender(cfg, logger.Discard()); err == nil {
			t.Fatalf("expected error for provider %q", cfg.Provider)
		}
	}
}

func TestSMTPSendBuildsMessage(t *testing.T) {
	s := NewSMTP(SMTPConfig{Host: "mail.example.edu", Port: 587, User: "bot", Password: "pw", FromName: "Member Tracker"})
	s.now = func() time.Time { return time.Date(2024, 9, 1, 10, 0, 0, 0, time.UTC) }

	var gotAddr string
	var gotTo []string
	var gotMsg string
	s.sendMail = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr = addr
		gotTo = to
		gotMsg = string(msg)
		if a == nil {
			t.Fatal("expected auth when a user is configured")
		}
		return nil
	}

	if err := s.Send(context.Background(), "noreply@example.edu", "club@example.edu", "Report", "<p>hi</p>"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if gotAddr != "mail.example.edu:587" {
		t.Fatalf("expected addr mail.example.edu:587, got %s", gotAddr)
	}
	if len(gotTo) != 1 || gotTo[0] != "club@example.edu" {
		t.Fatalf("unexpected recipients %v", gotTo)
	}
	for _, want := range []string{
		"From: Member Tracker <noreply@example.edu>\r\n",
		"Subject: Report\r\n",
		"Content-Type: text/html; charset=UTF-8\r\n\r\n<p>hi</p>",
	} {
		if !strings.Contains(gotMsg, want) {
			t.Fatalf("expected message to contain %q, got %q", want, gotMsg)
		}
	}
}

func TestSMTPSendWrapsError(t *testing.T) {
	s := NewSMTP(SMTPConfig{Host: "mail.example.edu", Port: 25})
	boom := errors.New("connection refused")
	s.sendMail = func(string, smtp.Auth, string, []string, []byte) error { return boom }

	err := s.Send(context.Background(), "a@example.edu", "b@example.edu", "s", "b")
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}

func TestSMTPSendHonoursCancelledContext(t *testing.T) {
	s := NewSMTP(SMTPConfig{Host: "mail.example.edu", Port: 25})
	s.sendMail = func(string, smtp.Auth, string, []string, []byte) error {
		t.Fatal("expected no send after cancellation")
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := s.Send(ctx, "a@example.edu", "b@example.edu", "s", "b"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestSendgridPrepare(t *testing.T) {
	s := NewSendgrid("key", "Member Tracker")
	m := s.prepare("noreply@example.edu", "club@example.edu", "Report", "<p>hi</p>")

	if m.From == nil || m.From.Address != "noreply@example.edu" || m.From.Name != "Member Tracker" {
		t.Fatalf("unexpected from %+v", m.From)
	}
	if len(m.Personalizations) != 1 || m.Personalizations[0].Subject != "Report" {
		t.Fatalf("unexpected personalizations %+v", m.Personalizations)
	}
	if len(m.Content) != 1 || m.Content[0].Type != "text/html" {
		t.Fatalf("unexpected content %+v", m.Content)
	}
}

func TestConsoleRecordsMessages(t *testing.T) {
	c := NewConsole("Member Tracker", logger.Discard())
	if err := c.Send(context.Background(), "noreply@example.edu", "a@example.edu", "Hi", "<p>x</p>"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	sent := c.Sent()
	if len(sent) != 1 || sent[0].From != "Member Tracker <noreply@example.edu>" {
		t.Fatalf("unexpected sent messages %+v", sent)
	}
}
