// SPDX-License-Identifier: GPL-3.0-only

package notifications

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type fakePublisher struct {
	bodies [][]byte
	ids    []string
	err    error
}

func (p *fakePublisher) Publish(_ context.Context, body []byte, messageID string) error {
	if p.err != nil {
		return p.err
	}
	p.bodies = append(p.bodies, body)
	p.ids = append(p.ids, messageID)
	return nil
}

func resetNotification() NotificationData {
	name := "Ada"
	return NotificationData{
		To:       "ada@example.com",
		ToName:   &name,
		Subject:  "Reset your password",
		Template: PasswordResetTemplate,
		Variables: map[string]any{
			"name":               name,
			"reset_link":         "https://app.example.com/reset/abc123",
			"expiration_minutes": 10,
		},
	}
}

func TestRenderTemplates(t *testing.T) {
	body, err := renderTemplate(PasswordResetTemplate, resetNotification().Variables)
	if err != nil {
		t.Fatalf("renderTemplate failed: %v", err)
	}
	if !strings.Contains(body, "https://app.example.com/reset/abc123") {
		t.Error("Expected reset link in body")
	}
	if !strings.Contains(body, "10 minutes") {
		t.Error("Expected expiration in body")
	}

	for _, name := range []string{PasswordChangedTemplate, WelcomeTemplate} {
		if _, err := renderTemplate(name, map[string]any{}); err != nil {
			t.Errorf("renderTemplate(%s) failed: %v", name, err)
		}
	}

	if _, err := renderTemplate("missing", nil); err == nil {
		t.Error("Expected unknown template to fail")
	}
}

func TestMockDispatcher(t *testing.T) {
	outbox := &MockOutbox{}
	d := NewMockDispatcher(outbox)

	if err := d.DispatchNotification(context.Background(), Email, resetNotification()); err != nil {
		t.Fatalf("DispatchNotification failed: %v", err)
	}

	msg, ok := outbox.Last()
	if !ok {
		t.Fatal("Expected a message in the outbox")
	}
	if msg.Data.To != "ada@example.com" || !strings.Contains(msg.Body, "Hi Ada") {
		t.Errorf("Unexpected message %+v", msg)
	}
	if len(outbox.Messages()) != 1 {
		t.Errorf("Expected 1 message, got %d", len(outbox.Messages()))
	}

	bad := resetNotification()
	bad.To = ""
	if err := d.DispatchNotification(context.Background(), Email, bad); err == nil {
		t.Error("Expected missing recipient to fail")
	}
	if err := d.DispatchNotification(context.Background(), "SMS", resetNotification()); err == nil {
		t.Error("Expected unsupported type to fail")
	}
}

func TestQueueDispatcher(t *testing.T) {
	pub := &fakePublisher{}
	d := NewQueueDispatcher(pub)

	if err := d.DispatchNotification(context.Background(), Email, resetNotification()); err != nil {
		t.Fatalf("DispatchNotification failed: %v", err)
	}
	if len(pub.bodies) != 1 || pub.ids[0] == "" {
		t.Fatalf("Expected one published message with an id, got %d", len(pub.bodies))
	}

	data, err := DecodeNotification(pub.bodies[0])
	if err != nil {
		t.Fatalf("DecodeNotification failed: %v", err)
	}
	if data.Template != PasswordResetTemplate || data.Variables["reset_link"] != "https://app.example.com/reset/abc123" {
		t.Errorf("Unexpected decoded notification %+v", data)
	}

	pub.err = errors.New("channel closed")
	if err := d.DispatchNotification(context.Background(), Email, resetNotification()); err == nil {
		t.Error("Expected publish failure to surface")
	}
}

func TestDecodeNotificationRejectsIncomplete(t *testing.T) {
	if _, err := DecodeNotification([]byte(`{"to":"a@example.com"}`)); err == nil {
		t.Error("Expected incomplete notification to fail")
	}
	if _, err := DecodeNotification([]byte(`not json`)); err == nil {
		t.Error("Expected malformed body to fail")
	}
}

func TestBuildMessage(t *testing.T) {
	cfg := SMTPConfig{Host: "smtp.example.com", Port: 587, FromEmail: "noreply@example.com", FromName: "usercred"}
	msg, err := buildMessage(cfg, resetNotification())
	if err != nil {
		t.Fatalf("buildMessage failed: %v", err)
	}
	if got := msg.GetHeader("Subject"); len(got) != 1 || got[0] != "Reset your password" {
		t.Errorf("Unexpected subject %v", got)
	}
	if got := msg.GetHeader("To"); len(got) != 1 || !strings.Contains(got[0], "ada@example.com") {
		t.Errorf("Unexpected recipient %v", got)
	}
}

func TestSMTPConfigFromEnv(t *testing.T) {
	t.Setenv("SMTP_HOST", "")
	if _, err := SMTPConfigFromEnv(); err == nil {
		t.Error("Expected missing SMTP_HOST to fail")
	}

	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("SMTP_FROM_EMAIL", "noreply@example.com")
	t.Setenv("SMTP_PORT", "2525")
	cfg, err := SMTPConfigFromEnv()
	if err != nil {
		t.Fatalf("SMTPConfigFromEnv failed: %v", err)
	}
	if cfg.Port != 2525 {
		t.Errorf("Expected port 2525, got %d", cfg.Port)
	}
}

func TestProviderFromEnv(t *testing.T) {
	t.Setenv("MOCK_EMAIL_NOTIFICATIONS", "")
	t.Setenv("NOTIFICATION_PROVIDER", "SMTP")
	if p := ProviderFromEnv(); p != SMTP {
		t.Errorf("Expected smtp, got %s", p)
	}
	t.Setenv("MOCK_EMAIL_NOTIFICATIONS", "true")
	if p := ProviderFromEnv(); p != Mock {
		t.Errorf("Expected mock, got %s", p)
	}
}
