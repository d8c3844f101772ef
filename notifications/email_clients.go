// SPDX-License-Identifier: GPL-3.0-only

package notifications

import (
	"crypto/tls"
	"errors"
	"fmt"
	"sync"
	"usercred-server/commons"

	"gopkg.in/gomail.v2"
)

func SMTPConfigFromEnv() (SMTPConfig, error) {
	cfg := SMTPConfig{
		Host:      commons.GetEnv("SMTP_HOST"),
		Port:      commons.GetEnvInt("SMTP_PORT", 587),
		Username:  commons.GetEnv("SMTP_USERNAME"),
		Password:  commons.GetEnv("SMTP_PASSWORD"),
		FromEmail: commons.GetEnv("SMTP_FROM_EMAIL"),
		FromName:  commons.GetEnv("SMTP_FROM_NAME", "usercred"),
	}

	if cfg.Host == "" {
		return cfg, errors.New("SMTP_HOST environment variable is not set")
	}
	if cfg.FromEmail == "" {
		return cfg, errors.New("SMTP_FROM_EMAIL environment variable is not set")
	}
	return cfg, nil
}

func validate(data NotificationData) error {
	if data.To == "" {
		return errors.New("'to' field is required")
	}
	if data.Subject == "" {
		return errors.New("'subject' field is required")
	}
	if data.Template == "" {
		return errors.New("'template' field is required")
	}
	return nil
}

func buildMessage(cfg SMTPConfig, data NotificationData) (*gomail.Message, error) {
	if err := validate(data); err != nil {
		return nil, err
	}

	htmlBody, err := renderTemplate(data.Template, data.Variables)
	if err != nil {
		return nil, fmt.Errorf("failed to load template: %w", err)
	}

	toName := ""
	if data.ToName != nil {
		toName = *data.ToName
	}

	message := gomail.NewMessage()
	message.SetHeader("From", message.FormatAddress(cfg.FromEmail, cfg.FromName))
	message.SetHeader("To", message.FormatAddress(data.To, toName))
	message.SetHeader("Subject", data.Subject)
	message.SetBody("text/html", htmlBody)
	return message, nil
}

func SMTPClient(cfg SMTPConfig, data NotificationData) error {
	commons.Logger.Debug("Sending email via SMTP")

	message, err := buildMessage(cfg, data)
	if err != nil {
		return err
	}

	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	dialer.TLSConfig = &tls.Config{
		ServerName: cfg.Host,
		MinVersion: tls.VersionTLS12,
	}

	if err := dialer.DialAndSend(message); err != nil {
		return fmt.Errorf("failed to send email via SMTP: %w", err)
	}

	commons.Logger.Infof("Email %q sent successfully via SMTP", data.Template)
	return nil
}

// MockOutbox keeps rendered emails in memory instead of sending them.
type MockOutbox struct {
	mu       sync.Mutex
	messages []MockEmail
}

type MockEmail struct {
	Data NotificationData
	Body string
}

func (o *MockOutbox) Send(data NotificationData) error {
	if err := validate(data); err != nil {
		return err
	}
	body, err := renderTemplate(data.Template, data.Variables)
	if err != nil {
		return fmt.Errorf("failed to render template: %w", err)
	}

	o.mu.Lock()
	o.messages = append(o.messages, MockEmail{Data: data, Body: body})
	o.mu.Unlock()

	commons.Logger.Infof("Mock email %q queued in memory", data.Template)
	return nil
}

func (o *MockOutbox) Messages() []MockEmail {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]MockEmail(nil), o.messages...)
}

func (o *MockOutbox) Last() (MockEmail, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.messages) == 0 {
		return MockEmail{}, false
	}
	return o.messages[len(o.messages)-1], true
}
