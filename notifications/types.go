// SPDX-License-Identifier: GPL-3.0-only

package notifications

import "context"

type NotificationTypes string

const (
	Email NotificationTypes = "EMAIL"
)

// NotificationData.Variables may hold one-time secrets such as reset links.
// They are rendered into the message body and never logged.
type NotificationData struct {
	To        string         `json:"to"`
	ToName    *string        `json:"to_name,omitempty"`
	Subject   string         `json:"subject"`
	Template  string         `json:"template"`
	Variables map[string]any `json:"variables,omitempty"`
}

type NotificationProviders string

const (
	SMTP  NotificationProviders = "smtp"
	Queue NotificationProviders = "queue"
	Mock  NotificationProviders = "mock"
)

const (
	PasswordResetTemplate   = "password-reset"
	PasswordChangedTemplate = "password-changed"
	WelcomeTemplate         = "welcome"
)

// Publisher hands a serialized notification to a message broker.
type Publisher interface {
	Publish(ctx context.Context, body []byte, messageID string) error
}

type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromEmail string
	FromName  string
}
