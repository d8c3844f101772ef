// SPDX-License-Identifier: GPL-3.0-only

package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"usercred-server/commons"

	"github.com/google/uuid"
)

type Dispatcher struct {
	provider  NotificationProviders
	smtp      SMTPConfig
	publisher Publisher
	outbox    *MockOutbox
}

func NewSMTPDispatcher(cfg SMTPConfig) *Dispatcher {
	return &Dispatcher{provider: SMTP, smtp: cfg}
}

func NewQueueDispatcher(publisher Publisher) *Dispatcher {
	return &Dispatcher{provider: Queue, publisher: publisher}
}

func NewMockDispatcher(outbox *MockOutbox) *Dispatcher {
	return &Dispatcher{provider: Mock, outbox: outbox}
}

// ProviderFromEnv reads NOTIFICATION_PROVIDER. MOCK_EMAIL_NOTIFICATIONS=true
// forces the mock provider.
func ProviderFromEnv() NotificationProviders {
	if commons.GetEnvBool("MOCK_EMAIL_NOTIFICATIONS", false) {
		return Mock
	}
	return NotificationProviders(strings.ToLower(commons.GetEnv("NOTIFICATION_PROVIDER", string(Mock))))
}

func (d *Dispatcher) Provider() NotificationProviders {
	return d.provider
}

func (d *Dispatcher) DispatchNotification(ctx context.Context, _type NotificationTypes, data NotificationData) error {
	commons.Logger.Debugf("Dispatching notification: type=%s provider=%s template=%s", _type, d.provider, data.Template)

	var err error
	switch _type {
	case Email:
		err = d.dispatchEmail(ctx, data)
	default:
		err = fmt.Errorf("unsupported notification type: %s", _type)
	}

	if err != nil {
		commons.Logger.Errorf("Failed to dispatch notification: %v", err)
		return err
	}

	commons.Logger.Infof("Notification dispatched successfully: type=%s provider=%s", _type, d.provider)
	return nil
}

func (d *Dispatcher) dispatchEmail(ctx context.Context, data NotificationData) error {
	switch d.provider {
	case SMTP:
		return SMTPClient(d.smtp, data)
	case Queue:
		if err := validate(data); err != nil {
			return err
		}
		body, err := json.Marshal(data)
		if err != nil {
			return fmt.Errorf("encode notification: %w", err)
		}
		return d.publisher.Publish(ctx, body, uuid.NewString())
	case Mock:
		return d.outbox.Send(data)
	default:
		return fmt.Errorf("unsupported email provider: %s", d.provider)
	}
}

// DecodeNotification parses a queued notification.
func DecodeNotification(body []byte) (NotificationData, error) {
	var data NotificationData
	if err := json.Unmarshal(body, &data); err != nil {
		return data, fmt.Errorf("decode notification: %w", err)
	}
	return data, validate(data)
}
