// SPDX-License-Identifier: GPL-3.0-only

package rabbitmq

import (
	"context"
	"fmt"
	"usercred-server/commons"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Consume binds the configured queue and feeds deliveries to handler one at a
// time until ctx is done or the channel closes.
func (c *Client) Consume(ctx context.Context, handler Handler) error {
	if err := c.channel.Qos(1, 0, false); err != nil {
		return fmt.Errorf("qos: %w", err)
	}

	queue, err := declareTopology(c.channel, c.config)
	if err != nil {
		return err
	}

	msgs, err := c.channel.Consume(queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}

	commons.Logger.Infof("Queue ready: %s (exchange=%s, key=%s)", queue, c.config.Exchange, c.config.RoutingKey)
	for {
		select {
		case msg, ok := <-msgs:
			if !ok {
				commons.Logger.Warn("Message channel closed")
				return nil
			}
			handleDelivery(msg, handler)
		case <-ctx.Done():
			commons.Logger.Info("Stop signal received")
			return nil
		}
	}
}

func handleDelivery(msg amqp.Delivery, handler Handler) {
	if err := handler(msg.Body); err != nil {
		commons.Logger.Errorf("Message %s rejected: %v", msg.MessageId, err)
		if err := msg.Nack(false, false); err != nil {
			commons.Logger.Errorf("Nack failed: %v", err)
		}
		return
	}
	if err := msg.Ack(false); err != nil {
		commons.Logger.Errorf("Ack failed: %v", err)
	}
}
