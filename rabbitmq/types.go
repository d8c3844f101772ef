// SPDX-License-Identifier: GPL-3.0-only

package rabbitmq

import (
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
)

type RabbitMQConfig struct {
	AMQPURL    string
	Exchange   string
	RoutingKey string
	QueueName  string
}

type Client struct {
	config  RabbitMQConfig
	mu      sync.Mutex
	conn    *amqp.Connection
	channel *amqp.Channel
	returns chan amqp.Return
}

// declarer is the part of *amqp.Channel that sets up the notification
// exchange and queue.
type declarer interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error
}

// Handler processes one message body. Returning an error rejects the message.
type Handler func(body []byte) error
