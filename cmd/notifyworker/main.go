// SPDX-License-Identifier: GPL-3.0-only

// Command notifyworker consumes queued notifications and sends them over SMTP.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"usercred-server/commons"
	"usercred-server/notifications"
	"usercred-server/rabbitmq"
)

func main() {
	commons.LoadEnvFile()
	commons.InitLogger()

	cfg := rabbitmq.ConfigFromEnv()
	flag.StringVar(&cfg.AMQPURL, "url", cfg.AMQPURL, "AMQP URL")
	flag.StringVar(&cfg.Exchange, "exchange", cfg.Exchange, "Exchange name")
	flag.StringVar(&cfg.RoutingKey, "binding-key", cfg.RoutingKey, "Binding key")
	flag.StringVar(&cfg.QueueName, "queue", cfg.QueueName, "Queue name (optional)")
	flag.String("env-file", "", "Environment file, read before flags are parsed")
	flag.Parse()

	smtpConfig, err := notifications.SMTPConfigFromEnv()
	if err != nil {
		commons.Logger.Error(err)
		os.Exit(1)
	}

	client, err := rabbitmq.NewClient(cfg)
	if err != nil {
		commons.Logger.Error("Failed to initialize RabbitMQ client:", err)
		os.Exit(1)
	}
	defer client.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	commons.Logger.Info("Notification worker started, press Ctrl+C to exit")
	if err := client.Consume(ctx, func(body []byte) error {
		data, err := notifications.DecodeNotification(body)
		if err != nil {
			return err
		}
		return notifications.SMTPClient(smtpConfig, data)
	}); err != nil {
		commons.Logger.Error("Consumer stopped:", err)
		os.Exit(1)
	}
	commons.Logger.Info("Notification worker stopped")
}
