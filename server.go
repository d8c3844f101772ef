// SPDX-License-Identifier: GPL-3.0-only

package main

import (
	"os"
	"slices"
	"usercred-server/auth"
	"usercred-server/commons"
	"usercred-server/credentials"
	"usercred-server/crypto"
	"usercred-server/db"
	"usercred-server/handlers"
	"usercred-server/notifications"
	"usercred-server/rabbitmq"
	"usercred-server/routes"
	"usercred-server/store"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
)

func newDispatcher() (*notifications.Dispatcher, func()) {
	switch provider := notifications.ProviderFromEnv(); provider {
	case notifications.SMTP:
		cfg, err := notifications.SMTPConfigFromEnv()
		if err != nil {
			commons.Logger.Error(err)
			os.Exit(1)
		}
		return notifications.NewSMTPDispatcher(cfg), func() {}
	case notifications.Queue:
		client, err := rabbitmq.NewClient(rabbitmq.ConfigFromEnv())
		if err != nil {
			commons.Logger.Error("Failed to initialize RabbitMQ client:", err)
			os.Exit(1)
		}
		return notifications.NewQueueDispatcher(client), client.Close
	default:
		if provider != notifications.Mock {
			commons.Logger.Warnf("Unknown NOTIFICATION_PROVIDER %q, using mock", provider)
		}
		commons.Logger.Warn("Emails are kept in memory and not delivered.")
		return notifications.NewMockDispatcher(&notifications.MockOutbox{}), func() {}
	}
}

func main() {
	commons.LoadEnvFile()
	commons.InitLogger()

	e := echo.New()
	e.HideBanner = true

	e.Logger.SetLevel(commons.Logger.Level())
	e.Logger.SetHeader(commons.LogHeader)

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURIPath:  true,
		LogStatus:   true,
		LogMethod:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logMsg := func(format string, args ...any) {
				switch {
				case v.Status >= 500:
					e.Logger.Errorf(format, args...)
				case v.Status >= 400:
					e.Logger.Warnf(format, args...)
				default:
					e.Logger.Infof(format, args...)
				}
			}
			// the path only: reset tokens travel in the URI
			logMsg("%s %s - %d - %.2fms - %s",
				v.Method,
				c.Path(),
				v.Status,
				float64(v.Latency.Microseconds())/1000.0,
				v.RemoteIP,
			)
			return nil
		},
	}))
	debugMode := slices.Contains(os.Args[1:], "--debug")
	if debugMode {
		e.Logger.Warn("Debug mode is enabled.")
		e.Debug = true
		e.Logger.SetLevel(log.DEBUG)
	}

	e.Use(middleware.Recover())

	db.InitDB()
	if slices.Contains(os.Args[1:], "--migrate-db") {
		commons.Logger.Debug("--migrate-db flag detected, running migrations")
		db.MigrateDB()
	}

	dispatcher, closeDispatcher := newDispatcher()
	defer closeDispatcher()

	creds := credentials.NewManager(crypto.NewCrypto())
	svc := auth.NewService(store.New(db.Conn, creds), creds, dispatcher, auth.ConfigFromEnv())
	routes.RegisterRoutes(e, handlers.New(svc))

	port := commons.GetEnv("PORT", ":8080")
	if port[0] != ':' {
		port = ":" + port
	}
	if err := e.Start(port); err != nil {
		e.Logger.Error(err)
	}
}
