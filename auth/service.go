// SPDX-License-Identifier: GPL-3.0-only

// Package auth implements the account flows on top of the credentials
// manager: signup, login, sessions, password change and password reset.
package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
	"usercred-server/commons"
	"usercred-server/credentials"
	"usercred-server/models"
	"usercred-server/notifications"
	"usercred-server/store"
)

var (
	ErrInvalidCredentials = errors.New("credentials are incorrect")
	ErrUnauthorized       = errors.New("invalid or expired session")
	ErrSamePassword       = errors.New("new password must be different from the current password")
	ErrNotificationFailed = errors.New("notification could not be delivered")
)

const defaultJWTSecret = "default_very_secret_key"

type Config struct {
	JWTSecret        string
	Issuer           string
	SessionTTL       time.Duration
	ResetPasswordURL string
}

func ConfigFromEnv() Config {
	cfg := Config{
		JWTSecret:        commons.GetEnv("JWT_SECRET", defaultJWTSecret),
		Issuer:           commons.GetEnv("JWT_ISSUER", commons.ServiceName),
		SessionTTL:       commons.GetEnvDuration("SESSION_TTL_HOURS", time.Hour, 30*24),
		ResetPasswordURL: commons.GetEnv("RESET_PASSWORD_URL", "http://localhost:8080/v1/auth/reset-password"),
	}
	if cfg.JWTSecret == defaultJWTSecret {
		commons.Logger.Warn("JWT_SECRET is not set, using the built-in development secret")
	}
	return cfg
}

// Notifier delivers emails. *notifications.Dispatcher implements it.
type Notifier interface {
	DispatchNotification(ctx context.Context, _type notifications.NotificationTypes, data notifications.NotificationData) error
}

// ClientInfo describes the caller of a flow, for sessions and the audit log.
type ClientInfo struct {
	IPAddress string
	UserAgent string
}

type Service struct {
	store    *store.Store
	creds    *credentials.Manager
	notifier Notifier
	config   Config

	decoyOnce sync.Once
	decoyHash string
}

func NewService(s *store.Store, creds *credentials.Manager, notifier Notifier, config Config) *Service {
	return &Service{store: s, creds: creds, notifier: notifier, config: config}
}

// verifyDecoy spends one password verification against a fixed hash, so a
// login for an unknown email takes as long as one with a wrong password.
func (s *Service) verifyDecoy(password string) {
	s.decoyOnce.Do(func() {
		hash, err := s.creds.HashPassword("usercred-decoy-password")
		if err != nil {
			commons.Logger.Errorf("Failed to build decoy hash: %v", err)
			return
		}
		s.decoyHash = hash
	})
	if s.decoyHash != "" {
		_, _ = s.creds.VerifyPassword(password, s.decoyHash)
	}
}

func displayName(user *models.User) string {
	var parts []string
	if user.FirstName != nil && *user.FirstName != "" {
		parts = append(parts, *user.FirstName)
	}
	if user.LastName != nil && *user.LastName != "" {
		parts = append(parts, *user.LastName)
	}
	return strings.Join(parts, " ")
}

func (s *Service) sendEmail(ctx context.Context, user *models.User, subject, template string, vars map[string]any) error {
	name := displayName(user)
	if name != "" {
		vars["name"] = name
	}
	return s.notifier.DispatchNotification(ctx, notifications.Email, notifications.NotificationData{
		To:        user.Email,
		ToName:    &name,
		Subject:   subject,
		Template:  template,
		Variables: vars,
	})
}
