// SPDX-License-Identifier: GPL-3.0-only

package auth

import (
	"context"
	"errors"
	"fmt"
	"usercred-server/commons"
	"usercred-server/crypto"
	"usercred-server/models"
	"usercred-server/store"

	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims are carried by every session token. IssuedAt is compared
// against the user's PasswordChangedAt.
type SessionClaims struct {
	SessionID uint `json:"sid"`
	UserID    uint `json:"uid"`
	jwt.RegisteredClaims
}

func (s *Service) issueSession(ctx context.Context, user *models.User, client ClientInfo) (string, error) {
	sessionToken, err := crypto.GenerateRandomString("st_", 32, "hex")
	if err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}

	now := s.creds.Now()
	session := models.Session{
		UserID:     user.ID,
		Token:      sessionToken,
		LastUsedAt: &now,
		ExpiresAt:  now.Add(s.config.SessionTTL),
	}
	if client.IPAddress != "" {
		session.IPAddress = &client.IPAddress
	}
	if client.UserAgent != "" {
		session.UserAgent = &client.UserAgent
	}
	if err := s.store.CreateSession(ctx, &session); err != nil {
		return "", err
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, SessionClaims{
		SessionID: session.ID,
		UserID:    user.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   user.UID.String(),
			ID:        sessionToken,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
	})

	tokenString, err := token.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return tokenString, nil
}

// Authenticate resolves a bearer token to its user and session. Tokens
// issued before the user's last password change are rejected.
func (s *Service) Authenticate(ctx context.Context, tokenString string) (*models.User, *models.Session, error) {
	var claims SessionClaims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		return []byte(s.config.JWTSecret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.config.Issuer),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.creds.Now),
	)
	if err != nil {
		commons.Logger.Debugf("Session token rejected: %v", err)
		return nil, nil, ErrUnauthorized
	}
	if claims.IssuedAt == nil {
		return nil, nil, ErrUnauthorized
	}

	session, err := s.store.FindSession(ctx, claims.SessionID, claims.UserID, claims.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			commons.Logger.Debug("Session not found")
			return nil, nil, ErrUnauthorized
		}
		return nil, nil, err
	}

	now := s.creds.Now()
	if session.Expired(now) {
		commons.Logger.Debug("Session expired")
		return nil, nil, ErrUnauthorized
	}

	user, err := s.store.FindUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, ErrUnauthorized
		}
		return nil, nil, err
	}
	if user.UID.String() != claims.Subject {
		return nil, nil, ErrUnauthorized
	}

	if s.creds.ChangedPasswordAfter(user, claims.IssuedAt.Time) {
		commons.Logger.Infof("Session of user %d predates the last password change", user.ID)
		return nil, nil, ErrUnauthorized
	}

	if err := s.store.TouchSession(ctx, session, now); err != nil {
		commons.Logger.Errorf("Failed to update session LastUsedAt: %v", err)
	}
	return user, session, nil
}

// Logout ends a single session.
func (s *Service) Logout(ctx context.Context, session *models.Session, client ClientInfo) error {
	if err := s.store.DeleteSession(ctx, session.ID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	s.store.RecordEvent(ctx, session.UserID, models.EventLogout, "", client.IPAddress)
	return nil
}

var ErrCurrentSession = errors.New("cannot revoke the current session, use logout instead")

func (s *Service) ListSessions(ctx context.Context, userID uint, page, pageSize int) ([]models.Session, int64, error) {
	return s.store.ListUserSessions(ctx, userID, pageSize, (page-1)*pageSize)
}

// RevokeSession ends another session of the owner of current.
func (s *Service) RevokeSession(ctx context.Context, current *models.Session, sessionID uint) error {
	if current.ID == sessionID {
		return ErrCurrentSession
	}
	return s.store.DeleteUserSession(ctx, current.UserID, sessionID)
}

// RevokeOtherSessions ends every session of the owner of current except current.
func (s *Service) RevokeOtherSessions(ctx context.Context, current *models.Session) (int64, error) {
	return s.store.DeleteOtherSessions(ctx, current.UserID, current.ID)
}

func (s *Service) Events(ctx context.Context, userID uint, limit int) ([]models.EventLog, error) {
	return s.store.ListEvents(ctx, userID, limit)
}
