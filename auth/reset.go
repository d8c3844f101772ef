// SPDX-License-Identifier: GPL-3.0-only

package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"usercred-server/commons"
	"usercred-server/credentials"
	"usercred-server/crypto"
	"usercred-server/models"
	"usercred-server/notifications"
	"usercred-server/store"
)

// ForgotPassword emails a reset link to the owner of email. Unknown emails
// succeed silently so callers cannot probe for accounts.
func (s *Service) ForgotPassword(ctx context.Context, email string, client ClientInfo) error {
	user, err := s.store.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			commons.Logger.Info("Password reset requested for an unknown email")
			return nil
		}
		return err
	}

	raw, err := s.creds.CreatePasswordResetToken(user)
	if err != nil {
		return err
	}
	if err := s.store.SaveUser(ctx, user); err != nil {
		return err
	}

	link := strings.TrimRight(s.config.ResetPasswordURL, "/") + "/" + raw
	vars := map[string]any{
		"reset_link":         link,
		"expiration_minutes": int(credentials.ResetTokenTTL.Minutes()),
	}
	if err := s.sendEmail(ctx, user, "Reset your password", notifications.PasswordResetTemplate, vars); err != nil {
		s.creds.ClearPasswordReset(user)
		if err := s.store.SaveUser(ctx, user); err != nil {
			commons.Logger.Errorf("Failed to clear undelivered reset of user %d: %v", user.ID, err)
		}
		return fmt.Errorf("%w: %w", ErrNotificationFailed, err)
	}

	s.store.RecordEvent(ctx, user.ID, models.EventResetRequested, "", client.IPAddress)
	commons.Logger.Infof("Password reset link sent to user %d", user.ID)
	return nil
}

// ResetPassword consumes a reset token and sets newPassword. A token that
// fails validation is cleared so it cannot be retried. On success every
// session ends and a fresh session token is returned.
func (s *Service) ResetPassword(ctx context.Context, raw, newPassword string, client ClientInfo) (string, error) {
	if raw == "" {
		return "", credentials.ErrResetTokenInvalid
	}

	var user *models.User
	var rejected error
	err := s.store.WithTx(ctx, func(tx *store.Store) error {
		u, err := tx.FindUserByResetToken(ctx, crypto.HashToken(raw))
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				rejected = credentials.ErrResetTokenInvalid
				return nil
			}
			return err
		}

		if err := s.creds.ValidatePasswordResetToken(u, raw); err != nil {
			rejected = err
			s.creds.ClearPasswordReset(u)
			if err := tx.SaveUser(ctx, u); err != nil {
				return err
			}
			tx.RecordEvent(ctx, u.ID, models.EventResetRejected, err.Error(), client.IPAddress)
			return nil
		}

		// an unusable stored hash must not block recovering the account
		same, err := s.creds.VerifyPassword(newPassword, u.Password)
		if err != nil {
			commons.Logger.Warnf("Stored password hash of user %d is unusable, resetting it: %v", u.ID, err)
		} else if same {
			return ErrSamePassword
		}

		s.creds.ClearPasswordReset(u)
		if err := tx.ChangePassword(ctx, u, newPassword); err != nil {
			return err
		}
		if err := tx.DeleteUserSessions(ctx, u.ID); err != nil {
			return err
		}
		tx.RecordEvent(ctx, u.ID, models.EventResetCompleted, "", client.IPAddress)
		user = u
		return nil
	})
	if err != nil {
		return "", err
	}
	if rejected != nil {
		commons.Logger.Warnf("Password reset rejected: %v", rejected)
		return "", rejected
	}

	s.notifyPasswordChanged(ctx, user)
	return s.issueSession(ctx, user, client)
}
