// SPDX-License-Identifier: GPL-3.0-only

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"
	"usercred-server/commons"
	"usercred-server/models"
	"usercred-server/notifications"
	"usercred-server/store"
)

type SignupInput struct {
	Email             string
	Password          string
	FirstName         *string
	LastName          *string
	Language          string
	Job               *string
	Phone             *string
	Address           *string
	WhatBringsYouHere *string
}

// ProfileUpdate carries the profile fields to change; nil leaves a field as is.
type ProfileUpdate struct {
	FirstName         *string
	LastName          *string
	Language          *string
	Job               *string
	Phone             *string
	Avatar            *string
	Address           *string
	WhatBringsYouHere *string
}

// Signup creates the account and returns it with a session token.
func (s *Service) Signup(ctx context.Context, in SignupInput, client ClientInfo) (*models.User, string, error) {
	user := &models.User{
		Email:             in.Email,
		Password:          in.Password,
		FirstName:         in.FirstName,
		LastName:          in.LastName,
		Language:          in.Language,
		Job:               in.Job,
		Phone:             in.Phone,
		Address:           in.Address,
		WhatBringsYouHere: in.WhatBringsYouHere,
		Role:              models.RoleUser,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, "", err
	}
	s.store.RecordEvent(ctx, user.ID, models.EventSignup, "", client.IPAddress)

	token, err := s.issueSession(ctx, user, client)
	if err != nil {
		return nil, "", err
	}

	if err := s.sendEmail(ctx, user, "Welcome", notifications.WelcomeTemplate, map[string]any{}); err != nil {
		commons.Logger.Errorf("Failed to send welcome email to user %d: %v", user.ID, err)
	}
	return user, token, nil
}

// Login checks email and password and opens a new session. Hashes made with
// a weaker configuration are upgraded on the way.
func (s *Service) Login(ctx context.Context, email, password string, client ClientInfo) (*models.User, string, error) {
	if email == "" || password == "" {
		return nil, "", ErrInvalidCredentials
	}

	user, err := s.store.FindUserCredentialsByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			commons.Logger.Info("Login attempt for an unknown email")
			s.verifyDecoy(password)
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	ok, err := s.creds.VerifyPassword(password, user.Password)
	if err != nil {
		return nil, "", fmt.Errorf("verify password of user %d: %w", user.ID, err)
	}
	if !ok {
		s.store.RecordEvent(ctx, user.ID, models.EventLoginFailed, "wrong password", client.IPAddress)
		return nil, "", ErrInvalidCredentials
	}

	if s.creds.NeedsRehash(user.Password) {
		if err := s.store.RehashPassword(ctx, user, password); err != nil {
			commons.Logger.Errorf("Failed to rehash password of user %d: %v", user.ID, err)
		} else {
			s.store.RecordEvent(ctx, user.ID, models.EventPasswordRehashed, "", client.IPAddress)
		}
	}

	token, err := s.issueSession(ctx, user, client)
	if err != nil {
		return nil, "", err
	}
	s.store.RecordEvent(ctx, user.ID, models.EventLoginSucceeded, "", client.IPAddress)
	return user, token, nil
}

// ChangePassword replaces the password of userID after checking the current
// one. Every existing session ends; the returned token opens a fresh one.
func (s *Service) ChangePassword(ctx context.Context, userID uint, current, next string, client ClientInfo) (string, error) {
	var user *models.User
	err := s.store.WithTx(ctx, func(tx *store.Store) error {
		u, err := tx.FindUserCredentialsByID(ctx, userID)
		if err != nil {
			return err
		}

		ok, err := s.creds.VerifyPassword(current, u.Password)
		if err != nil {
			return fmt.Errorf("verify password of user %d: %w", u.ID, err)
		}
		if !ok {
			return ErrInvalidCredentials
		}
		same, err := s.creds.VerifyPassword(next, u.Password)
		if err != nil {
			return fmt.Errorf("compare new password of user %d: %w", u.ID, err)
		}
		if same {
			return ErrSamePassword
		}

		if err := tx.ChangePassword(ctx, u, next); err != nil {
			return err
		}
		if err := tx.DeleteUserSessions(ctx, u.ID); err != nil {
			return err
		}
		tx.RecordEvent(ctx, u.ID, models.EventPasswordChanged, "changed by user", client.IPAddress)
		user = u
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			s.store.RecordEvent(ctx, userID, models.EventLoginFailed, "wrong current password", client.IPAddress)
		}
		return "", err
	}

	s.notifyPasswordChanged(ctx, user)
	return s.issueSession(ctx, user, client)
}

func (s *Service) notifyPasswordChanged(ctx context.Context, user *models.User) {
	changedAt := s.creds.Now()
	if user.PasswordChangedAt != nil {
		changedAt = *user.PasswordChangedAt
	}
	vars := map[string]any{"changed_at": changedAt.UTC().Format(time.RFC1123)}
	if err := s.sendEmail(ctx, user, "Your password was changed", notifications.PasswordChangedTemplate, vars); err != nil {
		commons.Logger.Errorf("Failed to send password changed email to user %d: %v", user.ID, err)
	}
}

// Profile returns the user without credential fields loaded.
func (s *Service) Profile(ctx context.Context, userID uint) (*models.User, error) {
	return s.store.FindUserByID(ctx, userID)
}

// UpdateProfile changes profile fields only. The password hash is neither
// read nor written.
func (s *Service) UpdateProfile(ctx context.Context, userID uint, update ProfileUpdate) (*models.User, error) {
	user, err := s.store.FindUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if update.FirstName != nil {
		user.FirstName = update.FirstName
	}
	if update.LastName != nil {
		user.LastName = update.LastName
	}
	if update.Language != nil && *update.Language != "" {
		user.Language = *update.Language
	}
	if update.Job != nil {
		user.Job = update.Job
	}
	if update.Phone != nil {
		user.Phone = update.Phone
		if *update.Phone == "" {
			user.Phone = nil
		}
	}
	if update.Avatar != nil {
		user.Avatar = *update.Avatar
	}
	if update.Address != nil {
		user.Address = update.Address
	}
	if update.WhatBringsYouHere != nil {
		user.WhatBringsYouHere = update.WhatBringsYouHere
	}

	if err := s.store.SaveUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
