// SPDX-License-Identifier: GPL-3.0-only

// Package credentials owns the password lifecycle of a user record: hashing
// on write, password-change bookkeeping and one-time reset tokens.
package credentials

import (
	"errors"
	"fmt"
	"time"
	"usercred-server/crypto"
	"usercred-server/models"
)

const (
	// ResetTokenTTL is how long a password reset token stays valid.
	ResetTokenTTL = 10 * time.Minute
	// ResetTokenBytes is the entropy of a raw reset token.
	ResetTokenBytes = 32
	// ChangedAtMargin keeps PasswordChangedAt strictly before any session
	// token issued in the same second as the change.
	ChangedAtMargin = time.Second
)

var (
	// ErrResetTokenRejected is the user-facing failure for reset tokens.
	ErrResetTokenRejected = errors.New("password reset token is invalid or has expired")
	ErrResetTokenInvalid  = fmt.Errorf("%w: token mismatch", ErrResetTokenRejected)
	ErrResetTokenExpired  = fmt.Errorf("%w: token expired", ErrResetTokenRejected)
	ErrEmptyPassword      = errors.New("password must not be empty")
)

// Hasher is the password hashing primitive. *crypto.Crypto implements it.
type Hasher interface {
	HashPassword(password string) (string, error)
	VerifyPassword(password, encodedHash string) (bool, error)
	NeedsRehash(encodedHash string) bool
}

// PasswordWrite describes a pending write of a user record.
type PasswordWrite struct {
	Modified bool
	IsNew    bool
}

type Manager struct {
	hasher Hasher
	now    func() time.Time
}

type Option func(*Manager)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func NewManager(hasher Hasher, opts ...Option) *Manager {
	m := &Manager{hasher: hasher, now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// MaxPasswordBytes returns the input limit of the hasher, 0 for none.
func (m *Manager) MaxPasswordBytes() int {
	if l, ok := m.hasher.(interface{ MaxPasswordBytes() int }); ok {
		return l.MaxPasswordBytes()
	}
	return 0
}

func (m *Manager) HashPassword(plaintext string) (string, error) {
	if plaintext == "" {
		return "", ErrEmptyPassword
	}
	return m.hasher.HashPassword(plaintext)
}

// OnPasswordWrite must be called by the store before every write of user.
// When the password was modified, user.Password holds the new plaintext and
// is replaced by its hash.
func (m *Manager) OnPasswordWrite(user *models.User, w PasswordWrite) error {
	if !w.Modified {
		return nil
	}

	hash, err := m.HashPassword(user.Password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.Password = hash

	if !w.IsNew {
		changedAt := m.now().Add(-ChangedAtMargin)
		user.PasswordChangedAt = &changedAt
	}
	return nil
}

// VerifyPassword reports whether candidate matches storedHash. A malformed
// hash is returned as an error and never as a mismatch.
func (m *Manager) VerifyPassword(candidate, storedHash string) (bool, error) {
	return m.hasher.VerifyPassword(candidate, storedHash)
}

func (m *Manager) NeedsRehash(storedHash string) bool {
	return m.hasher.NeedsRehash(storedHash)
}

// CreatePasswordResetToken stores the digest and expiry of a new reset token
// on user and returns the raw token. The raw value exists only in the return.
func (m *Manager) CreatePasswordResetToken(user *models.User) (string, error) {
	raw, err := crypto.GenerateRandomString("", ResetTokenBytes, "hex")
	if err != nil {
		return "", fmt.Errorf("generate reset token: %w", err)
	}

	digest := crypto.HashToken(raw)
	expires := m.now().Add(ResetTokenTTL)
	user.PasswordResetToken = &digest
	user.PasswordResetExpires = &expires
	return raw, nil
}

// ValidatePasswordResetToken checks raw against the pending reset of user.
// Both failures wrap ErrResetTokenRejected.
func (m *Manager) ValidatePasswordResetToken(user *models.User, raw string) error {
	if !user.HasPendingReset() || raw == "" {
		return ErrResetTokenInvalid
	}
	if !crypto.ConstantTimeEqual(crypto.HashToken(raw), *user.PasswordResetToken) {
		return ErrResetTokenInvalid
	}
	if !m.now().Before(*user.PasswordResetExpires) {
		return ErrResetTokenExpired
	}
	return nil
}

// ClearPasswordReset drops the token and its expiry together.
func (m *Manager) ClearPasswordReset(user *models.User) {
	user.PasswordResetToken = nil
	user.PasswordResetExpires = nil
}

// ChangedPasswordAfter reports whether a session issued at issuedAt predates
// the last password change and must no longer be trusted.
func (m *Manager) ChangedPasswordAfter(user *models.User, issuedAt time.Time) bool {
	if user.PasswordChangedAt == nil {
		return false
	}
	return issuedAt.Before(*user.PasswordChangedAt)
}

// Now exposes the manager clock so collaborators share one time source.
func (m *Manager) Now() time.Time {
	return m.now()
}
