// SPDX-License-Identifier: GPL-3.0-only

package store

import (
	"context"
	"errors"
	"fmt"
	"time"
	"usercred-server/credentials"
	"usercred-server/models"
	"usercred-server/passwordcheck"

	"github.com/google/uuid"
)

// password hash column, left out of default projections
const passwordColumn = "password"

func (s *Store) validateUser(ctx context.Context, user *models.User, passwordModified bool) error {
	user.Email = models.NormalizeEmail(user.Email)
	if err := passwordcheck.ValidateEmail(user.Email); err != nil {
		return err
	}

	if passwordModified {
		policy := passwordcheck.DefaultPolicy()
		policy.MaxBytes = s.creds.MaxPasswordBytes()
		if err := policy.Validate(ctx, user.Password); err != nil {
			return err
		}
	}

	if user.Phone != nil && *user.Phone != "" {
		phone, err := passwordcheck.NormalizePhone(*user.Phone)
		if err != nil {
			return err
		}
		user.Phone = &phone
	}

	if user.Role != "" && user.Role != models.RoleUser && user.Role != models.RoleAdmin {
		return fmt.Errorf("%w: unknown role %q", passwordcheck.ErrInvalidInput, user.Role)
	}
	return nil
}

// CreateUser validates and inserts a new user. user.Password must hold the
// plaintext password; it holds the hash afterwards.
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	if !user.IsNew() {
		return ErrNotNew
	}
	if err := s.validateUser(ctx, user, true); err != nil {
		return err
	}

	var count int64
	if err := s.conn(ctx).Model(&models.User{}).Where("email = ?", user.Email).Count(&count).Error; err != nil {
		return fmt.Errorf("check existing email: %w", err)
	}
	if count > 0 {
		return ErrDuplicateEmail
	}

	pending := snapshotPassword(user)
	if err := s.creds.OnPasswordWrite(user, credentials.PasswordWrite{Modified: true, IsNew: true}); err != nil {
		return err
	}

	if err := s.conn(ctx).Create(user).Error; err != nil {
		pending.restore(user)
		return fmt.Errorf("create user: %w", s.writeError(ctx, user, err))
	}
	return nil
}

// SaveUser writes every field of user. The password is hashed and written
// only when it differs from the value the record was loaded with.
func (s *Store) SaveUser(ctx context.Context, user *models.User) error {
	if user.IsNew() {
		return s.CreateUser(ctx, user)
	}

	w := credentials.PasswordWrite{Modified: user.PasswordModified(), IsNew: false}
	if err := s.validateUser(ctx, user, w.Modified); err != nil {
		return err
	}
	pending := snapshotPassword(user)
	if err := s.creds.OnPasswordWrite(user, w); err != nil {
		return err
	}

	q := s.conn(ctx)
	if !w.Modified {
		q = q.Omit(passwordColumn)
	}
	if err := q.Save(user).Error; err != nil {
		pending.restore(user)
		return fmt.Errorf("save user: %w", s.writeError(ctx, user, err))
	}
	return nil
}

// passwordState is the part of a user that OnPasswordWrite and the create
// hooks change. A failed write puts it back so a retry hashes the plaintext
// again instead of the hash.
type passwordState struct {
	password  string
	changedAt *time.Time
	uid       uuid.UUID
}

func snapshotPassword(user *models.User) passwordState {
	return passwordState{password: user.Password, changedAt: user.PasswordChangedAt, uid: user.UID}
}

func (p passwordState) restore(user *models.User) {
	user.Password = p.password
	user.PasswordChangedAt = p.changedAt
	user.UID = p.uid
}

// writeError translates a failed user write. Only a conflict on the email
// column is reported as ErrDuplicateEmail.
func (s *Store) writeError(ctx context.Context, user *models.User, err error) error {
	err = translate(err)
	if !errors.Is(err, ErrConflict) {
		return err
	}
	var count int64
	q := s.conn(ctx).Model(&models.User{}).Where("email = ?", user.Email)
	if !user.IsNew() {
		q = q.Where("id <> ?", user.ID)
	}
	if q.Count(&count).Error == nil && count > 0 {
		return ErrDuplicateEmail
	}
	return err
}

// ChangePassword sets a new plaintext password on user and saves it.
func (s *Store) ChangePassword(ctx context.Context, user *models.User, plaintext string) error {
	user.Password = plaintext
	return s.SaveUser(ctx, user)
}

func (s *Store) findUser(ctx context.Context, withPassword bool, query string, args ...any) (*models.User, error) {
	q := s.conn(ctx)
	if !withPassword {
		q = q.Omit(passwordColumn)
	}

	var user models.User
	if err := q.Where(query, args...).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// FindUserByEmail returns the user without its password hash.
func (s *Store) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findUser(ctx, false, "email = ?", models.NormalizeEmail(email))
}

// FindUserCredentialsByEmail returns the user including its password hash.
func (s *Store) FindUserCredentialsByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findUser(ctx, true, "email = ?", models.NormalizeEmail(email))
}

func (s *Store) FindUserByID(ctx context.Context, id uint) (*models.User, error) {
	return s.findUser(ctx, false, "id = ?", id)
}

func (s *Store) FindUserCredentialsByID(ctx context.Context, id uint) (*models.User, error) {
	return s.findUser(ctx, true, "id = ?", id)
}

func (s *Store) FindUserByUID(ctx context.Context, uid string) (*models.User, error) {
	return s.findUser(ctx, false, "uid = ?", uid)
}

// FindUserByResetToken looks a user up by the digest of a reset token.
func (s *Store) FindUserByResetToken(ctx context.Context, digest string) (*models.User, error) {
	return s.findUser(ctx, true, "password_reset_token = ?", digest)
}

func (s *Store) DeleteUser(ctx context.Context, user *models.User) error {
	if err := s.conn(ctx).Delete(user).Error; err != nil {
		return fmt.Errorf("delete user: %w", translate(err))
	}
	return nil
}

// RehashPassword upgrades the stored hash of plaintext to the configured
// algorithm and cost. It is not a password change: PasswordChangedAt and
// sessions stay untouched.
func (s *Store) RehashPassword(ctx context.Context, user *models.User, plaintext string) error {
	hash, err := s.creds.HashPassword(plaintext)
	if err != nil {
		return err
	}
	if err := s.conn(ctx).Model(user).UpdateColumn(passwordColumn, hash).Error; err != nil {
		return fmt.Errorf("rehash password: %w", translate(err))
	}
	user.Password = hash
	user.MarkPasswordPersisted()
	return nil
}
