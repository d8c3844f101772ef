// SPDX-License-Identifier: GPL-3.0-only

// Package store persists users, sessions and credential events with gorm.
// Every user write goes through the credentials manager first.
package store

import (
	"context"
	"errors"
	"usercred-server/credentials"

	"gorm.io/gorm"
)

var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicateEmail = errors.New("email is already registered")
	ErrConflict       = errors.New("record conflicts with an existing one")
	ErrNotNew         = errors.New("record is already persisted")
)

type Store struct {
	db    *gorm.DB
	creds *credentials.Manager
}

func New(db *gorm.DB, creds *credentials.Manager) *Store {
	return &Store{db: db, creds: creds}
}

// WithTx runs fn against a store bound to a single database transaction.
func (s *Store) WithTx(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx, creds: s.creds})
	})
}

func (s *Store) conn(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrConflict
	}
	return err
}
