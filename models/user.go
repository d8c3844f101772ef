// SPDX-License-Identifier: GPL-3.0-only

package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var AllModels []any

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

const DefaultLanguage = "en"

// User is the internal credential record. It must never be serialized to
// clients; use Profile for that.
type User struct {
	ID                   uint      `gorm:"primaryKey"`
	UID                  uuid.UUID `gorm:"size:36;not null;uniqueIndex"`
	Email                string    `gorm:"size:320;not null;uniqueIndex"`
	Password             string    `gorm:"size:255;not null" json:"-"`
	FirstName            *string   `gorm:"size:120;default:null"`
	LastName             *string   `gorm:"size:120;default:null"`
	Language             string    `gorm:"size:16;not null;default:en"`
	Job                  *string   `gorm:"size:255;default:null"`
	Phone                *string   `gorm:"size:32;default:null"`
	Role                 Role      `gorm:"size:16;not null;default:user"`
	Avatar               string    `gorm:"size:1024;not null;default:''"`
	Address              *string   `gorm:"type:text;default:null"`
	WhatBringsYouHere    *string   `gorm:"type:text;default:null"`
	Activated            bool      `gorm:"not null;default:false"`
	PasswordChangedAt    *time.Time
	PasswordResetToken   *string    `gorm:"size:64;index" json:"-"`
	PasswordResetExpires *time.Time `json:"-"`
	CreatedAt            time.Time
	UpdatedAt            time.Time
	DeletedAt            gorm.DeletedAt `gorm:"index"`

	// password value as last read from or written to the database
	loadedPassword string
}

// IsNew reports whether the record has never been persisted.
func (u *User) IsNew() bool {
	return u.ID == 0
}

// PasswordModified reports whether Password differs from the value that was
// last loaded or saved.
func (u *User) PasswordModified() bool {
	return u.Password != u.loadedPassword
}

// MarkPasswordPersisted records the current Password as the stored value.
func (u *User) MarkPasswordPersisted() {
	u.loadedPassword = u.Password
}

// HasPendingReset reports whether a reset token is currently stored.
func (u *User) HasPendingReset() bool {
	return u.PasswordResetToken != nil && u.PasswordResetExpires != nil
}

func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.UID == uuid.Nil {
		u.UID = uuid.New()
	}
	return
}

func (u *User) BeforeSave(tx *gorm.DB) (err error) {
	u.Email = NormalizeEmail(u.Email)
	u.FirstName = trimPtr(u.FirstName)
	u.LastName = trimPtr(u.LastName)
	if u.Language == "" {
		u.Language = DefaultLanguage
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	return
}

func (u *User) AfterFind(tx *gorm.DB) (err error) {
	u.MarkPasswordPersisted()
	return
}

func (u *User) AfterSave(tx *gorm.DB) (err error) {
	u.MarkPasswordPersisted()
	return
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

func init() {
	AllModels = append(AllModels, &User{})
}
