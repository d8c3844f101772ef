// SPDX-License-Identifier: GPL-3.0-only

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AuthEventType string

const (
	EventSignup           AuthEventType = "SIGNUP"
	EventLoginSucceeded   AuthEventType = "LOGIN_SUCCEEDED"
	EventLoginFailed      AuthEventType = "LOGIN_FAILED"
	EventLogout           AuthEventType = "LOGOUT"
	EventPasswordChanged  AuthEventType = "PASSWORD_CHANGED"
	EventPasswordRehashed AuthEventType = "PASSWORD_REHASHED"
	EventResetRequested   AuthEventType = "RESET_REQUESTED"
	EventResetCompleted   AuthEventType = "RESET_COMPLETED"
	EventResetRejected    AuthEventType = "RESET_REJECTED"
)

// EventLog is an audit trail of credential events. It never carries secrets.
type EventLog struct {
	ID          uint          `gorm:"primaryKey"`
	EID         uuid.UUID     `gorm:"size:36;not null;uniqueIndex"`
	Type        AuthEventType `gorm:"size:32;not null;index"`
	Description *string       `gorm:"type:text;default:null"`
	IPAddress   *string       `gorm:"size:64;default:null"`
	CreatedAt   time.Time
	DeletedAt   gorm.DeletedAt `gorm:"index"`
	UserID      uint           `gorm:"index"`
	User        User           `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

func (eventLog *EventLog) BeforeCreate(tx *gorm.DB) (err error) {
	eventLog.EID = uuid.New()
	return
}

func init() {
	AllModels = append(AllModels, &EventLog{})
}
