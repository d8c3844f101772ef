// SPDX-License-Identifier: GPL-3.0-only

package models

import (
	"time"

	"github.com/google/uuid"
)

// UserProfile is the public view of a user. It has no credential fields.
type UserProfile struct {
	UID               uuid.UUID `json:"uid"`
	Email             string    `json:"email"`
	FirstName         *string   `json:"first_name,omitempty"`
	LastName          *string   `json:"last_name,omitempty"`
	Language          string    `json:"language"`
	Job               *string   `json:"job,omitempty"`
	Phone             *string   `json:"phone,omitempty"`
	Role              Role      `json:"role"`
	Avatar            string    `json:"avatar"`
	Address           *string   `json:"address,omitempty"`
	WhatBringsYouHere *string   `json:"what_brings_you_here,omitempty"`
	Activated         bool      `json:"activated"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func (u *User) Profile() UserProfile {
	return UserProfile{
		UID:               u.UID,
		Email:             u.Email,
		FirstName:         u.FirstName,
		LastName:          u.LastName,
		Language:          u.Language,
		Job:               u.Job,
		Phone:             u.Phone,
		Role:              u.Role,
		Avatar:            u.Avatar,
		Address:           u.Address,
		WhatBringsYouHere: u.WhatBringsYouHere,
		Activated:         u.Activated,
		CreatedAt:         u.CreatedAt,
		UpdatedAt:         u.UpdatedAt,
	}
}
