// SPDX-License-Identifier: GPL-3.0-only

package handlers

import "usercred-server/models"

// swagger:model SignupRequest
type SignupRequest struct {
	// User's email address
	// required: true
	Email string `json:"email" example:"user@example.com"`
	// User's password
	// required: true
	Password string `json:"password" example:"MySecretPassword@123"`
	// Optional first name
	FirstName *string `json:"first_name" example:"Jane"`
	// Optional last name
	LastName *string `json:"last_name" example:"Doe"`
	// Preferred language, defaults to en
	Language string `json:"language" example:"en"`
	// Optional job title
	Job *string `json:"job" example:"Engineer"`
	// Optional phone number, stored in E.164 form
	Phone *string `json:"phone" example:"+16502530000"`
	// Optional postal address
	Address *string `json:"address" example:"1 Main Street"`
	// What brings the user here
	WhatBringsYouHere *string `json:"what_brings_you_here" example:"Curiosity"`
}

// swagger:model LoginRequest
type LoginRequest struct {
	// User's email address
	Email string `json:"email" example:"user@example.com"`
	// User's password
	Password string `json:"password" example:"MySecretPassword@123"`
}

// swagger:model AuthResponse
type AuthResponse struct {
	// Authentication session token
	// Should be used in the Authorization header as a Bearer token.
	SessionToken string `json:"session_token" example:"sample_session_token"`
	// Public profile of the authenticated user
	User *models.UserProfile `json:"user,omitempty"`
	// Message indicating successful operation
	Message string `json:"message" example:"Operation successful"`
}

// swagger:model GenericResponse
type GenericResponse struct {
	// Message indicating the result of the operation
	Message string `json:"message"`
}

// swagger:model ForgotPasswordRequest
type ForgotPasswordRequest struct {
	// Email address of the account
	// required: true
	Email string `json:"email" example:"user@example.com"`
}

// swagger:model ResetPasswordRequest
type ResetPasswordRequest struct {
	// New password
	// required: true
	Password string `json:"password" example:"MyNewPassword@456"`
}

// swagger:model ChangePasswordRequest
type ChangePasswordRequest struct {
	// Current password
	// required: true
	CurrentPassword string `json:"current_password" example:"MySecretPassword@123"`
	// New password
	// required: true
	NewPassword string `json:"new_password" example:"MyNewPassword@456"`
}

// swagger:model UpdateProfileRequest
type UpdateProfileRequest struct {
	FirstName         *string `json:"first_name" example:"Jane"`
	LastName          *string `json:"last_name" example:"Doe"`
	Language          *string `json:"language" example:"fr"`
	Job               *string `json:"job" example:"Engineer"`
	Phone             *string `json:"phone" example:"+16502530000"`
	Avatar            *string `json:"avatar" example:"https://example.com/avatar.png"`
	Address           *string `json:"address" example:"1 Main Street"`
	WhatBringsYouHere *string `json:"what_brings_you_here" example:"Curiosity"`
	// Rejected when present, passwords change through /users/password
	Password *string `json:"password,omitempty" swaggerignore:"true"`
	// Rejected when present
	NewPassword *string `json:"new_password,omitempty" swaggerignore:"true"`
}

// swagger:model UserResponse
type UserResponse struct {
	User    models.UserProfile `json:"user"`
	Message string             `json:"message" example:"User retrieved successfully"`
}

// swagger:model PaginationDetails
type PaginationDetails struct {
	// Current page number
	Page int `json:"page"`
	// Page size
	PageSize int `json:"page_size"`
	// Total number of items
	Total int64 `json:"total"`
	// Total number of pages
	TotalPages int `json:"total_pages"`
}

// swagger:model SessionDetails
type SessionDetails struct {
	ID         uint    `json:"id" example:"1"`
	IPAddress  *string `json:"ip_address" example:"203.0.113.7"`
	UserAgent  *string `json:"user_agent" example:"Mozilla/5.0"`
	IsCurrent  bool    `json:"is_current"`
	IsExpired  bool    `json:"is_expired"`
	LastUsedAt *string `json:"last_used_at" example:"2023-10-01T12:00:00Z"`
	CreatedAt  string  `json:"created_at" example:"2023-10-01T12:00:00Z"`
	ExpiresAt  string  `json:"expires_at" example:"2023-10-31T12:00:00Z"`
}

// swagger:model SessionListResponse
type SessionListResponse struct {
	Data       []SessionDetails  `json:"data"`
	Pagination PaginationDetails `json:"pagination"`
	Message    string            `json:"message" example:"Sessions retrieved successfully"`
}

// swagger:model DeleteAllSessionsResponse
type DeleteAllSessionsResponse struct {
	Message      string `json:"message" example:"All other sessions deleted successfully"`
	DeletedCount int    `json:"deleted_count" example:"2"`
}

// swagger:model EventLogDetails
type EventLogDetails struct {
	// Event ID
	EID string `json:"eid" example:"550e8400-e29b-41d4-a716-446655440000"`
	// Event type
	Type string `json:"type" example:"LOGIN_SUCCEEDED"`
	// Event description
	Description *string `json:"description" example:"wrong password"`
	// Client IP address
	IPAddress *string `json:"ip_address" example:"203.0.113.7"`
	// Timestamp of when the event was created
	CreatedAt string `json:"created_at" example:"2023-10-01T12:00:00Z"`
}

// swagger:model EventLogListResponse
type EventLogListResponse struct {
	Data    []EventLogDetails `json:"data"`
	Message string            `json:"message" example:"Event logs retrieved successfully"`
}
