// SPDX-License-Identifier: GPL-3.0-only

package handlers

import (
	"net/http"
	"usercred-server/auth"
	"usercred-server/middlewares"

	"github.com/labstack/echo/v4"
)

// GetUserHandler godoc
// @Summary      Get user details
// @Description  Retrieves the public profile of the authenticated user.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        Authorization  header  string  true  "Bearer token for authentication. Replace <your_token_here> with a valid token."  default(Bearer <your_token_here>)
// @Success      200 {object}  UserResponse 	 "User retrieved successfully"
// @Failure      401 {object} echo.HTTPError     "Unauthorized, invalid or expired session token"
// @Failure      500 {object} echo.HTTPError     "Internal server error"
// @Router       /v1/users/me [get]
func (h *Handler) GetUserHandler(c echo.Context) error {
	logger := c.Logger()

	user, err := middlewares.GetAuthenticatedUser(c)
	if err != nil {
		logger.Error("Failed to get authenticated user:", err)
		return httpError(c, auth.ErrUnauthorized)
	}

	return c.JSON(http.StatusOK, UserResponse{User: user.Profile(), Message: "User retrieved successfully"})
}

// UpdateUserHandler godoc
// @Summary      Update user profile
// @Description  Updates profile fields of the authenticated user. Password fields are refused.
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Authorization  header  string  true  "Bearer token for authentication. Replace <your_token_here> with a valid token."  default(Bearer <your_token_here>)
// @Param        updateProfileRequest  body  UpdateProfileRequest  true  "Profile fields to change"
// @Success      200 {object}  UserResponse      "User updated successfully"
// @Failure      400 {object} echo.HTTPError     "Bad request, invalid fields"
// @Failure      401 {object} echo.HTTPError     "Unauthorized, invalid or expired session token"
// @Failure      500 {object} echo.HTTPError     "Internal server error"
// @Router       /v1/users/me [patch]
func (h *Handler) UpdateUserHandler(c echo.Context) error {
	logger := c.Logger()

	user, err := middlewares.GetAuthenticatedUser(c)
	if err != nil {
		logger.Error("Failed to get authenticated user:", err)
		return httpError(c, auth.ErrUnauthorized)
	}

	var req UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		logger.Error("Invalid update profile request payload:", err)
		return &echo.HTTPError{Code: http.StatusBadRequest, Message: invalidPayloadMessage}
	}

	if req.Password != nil || req.NewPassword != nil {
		logger.Error("Password change attempted through profile update.")
		return &echo.HTTPError{
			Code:    http.StatusBadRequest,
			Message: "This route is not for password updates, please use /v1/users/password",
		}
	}

	updated, err := h.Auth.UpdateProfile(c.Request().Context(), user.ID, auth.ProfileUpdate{
		FirstName:         req.FirstName,
		LastName:          req.LastName,
		Language:          req.Language,
		Job:               req.Job,
		Phone:             req.Phone,
		Avatar:            req.Avatar,
		Address:           req.Address,
		WhatBringsYouHere: req.WhatBringsYouHere,
	})
	if err != nil {
		return httpError(c, err)
	}

	return c.JSON(http.StatusOK, UserResponse{User: updated.Profile(), Message: "User updated successfully"})
}

// ChangePasswordHandler godoc
// @Summary      Change user password
// @Description  Changes the authenticated user's password after validating the current password. Every session ends and a new session token is returned.
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Authorization  header  string  true  "Bearer token for authentication. Replace <your_token_here> with a valid token."  default(Bearer <your_token_here>)
// @Param        changePasswordRequest  body  ChangePasswordRequest  true  "Password change request payload with current and new password"
// @Success      200 {object}  AuthResponse "Password changed successfully"
// @Failure      400 {object} echo.HTTPError     "Bad request, missing required fields or password validation failed"
// @Failure      401 {object} echo.HTTPError     "Unauthorized, invalid current password or expired session token"
// @Failure      500 {object} echo.HTTPError     "Internal server error"
// @Router       /v1/users/password [put]
func (h *Handler) ChangePasswordHandler(c echo.Context) error {
	logger := c.Logger()

	user, err := middlewares.GetAuthenticatedUser(c)
	if err != nil {
		logger.Error("Failed to get authenticated user:", err)
		return httpError(c, auth.ErrUnauthorized)
	}

	var req ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		logger.Error("Invalid change password request payload:", err)
		return &echo.HTTPError{Code: http.StatusBadRequest, Message: invalidPayloadMessage}
	}

	if req.CurrentPassword == "" {
		logger.Error("Current password is required.")
		return &echo.HTTPError{
			Code:    http.StatusBadRequest,
			Message: "current_password field is required",
		}
	}

	if req.NewPassword == "" {
		logger.Error("New password is required.")
		return &echo.HTTPError{
			Code:    http.StatusBadRequest,
			Message: "new_password field is required",
		}
	}

	token, err := h.Auth.ChangePassword(c.Request().Context(), user.ID, req.CurrentPassword, req.NewPassword, clientInfo(c))
	if err != nil {
		return httpError(c, err)
	}

	logger.Info("Password changed successfully.")
	return c.JSON(http.StatusOK, AuthResponse{SessionToken: token, Message: "Password changed successfully"})
}
