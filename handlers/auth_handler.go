// SPDX-License-Identifier: GPL-3.0-only

package handlers

import (
	"net/http"
	"usercred-server/auth"
	"usercred-server/middlewares"

	"github.com/labstack/echo/v4"
)

const forgotPasswordMessage = "If the email you entered is linked to an account, you'll " +
	"receive password reset instructions in your mail. Be sure to check your inbox and spam folder."

// SignupHandler godoc
// @Summary      Register a new user
// @Description  Creates a new user account and opens a session.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        signupRequest  body  SignupRequest  true  "Signup request payload"
// @Success      201 {object} AuthResponse 	 "Signup successful"
// @Failure      400 {object} echo.HTTPError     "Bad request, missing or invalid fields"
// @Failure      409 {object} echo.HTTPError     "Duplicate user"
// @Failure      500 {object} echo.HTTPError     "Internal server error"
// @Router       /v1/auth/signup [post]
func (h *Handler) SignupHandler(c echo.Context) error {
	logger := c.Logger()

	var req SignupRequest
	if err := c.Bind(&req); err != nil {
		logger.Error("Invalid signup request payload:", err)
		return &echo.HTTPError{Code: http.StatusBadRequest, Message: invalidPayloadMessage}
	}

	if req.Email == "" {
		logger.Error("Email is required.")
		return &echo.HTTPError{
			Code:    http.StatusBadRequest,
			Message: "email field is required",
		}
	}

	if req.Password == "" {
		logger.Error("Password is required.")
		return &echo.HTTPError{
			Code:    http.StatusBadRequest,
			Message: "password field is required",
		}
	}

	user, token, err := h.Auth.Signup(c.Request().Context(), auth.SignupInput{
		Email:             req.Email,
		Password:          req.Password,
		FirstName:         req.FirstName,
		LastName:          req.LastName,
		Language:          req.Language,
		Job:               req.Job,
		Phone:             req.Phone,
		Address:           req.Address,
		WhatBringsYouHere: req.WhatBringsYouHere,
	}, clientInfo(c))
	if err != nil {
		return httpError(c, err)
	}

	profile := user.Profile()
	logger.Infof("User %d signed up successfully.", user.ID)
	return c.JSON(http.StatusCreated, AuthResponse{SessionToken: token, User: &profile, Message: "Signup successful"})
}

// LoginHandler godoc
// @Summary      Login a user
// @Description  Authenticates a user and returns a session token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        loginRequest  body  LoginRequest  true  "Login request payload"
// @Success      200 {object} AuthResponse 	 "Login successful"
// @Failure      400 {object} echo.HTTPError     "Bad request, missing required fields"
// @Failure      401 {object} echo.HTTPError     "Unauthorized"
// @Failure      500 {object} echo.HTTPError     "Internal server error"
// @Router       /v1/auth/login [post]
func (h *Handler) LoginHandler(c echo.Context) error {
	logger := c.Logger()

	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		logger.Error("Invalid login request payload:", err)
		return &echo.HTTPError{Code: http.StatusBadRequest, Message: invalidPayloadMessage}
	}

	if req.Email == "" {
		logger.Error("Email is required.")
		return &echo.HTTPError{
			Code:    http.StatusBadRequest,
			Message: "email field is required",
		}
	}

	if req.Password == "" {
		logger.Error("Password is required.")
		return &echo.HTTPError{
			Code:    http.StatusBadRequest,
			Message: "password field is required",
		}
	}

	user, token, err := h.Auth.Login(c.Request().Context(), req.Email, req.Password, clientInfo(c))
	if err != nil {
		return httpError(c, err)
	}

	profile := user.Profile()
	return c.JSON(http.StatusOK, AuthResponse{SessionToken: token, User: &profile, Message: "Login successful"})
}

// LogoutHandler godoc
// @Summary      Logout
// @Description  Ends the current session.
// @Tags         auth
// @Security     BearerAuth
// @Param        Authorization  header  string  true  "Bearer token for authentication. Replace <your_token_here> with a valid token."  default(Bearer <your_token_here>)
// @Success      204 "Logged out"
// @Failure      401 {object} echo.HTTPError  "Unauthorized"
// @Failure      500 {object} echo.HTTPError  "Internal server error"
// @Router       /v1/auth/logout [post]
func (h *Handler) LogoutHandler(c echo.Context) error {
	logger := c.Logger()

	session, err := middlewares.GetAuthenticatedSession(c)
	if err != nil {
		logger.Error("Failed to get authenticated session:", err)
		return httpError(c, auth.ErrUnauthorized)
	}

	if err := h.Auth.Logout(c.Request().Context(), session, clientInfo(c)); err != nil {
		return httpError(c, err)
	}

	logger.Infof("User logged out successfully")
	return c.NoContent(http.StatusNoContent)
}

// ForgotPasswordHandler godoc
// @Summary      Request password reset
// @Description  Sends a password reset link to the user's registered email address. The answer is the same whether or not the email is registered.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        forgotPasswordRequest  body  ForgotPasswordRequest  true  "Forgot password request"
// @Success      200 {object} GenericResponse "Password reset email sent successfully"
// @Failure      400 {object} echo.HTTPError  "Bad request"
// @Failure      500 {object} echo.HTTPError  "Internal server error"
// @Router       /v1/auth/forgot-password [post]
func (h *Handler) ForgotPasswordHandler(c echo.Context) error {
	logger := c.Logger()

	var req ForgotPasswordRequest
	if err := c.Bind(&req); err != nil {
		logger.Error("Invalid forgot password request payload:", err)
		return &echo.HTTPError{Code: http.StatusBadRequest, Message: invalidPayloadMessage}
	}

	if req.Email == "" {
		logger.Error("Email is required.")
		return &echo.HTTPError{
			Code:    http.StatusBadRequest,
			Message: "email field is required",
		}
	}

	if err := h.Auth.ForgotPassword(c.Request().Context(), req.Email, clientInfo(c)); err != nil {
		return httpError(c, err)
	}

	return c.JSON(http.StatusOK, GenericResponse{Message: forgotPasswordMessage})
}

// ResetPasswordHandler godoc
// @Summary      Reset password
// @Description  Sets a new password using the token sent via email and opens a new session. Every other session ends.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        token  path  string  true  "Password reset token"
// @Param        resetPasswordRequest  body  ResetPasswordRequest  true  "Password reset request"
// @Success      200 {object} AuthResponse    "Password reset successfully"
// @Failure      400 {object} echo.HTTPError  "Bad request, invalid or expired token"
// @Failure      500 {object} echo.HTTPError  "Internal server error"
// @Router       /v1/auth/reset-password/{token} [patch]
func (h *Handler) ResetPasswordHandler(c echo.Context) error {
	logger := c.Logger()

	var req ResetPasswordRequest
	if err := c.Bind(&req); err != nil {
		logger.Error("Invalid password reset request payload:", err)
		return &echo.HTTPError{Code: http.StatusBadRequest, Message: invalidPayloadMessage}
	}

	if req.Password == "" {
		logger.Error("New password is required")
		return &echo.HTTPError{
			Code:    http.StatusBadRequest,
			Message: "password field is required",
		}
	}

	token, err := h.Auth.ResetPassword(c.Request().Context(), c.Param("token"), req.Password, clientInfo(c))
	if err != nil {
		return httpError(c, err)
	}

	logger.Info("Password reset successful")
	return c.JSON(http.StatusOK, AuthResponse{
		SessionToken: token,
		Message:      "Password reset successfully",
	})
}
