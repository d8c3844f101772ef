// SPDX-License-Identifier: GPL-3.0-only

package handlers

import (
	"errors"
	"net/http"
	"usercred-server/auth"
	"usercred-server/credentials"
	"usercred-server/passwordcheck"
	"usercred-server/store"

	"github.com/labstack/echo/v4"
)

const invalidPayloadMessage = "Invalid request payload, please ensure it is well-formed and has content-type application/json header"

type Handler struct {
	Auth *auth.Service
}

func New(svc *auth.Service) *Handler {
	return &Handler{Auth: svc}
}

func clientInfo(c echo.Context) auth.ClientInfo {
	return auth.ClientInfo{
		IPAddress: c.RealIP(),
		UserAgent: c.Request().Header.Get("User-Agent"),
	}
}

// httpError maps service errors to responses. Unknown errors are logged and
// hidden behind a 500.
func httpError(c echo.Context, err error) error {
	logger := c.Logger()

	switch {
	case errors.Is(err, passwordcheck.ErrInvalidInput):
		logger.Warn("Validation failed: ", err)
		return &echo.HTTPError{Code: http.StatusBadRequest, Message: err.Error()}
	case errors.Is(err, store.ErrDuplicateEmail):
		logger.Warn("Email already registered.")
		return &echo.HTTPError{
			Code:    http.StatusConflict,
			Message: "This email is already registered, please try another one.",
		}
	case errors.Is(err, auth.ErrInvalidCredentials):
		logger.Warn("Credential check failed.")
		return &echo.HTTPError{
			Code:    http.StatusUnauthorized,
			Message: "Credentials are incorrect, please check your email and password",
		}
	case errors.Is(err, auth.ErrUnauthorized), errors.Is(err, store.ErrNotFound):
		return &echo.HTTPError{
			Code:    http.StatusUnauthorized,
			Message: "Invalid or expired authentication token, please login again",
		}
	case errors.Is(err, auth.ErrSamePassword):
		return &echo.HTTPError{
			Code:    http.StatusBadRequest,
			Message: "New password must be different from the current password",
		}
	case errors.Is(err, credentials.ErrResetTokenRejected):
		logger.Warn("Password reset rejected: ", err)
		return &echo.HTTPError{
			Code:    http.StatusBadRequest,
			Message: "Password reset token is invalid or has expired",
		}
	case errors.Is(err, auth.ErrNotificationFailed):
		logger.Error("Notification failed: ", err)
		return &echo.HTTPError{
			Code:    http.StatusInternalServerError,
			Message: "There was an error sending the email, please try again later",
		}
	}

	logger.Error("Request failed: ", err)
	return echo.ErrInternalServerError
}
