// SPDX-License-Identifier: GPL-3.0-only

package middlewares

import (
	"errors"
	"net/http"
	"strings"
	"usercred-server/auth"
	"usercred-server/models"

	"github.com/labstack/echo/v4"
)

const (
	userContextKey    = "user"
	sessionContextKey = "session"
)

// VerifySessionMiddleware requires a valid bearer session token and stores
// the resolved user and session on the context.
func VerifySessionMiddleware(svc *auth.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			logger := c.Logger()

			authHeader := c.Request().Header.Get("Authorization")
			sessionToken, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || sessionToken == "" {
				logger.Error("Authorization header missing or invalid.")
				return &echo.HTTPError{
					Code:    http.StatusUnauthorized,
					Message: "Bearer token is required",
				}
			}

			user, session, err := svc.Authenticate(c.Request().Context(), sessionToken)
			if err != nil {
				if !errors.Is(err, auth.ErrUnauthorized) {
					logger.Error("Session lookup failed: ", err)
					return echo.ErrInternalServerError
				}
				logger.Error("Authentication failed.")
				return &echo.HTTPError{
					Code:    http.StatusUnauthorized,
					Message: "Invalid or expired session token, please login again",
				}
			}

			c.Set(userContextKey, user)
			c.Set(sessionContextKey, session)
			return next(c)
		}
	}
}

func GetAuthenticatedUser(c echo.Context) (*models.User, error) {
	if user, ok := c.Get(userContextKey).(*models.User); ok && user != nil {
		return user, nil
	}
	return nil, errors.New("no authenticated user found")
}

func GetAuthenticatedSession(c echo.Context) (*models.Session, error) {
	if session, ok := c.Get(sessionContextKey).(*models.Session); ok && session != nil {
		return session, nil
	}
	return nil, errors.New("no authenticated session found")
}
