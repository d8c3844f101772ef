// SPDX-License-Identifier: GPL-3.0-only

package routes

import (
	"usercred-server/commons"
	"usercred-server/handlers"
	"usercred-server/middlewares"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo, h *handlers.Handler) {
	commons.Logger.Debug("Registering v1 routes")
	requireSession := middlewares.VerifySessionMiddleware(h.Auth)

	api_v1 := e.Group("/v1")
	api_v1.POST("/auth/signup", h.SignupHandler)
	api_v1.POST("/auth/login", h.LoginHandler)
	api_v1.POST("/auth/logout", h.LogoutHandler, requireSession)
	api_v1.POST("/auth/forgot-password", h.ForgotPasswordHandler)
	api_v1.PATCH("/auth/reset-password/:token", h.ResetPasswordHandler)
	api_v1.GET("/users/me", h.GetUserHandler, requireSession)
	api_v1.PATCH("/users/me", h.UpdateUserHandler, requireSession)
	api_v1.PUT("/users/password", h.ChangePasswordHandler, requireSession)
	api_v1.GET("/sessions", h.GetSessionsHandler, requireSession)
	api_v1.DELETE("/sessions", h.DeleteAllSessionsHandler, requireSession)
	api_v1.DELETE("/sessions/:session_id", h.DeleteSessionHandler, requireSession)
	api_v1.GET("/event-logs", h.GetEventLogsHandler, requireSession)
	commons.Logger.Info("v1 routes registered successfully")
}
