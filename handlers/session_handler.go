// SPDX-License-Identifier: GPL-3.0-only

package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"
	"usercred-server/auth"
	"usercred-server/middlewares"
	"usercred-server/store"

	"github.com/labstack/echo/v4"
)

func queryInt(c echo.Context, name string, def, max int) int {
	v := def
	if p := c.QueryParam(name); p != "" {
		if _, err := fmt.Sscanf(p, "%d", &v); err != nil || v < 1 {
			v = def
		}
	}
	if v > max {
		v = max
	}
	return v
}

// GetSessionsHandler godoc
// @Summary      Get user sessions
// @Description  Retrieves the sessions of the authenticated user with their client details and last activity.
// @Tags         sessions
// @Produce      json
// @Security     BearerAuth
// @Param        Authorization  header  string  true  "Bearer token for authentication. Replace <your_token_here> with a valid token."  default(Bearer <your_token_here>)
// @Param        page     query   int     false  "Page number (default 1)"
// @Param        page_size query  int     false  "Page size (default 10, max 100)"
// @Success      200 {object} SessionListResponse "Paginated list of user sessions"
// @Failure      401 {object} echo.HTTPError     "Unauthorized, invalid or expired session token"
// @Failure      500 {object} echo.HTTPError     "Internal server error"
// @Router       /v1/sessions [get]
func (h *Handler) GetSessionsHandler(c echo.Context) error {
	logger := c.Logger()

	current, err := middlewares.GetAuthenticatedSession(c)
	if err != nil {
		logger.Error("Failed to get authenticated session:", err)
		return httpError(c, auth.ErrUnauthorized)
	}

	page := queryInt(c, "page", 1, 1<<20)
	pageSize := queryInt(c, "page_size", 10, 100)

	sessions, total, err := h.Auth.ListSessions(c.Request().Context(), current.UserID, page, pageSize)
	if err != nil {
		return httpError(c, err)
	}

	now := time.Now()
	details := make([]SessionDetails, 0, len(sessions))
	for _, session := range sessions {
		detail := SessionDetails{
			ID:        session.ID,
			IPAddress: session.IPAddress,
			UserAgent: session.UserAgent,
			IsCurrent: session.ID == current.ID,
			IsExpired: session.Expired(now),
			CreatedAt: session.CreatedAt.Format(time.RFC3339),
			ExpiresAt: session.ExpiresAt.Format(time.RFC3339),
		}
		if session.LastUsedAt != nil {
			lastUsed := session.LastUsedAt.Format(time.RFC3339)
			detail.LastUsedAt = &lastUsed
		}
		details = append(details, detail)
	}

	return c.JSON(http.StatusOK, SessionListResponse{
		Data: details,
		Pagination: PaginationDetails{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: int((total + int64(pageSize) - 1) / int64(pageSize)),
		},
		Message: "Sessions retrieved successfully",
	})
}

// DeleteSessionHandler godoc
// @Summary      Delete a session
// @Description  Deletes another session of the authenticated user. The current session is ended with logout instead.
// @Tags         sessions
// @Produce      json
// @Security     BearerAuth
// @Param        Authorization  header  string  true  "Bearer token for authentication. Replace <your_token_here> with a valid token."  default(Bearer <your_token_here>)
// @Param        session_id    path    string  true  "Session ID"
// @Success      200 {object} GenericResponse "Session deleted successfully"
// @Failure      400 {object} echo.HTTPError     "Bad request, cannot delete current session"
// @Failure      401 {object} echo.HTTPError     "Unauthorized, invalid or expired session token"
// @Failure      404 {object} echo.HTTPError     "Session not found"
// @Failure      500 {object} echo.HTTPError     "Internal server error"
// @Router       /v1/sessions/{session_id} [delete]
func (h *Handler) DeleteSessionHandler(c echo.Context) error {
	logger := c.Logger()

	current, err := middlewares.GetAuthenticatedSession(c)
	if err != nil {
		logger.Error("Failed to get authenticated session:", err)
		return httpError(c, auth.ErrUnauthorized)
	}

	var sessionID uint
	if _, err := fmt.Sscanf(c.Param("session_id"), "%d", &sessionID); err != nil {
		return &echo.HTTPError{
			Code:    http.StatusBadRequest,
			Message: "Invalid session ID format",
		}
	}

	err = h.Auth.RevokeSession(c.Request().Context(), current, sessionID)
	switch {
	case errors.Is(err, auth.ErrCurrentSession):
		return &echo.HTTPError{
			Code:    http.StatusBadRequest,
			Message: "Cannot delete current session. Use logout endpoint instead.",
		}
	case errors.Is(err, store.ErrNotFound):
		return &echo.HTTPError{
			Code:    http.StatusNotFound,
			Message: "Session not found",
		}
	case err != nil:
		return httpError(c, err)
	}

	logger.Infof("Session %d deleted successfully for user %d", sessionID, current.UserID)
	return c.JSON(http.StatusOK, GenericResponse{
		Message: "Session deleted successfully",
	})
}

// DeleteAllSessionsHandler godoc
// @Summary      Delete all other sessions
// @Description  Deletes all sessions except the current one.
// @Tags         sessions
// @Produce      json
// @Security     BearerAuth
// @Param        Authorization  header  string  true  "Bearer token for authentication. Replace <your_token_here> with a valid token."  default(Bearer <your_token_here>)
// @Success      200 {object} DeleteAllSessionsResponse "All other sessions deleted successfully"
// @Failure      401 {object} echo.HTTPError     "Unauthorized, invalid or expired session token"
// @Failure      500 {object} echo.HTTPError     "Internal server error"
// @Router       /v1/sessions [delete]
func (h *Handler) DeleteAllSessionsHandler(c echo.Context) error {
	logger := c.Logger()

	current, err := middlewares.GetAuthenticatedSession(c)
	if err != nil {
		logger.Error("Failed to get authenticated session:", err)
		return httpError(c, auth.ErrUnauthorized)
	}

	deleted, err := h.Auth.RevokeOtherSessions(c.Request().Context(), current)
	if err != nil {
		return httpError(c, err)
	}

	logger.Infof("Deleted %d sessions for user %d, keeping current session %d", deleted, current.UserID, current.ID)
	return c.JSON(http.StatusOK, DeleteAllSessionsResponse{
		Message:      "All other sessions deleted successfully",
		DeletedCount: int(deleted),
	})
}

// GetEventLogsHandler godoc
// @Summary      Get credential events
// @Description  Retrieves the most recent credential events (logins, password changes, resets) of the authenticated user.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        Authorization  header  string  true  "Bearer token for authentication. Replace <your_token_here> with a valid token."  default(Bearer <your_token_here>)
// @Param        limit  query  int  false  "Number of events (default 20, max 100)"
// @Success      200 {object} EventLogListResponse "Event logs retrieved successfully"
// @Failure      401 {object} echo.HTTPError     "Unauthorized, invalid or expired session token"
// @Failure      500 {object} echo.HTTPError     "Internal server error"
// @Router       /v1/event-logs [get]
func (h *Handler) GetEventLogsHandler(c echo.Context) error {
	logger := c.Logger()

	user, err := middlewares.GetAuthenticatedUser(c)
	if err != nil {
		logger.Error("Failed to get authenticated user:", err)
		return httpError(c, auth.ErrUnauthorized)
	}

	events, err := h.Auth.Events(c.Request().Context(), user.ID, queryInt(c, "limit", 20, 100))
	if err != nil {
		return httpError(c, err)
	}

	data := make([]EventLogDetails, 0, len(events))
	for _, event := range events {
		data = append(data, EventLogDetails{
			EID:         event.EID.String(),
			Type:        string(event.Type),
			Description: event.Description,
			IPAddress:   event.IPAddress,
			CreatedAt:   event.CreatedAt.Format(time.RFC3339),
		})
	}

	return c.JSON(http.StatusOK, EventLogListResponse{Data: data, Message: "Event logs retrieved successfully"})
}
