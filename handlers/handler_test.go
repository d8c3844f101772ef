// SPDX-License-Identifier: GPL-3.0-only

package handlers_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"usercred-server/auth"
	"usercred-server/credentials"
	"usercred-server/crypto"
	"usercred-server/db"
	"usercred-server/handlers"
	"usercred-server/notifications"
	"usercred-server/routes"
	"usercred-server/store"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const resetURL = "https://app.example.com/reset"

type testClock struct {
	t time.Time
}

func (c *testClock) Now() time.Time { return c.t }

type testServer struct {
	e      *echo.Echo
	clock  *testClock
	outbox *notifications.MockOutbox
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	t.Setenv("PWNED_PASSWORDS_ENABLED", "false")
	t.Setenv("PASSWORD_STRICT", "false")
	t.Setenv("PASSWORD_MIN_LENGTH", "")

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Discard,
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.Migrate(conn))

	clock := &testClock{t: time.Now().UTC().Truncate(time.Second)}
	creds := credentials.NewManager(&crypto.Crypto{Algorithm: crypto.Bcrypt, BcryptCost: 4}, credentials.WithClock(clock.Now))
	outbox := &notifications.MockOutbox{}
	svc := auth.NewService(store.New(conn, creds), creds, notifications.NewMockDispatcher(outbox), auth.Config{
		JWTSecret:        "test-secret",
		Issuer:           "usercred-test",
		SessionTTL:       time.Hour,
		ResetPasswordURL: resetURL,
	})

	e := echo.New()
	routes.RegisterRoutes(e, handlers.New(svc))
	return &testServer{e: e, clock: clock, outbox: outbox}
}

func (s *testServer) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func (s *testServer) signup(t *testing.T, email, password string) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/v1/auth/signup", "", `{"email":"`+email+`","password":"`+password+`"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[handlers.AuthResponse](t, rec).SessionToken
}

func (s *testServer) resetToken(t *testing.T) string {
	t.Helper()
	msg, ok := s.outbox.Last()
	require.True(t, ok)
	link, ok := msg.Data.Variables["reset_link"].(string)
	require.True(t, ok)
	return strings.TrimPrefix(link, resetURL+"/")
}

func TestSignupHandler(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/v1/auth/signup", "", `{"email":"Jane@Example.com","password":"abcd","first_name":"Jane"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "password")
	assert.NotContains(t, rec.Body.String(), "$2a$")

	resp := decode[handlers.AuthResponse](t, rec)
	assert.NotEmpty(t, resp.SessionToken)
	require.NotNil(t, resp.User)
	assert.Equal(t, "jane@example.com", resp.User.Email)
	assert.Equal(t, "en", resp.User.Language)
	assert.Equal(t, "user", string(resp.User.Role))
	assert.False(t, resp.User.Activated)

	rec = s.do(t, http.MethodPost, "/v1/auth/signup", "", `{"email":"jane@example.com","password":"abcd"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodPost, "/v1/auth/signup", "", `{"password":"abcd"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/v1/auth/signup", "", `{"email":"short@example.com","password":"abc"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/v1/auth/signup", "", `{"email":"not-an-email","password":"abcd"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/v1/auth/signup", "", `{"email":"long@example.com","password":"`+strings.Repeat("a", 80)+`"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "at most 72 bytes")

	rec = s.do(t, http.MethodPost, "/v1/auth/signup", "", `{"email":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginAndProfile(t *testing.T) {
	s := newTestServer(t)
	s.signup(t, "login@example.com", "abcd")

	rec := s.do(t, http.MethodPost, "/v1/auth/login", "", `{"email":"login@example.com","password":"abcde"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPost, "/v1/auth/login", "", `{"email":"login@example.com","password":"abcd"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	token := decode[handlers.AuthResponse](t, rec).SessionToken

	rec = s.do(t, http.MethodGet, "/v1/users/me", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodGet, "/v1/users/me", "garbage", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodGet, "/v1/users/me", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "login@example.com", decode[handlers.UserResponse](t, rec).User.Email)
	assert.NotContains(t, rec.Body.String(), "password")

	rec = s.do(t, http.MethodPatch, "/v1/users/me", token, `{"job":"analyst","phone":"+1 650-253-0000"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	profile := decode[handlers.UserResponse](t, rec).User
	assert.Equal(t, "analyst", *profile.Job)
	assert.Equal(t, "+16502530000", *profile.Phone)

	rec = s.do(t, http.MethodPatch, "/v1/users/me", token, `{"password":"wxyz"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/v1/auth/logout", token, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = s.do(t, http.MethodGet, "/v1/users/me", token, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestChangePasswordHandler(t *testing.T) {
	s := newTestServer(t)
	token := s.signup(t, "change@example.com", "abcd")

	rec := s.do(t, http.MethodPut, "/v1/users/password", token, `{"current_password":"nope","new_password":"wxyz"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPut, "/v1/users/password", token, `{"current_password":"abcd","new_password":"abcd"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPut, "/v1/users/password", token, `{"current_password":"abcd"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	s.clock.t = s.clock.t.Add(time.Minute)
	rec = s.do(t, http.MethodPut, "/v1/users/password", token, `{"current_password":"abcd","new_password":"wxyz"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	newToken := decode[handlers.AuthResponse](t, rec).SessionToken

	rec = s.do(t, http.MethodGet, "/v1/users/me", token, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = s.do(t, http.MethodGet, "/v1/users/me", newToken, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestForgotPasswordHandlerDoesNotRevealAccounts(t *testing.T) {
	s := newTestServer(t)
	s.signup(t, "known@example.com", "abcd")

	known := s.do(t, http.MethodPost, "/v1/auth/forgot-password", "", `{"email":"known@example.com"}`)
	unknown := s.do(t, http.MethodPost, "/v1/auth/forgot-password", "", `{"email":"unknown@example.com"}`)

	require.Equal(t, http.StatusOK, known.Code)
	require.Equal(t, http.StatusOK, unknown.Code)
	assert.Equal(t, known.Body.String(), unknown.Body.String())
	assert.NotContains(t, known.Body.String(), s.resetToken(t))

	rec := s.do(t, http.MethodPost, "/v1/auth/forgot-password", "", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestResetPasswordHandler(t *testing.T) {
	s := newTestServer(t)
	oldToken := s.signup(t, "reset@example.com", "abcd")

	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/v1/auth/forgot-password", "", `{"email":"reset@example.com"}`).Code)
	raw := s.resetToken(t)

	rec := s.do(t, http.MethodPatch, "/v1/auth/reset-password/"+raw, "", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	s.clock.t = s.clock.t.Add(time.Minute)
	rec = s.do(t, http.MethodPatch, "/v1/auth/reset-password/"+raw, "", `{"password":"wxyz"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	newToken := decode[handlers.AuthResponse](t, rec).SessionToken

	rec = s.do(t, http.MethodGet, "/v1/users/me", oldToken, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = s.do(t, http.MethodGet, "/v1/users/me", newToken, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	reused := s.do(t, http.MethodPatch, "/v1/auth/reset-password/"+raw, "", `{"password":"lmno"}`)
	assert.Equal(t, http.StatusBadRequest, reused.Code)

	rec = s.do(t, http.MethodPost, "/v1/auth/login", "", `{"email":"reset@example.com","password":"wxyz"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	// an expired token gets the same answer as an unknown one
	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/v1/auth/forgot-password", "", `{"email":"reset@example.com"}`).Code)
	raw = s.resetToken(t)
	s.clock.t = s.clock.t.Add(11 * time.Minute)
	expired := s.do(t, http.MethodPatch, "/v1/auth/reset-password/"+raw, "", `{"password":"lmno"}`)
	assert.Equal(t, http.StatusBadRequest, expired.Code)
	assert.Equal(t, reused.Body.String(), expired.Body.String())
}

func TestSessionHandlers(t *testing.T) {
	s := newTestServer(t)
	first := s.signup(t, "sessions@example.com", "abcd")

	rec := s.do(t, http.MethodPost, "/v1/auth/login", "", `{"email":"sessions@example.com","password":"abcd"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	second := decode[handlers.AuthResponse](t, rec).SessionToken

	rec = s.do(t, http.MethodGet, "/v1/sessions", second, "")
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[handlers.SessionListResponse](t, rec)
	require.Len(t, list.Data, 2)
	assert.Equal(t, int64(2), list.Pagination.Total)

	var currentID uint
	for _, d := range list.Data {
		if d.IsCurrent {
			currentID = d.ID
		}
	}
	require.NotZero(t, currentID)

	rec = s.do(t, http.MethodDelete, fmt.Sprintf("/v1/sessions/%d", currentID), second, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodDelete, "/v1/sessions/9999", second, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodDelete, "/v1/sessions", second, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decode[handlers.DeleteAllSessionsResponse](t, rec).DeletedCount)

	rec = s.do(t, http.MethodGet, "/v1/users/me", first, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodGet, "/v1/event-logs", second, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var types []string
	for _, e := range decode[handlers.EventLogListResponse](t, rec).Data {
		types = append(types, e.Type)
	}
	assert.Contains(t, types, "SIGNUP")
	assert.Contains(t, types, "LOGIN_SUCCEEDED")
}
