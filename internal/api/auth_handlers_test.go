package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	h := newHarness(t)

	res := h.request(http.MethodPost, "/auth/register", map[string]string{
		"name": "Ann Test", "email": "ann@example.com", "password": "secret123",
	}, "")
	require.Equal(t, http.StatusCreated, res.Code)
	assert.Equal(t, "Successfully registered a user!", res.body["message"])
	assert.Equal(t, "ann@example.com", res.data()["email"])
	assert.NotContains(t, res.data(), "password")

	res = h.request(http.MethodPost, "/auth/register", map[string]string{
		"name": "Ann Again", "email": "ann@example.com", "password": "other",
	}, "")
	assert.Equal(t, http.StatusConflict, res.Code)
	assert.Equal(t, "Email in use", res.data()["message"])
}

func TestRegisterValidation(t *testing.T) {
	tests := []struct {
		name string
		body map[string]string
		want string
	}{
		{"short name", map[string]string{"name": "Al", "email": "a@b.co", "password": "x"}, `"name" length must be at least 3 characters long`},
		{"bad email", map[string]string{"name": "Alice", "email": "nope", "password": "x"}, `"email" must be a valid email`},
		{"no password", map[string]string{"name": "Alice", "email": "a@b.co"}, `"password" is required`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			res := h.request(http.MethodPost, "/auth/register", tt.body, "")
			assert.Equal(t, http.StatusBadRequest, res.Code)
			assert.Equal(t, tt.want, res.data()["message"])
		})
	}
}

func TestLoginSetsSessionCookies(t *testing.T) {
	h := newHarness(t)
	h.signIn("ann@example.com")

	res := h.request(http.MethodPost, "/auth/login", map[string]string{
		"email": "ann@example.com", "password": "secret123",
	}, "")
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, "Successfully logged in an user!", res.body["message"])
	assert.NotEmpty(t, res.data()["accessToken"])

	for _, name := range []string{sessionCookie, refreshTokenCookie} {
		c := res.cookie(name)
		require.NotNil(t, c, name)
		assert.True(t, c.HttpOnly)
		assert.Equal(t, "/", c.Path)
		assert.NotEmpty(t, c.Value)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	h := newHarness(t)
	h.signIn("ann@example.com")

	res := h.request(http.MethodPost, "/auth/login", map[string]string{
		"email": "ann@example.com", "password": "wrong",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, res.Code)
	assert.Equal(t, "Invalid credentials!", res.data()["message"])
}

func TestRefreshRotatesSession(t *testing.T) {
	h := newHarness(t)
	h.signIn("ann@example.com")
	login := h.request(http.MethodPost, "/auth/login", map[string]string{
		"email": "ann@example.com", "password": "secret123",
	}, "")
	require.Equal(t, http.StatusOK, login.Code)

	refresh := func() response {
		req := httptest.NewRequest(http.MethodPost, "/auth/refresh", nil)
		req.AddCookie(login.cookie(sessionCookie))
		req.AddCookie(login.cookie(refreshTokenCookie))
		return h.do(req)
	}

	res := refresh()
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, "Successfully refreshed a session!", res.body["message"])
	assert.NotEqual(t, login.data()["accessToken"], res.data()["accessToken"])
	assert.NotEqual(t, login.cookie(sessionCookie).Value, res.cookie(sessionCookie).Value)

	// the old pair has been redeemed
	res = refresh()
	assert.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestRefreshRequiresCookies(t *testing.T) {
	h := newHarness(t)
	res := h.do(httptest.NewRequest(http.MethodPost, "/auth/refresh", nil))
	assert.Equal(t, http.StatusUnauthorized, res.Code)
	assert.Equal(t, "Session ID or Refresh Token missing!", res.data()["message"])
}

func TestLogout(t *testing.T) {
	h := newHarness(t)
	h.signIn("ann@example.com")
	login := h.request(http.MethodPost, "/auth/login", map[string]string{
		"email": "ann@example.com", "password": "secret123",
	}, "")
	token := login.data()["accessToken"].(string)

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.AddCookie(login.cookie(sessionCookie))
	res := h.do(req)
	assert.Equal(t, http.StatusNoContent, res.Code)
	assert.Equal(t, -1, res.cookie(sessionCookie).MaxAge)
	assert.Equal(t, -1, res.cookie(refreshTokenCookie).MaxAge)

	res = h.request(http.MethodGet, "/contacts", nil, token)
	assert.Equal(t, http.StatusUnauthorized, res.Code)

	// without a session cookie logout still succeeds
	res = h.do(httptest.NewRequest(http.MethodPost, "/auth/logout", nil))
	assert.Equal(t, http.StatusNoContent, res.Code)
}

func TestSendResetEmail(t *testing.T) {
	h := newHarness(t)
	h.signIn("ann@example.com")

	res := h.request(http.MethodPost, "/auth/send-reset-email", map[string]string{"email": "ann@example.com"}, "")
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, "Reset password email has been successfully sent.", res.body["message"])
	assert.Empty(t, res.data())
	assert.Len(t, h.mailer.Sent(), 1)

	res = h.request(http.MethodPost, "/auth/send-reset-email", map[string]string{"email": "ghost@example.com"}, "")
	assert.Equal(t, http.StatusOK, res.Code)
	assert.Len(t, h.mailer.Sent(), 1)

	h.mailer.Err = errors.New("smtp down")
	res = h.request(http.MethodPost, "/auth/send-reset-email", map[string]string{"email": "ann@example.com"}, "")
	assert.Equal(t, http.StatusInternalServerError, res.Code)
	assert.Equal(t, "Failed to send the email, please try again later.", res.data()["message"])
}

func TestResetPasswordRejectsBadToken(t *testing.T) {
	h := newHarness(t)
	res := h.request(http.MethodPost, "/auth/reset-pwd", map[string]string{
		"token": "garbage", "password": "new-secret",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, res.Code)
	assert.Equal(t, "Token is expired or invalid.", res.data()["message"])
}
