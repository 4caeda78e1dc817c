package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSignupAndDuplicate(t *testing.T) {
	env := newTestEnv(t)

	rec := env.request(http.MethodPost, "/auth/user/signup", "", map[string]string{
		"username": "test_user", "password": "password",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		UserID uint `json:"user_id"`
	}
	env.decode(rec, &resp)
	require.NotZero(t, resp.UserID)

	rec = env.request(http.MethodPost, "/auth/user/signup", "", map[string]string{
		"username": "test_user", "password": "password",
	})
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestLoginIssuesResolvableToken(t *testing.T) {
	env := newTestEnv(t)

	token := env.loginUser("test_user")

	sess, ok := env.Sessions.Resolve(token)
	require.True(t, ok)
	require.Equal(t, "test_user", sess.DisplayName)
	require.Equal(t, "user", sess.Role)
}

func TestLoginRejectsBadPassword(t *testing.T) {
	env := newTestEnv(t)
	env.loginUser("test_user")

	rec := env.request(http.MethodPost, "/auth/user/login", "", map[string]string{
		"username": "test_user", "password": "wrong",
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.request(http.MethodPost, "/auth/user/login", "", map[string]string{
		"username": "nobody", "password": "password",
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminLoginAndRoleGate(t *testing.T) {
	env := newTestEnv(t)

	adminToken := env.loginAdmin()
	rec := env.request(http.MethodGet, "/inventory/list", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	userToken := env.loginUser("plain_user")
	rec = env.request(http.MethodGet, "/inventory/list", userToken, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.request(http.MethodGet, "/inventory/list", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogoutIsIdempotentOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	token := env.loginUser("test_user")

	rec := env.request(http.MethodPost, "/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	_, ok := env.Sessions.Resolve(token)
	require.False(t, ok)

	rec = env.request(http.MethodPost, "/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// The dead token no longer opens protected routes.
	rec = env.request(http.MethodGet, "/cart/info", token, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
