package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/forkful/backend/internal/testhelpers"
)

func TestRegisterEndpoint(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/v1/auth/register/", map[string]string{
		"username":  "alice",
		"email":     "alice@example.com",
		"password":  "s3cure-pass",
		"password2": "s3cure-pass",
		"bio":       "Home cook",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, "User registered successfully!", body["message"])
	user := body["user"].(map[string]interface{})
	assert.Equal(t, "alice", user["username"])
	assert.Equal(t, "Home cook", user["bio"])
	assert.NotContains(t, user, "password")

	w = s.do(t, http.MethodPost, "/api/v1/auth/register/", map[string]string{
		"username":  "alice2",
		"email":     "ALICE@example.com",
		"password":  "s3cure-pass",
		"password2": "s3cure-pass",
	}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []interface{}{"A user with this email already exists."}, fields(t, decode(t, w))["email"])

	w = s.do(t, http.MethodPost, "/api/v1/auth/register/", map[string]string{
		"username":  "bob",
		"email":     "bob@example.com",
		"password":  "s3cure-pass",
		"password2": "other-pass",
	}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, fields(t, decode(t, w))["password"], "Password fields didn't match.")

	w = s.do(t, http.MethodPost, "/api/v1/auth/register/", map[string]string{"username": "bob"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	f := fields(t, decode(t, w))
	assert.Equal(t, []interface{}{"This field is required."}, f["email"])
	assert.Equal(t, []interface{}{"This field is required."}, f["password"])
}

func TestLoginAndRefreshEndpoints(t *testing.T) {
	s := newTestServer(t)
	testhelpers.CreateUser(t, s.db, "alice")

	w := s.do(t, http.MethodPost, "/api/v1/auth/login/", map[string]string{
		"username": "alice",
		"password": testhelpers.TestPassword,
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	access, _ := body["access"].(string)
	refresh, _ := body["refresh"].(string)
	assert.NotEmpty(t, access)
	assert.NotEmpty(t, refresh)
	assert.Equal(t, "alice", body["user"].(map[string]interface{})["username"])

	w = s.do(t, http.MethodPost, "/api/v1/auth/login/", map[string]string{
		"email":    "alice@example.com",
		"password": testhelpers.TestPassword,
	}, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/auth/login/", map[string]string{
		"username": "alice",
		"password": "wrong-password",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "No active account found with the given credentials", decode(t, w)["error"])

	w = s.do(t, http.MethodPost, "/api/v1/auth/token/refresh/", map[string]string{"refresh": refresh}, "")
	require.Equal(t, http.StatusOK, w.Code)
	newAccess, _ := decode(t, w)["access"].(string)
	assert.NotEmpty(t, newAccess)

	w = s.do(t, http.MethodGet, "/api/v1/users/profile/", nil, newAccess)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/auth/token/refresh/", map[string]string{"refresh": access}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Token is invalid or expired", decode(t, w)["error"])

	w = s.do(t, http.MethodGet, "/api/v1/users/profile/", nil, refresh)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
