package handler

import (
	"net/http"
	"testing"

	identityapp "github.com/groupbuy/backend/internal/application/identity"
	"github.com/groupbuy/backend/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signUpBody(username string) map[string]any {
	return map[string]any{
		"email":     username + "@campus.edu",
		"password":  "correct-horse",
		"username":  username,
		"full_name": "Alice Chen",
	}
}

func TestAuthHandler_SignUp(t *testing.T) {
	s := newServer(t)

	t.Run("creates the account and returns a session", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/auth/signup", signUpBody("alice"), "")

		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		session := testutil.DecodeData[identityapp.Session](t, w)
		assert.NotEmpty(t, session.AccessToken)
		assert.NotEmpty(t, session.RefreshToken)
		assert.Equal(t, "Bearer", session.TokenType)
		require.NotNil(t, session.User)
		assert.Equal(t, "alice", session.User.Username)
		assert.True(t, session.User.WalletBalance.IsZero())
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		body := signUpBody("alice")
		body["username"] = "alice2"
		w := s.do(t, http.MethodPost, "/auth/signup", body, "")

		testutil.AssertErrorResponse(t, w, http.StatusConflict, "CONFLICT")
	})

	t.Run("short password fails validation", func(t *testing.T) {
		body := signUpBody("bob")
		body["password"] = "short"
		w := s.do(t, http.MethodPost, "/auth/signup", body, "")

		testutil.AssertErrorResponse(t, w, http.StatusBadRequest, "VALIDATION_ERROR")
	})
}

func TestAuthHandler_SignInAndMe(t *testing.T) {
	s := newServer(t)
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/auth/signup", signUpBody("alice"), "").Code)

	w := s.do(t, http.MethodPost, "/auth/signin", map[string]any{
		"email":    "alice@campus.edu",
		"password": "correct-horse",
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	session := testutil.DecodeData[identityapp.Session](t, w)

	w = s.do(t, http.MethodGet, "/auth/me", nil, session.AccessToken)
	require.Equal(t, http.StatusOK, w.Code)
	me := testutil.DecodeData[identityapp.UserProfile](t, w)
	assert.Equal(t, "alice@campus.edu", me.Email)
	assert.Equal(t, "user", me.Role)

	w = s.do(t, http.MethodPost, "/auth/signin", map[string]any{
		"email":    "alice@campus.edu",
		"password": "wrong-password",
	}, "")
	testutil.AssertErrorResponse(t, w, http.StatusUnauthorized, "INVALID_CREDENTIALS")

	w = s.do(t, http.MethodGet, "/auth/me", nil, "")
	testutil.AssertErrorResponse(t, w, http.StatusUnauthorized, "UNAUTHORIZED")
}

func TestAuthHandler_Refresh(t *testing.T) {
	s := newServer(t)
	w := s.do(t, http.MethodPost, "/auth/signup", signUpBody("alice"), "")
	require.Equal(t, http.StatusCreated, w.Code)
	session := testutil.DecodeData[identityapp.Session](t, w)

	w = s.do(t, http.MethodPost, "/auth/refresh", map[string]any{"refresh_token": session.RefreshToken}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	rotated := testutil.DecodeData[identityapp.Session](t, w)
	assert.NotEqual(t, session.RefreshToken, rotated.RefreshToken)

	w = s.do(t, http.MethodPost, "/auth/refresh", map[string]any{"refresh_token": "not-a-token"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_SignOut(t *testing.T) {
	s := newServer(t)
	w := s.do(t, http.MethodPost, "/auth/signup", signUpBody("alice"), "")
	require.Equal(t, http.StatusCreated, w.Code)
	session := testutil.DecodeData[identityapp.Session](t, w)

	w = s.do(t, http.MethodPost, "/auth/signout", nil, session.AccessToken)
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

	w = s.do(t, http.MethodGet, "/auth/me", nil, session.AccessToken)
	testutil.AssertErrorResponse(t, w, http.StatusUnauthorized, "TOKEN_REVOKED")
}

func TestProfileHandler(t *testing.T) {
	s := newServer(t)
	alice := s.user(t, "alice", 0)

	w := s.do(t, http.MethodPut, "/profiles/me", map[string]any{"full_name": "Alice C."}, alice.Token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Alice C.", testutil.DecodeData[identityapp.UserProfile](t, w).FullName)

	w = s.do(t, http.MethodGet, "/profiles/"+alice.ID.String(), nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	public := testutil.DecodeData[map[string]any](t, w)
	assert.Equal(t, "alice", public["username"])
	assert.NotContains(t, public, "email")
	assert.NotContains(t, public, "wallet_balance")

	w = s.do(t, http.MethodGet, "/profiles/not-a-uuid", nil, "")
	testutil.AssertErrorResponse(t, w, http.StatusBadRequest, "INVALID_ID")
}
