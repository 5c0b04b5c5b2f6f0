package auth_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jalsoochak/go-admin-console/api"
	"github.com/jalsoochak/go-admin-console/auth"
	errs "github.com/jalsoochak/go-admin-console/internal/errors"
	"github.com/jalsoochak/go-admin-console/token/store/repofake"
	"github.com/jalsoochak/go-admin-console/users"
)

const (
	testUserEmail    = "asha.devi@jalsoochak.gov.in"
	testUserPassword = "password123"
	testUserName     = "Asha Devi"
	testUserPhone    = "+91-9876543210"
	testTenantID     = "tenant-rj"
	testPersonID     = "person-7"
)

// testFixture wires a SessionManager against a fake authentication server.
type testFixture struct {
	repo    *repofake.FakeTokenRepo
	manager *auth.SessionManager
	server  *httptest.Server

	role         string // role asserted in token responses
	idToken      string // identity token returned by login/refresh; defaults to a valid one
	logoutStatus int

	loginCalls   int32
	refreshCalls int32
	logoutCalls  int32
}

func identityToken(t *testing.T) string {
	t.Helper()
	header, err := json.Marshal(map[string]any{"alg": "none", "typ": "JWT"})
	require.NoError(t, err)
	claims, err := json.Marshal(map[string]any{
		"sub":                "user-42",
		"email":              testUserEmail,
		"name":               testUserName,
		"preferred_username": testUserPhone,
	})
	require.NoError(t, err)
	return base64.RawURLEncoding.EncodeToString(header) + "." +
		base64.RawURLEncoding.EncodeToString(claims) + "."
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	f := &testFixture{
		repo:         repofake.NewFakeTokenRepo(),
		role:         string(users.RoleStateAdmin),
		logoutStatus: http.StatusNoContent,
	}
	f.idToken = identityToken(t)

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&f.loginCalls, 1)
		var req api.LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.Email != testUserEmail || req.Password != testUserPassword {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "invalid credentials"})
			return
		}
		writeJSON(w, http.StatusOK, f.tokenResponse("access-1", "good-1"))
	})
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&f.refreshCalls, 1)
		var req api.RefreshRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if !strings.HasPrefix(req.RefreshToken, "good-") {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "invalid refresh token"})
			return
		}
		writeJSON(w, http.StatusOK, f.tokenResponse("access-rotated", "good-rotated"))
	})
	mux.HandleFunc("/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&f.logoutCalls, 1)
		w.WriteHeader(f.logoutStatus)
	})

	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)

	manager, err := auth.NewSessionManager(api.NewAuthClient(f.server.URL), f.repo)
	require.NoError(t, err)
	f.manager = manager
	return f
}

func (f *testFixture) tokenResponse(accessToken, refreshToken string) api.TokenResponse {
	return api.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		IDToken:      f.idToken,
		Role:         f.role,
		TenantID:     testTenantID,
		PersonID:     testPersonID,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestLoginRedirectsByRole(t *testing.T) {
	tests := []struct {
		role     string
		redirect string
	}{
		{string(users.RoleSuperAdmin), "/super-admin"},
		{string(users.RoleStateAdmin), "/state-admin"},
		{string(users.RoleBusinessUser), "/"},
		{"unknown-role", "/"},
	}

	for _, tc := range tests {
		t.Run(tc.role, func(t *testing.T) {
			f := setupTestFixture(t)
			f.role = tc.role

			redirect, err := f.manager.Login(context.Background(), testUserEmail, testUserPassword)
			require.NoError(t, err)
			require.Equal(t, tc.redirect, redirect)

			sess := f.manager.Session()
			require.True(t, sess.IsAuthenticated())
			require.Equal(t, users.RoleType(tc.role), sess.User.Role)
		})
	}
}

func TestLoginPopulatesSessionAndPersistsPair(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.manager.Login(context.Background(), testUserEmail, testUserPassword)
	require.NoError(t, err)

	sess := f.manager.Session()
	require.True(t, sess.IsAuthenticated())
	require.Equal(t, "access-1", sess.AccessToken)
	require.Equal(t, "good-1", sess.RefreshToken)
	require.Equal(t, testUserEmail, sess.User.Email)
	require.Equal(t, testUserName, sess.User.Name)
	require.Equal(t, testUserPhone, sess.User.PhoneNumber)
	require.Equal(t, testTenantID, sess.User.TenantID)
	require.Equal(t, testPersonID, sess.User.PersonID)
	require.False(t, sess.SessionExpired)
	require.Empty(t, sess.Error)

	pair := f.repo.Pair()
	require.NotNil(t, pair)
	require.Equal(t, "access-1", pair.AccessToken)
	require.Equal(t, "good-1", pair.RefreshToken)
}

func TestLoginFailureClearsSession(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.manager.Login(context.Background(), testUserEmail, "wrong-password")
	require.Error(t, err)

	sess := f.manager.Session()
	require.False(t, sess.IsAuthenticated())
	require.Nil(t, sess.User)
	require.Equal(t, "invalid credentials", sess.Error)
	require.Nil(t, f.repo.Pair())
}

func TestLoginMalformedIdentityToken(t *testing.T) {
	f := setupTestFixture(t)
	f.idToken = "not-a-jwt"

	_, err := f.manager.Login(context.Background(), testUserEmail, testUserPassword)
	require.Error(t, err)
	require.True(t, errs.Is(err, errs.ErrIdentityDecode))

	// No partial user data lingers.
	sess := f.manager.Session()
	require.False(t, sess.IsAuthenticated())
	require.Empty(t, sess.AccessToken)
	require.Empty(t, sess.RefreshToken)
	require.Nil(t, sess.User)
	require.Equal(t, auth.IdentityDecodeMessage, sess.Error)
	require.Nil(t, f.repo.Pair())
}

func TestLogoutClearsEverything(t *testing.T) {
	f := setupTestFixture(t)
	_, err := f.manager.Login(context.Background(), testUserEmail, testUserPassword)
	require.NoError(t, err)

	f.manager.Logout(context.Background())

	sess := f.manager.Session()
	require.False(t, sess.IsAuthenticated())
	require.False(t, sess.SessionExpired)
	require.Nil(t, f.repo.Pair())
	require.Equal(t, int32(1), atomic.LoadInt32(&f.logoutCalls))
}

func TestLogoutSwallowsServerFailure(t *testing.T) {
	f := setupTestFixture(t)
	f.logoutStatus = http.StatusInternalServerError
	_, err := f.manager.Login(context.Background(), testUserEmail, testUserPassword)
	require.NoError(t, err)

	f.manager.Logout(context.Background())

	require.False(t, f.manager.Session().IsAuthenticated())
	require.Nil(t, f.repo.Pair())
}

func TestLogoutWithoutRefreshTokenSkipsNetworkCall(t *testing.T) {
	f := setupTestFixture(t)

	f.manager.Logout(context.Background())

	require.Equal(t, int32(0), atomic.LoadInt32(&f.logoutCalls))
}

func TestBootstrapWithEmptyStorage(t *testing.T) {
	f := setupTestFixture(t)

	require.True(t, f.manager.Session().IsBootstrapping)
	f.manager.Bootstrap(context.Background())

	sess := f.manager.Session()
	require.False(t, sess.IsBootstrapping)
	require.False(t, sess.IsAuthenticated())
	require.Equal(t, int32(0), atomic.LoadInt32(&f.refreshCalls))
	require.Equal(t, int32(0), atomic.LoadInt32(&f.loginCalls))
}

func TestBootstrapRestoresSession(t *testing.T) {
	f := setupTestFixture(t)
	require.NoError(t, f.repo.Save("stale-access", "good-stored"))

	f.manager.Bootstrap(context.Background())

	sess := f.manager.Session()
	require.False(t, sess.IsBootstrapping)
	require.True(t, sess.IsAuthenticated())
	require.Equal(t, "access-rotated", sess.AccessToken)
	require.Equal(t, testUserEmail, sess.User.Email)
	require.Equal(t, int32(1), atomic.LoadInt32(&f.refreshCalls))

	pair := f.repo.Pair()
	require.NotNil(t, pair)
	require.Equal(t, "good-rotated", pair.RefreshToken)
}

func TestBootstrapRefreshFailureLeavesUnauthenticated(t *testing.T) {
	f := setupTestFixture(t)
	require.NoError(t, f.repo.Save("stale-access", "revoked-token"))

	f.manager.Bootstrap(context.Background())

	sess := f.manager.Session()
	require.False(t, sess.IsBootstrapping)
	require.False(t, sess.IsAuthenticated())
	// A failed silent restore is "never logged in", not "session expired".
	require.False(t, sess.SessionExpired)
	require.Nil(t, f.repo.Pair())
}

func TestBootstrapRunsOnce(t *testing.T) {
	f := setupTestFixture(t)
	require.NoError(t, f.repo.Save("stale-access", "good-stored"))

	f.manager.Bootstrap(context.Background())
	f.manager.Bootstrap(context.Background())

	require.Equal(t, int32(1), atomic.LoadInt32(&f.refreshCalls))
}

func TestRefreshWithoutTokenFailsImmediately(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.manager.RefreshAccessToken(context.Background())
	require.True(t, errs.Is(err, errs.ErrRefreshTokenUnavailable))
	require.Equal(t, int32(0), atomic.LoadInt32(&f.refreshCalls))
}

func TestRefreshRotatesPair(t *testing.T) {
	f := setupTestFixture(t)
	_, err := f.manager.Login(context.Background(), testUserEmail, testUserPassword)
	require.NoError(t, err)

	accessToken, err := f.manager.RefreshAccessToken(context.Background())
	require.NoError(t, err)
	require.Equal(t, "access-rotated", accessToken)

	sess := f.manager.Session()
	require.True(t, sess.IsAuthenticated())
	require.Equal(t, "good-rotated", sess.RefreshToken)

	pair := f.repo.Pair()
	require.NotNil(t, pair)
	require.Equal(t, "access-rotated", pair.AccessToken)
	require.Equal(t, "good-rotated", pair.RefreshToken)
}

func TestRefreshFailureClearsSessionButNotExpiredFlag(t *testing.T) {
	f := setupTestFixture(t)
	_, err := f.manager.Login(context.Background(), testUserEmail, testUserPassword)
	require.NoError(t, err)
	require.NoError(t, f.manager.SetTokens("access-1", "revoked-token"))

	_, err = f.manager.RefreshAccessToken(context.Background())
	require.Error(t, err)

	sess := f.manager.Session()
	require.False(t, sess.IsAuthenticated())
	require.Empty(t, sess.AccessToken)
	require.Empty(t, sess.RefreshToken)
	// Escalation to an expired session is the pipeline's call, not the manager's.
	require.False(t, sess.SessionExpired)
	require.Nil(t, f.repo.Pair())
}

func TestSetSessionExpiredIsIdempotent(t *testing.T) {
	f := setupTestFixture(t)
	_, err := f.manager.Login(context.Background(), testUserEmail, testUserPassword)
	require.NoError(t, err)

	f.manager.SetSessionExpired()
	f.manager.SetSessionExpired()

	sess := f.manager.Session()
	require.True(t, sess.SessionExpired)
	require.False(t, sess.IsAuthenticated())
	require.Equal(t, auth.SessionExpiredMessage, sess.Error)
	require.Nil(t, f.repo.Pair())
}

func TestFreshLoginClearsExpiredFlag(t *testing.T) {
	f := setupTestFixture(t)
	f.manager.SetSessionExpired()

	_, err := f.manager.Login(context.Background(), testUserEmail, testUserPassword)
	require.NoError(t, err)

	sess := f.manager.Session()
	require.True(t, sess.IsAuthenticated())
	require.False(t, sess.SessionExpired)
	require.Empty(t, sess.Error)
}

func TestSetTokensPersistsWithoutTouchingUser(t *testing.T) {
	f := setupTestFixture(t)

	require.NoError(t, f.manager.SetTokens("oob-access", "oob-refresh"))

	sess := f.manager.Session()
	require.Equal(t, "oob-access", sess.AccessToken)
	require.Equal(t, "oob-refresh", sess.RefreshToken)
	require.Nil(t, sess.User)
	require.False(t, sess.IsAuthenticated())

	pair := f.repo.Pair()
	require.NotNil(t, pair)
	require.Equal(t, "oob-access", pair.AccessToken)
	require.Equal(t, "oob-refresh", pair.RefreshToken)
}
