package token_test

import (
	"encoding/base64"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jalsoochak/go-admin-console/token"
)

func makeToken(t *testing.T, claims map[string]any) string {
	t.Helper()
	header := map[string]any{"alg": "none", "typ": "JWT"}
	return segment(t, header) + "." + segment(t, claims) + "."
}

func segment(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return base64.RawURLEncoding.EncodeToString(b)
}

func TestDecodeIdentityMapsClaims(t *testing.T) {
	raw := makeToken(t, map[string]any{
		"sub":                "user-42",
		"email":              "asha.devi@jalsoochak.gov.in",
		"name":               "Asha Devi",
		"preferred_username": "+91-9876543210",
	})

	user, err := token.DecodeIdentity(raw)
	require.NoError(t, err)
	require.Equal(t, "user-42", user.ID)
	require.Equal(t, "asha.devi@jalsoochak.gov.in", user.Email)
	require.Equal(t, "Asha Devi", user.Name)
	require.Equal(t, "+91-9876543210", user.PhoneNumber)
}

func TestDecodeIdentityMissingClaims(t *testing.T) {
	raw := makeToken(t, map[string]any{"sub": "user-42"})

	user, err := token.DecodeIdentity(raw)
	require.NoError(t, err)
	require.Equal(t, "user-42", user.ID)
	require.Empty(t, user.Email)
	require.Empty(t, user.Name)
	require.Empty(t, user.PhoneNumber)
}

func TestDecodeIdentityMalformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"whitespace", "   "},
		{"missing segments", "onlyonesegment"},
		{"two segments", "a.b"},
		{"invalid base64", "!!!." + segment(t, map[string]any{"sub": "x"}) + "."},
		{"invalid json payload", segment(t, map[string]any{"alg": "none"}) + "." + base64.RawURLEncoding.EncodeToString([]byte("not-json")) + "."},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			user, err := token.DecodeIdentity(tc.raw)
			require.Error(t, err)
			require.Nil(t, user)
		})
	}
}

func TestIsExpired(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	token.NowTimeFunc = func() time.Time { return now }
	defer func() { token.NowTimeFunc = time.Now }()

	require.False(t, token.IsExpired(makeToken(t, map[string]any{"exp": now.Add(time.Hour).Unix()})))
	require.True(t, token.IsExpired(makeToken(t, map[string]any{"exp": now.Add(-time.Hour).Unix()})))
}

func TestIsExpiredFailsClosed(t *testing.T) {
	// No exp claim, or an unparseable token, counts as expired.
	require.True(t, token.IsExpired(makeToken(t, map[string]any{"sub": "user-42"})))
	require.True(t, token.IsExpired("garbage"))
	require.True(t, token.IsExpired(""))
}
