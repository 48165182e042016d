package storesdk

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func mintJWT(t *testing.T, expiresAt time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "1",
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	})
	signed, err := token.SignedString([]byte("test-key"))
	require.NoError(t, err)
	return signed
}

func TestAccessExpired(t *testing.T) {
	t.Parallel()

	now := time.Now()

	t.Run("expired jwt", func(t *testing.T) {
		require.True(t, accessExpired(mintJWT(t, now.Add(-time.Minute)), now))
	})

	t.Run("jwt inside the buffer window", func(t *testing.T) {
		require.True(t, accessExpired(mintJWT(t, now.Add(10*time.Second)), now))
	})

	t.Run("fresh jwt", func(t *testing.T) {
		require.False(t, accessExpired(mintJWT(t, now.Add(time.Hour)), now))
	})

	t.Run("opaque token", func(t *testing.T) {
		require.False(t, accessExpired("A1", now))
	})

	t.Run("empty token", func(t *testing.T) {
		require.False(t, accessExpired("", now))
	})
}

func TestProactiveRefreshSkipsGuaranteed401(t *testing.T) {
	t.Parallel()

	fresh := mintJWT(t, time.Now().Add(time.Hour))

	mux := http.NewServeMux()
	mux.HandleFunc("/users/token/refresh/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]string{"access": fresh})
	})
	mux.HandleFunc("/users/profile/", func(w http.ResponseWriter, r *http.Request) {
		// The stale token must never reach the API.
		require.Equal(t, "Bearer "+fresh, r.Header.Get("Authorization"))
		writeJSON(t, w, http.StatusOK, map[string]any{"id": 1, "email": "a@b.com"})
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := New(srv.URL)
	seedTokens(t, client, mintJWT(t, time.Now().Add(-time.Minute)), "R1")

	_, err := client.Profile(context.Background())
	require.NoError(t, err)
}

func TestTokenSourceCarriesRefreshOver(t *testing.T) {
	t.Parallel()

	ts := newTokenSource(NewMemoryTokenStore())
	require.NoError(t, ts.save(TokenPair{Access: "A1", Refresh: "R1"}))

	// Refresh responses may omit the refresh token.
	require.NoError(t, ts.save(TokenPair{Access: "A2"}))

	pair, held := ts.current()
	require.True(t, held)
	require.Equal(t, TokenPair{Access: "A2", Refresh: "R1"}, pair)
}
