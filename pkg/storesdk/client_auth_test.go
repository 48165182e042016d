package storesdk

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoginStoresTokens(t *testing.T) {
	t.Parallel()

	var authHeader string

	mux := http.NewServeMux()
	mux.HandleFunc("/users/login/", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "a@b.com", body["email"])
		require.Equal(t, "secret", body["password"])

		writeJSON(t, w, http.StatusOK, map[string]any{
			"user":   map[string]any{"id": 1, "email": "a@b.com"},
			"tokens": map[string]string{"access": "A1", "refresh": "R1"},
		})
	})
	mux.HandleFunc("/users/profile/", func(w http.ResponseWriter, r *http.Request) {
		authHeader = r.Header.Get("Authorization")
		writeJSON(t, w, http.StatusOK, map[string]any{"id": 1, "email": "a@b.com"})
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	store := NewMemoryTokenStore()
	client := New(srv.URL, WithTokenStore(store))
	require.False(t, client.IsAuthenticated())

	resp, err := client.Login(context.Background(), "a@b.com", "secret")
	require.NoError(t, err)
	require.Equal(t, "a@b.com", resp.User.Email)
	require.True(t, client.IsAuthenticated())

	// Subsequent calls carry the issued access token.
	_, err = client.Profile(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Bearer A1", authHeader)

	// And the pair landed in the durable store.
	pair, held := store.Load()
	require.True(t, held)
	require.Equal(t, TokenPair{Access: "A1", Refresh: "R1"}, pair)
}

func TestRegisterPasswordMismatch(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request may be sent for an invalid registration")
	}))
	defer srv.Close()

	client := New(srv.URL)
	_, err := client.Register(context.Background(), RegisterRequest{
		Email:           "a@b.com",
		Username:        "ab",
		Password:        "secret",
		PasswordConfirm: "different",
	})
	require.True(t, IsValidation(err), "got %v", err)
}

func TestLogoutClearsTokensEvenOnServerError(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/users/logout/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusInternalServerError, map[string]string{"detail": "oops"})
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := New(srv.URL)
	seedTokens(t, client, "A1", "R1")

	err := client.Logout(context.Background())
	require.Error(t, err)
	require.False(t, client.IsAuthenticated(), "tokens must be cleared regardless")
}

func TestCorruptStoredTokensTreatedAsAbsent(t *testing.T) {
	t.Parallel()

	// A store whose payload cannot be decoded reports ok=false; the
	// client just starts unauthenticated.
	client := New("http://localhost:0", WithTokenStore(NewMemoryTokenStore()))
	require.False(t, client.IsAuthenticated())

	_, held := client.Tokens()
	require.False(t, held)
}
