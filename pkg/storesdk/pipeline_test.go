package storesdk

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func seedTokens(t *testing.T, c *Client, access, refresh string) {
	t.Helper()
	require.NoError(t, c.tokens.save(TokenPair{Access: access, Refresh: refresh}))
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestSingleFlightRefresh(t *testing.T) {
	t.Parallel()

	const concurrency = 8

	var (
		refreshCalls  atomic.Int64
		rejected      atomic.Int64
		allRejected   = make(chan struct{})
		rejectedOnce  sync.Once
		retriedTokens sync.Map
	)

	mux := http.NewServeMux()
	mux.HandleFunc("/products/1/", func(w http.ResponseWriter, r *http.Request) {
		switch r.Header.Get("Authorization") {
		case "Bearer A2":
			retriedTokens.Store(r.Header.Get("X-Request-ID"), true)
			writeJSON(t, w, http.StatusOK, map[string]any{"id": 1, "name": "lamp", "price": "10.00"})
		default:
			if rejected.Add(1) == concurrency {
				rejectedOnce.Do(func() { close(allRejected) })
			}
			writeJSON(t, w, http.StatusUnauthorized, map[string]string{"detail": "token expired"})
		}
	})
	mux.HandleFunc("/users/token/refresh/", func(w http.ResponseWriter, r *http.Request) {
		// Hold the refresh until every request has met its 401, so all
		// of them are in flight against the same expired token.
		<-allRejected
		refreshCalls.Add(1)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "R1", body["refresh"])

		// Deliberately omits the refresh token.
		writeJSON(t, w, http.StatusOK, map[string]string{"access": "A2"})
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := New(srv.URL)
	seedTokens(t, client, "A1", "R1")

	var wg sync.WaitGroup
	errs := make([]error, concurrency)
	for i := 0; i < concurrency; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = client.Product(context.Background(), 1)
		}()
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "call %d", i)
	}

	require.Equal(t, int64(1), refreshCalls.Load(), "expected exactly one refresh call")

	// The refresh response omitted the refresh token, so R1 is carried over.
	pair, held := client.Tokens()
	require.True(t, held)
	require.Equal(t, "A2", pair.Access)
	require.Equal(t, "R1", pair.Refresh)

	replayed := 0
	retriedTokens.Range(func(_, _ any) bool { replayed++; return true })
	require.Equal(t, concurrency, replayed, "every call should replay with the new token")
}

func TestRefreshFailureRejectsAllQueuedCalls(t *testing.T) {
	t.Parallel()

	const concurrency = 5

	var (
		refreshCalls atomic.Int64
		rejected     atomic.Int64
		allRejected  = make(chan struct{})
		rejectedOnce sync.Once
	)

	mux := http.NewServeMux()
	mux.HandleFunc("/orders/", func(w http.ResponseWriter, r *http.Request) {
		if rejected.Add(1) == concurrency {
			rejectedOnce.Do(func() { close(allRejected) })
		}
		writeJSON(t, w, http.StatusUnauthorized, map[string]string{"detail": "token expired"})
	})
	mux.HandleFunc("/users/token/refresh/", func(w http.ResponseWriter, r *http.Request) {
		<-allRejected
		refreshCalls.Add(1)
		writeJSON(t, w, http.StatusUnauthorized, map[string]string{"detail": "refresh token revoked"})
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := New(srv.URL)
	seedTokens(t, client, "A1", "R1")

	var expiredNotifications atomic.Int64
	client.OnSessionExpired(func() { expiredNotifications.Add(1) })

	var wg sync.WaitGroup
	errs := make([]error, concurrency)
	for i := 0; i < concurrency; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = client.Orders(context.Background())
		}()
	}
	wg.Wait()

	for i, err := range errs {
		require.Error(t, err, "call %d", i)
		require.True(t, IsAuthExpired(err), "call %d: got %v", i, err)
	}

	require.Equal(t, int64(1), refreshCalls.Load())
	require.Equal(t, int64(1), expiredNotifications.Load())

	_, held := client.Tokens()
	require.False(t, held, "tokens should be cleared after a failed refresh")
	require.False(t, client.IsAuthenticated())
}

func TestUnauthorizedWithoutRefreshToken(t *testing.T) {
	t.Parallel()

	var refreshCalls atomic.Int64

	mux := http.NewServeMux()
	mux.HandleFunc("/users/profile/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusUnauthorized, map[string]string{"detail": "no credentials"})
	})
	mux.HandleFunc("/users/token/refresh/", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
		writeJSON(t, w, http.StatusOK, map[string]string{"access": "A2"})
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := New(srv.URL)

	_, err := client.Profile(context.Background())
	require.True(t, IsAuthRequired(err), "got %v", err)
	require.Zero(t, refreshCalls.Load(), "no refresh may be attempted without a refresh token")
}

func TestRefreshedTokenUsedOnRetry(t *testing.T) {
	t.Parallel()

	var sawTokens []string
	var mu sync.Mutex

	mux := http.NewServeMux()
	mux.HandleFunc("/users/profile/", func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get("Authorization")
		mu.Lock()
		sawTokens = append(sawTokens, token)
		mu.Unlock()

		if token != "Bearer A2" {
			writeJSON(t, w, http.StatusUnauthorized, map[string]string{"detail": "token expired"})
			return
		}
		writeJSON(t, w, http.StatusOK, map[string]any{"id": 1, "email": "a@b.com"})
	})
	mux.HandleFunc("/users/token/refresh/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]string{"access": "A2"})
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := New(srv.URL)
	seedTokens(t, client, "A1", "R1")

	user, err := client.Profile(context.Background())
	require.NoError(t, err)
	require.Equal(t, "a@b.com", user.Email)

	require.Equal(t, []string{"Bearer A1", "Bearer A2"}, sawTokens)

	pair, held := client.Tokens()
	require.True(t, held)
	require.Equal(t, TokenPair{Access: "A2", Refresh: "R1"}, pair)
}

func TestHTTPErrorMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		status     int
		body       any
		wantedMsg  string
		wantedKind ErrorKind
	}{
		{
			name:       "detail envelope",
			status:     http.StatusNotFound,
			body:       map[string]string{"detail": "product not found"},
			wantedMsg:  "product not found",
			wantedKind: KindHTTP,
		},
		{
			name:       "error envelope",
			status:     http.StatusBadRequest,
			body:       map[string]string{"error": "invalid ordering field"},
			wantedMsg:  "invalid ordering field",
			wantedKind: KindHTTP,
		},
		{
			name:       "opaque body",
			status:     http.StatusInternalServerError,
			body:       "boom",
			wantedMsg:  "HTTP 500: Internal Server Error",
			wantedKind: KindHTTP,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				writeJSON(t, w, tc.status, tc.body)
			}))
			defer srv.Close()

			client := New(srv.URL)
			_, err := client.Product(context.Background(), 7)

			apiErr, ok := AsAPIError(err)
			require.True(t, ok, "got %v", err)
			require.Equal(t, tc.wantedKind, apiErr.Kind)
			require.Equal(t, tc.status, apiErr.Status)
			require.Equal(t, tc.wantedMsg, apiErr.Message)
		})
	}
}

func TestNetworkErrorMapping(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	client := New(srv.URL)
	_, err := client.Product(context.Background(), 1)

	apiErr, ok := AsAPIError(err)
	require.True(t, ok, "got %v", err)
	require.Equal(t, KindNetwork, apiErr.Kind)
	require.Error(t, apiErr.Err)
}

func TestRetryAfterRefreshStillUnauthorized(t *testing.T) {
	t.Parallel()

	var profileCalls atomic.Int64

	mux := http.NewServeMux()
	mux.HandleFunc("/users/profile/", func(w http.ResponseWriter, r *http.Request) {
		profileCalls.Add(1)
		writeJSON(t, w, http.StatusUnauthorized, map[string]string{"detail": "account disabled"})
	})
	mux.HandleFunc("/users/token/refresh/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]string{"access": "A2"})
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := New(srv.URL)
	seedTokens(t, client, "A1", "R1")

	_, err := client.Profile(context.Background())

	// A second 401 after a successful refresh is not retried again.
	apiErr, ok := AsAPIError(err)
	require.True(t, ok, "got %v", err)
	require.Equal(t, KindHTTP, apiErr.Kind)
	require.Equal(t, http.StatusUnauthorized, apiErr.Status)
	require.Equal(t, int64(2), profileCalls.Load())
}

func TestRequestIDAttached(t *testing.T) {
	t.Parallel()

	var requestID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID = r.Header.Get("X-Request-ID")
		writeJSON(t, w, http.StatusOK, map[string]any{"id": 1})
	}))
	defer srv.Close()

	client := New(srv.URL)
	_, err := client.Product(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, requestID, 26, "expected a ULID request id, got %q", requestID)
}

func TestErrorFormatting(t *testing.T) {
	t.Parallel()

	err := &APIError{Kind: KindHTTP, Status: 404, Message: "not found"}
	require.Equal(t, "http_error (HTTP 404): not found", err.Error())

	wrapped := fmt.Errorf("fetch product: %w", err)
	got, ok := AsAPIError(wrapped)
	require.True(t, ok)
	require.Equal(t, KindHTTP, got.Kind)
}
