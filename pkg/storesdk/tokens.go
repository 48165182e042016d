package storesdk

import (
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// expiryBuffer refreshes slightly before the advertised expiry so a request
// built "just in time" doesn't hit a guaranteed 401.
const expiryBuffer = 30 * time.Second

// TokenPair is the access/refresh credential pair issued at login, register
// or refresh. The access token is short-lived, the refresh token longer-lived.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// TokenStore persists a TokenPair across restarts. Implementations must
// treat malformed stored data as absent rather than returning an error.
type TokenStore interface {
	// Load returns the stored pair, or ok=false when none is stored.
	Load() (pair TokenPair, ok bool)

	// Save persists the pair, replacing any previous one.
	Save(pair TokenPair) error

	// Clear removes the stored pair.
	Clear() error
}

// MemoryTokenStore is a TokenStore that lives only for the process lifetime.
// Useful for tests and short-lived tools.
type MemoryTokenStore struct {
	mu   sync.Mutex
	pair TokenPair
	set  bool
}

func NewMemoryTokenStore() *MemoryTokenStore { return &MemoryTokenStore{} }

func (m *MemoryTokenStore) Load() (TokenPair, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pair, m.set
}

func (m *MemoryTokenStore) Save(pair TokenPair) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pair = pair
	m.set = true
	return nil
}

func (m *MemoryTokenStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pair = TokenPair{}
	m.set = false
	return nil
}

// tokenSource caches the current pair in memory and writes every change
// through to the backing TokenStore. It is the single mutable shared
// resource of the client; all access goes through the mutex.
type tokenSource struct {
	mu    sync.Mutex
	store TokenStore
	pair  TokenPair
	held  bool
}

func newTokenSource(store TokenStore) *tokenSource {
	ts := &tokenSource{store: store}
	if pair, ok := store.Load(); ok {
		ts.pair = pair
		ts.held = true
	}
	return ts
}

func (t *tokenSource) current() (TokenPair, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pair, t.held
}

func (t *tokenSource) access() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.held {
		return ""
	}
	return t.pair.Access
}

// save persists a refreshed pair. An empty refresh token in the new pair
// keeps the previously held one (the refresh endpoint may omit it).
func (t *tokenSource) save(pair TokenPair) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if pair.Refresh == "" {
		pair.Refresh = t.pair.Refresh
	}
	t.pair = pair
	t.held = true
	return t.store.Save(pair)
}

func (t *tokenSource) clear() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pair = TokenPair{}
	t.held = false
	return t.store.Clear()
}

// accessExpired reports whether the held access token is a JWT whose exp
// claim has passed (with a small buffer). Opaque or malformed tokens report
// false and are left to the reactive 401 path.
func accessExpired(access string, now time.Time) bool {
	if access == "" {
		return false
	}

	claims := jwt.RegisteredClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(access, &claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return now.Add(expiryBuffer).After(claims.ExpiresAt.Time)
}
