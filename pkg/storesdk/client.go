package storesdk

import (
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"
)

// Client is a client for the storefront REST API. It owns the stored token
// pair and transparently recovers from access-token expiry: concurrent
// requests that hit an expired token are serialized behind a single refresh
// call and replayed with the new token.
//
// A Client is safe for concurrent use.
type Client struct {
	baseURL string
	httpc   *http.Client
	log     *slog.Logger
	tokens  *tokenSource
	limiter *rate.Limiter
	metrics *clientMetrics

	// refresh single-flight state. refreshing is flipped under refreshMu
	// before any network I/O; callers that find it set park on a waiter
	// channel instead of starting a second refresh.
	refreshMu  sync.Mutex
	refreshing bool
	waiters    []chan refreshOutcome

	expiredMu   sync.Mutex
	expiredSubs []func()
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(httpc *http.Client) Option {
	return func(c *Client) { c.httpc = httpc }
}

// WithTokenStore sets the durable token store. Defaults to an in-memory
// store that forgets tokens on exit.
func WithTokenStore(store TokenStore) Option {
	return func(c *Client) { c.tokens = newTokenSource(store) }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithRateLimit caps outgoing requests at rps with the given burst.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(rps), burst) }
}

// WithMetricsRegistry registers the client's counters on reg instead of a
// private registry.
func WithMetricsRegistry(reg prometheus.Registerer) Option {
	return func(c *Client) { c.metrics = newClientMetrics(reg) }
}

// New creates a Client for the API at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpc: &http.Client{
			Timeout: 15 * time.Second,
		},
		log: slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.tokens == nil {
		c.tokens = newTokenSource(NewMemoryTokenStore())
	}
	if c.metrics == nil {
		c.metrics = newClientMetrics(prometheus.NewRegistry())
	}

	return c
}

// IsAuthenticated reports whether an access token is currently held. It
// does not verify the token against the server.
func (c *Client) IsAuthenticated() bool {
	return c.tokens.access() != ""
}

// Tokens returns the currently held token pair, if any.
func (c *Client) Tokens() (TokenPair, bool) {
	return c.tokens.current()
}

// OnSessionExpired registers fn to be called whenever a token refresh fails
// and the stored tokens are cleared. Collaborators holding cached identity
// state use this to drop it.
func (c *Client) OnSessionExpired(fn func()) {
	c.expiredMu.Lock()
	defer c.expiredMu.Unlock()
	c.expiredSubs = append(c.expiredSubs, fn)
}

func (c *Client) notifySessionExpired() {
	c.expiredMu.Lock()
	subs := make([]func(), len(c.expiredSubs))
	copy(subs, c.expiredSubs)
	c.expiredMu.Unlock()

	for _, fn := range subs {
		fn()
	}
}
