// Package adminquery coordinates the admin list screens: debounced text
// search, immediate filter/sort/page changes, and reconciliation when the
// requested page has disappeared from under the list.
package adminquery

import (
	"context"
	"sync"
	"time"

	"github.com/Chichimokers/storefront/pkg/storesdk"
)

// State is the lifecycle of a list screen.
type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateLoaded  State = "loaded"
	StateFailed  State = "failed"
)

// DefaultDebounceInterval is how long free-text search input must stay
// quiet before a fetch fires.
const DefaultDebounceInterval = 300 * time.Millisecond

// Fetch loads one page of a filtered collection. The SDK admin list
// methods satisfy this directly.
type Fetch[T any] func(ctx context.Context, q storesdk.ListQuery) (storesdk.Page[T], error)

// Snapshot is the controller state handed to subscribers. Items and
// TotalCount are the last successfully loaded page; they survive a failed
// fetch so the caller can keep showing stale data next to the error.
type Snapshot[T any] struct {
	State      State
	Query      storesdk.ListQuery
	Items      []T
	TotalCount int64
	TotalPages int
	Err        error
}

// Controller drives one admin list. All methods are safe for concurrent
// use; fetches run on their own goroutines and responses for superseded
// queries are discarded by sequence number.
type Controller[T any] struct {
	fetch    Fetch[T]
	pageSize int
	debounce *debouncer
	onChange []func(Snapshot[T])

	mu         sync.Mutex
	query      storesdk.ListQuery
	state      State
	items      []T
	total      int64
	totalPages int
	err        error
	seq        uint64
	loadedOnce bool

	// reconcileAttempts counts automatic page corrections for the
	// current user action; capped so a racing deletion cannot loop us.
	reconcileAttempts int
}

// Option configures a Controller.
type Option[T any] func(*Controller[T])

// WithPageSize overrides the assumed server page size.
func WithPageSize[T any](size int) Option[T] {
	return func(c *Controller[T]) { c.pageSize = size }
}

// WithDebounceInterval overrides the search quiet interval.
func WithDebounceInterval[T any](d time.Duration) Option[T] {
	return func(c *Controller[T]) { c.debounce = newDebouncer(d) }
}

// WithInitialQuery seeds the query, e.g. a page number carried in from
// navigation state.
func WithInitialQuery[T any](q storesdk.ListQuery) Option[T] {
	return func(c *Controller[T]) { c.query = q }
}

// New creates a Controller over fetch. Call Load to perform the first
// fetch.
func New[T any](fetch Fetch[T], opts ...Option[T]) *Controller[T] {
	c := &Controller[T]{
		fetch:    fetch,
		pageSize: storesdk.DefaultPageSize,
		state:    StateIdle,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.debounce == nil {
		c.debounce = newDebouncer(DefaultDebounceInterval)
	}
	if c.query.Page < 1 {
		c.query.Page = 1
	}
	return c
}

// Subscribe registers fn to receive every state change.
func (c *Controller[T]) Subscribe(fn func(Snapshot[T])) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChange = append(c.onChange, fn)
}

// Snapshot returns the current state.
func (c *Controller[T]) Snapshot() Snapshot[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Load performs the initial fetch at the current query.
func (c *Controller[T]) Load(ctx context.Context) {
	c.mu.Lock()
	c.reconcileAttempts = 0
	c.fetchLocked(ctx)
}

// Reload re-fetches the current query immediately.
func (c *Controller[T]) Reload(ctx context.Context) {
	c.mu.Lock()
	c.reconcileAttempts = 0
	c.fetchLocked(ctx)
}

// SetSearch updates the free-text search. The fetch is debounced, and the
// page resets to 1 — except before the first load has completed, so a page
// supplied via navigation state is not clobbered.
func (c *Controller[T]) SetSearch(ctx context.Context, text string) {
	c.mu.Lock()
	if c.query.Search == text {
		c.mu.Unlock()
		return
	}
	c.query.Search = text
	if c.loadedOnce {
		c.query.Page = 1
	}
	c.reconcileAttempts = 0
	c.mu.Unlock()

	c.debounce.trigger(func() {
		c.mu.Lock()
		c.fetchLocked(ctx)
	})
}

// SetFilter sets one equality filter and re-fetches immediately at the
// current page. An empty value removes the filter.
func (c *Controller[T]) SetFilter(ctx context.Context, key, value string) {
	c.mu.Lock()
	if c.query.Filters == nil {
		c.query.Filters = make(map[string]string)
	}
	if value == "" {
		delete(c.query.Filters, key)
	} else {
		c.query.Filters[key] = value
	}
	c.reconcileAttempts = 0
	c.fetchLocked(ctx)
}

// SetOrdering sets the sort order and re-fetches immediately.
func (c *Controller[T]) SetOrdering(ctx context.Context, ordering string) {
	c.mu.Lock()
	c.query.Ordering = ordering
	c.reconcileAttempts = 0
	c.fetchLocked(ctx)
}

// SetPage navigates to the requested page, clamped to the known page
// range. Navigation that lands on the current page is a no-op; a request
// for an out-of-range page never reaches the server.
func (c *Controller[T]) SetPage(ctx context.Context, page int) {
	c.mu.Lock()

	if page < 1 {
		page = 1
	}
	if c.loadedOnce && c.totalPages > 0 && page > c.totalPages {
		page = c.totalPages
	}
	if page == c.query.Page {
		c.mu.Unlock()
		return
	}

	c.query.Page = page
	c.reconcileAttempts = 0
	c.fetchLocked(ctx)
}

// fetchLocked starts a fetch for the current query. It takes ownership of
// the held lock: the lock is released and subscribers are notified before
// it returns.
func (c *Controller[T]) fetchLocked(ctx context.Context) {
	c.seq++
	seq := c.seq
	c.state = StateLoading
	query := c.queryCopyLocked()
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.emit(snap)
	go c.runFetch(ctx, seq, query)
}

func (c *Controller[T]) runFetch(ctx context.Context, seq uint64, query storesdk.ListQuery) {
	page, err := c.fetch(ctx, query)

	c.mu.Lock()
	if seq != c.seq {
		// A newer query was issued while this one was in flight; its
		// result is stale and must not touch visible state.
		c.mu.Unlock()
		return
	}

	c.loadedOnce = true

	if err != nil {
		c.state = StateFailed
		c.err = err
		snap := c.snapshotLocked()
		c.mu.Unlock()
		c.emit(snap)
		return
	}
	c.err = nil

	// Page reconciliation: an empty page above 1 while the server still
	// reports items means the page evaporated (e.g. the last row on it
	// was deleted). Correct the page a bounded number of times.
	if len(page.Items) == 0 && page.Count > 0 && query.Page > 1 && c.reconcileAttempts < 2 {
		var target int
		if c.reconcileAttempts == 0 {
			target = page.TotalPages(c.pageSize)
			if target >= query.Page {
				// The server already considers this the last page;
				// fall straight back to the first.
				target = 1
			}
		} else {
			target = 1
		}
		c.reconcileAttempts++
		c.query.Page = target
		c.fetchLocked(ctx)
		return
	}

	c.state = StateLoaded
	c.items = page.Items
	c.total = page.Count
	c.totalPages = page.TotalPages(c.pageSize)
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.emit(snap)
}

// Close cancels any pending debounced fetch.
func (c *Controller[T]) Close() {
	c.debounce.stop()
}

func (c *Controller[T]) queryCopyLocked() storesdk.ListQuery {
	q := c.query
	if len(c.query.Filters) > 0 {
		q.Filters = make(map[string]string, len(c.query.Filters))
		for k, v := range c.query.Filters {
			q.Filters[k] = v
		}
	}
	return q
}

func (c *Controller[T]) snapshotLocked() Snapshot[T] {
	items := make([]T, len(c.items))
	copy(items, c.items)
	return Snapshot[T]{
		State:      c.state,
		Query:      c.queryCopyLocked(),
		Items:      items,
		TotalCount: c.total,
		TotalPages: c.totalPages,
		Err:        c.err,
	}
}

func (c *Controller[T]) emit(snap Snapshot[T]) {
	c.mu.Lock()
	subs := make([]func(Snapshot[T]), len(c.onChange))
	copy(subs, c.onChange)
	c.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
}
