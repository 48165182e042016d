package storesdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Chichimokers/storefront/pkg/idx"
)

// refreshOutcome is what a parked request receives once the in-flight
// refresh settles. On success every waiter re-issues its own original
// request with the new access token.
type refreshOutcome struct {
	access string
	err    error
}

// do performs one authenticated API call. body (if non-nil) is JSON-encoded
// and out (if non-nil) receives the decoded response body.
//
// On a 401 with a refresh token held, the originating call drives a single
// refresh while concurrent 401s queue behind it; all of them replay with
// the refreshed token once it lands. A 401 without a refresh token is
// surfaced as KindAuthRequired without attempting a refresh.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	return c.doWithHeaders(ctx, method, path, body, out, nil)
}

// doWithHeaders is do with extra request headers. The headers are part of
// the captured request parameters, so a replay after refresh carries them
// unchanged.
func (c *Client) doWithHeaders(ctx context.Context, method, path string, body, out any, headers map[string]string) error {
	err := c.doOnce(ctx, method, path, body, out, headers)
	c.metrics.observeRequest(method, err)
	return err
}

func (c *Client) doOnce(ctx context.Context, method, path string, body, out any, headers map[string]string) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	access := c.tokens.access()

	// When the access token is a JWT that is already past its exp claim,
	// a 401 is guaranteed; refresh up front and save the wasted round
	// trip. Opaque tokens take the reactive path below.
	if pair, held := c.tokens.current(); held && pair.Refresh != "" && accessExpired(access, time.Now()) {
		refreshed, err := c.refreshAccess(ctx, access)
		if err != nil {
			return err
		}
		access = refreshed
	}

	status, respBody, err := c.send(ctx, method, path, payload, access, headers)
	if err != nil {
		return newNetworkError(err)
	}

	if status == http.StatusUnauthorized {
		pair, held := c.tokens.current()
		if !held || pair.Refresh == "" {
			return newAuthRequired()
		}

		refreshed, err := c.refreshAccess(ctx, access)
		if err != nil {
			return err
		}

		status, respBody, err = c.send(ctx, method, path, payload, refreshed, headers)
		if err != nil {
			return newNetworkError(err)
		}
	}

	return decodeResponse(status, respBody, out)
}

// refreshAccess returns a usable access token, performing at most one
// refresh network call no matter how many requests arrive here
// concurrently. staleAccess is the token the caller just failed with; if
// the stored token has already moved past it, that newer token is returned
// without any network traffic.
func (c *Client) refreshAccess(ctx context.Context, staleAccess string) (string, error) {
	c.refreshMu.Lock()

	if cur := c.tokens.access(); cur != "" && cur != staleAccess {
		c.refreshMu.Unlock()
		return cur, nil
	}

	if c.refreshing {
		ch := make(chan refreshOutcome, 1)
		c.waiters = append(c.waiters, ch)
		c.refreshMu.Unlock()

		select {
		case out := <-ch:
			return out.access, out.err
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	c.refreshing = true
	c.refreshMu.Unlock()

	out := c.doRefresh(ctx)

	c.refreshMu.Lock()
	c.refreshing = false
	parked := c.waiters
	c.waiters = nil
	c.refreshMu.Unlock()

	for _, ch := range parked {
		ch <- out
	}

	return out.access, out.err
}

// doRefresh performs the refresh network call and settles the session
// state: new tokens are persisted on success; on any failure the stored
// tokens are cleared and the session-expired subscribers are notified.
//
// The call is detached from the initiating request's context so one
// cancelled caller cannot fail the refresh that queued callers depend on.
func (c *Client) doRefresh(ctx context.Context) refreshOutcome {
	pair, held := c.tokens.current()
	if !held || pair.Refresh == "" {
		return refreshOutcome{err: newAuthRequired()}
	}

	refreshCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 15*time.Second)
	defer cancel()

	payload, err := json.Marshal(map[string]string{"refresh": pair.Refresh})
	if err != nil {
		return refreshOutcome{err: fmt.Errorf("encode refresh request: %w", err)}
	}

	status, body, err := c.send(refreshCtx, http.MethodPost, "/users/token/refresh/", payload, "", nil)
	if err == nil && (status < 200 || status >= 300) {
		err = parseErrorResponse(status, body)
	}
	if err != nil {
		c.log.Warn("token refresh failed, clearing session", "error", err)
		c.metrics.observeRefresh(false)
		if clearErr := c.tokens.clear(); clearErr != nil {
			c.log.Error("failed to clear stored tokens", "error", clearErr)
		}
		c.notifySessionExpired()
		return refreshOutcome{err: newAuthExpired(err)}
	}

	var refreshed TokenPair
	if err := json.Unmarshal(body, &refreshed); err != nil || refreshed.Access == "" {
		c.metrics.observeRefresh(false)
		if clearErr := c.tokens.clear(); clearErr != nil {
			c.log.Error("failed to clear stored tokens", "error", clearErr)
		}
		c.notifySessionExpired()
		return refreshOutcome{err: newAuthExpired(fmt.Errorf("malformed refresh response"))}
	}

	// The refresh endpoint may omit the refresh token; save carries the
	// held one over in that case.
	if err := c.tokens.save(refreshed); err != nil {
		c.log.Error("failed to persist refreshed tokens", "error", err)
	}

	c.metrics.observeRefresh(true)
	c.log.Debug("access token refreshed")
	return refreshOutcome{access: refreshed.Access}
}

// send issues a single HTTP request and reads the whole response body. An
// error return means no response was received.
func (c *Client) send(ctx context.Context, method, path string, payload []byte, access string, headers map[string]string) (int, []byte, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}

	reqID := idx.New().String()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if access != "" {
		req.Header.Set("Authorization", "Bearer "+access)
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	start := time.Now()
	resp, err := c.httpc.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("read response body: %w", err)
	}

	c.log.Debug("api request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
		"request_id", reqID,
	)

	return resp.StatusCode, body, nil
}

// decodeResponse maps a settled HTTP exchange to the caller's result.
func decodeResponse(status int, body []byte, out any) error {
	if status < 200 || status >= 300 {
		return parseErrorResponse(status, body)
	}
	if out == nil || status == http.StatusNoContent || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// get/post/put/patch/del are thin typed wrappers over do.

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

func (c *Client) put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, body, out)
}

func (c *Client) patch(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPatch, path, body, out)
}

func (c *Client) del(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}
