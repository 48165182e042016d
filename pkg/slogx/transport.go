package slogx

import (
	"log/slog"
	"net/http"
	"time"
)

// Transport is an http.RoundTripper that logs outbound requests and
// attaches a contextual logger carrying the request ID set by the caller.
type Transport struct {
	Base   http.RoundTripper
	Logger *slog.Logger
}

func (t *Transport) RoundTrip(r *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}

	ctx := r.Context()
	if t.Logger != nil {
		ctx = WithContext(ctx, t.Logger)
	}
	if reqID := r.Header.Get("X-Request-ID"); reqID != "" {
		ctx = WithRequestID(ctx, reqID)
	}
	logger := FromContext(ctx)

	start := time.Now()
	resp, err := base.RoundTrip(r)
	duration := time.Since(start).Milliseconds()

	if err != nil {
		logger.Warn("http_request_failed",
			"method", r.Method,
			"path", r.URL.Path,
			"duration_ms", duration,
			"error", err,
		)
		return nil, err
	}

	logger.Debug("http_request",
		"method", r.Method,
		"path", r.URL.Path,
		"status", resp.StatusCode,
		"duration_ms", duration,
	)
	return resp, nil
}
