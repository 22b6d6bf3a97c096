package log

import (
	"log/slog"
	"net/http"
	"time"
)

// RequestIDHeader carries the id generated for each outbound API call.
const RequestIDHeader = "X-Request-ID"

// Transport wraps an http.RoundTripper and logs every outbound request with
// its status and duration. 4xx responses log at warn, 5xx and transport
// failures at error.
func Transport(logger *Logger, base http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return &loggingTransport{logger: logger.WithComponent(ComponentAPI), base: base}
}

type loggingTransport struct {
	logger *Logger
	base   http.RoundTripper
}

func (t *loggingTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	start := time.Now()
	ctx := r.Context()

	resp, err := t.base.RoundTrip(r)
	duration := time.Since(start).Milliseconds()

	fields := NewFields().
		WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery).
		WithRequestID(r.Header.Get(RequestIDHeader))

	if err != nil {
		fields = fields.WithError(err).WithHTTPResponse(0, duration, false)
		t.logger.ErrorContext(ctx, "API request failed", fields.ToSlice()...)
		return nil, err
	}

	level := slog.LevelDebug
	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		level = slog.LevelWarn
	} else if resp.StatusCode >= 500 {
		level = slog.LevelError
	}
	fields = fields.WithHTTPResponse(resp.StatusCode, duration, resp.StatusCode < 400)
	t.logger.Log(ctx, level, "API request completed", fields.ToSlice()...)
	return resp, nil
}
