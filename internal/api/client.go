package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	applog "fintrack/internal/log"
)

// ErrTransport wraps failures where no HTTP response was received.
var ErrTransport = errors.New("transport error")

// ErrUnauthenticated is returned by Login when the server sends no token.
var ErrUnauthenticated = errors.New("unauthenticated")

// APIError is a non-2xx response from the backend.
type APIError struct {
	Status  int
	Message string
	// Errors holds field-level validation messages keyed by field name.
	Errors map[string][]string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}

// FieldError returns the first message for field, or "".
func (e *APIError) FieldError(field string) string {
	if msgs := e.Errors[field]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

// Fields returns the names of fields with validation errors, sorted.
func (e *APIError) Fields() []string {
	out := make([]string, 0, len(e.Errors))
	for k := range e.Errors {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// IsStatus reports whether err is an *APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// Options configures a Client.
type Options struct {
	BaseURL string
	Timeout time.Duration
	Logger  *applog.Logger
	// Transport overrides the underlying round tripper; nil uses the default.
	Transport http.RoundTripper
}

// Client talks JSON to the finance backend. It never retries.
type Client struct {
	baseURL    string
	httpClient *http.Client
	session    *Session
	logger     *applog.Logger
	newID      func() string
}

func NewClient(opts Options, session *Session) *Client {
	logger := opts.Logger
	if logger == nil {
		logger = applog.Discard()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if session == nil {
		session = NewSession(nil)
	}
	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: applog.Transport(logger, opts.Transport),
		},
		session: session,
		logger:  logger.WithComponent(applog.ComponentAPI),
		newID:   func() string { return uuid.NewString() },
	}
}

func (c *Client) Session() *Session { return c.session }

func (c *Client) BaseURL() string { return c.baseURL }

// Do sends one request. query may be nil. body, when non-nil, is JSON encoded.
// When out is a *json.RawMessage the raw body is stored; otherwise it is
// decoded into out. Non-2xx responses return *APIError.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(applog.RequestIDHeader, c.newID())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.session.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrTransport, method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: reading response: %v", ErrTransport, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp.StatusCode, data)
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if raw, ok := out.(*json.RawMessage); ok {
		*raw = append((*raw)[:0], data...)
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding %s %s response: %w", method, path, err)
	}
	return nil
}

func decodeAPIError(status int, data []byte) *APIError {
	apiErr := &APIError{Status: status}
	var body struct {
		Message string                     `json:"message"`
		Errors  map[string]json.RawMessage `json:"errors"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return apiErr
	}
	apiErr.Message = body.Message
	if len(body.Errors) > 0 {
		apiErr.Errors = make(map[string][]string, len(body.Errors))
		for field, raw := range body.Errors {
			var many []string
			if err := json.Unmarshal(raw, &many); err == nil {
				apiErr.Errors[field] = many
				continue
			}
			var one string
			if err := json.Unmarshal(raw, &one); err == nil {
				apiErr.Errors[field] = []string{one}
			}
		}
	}
	return apiErr
}
