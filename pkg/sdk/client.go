package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Version is reported in the default User-Agent.
const Version = "0.4.0"

const (
	headerAuthorization = "Authorization"
	headerAccept        = "Accept"
	headerContentType   = "Content-Type"
	headerRequestID     = "X-Request-ID"
	headerUserAgent     = "User-Agent"

	mimeJSON = "application/json"
)

// Client is the single configured HTTP client for the catalog API. It
// attaches the session token to outgoing requests and invalidates the
// session when the API answers 401 or 403.
type Client struct {
	baseURL   string
	http      *http.Client
	store     TokenStore
	logger    *slog.Logger
	userAgent string

	hooksMu sync.RWMutex
	hooks   []func(status int)
}

// ClientOptions configures client construction.
type ClientOptions struct {
	HTTPClient *http.Client
	Store      TokenStore
	Logger     *slog.Logger
	UserAgent  string
	AuthHooks  []func(status int)
}

// ClientOption mutates ClientOptions.
type ClientOption func(*ClientOptions)

// WithHTTPClient overrides the transport used for API calls.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(opts *ClientOptions) {
		opts.HTTPClient = client
	}
}

// WithTokenStore sets the session store consulted on every request.
func WithTokenStore(store TokenStore) ClientOption {
	return func(opts *ClientOptions) {
		opts.Store = store
	}
}

// WithLogger sets the logger for request tracing.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(opts *ClientOptions) {
		opts.Logger = logger
	}
}

// WithUserAgent overrides the default User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(opts *ClientOptions) {
		opts.UserAgent = ua
	}
}

// WithAuthFailureHook registers fn to run after a 401/403 response has
// cleared the session store.
func WithAuthFailureHook(fn func(status int)) ClientOption {
	return func(opts *ClientOptions) {
		opts.AuthHooks = append(opts.AuthHooks, fn)
	}
}

// NewClient creates a client for the API served at baseURL. An in-memory
// token store and http.DefaultClient are used when none are supplied.
func NewClient(baseURL string, optFns ...ClientOption) *Client {
	opts := ClientOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Store == nil {
		opts.Store = NewMemoryStore("")
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "chamus-sdk/" + Version
	}

	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		http:      opts.HTTPClient,
		store:     opts.Store,
		logger:    opts.Logger,
		userAgent: opts.UserAgent,
		hooks:     opts.AuthHooks,
	}
}

// BaseURL returns the API origin.
func (c *Client) BaseURL() string { return c.baseURL }

// Store returns the session store backing the client.
func (c *Client) Store() TokenStore { return c.store }

// OnAuthFailure registers fn to run after a 401/403 response has cleared
// the session store.
func (c *Client) OnAuthFailure(fn func(status int)) {
	c.hooksMu.Lock()
	c.hooks = append(c.hooks, fn)
	c.hooksMu.Unlock()
}

// Request describes one outgoing API call.
type Request struct {
	Method string
	Path   string
	// Body is nil, a *MultipartForm, []byte, an io.Reader, or a value that
	// is encoded as JSON.
	Body   any
	Header http.Header
}

// RequestOption customises a single request.
type RequestOption func(*Request)

// WithHeader sets a per-call header. Explicit Authorization, Accept and
// Content-Type values take precedence over the client defaults.
func WithHeader(key, value string) RequestOption {
	return func(r *Request) {
		if r.Header == nil {
			r.Header = make(http.Header)
		}
		r.Header.Set(key, value)
	}
}

// Response is a successful (2xx) API response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Decode unmarshals the response body into v, unwrapping a top-level
// {"data": ...} envelope when present.
func (r *Response) Decode(v any) error {
	return decodeBody(r.Body, v)
}

// Get issues a GET request.
func (c *Client) Get(ctx context.Context, path string, opts ...RequestOption) (*Response, error) {
	return c.Do(ctx, newRequest(http.MethodGet, path, nil, opts))
}

// Post issues a POST request.
func (c *Client) Post(ctx context.Context, path string, body any, opts ...RequestOption) (*Response, error) {
	return c.Do(ctx, newRequest(http.MethodPost, path, body, opts))
}

// Put issues a PUT request.
func (c *Client) Put(ctx context.Context, path string, body any, opts ...RequestOption) (*Response, error) {
	return c.Do(ctx, newRequest(http.MethodPut, path, body, opts))
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, path string, opts ...RequestOption) (*Response, error) {
	return c.Do(ctx, newRequest(http.MethodDelete, path, nil, opts))
}

func newRequest(method, path string, body any, opts []RequestOption) *Request {
	req := &Request{Method: method, Path: path, Body: body}
	for _, opt := range opts {
		opt(req)
	}
	return req
}

// Do sends req. It returns a *NetworkError when no response was received
// and an *HTTPError for non-2xx statuses.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	target := c.resolve(req.Path)

	body, contentType, err := encodeBody(req.Body)
	if err != nil {
		return nil, fmt.Errorf("encode %s %s body: %w", req.Method, req.Path, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	for key, values := range req.Header {
		httpReq.Header[http.CanonicalHeaderKey(key)] = append([]string(nil), values...)
	}
	c.applyDefaults(httpReq, contentType)
	c.authorize(httpReq)

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.logger.Debug("api request failed", "method", req.Method, "path", req.Path, "error", err)
		return nil, &NetworkError{Method: req.Method, URL: target, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Method: req.Method, URL: target, Err: fmt.Errorf("read response: %w", err)}
	}

	c.logger.Debug("api request",
		"method", effectiveMethod(req),
		"path", req.Path,
		"status", resp.StatusCode,
		"request_id", httpReq.Header.Get(headerRequestID),
		"duration", time.Since(start),
	)

	if isAuthFailureStatus(resp.StatusCode) {
		c.invalidate(resp.StatusCode)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newHTTPError(resp.StatusCode, data)
	}

	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: data}, nil
}

// effectiveMethod names the method the API acts on, honoring a "_method"
// override carried by a multipart POST.
func effectiveMethod(req *Request) string {
	if form, ok := req.Body.(*MultipartForm); ok {
		if override, ok := form.Value("_method"); ok && override != "" {
			return strings.ToUpper(override)
		}
	}
	return req.Method
}

func (c *Client) resolve(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}

func (c *Client) applyDefaults(req *http.Request, contentType string) {
	if req.Header.Get(headerAccept) == "" {
		req.Header.Set(headerAccept, mimeJSON)
	}
	switch {
	case strings.HasPrefix(contentType, "multipart/"):
		// The boundary is only known here, so it replaces any bare
		// multipart/form-data value set by the caller.
		req.Header.Set(headerContentType, contentType)
	case req.Header.Get(headerContentType) == "":
		req.Header.Set(headerContentType, mimeJSON)
	}
	if req.Header.Get(headerRequestID) == "" {
		req.Header.Set(headerRequestID, uuid.NewString())
	}
	if req.Header.Get(headerUserAgent) == "" {
		req.Header.Set(headerUserAgent, c.userAgent)
	}
}

// authorize injects the stored bearer token unless the caller supplied an
// Authorization header of its own.
func (c *Client) authorize(req *http.Request) {
	if req.Header.Get(headerAuthorization) != "" {
		return
	}
	token, ok := c.store.Token()
	if !ok {
		return
	}
	(&Credentials{AccessToken: token, TokenType: "Bearer"}).OAuth2Token().SetAuthHeader(req)
}

func (c *Client) invalidate(status int) {
	if err := c.store.ClearToken(); err != nil {
		c.logger.Error("failed to clear session token", "status", status, "error", err)
	} else {
		c.logger.Info("session invalidated by api", "status", status)
	}

	c.hooksMu.RLock()
	hooks := append([]func(int){}, c.hooks...)
	c.hooksMu.RUnlock()
	for _, hook := range hooks {
		hook(status)
	}
}

func encodeBody(body any) (io.Reader, string, error) {
	switch b := body.(type) {
	case nil:
		return nil, "", nil
	case *MultipartForm:
		return b.encode()
	case []byte:
		return bytes.NewReader(b), "", nil
	case io.Reader:
		return b, "", nil
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, "", err
		}
		return bytes.NewReader(data), mimeJSON, nil
	}
}

func decodeBody(body []byte, v any) error {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return fmt.Errorf("empty response body")
	}
	if trimmed[0] == '{' {
		var envelope map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &envelope); err == nil {
			if data, ok := envelope["data"]; ok {
				inner := bytes.TrimSpace(data)
				if len(inner) > 0 && (inner[0] == '{' || inner[0] == '[') {
					trimmed = inner
				}
			}
		}
	}
	if err := json.Unmarshal(trimmed, v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
