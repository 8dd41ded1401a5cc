package sdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// ErrNotAuthenticated is returned by helpers that require a resolved,
// authenticated session.
var ErrNotAuthenticated = errors.New("not authenticated")

// NetworkError reports a request that never produced a response
// (offline, DNS failure, connection refused, cancelled context).
type NetworkError struct {
	Method string
	URL    string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// HTTPError reports a response with a non-2xx status code.
type HTTPError struct {
	StatusCode int
	Body       []byte
	// Message is the server-provided "message" field, when present.
	Message string
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("request failed with status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("request failed with status %d", e.StatusCode)
}

// IsAuthFailure reports whether the status invalidates the session.
func (e *HTTPError) IsAuthFailure() bool {
	return isAuthFailureStatus(e.StatusCode)
}

func isAuthFailureStatus(code int) bool {
	return code == http.StatusUnauthorized || code == http.StatusForbidden
}

func newHTTPError(code int, body []byte) *HTTPError {
	herr := &HTTPError{StatusCode: code, Body: body}
	var payload struct {
		Message string `json:"message"`
	}
	if len(body) > 0 && json.Unmarshal(body, &payload) == nil {
		herr.Message = payload.Message
	}
	return herr
}

// MissingTokenError is returned by Login when the server answered 2xx but
// the body had no usable access token.
type MissingTokenError struct {
	Field string
}

func (e *MissingTokenError) Error() string {
	return fmt.Sprintf("login response is missing %q", e.Field)
}

// IsAuthFailure reports whether err is an HTTPError with status 401 or 403.
func IsAuthFailure(err error) bool {
	var herr *HTTPError
	return errors.As(err, &herr) && herr.IsAuthFailure()
}

// IsNetworkError reports whether err wraps a NetworkError.
func IsNetworkError(err error) bool {
	var nerr *NetworkError
	return errors.As(err, &nerr)
}

// FieldErrors maps local form field names to validation messages.
type FieldErrors map[string]string

func (f FieldErrors) Error() string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+f[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add records msg for field unless the field already has a message.
func (f FieldErrors) Add(field, msg string) {
	if _, ok := f[field]; !ok {
		f[field] = msg
	}
}

// Err returns f as an error, or nil when empty.
func (f FieldErrors) Err() error {
	if len(f) == 0 {
		return nil
	}
	return f
}

// ValidationErrorsFrom extracts field errors from a 422 response. Server
// field names are translated through fieldMap; indexed array fields such
// as "category_ids.0" are reduced to their base name before lookup. Only
// the first message per field is kept. The boolean is false when err is
// not a 422 with an "errors" object.
func ValidationErrorsFrom(err error, fieldMap map[string]string) (FieldErrors, bool) {
	var herr *HTTPError
	if !errors.As(err, &herr) || herr.StatusCode != http.StatusUnprocessableEntity {
		return nil, false
	}

	var payload struct {
		Errors map[string][]string `json:"errors"`
	}
	if jerr := json.Unmarshal(herr.Body, &payload); jerr != nil || len(payload.Errors) == 0 {
		return nil, false
	}

	out := make(FieldErrors, len(payload.Errors))
	keys := make([]string, 0, len(payload.Errors))
	for k := range payload.Errors {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, key := range keys {
		msgs := payload.Errors[key]
		if len(msgs) == 0 {
			continue
		}
		base, _, _ := strings.Cut(key, ".")
		base = strings.TrimSuffix(base, "[]")
		local := base
		if mapped, ok := fieldMap[base]; ok {
			local = mapped
		}
		out.Add(local, msgs[0])
	}
	return out, true
}
