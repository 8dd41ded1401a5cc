package cmdutil

import (
	"bytes"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GeovanniVera/chamus/pkg/sdk"
)

func TestHandleError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantMsg string
	}{
		{"network", &sdk.NetworkError{Method: "GET", URL: "http://x", Err: errors.New("connection refused")}, "check your connection and try again"},
		{"unauthorized", &sdk.HTTPError{StatusCode: http.StatusUnauthorized}, "chamusctl auth login"},
		{"forbidden", &sdk.HTTPError{StatusCode: http.StatusForbidden}, "chamusctl auth login"},
		{"server message", &sdk.HTTPError{StatusCode: http.StatusNotFound, Message: "Museum not found"}, "Museum not found (HTTP 404)"},
		{"bare status", &sdk.HTTPError{StatusCode: http.StatusBadGateway}, "HTTP 502"},
		{"missing token", &sdk.MissingTokenError{Field: "access_token"}, "did not return a session token"},
		{"other", errors.New("boom"), "list museums: boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := HandleError(&buf, "list museums", tt.err, nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
			assert.Empty(t, buf.String())
		})
	}
	assert.NoError(t, HandleError(nil, "noop", nil, nil))
}

func TestHandleError_ValidationTable(t *testing.T) {
	server := &sdk.HTTPError{
		StatusCode: http.StatusUnprocessableEntity,
		Body:       []byte(`{"errors":{"category_ids.0":["The selected category is invalid."]}}`),
	}

	var buf bytes.Buffer
	err := HandleError(&buf, "update museum", server, sdk.MuseumFieldMap)
	require.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, buf.String(), "categories")
	assert.Contains(t, buf.String(), "The selected category is invalid.")

	buf.Reset()
	local := sdk.FieldErrors{"name": "must be at least 3 characters"}
	err = HandleError(&buf, "create museum", local, nil)
	require.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, buf.String(), "must be at least 3 characters")
}

func TestParseID(t *testing.T) {
	id, err := ParseID(" 42 ")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	for _, bad := range []string{"", "0", "-3", "abc"} {
		_, err := ParseID(bad)
		assert.Error(t, err, bad)
	}

	ids, err := ParseIDs([]string{"1", "2"})
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, ids)
}

func TestNewUpload_ContentType(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n" + "rest")
	assert.Equal(t, "image/png", NewUpload("a.bin", png).ContentType)

	jpeg := []byte{0xFF, 0xD8, 0xFF, 0xE0}
	assert.Equal(t, "image/jpeg", NewUpload("a.jpg", jpeg).ContentType)

	unknown := NewUpload("notes.unknownext", []byte{0x00, 0x01, 0x02})
	assert.Equal(t, "application/octet-stream", unknown.ContentType)
}
