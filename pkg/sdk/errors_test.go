package sdk_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/GeovanniVera/chamus/pkg/sdk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationErrorsFrom_MapsServerFields(t *testing.T) {
	api := newFakeAPI(t)
	api.handle(http.MethodPost, "/api/museums/9", jsonHandler(http.StatusUnprocessableEntity, map[string]any{
		"message": "The given data was invalid.",
		"errors": map[string][]string{
			"name":           {"The name has already been taken.", "second message"},
			"clossing_time":  {"The closing time is invalid."},
			"category_ids.0": {"The selected category is invalid."},
			"category_ids.1": {"Another category error."},
		},
	}))

	client := sdk.NewClient(api.server.URL)
	_, err := client.UpdateMuseum(context.Background(), 9, validMuseumInput())
	require.Error(t, err)

	fields, ok := sdk.ValidationErrorsFrom(err, sdk.MuseumFieldMap)
	require.True(t, ok)
	assert.Equal(t, sdk.FieldErrors{
		"name":         "The name has already been taken.",
		"closing_time": "The closing time is invalid.",
		"categories":   "The selected category is invalid.",
	}, fields)
}

func TestValidationErrorsFrom_IgnoresOtherErrors(t *testing.T) {
	_, ok := sdk.ValidationErrorsFrom(errors.New("boom"), nil)
	assert.False(t, ok)

	_, ok = sdk.ValidationErrorsFrom(&sdk.HTTPError{StatusCode: http.StatusBadRequest, Body: []byte(`{"errors":{"a":["b"]}}`)}, nil)
	assert.False(t, ok)

	_, ok = sdk.ValidationErrorsFrom(&sdk.HTTPError{StatusCode: http.StatusUnprocessableEntity, Body: []byte(`{"message":"nope"}`)}, nil)
	assert.False(t, ok)
}

func TestFieldErrors(t *testing.T) {
	errs := sdk.FieldErrors{}
	require.NoError(t, errs.Err())

	errs.Add("name", "first")
	errs.Add("name", "second")
	errs.Add("email", "bad")
	assert.Equal(t, "first", errs["name"])
	assert.EqualError(t, errs.Err(), "validation failed: email: bad; name: first")

	var fe sdk.FieldErrors
	require.ErrorAs(t, errs.Err(), &fe)
}

func TestHTTPError_Message(t *testing.T) {
	err := &sdk.HTTPError{StatusCode: http.StatusNotFound}
	assert.EqualError(t, err, "request failed with status 404")
	assert.False(t, err.IsAuthFailure())
}
