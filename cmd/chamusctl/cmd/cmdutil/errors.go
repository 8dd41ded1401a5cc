package cmdutil

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/pterm/pterm"

	"github.com/GeovanniVera/chamus/pkg/sdk"
)

// ErrValidation is returned after field errors have been printed.
var ErrValidation = errors.New("validation failed")

// HandleError turns an API error into a user-facing one. Validation
// failures, local or from a 422 response, are printed to w as a field
// table; fieldMap translates server field names.
func HandleError(w io.Writer, action string, err error, fieldMap map[string]string) error {
	if err == nil {
		return nil
	}

	var fields sdk.FieldErrors
	if !errors.As(err, &fields) {
		fields, _ = sdk.ValidationErrorsFrom(err, fieldMap)
	}
	if len(fields) > 0 {
		PrintFieldErrors(w, fields)
		return fmt.Errorf("%s: %w", action, ErrValidation)
	}

	var nerr *sdk.NetworkError
	var herr *sdk.HTTPError
	var missing *sdk.MissingTokenError
	switch {
	case errors.As(err, &nerr):
		return fmt.Errorf("%s: cannot reach the catalog API (%v); check your connection and try again", action, nerr.Err)
	case sdk.IsAuthFailure(err):
		return fmt.Errorf("%s: session expired or not authorized; run `chamusctl auth login`", action)
	case errors.As(err, &missing):
		return fmt.Errorf("%s: the server did not return a session token", action)
	case errors.As(err, &herr) && herr.Message != "":
		return fmt.Errorf("%s: %s (HTTP %d)", action, herr.Message, herr.StatusCode)
	case errors.As(err, &herr):
		return fmt.Errorf("%s: request failed with HTTP %d", action, herr.StatusCode)
	default:
		return fmt.Errorf("%s: %w", action, err)
	}
}

// PrintFieldErrors renders field errors as a table.
func PrintFieldErrors(w io.Writer, fields sdk.FieldErrors) {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	data := pterm.TableData{{"FIELD", "ERROR"}}
	for _, name := range names {
		data = append(data, []string{name, fields[name]})
	}
	_ = pterm.DefaultTable.WithHasHeader().WithWriter(w).WithData(data).Render()
}
