package sdk

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"
)

// MultipartForm is a request body sent as multipart/form-data. The API
// only accepts file uploads this way, so museum and room writes use it.
type MultipartForm struct {
	fields []formField
	files  []Upload
}

type formField struct {
	name  string
	value string
}

// Upload is a file attached to a multipart form.
type Upload struct {
	Field       string
	Filename    string
	ContentType string
	Content     io.Reader
}

// NewMultipartForm returns an empty form.
func NewMultipartForm() *MultipartForm {
	return &MultipartForm{}
}

// Add appends a text field. Repeated names are allowed ("category_ids[]").
func (f *MultipartForm) Add(name, value string) *MultipartForm {
	f.fields = append(f.fields, formField{name: name, value: value})
	return f
}

// Attach appends a file part.
func (f *MultipartForm) Attach(upload Upload) *MultipartForm {
	f.files = append(f.files, upload)
	return f
}

// Value returns the first value of the named field.
func (f *MultipartForm) Value(name string) (string, bool) {
	for _, field := range f.fields {
		if field.name == name {
			return field.value, true
		}
	}
	return "", false
}

func (f *MultipartForm) encode() (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, field := range f.fields {
		if err := w.WriteField(field.name, field.value); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", field.name, err)
		}
	}
	for _, upload := range f.files {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			escapeQuotes(upload.Field), escapeQuotes(upload.Filename)))
		ct := upload.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		header.Set("Content-Type", ct)

		part, err := w.CreatePart(header)
		if err != nil {
			return nil, "", fmt.Errorf("create part %s: %w", upload.Field, err)
		}
		if upload.Content != nil {
			if _, err := io.Copy(part, upload.Content); err != nil {
				return nil, "", fmt.Errorf("copy %s: %w", upload.Filename, err)
			}
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
