package cmdutil

import (
	"bytes"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/GeovanniVera/chamus/pkg/sdk"
)

// ParseID parses a positive resource identifier.
func ParseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q: expected a positive integer", arg)
	}
	return id, nil
}

// ParseIDs parses a list of identifiers, as given to --category.
func ParseIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := ParseID(arg)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// LoadImage reads an image file into an upload. The content type is
// sniffed from the data, falling back to the file extension.
func LoadImage(path string) (*sdk.Upload, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	return NewUpload(filepath.Base(path), data), nil
}

// NewUpload wraps in-memory image data.
func NewUpload(filename string, data []byte) *sdk.Upload {
	contentType := http.DetectContentType(data)
	if contentType == "application/octet-stream" {
		if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(filename))); byExt != "" {
			contentType = byExt
		}
	}
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	return &sdk.Upload{
		Filename:    filename,
		ContentType: contentType,
		Content:     bytes.NewReader(data),
	}
}
