// Package multipart extracts the single uploaded file from a
// multipart/form-data request body.
package multipart

import (
	"fmt"
	"io"
	"mime"
	"strings"

	"github.com/BerylCAtieno/smart-doc-analysis/internal/models"
	"github.com/BerylCAtieno/smart-doc-analysis/internal/utils"
)

// FormParser turns a request body into the uploaded file it carries.
type FormParser interface {
	Parse(contentType string, body io.Reader) (*models.ParsedUpload, error)
}

// Boundary returns the boundary parameter of a multipart Content-Type header.
func Boundary(contentType string) (string, error) {
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err == nil {
		if !strings.HasPrefix(mediaType, "multipart/") {
			return "", utils.NewBadRequestError(fmt.Sprintf("expected multipart/form-data, got %q", mediaType))
		}
		if b := params["boundary"]; b != "" {
			return b, nil
		}
	}

	// Fall back to a literal scan so slightly malformed headers still work.
	if _, after, ok := strings.Cut(contentType, "boundary="); ok {
		b := strings.Trim(strings.TrimSpace(strings.SplitN(after, ";", 2)[0]), `"`)
		if b != "" {
			return b, nil
		}
	}

	return "", utils.NewBadRequestError("missing multipart boundary")
}
