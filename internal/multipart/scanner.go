package multipart

import (
	"bytes"
	"fmt"
	"io"

	"github.com/BerylCAtieno/smart-doc-analysis/internal/models"
	"github.com/BerylCAtieno/smart-doc-analysis/internal/utils"
)

var (
	dispositionMarker = []byte("Content-Disposition")
	filenameMarker    = []byte("filename=")
	headerTerminator  = []byte("\r\n\r\n")
)

// BoundaryScanner is a minimal decoder that splits the body on the boundary
// literal. It supports exactly one file per request and ignores plain form
// fields, percent-encoded filenames and nested multipart bodies.
type BoundaryScanner struct {
	// MaxSize caps how much of the body is read. Zero means no limit.
	MaxSize int64
}

func (s BoundaryScanner) Parse(contentType string, body io.Reader) (*models.ParsedUpload, error) {
	boundary, err := Boundary(contentType)
	if err != nil {
		return nil, err
	}

	if s.MaxSize > 0 {
		body = io.LimitReader(body, s.MaxSize)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}

	return Decode(data, boundary)
}

// Decode extracts the first file part of a multipart body. The payload is
// everything after the part's blank line, minus trailing CR/LF bytes.
func Decode(body []byte, boundary string) (*models.ParsedUpload, error) {
	if boundary == "" {
		return nil, utils.NewBadRequestError("missing multipart boundary")
	}

	for _, part := range bytes.Split(body, []byte("--"+boundary)) {
		if !bytes.Contains(part, dispositionMarker) || !bytes.Contains(part, filenameMarker) {
			continue
		}

		start := bytes.Index(part, headerTerminator)
		if start < 0 {
			continue
		}

		filename := filenameFromPart(part[:start])
		content := bytes.TrimRight(part[start+len(headerTerminator):], "\r\n")
		if len(content) == 0 {
			return nil, utils.ErrMissingContent
		}

		return &models.ParsedUpload{
			Filename: filename,
			Content:  bytes.Clone(content),
		}, nil
	}

	return nil, utils.ErrMissingContent
}

func filenameFromPart(headers []byte) string {
	for _, line := range bytes.Split(headers, []byte("\r\n")) {
		i := bytes.Index(line, filenameMarker)
		if i < 0 {
			continue
		}
		value := line[i+len(filenameMarker):]
		if len(value) > 0 && value[0] == '"' {
			if end := bytes.IndexByte(value[1:], '"'); end >= 0 {
				return string(value[1 : end+1])
			}
			return string(value[1:])
		}
		if end := bytes.IndexByte(value, ';'); end >= 0 {
			value = value[:end]
		}
		return string(bytes.TrimSpace(value))
	}
	return "uploaded_file"
}
