package multipart

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"

	"github.com/BerylCAtieno/smart-doc-analysis/internal/models"
	"github.com/BerylCAtieno/smart-doc-analysis/internal/utils"
)

// StreamParser reads parts one at a time and stops at the first file part,
// so form fields and later parts are never buffered.
type StreamParser struct {
	// MaxFileSize caps the accepted file payload. Zero means no limit.
	MaxFileSize int64
}

func (p StreamParser) Parse(contentType string, body io.Reader) (*models.ParsedUpload, error) {
	boundary, err := Boundary(contentType)
	if err != nil {
		return nil, err
	}

	reader := multipart.NewReader(body, boundary)
	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			return nil, utils.ErrMissingContent
		}
		if err != nil {
			return nil, utils.NewBadRequestError(fmt.Sprintf("invalid multipart body: %v", err))
		}

		if part.FileName() == "" {
			part.Close()
			continue
		}

		content, err := p.readPayload(part)
		part.Close()
		if err != nil {
			return nil, err
		}
		if len(content) == 0 {
			return nil, utils.ErrMissingContent
		}

		return &models.ParsedUpload{
			Filename: part.FileName(),
			Content:  content,
		}, nil
	}
}

func (p StreamParser) readPayload(part *multipart.Part) ([]byte, error) {
	var r io.Reader = part
	if p.MaxFileSize > 0 {
		r = io.LimitReader(part, p.MaxFileSize+1)
	}

	content, err := io.ReadAll(r)
	if err != nil {
		return nil, utils.NewBadRequestError(fmt.Sprintf("failed to read uploaded file: %v", err))
	}
	if p.MaxFileSize > 0 && int64(len(content)) > p.MaxFileSize {
		return nil, utils.NewBadRequestError(fmt.Sprintf("file exceeds the %d byte limit", p.MaxFileSize))
	}

	return content, nil
}
