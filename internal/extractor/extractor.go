package extractor

import (
	"fmt"
	"path/filepath"
	"strings"
)

const (
	ContentTypePDF  = "application/pdf"
	ContentTypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	ContentTypeText = "text/plain"
	ContentTypeMD   = "text/markdown"
)

type Result struct {
	Text        string
	PageCount   int
	ContentType string
	// SkippedPages are PDF pages whose text could not be read.
	SkippedPages []int
}

// Extract pulls plain text out of data, choosing the decoder from the
// filename extension. Files without a known extension are accepted when
// they look like text.
func Extract(filename string, data []byte) (*Result, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	switch ext {
	case ".pdf":
		doc, err := ExtractPDF(data)
		if err != nil {
			return nil, err
		}
		return &Result{
			Text:         doc.Text,
			PageCount:    max(doc.Pages, 1),
			ContentType:  ContentTypePDF,
			SkippedPages: doc.Skipped,
		}, nil
	case ".docx":
		text, err := ExtractDOCX(data)
		if err != nil {
			return nil, err
		}
		return &Result{Text: text, PageCount: 1, ContentType: ContentTypeDOCX}, nil
	case ".txt", ".md", ".markdown":
		text, err := ExtractTXT(data)
		if err != nil {
			return nil, err
		}
		contentType := ContentTypeText
		if ext != ".txt" {
			contentType = ContentTypeMD
		}
		return &Result{Text: text, PageCount: 1, ContentType: contentType}, nil
	case ".doc":
		return nil, fmt.Errorf("legacy .doc files are not supported, save the file as .docx")
	}

	if err := ValidateTXT(data); err != nil {
		return nil, fmt.Errorf("unsupported file type %q: %w", ext, err)
	}
	text, err := ExtractTXT(data)
	if err != nil {
		return nil, err
	}
	return &Result{Text: text, PageCount: 1, ContentType: ContentTypeText}, nil
}
