package extractor

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFText is the readable text of a PDF. Skipped lists the 1-based pages
// that had no content stream or failed to decode.
type PDFText struct {
	Text    string
	Pages   int
	Skipped []int
}

func ExtractPDF(data []byte) (*PDFText, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF reader: %w", err)
	}

	out := &PDFText{Pages: r.NumPage()}
	var sb strings.Builder
	for n := 1; n <= out.Pages; n++ {
		page := r.Page(n)
		if page.V.IsNull() {
			out.Skipped = append(out.Skipped, n)
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			out.Skipped = append(out.Skipped, n)
			continue
		}
		sb.WriteString(text)
		sb.WriteByte('\n')
	}

	out.Text = strings.TrimSpace(sb.String())
	if out.Text == "" {
		return nil, fmt.Errorf("no text could be extracted from PDF (%d pages, %d unreadable)", out.Pages, len(out.Skipped))
	}
	return out, nil
}
