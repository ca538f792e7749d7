package extractor

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

func ExtractTXT(data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("empty text file")
	}

	text, err := decodeText(data)
	if err != nil {
		return "", fmt.Errorf("failed to decode text file: %w", err)
	}

	text = cleanText(text)

	if text == "" {
		return "", fmt.Errorf("no text could be extracted from file")
	}

	return text, nil
}

// boms maps byte-order marks to the decoder for the rest of the stream.
var boms = []struct {
	mark    []byte
	decoder func() transform.Transformer
}{
	{[]byte{0xEF, 0xBB, 0xBF}, func() transform.Transformer { return unicode.UTF8BOM.NewDecoder() }},
	{[]byte{0xFF, 0xFE}, func() transform.Transformer {
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
	}},
	{[]byte{0xFE, 0xFF}, func() transform.Transformer {
		return unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder()
	}},
}

// decodeText honours a byte-order mark, passes valid UTF-8 through and
// otherwise assumes Windows-1252, the usual source of stray high bytes.
func decodeText(data []byte) (string, error) {
	for _, b := range boms {
		if bytes.HasPrefix(data, b.mark) {
			decoded, _, err := transform.Bytes(b.decoder(), data)
			if err != nil {
				return "", err
			}
			return string(decoded), nil
		}
	}

	if utf8.Valid(data) {
		return string(data), nil
	}

	decoded, _, err := transform.Bytes(charmap.Windows1252.NewDecoder(), data)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}

func cleanText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	text = strings.ReplaceAll(text, "\x00", "")

	lines := strings.Split(text, "\n")

	// Runs of blank lines collapse to one so paragraph breaks survive.
	var cleanedLines []string
	blank := false
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			blank = len(cleanedLines) > 0
			continue
		}
		if blank {
			cleanedLines = append(cleanedLines, "")
			blank = false
		}
		cleanedLines = append(cleanedLines, line)
	}

	result := strings.Join(cleanedLines, "\n")

	return strings.TrimSpace(result)
}

// ValidateTXT checks if the data appears to be valid text
func ValidateTXT(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("empty file")
	}

	// Check if it's mostly printable or whitespace characters
	printableCount := 0
	sampleSize := 512
	if len(data) < sampleSize {
		sampleSize = len(data)
	}

	for i := 0; i < sampleSize; i++ {
		b := data[i]
		// Printable ASCII, tabs, newlines, carriage returns
		if (b >= 32 && b <= 126) || b == '\t' || b == '\n' || b == '\r' {
			printableCount++
		}
	}

	// If less than 80% of sample is printable text, it might be binary
	if float64(printableCount)/float64(sampleSize) < 0.8 {
		return fmt.Errorf("file does not appear to be valid text")
	}

	return nil
}
