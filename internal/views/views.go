// Package views renders the dashboard page and the HTML fragments returned
// by the upload and search endpoints.
package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/BerylCAtieno/smart-doc-analysis/internal/models"
	"github.com/dustin/go-humanize"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	Dashboard      = "dashboard"
	UploadReport   = "upload"
	UploadError    = "upload_error"
	SearchResults  = "search"
	SearchFallback = "search_fallback"
	SearchError    = "search_error"
	PageError      = "page_error"
)

// topicColors cycle across topic tags.
const topicColors = 6

type DashboardData struct {
	InitialCredits   float64
	PricePerQuestion float64
	PricePerReport   float64
	CreditTopUp      float64
}

type UploadData struct {
	Filename  string
	PageCount int
	WordCount int
	FileSize  int64
	Price     float64
	Summary   string
	Topics    []string
	Insights  []string
	Preview   string
	LiveData  []models.LiveDataItem
}

type SearchData struct {
	Query    string
	Report   *models.ResearchReport
	Findings []models.Finding
	LiveData []models.LiveDataItem
	Price    float64
}

type FallbackData struct {
	Query     string
	QueryType string
	Insight   string
	Price     float64
}

type ErrorData struct {
	Message string
}

type Renderer struct {
	templates *template.Template
}

func New() (*Renderer, error) {
	t, err := template.New("views").Funcs(funcs()).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return &Renderer{templates: t}, nil
}

// Render executes the named template into a buffer so a failure never
// leaves a half-written response.
func (r *Renderer) Render(name string, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, fmt.Errorf("failed to render %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

func funcs() template.FuncMap {
	return template.FuncMap{
		"money": func(v float64) string { return fmt.Sprintf("$%.2f", v) },
		"inc":   func(i int) int { return i + 1 },
		"odd":   func(i int) bool { return i%2 == 1 },
		"upper": strings.ToUpper,
		"join":  strings.Join,
		"bytes": func(n int64) string {
			if n < 0 {
				n = 0
			}
			return humanize.Bytes(uint64(n))
		},
		"topicClass": func(i int) string { return fmt.Sprintf("topic-%d", i%topicColors) },
		"published":  PublishedLabel,
		"age":        publishedAge,
		"headline":   func(s string) string { return Headline(s, 60) },
	}
}

// PublishedLabel formats an item's timestamp as "2006-01-02 15:04", or
// "Recent" when it cannot be parsed.
func PublishedLabel(item models.LiveDataItem) string {
	t, ok := item.PublishedTime()
	if !ok {
		return "Recent"
	}
	return t.Format("2006-01-02 15:04")
}

func publishedAge(item models.LiveDataItem) string {
	t, ok := item.PublishedTime()
	if !ok {
		return ""
	}
	return humanize.RelTime(t, time.Now(), "ago", "from now")
}

// Headline cuts s to n runes and appends an ellipsis.
func Headline(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		r = r[:n]
	}
	return string(r) + "..."
}

// Preview returns the first n runes of text, with an ellipsis when cut.
func Preview(text string, n int) string {
	r := []rune(text)
	if len(r) <= n {
		return text
	}
	return string(r[:n]) + "..."
}
