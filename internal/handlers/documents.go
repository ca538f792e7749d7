package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BerylCAtieno/smart-doc-analysis/internal/analysis"
	"github.com/BerylCAtieno/smart-doc-analysis/internal/billing"
	"github.com/BerylCAtieno/smart-doc-analysis/internal/models"
	"github.com/BerylCAtieno/smart-doc-analysis/internal/utils"
	"github.com/BerylCAtieno/smart-doc-analysis/internal/views"
)

const (
	PreviewLength      = 1000
	LiveSampleLength   = 500
	MaxDisplayFindings = 3
	SearchMaxResults   = 5
	SearchLiveLimit    = 2
)

func (h *Handler) Upload() http.HandlerFunc {
	return h.htmlRoute("upload", views.UploadError, h.upload)
}

func (h *Handler) Search() http.HandlerFunc {
	return h.htmlRoute("search", views.SearchError, h.search)
}

func (h *Handler) upload(r *http.Request) (*Response, error) {
	ctx := r.Context()

	var body io.Reader = r.Body
	if h.opts.MaxUploadSize > 0 {
		if r.ContentLength > h.opts.MaxUploadSize {
			return nil, utils.NewBadRequestError(fmt.Sprintf("Upload exceeds the %d byte limit", h.opts.MaxUploadSize))
		}
		body = io.LimitReader(r.Body, h.opts.MaxUploadSize)
	}

	upload, err := h.parser.Parse(r.Header.Get("Content-Type"), body)
	if err != nil {
		return nil, err
	}

	h.logger.Info("Processing uploaded file", "filename", upload.Filename, "size", len(upload.Content))

	ok, err := h.ledger.CanAffordReport(ctx, h.opts.DemoUser)
	if err != nil {
		return nil, utils.NewCollaboratorError("billing", "can_afford_report", err)
	}
	if !ok {
		return nil, utils.NewCollaboratorError("billing", "bill_report",
			fmt.Errorf("%w: a report costs $%.2f", billing.ErrInsufficientCredits, h.opts.PricePerReport))
	}

	path, cleanup, err := h.saveTemp(upload)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	docs, err := h.assistant.UploadDocuments(ctx, []string{path})
	if err != nil {
		return nil, utils.NewCollaboratorError("assistant", "upload_documents", err)
	}
	if len(docs) == 0 {
		return nil, errors.New("failed to process document")
	}
	doc := firstDocument(docs)

	data := views.UploadData{
		Filename:  upload.Filename,
		PageCount: doc.Metadata.PageCount,
		WordCount: doc.Metadata.WordCount,
		FileSize:  int64(len(upload.Content)),
		Price:     h.opts.PricePerReport,
		Summary:   analysis.Summarize(doc.FullText),
		Topics:    analysis.ExtractTopics(doc.FullText),
		Insights:  analysis.GenerateInsights(doc.FullText, upload.Filename),
		Preview:   views.Preview(doc.FullText, PreviewLength),
		LiveData:  h.matcher.Related(ctx, prefix(doc.FullText, LiveSampleLength)),
	}

	resp, err := h.render(views.UploadReport, data)
	if err != nil {
		h.discard(ctx, docs)
		return nil, err
	}

	// Billed last so a failed upload leaves neither a charge nor a document.
	if err := h.ledger.BillReport(ctx, h.opts.DemoUser, "Document analysis: "+upload.Filename, utils.CorrelationID("upload"), true); err != nil {
		h.discard(ctx, docs)
		return nil, utils.NewCollaboratorError("billing", "bill_report", err)
	}

	return resp, nil
}

// discard removes documents ingested by an upload that did not complete.
func (h *Handler) discard(ctx context.Context, docs map[string]*models.AnalyzedDocument) {
	for name, doc := range docs {
		if err := h.assistant.RemoveDocument(context.WithoutCancel(ctx), doc.ID); err != nil {
			h.logger.Error("Failed to remove unbilled document", "filename", name, "id", doc.ID, "error", err)
		}
	}
}

// saveTemp writes the upload under a private temp directory, keeping the
// original base name so the assistant sees the real extension and filename.
func (h *Handler) saveTemp(upload *models.ParsedUpload) (string, func(), error) {
	dir, err := os.MkdirTemp(h.opts.UploadDir, "upload-*")
	if err != nil {
		return "", nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	cleanup := func() {
		if err := os.RemoveAll(dir); err != nil {
			h.logger.Warn("Failed to remove temp upload", "dir", dir, "error", err)
		}
	}

	path := filepath.Join(dir, safeFilename(upload.Filename))
	if err := os.WriteFile(path, upload.Content, 0o600); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("failed to write temp file: %w", err)
	}

	return path, cleanup, nil
}

func (h *Handler) search(r *http.Request) (*Response, error) {
	ctx := r.Context()

	if err := r.ParseForm(); err != nil {
		return nil, utils.NewBadRequestError(fmt.Sprintf("Invalid form data: %v", err))
	}
	query := strings.TrimSpace(r.PostForm.Get("query"))
	if query == "" {
		return nil, utils.ErrEmptyQuery
	}

	h.logger.Info("Search request", "query", query)

	if err := h.ledger.BillQuestion(ctx, h.opts.DemoUser, query, utils.CorrelationID("web"), true); err != nil {
		return nil, utils.NewCollaboratorError("billing", "bill_question", err)
	}

	report, err := h.assistant.ResearchQuery(ctx, query, false, SearchMaxResults)
	if err != nil {
		h.logger.Warn("Research query failed, using fallback response", "query", query, "error", err)
		return h.render(views.SearchFallback, views.FallbackData{
			Query:     query,
			QueryType: string(analysis.ClassifyQuery(query)),
			Insight:   analysis.QueryInsight(query),
			Price:     h.opts.PricePerQuestion,
		})
	}

	findings := report.MainFindings
	if len(findings) > MaxDisplayFindings {
		findings = findings[:MaxDisplayFindings]
	}

	live := h.matcher.Related(ctx, query)
	if len(live) > SearchLiveLimit {
		live = live[:SearchLiveLimit]
	}

	return h.render(views.SearchResults, views.SearchData{
		Query:    query,
		Report:   report,
		Findings: findings,
		LiveData: live,
		Price:    h.opts.PricePerQuestion,
	})
}

func (h *Handler) render(view string, data any) (*Response, error) {
	body, err := h.views.Render(view, data)
	if err != nil {
		return nil, err
	}
	return htmlResponse(http.StatusOK, body), nil
}

// firstDocument picks deterministically when the assistant returns several.
func firstDocument(docs map[string]*models.AnalyzedDocument) *models.AnalyzedDocument {
	names := make([]string, 0, len(docs))
	for name := range docs {
		names = append(names, name)
	}
	sort.Strings(names)
	return docs[names[0]]
}

func safeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return "uploaded_file"
	}
	return name
}

func prefix(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
