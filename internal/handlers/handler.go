// Package handlers implements the dashboard, upload, search, billing and
// live-data endpoints.
package handlers

import (
	"context"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/BerylCAtieno/smart-doc-analysis/internal/livedata"
	"github.com/BerylCAtieno/smart-doc-analysis/internal/models"
	"github.com/BerylCAtieno/smart-doc-analysis/internal/multipart"
	"github.com/BerylCAtieno/smart-doc-analysis/internal/utils"
	"github.com/BerylCAtieno/smart-doc-analysis/internal/views"
	"github.com/a-h/respond"
)

type Assistant interface {
	UploadDocuments(ctx context.Context, paths []string) (map[string]*models.AnalyzedDocument, error)
	ResearchQuery(ctx context.Context, query string, includeOnline bool, maxResults int) (*models.ResearchReport, error)
	RemoveDocument(ctx context.Context, id string) error
}

type Ledger interface {
	BillQuestion(ctx context.Context, user, query, correlationID string, success bool) error
	BillReport(ctx context.Context, user, label, correlationID string, success bool) error
	CanAffordReport(ctx context.Context, user string) (bool, error)
	AddCredits(ctx context.Context, user string, amount float64, reason string) error
	GetOrCreateUser(ctx context.Context, user string) (*models.UserAccount, error)
	GetUsageSummary(ctx context.Context, user string) (*models.UsageSummary, error)
}

type LiveData interface {
	livedata.Searcher
	GetPathwayStats(ctx context.Context) (*models.PathwayStats, error)
	RefreshCycle(ctx context.Context) error
}

type Options struct {
	DemoUser         string
	UploadDir        string
	MaxUploadSize    int64
	PricePerQuestion float64
	PricePerReport   float64
	InitialCredits   float64
	CreditTopUp      float64
	// Parser decodes upload bodies. Nil selects a StreamParser bounded by
	// MaxUploadSize.
	Parser multipart.FormParser
}

type Handler struct {
	assistant Assistant
	ledger    Ledger
	live      LiveData
	matcher   *livedata.Matcher
	parser    multipart.FormParser
	views     *views.Renderer
	opts      Options
	logger    *utils.Logger
}

func NewHandler(assistant Assistant, ledger Ledger, live LiveData, renderer *views.Renderer, opts Options, logger *utils.Logger) *Handler {
	parser := opts.Parser
	if parser == nil {
		parser = multipart.StreamParser{MaxFileSize: opts.MaxUploadSize}
	}

	return &Handler{
		assistant: assistant,
		ledger:    ledger,
		live:      live,
		matcher:   livedata.NewMatcher(live, logger),
		parser:    parser,
		views:     renderer,
		opts:      opts,
		logger:    logger,
	}
}

// Response is what every endpoint produces. JSON, when set, is encoded in
// place of Body.
type Response struct {
	Status      int
	ContentType string
	Body        []byte
	JSON        any
}

type endpoint func(r *http.Request) (*Response, error)

// htmlRoute wraps an HTML endpoint. Errors and panics become the errorView
// fragment with status 500.
func (h *Handler) htmlRoute(name, errorView string, fn endpoint) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := h.run(name, fn, r)
		if err != nil {
			resp = h.htmlError(errorView, err)
		}
		h.write(w, resp)
	}
}

// jsonRoute wraps a JSON endpoint. Errors and panics become
// {"success": false, "message": ...} with status 500.
func (h *Handler) jsonRoute(name, failure string, fn endpoint) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := h.run(name, fn, r)
		if err != nil {
			resp = jsonResponse(http.StatusInternalServerError, map[string]any{
				"success": false,
				"message": fmt.Sprintf("%s: %s", failure, utils.UserMessage(err)),
			})
		}
		h.write(w, resp)
	}
}

func (h *Handler) run(name string, fn endpoint, r *http.Request) (resp *Response, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			h.logger.Error("Handler panic", "handler", name, "panic", rec, "stack", string(debug.Stack()))
			resp, err = nil, fmt.Errorf("internal error: %v", rec)
		}
	}()

	resp, err = fn(r)
	if err != nil {
		h.logger.Error("Request failed",
			"handler", name,
			"error", err,
			"collaborator_failure", utils.IsCollaboratorFailure(err))
	}
	return resp, err
}

func (h *Handler) htmlError(view string, err error) *Response {
	body, renderErr := h.views.Render(view, views.ErrorData{Message: utils.UserMessage(err)})
	if renderErr != nil {
		h.logger.Error("Failed to render error fragment", "view", view, "error", renderErr)
		body = []byte("<p>Internal server error</p>")
	}
	return htmlResponse(http.StatusInternalServerError, body)
}

func (h *Handler) write(w http.ResponseWriter, resp *Response) {
	if resp.JSON != nil {
		w.Header().Set("Content-Type", "application/json")
		respond.WithJSON(w, resp.JSON, resp.Status)
		return
	}

	w.Header().Set("Content-Type", resp.ContentType)
	w.WriteHeader(resp.Status)
	if _, err := w.Write(resp.Body); err != nil {
		h.logger.Error("Failed to write response", "error", err)
	}
}

func htmlResponse(status int, body []byte) *Response {
	return &Response{Status: status, ContentType: "text/html; charset=utf-8", Body: body}
}

func jsonResponse(status int, v any) *Response {
	return &Response{Status: status, ContentType: "application/json", JSON: v}
}
