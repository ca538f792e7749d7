package router

import (
	"net/http"

	"github.com/BerylCAtieno/smart-doc-analysis/internal/handlers"
	"github.com/BerylCAtieno/smart-doc-analysis/internal/middleware"
	"github.com/BerylCAtieno/smart-doc-analysis/internal/utils"

	"github.com/gorilla/mux"
)

// NewRouter maps each (method, path) pair to exactly one handler. Anything
// else, including a known path with the wrong method, is a 404.
func NewRouter(h *handlers.Handler, logger *utils.Logger) http.Handler {
	r := mux.NewRouter()

	notFound := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Not Found", http.StatusNotFound)
	})
	r.NotFoundHandler = notFound
	r.MethodNotAllowedHandler = notFound

	// Pages
	r.Handle("/", h.Dashboard()).Methods(http.MethodGet)
	r.Handle("/index.html", h.Dashboard()).Methods(http.MethodGet)

	// JSON
	r.Handle("/health", h.Health()).Methods(http.MethodGet)
	r.Handle("/billing-stats", h.BillingStats()).Methods(http.MethodGet)
	r.Handle("/pathway-stats", h.PathwayStats()).Methods(http.MethodGet)
	r.Handle("/add-credits", h.AddCredits()).Methods(http.MethodPost)
	r.Handle("/refresh-pathway", h.RefreshPathway()).Methods(http.MethodPost)

	// Fragments
	r.Handle("/upload", h.Upload()).Methods(http.MethodPost)
	r.Handle("/search", h.Search()).Methods(http.MethodPost)

	// CORS runs only on matched routes, so an unrouted preflight is a 404.
	r.Use(middleware.CORS())

	// Outside the mux so unmatched requests are logged and recovered too.
	var handler http.Handler = r
	handler = middleware.Logger(logger)(handler)
	handler = middleware.Recovery(logger)(handler)

	return handler
}
