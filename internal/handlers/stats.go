package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/BerylCAtieno/smart-doc-analysis/internal/utils"
	"github.com/BerylCAtieno/smart-doc-analysis/internal/views"
)

const (
	HealthMessage  = "Smart Doc Analysis Web Interface"
	creditReason   = "Web interface credit addition"
	maxCreditsBody = 1 << 10
)

type creditsRequest struct {
	Amount float64 `json:"amount"`
}

func (h *Handler) Dashboard() http.HandlerFunc {
	return h.htmlRoute("dashboard", views.PageError, func(r *http.Request) (*Response, error) {
		return h.render(views.Dashboard, views.DashboardData{
			InitialCredits:   h.opts.InitialCredits,
			PricePerQuestion: h.opts.PricePerQuestion,
			PricePerReport:   h.opts.PricePerReport,
			CreditTopUp:      h.opts.CreditTopUp,
		})
	})
}

// Health reports liveness without touching any collaborator.
func (h *Handler) Health() http.HandlerFunc {
	return h.jsonRoute("health", "Health check failed", func(r *http.Request) (*Response, error) {
		return jsonResponse(http.StatusOK, map[string]string{
			"status":  "running",
			"message": HealthMessage,
		}), nil
	})
}

func (h *Handler) BillingStats() http.HandlerFunc {
	return h.jsonRoute("billing_stats", "Failed to load billing stats", func(r *http.Request) (*Response, error) {
		summary, err := h.ledger.GetUsageSummary(r.Context(), h.opts.DemoUser)
		if err != nil {
			return nil, utils.NewCollaboratorError("billing", "get_usage_summary", err)
		}
		return jsonResponse(http.StatusOK, summary), nil
	})
}

func (h *Handler) PathwayStats() http.HandlerFunc {
	return h.jsonRoute("pathway_stats", "Failed to load live data stats", func(r *http.Request) (*Response, error) {
		stats, err := h.live.GetPathwayStats(r.Context())
		if err != nil {
			return nil, utils.NewCollaboratorError("live_data", "get_pathway_stats", err)
		}
		return jsonResponse(http.StatusOK, stats), nil
	})
}

// AddCredits applies the configured top-up. The requested amount is logged
// but not honoured.
func (h *Handler) AddCredits() http.HandlerFunc {
	return h.jsonRoute("add_credits", "Failed to add credits", func(r *http.Request) (*Response, error) {
		ctx := r.Context()

		var req creditsRequest
		if err := json.NewDecoder(io.LimitReader(r.Body, maxCreditsBody)).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			h.logger.Debug("Ignoring unreadable credits body", "error", err)
		}

		if err := h.ledger.AddCredits(ctx, h.opts.DemoUser, h.opts.CreditTopUp, creditReason); err != nil {
			return nil, utils.NewCollaboratorError("billing", "add_credits", err)
		}

		account, err := h.ledger.GetOrCreateUser(ctx, h.opts.DemoUser)
		if err != nil {
			return nil, utils.NewCollaboratorError("billing", "get_or_create_user", err)
		}

		h.logger.Info("Credits top-up", "requested", req.Amount, "applied", h.opts.CreditTopUp, "balance", account.CreditsBalance())

		return jsonResponse(http.StatusOK, map[string]any{
			"success":     true,
			"message":     "Credits added successfully",
			"new_balance": account.CreditsBalance(),
		}), nil
	})
}

func (h *Handler) RefreshPathway() http.HandlerFunc {
	return h.jsonRoute("refresh_pathway", "Failed to refresh live data", func(r *http.Request) (*Response, error) {
		if err := h.live.RefreshCycle(r.Context()); err != nil {
			return nil, utils.NewCollaboratorError("live_data", "refresh", err)
		}
		return jsonResponse(http.StatusOK, map[string]any{
			"success": true,
			"message": "Live data refresh initiated",
		}), nil
	})
}
