package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"github.com/starfederation/datastar-go/datastar"

	"sales-dashboard/internal/errors"
	"sales-dashboard/internal/models"
	"sales-dashboard/internal/services"
	"sales-dashboard/internal/session"
	"sales-dashboard/internal/ui/format"
	"sales-dashboard/internal/ui/templates"
)

type dashboardSignals struct {
	Branch string `json:"branch"`
}

type SSEHandlers struct {
	dashboard *services.Dashboard
	format    *format.Formatter
	logger    *slog.Logger
}

func NewSSEHandlers(dashboard *services.Dashboard, formatter *format.Formatter, logger *slog.Logger) *SSEHandlers {
	return &SSEHandlers{
		dashboard: dashboard,
		format:    formatter,
		logger:    logger,
	}
}

func renderComponent(ctx context.Context, c templ.Component) (string, error) {
	var buf strings.Builder
	err := c.Render(ctx, &buf)
	return buf.String(), err
}

// HandleDashboard re-renders #dashboard-content for the branch in the
// request signals and remembers the selection on the session.
func (h *SSEHandlers) HandleDashboard(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	var signals dashboardSignals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		errors.WriteError(w, h.logger, errors.BadRequestWrap(err, "invalid signals"), "")
		return
	}

	sse := datastar.NewSSE(w, r)

	view, err := h.dashboard.Build(r.Context(), sess.Dataset(), signals.Branch)
	if err != nil {
		appErr := errors.As(serviceError(err))
		h.logger.Warn("dashboard patch failed", "branch", signals.Branch, "error", err)
		h.patchError(r.Context(), sse, appErr.Message)
		return
	}
	sess.SelectBranch(signals.Branch)

	html, err := renderComponent(r.Context(), templates.Content(view, h.format))
	if err != nil {
		h.logger.Error("render dashboard content", "error", err)
		return
	}
	sse.PatchElements(html)

	jsonData, err := json.Marshal(map[string]any{
		"summaries": summaries(view),
	})
	if err != nil {
		h.logger.Error("marshal summaries", "error", err)
		return
	}
	sse.PatchSignals(jsonData)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func (h *SSEHandlers) patchError(ctx context.Context, sse *datastar.ServerSentEventGenerator, message string) {
	banner, err := renderComponent(ctx, templates.ErrorBanner(message))
	if err != nil {
		h.logger.Error("render error banner", "error", err)
		return
	}
	sse.PatchElements(`<div id="dashboard-content">` + banner + `</div>`)
}

func summaries(view models.Dashboard) []models.ProductSummary {
	out := make([]models.ProductSummary, len(view.Reports))
	for i, r := range view.Reports {
		out[i] = r.Summary
	}
	return out
}
