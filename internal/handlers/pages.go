package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"sales-dashboard/internal/errors"
	"sales-dashboard/internal/observability"
	"sales-dashboard/internal/services"
	"sales-dashboard/internal/session"
	"sales-dashboard/internal/ui/format"
	"sales-dashboard/internal/ui/templates"
)

const renderTimeout = 10 * time.Second

type PageHandlers struct {
	dashboard      *services.Dashboard
	format         *format.Formatter
	metrics        *observability.Metrics
	logger         *slog.Logger
	maxUploadBytes int64
}

func NewPageHandlers(dashboard *services.Dashboard, formatter *format.Formatter, metrics *observability.Metrics, logger *slog.Logger, maxUploadBytes int64) *PageHandlers {
	return &PageHandlers{
		dashboard:      dashboard,
		format:         formatter,
		metrics:        metrics,
		logger:         logger,
		maxUploadBytes: maxUploadBytes,
	}
}

// HandleIndex renders the full page. ?branch= overrides and updates the
// session's selection.
func (h *PageHandlers) HandleIndex(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	if r.URL.Query().Has("branch") {
		sess.SelectBranch(r.URL.Query().Get("branch"))
	}
	h.render(w, r, sess, "", http.StatusOK)
}

// HandleUpload is the HTML form target. A rejected file re-renders the page
// with the reason and keeps the previous dataset.
func (h *PageHandlers) HandleUpload(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	ds, err := readUpload(w, r, h.maxUploadBytes)
	h.metrics.ObserveUpload(uploadResult(err))
	if err != nil {
		appErr := errors.As(err)
		h.logger.Warn("upload rejected",
			"session_id", sess.ID,
			"code", appErr.Code,
			"error", err,
			"request_id", observability.GetRequestID(r.Context()),
		)
		h.render(w, r, sess, appErr.Message, appErr.StatusCode)
		return
	}

	sess.Replace(ds)
	h.logger.Info("dataset loaded",
		"session_id", sess.ID,
		"source", ds.Source,
		"records", len(ds.Records),
	)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *PageHandlers) render(w http.ResponseWriter, r *http.Request, sess *session.Session, message string, status int) {
	ctx, cancel := context.WithTimeout(r.Context(), renderTimeout)
	defer cancel()

	view := templates.PageView{Error: message, Format: h.format}

	if ds := sess.Dataset(); ds != nil {
		view.Source = ds.Source
		branch := sess.Branch()
		dashboard, err := h.dashboard.Build(ctx, ds, branch)
		if err != nil && branch != services.AllBranches {
			h.logger.Warn("stale branch selection", "branch", branch, "error", err)
			sess.SelectBranch(services.AllBranches)
			if view.Error == "" {
				view.Error = errors.As(serviceError(err)).Message
			}
			dashboard, err = h.dashboard.Build(ctx, ds, services.AllBranches)
		}
		if err != nil {
			errors.WriteError(w, h.logger, serviceError(err), observability.GetRequestID(ctx))
			return
		}
		view.Dashboard = &dashboard
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := templates.Dashboard(view).Render(ctx, w); err != nil {
		h.logger.Error("render dashboard page", "error", err)
	}
}
