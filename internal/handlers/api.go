package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"sales-dashboard/internal/errors"
	"sales-dashboard/internal/observability"
	"sales-dashboard/internal/services"
	"sales-dashboard/internal/session"
)

var noStore = map[string]string{
	"Cache-Control": "no-store",
}

type APIHandlers struct {
	dashboard      *services.Dashboard
	sessions       *session.Store
	metrics        *observability.Metrics
	logger         *slog.Logger
	maxUploadBytes int64
}

func NewAPIHandlers(dashboard *services.Dashboard, sessions *session.Store, metrics *observability.Metrics, logger *slog.Logger, maxUploadBytes int64) *APIHandlers {
	return &APIHandlers{
		dashboard:      dashboard,
		sessions:       sessions,
		metrics:        metrics,
		logger:         logger,
		maxUploadBytes: maxUploadBytes,
	}
}

func (h *APIHandlers) HandleUpload(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	ds, err := readUpload(w, r, h.maxUploadBytes)
	h.metrics.ObserveUpload(uploadResult(err))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	sess.Replace(ds)
	h.logger.Info("dataset loaded",
		"session_id", sess.ID,
		"source", ds.Source,
		"records", len(ds.Records),
		"request_id", observability.GetRequestID(r.Context()),
	)

	errors.WriteSuccessWithHeaders(w, h.dashboard.Stats(ds), noStore)
}

func (h *APIHandlers) HandleClear(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	sess.Clear()
	errors.WriteSuccess(w, h.dashboard.Stats(nil))
}

func (h *APIHandlers) HandleBranches(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	ds := sess.Dataset()
	if ds == nil {
		h.fail(w, r, serviceError(services.ErrNoDataset))
		return
	}

	errors.WriteSuccessWithHeaders(w, map[string]any{
		"branches": ds.Branches,
		"selected": sess.Branch(),
	}, noStore)
}

func (h *APIHandlers) HandleDashboard(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	view, err := h.dashboard.Build(r.Context(), sess.Dataset(), r.URL.Query().Get("branch"))
	if err != nil {
		h.fail(w, r, serviceError(err))
		return
	}
	errors.WriteSuccessWithHeaders(w, view, noStore)
}

func (h *APIHandlers) HandleSummary(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	summary, err := h.dashboard.Summary(r.Context(), sess.Dataset(), r.URL.Query().Get("branch"), r.PathValue("product"))
	if err != nil {
		h.fail(w, r, serviceError(err))
		return
	}
	errors.WriteSuccessWithHeaders(w, summary, noStore)
}

func (h *APIHandlers) HandleTrend(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	trend, err := h.dashboard.Trend(r.Context(), sess.Dataset(), r.URL.Query().Get("branch"), r.PathValue("product"))
	if err != nil {
		h.fail(w, r, serviceError(err))
		return
	}
	errors.WriteSuccessWithHeaders(w, trend, noStore)
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	healthData := map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   observability.ServiceVersion,
	}

	errors.WriteSuccess(w, healthData)
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	stats := h.dashboard.Stats(sess.Dataset())
	stats["sessions"] = h.sessions.Len()

	errors.WriteSuccess(w, stats)
}

func (h *APIHandlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	errors.WriteError(w, h.logger, err, observability.GetRequestID(r.Context()))
}
