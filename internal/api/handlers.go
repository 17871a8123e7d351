package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/ignite/deliverability-engine/internal/domain"
	"github.com/ignite/deliverability-engine/internal/pkg/httputil"
	"github.com/ignite/deliverability-engine/internal/pkg/logger"
	"github.com/ignite/deliverability-engine/internal/storage"
)

const defaultWindow = domain.Window30d

// Validator is the pure scoring surface.
type Validator interface {
	ValidateTemplate(t domain.EmailTemplate) domain.ValidationResult
	ValidateList(addresses []string) domain.ListValidationReport
	IsValidFormat(address string) bool
	IsDisposable(address string) bool
}

// Prober runs a deliverability probe.
type Prober interface {
	Check(ctx context.Context, req domain.ProbeRequest) domain.ProbeResult
}

// HealthReporter computes health metrics for a window.
type HealthReporter interface {
	HealthMetrics(ctx context.Context, window domain.Window) (domain.HealthMetrics, error)
}

// QualityReporter scores one sent message.
type QualityReporter interface {
	QualityScore(ctx context.Context, sentEmailID string) (domain.QualityScore, error)
}

// ReportArchive stores list validation reports.
type ReportArchive interface {
	SaveListReport(ctx context.Context, report *domain.ListValidationReport) (string, error)
}

// SnapshotStore records and lists health metric history.
type SnapshotStore interface {
	SaveHealthSnapshot(ctx context.Context, m *domain.HealthMetrics) error
	ListHealthSnapshots(ctx context.Context, w domain.Window, limit int) ([]storage.HealthSnapshot, error)
}

// Handlers contains the HTTP handlers for the engine.
type Handlers struct {
	validator Validator
	probe     Prober
	health    HealthReporter
	quality   QualityReporter
	archive   ReportArchive
	snapshots SnapshotStore
}

// NewHandlers creates the handler set. archive and snapshots are optional.
func NewHandlers(v Validator, probe Prober, health HealthReporter, quality QualityReporter, archive ReportArchive, snapshots SnapshotStore) *Handlers {
	return &Handlers{
		validator: v,
		probe:     probe,
		health:    health,
		quality:   quality,
		archive:   archive,
		snapshots: snapshots,
	}
}

// ValidateTemplate scores a template.
//
//	POST /api/validation/template
func (h *Handlers) ValidateTemplate(w http.ResponseWriter, r *http.Request) {
	var t domain.EmailTemplate
	if !httputil.Decode(w, r, &t) {
		return
	}
	httputil.OK(w, h.validator.ValidateTemplate(t))
}

type listRequest struct {
	Emails []string `json:"emails"`
}

type listResponse struct {
	domain.ListValidationReport
	ArchiveKey string `json:"archive_key,omitempty"`
}

// ValidateList partitions an address list. With ?archive=true the report is
// also written to the report archive.
//
//	POST /api/validation/list
func (h *Handlers) ValidateList(w http.ResponseWriter, r *http.Request) {
	var req listRequest
	if !httputil.Decode(w, r, &req) {
		return
	}

	archive, _ := strconv.ParseBool(r.URL.Query().Get("archive"))
	if archive && h.archive == nil {
		httputil.Error(w, http.StatusServiceUnavailable, "report archive not configured")
		return
	}

	resp := listResponse{ListValidationReport: h.validator.ValidateList(req.Emails)}
	if archive {
		key, err := h.archive.SaveListReport(r.Context(), &resp.ListValidationReport)
		if err != nil {
			httputil.ServiceUnavailable(w, "report archive unavailable", err)
			return
		}
		resp.ArchiveKey = key
	}
	httputil.OK(w, resp)
}

type formatRequest struct {
	Email  string   `json:"email,omitempty"`
	Emails []string `json:"emails,omitempty"`
}

type formatResult struct {
	Email      string `json:"email"`
	Valid      bool   `json:"valid"`
	Disposable bool   `json:"disposable"`
}

// ValidateFormat checks the syntax of one address ("email") or a batch
// ("emails"). Each address is normalized before checking and echoed in its
// normalized form. Results keep request order.
//
//	POST /api/validation/format
func (h *Handlers) ValidateFormat(w http.ResponseWriter, r *http.Request) {
	var req formatRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	addresses := req.Emails
	if req.Email != "" {
		addresses = append([]string{req.Email}, addresses...)
	}

	results := make([]formatResult, 0, len(addresses))
	for _, raw := range addresses {
		addr := domain.NormalizeAddress(raw)
		valid := h.validator.IsValidFormat(addr)
		results = append(results, formatResult{
			Email:      addr,
			Valid:      valid,
			Disposable: valid && h.validator.IsDisposable(addr),
		})
	}
	httputil.OK(w, map[string]any{"results": results})
}

// Probe runs a deliverability probe. A failed probe is still a 200; the
// verdict is in the body.
//
//	POST /api/deliverability/probe
func (h *Handlers) Probe(w http.ResponseWriter, r *http.Request) {
	var req domain.ProbeRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	httputil.OK(w, h.probe.Check(r.Context(), req))
}

func windowParam(r *http.Request) (domain.Window, error) {
	raw := r.URL.Query().Get("window")
	if raw == "" {
		return defaultWindow, nil
	}
	return domain.ParseWindow(raw)
}

// HealthMetrics reports sending health for ?window=7d|30d|90d (default 30d).
//
//	GET /api/deliverability/health
func (h *Handlers) HealthMetrics(w http.ResponseWriter, r *http.Request) {
	window, err := windowParam(r)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}

	m, err := h.health.HealthMetrics(r.Context(), window)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	if h.snapshots != nil {
		if err := h.snapshots.SaveHealthSnapshot(r.Context(), &m); err != nil {
			logger.Warn("health snapshot not recorded", "window", string(window), "error", err)
		}
	}
	httputil.OK(w, m)
}

// HealthHistory lists recorded health snapshots, newest first.
//
//	GET /api/deliverability/health/history
func (h *Handlers) HealthHistory(w http.ResponseWriter, r *http.Request) {
	if h.snapshots == nil {
		httputil.Error(w, http.StatusServiceUnavailable, "health history not configured")
		return
	}
	window, err := windowParam(r)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			httputil.BadRequest(w, "limit must be a non-negative integer")
			return
		}
	}

	snapshots, err := h.snapshots.ListHealthSnapshots(r.Context(), window, limit)
	if err != nil {
		httputil.ServiceUnavailable(w, "health history unavailable", err)
		return
	}
	httputil.OK(w, map[string]any{
		"window":    window,
		"snapshots": snapshots,
	})
}

// QualityScore scores a previously sent email.
//
//	GET /api/deliverability/quality/{id}
func (h *Handlers) QualityScore(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	score, err := h.quality.QualityScore(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	httputil.OK(w, score)
}
