// Package http provides http transport for schedule
package http

import (
	stdhttp "net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"fieldops/internal/modkit/httpkit"
	perr "fieldops/internal/platform/errors"
	"fieldops/internal/services/schedule/domain"
)

// Register mounts the router
func Register(r httpkit.Router, s domain.ServicePort, retryAfterSeconds int) {
	h := &handlers{svc: s, retryAfter: retryAfterSeconds}
	httpkit.PostJSON[domain.GenerateRequest](r, "/generate", h.generate)
	httpkit.PostJSON[domain.GenerateRequest](r, "/preview", h.preview)
	httpkit.Get(r, "/capacity/{date}", h.capacity)
	httpkit.PostJSON[domain.EmergencyInsertRequest](r, "/insert-emergency", h.insertEmergency)
	httpkit.PostJSON[domain.ReoptimizeRequest](r, "/re-optimize/{date}", h.reoptimize)
	httpkit.PostJSON[domain.ClearRequest](r, "/clear", h.clear)
	httpkit.Post(r, "/clear/{audit_id}/restore", h.restore)
	httpkit.Get(r, "/clear/recent", h.recentAudits)
	httpkit.Get(r, "/clear/{audit_id}", h.auditByID)
}

type handlers struct {
	svc        domain.ServicePort
	retryAfter int
}

// withRetryAfter converts a busy rejection into a 503 carrying a
// Retry-After hint; any other error passes through untouched.
func (h *handlers) withRetryAfter(err error) (any, error) {
	if perr.CodeOf(err) != perr.ErrorCodeUnavailable {
		return nil, err
	}
	resp := httpkit.Error(err)
	if resp.Header == nil {
		resp.Header = stdhttp.Header{}
	}
	resp.Header.Set("Retry-After", strconv.Itoa(h.retryAfter))
	return resp, nil
}

func dateParam(r *stdhttp.Request) (string, error) {
	date := chi.URLParam(r, "date")
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return "", perr.Validationf("date %q is not YYYY-MM-DD", date)
	}
	return date, nil
}

// @Summary Generate and persist a day's schedule
// @Tags schedule
// @Accept json
// @Produce json
// @Param payload body domain.GenerateRequest true "Generate"
// @Success 200 {object} domain.ScheduleResponse "ok"
// @Failure 409 {object} httpkit.Envelope "date locked by another writer"
// @Failure 503 {object} httpkit.Envelope "all solver slots busy"
// @Router /schedule/generate [post]
func (h *handlers) generate(r *stdhttp.Request, in domain.GenerateRequest) (any, error) {
	out, err := h.svc.Generate(r.Context(), in)
	if err != nil {
		return h.withRetryAfter(err)
	}
	return out, nil
}

// @Summary Solve a day without persisting anything
// @Tags schedule
// @Accept json
// @Produce json
// @Param payload body domain.GenerateRequest true "Preview"
// @Success 200 {object} domain.ScheduleResponse "ok"
// @Failure 503 {object} httpkit.Envelope "all solver slots busy"
// @Router /schedule/preview [post]
func (h *handlers) preview(r *stdhttp.Request, in domain.GenerateRequest) (any, error) {
	out, err := h.svc.Preview(r.Context(), in)
	if err != nil {
		return h.withRetryAfter(err)
	}
	return out, nil
}

// @Summary Remaining technician capacity for a date
// @Tags schedule
// @Produce json
// @Param date path string true "Schedule date" example(2026-03-14)
// @Success 200 {object} domain.CapacityResponse "ok"
// @Router /schedule/capacity/{date} [get]
func (h *handlers) capacity(r *stdhttp.Request) (any, error) {
	date, err := dateParam(r)
	if err != nil {
		return nil, err
	}
	return h.svc.Capacity(r.Context(), date)
}

// @Summary Insert an urgent job into a persisted day
// @Tags schedule
// @Accept json
// @Produce json
// @Param payload body domain.EmergencyInsertRequest true "Insert"
// @Success 200 {object} domain.EmergencyInsertResponse "ok"
// @Failure 404 {object} httpkit.Envelope "job not found"
// @Failure 409 {object} httpkit.Envelope "job not approved"
// @Router /schedule/insert-emergency [post]
func (h *handlers) insertEmergency(r *stdhttp.Request, in domain.EmergencyInsertRequest) (any, error) {
	return h.svc.InsertEmergency(r.Context(), in)
}

// @Summary Re-optimize an already persisted day in place
// @Tags schedule
// @Accept json
// @Produce json
// @Param date path string true "Schedule date" example(2026-03-14)
// @Param payload body domain.ReoptimizeRequest true "Reoptimize"
// @Success 200 {object} domain.ScheduleResponse "ok"
// @Failure 409 {object} httpkit.Envelope "date locked by another writer"
// @Failure 503 {object} httpkit.Envelope "all solver slots busy"
// @Router /schedule/re-optimize/{date} [post]
func (h *handlers) reoptimize(r *stdhttp.Request, in domain.ReoptimizeRequest) (any, error) {
	date, err := dateParam(r)
	if err != nil {
		return nil, err
	}
	out, err := h.svc.Reoptimize(r.Context(), date, in)
	if err != nil {
		return h.withRetryAfter(err)
	}
	return out, nil
}

// @Summary Clear a day's schedule behind an audit row
// @Tags schedule
// @Accept json
// @Produce json
// @Param payload body domain.ClearRequest true "Clear"
// @Success 200 {object} domain.ClearResponse "ok"
// @Failure 409 {object} httpkit.Envelope "date locked by another writer"
// @Router /schedule/clear [post]
func (h *handlers) clear(r *stdhttp.Request, in domain.ClearRequest) (any, error) {
	return h.svc.Clear(r.Context(), in)
}

// @Summary Undo a clear by replaying its audit row
// @Tags schedule
// @Produce json
// @Param audit_id path string true "Audit ID"
// @Success 200 {object} domain.RestoreResponse "ok"
// @Failure 404 {object} httpkit.Envelope "audit not found or already consumed"
// @Router /schedule/clear/{audit_id}/restore [post]
func (h *handlers) restore(r *stdhttp.Request) (any, error) {
	return h.svc.Restore(r.Context(), chi.URLParam(r, "audit_id"))
}

// @Summary List recent clear events
// @Tags schedule
// @Produce json
// @Param hours query int false "Lookback window in hours" default(24)
// @Success 200 {array} domain.AuditSummary "ok"
// @Router /schedule/clear/recent [get]
func (h *handlers) recentAudits(r *stdhttp.Request) (any, error) {
	hours := 24
	if raw := r.URL.Query().Get("hours"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return nil, perr.Validationf("hours %q must be a positive integer", raw)
		}
		hours = n
	}
	return h.svc.RecentAudits(r.Context(), hours)
}

// @Summary Fetch one clear audit with its payload
// @Tags schedule
// @Produce json
// @Param audit_id path string true "Audit ID"
// @Success 200 {object} domain.AuditDetail "ok"
// @Failure 404 {object} httpkit.Envelope "audit not found"
// @Router /schedule/clear/{audit_id} [get]
func (h *handlers) auditByID(r *stdhttp.Request) (any, error) {
	return h.svc.AuditByID(r.Context(), chi.URLParam(r, "audit_id"))
}
