package performancehandler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"evalportal/internal/domain/performance"
	"evalportal/internal/transport/http/api"
	"evalportal/internal/transport/http/middleware"
	"evalportal/internal/transport/http/shared"
)

type cyclePayload struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	Status      string `json:"status"`
}

func (p cyclePayload) toCycle(w http.ResponseWriter, reqID string) (performance.Cycle, bool) {
	v := shared.NewValidator()
	v.Required("name", p.Name, "is required")
	start, _ := v.Date("startDate", p.StartDate)
	end, _ := v.Date("endDate", p.EndDate)
	v.DateOrder("startDate", start, "endDate", end)
	v.Enum("status", p.Status, []string{performance.CycleStatusDraft, performance.CycleStatusActive}, "must be draft or active")
	if v.Reject(w, reqID) {
		return performance.Cycle{}, false
	}
	return performance.Cycle{
		Name:        p.Name,
		Description: p.Description,
		StartDate:   start,
		EndDate:     end,
		Status:      p.Status,
	}, true
}

func (h *Handler) handleListCycles(w http.ResponseWriter, r *http.Request) {
	cycles, err := h.Service.ListCycles(r.Context())
	if err != nil {
		api.FailError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, cycles, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCurrentCycle(w http.ResponseWriter, r *http.Request) {
	cycle, err := h.Service.CurrentCycle(r.Context())
	if err != nil {
		api.FailError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, cycle, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetCycle(w http.ResponseWriter, r *http.Request) {
	cycle, err := h.Service.GetCycle(r.Context(), chi.URLParam(r, "cycleID"))
	if err != nil {
		api.FailError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, cycle, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateCycle(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var payload cyclePayload
	if !shared.DecodeJSON(w, r, &payload, reqID) {
		return
	}
	cycle, ok := payload.toCycle(w, reqID)
	if !ok {
		return
	}
	created, err := h.Service.CreateCycle(r.Context(), cycle)
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	api.Created(w, created, reqID)
}

func (h *Handler) handleUpdateCycle(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var payload cyclePayload
	if !shared.DecodeJSON(w, r, &payload, reqID) {
		return
	}
	payload.Status = ""
	cycle, ok := payload.toCycle(w, reqID)
	if !ok {
		return
	}
	updated, err := h.Service.UpdateCycle(r.Context(), chi.URLParam(r, "cycleID"), cycle)
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	api.Success(w, updated, reqID)
}

func (h *Handler) handleDeleteCycle(w http.ResponseWriter, r *http.Request) {
	cycleID := chi.URLParam(r, "cycleID")
	if err := h.Service.DeleteCycle(r.Context(), cycleID); err != nil {
		api.FailError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]string{"id": cycleID}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleActivateCycle(w http.ResponseWriter, r *http.Request) {
	cycle, err := h.Service.ActivateCycle(r.Context(), chi.URLParam(r, "cycleID"))
	if err != nil {
		api.FailError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, cycle, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDeactivateCycle(w http.ResponseWriter, r *http.Request) {
	cycle, err := h.Service.DeactivateCycle(r.Context(), chi.URLParam(r, "cycleID"))
	if err != nil {
		api.FailError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, cycle, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleExpireCycles(w http.ResponseWriter, r *http.Request) {
	ids, err := h.Service.ExpireCycles(r.Context())
	if err != nil {
		api.FailError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	if ids == nil {
		ids = []string{}
	}
	api.Success(w, map[string]any{"closed": ids}, middleware.GetRequestID(r.Context()))
}
