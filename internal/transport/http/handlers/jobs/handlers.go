package jobshandler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"evalportal/internal/domain/auth"
	"evalportal/internal/platform/jobs"
	"evalportal/internal/transport/http/api"
	"evalportal/internal/transport/http/middleware"
	"evalportal/internal/transport/http/shared"
)

type Handler struct {
	Service *jobs.Service
}

func NewHandler(service *jobs.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/jobs", func(r chi.Router) {
		r.Use(middleware.RequirePermission(auth.PermJobsRun))
		r.Get("/runs", h.handleListRuns)
		r.Post("/{jobType}/run", h.handleRun)
	})
}

func (h *Handler) handleListRuns(w http.ResponseWriter, r *http.Request) {
	page := shared.ParsePagination(r, 50, 200)
	runs, err := h.Service.ListRuns(r.Context(), r.URL.Query().Get("jobType"), page.Limit, page.Offset)
	if err != nil {
		api.FailError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	if runs == nil {
		runs = []jobs.Run{}
	}
	api.Success(w, runs, middleware.GetRequestID(r.Context()))
}

// handleRun executes a scheduled job immediately and returns its details.
func (h *Handler) handleRun(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	jobType := chi.URLParam(r, "jobType")
	run, ok := h.Service.Scheduled(jobType)
	if !ok {
		api.Fail(w, http.StatusNotFound, "not_found", "unknown job type", reqID)
		return
	}
	details, err := h.Service.RunNow(r.Context(), jobType, run)
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	api.Success(w, map[string]any{"jobType": jobType, "details": details}, reqID)
}
