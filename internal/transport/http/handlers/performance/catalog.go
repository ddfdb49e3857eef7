package performancehandler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"evalportal/internal/domain/auth"
	"evalportal/internal/domain/performance"
	"evalportal/internal/transport/http/api"
	"evalportal/internal/transport/http/middleware"
	"evalportal/internal/transport/http/shared"
)

type categoryPayload struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Weight      float64 `json:"weight"`
}

type targetPayload struct {
	Kind string `json:"kind"`
	ID   string `json:"id"`
}

type metricPayload struct {
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	CategoryID   string          `json:"categoryId"`
	MaxScore     float64         `json:"maxScore"`
	ScaleType    string          `json:"scaleType"`
	Weight       float64         `json:"weight"`
	DepartmentID string          `json:"departmentId"`
	IsActive     *bool           `json:"isActive"`
	Exclusions   []targetPayload `json:"exclusions"`
}

func (p metricPayload) toMetric() performance.Metric {
	return performance.Metric{
		Name:         p.Name,
		Description:  p.Description,
		CategoryID:   p.CategoryID,
		MaxScore:     p.MaxScore,
		ScaleType:    p.ScaleType,
		Weight:       p.Weight,
		DepartmentID: p.DepartmentID,
		IsActive:     p.IsActive == nil || *p.IsActive,
	}
}

// parseTargets rejects the whole list when any entry lacks a kind or id.
func parseTargets(in []targetPayload) ([]performance.ExclusionTarget, error) {
	out := make([]performance.ExclusionTarget, 0, len(in))
	for _, t := range in {
		target, err := performance.ParseTarget(t.Kind, t.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, target)
	}
	return out, nil
}

func (h *Handler) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.Service.ListCategories(r.Context())
	if err != nil {
		api.FailError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, categories, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetCategory(w http.ResponseWriter, r *http.Request) {
	category, err := h.Service.GetCategory(r.Context(), chi.URLParam(r, "categoryID"))
	if err != nil {
		api.FailError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, category, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var payload categoryPayload
	if !shared.DecodeJSON(w, r, &payload, reqID) {
		return
	}
	category, err := h.Service.CreateCategory(r.Context(), performance.MetricCategory{Name: payload.Name, Description: payload.Description, Weight: payload.Weight})
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	api.Created(w, category, reqID)
}

func (h *Handler) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var payload categoryPayload
	if !shared.DecodeJSON(w, r, &payload, reqID) {
		return
	}
	category, err := h.Service.UpdateCategory(r.Context(), chi.URLParam(r, "categoryID"), performance.MetricCategory{Name: payload.Name, Description: payload.Description, Weight: payload.Weight})
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	api.Success(w, category, reqID)
}

func (h *Handler) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	categoryID := chi.URLParam(r, "categoryID")
	if err := h.Service.DeleteCategory(r.Context(), categoryID); err != nil {
		api.FailError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]string{"id": categoryID}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListMetrics(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	metrics, err := h.Service.ListMetrics(r.Context(), performance.MetricFilter{
		DepartmentID: q.Get("departmentId"),
		CategoryID:   q.Get("categoryId"),
		ActiveOnly:   q.Get("active") == "true",
	})
	if err != nil {
		api.FailError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, metrics, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetMetric(w http.ResponseWriter, r *http.Request) {
	metric, err := h.Service.GetMetric(r.Context(), chi.URLParam(r, "metricID"))
	if err != nil {
		api.FailError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, metric, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateMetric(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	reqID := middleware.GetRequestID(r.Context())
	var payload metricPayload
	if !shared.DecodeJSON(w, r, &payload, reqID) {
		return
	}
	if !auth.CanManageMetric(user.Actor(), payload.DepartmentID) {
		forbidden(w, r)
		return
	}
	targets, err := parseTargets(payload.Exclusions)
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	metric, err := h.Service.CreateMetric(r.Context(), payload.toMetric(), targets)
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	api.Created(w, metric, reqID)
}

// handleUpdateMetric replaces the exclusion set with the payload's list; an
// absent list clears it.
func (h *Handler) handleUpdateMetric(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	reqID := middleware.GetRequestID(r.Context())
	metricID := chi.URLParam(r, "metricID")
	var payload metricPayload
	if !shared.DecodeJSON(w, r, &payload, reqID) {
		return
	}
	existing, err := h.Service.GetMetric(r.Context(), metricID)
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	if !auth.CanManageMetric(user.Actor(), existing.DepartmentID) || !auth.CanManageMetric(user.Actor(), payload.DepartmentID) {
		forbidden(w, r)
		return
	}
	targets, err := parseTargets(payload.Exclusions)
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	metric, err := h.Service.UpdateMetric(r.Context(), metricID, payload.toMetric(), targets)
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	api.Success(w, metric, reqID)
}

func (h *Handler) handleDeleteMetric(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	reqID := middleware.GetRequestID(r.Context())
	metricID := chi.URLParam(r, "metricID")
	existing, err := h.Service.GetMetric(r.Context(), metricID)
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	if !auth.CanManageMetric(user.Actor(), existing.DepartmentID) {
		forbidden(w, r)
		return
	}
	if err := h.Service.DeleteMetric(r.Context(), metricID); err != nil {
		api.FailError(w, err, reqID)
		return
	}
	api.Success(w, map[string]string{"id": metricID}, reqID)
}

func (h *Handler) handleListExclusions(w http.ResponseWriter, r *http.Request) {
	exclusions, err := h.Service.ListExclusions(r.Context(), chi.URLParam(r, "metricID"))
	if err != nil {
		api.FailError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, exclusions, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleReplaceExclusions(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	reqID := middleware.GetRequestID(r.Context())
	metricID := chi.URLParam(r, "metricID")
	var payload struct {
		Exclusions []targetPayload `json:"exclusions"`
	}
	if !shared.DecodeJSON(w, r, &payload, reqID) {
		return
	}
	existing, err := h.Service.GetMetric(r.Context(), metricID)
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	if !auth.CanManageMetric(user.Actor(), existing.DepartmentID) {
		forbidden(w, r)
		return
	}
	targets, err := parseTargets(payload.Exclusions)
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	exclusions, err := h.Service.ReplaceExclusions(r.Context(), metricID, targets)
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	api.Success(w, exclusions, reqID)
}

func (h *Handler) handleApplicableMetrics(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	employeeID := chi.URLParam(r, "employeeID")
	allowed, err := h.canEvaluate(r, employeeID)
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	if !allowed {
		forbidden(w, r)
		return
	}
	metrics, err := h.Service.ApplicableMetrics(r.Context(), employeeID)
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	api.Success(w, metrics, reqID)
}
