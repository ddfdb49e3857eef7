package reportshandler

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"evalportal/internal/domain/auth"
	"evalportal/internal/domain/reports"
	"evalportal/internal/transport/http/api"
	"evalportal/internal/transport/http/middleware"
)

type Handler struct {
	Service *reports.Service
}

func NewHandler(service *reports.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/stats", func(r chi.Router) {
		r.Use(middleware.RequirePermission(auth.PermReportsRead))
		r.Get("/dashboard", h.handleDashboard)
		r.Get("/leaderboard", h.handleLeaderboard)
		r.Get("/completion", h.handleCompletion)
		r.Get("/departments", h.handleDepartmentActivity)
		r.Get("/employees", h.handleAllEmployees)
	})
	r.With(middleware.RequirePermission(auth.PermReportsExport)).Get("/reports/export", h.handleExport)
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.Service.Dashboard(r.Context(), r.URL.Query().Get("cycleId"))
	if err != nil {
		api.FailError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, dashboard, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := 5
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 && v <= 100 {
			limit = v
		}
	}
	ds, err := h.Service.Dataset(r.Context(), r.URL.Query().Get("cycleId"))
	if err != nil {
		api.FailError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]any{
		"cycle":       ds.Cycle,
		"leaderboard": reports.Leaderboard(ds.Scores, limit),
	}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCompletion(w http.ResponseWriter, r *http.Request) {
	ds, err := h.Service.Dataset(r.Context(), r.URL.Query().Get("cycleId"))
	if err != nil {
		api.FailError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]any{
		"cycle":      ds.Cycle,
		"completion": reports.ComputeCompletion(ds.Scores, ds.ActiveEmployees),
	}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDepartmentActivity(w http.ResponseWriter, r *http.Request) {
	ds, err := h.Service.Dataset(r.Context(), r.URL.Query().Get("cycleId"))
	if err != nil {
		api.FailError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]any{
		"cycle":    ds.Cycle,
		"activity": reports.ComputeDepartmentActivity(ds.Scores, ds.ActiveEmployees, ds.Departments),
		"averages": reports.DepartmentAverages(ds.Scores),
	}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleAllEmployees(w http.ResponseWriter, r *http.Request) {
	cycle, averages, err := h.Service.AllEmployees(r.Context(), r.URL.Query().Get("cycleId"))
	if err != nil {
		api.FailError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]any{"cycle": cycle, "employees": averages}, middleware.GetRequestID(r.Context()))
}

// handleExport renders the report in memory first so a rendering failure can
// still be answered with a JSON error.
func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	reqID := middleware.GetRequestID(r.Context())
	q := r.URL.Query()

	format, err := reports.ParseFormat(q.Get("format"))
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	req := reports.ExportRequest{
		Kind:         reports.ExportKind(q.Get("kind")),
		DepartmentID: q.Get("departmentId"),
		CycleID:      q.Get("cycleId"),
	}
	if req.Kind == reports.ExportByDepartment && req.DepartmentID == "" && user.Role != auth.RoleAdmin {
		req.DepartmentID = user.DepartmentID
	}
	if req.Kind == reports.ExportByDepartment && req.DepartmentID != "" && !auth.CanViewDepartment(user.Actor(), req.DepartmentID) {
		api.Fail(w, http.StatusForbidden, "forbidden", "not allowed", reqID)
		return
	}

	report, err := h.Service.Export(r.Context(), req)
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	var buf bytes.Buffer
	if err := reports.Render(&buf, format, report); err != nil {
		api.FailError(w, fmt.Errorf("render %s report: %w", format, err), reqID)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.Filename(format)))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	if _, err := buf.WriteTo(w); err != nil {
		slog.Warn("report export write failed", "err", err)
	}
}
