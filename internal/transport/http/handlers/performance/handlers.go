package performancehandler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"evalportal/internal/domain/auth"
	"evalportal/internal/domain/core"
	"evalportal/internal/domain/performance"
	"evalportal/internal/platform/jobs"
	"evalportal/internal/transport/http/api"
	"evalportal/internal/transport/http/middleware"
)

type Handler struct {
	Service     *performance.Service
	Core        *core.Service
	Jobs        *jobs.Service
	Idempotency *middleware.IdempotencyStore
}

func NewHandler(service *performance.Service, coreSvc *core.Service, jobSvc *jobs.Service, idem *middleware.IdempotencyStore) *Handler {
	return &Handler{Service: service, Core: coreSvc, Jobs: jobSvc, Idempotency: idem}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/cycles", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermCyclesRead)).Get("/", h.handleListCycles)
		r.With(middleware.RequirePermission(auth.PermCyclesRead)).Get("/current", h.handleCurrentCycle)
		r.With(middleware.RequirePermission(auth.PermCyclesWrite)).Post("/", h.handleCreateCycle)
		r.With(middleware.RequirePermission(auth.PermCyclesWrite)).Post("/expire", h.handleExpireCycles)
		r.Route("/{cycleID}", func(r chi.Router) {
			r.With(middleware.RequirePermission(auth.PermCyclesRead)).Get("/", h.handleGetCycle)
			r.With(middleware.RequirePermission(auth.PermCyclesWrite)).Put("/", h.handleUpdateCycle)
			r.With(middleware.RequirePermission(auth.PermCyclesWrite)).Delete("/", h.handleDeleteCycle)
			r.With(middleware.RequirePermission(auth.PermCyclesWrite)).Post("/activate", h.handleActivateCycle)
			r.With(middleware.RequirePermission(auth.PermCyclesWrite)).Post("/deactivate", h.handleDeactivateCycle)
		})
	})
	r.Route("/metric-categories", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermMetricsRead)).Get("/", h.handleListCategories)
		r.With(middleware.RequirePermission(auth.PermMetricsWrite)).Post("/", h.handleCreateCategory)
		r.Route("/{categoryID}", func(r chi.Router) {
			r.With(middleware.RequirePermission(auth.PermMetricsRead)).Get("/", h.handleGetCategory)
			r.With(middleware.RequirePermission(auth.PermMetricsWrite)).Put("/", h.handleUpdateCategory)
			r.With(middleware.RequirePermission(auth.PermMetricsWrite)).Delete("/", h.handleDeleteCategory)
		})
	})
	r.Route("/metrics", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermMetricsRead)).Get("/", h.handleListMetrics)
		r.With(middleware.RequirePermission(auth.PermMetricsWrite)).Post("/", h.handleCreateMetric)
		r.Route("/{metricID}", func(r chi.Router) {
			r.With(middleware.RequirePermission(auth.PermMetricsRead)).Get("/", h.handleGetMetric)
			r.With(middleware.RequirePermission(auth.PermMetricsWrite)).Put("/", h.handleUpdateMetric)
			r.With(middleware.RequirePermission(auth.PermMetricsWrite)).Delete("/", h.handleDeleteMetric)
			r.With(middleware.RequirePermission(auth.PermMetricsRead)).Get("/exclusions", h.handleListExclusions)
			r.With(middleware.RequirePermission(auth.PermMetricsWrite)).Put("/exclusions", h.handleReplaceExclusions)
		})
	})
	r.Route("/scores", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermScoresWrite)).Get("/", h.handleListScores)
		r.With(middleware.RequirePermission(auth.PermScoresWrite)).Post("/", h.handleSubmitScores)
	})
	r.With(middleware.RequirePermission(auth.PermScoresImport)).Post("/imports/scores", h.handleImportScores)
}

// RegisterEmployeeRoutes adds routes below /employees/{employeeID}.
func (h *Handler) RegisterEmployeeRoutes(r chi.Router) {
	r.With(middleware.RequirePermission(auth.PermMetricsRead)).Get("/applicable-metrics", h.handleApplicableMetrics)
}

// canEvaluate loads the target employee and applies the evaluation policy.
func (h *Handler) canEvaluate(r *http.Request, employeeID string) (bool, error) {
	user, _ := middleware.GetUser(r.Context())
	emp, err := h.Core.GetEmployee(r.Context(), employeeID)
	if err != nil {
		return false, err
	}
	return auth.CanEvaluate(user.Actor(), emp.Subject()), nil
}

func forbidden(w http.ResponseWriter, r *http.Request) {
	api.Fail(w, http.StatusForbidden, "forbidden", "not allowed", middleware.GetRequestID(r.Context()))
}
