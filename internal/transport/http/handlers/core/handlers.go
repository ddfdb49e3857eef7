package corehandler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"evalportal/internal/domain/audit"
	"evalportal/internal/domain/auth"
	"evalportal/internal/domain/core"
	"evalportal/internal/domain/performance"
	"evalportal/internal/transport/http/api"
	"evalportal/internal/transport/http/middleware"
	"evalportal/internal/transport/http/shared"
)

type Handler struct {
	Service *core.Service
	Audit   performance.Auditor
	// EmployeeRoutes are mounted under /employees/{employeeID} by other handlers.
	EmployeeRoutes []func(chi.Router)
}

func NewHandler(service *core.Service, auditor performance.Auditor) *Handler {
	return &Handler{Service: service, Audit: auditor}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/departments", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermOrgRead)).Get("/", h.handleListDepartments)
		r.With(middleware.RequirePermission(auth.PermOrgWrite)).Post("/", h.handleCreateDepartment)
		r.Route("/{departmentID}", func(r chi.Router) {
			r.With(middleware.RequirePermission(auth.PermOrgRead)).Get("/", h.handleGetDepartment)
			r.With(middleware.RequirePermission(auth.PermOrgWrite)).Put("/", h.handleUpdateDepartment)
			r.With(middleware.RequirePermission(auth.PermOrgWrite)).Delete("/", h.handleDeleteDepartment)
		})
	})
	r.Route("/positions", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermOrgRead)).Get("/", h.handleListPositions)
		r.With(middleware.RequirePermission(auth.PermOrgWrite)).Post("/", h.handleCreatePosition)
		r.Route("/{positionID}", func(r chi.Router) {
			r.With(middleware.RequirePermission(auth.PermOrgRead)).Get("/", h.handleGetPosition)
			r.With(middleware.RequirePermission(auth.PermOrgWrite)).Put("/", h.handleUpdatePosition)
			r.With(middleware.RequirePermission(auth.PermOrgWrite)).Delete("/", h.handleDeletePosition)
		})
	})
	r.Route("/employees", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermEmployeesRead)).Get("/", h.handleListEmployees)
		r.With(middleware.RequirePermission(auth.PermEmployeesWrite)).Post("/", h.handleCreateEmployee)
		r.Route("/{employeeID}", func(r chi.Router) {
			r.With(middleware.RequirePermission(auth.PermEmployeesRead)).Get("/", h.handleGetEmployee)
			r.With(middleware.RequirePermission(auth.PermEmployeesWrite)).Put("/", h.handleUpdateEmployee)
			r.With(middleware.RequirePermission(auth.PermEmployeesWrite)).Delete("/", h.handleDeleteEmployee)
			r.With(middleware.RequirePermission(auth.PermEmployeesWrite)).Post("/activate", h.handleSetActive(true))
			r.With(middleware.RequirePermission(auth.PermEmployeesWrite)).Post("/deactivate", h.handleSetActive(false))
			for _, register := range h.EmployeeRoutes {
				register(r)
			}
		})
	})
}

func (h *Handler) record(r *http.Request, action, entityType, entityID string, before, after any) {
	if h.Audit == nil {
		return
	}
	if err := h.Audit.Record(r.Context(), action, entityType, entityID, before, after); err != nil {
		slog.Warn("audit record failed", "action", action, "entity", entityType, "err", err)
	}
}

func forbidden(w http.ResponseWriter, r *http.Request) {
	api.Fail(w, http.StatusForbidden, "forbidden", "not allowed", middleware.GetRequestID(r.Context()))
}

type departmentPayload struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (h *Handler) handleListDepartments(w http.ResponseWriter, r *http.Request) {
	deps, err := h.Service.ListDepartments(r.Context())
	if err != nil {
		api.FailError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, deps, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetDepartment(w http.ResponseWriter, r *http.Request) {
	dep, err := h.Service.GetDepartment(r.Context(), chi.URLParam(r, "departmentID"))
	if err != nil {
		api.FailError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, dep, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateDepartment(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	reqID := middleware.GetRequestID(r.Context())
	if !auth.CanManageDepartment(user.Actor()) {
		forbidden(w, r)
		return
	}
	var payload departmentPayload
	if !shared.DecodeJSON(w, r, &payload, reqID) {
		return
	}
	dep, err := h.Service.CreateDepartment(r.Context(), core.Department{Name: payload.Name, Description: payload.Description})
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	h.record(r, audit.ActionCreate, "department", dep.ID, nil, dep)
	api.Created(w, dep, reqID)
}

func (h *Handler) handleUpdateDepartment(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	reqID := middleware.GetRequestID(r.Context())
	if !auth.CanManageDepartment(user.Actor()) {
		forbidden(w, r)
		return
	}
	departmentID := chi.URLParam(r, "departmentID")
	var payload departmentPayload
	if !shared.DecodeJSON(w, r, &payload, reqID) {
		return
	}
	before, err := h.Service.GetDepartment(r.Context(), departmentID)
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	after := core.Department{ID: departmentID, Name: payload.Name, Description: payload.Description}
	if err := h.Service.UpdateDepartment(r.Context(), departmentID, after); err != nil {
		api.FailError(w, err, reqID)
		return
	}
	h.record(r, audit.ActionUpdate, "department", departmentID, before, after)
	api.Success(w, map[string]string{"id": departmentID}, reqID)
}

func (h *Handler) handleDeleteDepartment(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	if !auth.CanManageDepartment(user.Actor()) {
		forbidden(w, r)
		return
	}
	departmentID := chi.URLParam(r, "departmentID")
	if err := h.Service.DeleteDepartment(r.Context(), departmentID); err != nil {
		api.FailError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	h.record(r, audit.ActionDelete, "department", departmentID, nil, nil)
	api.Success(w, map[string]string{"id": departmentID}, middleware.GetRequestID(r.Context()))
}

type positionPayload struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	DepartmentID string `json:"departmentId"`
}

func (h *Handler) handleListPositions(w http.ResponseWriter, r *http.Request) {
	positions, err := h.Service.ListPositions(r.Context(), r.URL.Query().Get("departmentId"))
	if err != nil {
		api.FailError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, positions, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetPosition(w http.ResponseWriter, r *http.Request) {
	pos, err := h.Service.GetPosition(r.Context(), chi.URLParam(r, "positionID"))
	if err != nil {
		api.FailError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, pos, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreatePosition(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	reqID := middleware.GetRequestID(r.Context())
	var payload positionPayload
	if !shared.DecodeJSON(w, r, &payload, reqID) {
		return
	}
	if !auth.CanManagePosition(user.Actor(), payload.DepartmentID) {
		forbidden(w, r)
		return
	}
	pos, err := h.Service.CreatePosition(r.Context(), core.Position{Title: payload.Title, Description: payload.Description, DepartmentID: payload.DepartmentID})
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	h.record(r, audit.ActionCreate, "position", pos.ID, nil, pos)
	api.Created(w, pos, reqID)
}

func (h *Handler) handleUpdatePosition(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	reqID := middleware.GetRequestID(r.Context())
	positionID := chi.URLParam(r, "positionID")
	var payload positionPayload
	if !shared.DecodeJSON(w, r, &payload, reqID) {
		return
	}
	before, err := h.Service.GetPosition(r.Context(), positionID)
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	if !auth.CanManagePosition(user.Actor(), before.DepartmentID) || !auth.CanManagePosition(user.Actor(), payload.DepartmentID) {
		forbidden(w, r)
		return
	}
	after := core.Position{ID: positionID, Title: payload.Title, Description: payload.Description, DepartmentID: payload.DepartmentID}
	if err := h.Service.UpdatePosition(r.Context(), positionID, after); err != nil {
		api.FailError(w, err, reqID)
		return
	}
	h.record(r, audit.ActionUpdate, "position", positionID, before, after)
	api.Success(w, map[string]string{"id": positionID}, reqID)
}

func (h *Handler) handleDeletePosition(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	reqID := middleware.GetRequestID(r.Context())
	positionID := chi.URLParam(r, "positionID")
	pos, err := h.Service.GetPosition(r.Context(), positionID)
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	if !auth.CanManagePosition(user.Actor(), pos.DepartmentID) {
		forbidden(w, r)
		return
	}
	if err := h.Service.DeletePosition(r.Context(), positionID); err != nil {
		api.FailError(w, err, reqID)
		return
	}
	h.record(r, audit.ActionDelete, "position", positionID, pos, nil)
	api.Success(w, map[string]string{"id": positionID}, reqID)
}

type employeePayload struct {
	FullName     string `json:"fullName"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	DepartmentID string `json:"departmentId"`
	PositionID   string `json:"positionId"`
	IPAddress    string `json:"ipAddress"`
	HireDate     string `json:"hireDate"`
	Password     string `json:"password"`
	IsActive     *bool  `json:"isActive"`
}

// toInput converts the payload; a nil IsActive means active.
func (p employeePayload) toInput(v *shared.Validator) (core.EmployeeInput, auth.Role) {
	role, err := auth.ParseRole(p.Role)
	if err != nil {
		v.Add("role", "must be one of admin, manager, employee")
	}
	in := core.EmployeeInput{
		FullName:     p.FullName,
		Email:        p.Email,
		Role:         role,
		DepartmentID: p.DepartmentID,
		PositionID:   p.PositionID,
		IPAddress:    p.IPAddress,
		Password:     p.Password,
		IsActive:     p.IsActive == nil || *p.IsActive,
	}
	if p.HireDate != "" {
		if hired, ok := v.Date("hireDate", p.HireDate); ok {
			in.HireDate = &hired
		}
	}
	return in, role
}

// handleListEmployees limits non-admins to their own department.
func (h *Handler) handleListEmployees(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	actor := user.Actor()
	page := shared.ParsePagination(r, 100, 500)
	filter := core.EmployeeFilter{
		DepartmentID: r.URL.Query().Get("departmentId"),
		ActiveOnly:   r.URL.Query().Get("active") == "true",
		Limit:        page.Limit,
		Offset:       page.Offset,
	}
	if actor.Role != auth.RoleAdmin {
		if filter.DepartmentID != "" && !auth.CanViewDepartment(actor, filter.DepartmentID) {
			forbidden(w, r)
			return
		}
		filter.DepartmentID = actor.DepartmentID
	}

	employees, err := h.Service.ListEmployees(r.Context(), filter)
	if err != nil {
		api.FailError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	for i := range employees {
		core.FilterEmployeeFields(&employees[i], actor)
	}
	api.Success(w, employees, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetEmployee(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	emp, err := h.Service.GetEmployee(r.Context(), chi.URLParam(r, "employeeID"))
	if err != nil {
		api.FailError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	core.FilterEmployeeFields(&emp, user.Actor())
	api.Success(w, emp, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateEmployee(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	actor := user.Actor()
	reqID := middleware.GetRequestID(r.Context())
	var payload employeePayload
	if !shared.DecodeJSON(w, r, &payload, reqID) {
		return
	}
	v := shared.NewValidator()
	in, role := payload.toInput(v)
	if v.Reject(w, reqID) {
		return
	}
	if !auth.CanAssignRole(actor, role) || !auth.CanModifyEmployee(actor, auth.Subject{Role: role, DepartmentID: in.DepartmentID}) {
		forbidden(w, r)
		return
	}

	emp, err := h.Service.CreateEmployee(r.Context(), in)
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	h.record(r, audit.ActionCreate, "employee", emp.ID, nil, emp)
	api.Created(w, emp, reqID)
}

func (h *Handler) handleUpdateEmployee(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	actor := user.Actor()
	reqID := middleware.GetRequestID(r.Context())
	employeeID := chi.URLParam(r, "employeeID")

	before, err := h.Service.GetEmployee(r.Context(), employeeID)
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	if !auth.CanModifyEmployee(actor, before.Subject()) {
		forbidden(w, r)
		return
	}

	var payload employeePayload
	if !shared.DecodeJSON(w, r, &payload, reqID) {
		return
	}
	v := shared.NewValidator()
	in, role := payload.toInput(v)
	if v.Reject(w, reqID) {
		return
	}
	if !auth.CanAssignRole(actor, role) || !auth.CanModifyEmployee(actor, auth.Subject{EmployeeID: employeeID, Role: role, DepartmentID: in.DepartmentID}) {
		forbidden(w, r)
		return
	}

	emp, err := h.Service.UpdateEmployee(r.Context(), employeeID, in)
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	h.record(r, audit.ActionUpdate, "employee", employeeID, before, emp)
	api.Success(w, emp, reqID)
}

func (h *Handler) handleDeleteEmployee(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	reqID := middleware.GetRequestID(r.Context())
	employeeID := chi.URLParam(r, "employeeID")
	emp, err := h.Service.GetEmployee(r.Context(), employeeID)
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	if !auth.CanModifyEmployee(user.Actor(), emp.Subject()) {
		forbidden(w, r)
		return
	}
	if err := h.Service.DeleteEmployee(r.Context(), employeeID); err != nil {
		api.FailError(w, err, reqID)
		return
	}
	h.record(r, audit.ActionDelete, "employee", employeeID, emp, nil)
	api.Success(w, map[string]string{"id": employeeID}, reqID)
}

func (h *Handler) handleSetActive(active bool) http.HandlerFunc {
	action := audit.ActionDeactivate
	if active {
		action = audit.ActionActivate
	}
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := middleware.GetUser(r.Context())
		reqID := middleware.GetRequestID(r.Context())
		employeeID := chi.URLParam(r, "employeeID")
		emp, err := h.Service.GetEmployee(r.Context(), employeeID)
		if err != nil {
			api.FailError(w, err, reqID)
			return
		}
		if !auth.CanModifyEmployee(user.Actor(), emp.Subject()) {
			forbidden(w, r)
			return
		}
		if err := h.Service.SetEmployeeActive(r.Context(), employeeID, active); err != nil {
			api.FailError(w, err, reqID)
			return
		}
		h.record(r, action, "employee", employeeID, nil, map[string]string{"isActive": strconv.FormatBool(active)})
		api.Success(w, map[string]any{"id": employeeID, "isActive": active}, reqID)
	}
}
