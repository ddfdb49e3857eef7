package authhandler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"evalportal/internal/domain/auth"
	"evalportal/internal/domain/core"
	"evalportal/internal/transport/http/api"
	"evalportal/internal/transport/http/middleware"
	"evalportal/internal/transport/http/shared"
)

type Handler struct {
	Service *auth.Service
	Core    *core.Service
}

func NewHandler(service *auth.Service, coreSvc *core.Service) *Handler {
	return &Handler{Service: service, Core: coreSvc}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/login", h.HandleLogin)
	r.Get("/me", h.handleMe)
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var payload loginRequest
	if !shared.DecodeJSON(w, r, &payload, reqID) {
		return
	}
	v := shared.NewValidator()
	v.Required("email", payload.Email, "is required")
	v.Required("password", payload.Password, "is required")
	if v.Reject(w, reqID) {
		return
	}

	session, err := h.Service.Login(r.Context(), core.NormalizeEmail(payload.Email), payload.Password)
	if err != nil {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid email or password", reqID)
		return
	}
	api.Success(w, session, reqID)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	emp, err := h.Core.GetEmployee(r.Context(), user.EmployeeID)
	if err != nil {
		api.FailError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]any{
		"employee":    emp,
		"permissions": auth.RolePermissions[user.Role],
		"staff":       user.Role.Staff(),
		"initials":    initials(emp.FullName),
	}, middleware.GetRequestID(r.Context()))
}

func initials(fullName string) string {
	var out []rune
	for _, part := range strings.Fields(fullName) {
		for _, r := range part {
			out = append(out, r)
			break
		}
		if len(out) == 2 {
			break
		}
	}
	return strings.ToUpper(string(out))
}
