package feedbackhandler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"evalportal/internal/domain/auth"
	"evalportal/internal/domain/feedback"
	"evalportal/internal/transport/http/api"
	"evalportal/internal/transport/http/middleware"
	"evalportal/internal/transport/http/shared"
)

type Handler struct {
	Service *feedback.Service
}

func NewHandler(service *feedback.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/feedback", func(r chi.Router) {
		r.Use(middleware.RequirePermission(auth.PermFeedbackWrite))
		r.Get("/types", h.handleListTypes)
		r.Get("/received", h.handleListReceived)
		r.Get("/sent", h.handleListSent)
		r.Post("/", h.handleSend)
	})
}

func (h *Handler) handleListTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.Service.ListTypes(r.Context())
	if err != nil {
		api.FailError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, types, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSend(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	reqID := middleware.GetRequestID(r.Context())
	var payload feedback.Input
	if !shared.DecodeJSON(w, r, &payload, reqID) {
		return
	}
	id, err := h.Service.Send(r.Context(), user.EmployeeID, payload)
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	api.Created(w, map[string]string{"id": id}, reqID)
}

func (h *Handler) handleListReceived(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	page := shared.ParsePagination(r, 50, 200)
	items, err := h.Service.ListReceived(r.Context(), user.EmployeeID, page.Limit, page.Offset)
	if err != nil {
		api.FailError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, items, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListSent(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	page := shared.ParsePagination(r, 50, 200)
	items, err := h.Service.ListSent(r.Context(), user.EmployeeID, page.Limit, page.Offset)
	if err != nil {
		api.FailError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, items, middleware.GetRequestID(r.Context()))
}
