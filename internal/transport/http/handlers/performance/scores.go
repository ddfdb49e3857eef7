package performancehandler

import (
	"net/http"

	"evalportal/internal/domain/auth"
	"evalportal/internal/domain/performance"
	"evalportal/internal/transport/http/api"
	"evalportal/internal/transport/http/middleware"
	"evalportal/internal/transport/http/shared"
)

type submitPayload struct {
	EmployeeID string                   `json:"employeeId"`
	CycleID    string                   `json:"cycleId"`
	Entries    []performance.ScoreEntry `json:"entries"`
}

// handleSubmitScores saves what it can and reports the rest per entry; the
// caller always becomes the evaluator.
func (h *Handler) handleSubmitScores(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	reqID := middleware.GetRequestID(r.Context())
	var payload submitPayload
	if !shared.DecodeJSON(w, r, &payload, reqID) {
		return
	}
	v := shared.NewValidator()
	v.Required("employeeId", payload.EmployeeID, "is required")
	if len(payload.Entries) == 0 {
		v.Add("entries", "at least one score is required")
	}
	if v.Reject(w, reqID) {
		return
	}

	allowed, err := h.canEvaluate(r, payload.EmployeeID)
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	if !allowed {
		forbidden(w, r)
		return
	}

	result, err := h.Service.SubmitScores(r.Context(), performance.Submission{
		EmployeeID:  payload.EmployeeID,
		CycleID:     payload.CycleID,
		EvaluatorID: user.EmployeeID,
		Entries:     payload.Entries,
	})
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	api.Success(w, result, reqID)
}

// handleListScores shows employees only the records they are subject or
// evaluator of.
func (h *Handler) handleListScores(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	q := r.URL.Query()
	page := shared.ParsePagination(r, 100, 1000)
	filter := performance.ScoreFilter{
		CycleID:     q.Get("cycleId"),
		EmployeeID:  q.Get("employeeId"),
		EvaluatorID: q.Get("evaluatorId"),
		Limit:       page.Limit,
		Offset:      page.Offset,
	}
	if user.Role == auth.RoleEmployee && filter.EvaluatorID != user.EmployeeID {
		filter.EmployeeID = user.EmployeeID
	}

	scores, err := h.Service.ListScores(r.Context(), filter)
	if err != nil {
		api.FailError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, scores, middleware.GetRequestID(r.Context()))
}
