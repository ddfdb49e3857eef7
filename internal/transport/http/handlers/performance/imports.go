package performancehandler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"evalportal/internal/domain/performance"
	"evalportal/internal/platform/jobs"
	"evalportal/internal/platform/sheets"
	"evalportal/internal/transport/http/api"
	"evalportal/internal/transport/http/middleware"
)

const importEndpoint = "/imports/scores"

// handleImportScores takes a multipart "file" (CSV or XLSX) and imports it
// into the active cycle. A repeated Idempotency-Key with the same file
// replays the first report.
func (h *Handler) handleImportScores(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	reqID := middleware.GetRequestID(r.Context())

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			api.Fail(w, http.StatusRequestEntityTooLarge, "payload_too_large", "upload too large", reqID)
			return
		}
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "multipart field \"file\" is required", reqID)
		return
	}
	defer file.Close()

	format, err := sheets.FormatFromFilename(header.Filename)
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	content, err := io.ReadAll(file)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "could not read upload", reqID)
		return
	}

	key := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	hash := middleware.RequestHash(content)
	stored, replay, err := h.Idempotency.Check(r.Context(), user.EmployeeID, importEndpoint, key, hash)
	if errors.Is(err, middleware.ErrIdempotencyConflict) {
		api.Fail(w, http.StatusConflict, "idempotency_conflict", err.Error(), reqID)
		return
	}
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	if replay {
		w.Header().Set("Idempotent-Replay", "true")
		api.Success(w, json.RawMessage(stored), reqID)
		return
	}

	rows, err := sheets.ReadImportRows(bytes.NewReader(content), format)
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}

	result, err := h.Jobs.RunNow(r.Context(), jobs.JobScoreImport, func(ctx context.Context) (any, error) {
		return h.Service.ImportScores(ctx, user.EmployeeID, performance.ImportRowsFromSheet(rows))
	})
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	report, _ := result.(performance.ImportReport)
	if err := h.Idempotency.Save(r.Context(), user.EmployeeID, importEndpoint, key, hash, report); err != nil {
		slog.Warn("import idempotency save failed", "err", err)
	}
	api.Success(w, report, reqID)
}
