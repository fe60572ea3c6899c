package api

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	respond "github.com/repofit/repofit-backend/internal/api/respond"
	"github.com/repofit/repofit-backend/internal/services"
)

const defaultHistoryLimit = 20

// HistoryHandler exposes a user's generated-description records.
type HistoryHandler struct {
	svc *services.HistoryService
}

func NewHistoryHandler(svc *services.HistoryService) *HistoryHandler {
	return &HistoryHandler{svc: svc}
}

// ListHistory GET /v1/history
func (h *HistoryHandler) ListHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := identityFrom(r)
	if !ok {
		respond.WriteUnauthorized(w, "no identity")
		return
	}

	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			respond.WriteBadRequest(w, "limit must be a positive integer")
			return
		}
		limit = n
	}

	recs, err := h.svc.List(r.Context(), id.UserID, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"records": recs, "count": len(recs)})
}

// GetHistory GET /v1/history/{recordId}
func (h *HistoryHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := identityFrom(r)
	if !ok {
		respond.WriteUnauthorized(w, "no identity")
		return
	}
	rec, err := h.svc.Get(r.Context(), id.UserID, mux.Vars(r)["recordId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, rec)
}

// DeleteHistory DELETE /v1/history/{recordId}
func (h *HistoryHandler) DeleteHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := identityFrom(r)
	if !ok {
		respond.WriteUnauthorized(w, "no identity")
		return
	}
	if err := h.svc.Delete(r.Context(), id.UserID, mux.Vars(r)["recordId"]); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
