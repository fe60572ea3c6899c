package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	respond "github.com/repofit/repofit-backend/internal/api/respond"
	"github.com/repofit/repofit-backend/internal/model"
	"github.com/repofit/repofit-backend/internal/quota"
)

// QuotaHandler exposes quota inspection and tier administration.
type QuotaHandler struct {
	ledger *quota.Ledger
}

func NewQuotaHandler(ledger *quota.Ledger) *QuotaHandler {
	return &QuotaHandler{ledger: ledger}
}

// GetQuota GET /v1/quota
// Read-only: never consumes an allowance unit.
func (h *QuotaHandler) GetQuota(w http.ResponseWriter, r *http.Request) {
	id, ok := identityFrom(r)
	if !ok {
		respond.WriteUnauthorized(w, "no identity")
		return
	}
	view, err := h.ledger.ViewFor(r.Context(), id.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, view)
}

// SetTier PUT /v1/admin/users/{userId}/tier
func (h *QuotaHandler) SetTier(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]
	var req struct {
		Tier string `json:"tier"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	if err := h.ledger.SetTier(r.Context(), userID, model.Tier(req.Tier)); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
