package api

import (
	"encoding/json"
	"net/http"

	respond "github.com/repofit/repofit-backend/internal/api/respond"
	"github.com/repofit/repofit-backend/internal/services"
)

// maxPostingLength bounds the job posting text accepted over HTTP.
const maxPostingLength = 50000

// AnalysisHandler is a thin HTTP transport over AnalysisService.
type AnalysisHandler struct {
	svc *services.AnalysisService
}

func NewAnalysisHandler(svc *services.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{svc: svc}
}

// AnalyzeJobPosting POST /v1/analyses
func (h *AnalysisHandler) AnalyzeJobPosting(w http.ResponseWriter, r *http.Request) {
	id, ok := identityFrom(r)
	if !ok {
		respond.WriteUnauthorized(w, "no identity")
		return
	}

	var req struct {
		Text         string `json:"text"`
		ReferenceURL string `json:"referenceUrl"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	if req.Text == "" {
		respond.WriteBadRequest(w, "text is required")
		return
	}
	if len(req.Text) > maxPostingLength {
		respond.WriteBadRequest(w, "text exceeds maximum length")
		return
	}

	out, err := h.svc.AnalyzeJobPosting(r.Context(), id.UserID, req.Text, req.ReferenceURL)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}
