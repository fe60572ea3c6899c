package api

import (
	"encoding/json"
	"net/http"

	respond "github.com/repofit/repofit-backend/internal/api/respond"
	"github.com/repofit/repofit-backend/internal/services"
)

// DescriptionHandler is a thin HTTP transport over DescriptionService.
type DescriptionHandler struct {
	svc *services.DescriptionService
}

func NewDescriptionHandler(svc *services.DescriptionService) *DescriptionHandler {
	return &DescriptionHandler{svc: svc}
}

// GenerateDescription POST /v1/descriptions
func (h *DescriptionHandler) GenerateDescription(w http.ResponseWriter, r *http.Request) {
	id, ok := identityFrom(r)
	if !ok {
		respond.WriteUnauthorized(w, "no identity")
		return
	}

	var req struct {
		RepoURL      string `json:"repoUrl"`
		RepoSummary  string `json:"repoSummary"`
		JobPosting   string `json:"jobPosting"`
		ReferenceURL string `json:"referenceUrl"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	if req.RepoURL == "" || req.JobPosting == "" {
		respond.WriteBadRequest(w, "repoUrl and jobPosting are required")
		return
	}
	if len(req.JobPosting) > maxPostingLength {
		respond.WriteBadRequest(w, "jobPosting exceeds maximum length")
		return
	}

	out, err := h.svc.Generate(r.Context(), services.DescriptionRequest{
		UserID:       id.UserID,
		RepoURL:      req.RepoURL,
		RepoSummary:  req.RepoSummary,
		JobPosting:   req.JobPosting,
		ReferenceURL: req.ReferenceURL,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, out)
}
