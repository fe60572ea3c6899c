package api

import (
	"errors"
	"net/http"
	"time"

	respond "github.com/repofit/repofit-backend/internal/api/respond"
	"github.com/repofit/repofit-backend/internal/model"
)

// quotaDeniedResponse is the 429 body. ResetsAt tells the client when
// the allowance replenishes.
type quotaDeniedResponse struct {
	Error     string    `json:"error"`
	Code      int       `json:"code"`
	Message   string    `json:"message"`
	Remaining int       `json:"remaining"`
	ResetsAt  time.Time `json:"resetsAt"`
}

// writeServiceError maps domain errors to HTTP status codes.
func writeServiceError(w http.ResponseWriter, err error) {
	var denied *model.QuotaDeniedError
	switch {
	case errors.As(err, &denied):
		respond.WriteJSON(w, http.StatusTooManyRequests, quotaDeniedResponse{
			Error:     http.StatusText(http.StatusTooManyRequests),
			Code:      http.StatusTooManyRequests,
			Message:   "monthly analysis quota exhausted",
			Remaining: denied.Decision.Remaining,
			ResetsAt:  denied.Decision.ResetsAt,
		})
	case errors.Is(err, model.ErrValidation):
		respond.WriteBadRequest(w, err.Error())
	case errors.Is(err, model.ErrNotFound):
		respond.WriteNotFound(w, err.Error())
	case errors.Is(err, model.ErrGenerationFailed):
		respond.WriteError(w, http.StatusBadGateway, "description generation unavailable")
	default:
		respond.WriteInternalError(w, err.Error())
	}
}
