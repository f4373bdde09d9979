package api

import (
	"errors"
	"net/http"

	"github.com/alexanderramin/issueflow/internal/domain"
)

// transitionErrorBody is the 409 payload for a rejected status change.
type transitionErrorBody struct {
	Error         string   `json:"error"`
	Reason        string   `json:"reason"`
	ValidStatuses []string `json:"valid_statuses"`
}

// writeServiceError maps engine errors onto HTTP status codes.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var terr *domain.TransitionError
	switch {
	case errors.As(err, &terr):
		valid := terr.ValidStatuses
		if valid == nil {
			valid = []string{}
		}
		writeJSON(w, http.StatusConflict, transitionErrorBody{
			Error:         domain.ErrIllegalTransition.Error(),
			Reason:        terr.Reason(),
			ValidStatuses: valid,
		})
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidRelationship):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, domain.ErrIllegalTransition):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
