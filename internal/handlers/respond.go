package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Niklauzi/lyte/internal/auth"
	"github.com/Niklauzi/lyte/internal/database"
	"github.com/Niklauzi/lyte/internal/reaction"
)

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondDomainError maps sentinel errors onto HTTP statuses; anything
// unrecognized is logged and reported as a generic server failure.
func (h *Handler) respondDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, database.ErrNotFound), errors.Is(err, reaction.ErrPostNotFound):
		respondError(w, http.StatusNotFound, "not found")
	case errors.Is(err, reaction.ErrInvalidAction):
		respondError(w, http.StatusBadRequest, "action must be like or dislike")
	case errors.Is(err, database.ErrUsernameTaken):
		respondError(w, http.StatusConflict, "username already taken")
	case errors.Is(err, auth.ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, auth.ErrSessionExpired):
		respondError(w, http.StatusUnauthorized, "invalid or expired token")
	default:
		h.log.Error().Err(err).Msg("request failed")
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// postID extracts the {postID} route parameter.
func postID(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "postID"))
	return id, err == nil && id > 0
}

func decodeJSON(r *http.Request, dst any) error {
	return json.NewDecoder(r.Body).Decode(dst)
}
