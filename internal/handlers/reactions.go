package handlers

import (
	"net/http"

	"github.com/Niklauzi/lyte/internal/middleware"
	"github.com/Niklauzi/lyte/internal/reaction"
)

// reactionResponse extends the engine result with the caller's own flags, so
// clients can update their buttons without a second request.
type reactionResponse struct {
	reaction.Result
	UserLiked    bool `json:"user_liked"`
	UserDisliked bool `json:"user_disliked"`
}

// react builds the handler for one fixed action; /like and /dislike share
// everything but the action they apply.
func (h *Handler) react(action reaction.Action) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := postID(r)
		if !ok {
			respondError(w, http.StatusBadRequest, "invalid post id")
			return
		}

		user, _ := middleware.UserFrom(r.Context())
		result, err := h.engine.Apply(r.Context(), id, user.ID, action)
		if err != nil {
			h.respondDomainError(w, err)
			return
		}

		h.hub.Broadcast(Event{
			"type":     "post_reaction",
			"post_id":  id,
			"likes":    result.Likes,
			"dislikes": result.Dislikes,
		})
		respondJSON(w, http.StatusOK, reactionResponse{
			Result:       result,
			UserLiked:    result.State == reaction.Liked,
			UserDisliked: result.State == reaction.Disliked,
		})
	}
}
