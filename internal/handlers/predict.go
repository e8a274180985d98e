package handlers

import (
	"net/http"

	"github.com/Niklauzi/lyte/internal/predict"
	"github.com/Niklauzi/lyte/internal/reaction"
)

// PredictEngagement forecasts engagement for one post from its current
// counters.
func (h *Handler) PredictEngagement(w http.ResponseWriter, r *http.Request) {
	id, ok := postID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid post id")
		return
	}

	view, err := h.engine.PostView(r.Context(), id, reaction.AnonymousViewer)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, struct {
		PostID int `json:"post_id"`
		predict.Engagement
	}{
		PostID:     id,
		Engagement: predict.ForEngagement(len(view.Content), view.Likes, view.CommentCount),
	})
}

// PredictTrending returns the site-wide forecast.
func (h *Handler) PredictTrending(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, predict.ForTrending())
}
