package handlers

import (
	"net/http"

	"github.com/Niklauzi/lyte/internal/middleware"
)

type commentRequest struct {
	Content string `json:"content" validate:"required,min=1,max=2000"`
}

// ListComments returns a post's comments oldest first.
func (h *Handler) ListComments(w http.ResponseWriter, r *http.Request) {
	id, ok := postID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid post id")
		return
	}

	if _, err := h.store.PostByID(r.Context(), id); err != nil {
		h.respondDomainError(w, err)
		return
	}

	comments, err := h.store.CommentsByPost(r.Context(), id)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, comments)
}

// CreateComment appends a comment for the authenticated user and broadcasts
// it with the post's new comment count.
func (h *Handler) CreateComment(w http.ResponseWriter, r *http.Request) {
	id, ok := postID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid post id")
		return
	}

	var req commentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, "content is required")
		return
	}

	user, _ := middleware.UserFrom(r.Context())
	comment, err := h.store.CreateComment(r.Context(), id, user.ID, req.Content)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}

	count, err := h.store.CommentCount(r.Context(), id)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}

	h.hub.Broadcast(Event{
		"type":          "comment_created",
		"comment":       comment,
		"comment_count": count,
	})
	respondJSON(w, http.StatusCreated, comment)
}
