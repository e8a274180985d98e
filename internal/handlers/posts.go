package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Niklauzi/lyte/internal/images"
	"github.com/Niklauzi/lyte/internal/middleware"
	"github.com/Niklauzi/lyte/internal/reaction"
)

// Multipart bodies are capped well above what a handful of images needs.
const maxUploadBytes = 32 << 20

// ListPosts returns the feed, newest first, with per-viewer reaction flags
// when the request carries a valid token.
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	views, err := h.engine.ListViews(r.Context(), viewerID(r))
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, views)
}

// GetPost returns the aggregated view of one post.
func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	id, ok := postID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid post id")
		return
	}

	view, err := h.engine.PostView(r.Context(), id, viewerID(r))
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// CreatePost accepts a multipart form with title, content and optional image
// files. Admin only.
func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFrom(r.Context())

	title, content, refs, ok := h.postForm(w, r, nil)
	if !ok {
		return
	}

	post, err := h.store.CreatePost(r.Context(), user.ID, title, content, refs)
	if err != nil {
		h.images.Remove(refs)
		h.respondDomainError(w, err)
		return
	}

	view, err := h.engine.PostView(r.Context(), post.ID, user.ID)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}

	h.hub.Broadcast(Event{"type": "post_created", "post": view})
	respondJSON(w, http.StatusCreated, view)
}

// UpdatePost replaces title, content and the image set. Previously attached
// images listed under keep_images survive; everything else is deleted from
// disk after the row update commits.
func (h *Handler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	id, ok := postID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid post id")
		return
	}

	existing, err := h.store.PostByID(r.Context(), id)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}

	kept := map[string]bool{}
	for _, ref := range existing.Images {
		kept[ref] = true
	}

	title, content, refs, ok := h.postForm(w, r, func(keep []string) []string {
		merged := []string{}
		for _, ref := range keep {
			if kept[ref] {
				merged = append(merged, ref)
			}
		}
		return merged
	})
	if !ok {
		return
	}

	if err := h.store.UpdatePost(r.Context(), id, title, content, refs); err != nil {
		h.respondDomainError(w, err)
		return
	}

	// Drop the files no longer referenced by the post.
	keptNow := map[string]bool{}
	for _, ref := range refs {
		keptNow[ref] = true
	}
	removed := []string{}
	for _, ref := range existing.Images {
		if !keptNow[ref] {
			removed = append(removed, ref)
		}
	}
	h.images.Remove(removed)

	view, err := h.engine.PostView(r.Context(), id, viewerID(r))
	if err != nil {
		h.respondDomainError(w, err)
		return
	}

	h.hub.Broadcast(Event{"type": "post_updated", "post": view})
	respondJSON(w, http.StatusOK, view)
}

// DeletePost removes the post, its comments, reactions and image files.
func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	id, ok := postID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid post id")
		return
	}

	refs, err := h.store.DeletePost(r.Context(), id)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	h.images.Remove(refs)

	h.hub.Broadcast(Event{"type": "post_deleted", "post_id": id})
	respondJSON(w, http.StatusOK, map[string]string{"message": "post deleted"})
}

// postForm parses the multipart body shared by create and update: title,
// content, uploaded "images" files and, on update, the "keep_images" refs to
// carry over (filtered by mergeKept). Saved files are cleaned up again if a
// later part of the form turns out invalid.
func (h *Handler) postForm(w http.ResponseWriter, r *http.Request, mergeKept func([]string) []string) (title, content string, refs []string, ok bool) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondError(w, http.StatusBadRequest, "expected multipart form data")
		return "", "", nil, false
	}

	title = strings.TrimSpace(r.FormValue("title"))
	content = strings.TrimSpace(r.FormValue("content"))
	if title == "" || content == "" {
		respondError(w, http.StatusBadRequest, "title and content are required")
		return "", "", nil, false
	}

	refs = []string{}
	if mergeKept != nil {
		refs = mergeKept(r.Form["keep_images"])
	}

	saved := []string{}
	if r.MultipartForm != nil {
		for _, fh := range r.MultipartForm.File["images"] {
			ref, err := h.images.Save(fh)
			if errors.Is(err, images.ErrUnsupportedType) {
				h.images.Remove(saved)
				respondError(w, http.StatusBadRequest, "unsupported image type")
				return "", "", nil, false
			}
			if err != nil {
				h.images.Remove(saved)
				h.respondDomainError(w, err)
				return "", "", nil, false
			}
			saved = append(saved, ref)
		}
	}
	return title, content, append(refs, saved...), true
}

// viewerID resolves the optional viewer for read endpoints.
func viewerID(r *http.Request) int {
	if user, ok := middleware.UserFrom(r.Context()); ok {
		return user.ID
	}
	return reaction.AnonymousViewer
}
