package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/Niklauzi/lyte/internal/auth"
	"github.com/Niklauzi/lyte/internal/database"
	"github.com/Niklauzi/lyte/internal/middleware"
	"github.com/Niklauzi/lyte/internal/models"
)

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3,max=30,alphanumunicode"`
	Password string `json:"password" validate:"required"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type anonymousRequest struct {
	DeviceID string `json:"device_id" validate:"required,min=8,max=128"`
	Username string `json:"username"  validate:"omitempty,min=3,max=30"`
}

type sessionResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

// Register creates a credentialed account and logs it in.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, "username and password are required")
		return
	}
	if err := auth.ValidatePasswordStrength(req.Password); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}

	user, err := h.store.CreateUser(r.Context(), req.Username, hash)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}

	h.issueSession(w, r, user, http.StatusCreated)
}

// Login checks credentials and issues a fresh token. Unknown usernames and
// wrong passwords are indistinguishable to the caller.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	user, err := h.store.UserByUsername(r.Context(), req.Username)
	if errors.Is(err, database.ErrNotFound) {
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	if auth.VerifyPassword(user.PasswordHash, req.Password) != nil {
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	h.issueSession(w, r, user, http.StatusOK)
}

// Anonymous registers or resumes a device-keyed account. Reposting the same
// device_id returns the same user with a fresh token.
func (h *Handler) Anonymous(w http.ResponseWriter, r *http.Request) {
	var req anonymousRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, "device_id is required")
		return
	}
	if req.Username == "" {
		req.Username = "guest-" + req.DeviceID[:8]
	}

	user, err := h.store.GetOrCreateAnonymous(r.Context(), req.DeviceID, req.Username)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}

	h.issueSession(w, r, user, http.StatusOK)
}

// Me returns the authenticated user.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFrom(r.Context())
	respondJSON(w, http.StatusOK, user)
}

func (h *Handler) issueSession(w http.ResponseWriter, r *http.Request, user *models.User, status int) {
	session, err := h.sessions.Create(r.Context(), user.ID)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	respondJSON(w, status, sessionResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		User:      user,
	})
}
