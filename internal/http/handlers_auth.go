package http

import (
	"errors"
	"net/http"
	"strings"

	"grana/internal/auth"
	"grana/internal/core"
	applog "grana/internal/log"
	"grana/internal/services"
)

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	Token  string `json:"token"`
	UserID int64  `json:"user_id"`
}

// handleRegister creates a user, seeds the default categories and returns a
// token so the client is logged in immediately.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := s.validateStruct(req); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	// Uniqueness is enforced by the store, so concurrent registrations of
	// the same email cannot both succeed.
	userID, err := s.users.CreateUser(r.Context(), core.User{
		Email:        req.Email,
		PasswordHash: hash,
	})
	if errors.Is(err, services.ErrDuplicateEmail) {
		respondError(w, http.StatusConflict, "email already registered")
		return
	}
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.categories.SeedDefaults(r.Context(), userID)

	token, err := s.tokens.GenerateToken(userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	applog.FromContext(r.Context()).Info("User registered", applog.FieldOwnerID, userID)
	respondJSON(w, http.StatusCreated, authResponse{Token: token, UserID: userID})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := s.validateStruct(req); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	user, err := s.users.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			respondError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		writeServiceError(w, r, err)
		return
	}
	if err := auth.CheckPassword(user.PasswordHash, req.Password); err != nil {
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := s.tokens.GenerateToken(user.ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	applog.FromContext(r.Context()).Info("User logged in", applog.FieldOwnerID, user.ID)
	respondJSON(w, http.StatusOK, authResponse{Token: token, UserID: user.ID})
}
