package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/musegen/muse-server/internal/auth"
	"github.com/musegen/muse-server/internal/storage"
)

type sessionResponse struct {
	Token string   `json:"token"`
	User  userView `json:"user"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email       string `json:"email"`
		Password    string `json:"password"`
		DisplayName string `json:"display_name"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.writeBadRequest(w, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		s.writeBadRequest(w, "email and password are required")
		return
	}

	user, token, err := s.auth.Register(r.Context(), req.Email, req.Password, req.DisplayName)
	if errors.Is(err, storage.ErrEmailTaken) {
		s.writeJSON(w, http.StatusConflict, errorEnvelope{Error: apiError{
			Code:    "email_taken",
			Message: "an account with this email already exists",
		}})
		return
	}
	if err != nil {
		s.writeBadRequest(w, err.Error())
		return
	}
	s.writeJSON(w, http.StatusCreated, sessionResponse{Token: token, User: toUserView(user)})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.writeBadRequest(w, "invalid request body")
		return
	}

	user, token, err := s.auth.Login(r.Context(), req.Email, req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		s.writeJSON(w, http.StatusUnauthorized, errorEnvelope{Error: apiError{
			Code:    "invalid_credentials",
			Message: "invalid email or password",
		}})
		return
	}
	if err != nil {
		s.writeInternal(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, sessionResponse{Token: token, User: toUserView(user)})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.auth.Logout(r.Context(), tokenFrom(r.Context())); err != nil {
		s.writeInternal(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusNoContent, nil)
}

// handleMe re-reads the account so the credit balance is fresh, not the
// value cached at session resolution.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, err := s.store.UserByID(r.Context(), userFrom(r.Context()).ID)
	if err != nil {
		s.writeInternal(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toUserView(user))
}

func (s *Server) handleUpdateMe(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DisplayName *string `json:"display_name"`
		PhotoURL    *string `json:"photo_url"`
		Language    *string `json:"language"`
		Country     *string `json:"country"`
		Status      *string `json:"status"`
		DateOfBirth *string `json:"date_of_birth"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.writeBadRequest(w, "invalid request body")
		return
	}

	upd := storage.ProfileUpdate{
		DisplayName: req.DisplayName,
		PhotoURL:    req.PhotoURL,
		Language:    req.Language,
		Country:     req.Country,
		Status:      req.Status,
	}
	if req.DateOfBirth != nil {
		dob, err := time.Parse("2006-01-02", *req.DateOfBirth)
		if err != nil {
			s.writeBadRequest(w, "date_of_birth must be YYYY-MM-DD")
			return
		}
		upd.DateOfBirth = &dob
	}

	user, err := s.store.UpdateProfile(r.Context(), userFrom(r.Context()).ID, upd)
	if err != nil {
		s.writeInternal(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toUserView(user))
}
