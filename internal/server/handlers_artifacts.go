package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/musegen/muse-server/internal/storage"
)

func (s *Server) handleListArtifacts(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.ListArtifacts(r.Context(), userFrom(r.Context()).ID)
	if err != nil {
		s.writeInternal(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toArtifactViews(list))
}

func (s *Server) handleArtifactVisibility(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Public bool `json:"public"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.writeBadRequest(w, "invalid request body")
		return
	}

	artifact, err := s.store.SetArtifactVisibility(r.Context(),
		chi.URLParam(r, "id"), userFrom(r.Context()).ID, req.Public)
	if errors.Is(err, storage.ErrNotFound) {
		s.writeError(w, r, http.StatusNotFound, "not_found", "toast_not_found")
		return
	}
	if err != nil {
		s.writeInternal(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toArtifactView(artifact))
}

// handleFeed is the public gallery: shared artifacts, no session required.
func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			s.writeBadRequest(w, "limit must be a non-negative integer")
			return
		}
		limit = n
	}
	list, err := s.store.ListPublicArtifacts(r.Context(), limit)
	if err != nil {
		s.writeInternal(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toArtifactViews(list))
}
