package server

import (
	"errors"
	"net/http"

	"github.com/musegen/muse-server/internal/generate"
	"github.com/musegen/muse-server/internal/storage"
)

type generateRequest struct {
	Prompt string `json:"prompt"`
	Text   string `json:"text"`
	Size   string `json:"size"`
	Voice  string `json:"voice"`
}

func (s *Server) handleGenerateAvatar(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := decodeJSON(r, &req); err != nil || req.Prompt == "" {
		s.writeBadRequest(w, "prompt is required")
		return
	}
	user := userFrom(r.Context())
	artifact, err := s.generate.Avatar(r.Context(), user.ID, req.Prompt, req.Size)
	s.respondGeneration(w, r, artifact, err)
}

func (s *Server) handleGenerateSpeech(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := decodeJSON(r, &req); err != nil || req.Text == "" {
		s.writeBadRequest(w, "text is required")
		return
	}
	user := userFrom(r.Context())
	artifact, err := s.generate.Speech(r.Context(), user.ID, req.Text, req.Voice)
	s.respondGeneration(w, r, artifact, err)
}

func (s *Server) handleGenerateStory(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := decodeJSON(r, &req); err != nil || req.Prompt == "" {
		s.writeBadRequest(w, "prompt is required")
		return
	}
	user := userFrom(r.Context())
	artifact, err := s.generate.Story(r.Context(), user.ID, req.Prompt)
	s.respondGeneration(w, r, artifact, err)
}

func (s *Server) handleGenerateVideo(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := decodeJSON(r, &req); err != nil || req.Prompt == "" {
		s.writeBadRequest(w, "prompt is required")
		return
	}
	user := userFrom(r.Context())
	artifact, err := s.generate.Video(r.Context(), user.ID, req.Prompt)
	s.respondGeneration(w, r, artifact, err)
}

// respondGeneration maps the spend-then-generate outcomes: 402 when the
// balance never covered the cost, 502 with a classified toast when the
// provider failed after the debit (credits already refunded by then).
func (s *Server) respondGeneration(w http.ResponseWriter, r *http.Request, artifact *storage.Artifact, err error) {
	if err == nil {
		s.writeJSON(w, http.StatusCreated, toArtifactView(artifact))
		return
	}
	if errors.Is(err, storage.ErrInsufficientCredits) {
		s.writeError(w, r, http.StatusPaymentRequired, "insufficient_credits", "toast_insufficient_credits")
		return
	}
	var genErr *generate.Error
	if errors.As(err, &genErr) {
		s.writeError(w, r, http.StatusBadGateway,
			"generation_failed_"+string(genErr.Reason), toastKeyFor(genErr.Reason))
		return
	}
	s.writeInternal(w, r, err)
}

func toastKeyFor(reason generate.FailureReason) string {
	switch reason {
	case generate.ReasonQuota:
		return "toast_generation_failed_quota"
	case generate.ReasonBilling:
		return "toast_generation_failed_billing"
	case generate.ReasonInvalidParameter:
		return "toast_generation_failed_invalid"
	default:
		return "toast_generation_failed_unknown"
	}
}
