package server

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// apiError is the toast payload clients render directly.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorEnvelope struct {
	Error apiError `json:"error"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Warn("write response", zap.Error(err))
	}
}

// writeError emits the toast envelope with a message localized for the
// request's account language (falling back to the default locale for
// anonymous requests).
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, code, i18nKey string, args ...interface{}) {
	lang := s.i18n.DefaultLanguage()
	if user := userFrom(r.Context()); user != nil && user.Language != "" {
		lang = user.Language
	}
	s.writeJSON(w, status, errorEnvelope{Error: apiError{
		Code:    code,
		Message: s.i18n.T(lang, i18nKey, args...),
	}})
}

// writeBadRequest is for malformed input where a raw message beats a
// localized toast.
func (s *Server) writeBadRequest(w http.ResponseWriter, message string) {
	s.writeJSON(w, http.StatusBadRequest, errorEnvelope{Error: apiError{
		Code:    "bad_request",
		Message: message,
	}})
}

func (s *Server) writeInternal(w http.ResponseWriter, r *http.Request, err error) {
	s.log.Error("request failed",
		zap.String("path", r.URL.Path),
		zap.Error(err))
	s.writeJSON(w, http.StatusInternalServerError, errorEnvelope{Error: apiError{
		Code:    "internal",
		Message: "internal server error",
	}})
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
