package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/musegen/muse-server/internal/purchase"
	"github.com/musegen/muse-server/internal/storage"
)

func (s *Server) handleAdminListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.store.ListUsers(r.Context())
	if err != nil {
		s.writeInternal(w, r, err)
		return
	}
	views := make([]userView, len(users))
	for i := range users {
		views[i] = toUserView(&users[i])
	}
	s.writeJSON(w, http.StatusOK, views)
}

// handleAdminAdjustCredits grants or removes credits manually. Positive
// delta credits, negative claws back.
func (s *Server) handleAdminAdjustCredits(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		s.writeBadRequest(w, "invalid user id")
		return
	}
	var req struct {
		Delta int64 `json:"delta"`
	}
	if err := decodeJSON(r, &req); err != nil || req.Delta == 0 {
		s.writeBadRequest(w, "delta must be a non-zero integer")
		return
	}

	if req.Delta > 0 {
		err = s.store.Credit(r.Context(), userID, req.Delta)
	} else {
		err = s.store.ClawBack(r.Context(), userID, -req.Delta)
	}
	if errors.Is(err, storage.ErrNotFound) {
		s.writeError(w, r, http.StatusNotFound, "not_found", "toast_not_found")
		return
	}
	if err != nil {
		s.writeInternal(w, r, err)
		return
	}

	s.log.Info("admin adjusted credits",
		zap.Int64("admin_id", userFrom(r.Context()).ID),
		zap.Int64("user_id", userID),
		zap.Int64("delta", req.Delta))

	user, err := s.store.UserByID(r.Context(), userID)
	if err != nil {
		s.writeInternal(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toUserView(user))
}

func (s *Server) handleAdminDeleteUser(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		s.writeBadRequest(w, "invalid user id")
		return
	}
	if userID == userFrom(r.Context()).ID {
		s.writeBadRequest(w, "cannot delete your own account")
		return
	}
	err = s.store.DeleteUser(r.Context(), userID)
	if errors.Is(err, storage.ErrNotFound) {
		s.writeError(w, r, http.StatusNotFound, "not_found", "toast_not_found")
		return
	}
	if err != nil {
		s.writeInternal(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleAdminListPurchases(w http.ResponseWriter, r *http.Request) {
	status := storage.PurchaseStatus(r.URL.Query().Get("status"))
	list, err := s.purchases.ReviewQueue(r.Context(), status)
	if err != nil {
		s.writeInternal(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toPurchaseViews(list))
}

func (s *Server) handleAdminSetPurchaseStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.writeBadRequest(w, "invalid request body")
		return
	}

	rec, err := s.purchases.SetStatus(r.Context(), userFrom(r.Context()).ID,
		chi.URLParam(r, "id"), storage.PurchaseStatus(req.Status))
	if errors.Is(err, storage.ErrNotFound) {
		s.writeError(w, r, http.StatusNotFound, "not_found", "toast_not_found")
		return
	}
	if errors.Is(err, purchase.ErrInvalidTransition) {
		s.writeJSON(w, http.StatusConflict, errorEnvelope{Error: apiError{
			Code:    "invalid_transition",
			Message: "this status change is not allowed",
		}})
		return
	}
	if err != nil {
		s.writeInternal(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toPurchaseView(rec))
}

func (s *Server) handleAdminListTickets(w http.ResponseWriter, r *http.Request) {
	status := storage.TicketStatus(r.URL.Query().Get("status"))
	list, err := s.tickets.ListAll(r.Context(), status)
	if err != nil {
		s.writeInternal(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toTicketViews(list))
}

func (s *Server) handleAdminSetTicketStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.writeBadRequest(w, "invalid request body")
		return
	}
	status := storage.TicketStatus(req.Status)
	if status != storage.TicketOpen && status != storage.TicketClosed {
		s.writeBadRequest(w, "status must be open or closed")
		return
	}

	ticket, err := s.tickets.SetStatus(r.Context(), chi.URLParam(r, "id"), status)
	if errors.Is(err, storage.ErrNotFound) {
		s.writeError(w, r, http.StatusNotFound, "not_found", "toast_not_found")
		return
	}
	if err != nil {
		s.writeInternal(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toTicketView(ticket))
}

// handleAdminTicketReply lets admins answer any ticket, not just their own.
func (s *Server) handleAdminTicketReply(w http.ResponseWriter, r *http.Request) {
	s.appendTicketMessage(w, r, chi.URLParam(r, "id"), userFrom(r.Context()))
}

// handleAdminBroadcast writes the same notification to every account.
func (s *Server) handleAdminBroadcast(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Message string `json:"message"`
		Link    string `json:"link"`
	}
	if err := decodeJSON(r, &req); err != nil || req.Message == "" {
		s.writeBadRequest(w, "message is required")
		return
	}

	users, err := s.store.ListUsers(r.Context())
	if err != nil {
		s.writeInternal(w, r, err)
		return
	}
	sent := 0
	for i := range users {
		if err := s.notify.NotifyUser(r.Context(), users[i].ID, req.Message, req.Link); err != nil {
			s.log.Warn("broadcast delivery failed",
				zap.Int64("user_id", users[i].ID), zap.Error(err))
			continue
		}
		sent++
	}
	s.writeJSON(w, http.StatusOK, map[string]int{"sent": sent})
}
