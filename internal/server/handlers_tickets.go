package server

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/musegen/muse-server/internal/storage"
)

func (s *Server) handleOpenTicket(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Subject string `json:"subject"`
		Body    string `json:"body"`
	}
	if err := decodeJSON(r, &req); err != nil || req.Subject == "" || req.Body == "" {
		s.writeBadRequest(w, "subject and body are required")
		return
	}

	ticket, err := s.tickets.Open(r.Context(), userFrom(r.Context()), req.Subject, req.Body)
	if err != nil {
		s.writeInternal(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, toTicketView(ticket))
}

func (s *Server) handleListTickets(w http.ResponseWriter, r *http.Request) {
	list, err := s.tickets.ListForUser(r.Context(), userFrom(r.Context()).ID)
	if err != nil {
		s.writeInternal(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toTicketViews(list))
}

func (s *Server) handleGetTicket(w http.ResponseWriter, r *http.Request) {
	ticket, err := s.tickets.Get(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, storage.ErrNotFound) {
		s.writeError(w, r, http.StatusNotFound, "not_found", "toast_not_found")
		return
	}
	if err != nil {
		s.writeInternal(w, r, err)
		return
	}
	user := userFrom(r.Context())
	if ticket.UserID != user.ID && user.Role != storage.RoleAdmin {
		s.writeError(w, r, http.StatusForbidden, "permission_denied", "toast_permission_denied")
		return
	}
	s.writeJSON(w, http.StatusOK, toTicketView(ticket))
}

func (s *Server) handleTicketReply(w http.ResponseWriter, r *http.Request) {
	ticketID := chi.URLParam(r, "id")
	user := userFrom(r.Context())

	ticket, err := s.tickets.Get(r.Context(), ticketID)
	if errors.Is(err, storage.ErrNotFound) {
		s.writeError(w, r, http.StatusNotFound, "not_found", "toast_not_found")
		return
	}
	if err != nil {
		s.writeInternal(w, r, err)
		return
	}
	if ticket.UserID != user.ID {
		s.writeError(w, r, http.StatusForbidden, "permission_denied", "toast_permission_denied")
		return
	}
	s.appendTicketMessage(w, r, ticketID, user)
}

func (s *Server) appendTicketMessage(w http.ResponseWriter, r *http.Request, ticketID string, sender *storage.User) {
	var req struct {
		Body string `json:"body"`
	}
	if err := decodeJSON(r, &req); err != nil || req.Body == "" {
		s.writeBadRequest(w, "body is required")
		return
	}

	msg, err := s.tickets.Reply(r.Context(), ticketID, sender, req.Body)
	if errors.Is(err, storage.ErrTicketClosed) {
		s.writeJSON(w, http.StatusConflict, errorEnvelope{Error: apiError{
			Code:    "ticket_closed",
			Message: "this ticket is closed",
		}})
		return
	}
	if errors.Is(err, storage.ErrNotFound) {
		s.writeError(w, r, http.StatusNotFound, "not_found", "toast_not_found")
		return
	}
	if err != nil {
		s.writeInternal(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, ticketMessageView{
		ID:         msg.ID,
		SenderID:   msg.SenderID,
		SenderRole: string(msg.SenderRole),
		Body:       msg.Body,
		CreatedAt:  msg.CreatedAt,
	})
}
