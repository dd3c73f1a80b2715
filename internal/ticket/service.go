// Package ticket implements the support ticket workflow.
package ticket

import (
	"context"

	"go.uber.org/zap"

	"github.com/musegen/muse-server/internal/i18n"
	"github.com/musegen/muse-server/internal/notify"
	"github.com/musegen/muse-server/internal/storage"
)

type Service struct {
	store  *storage.Store
	notify *notify.Service
	i18n   *i18n.Manager
	log    *zap.Logger
}

func NewService(store *storage.Store, notifier *notify.Service, i18nManager *i18n.Manager, log *zap.Logger) *Service {
	return &Service{
		store:  store,
		notify: notifier,
		i18n:   i18nManager,
		log:    log.Named("ticket"),
	}
}

// Open creates a ticket with its first message and alerts the admins.
func (s *Service) Open(ctx context.Context, user *storage.User, subject, body string) (*storage.SupportTicket, error) {
	ticket, err := s.store.CreateTicket(ctx, user.ID, subject, body)
	if err != nil {
		return nil, err
	}
	msg := s.i18n.T(s.i18n.DefaultLanguage(), "notify_admin_new_ticket",
		"Email", user.Email, "Subject", subject)
	if err := s.notify.NotifyAdmins(ctx, "", msg); err != nil {
		s.log.Warn("notify admins about new ticket", zap.String("ticket_id", ticket.ID), zap.Error(err))
	}
	return ticket, nil
}

// Reply appends a message while the ticket is open. Admin replies notify
// the ticket owner.
func (s *Service) Reply(ctx context.Context, ticketID string, sender *storage.User, body string) (*storage.TicketMessage, error) {
	msg, err := s.store.AppendTicketMessage(ctx, ticketID, sender.ID, sender.Role, body)
	if err != nil {
		return nil, err
	}

	if sender.Role == storage.RoleAdmin {
		ticket, err := s.store.GetTicket(ctx, ticketID)
		if err == nil && ticket.UserID != sender.ID {
			if owner, err := s.store.UserByID(ctx, ticket.UserID); err == nil {
				note := s.i18n.T(owner.Language, "notify_support_reply", "Subject", ticket.Subject)
				if err := s.notify.NotifyUser(ctx, owner.ID, note, "/tickets/"+ticket.ID); err != nil {
					s.log.Warn("notify ticket owner", zap.String("ticket_id", ticketID), zap.Error(err))
				}
			}
		}
	}
	return msg, nil
}

// SetStatus opens or closes a ticket. Admin-only; enforced by the caller's
// role middleware.
func (s *Service) SetStatus(ctx context.Context, ticketID string, status storage.TicketStatus) (*storage.SupportTicket, error) {
	return s.store.SetTicketStatus(ctx, ticketID, status)
}

func (s *Service) Get(ctx context.Context, ticketID string) (*storage.SupportTicket, error) {
	return s.store.GetTicket(ctx, ticketID)
}

func (s *Service) ListForUser(ctx context.Context, userID int64) ([]storage.SupportTicket, error) {
	return s.store.ListTickets(ctx, userID)
}

func (s *Service) ListAll(ctx context.Context, status storage.TicketStatus) ([]storage.SupportTicket, error) {
	return s.store.ListAllTickets(ctx, status)
}
