package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateTicket opens a ticket with its first message in one transaction.
func (s *Store) CreateTicket(ctx context.Context, userID int64, subject, body string) (*SupportTicket, error) {
	ticket := SupportTicket{
		ID:      uuid.NewString(),
		UserID:  userID,
		Subject: subject,
		Status:  TicketOpen,
	}
	err := s.Transaction(ctx, func(tx *Store) error {
		if err := tx.db.Create(&ticket).Error; err != nil {
			return fmt.Errorf("create ticket: %w", err)
		}
		msg := TicketMessage{
			TicketID:   ticket.ID,
			SenderID:   userID,
			SenderRole: RoleUser,
			Body:       body,
		}
		if err := tx.db.Create(&msg).Error; err != nil {
			return fmt.Errorf("create ticket message: %w", err)
		}
		ticket.Messages = []TicketMessage{msg}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (s *Store) GetTicket(ctx context.Context, id string) (*SupportTicket, error) {
	var ticket SupportTicket
	err := s.db.WithContext(ctx).
		Preload("Messages", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Where("id = ?", id).First(&ticket).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query ticket: %w", err)
	}
	return &ticket, nil
}

func (s *Store) ListTickets(ctx context.Context, userID int64) ([]SupportTicket, error) {
	var tickets []SupportTicket
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("updated_at DESC").Find(&tickets).Error
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	return tickets, nil
}

func (s *Store) ListAllTickets(ctx context.Context, status TicketStatus) ([]SupportTicket, error) {
	q := s.db.WithContext(ctx).Model(&SupportTicket{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var tickets []SupportTicket
	if err := q.Order("updated_at DESC").Find(&tickets).Error; err != nil {
		return nil, fmt.Errorf("list all tickets: %w", err)
	}
	return tickets, nil
}

// AppendTicketMessage adds a message while the ticket is open. Closed
// tickets reject new messages.
func (s *Store) AppendTicketMessage(ctx context.Context, ticketID string, senderID int64, role Role, body string) (*TicketMessage, error) {
	var msg TicketMessage
	err := s.Transaction(ctx, func(tx *Store) error {
		var ticket SupportTicket
		err := tx.db.Where("id = ?", ticketID).First(&ticket).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("query ticket: %w", err)
		}
		if ticket.Status != TicketOpen {
			return ErrTicketClosed
		}
		msg = TicketMessage{
			TicketID:   ticketID,
			SenderID:   senderID,
			SenderRole: role,
			Body:       body,
		}
		if err := tx.db.Create(&msg).Error; err != nil {
			return fmt.Errorf("create ticket message: %w", err)
		}
		// Bump updated_at so the ticket resorts to the top of the queue.
		if err := tx.db.Model(&SupportTicket{}).Where("id = ?", ticketID).
			Update("updated_at", gorm.Expr("CURRENT_TIMESTAMP")).Error; err != nil {
			return fmt.Errorf("touch ticket: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

func (s *Store) SetTicketStatus(ctx context.Context, ticketID string, status TicketStatus) (*SupportTicket, error) {
	res := s.db.WithContext(ctx).Model(&SupportTicket{}).
		Where("id = ?", ticketID).Update("status", status)
	if res.Error != nil {
		return nil, fmt.Errorf("set ticket status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return s.GetTicket(ctx, ticketID)
}
