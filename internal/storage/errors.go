package storage

import "errors"

var (
	// ErrNotFound is returned when a referenced record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrInsufficientCredits is returned when a conditional debit would
	// leave the balance negative. No mutation happens in that case.
	ErrInsufficientCredits = errors.New("insufficient credits")
	// ErrTicketClosed is returned when appending a message to a closed ticket.
	ErrTicketClosed = errors.New("ticket is closed")
	// ErrEmailTaken is returned when registering an already-used email.
	ErrEmailTaken = errors.New("email already registered")
)
