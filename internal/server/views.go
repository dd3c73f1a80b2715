package server

import (
	"time"

	"github.com/musegen/muse-server/internal/storage"
)

// View types keep wire shapes stable and keep the password hash and the raw
// per-admin read map off the wire.

type userView struct {
	ID          int64      `json:"id"`
	Email       string     `json:"email"`
	DisplayName string     `json:"display_name"`
	PhotoURL    string     `json:"photo_url,omitempty"`
	Role        string     `json:"role"`
	Credits     int64      `json:"credits"`
	Language    string     `json:"language,omitempty"`
	Country     string     `json:"country,omitempty"`
	Status      string     `json:"status,omitempty"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func toUserView(u *storage.User) userView {
	return userView{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		PhotoURL:    u.PhotoURL,
		Role:        string(u.Role),
		Credits:     u.Credits,
		Language:    u.Language,
		Country:     u.Country,
		Status:      u.Status,
		DateOfBirth: u.DateOfBirth,
		CreatedAt:   u.CreatedAt,
	}
}

type artifactView struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"user_id"`
	Kind      string    `json:"kind"`
	Prompt    string    `json:"prompt"`
	URL       string    `json:"url"`
	Public    bool      `json:"public"`
	CreatedAt time.Time `json:"created_at"`
}

func toArtifactView(a *storage.Artifact) artifactView {
	return artifactView{
		ID:        a.ID,
		UserID:    a.UserID,
		Kind:      string(a.Kind),
		Prompt:    a.Prompt,
		URL:       a.URL,
		Public:    a.Public,
		CreatedAt: a.CreatedAt,
	}
}

func toArtifactViews(list []storage.Artifact) []artifactView {
	out := make([]artifactView, len(list))
	for i := range list {
		out[i] = toArtifactView(&list[i])
	}
	return out
}

type purchaseView struct {
	ID          string    `json:"id"`
	UserID      int64     `json:"user_id"`
	Email       string    `json:"email"`
	Credits     int64     `json:"credits"`
	PriceCents  int64     `json:"price_cents"`
	Status      string    `json:"status"`
	Provisional bool      `json:"provisional"`
	BankRef     string    `json:"bank_ref,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toPurchaseView(p *storage.PurchaseRecord) purchaseView {
	return purchaseView{
		ID:          p.ID,
		UserID:      p.UserID,
		Email:       p.Email,
		Credits:     p.Credits,
		PriceCents:  p.PriceCents,
		Status:      string(p.Status),
		Provisional: p.Provisional,
		BankRef:     p.BankRef,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func toPurchaseViews(list []storage.PurchaseRecord) []purchaseView {
	out := make([]purchaseView, len(list))
	for i := range list {
		out[i] = toPurchaseView(&list[i])
	}
	return out
}

type notificationView struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Link      string    `json:"link,omitempty"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

func toNotificationViews(list []storage.Notification) []notificationView {
	out := make([]notificationView, len(list))
	for i, n := range list {
		out[i] = notificationView{
			ID:        n.ID,
			Message:   n.Message,
			Link:      n.Link,
			Read:      n.Read,
			CreatedAt: n.CreatedAt,
		}
	}
	return out
}

type adminNotificationView struct {
	ID         string    `json:"id"`
	PurchaseID string    `json:"purchase_id,omitempty"`
	Message    string    `json:"message"`
	Read       bool      `json:"read"`
	CreatedAt  time.Time `json:"created_at"`
}

// toAdminNotificationViews resolves the shared ReadBy map into a per-viewer
// read flag.
func toAdminNotificationViews(list []storage.AdminNotification, adminID int64) []adminNotificationView {
	out := make([]adminNotificationView, len(list))
	for i := range list {
		n := &list[i]
		out[i] = adminNotificationView{
			ID:         n.ID,
			PurchaseID: n.PurchaseID,
			Message:    n.Message,
			Read:       n.ReadByAdmin(adminID),
			CreatedAt:  n.CreatedAt,
		}
	}
	return out
}

type ticketMessageView struct {
	ID         int64     `json:"id"`
	SenderID   int64     `json:"sender_id"`
	SenderRole string    `json:"sender_role"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"created_at"`
}

type ticketView struct {
	ID        string              `json:"id"`
	UserID    int64               `json:"user_id"`
	Subject   string              `json:"subject"`
	Status    string              `json:"status"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
	Messages  []ticketMessageView `json:"messages,omitempty"`
}

func toTicketView(t *storage.SupportTicket) ticketView {
	view := ticketView{
		ID:        t.ID,
		UserID:    t.UserID,
		Subject:   t.Subject,
		Status:    string(t.Status),
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
	for _, m := range t.Messages {
		view.Messages = append(view.Messages, ticketMessageView{
			ID:         m.ID,
			SenderID:   m.SenderID,
			SenderRole: string(m.SenderRole),
			Body:       m.Body,
			CreatedAt:  m.CreatedAt,
		})
	}
	return view
}

func toTicketViews(list []storage.SupportTicket) []ticketView {
	out := make([]ticketView, len(list))
	for i := range list {
		out[i] = toTicketView(&list[i])
	}
	return out
}
