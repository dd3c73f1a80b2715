package storage

import (
	"encoding/json"
	"time"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User is an account with a metered credit balance. The role lives on the
// record and is checked server-side before privileged mutations.
type User struct {
	ID           int64  `gorm:"primaryKey;autoIncrement"`
	Email        string `gorm:"uniqueIndex;size:255;not null"`
	DisplayName  string `gorm:"size:255"`
	PasswordHash string `gorm:"size:255;not null"`
	PhotoURL     string
	Role         Role   `gorm:"size:16;not null;default:user"`
	Credits      int64  `gorm:"not null;default:0"`
	Language     string `gorm:"size:16"`
	Country      string `gorm:"size:64"`
	Status       string `gorm:"size:32"`
	DateOfBirth  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Session struct {
	Token     string `gorm:"primaryKey;size:64"`
	UserID    int64  `gorm:"index;not null"`
	ExpiresAt time.Time
	CreatedAt time.Time
}

type ArtifactKind string

const (
	ArtifactImage  ArtifactKind = "image"
	ArtifactSpeech ArtifactKind = "speech"
	ArtifactStory  ArtifactKind = "story"
	ArtifactVideo  ArtifactKind = "video"
)

// Artifact is a stored generation result. URL points at the uploaded object.
type Artifact struct {
	ID        string       `gorm:"primaryKey;size:36"`
	UserID    int64        `gorm:"index;not null"`
	Kind      ArtifactKind `gorm:"size:16;not null"`
	Prompt    string
	URL       string
	Public    bool `gorm:"index;not null;default:false"`
	CreatedAt time.Time
}

type PurchaseStatus string

const (
	PurchasePending  PurchaseStatus = "pending"
	PurchasePaid     PurchaseStatus = "paid"
	PurchaseRejected PurchaseStatus = "rejected"
)

// PurchaseRecord tracks a credit purchase. Credits and price are structured
// columns; rejection claw-backs read Credits directly instead of parsing the
// human-readable message.
type PurchaseRecord struct {
	ID         string         `gorm:"primaryKey;size:36"`
	UserID     int64          `gorm:"index;not null"`
	Email      string         `gorm:"size:255"`
	Credits    int64          `gorm:"not null"`
	PriceCents int64          `gorm:"not null"`
	Message    string
	Status     PurchaseStatus `gorm:"size:16;index;not null"`
	// Provisional marks an optimistic grant: credits were added when the
	// record was created and must be clawed back on rejection.
	Provisional bool `gorm:"not null;default:false"`
	BankRef     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Notification is a user-scoped notification with a boolean read flag.
type Notification struct {
	ID        string `gorm:"primaryKey;size:36"`
	UserID    int64  `gorm:"index;not null"`
	Message   string
	Link      string
	Read      bool `gorm:"not null;default:false"`
	CreatedAt time.Time
}

// AdminNotification is broadcast to all operators. Each admin tracks read
// state independently in the ReadBy map, serialised as JSON.
type AdminNotification struct {
	ID         string `gorm:"primaryKey;size:36"`
	PurchaseID string `gorm:"index;size:36"`
	Message    string
	ReadBy     string `gorm:"not null;default:'{}'"`
	CreatedAt  time.Time
}

func (n *AdminNotification) ReadByMap() map[int64]bool {
	m := make(map[int64]bool)
	if n.ReadBy != "" {
		_ = json.Unmarshal([]byte(n.ReadBy), &m)
	}
	return m
}

func (n *AdminNotification) SetReadBy(m map[int64]bool) {
	data, err := json.Marshal(m)
	if err != nil {
		n.ReadBy = "{}"
		return
	}
	n.ReadBy = string(data)
}

// ReadByAdmin reports whether the given admin already marked this read.
func (n *AdminNotification) ReadByAdmin(adminID int64) bool {
	return n.ReadByMap()[adminID]
}

type TicketStatus string

const (
	TicketOpen   TicketStatus = "open"
	TicketClosed TicketStatus = "closed"
)

type SupportTicket struct {
	ID        string       `gorm:"primaryKey;size:36"`
	UserID    int64        `gorm:"index;not null"`
	Subject   string       `gorm:"size:255"`
	Status    TicketStatus `gorm:"size:16;index;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Messages []TicketMessage `gorm:"foreignKey:TicketID"`
}

type TicketMessage struct {
	ID         int64  `gorm:"primaryKey;autoIncrement"`
	TicketID   string `gorm:"index;size:36;not null"`
	SenderID   int64  `gorm:"not null"`
	SenderRole Role   `gorm:"size:16;not null"`
	Body       string
	CreatedAt  time.Time
}
