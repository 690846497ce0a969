package contact

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/seafresh/backend/internal/domain/shared"
)

// Status tracks how far a message has been handled
type Status string

const (
	StatusNew     Status = "new"
	StatusRead    Status = "read"
	StatusReplied Status = "replied"
)

// IsValid checks if the status is valid
func (s Status) IsValid() bool {
	return s == StatusNew || s == StatusRead || s == StatusReplied
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Message is a contact form submission
type Message struct {
	shared.BaseEntity
	Name      string
	Email     string
	Phone     string
	Subject   string
	Body      string
	Status    Status
	Reply     string
	RepliedAt *time.Time
	RepliedBy *uuid.UUID
	UserID    *uuid.UUID
}

// NewMessage validates and creates a new contact message
func NewMessage(name, email, phone, subject, body string, userID *uuid.UUID) (*Message, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 100 {
		return nil, shared.NewDomainError("INVALID_NAME", "Name must be 1-100 characters")
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if !emailRegex.MatchString(email) {
		return nil, shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	phone = strings.TrimSpace(phone)
	if len(phone) > 20 {
		return nil, shared.NewDomainError("INVALID_PHONE", "Phone cannot exceed 20 characters")
	}
	subject = strings.TrimSpace(subject)
	if len(subject) > 200 {
		return nil, shared.NewDomainError("INVALID_SUBJECT", "Subject cannot exceed 200 characters")
	}
	if subject == "" {
		subject = "General enquiry"
	}
	body = strings.TrimSpace(body)
	if len(body) < 10 || len(body) > 5000 {
		return nil, shared.NewDomainError("INVALID_MESSAGE", "Message must be 10-5000 characters")
	}
	return &Message{
		BaseEntity: shared.NewBaseEntity(),
		Name:       name,
		Email:      email,
		Phone:      phone,
		Subject:    subject,
		Body:       body,
		Status:     StatusNew,
		UserID:     userID,
	}, nil
}

// MarkRead moves a new message to read
func (m *Message) MarkRead() {
	if m.Status != StatusNew {
		return
	}
	m.Status = StatusRead
	m.UpdatedAt = time.Now()
}

// RecordReply stores the admin's reply
func (m *Message) RecordReply(adminID uuid.UUID, reply string, at time.Time) error {
	reply = strings.TrimSpace(reply)
	if reply == "" || len(reply) > 5000 {
		return shared.NewDomainError("INVALID_REPLY", "Reply must be 1-5000 characters")
	}
	m.Reply = reply
	m.RepliedAt = &at
	m.RepliedBy = &adminID
	m.Status = StatusReplied
	m.UpdatedAt = at
	return nil
}

// Filter filters the admin inbox
type Filter struct {
	Status   Status
	Search   string
	Page     int
	PageSize int
}

// Offset returns the number of rows to skip
func (f Filter) Offset() int {
	if f.Page <= 1 {
		return 0
	}
	return (f.Page - 1) * f.Limit()
}

// Limit returns the page size bounded to 100
func (f Filter) Limit() int {
	if f.PageSize <= 0 {
		return 20
	}
	if f.PageSize > 100 {
		return 100
	}
	return f.PageSize
}

// Repository persists contact messages
type Repository interface {
	Create(ctx context.Context, m *Message) error
	Update(ctx context.Context, m *Message) error
	FindByID(ctx context.Context, id uuid.UUID) (*Message, error)
	FindAll(ctx context.Context, filter Filter) ([]*Message, int64, error)
	CountByStatus(ctx context.Context, status Status) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
