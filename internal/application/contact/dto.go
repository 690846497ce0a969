package contact

import (
	"time"

	"github.com/google/uuid"
	"github.com/seafresh/backend/internal/domain/contact"
)

// SubmitMessageRequest is the public contact form
type SubmitMessageRequest struct {
	Name    string `json:"name" binding:"required,min=1,max=100"`
	Email   string `json:"email" binding:"required,email"`
	Phone   string `json:"phone" binding:"max=20"`
	Subject string `json:"subject" binding:"max=200"`
	Message string `json:"message" binding:"required,min=10,max=5000"`
}

// ReplyRequest is an admin reply to a contact message
type ReplyRequest struct {
	Reply string `json:"reply" binding:"required,min=1,max=5000"`
}

// MessageListFilter represents filter options for the admin inbox
type MessageListFilter struct {
	Status   string `form:"status" binding:"omitempty,oneof=new read replied"`
	Search   string `form:"search"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// MessageResponse represents a contact message in API responses
type MessageResponse struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Phone     string     `json:"phone,omitempty"`
	Subject   string     `json:"subject"`
	Message   string     `json:"message"`
	Status    string     `json:"status"`
	Reply     string     `json:"reply,omitempty"`
	RepliedAt *time.Time `json:"replied_at,omitempty"`
	RepliedBy *uuid.UUID `json:"replied_by,omitempty"`
	UserID    *uuid.UUID `json:"user_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// ReplyResponse is returned after an admin reply
type ReplyResponse struct {
	MessageResponse
	EmailSent bool `json:"email_sent"`
}

// ToMessageResponse converts a domain Message to MessageResponse
func ToMessageResponse(m *contact.Message) MessageResponse {
	return MessageResponse{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		Phone:     m.Phone,
		Subject:   m.Subject,
		Message:   m.Body,
		Status:    string(m.Status),
		Reply:     m.Reply,
		RepliedAt: m.RepliedAt,
		RepliedBy: m.RepliedBy,
		UserID:    m.UserID,
		CreatedAt: m.CreatedAt,
	}
}

// ToMessageResponses converts a slice of messages
func ToMessageResponses(items []*contact.Message) []MessageResponse {
	responses := make([]MessageResponse, len(items))
	for i, m := range items {
		responses[i] = ToMessageResponse(m)
	}
	return responses
}
