package notification

import (
	"context"
	"strings"

	"github.com/seafresh/backend/internal/domain/shared"
)

// EmailMessage is an outgoing transactional email
type EmailMessage struct {
	To      []string
	Subject string
	HTML    string
	Text    string
	ReplyTo string
}

// Validate checks the message has a recipient, subject and body
func (m EmailMessage) Validate() error {
	if len(m.To) == 0 {
		return shared.NewDomainError("INVALID_EMAIL", "Email needs at least one recipient")
	}
	for _, to := range m.To {
		if strings.TrimSpace(to) == "" {
			return shared.NewDomainError("INVALID_EMAIL", "Email recipient cannot be empty")
		}
	}
	if strings.TrimSpace(m.Subject) == "" {
		return shared.NewDomainError("INVALID_EMAIL", "Email subject cannot be empty")
	}
	if m.HTML == "" && m.Text == "" {
		return shared.NewDomainError("INVALID_EMAIL", "Email body cannot be empty")
	}
	return nil
}

// EmailSender delivers transactional email
type EmailSender interface {
	Send(ctx context.Context, msg EmailMessage) error
}

// Pusher delivers a notification to a user's open realtime connections
type Pusher interface {
	Push(userID string, n *Notification)
}
