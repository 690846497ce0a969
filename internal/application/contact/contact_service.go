package contact

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/seafresh/backend/internal/domain/contact"
	"go.uber.org/zap"
)

// Mailer sends the contact form emails
type Mailer interface {
	SendContactReceived(ctx context.Context, msg *contact.Message) error
	SendContactReply(ctx context.Context, msg *contact.Message) error
}

// ContactService handles contact form submissions and the admin inbox
type ContactService struct {
	repo   contact.Repository
	mailer Mailer
	logger *zap.Logger
	now    func() time.Time
}

// NewContactService creates a new ContactService
func NewContactService(repo contact.Repository, mailer Mailer, logger *zap.Logger) *ContactService {
	return &ContactService{
		repo:   repo,
		mailer: mailer,
		logger: logger,
		now:    time.Now,
	}
}

// Submit stores a contact message and forwards it to the shop inbox.
// userID is set when the sender is signed in.
func (s *ContactService) Submit(ctx context.Context, req SubmitMessageRequest, userID *uuid.UUID) (*MessageResponse, error) {
	msg, err := contact.NewMessage(req.Name, req.Email, req.Phone, req.Subject, req.Message, userID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, msg); err != nil {
		return nil, err
	}

	if err := s.mailer.SendContactReceived(ctx, msg); err != nil {
		s.logger.Warn("Failed to forward contact message",
			zap.String("message_id", msg.ID.String()),
			zap.Error(err))
	}

	s.logger.Info("Contact message received", zap.String("message_id", msg.ID.String()))
	resp := ToMessageResponse(msg)
	return &resp, nil
}

// List lists contact messages (admin)
func (s *ContactService) List(ctx context.Context, filter MessageListFilter) ([]MessageResponse, int64, error) {
	items, total, err := s.repo.FindAll(ctx, contact.Filter{
		Status:   contact.Status(filter.Status),
		Search:   filter.Search,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	})
	if err != nil {
		return nil, 0, err
	}
	return ToMessageResponses(items), total, nil
}

// Get returns a contact message (admin)
func (s *ContactService) Get(ctx context.Context, id uuid.UUID) (*MessageResponse, error) {
	msg, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToMessageResponse(msg)
	return &resp, nil
}

// MarkRead marks a new message as read (admin)
func (s *ContactService) MarkRead(ctx context.Context, id uuid.UUID) (*MessageResponse, error) {
	msg, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if msg.Status == contact.StatusNew {
		msg.MarkRead()
		if err := s.repo.Update(ctx, msg); err != nil {
			return nil, err
		}
	}
	resp := ToMessageResponse(msg)
	return &resp, nil
}

// Reply records an admin reply and emails it to the sender.
// The reply is kept even when the email cannot be sent.
func (s *ContactService) Reply(ctx context.Context, adminID, id uuid.UUID, req ReplyRequest) (*ReplyResponse, error) {
	msg, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := msg.RecordReply(adminID, req.Reply, s.now()); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, msg); err != nil {
		return nil, err
	}

	sent := true
	if err := s.mailer.SendContactReply(ctx, msg); err != nil {
		sent = false
		s.logger.Warn("Failed to email contact reply",
			zap.String("message_id", msg.ID.String()),
			zap.Error(err))
	}

	s.logger.Info("Contact message replied",
		zap.String("message_id", msg.ID.String()),
		zap.String("admin_id", adminID.String()))
	return &ReplyResponse{MessageResponse: ToMessageResponse(msg), EmailSent: sent}, nil
}

// Delete deletes a contact message (admin)
func (s *ContactService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// CountUnread returns the number of new messages
func (s *ContactService) CountUnread(ctx context.Context) (int64, error) {
	return s.repo.CountByStatus(ctx, contact.StatusNew)
}
