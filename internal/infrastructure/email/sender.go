// Package email delivers transactional email through Resend.
package email

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/resend/resend-go/v2"
	"github.com/seafresh/backend/internal/domain/notification"
	"github.com/seafresh/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// ResendSender implements notification.EmailSender with the Resend API
type ResendSender struct {
	client *resend.Client
	from   string
	logger *zap.Logger
}

var _ notification.EmailSender = (*ResendSender)(nil)

// NewResendSender creates a sender; baseURL may be empty
func NewResendSender(cfg config.EmailConfig, baseURL string, logger *zap.Logger) (*ResendSender, error) {
	if cfg.ResendAPIKey == "" {
		return nil, errors.New("email: resend api key is required")
	}
	if cfg.From == "" {
		return nil, errors.New("email: from address is required")
	}
	client := resend.NewClient(cfg.ResendAPIKey)
	if baseURL != "" {
		u, err := url.Parse(baseURL)
		if err != nil {
			return nil, fmt.Errorf("email: invalid base url: %w", err)
		}
		client.BaseURL = u
	}
	return &ResendSender{client: client, from: cfg.From, logger: logger.Named("email")}, nil
}

// Send delivers msg
func (s *ResendSender) Send(ctx context.Context, msg notification.EmailMessage) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	sent, err := s.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    s.from,
		To:      msg.To,
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
		ReplyTo: msg.ReplyTo,
	})
	if err != nil {
		s.logger.Warn("Email delivery failed",
			zap.Strings("to", msg.To),
			zap.String("subject", msg.Subject),
			zap.Error(err))
		return fmt.Errorf("email: send: %w", err)
	}
	s.logger.Debug("Email sent", zap.String("id", sent.Id), zap.String("subject", msg.Subject))
	return nil
}

// LogSender writes emails to the log instead of delivering them.
// Used when no Resend key is configured.
type LogSender struct {
	logger *zap.Logger
}

var _ notification.EmailSender = (*LogSender)(nil)

// NewLogSender creates a LogSender
func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger.Named("email")}
}

// Send logs msg
func (s *LogSender) Send(_ context.Context, msg notification.EmailMessage) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	s.logger.Info("Email (not delivered, no provider configured)",
		zap.Strings("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("reply_to", msg.ReplyTo),
		zap.String("text", msg.Text))
	return nil
}

// NewSender picks the Resend sender when a key is configured
func NewSender(cfg config.EmailConfig, logger *zap.Logger) (notification.EmailSender, error) {
	if cfg.ResendAPIKey == "" {
		logger.Warn("RESEND API key not set, emails will only be logged")
		return NewLogSender(logger), nil
	}
	return NewResendSender(cfg, "", logger)
}
