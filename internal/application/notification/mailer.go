package notification

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"

	"github.com/seafresh/backend/internal/domain/contact"
	"github.com/seafresh/backend/internal/domain/notification"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// MailerConfig holds the shop details used in email templates
type MailerConfig struct {
	ShopName     string
	ClientURL    string
	InboxAddress string
}

// Mailer renders and sends the storefront's transactional emails
type Mailer struct {
	sender    notification.EmailSender
	config    MailerConfig
	templates *template.Template
	printer   *message.Printer
}

// OrderEmail is the data behind an order update email
type OrderEmail struct {
	To           string
	CustomerName string
	OrderNumber  string
	OrderID      string
	Headline     string
	Body         string
	Amount       decimal.Decimal
}

const emailTemplates = `
{{define "layout"}}<!DOCTYPE html>
<html><body style="font-family:Arial,sans-serif;background:#f4f8fb;padding:24px">
<table width="100%" style="max-width:560px;margin:auto;background:#fff;border-radius:8px;padding:24px">
<tr><td><h2 style="color:#0b5394;margin-top:0">{{.Shop}}</h2>{{template "content" .}}
<p style="color:#888;font-size:12px;margin-top:32px">{{.Shop}} &middot; <a href="{{.ClientURL}}">{{.ClientURL}}</a></p></td></tr>
</table></body></html>{{end}}

{{define "order_content"}}<p>Hi {{.Data.CustomerName}},</p>
<p><strong>{{.Data.Headline}}</strong></p>
<p>{{.Data.Body}}</p>
{{if .Amount}}<p>Amount: <strong>{{.Amount}}</strong></p>{{end}}
<p><a href="{{.ClientURL}}/orders/{{.Data.OrderID}}" style="background:#0b5394;color:#fff;padding:10px 16px;border-radius:4px;text-decoration:none">View order {{.Data.OrderNumber}}</a></p>{{end}}

{{define "contact_received_content"}}<p>New message from <strong>{{.Data.Name}}</strong> &lt;{{.Data.Email}}&gt;{{if .Data.Phone}} ({{.Data.Phone}}){{end}}</p>
<p><strong>{{.Data.Subject}}</strong></p>
<p style="white-space:pre-wrap">{{.Data.Body}}</p>{{end}}

{{define "contact_reply_content"}}<p>Hi {{.Data.Name}},</p>
<p style="white-space:pre-wrap">{{.Data.Reply}}</p>
<hr><p style="color:#888">You wrote:</p>
<p style="color:#888;white-space:pre-wrap">{{.Data.Body}}</p>{{end}}
`

type emailView struct {
	Shop      string
	ClientURL string
	Amount    string
	Data      any
}

// NewMailer creates a Mailer
func NewMailer(sender notification.EmailSender, config MailerConfig) *Mailer {
	if config.ShopName == "" {
		config.ShopName = "SeaFresh"
	}
	config.ClientURL = strings.TrimRight(config.ClientURL, "/")
	return &Mailer{
		sender:    sender,
		config:    config,
		templates: template.Must(template.New("emails").Parse(emailTemplates)),
		printer:   message.NewPrinter(language.MustParse("en-IN")),
	}
}

// FormatINR formats an amount as rupees with Indian digit grouping
func (m *Mailer) FormatINR(amount decimal.Decimal) string {
	f, _ := amount.Round(2).Float64()
	return m.printer.Sprintf("₹%.2f", f)
}

func (m *Mailer) render(content string, view emailView) (string, error) {
	t, err := m.templates.Clone()
	if err != nil {
		return "", err
	}
	if _, err := t.New("content").Parse(`{{template "` + content + `" .}}`); err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", view); err != nil {
		return "", fmt.Errorf("render %s: %w", content, err)
	}
	return buf.String(), nil
}

func (m *Mailer) view(data any) emailView {
	return emailView{Shop: m.config.ShopName, ClientURL: m.config.ClientURL, Data: data}
}

// SendOrderUpdate emails a customer about their order
func (m *Mailer) SendOrderUpdate(ctx context.Context, e OrderEmail) error {
	v := m.view(e)
	if e.Amount.IsPositive() {
		v.Amount = m.FormatINR(e.Amount)
	}
	html, err := m.render("order_content", v)
	if err != nil {
		return err
	}
	return m.sender.Send(ctx, notification.EmailMessage{
		To:      []string{e.To},
		Subject: fmt.Sprintf("%s: %s", e.Headline, e.OrderNumber),
		HTML:    html,
		Text:    fmt.Sprintf("Hi %s,\n\n%s\n%s\n\n%s/orders/%s", e.CustomerName, e.Headline, e.Body, m.config.ClientURL, e.OrderID),
	})
}

// SendContactReceived forwards a contact message to the shop inbox
func (m *Mailer) SendContactReceived(ctx context.Context, msg *contact.Message) error {
	if m.config.InboxAddress == "" {
		return nil
	}
	html, err := m.render("contact_received_content", m.view(msg))
	if err != nil {
		return err
	}
	return m.sender.Send(ctx, notification.EmailMessage{
		To:      []string{m.config.InboxAddress},
		Subject: "Contact form: " + msg.Subject,
		HTML:    html,
		Text:    fmt.Sprintf("From: %s <%s> %s\n\n%s", msg.Name, msg.Email, msg.Phone, msg.Body),
		ReplyTo: msg.Email,
	})
}

// SendContactReply emails the admin's reply to the sender of a contact message
func (m *Mailer) SendContactReply(ctx context.Context, msg *contact.Message) error {
	html, err := m.render("contact_reply_content", m.view(msg))
	if err != nil {
		return err
	}
	return m.sender.Send(ctx, notification.EmailMessage{
		To:      []string{msg.Email},
		Subject: "Re: " + msg.Subject,
		HTML:    html,
		Text:    fmt.Sprintf("Hi %s,\n\n%s\n\n> %s", msg.Name, msg.Reply, msg.Body),
		ReplyTo: m.config.InboxAddress,
	})
}
