package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/seafresh/backend/internal/domain/contact"
	"github.com/seafresh/backend/internal/domain/notification"
)

// NotificationModel is the persistence model for an in-app notification.
type NotificationModel struct {
	BaseModel
	UserID  uuid.UUID         `gorm:"type:uuid;not null;index:idx_notifications_user_read,priority:1"`
	Type    notification.Type `gorm:"type:varchar(20);not null"`
	Title   string            `gorm:"type:varchar(200);not null"`
	Message string            `gorm:"type:varchar(2000);not null"`
	Link    string            `gorm:"type:varchar(500)"`
	IsRead  bool              `gorm:"not null;default:false;index:idx_notifications_user_read,priority:2"`
	ReadAt  *time.Time
}

// TableName returns the table name for GORM
func (NotificationModel) TableName() string {
	return "notifications"
}

// ToDomain converts the persistence model to a domain Notification.
func (m *NotificationModel) ToDomain() *notification.Notification {
	return &notification.Notification{
		BaseEntity: m.BaseModel.ToDomain(),
		UserID:     m.UserID,
		Type:       m.Type,
		Title:      m.Title,
		Message:    m.Message,
		Link:       m.Link,
		IsRead:     m.IsRead,
		ReadAt:     m.ReadAt,
	}
}

// FromDomain populates the persistence model from a domain Notification.
func (m *NotificationModel) FromDomain(n *notification.Notification) {
	m.FromDomainBaseEntity(n.BaseEntity)
	m.UserID = n.UserID
	m.Type = n.Type
	m.Title = n.Title
	m.Message = n.Message
	m.Link = n.Link
	m.IsRead = n.IsRead
	m.ReadAt = n.ReadAt
}

// ContactMessageModel is the persistence model for a contact form message.
type ContactMessageModel struct {
	BaseModel
	Name      string         `gorm:"type:varchar(100);not null"`
	Email     string         `gorm:"type:varchar(254);not null"`
	Phone     string         `gorm:"type:varchar(20)"`
	Subject   string         `gorm:"type:varchar(200);not null"`
	Body      string         `gorm:"type:text;not null"`
	Status    contact.Status `gorm:"type:varchar(10);not null;default:'new';index"`
	Reply     string         `gorm:"type:text"`
	RepliedAt *time.Time
	RepliedBy *uuid.UUID `gorm:"type:uuid"`
	UserID    *uuid.UUID `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (ContactMessageModel) TableName() string {
	return "contact_messages"
}

// ToDomain converts the persistence model to a domain Message.
func (m *ContactMessageModel) ToDomain() *contact.Message {
	return &contact.Message{
		BaseEntity: m.BaseModel.ToDomain(),
		Name:       m.Name,
		Email:      m.Email,
		Phone:      m.Phone,
		Subject:    m.Subject,
		Body:       m.Body,
		Status:     m.Status,
		Reply:      m.Reply,
		RepliedAt:  m.RepliedAt,
		RepliedBy:  m.RepliedBy,
		UserID:     m.UserID,
	}
}

// FromDomain populates the persistence model from a domain Message.
func (m *ContactMessageModel) FromDomain(msg *contact.Message) {
	m.FromDomainBaseEntity(msg.BaseEntity)
	m.Name = msg.Name
	m.Email = msg.Email
	m.Phone = msg.Phone
	m.Subject = msg.Subject
	m.Body = msg.Body
	m.Status = msg.Status
	m.Reply = msg.Reply
	m.RepliedAt = msg.RepliedAt
	m.RepliedBy = msg.RepliedBy
	m.UserID = msg.UserID
}
