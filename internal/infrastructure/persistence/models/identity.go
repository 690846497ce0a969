package models

import (
	"time"

	"github.com/seafresh/backend/internal/domain/identity"
	"github.com/seafresh/backend/internal/domain/shared/valueobject"
)

// UserModel is the persistence model for the User aggregate.
type UserModel struct {
	AggregateModel
	Name                    string              `gorm:"type:varchar(100);not null"`
	Email                   string              `gorm:"type:varchar(254);not null;uniqueIndex"`
	PasswordHash            string              `gorm:"type:varchar(100)"`
	GoogleID                *string             `gorm:"type:varchar(64);uniqueIndex"`
	AvatarURL               string              `gorm:"type:varchar(500)"`
	Phone                   string              `gorm:"type:varchar(20)"`
	Role                    identity.Role       `gorm:"type:varchar(10);not null;default:'user'"`
	Status                  identity.UserStatus `gorm:"type:varchar(10);not null;default:'active';index"`
	DefaultAddress          valueobject.Address `gorm:"type:jsonb;serializer:json"`
	LastLoginAt             *time.Time
	LastSpinTime            *time.Time
	LastOrderCompletionTime *time.Time
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain User.
func (m *UserModel) ToDomain() *identity.User {
	u := &identity.User{
		BaseAggregateRoot:       m.ToAggregateRoot(),
		Name:                    m.Name,
		Email:                   m.Email,
		PasswordHash:            m.PasswordHash,
		AvatarURL:               m.AvatarURL,
		Phone:                   m.Phone,
		Role:                    m.Role,
		Status:                  m.Status,
		DefaultAddress:          m.DefaultAddress,
		LastLoginAt:             m.LastLoginAt,
		LastSpinTime:            m.LastSpinTime,
		LastOrderCompletionTime: m.LastOrderCompletionTime,
	}
	if m.GoogleID != nil {
		u.GoogleID = *m.GoogleID
	}
	return u
}

// FromDomain populates the persistence model from a domain User.
// An empty Google ID is stored as NULL so the unique index ignores it.
func (m *UserModel) FromDomain(u *identity.User) {
	m.FromDomainAggregateRoot(u.BaseAggregateRoot)
	m.Name = u.Name
	m.Email = u.Email
	m.PasswordHash = u.PasswordHash
	m.GoogleID = nil
	if u.GoogleID != "" {
		googleID := u.GoogleID
		m.GoogleID = &googleID
	}
	m.AvatarURL = u.AvatarURL
	m.Phone = u.Phone
	m.Role = u.Role
	m.Status = u.Status
	m.DefaultAddress = u.DefaultAddress
	m.LastLoginAt = u.LastLoginAt
	m.LastSpinTime = u.LastSpinTime
	m.LastOrderCompletionTime = u.LastOrderCompletionTime
}

// UserModelFromDomain creates a new persistence model from a domain User.
func UserModelFromDomain(u *identity.User) *UserModel {
	m := &UserModel{}
	m.FromDomain(u)
	return m
}
