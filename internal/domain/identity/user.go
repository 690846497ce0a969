package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/seafresh/backend/internal/domain/shared"
	"github.com/seafresh/backend/internal/domain/shared/valueobject"
	"golang.org/x/crypto/bcrypt"
)

// Role grants access to the admin area
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// IsValid checks if the role is valid
func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleAdmin
}

// UserStatus represents the status of a user
type UserStatus string

const (
	UserStatusActive  UserStatus = "active"
	UserStatusBlocked UserStatus = "blocked"
)

// IsValid checks if the status is valid
func (s UserStatus) IsValid() bool {
	return s == UserStatusActive || s == UserStatusBlocked
}

// Password cost for bcrypt
const bcryptCost = 12

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// User is a storefront customer or administrator.
// Google users may have no password.
type User struct {
	shared.BaseAggregateRoot
	Name                    string
	Email                   string
	PasswordHash            string
	GoogleID                string
	AvatarURL               string
	Phone                   string
	Role                    Role
	Status                  UserStatus
	DefaultAddress          valueobject.Address
	LastLoginAt             *time.Time
	LastSpinTime            *time.Time
	LastOrderCompletionTime *time.Time
}

// NewUser registers a customer with email and password
func NewUser(name, email, password string) (*User, error) {
	user, err := newUser(name, email)
	if err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	hash, err := hashPassword(password)
	if err != nil {
		return nil, shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}
	user.PasswordHash = hash

	user.AddDomainEvent(NewUserCreatedEvent(user, "password"))

	return user, nil
}

// NewGoogleUser creates a customer from a verified Google profile
func NewGoogleUser(name, email, googleID, avatarURL string) (*User, error) {
	if strings.TrimSpace(googleID) == "" {
		return nil, shared.NewDomainError("INVALID_GOOGLE_ID", "Google account ID cannot be empty")
	}
	if strings.TrimSpace(name) == "" {
		name = strings.Split(email, "@")[0]
	}
	user, err := newUser(name, email)
	if err != nil {
		return nil, err
	}
	user.GoogleID = googleID
	user.AvatarURL = avatarURL

	user.AddDomainEvent(NewUserCreatedEvent(user, "google"))

	return user, nil
}

func newUser(name, email string) (*User, error) {
	name = strings.TrimSpace(name)
	if err := validateName(name); err != nil {
		return nil, err
	}
	email = NormalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	return &User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Email:             email,
		Role:              RoleUser,
		Status:            UserStatusActive,
	}, nil
}

// NormalizeEmail lower-cases and trims an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// UpdateProfile sets the editable profile fields
func (u *User) UpdateProfile(name, phone, avatarURL string) error {
	name = strings.TrimSpace(name)
	if err := validateName(name); err != nil {
		return err
	}
	phone = strings.TrimSpace(phone)
	if len(phone) > 20 {
		return shared.NewDomainError("INVALID_PHONE", "Phone cannot exceed 20 characters")
	}
	if len(avatarURL) > 500 {
		return shared.NewDomainError("INVALID_AVATAR", "Avatar URL cannot exceed 500 characters")
	}
	u.Name = name
	u.Phone = phone
	u.AvatarURL = avatarURL
	u.Touch()
	return nil
}

// SetDefaultAddress stores the address pre-filled at checkout
func (u *User) SetDefaultAddress(addr valueobject.Address) error {
	if !addr.IsEmpty() {
		if err := addr.Validate(); err != nil {
			return shared.NewDomainError("INVALID_ADDRESS", err.Error())
		}
	}
	u.DefaultAddress = addr
	u.Touch()
	return nil
}

// HasPassword returns true if the user can sign in with a password
func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}

// ChangePassword changes the user's password. Users created through Google
// have no current password and may set one directly.
func (u *User) ChangePassword(oldPassword, newPassword string) error {
	if u.HasPassword() && !u.VerifyPassword(oldPassword) {
		return shared.NewDomainError("INVALID_PASSWORD", "Current password is incorrect")
	}
	return u.SetPassword(newPassword)
}

// SetPassword sets a new password without checking the old one
func (u *User) SetPassword(newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}
	hash, err := hashPassword(newPassword)
	if err != nil {
		return shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}
	u.PasswordHash = hash
	u.Touch()

	u.AddDomainEvent(NewUserPasswordChangedEvent(u))

	return nil
}

// VerifyPassword verifies if the provided password matches
func (u *User) VerifyPassword(password string) bool {
	if u.PasswordHash == "" {
		return false
	}
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	return err == nil
}

// LinkGoogle attaches a Google account to an existing user
func (u *User) LinkGoogle(googleID, avatarURL string) error {
	if strings.TrimSpace(googleID) == "" {
		return shared.NewDomainError("INVALID_GOOGLE_ID", "Google account ID cannot be empty")
	}
	if u.GoogleID != "" && u.GoogleID != googleID {
		return shared.NewDomainError("GOOGLE_ALREADY_LINKED", "Account is linked to another Google profile")
	}
	u.GoogleID = googleID
	if u.AvatarURL == "" {
		u.AvatarURL = avatarURL
	}
	u.Touch()
	return nil
}

// SetRole changes the user's role
func (u *User) SetRole(role Role) error {
	if !role.IsValid() {
		return shared.NewDomainError("INVALID_ROLE", "Role must be user or admin")
	}
	if u.Role == role {
		return nil
	}
	old := u.Role
	u.Role = role
	u.Touch()

	u.AddDomainEvent(NewUserRoleChangedEvent(u, old))

	return nil
}

// Block prevents the user from signing in
func (u *User) Block() error {
	if u.Status == UserStatusBlocked {
		return shared.NewDomainError("ALREADY_BLOCKED", "User is already blocked")
	}
	u.Status = UserStatusBlocked
	u.Touch()

	u.AddDomainEvent(NewUserStatusChangedEvent(u, UserStatusActive))

	return nil
}

// Unblock restores access for a blocked user
func (u *User) Unblock() error {
	if u.Status == UserStatusActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "User is already active")
	}
	u.Status = UserStatusActive
	u.Touch()

	u.AddDomainEvent(NewUserStatusChangedEvent(u, UserStatusBlocked))

	return nil
}

// RecordLogin stamps the last login time
func (u *User) RecordLogin(at time.Time) {
	u.LastLoginAt = &at
	u.Touch()
}

// IsAdmin returns true for administrators
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsActive returns true if user is active
func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}

// CanLogin returns true if user can login
func (u *User) CanLogin() bool {
	return u.IsActive()
}

// Validation functions

func validateName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Name cannot be empty")
	}
	if len(name) > 100 {
		return shared.NewDomainError("INVALID_NAME", "Name cannot exceed 100 characters")
	}
	return nil
}

func validatePassword(password string) error {
	if password == "" {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot be empty")
	}
	if len(password) < 8 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 8 characters")
	}
	if len(password) > 72 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot exceed 72 characters")
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot be empty")
	}
	if len(email) > 200 {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot exceed 200 characters")
	}
	if !emailRegex.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
