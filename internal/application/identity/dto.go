package identity

import (
	"time"

	"github.com/google/uuid"
	"github.com/seafresh/backend/internal/domain/identity"
	"github.com/seafresh/backend/internal/domain/shared/valueobject"
)

// RegisterRequest contains the input for email sign-up
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,min=1,max=100"`
	Email    string `json:"email" binding:"required,email,max=254"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

// LoginRequest contains the input for email sign-in
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// ChangePasswordRequest contains the input for a password change.
// OldPassword may be empty for accounts created through Google.
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=72"`
}

// UpdateProfileRequest contains the editable profile fields
type UpdateProfileRequest struct {
	Name           string               `json:"name" binding:"required,min=1,max=100"`
	Phone          string               `json:"phone" binding:"max=20"`
	AvatarURL      string               `json:"avatar_url" binding:"omitempty,url,max=500"`
	DefaultAddress *valueobject.Address `json:"default_address"`
}

// UpdateRoleRequest changes a user's role (admin)
type UpdateRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=user admin"`
}

// UserListFilter represents filter options for the admin user list
type UserListFilter struct {
	Search    string `form:"search"`
	Role      string `form:"role" binding:"omitempty,oneof=user admin"`
	Status    string `form:"status" binding:"omitempty,oneof=active blocked"`
	Page      int    `form:"page" binding:"omitempty,min=1"`
	PageSize  int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	SortBy    string `form:"sort_by" binding:"omitempty,oneof=created_at name email last_login_at"`
	SortOrder string `form:"sort_order" binding:"omitempty,oneof=asc desc"`
}

// UserResponse represents a user in API responses
type UserResponse struct {
	ID                      uuid.UUID            `json:"id"`
	Name                    string               `json:"name"`
	Email                   string               `json:"email"`
	Phone                   string               `json:"phone,omitempty"`
	AvatarURL               string               `json:"avatar_url,omitempty"`
	Role                    string               `json:"role"`
	Status                  string               `json:"status"`
	HasPassword             bool                 `json:"has_password"`
	GoogleLinked            bool                 `json:"google_linked"`
	DefaultAddress          *valueobject.Address `json:"default_address,omitempty"`
	LastLoginAt             *time.Time           `json:"last_login_at,omitempty"`
	LastSpinTime            *time.Time           `json:"last_spin_time,omitempty"`
	LastOrderCompletionTime *time.Time           `json:"last_order_completion_time,omitempty"`
	CreatedAt               time.Time            `json:"created_at"`
}

// AuthResult is a signed-in user together with the session to put in the cookie
type AuthResult struct {
	Session *identity.Session
	User    UserResponse
}

// GoogleProfile is the verified profile returned by Google
type GoogleProfile struct {
	ID            string
	Email         string
	EmailVerified bool
	Name          string
	Picture       string
}

// GoogleRedirect is where to send the browser to start Google sign-in.
// Nonce must be stored in a short-lived cookie and handed back on callback.
type GoogleRedirect struct {
	URL   string
	Nonce string
}

// ToUserResponse converts a domain User to UserResponse
func ToUserResponse(u *identity.User) UserResponse {
	resp := UserResponse{
		ID:                      u.ID,
		Name:                    u.Name,
		Email:                   u.Email,
		Phone:                   u.Phone,
		AvatarURL:               u.AvatarURL,
		Role:                    string(u.Role),
		Status:                  string(u.Status),
		HasPassword:             u.HasPassword(),
		GoogleLinked:            u.GoogleID != "",
		LastLoginAt:             u.LastLoginAt,
		LastSpinTime:            u.LastSpinTime,
		LastOrderCompletionTime: u.LastOrderCompletionTime,
		CreatedAt:               u.CreatedAt,
	}
	if !u.DefaultAddress.IsEmpty() {
		addr := u.DefaultAddress
		resp.DefaultAddress = &addr
	}
	return resp
}

// ToUserResponses converts a slice of users
func ToUserResponses(users []*identity.User) []UserResponse {
	responses := make([]UserResponse, len(users))
	for i, u := range users {
		responses[i] = ToUserResponse(u)
	}
	return responses
}
