package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	identityapp "github.com/seafresh/backend/internal/application/identity"
)

// UserService is the admin side of the identity application
type UserService interface {
	List(ctx context.Context, filter identityapp.UserListFilter) ([]identityapp.UserResponse, int64, error)
	GetByID(ctx context.Context, id uuid.UUID) (*identityapp.UserResponse, error)
	SetRole(ctx context.Context, actorID, id uuid.UUID, req identityapp.UpdateRoleRequest) (*identityapp.UserResponse, error)
	Block(ctx context.Context, actorID, id uuid.UUID) (*identityapp.UserResponse, error)
	Unblock(ctx context.Context, id uuid.UUID) (*identityapp.UserResponse, error)
}

// UserHandler handles admin user management
type UserHandler struct {
	BaseHandler
	users UserService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(users UserService) *UserHandler {
	return &UserHandler{users: users}
}

// List godoc
// @ID           listUsers
// @Summary      List users
// @Tags         admin-users
// @Produce      json
// @Param        search query string false "Name or email"
// @Param        role   query string false "user or admin"
// @Param        status query string false "active or blocked"
// @Success      200 {object} APIResponse[[]identity.UserResponse]
// @Router       /admin/users [get]
func (h *UserHandler) List(c *gin.Context) {
	var filter identityapp.UserListFilter
	if !h.BindQuery(c, &filter) {
		return
	}
	users, total, err := h.users.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, users, total, filter.Page, filter.PageSize)
}

// Get godoc
// @ID           getUser
// @Summary      Get a user
// @Tags         admin-users
// @Produce      json
// @Param        id path string true "User ID"
// @Success      200 {object} APIResponse[identity.UserResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /admin/users/{id} [get]
func (h *UserHandler) Get(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	user, err := h.users.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

// SetRole godoc
// @ID           setUserRole
// @Summary      Change a user's role
// @Tags         admin-users
// @Accept       json
// @Produce      json
// @Param        id path string true "User ID"
// @Param        request body identity.UpdateRoleRequest true "Role"
// @Success      200 {object} APIResponse[identity.UserResponse]
// @Failure      403 {object} ErrorResponse
// @Router       /admin/users/{id}/role [put]
func (h *UserHandler) SetRole(c *gin.Context) {
	session, ok := h.Session(c)
	if !ok {
		return
	}
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req identityapp.UpdateRoleRequest
	if !h.BindJSON(c, &req) {
		return
	}
	user, err := h.users.SetRole(c.Request.Context(), session.UserID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

// Block godoc
// @ID           blockUser
// @Summary      Block a user and end their sessions
// @Tags         admin-users
// @Param        id path string true "User ID"
// @Success      200 {object} APIResponse[identity.UserResponse]
// @Router       /admin/users/{id}/block [post]
func (h *UserHandler) Block(c *gin.Context) {
	session, ok := h.Session(c)
	if !ok {
		return
	}
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	user, err := h.users.Block(c.Request.Context(), session.UserID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

// Unblock godoc
// @ID           unblockUser
// @Summary      Unblock a user
// @Tags         admin-users
// @Param        id path string true "User ID"
// @Success      200 {object} APIResponse[identity.UserResponse]
// @Router       /admin/users/{id}/unblock [post]
func (h *UserHandler) Unblock(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	user, err := h.users.Unblock(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}
