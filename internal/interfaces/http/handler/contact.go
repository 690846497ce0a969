package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	contactapp "github.com/seafresh/backend/internal/application/contact"
	"github.com/seafresh/backend/internal/interfaces/http/middleware"
)

// ContactService is the contact inbox
type ContactService interface {
	Submit(ctx context.Context, req contactapp.SubmitMessageRequest, userID *uuid.UUID) (*contactapp.MessageResponse, error)
	List(ctx context.Context, filter contactapp.MessageListFilter) ([]contactapp.MessageResponse, int64, error)
	Get(ctx context.Context, id uuid.UUID) (*contactapp.MessageResponse, error)
	MarkRead(ctx context.Context, id uuid.UUID) (*contactapp.MessageResponse, error)
	Reply(ctx context.Context, adminID, id uuid.UUID, req contactapp.ReplyRequest) (*contactapp.ReplyResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ContactHandler handles the contact form and the admin inbox
type ContactHandler struct {
	BaseHandler
	messages ContactService
}

// NewContactHandler creates a new ContactHandler
func NewContactHandler(messages ContactService) *ContactHandler {
	return &ContactHandler{messages: messages}
}

// Submit godoc
// @ID           submitContactMessage
// @Summary      Send a message to the shop
// @Tags         contact
// @Accept       json
// @Produce      json
// @Param        request body contact.SubmitMessageRequest true "Message"
// @Success      201 {object} APIResponse[contact.MessageResponse]
// @Failure      429 {object} ErrorResponse
// @Router       /contact [post]
func (h *ContactHandler) Submit(c *gin.Context) {
	var req contactapp.SubmitMessageRequest
	if !h.BindJSON(c, &req) {
		return
	}
	var userID *uuid.UUID
	if session := middleware.CurrentSession(c); session != nil {
		id := session.UserID
		userID = &id
	}
	msg, err := h.messages.Submit(c.Request.Context(), req, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, msg)
}

// List godoc
// @ID           listContactMessages
// @Summary      Contact inbox
// @Tags         admin-contact
// @Produce      json
// @Param        status query string false "new, read or replied"
// @Param        search query string false "Name, email or subject"
// @Success      200 {object} APIResponse[[]contact.MessageResponse]
// @Router       /admin/contact [get]
func (h *ContactHandler) List(c *gin.Context) {
	var filter contactapp.MessageListFilter
	if !h.BindQuery(c, &filter) {
		return
	}
	messages, total, err := h.messages.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, messages, total, filter.Page, filter.PageSize)
}

// Get godoc
// @ID           getContactMessage
// @Summary      Get a contact message
// @Tags         admin-contact
// @Produce      json
// @Param        id path string true "Message ID"
// @Success      200 {object} APIResponse[contact.MessageResponse]
// @Router       /admin/contact/{id} [get]
func (h *ContactHandler) Get(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	msg, err := h.messages.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, msg)
}

// MarkRead godoc
// @ID           markContactMessageRead
// @Summary      Mark a contact message read
// @Tags         admin-contact
// @Produce      json
// @Param        id path string true "Message ID"
// @Success      200 {object} APIResponse[contact.MessageResponse]
// @Router       /admin/contact/{id}/read [patch]
func (h *ContactHandler) MarkRead(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	msg, err := h.messages.MarkRead(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, msg)
}

// Reply godoc
// @ID           replyContactMessage
// @Summary      Reply to a contact message by email
// @Tags         admin-contact
// @Accept       json
// @Produce      json
// @Param        id path string true "Message ID"
// @Param        request body contact.ReplyRequest true "Reply"
// @Success      200 {object} APIResponse[contact.ReplyResponse]
// @Router       /admin/contact/{id}/reply [post]
func (h *ContactHandler) Reply(c *gin.Context) {
	session, ok := h.Session(c)
	if !ok {
		return
	}
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req contactapp.ReplyRequest
	if !h.BindJSON(c, &req) {
		return
	}
	result, err := h.messages.Reply(c.Request.Context(), session.UserID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Delete godoc
// @ID           deleteContactMessage
// @Summary      Delete a contact message
// @Tags         admin-contact
// @Param        id path string true "Message ID"
// @Success      204
// @Router       /admin/contact/{id} [delete]
func (h *ContactHandler) Delete(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	if err := h.messages.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
