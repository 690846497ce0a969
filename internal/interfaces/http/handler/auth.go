package handler

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	identityapp "github.com/seafresh/backend/internal/application/identity"
	"github.com/seafresh/backend/internal/domain/shared"
	"github.com/seafresh/backend/internal/infrastructure/logger"
	"github.com/seafresh/backend/internal/interfaces/http/dto"
	"github.com/seafresh/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// oauthNonceCookie holds the nonce the signed state must carry
const (
	oauthNonceCookie = "oauth_nonce"
	oauthNonceTTL    = 10 * time.Minute
)

// AuthService is the part of the identity application the auth endpoints use
type AuthService interface {
	Register(ctx context.Context, req identityapp.RegisterRequest) (*identityapp.AuthResult, error)
	Login(ctx context.Context, req identityapp.LoginRequest) (*identityapp.AuthResult, error)
	Logout(ctx context.Context, sessionID string) error
	Me(ctx context.Context, userID uuid.UUID) (*identityapp.UserResponse, error)
	ChangePassword(ctx context.Context, userID uuid.UUID, req identityapp.ChangePasswordRequest) error
	UpdateProfile(ctx context.Context, userID uuid.UUID, req identityapp.UpdateProfileRequest) (*identityapp.UserResponse, error)
	StartGoogle() (*identityapp.GoogleRedirect, error)
	GoogleCallback(ctx context.Context, state, nonceCookie, code string) (*identityapp.AuthResult, error)
}

// AuthHandler handles sign-up, sign-in and the session cookie
type AuthHandler struct {
	BaseHandler
	auth      AuthService
	cookie    middleware.SessionCookie
	clientURL string
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(auth AuthService, cookie middleware.SessionCookie, clientURL string) *AuthHandler {
	return &AuthHandler{auth: auth, cookie: cookie, clientURL: clientURL}
}

// Register godoc
// @ID           registerUser
// @Summary      Create an account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body identity.RegisterRequest true "Account"
// @Success      201 {object} APIResponse[identity.UserResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req identityapp.RegisterRequest
	if !h.BindJSON(c, &req) {
		return
	}
	result, err := h.auth.Register(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.cookie.Set(c, result.Session.ID)
	h.Created(c, result.User)
}

// Login godoc
// @ID           loginUser
// @Summary      Sign in with email and password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body identity.LoginRequest true "Credentials"
// @Success      200 {object} APIResponse[identity.UserResponse]
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req identityapp.LoginRequest
	if !h.BindJSON(c, &req) {
		return
	}
	result, err := h.auth.Login(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.cookie.Set(c, result.Session.ID)
	h.Success(c, result.User)
}

// Logout godoc
// @ID           logoutUser
// @Summary      Sign out
// @Tags         auth
// @Success      204
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	if session := middleware.CurrentSession(c); session != nil {
		if err := h.auth.Logout(c.Request.Context(), session.ID); err != nil {
			h.HandleError(c, err)
			return
		}
	}
	h.cookie.Clear(c)
	h.NoContent(c)
}

// Me godoc
// @ID           getCurrentUser
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Success      200 {object} APIResponse[identity.UserResponse]
// @Failure      401 {object} ErrorResponse
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	session, ok := h.Session(c)
	if !ok {
		return
	}
	user, err := h.auth.Me(c.Request.Context(), session.UserID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

// ChangePassword godoc
// @ID           changePassword
// @Summary      Change password
// @Tags         auth
// @Accept       json
// @Param        request body identity.ChangePasswordRequest true "Passwords"
// @Success      204
// @Failure      401 {object} ErrorResponse
// @Router       /auth/password [put]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	session, ok := h.Session(c)
	if !ok {
		return
	}
	var req identityapp.ChangePasswordRequest
	if !h.BindJSON(c, &req) {
		return
	}
	if err := h.auth.ChangePassword(c.Request.Context(), session.UserID, req); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// UpdateProfile godoc
// @ID           updateProfile
// @Summary      Update profile and default address
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body identity.UpdateProfileRequest true "Profile"
// @Success      200 {object} APIResponse[identity.UserResponse]
// @Router       /auth/profile [put]
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	session, ok := h.Session(c)
	if !ok {
		return
	}
	var req identityapp.UpdateProfileRequest
	if !h.BindJSON(c, &req) {
		return
	}
	user, err := h.auth.UpdateProfile(c.Request.Context(), session.UserID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

// GoogleStart godoc
// @ID           startGoogleSignIn
// @Summary      Redirect to Google sign-in
// @Tags         auth
// @Success      302
// @Failure      503 {object} ErrorResponse
// @Router       /auth/google [get]
func (h *AuthHandler) GoogleStart(c *gin.Context) {
	redirect, err := h.auth.StartGoogle()
	if err != nil {
		h.HandleError(c, err)
		return
	}
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     oauthNonceCookie,
		Value:    redirect.Nonce,
		Path:     "/",
		MaxAge:   int(oauthNonceTTL.Seconds()),
		Secure:   h.cookie.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	c.Redirect(http.StatusFound, redirect.URL)
}

// GoogleCallback godoc
// @ID           googleCallback
// @Summary      Google sign-in callback
// @Description  Completes sign-in and redirects to the storefront; failures redirect with an error parameter
// @Tags         auth
// @Param        state query string true "Signed state"
// @Param        code  query string true "Authorization code"
// @Success      302
// @Router       /auth/google/callback [get]
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	nonce, _ := c.Cookie(oauthNonceCookie)
	http.SetCookie(c.Writer, &http.Cookie{Name: oauthNonceCookie, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})

	if denied := c.Query("error"); denied != "" {
		h.redirectWithError(c, "access_denied")
		return
	}

	result, err := h.auth.GoogleCallback(c.Request.Context(), c.Query("state"), nonce, c.Query("code"))
	if err != nil {
		code := dto.ErrCodeOAuthExchange
		var domainErr *shared.DomainError
		if errors.As(err, &domainErr) {
			code = dto.NormalizeErrorCode(domainErr.Code)
		} else {
			logger.FromContext(c.Request.Context()).Error("Google sign-in failed", zap.Error(err))
		}
		h.redirectWithError(c, code)
		return
	}

	h.cookie.Set(c, result.Session.ID)
	c.Redirect(http.StatusFound, h.clientURL)
}

func (h *AuthHandler) redirectWithError(c *gin.Context, code string) {
	target := h.clientURL + "/login?" + url.Values{"error": {code}}.Encode()
	c.Redirect(http.StatusFound, target)
}
