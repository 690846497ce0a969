package identity

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/seafresh/backend/internal/domain/identity"
	"github.com/seafresh/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// OAuthProvider runs the Google authorization code flow
type OAuthProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*GoogleProfile, error)
}

// StateSigner signs and verifies the OAuth state parameter
type StateSigner interface {
	Sign(nonce string) (string, error)
	Verify(state string) (nonce string, err error)
}

var (
	errInvalidCredentials = shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")
	errAccountBlocked     = shared.NewDomainError("ACCOUNT_BLOCKED", "Your account has been blocked. Please contact support")
	errOAuthState         = shared.NewDomainError("OAUTH_STATE_INVALID", "Sign-in link has expired. Please try again")
	errOAuthUnavailable   = shared.NewDomainError("OAUTH_UNAVAILABLE", "Google sign-in is not configured")
)

// AuthService handles sign-up, sign-in and sessions
type AuthService struct {
	userRepo       identity.UserRepository
	sessions       identity.SessionStore
	oauth          OAuthProvider
	stateSigner    StateSigner
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	now            func() time.Time
}

// NewAuthService creates a new authentication service
func NewAuthService(
	userRepo identity.UserRepository,
	sessions identity.SessionStore,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		sessions: sessions,
		logger:   logger,
		now:      time.Now,
	}
}

// SetGoogleOAuth enables Google sign-in
func (s *AuthService) SetGoogleOAuth(provider OAuthProvider, signer StateSigner) {
	s.oauth = provider
	s.stateSigner = signer
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *AuthService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Register creates a password account and signs it in
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthResult, error) {
	email := identity.NormalizeEmail(req.Email)
	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "An account with this email already exists")
	}

	user, err := identity.NewUser(req.Name, email, req.Password)
	if err != nil {
		return nil, err
	}
	user.RecordLogin(s.now())
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("user registered", zap.String("user_id", user.ID.String()))
	s.publish(ctx, user)

	return s.startSession(ctx, user)
}

// Login signs in with email and password
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResult, error) {
	user, err := s.userRepo.FindByEmail(ctx, identity.NormalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, errInvalidCredentials
		}
		return nil, err
	}
	if !user.HasPassword() {
		return nil, shared.NewDomainError("PASSWORD_NOT_SET", "This account uses Google sign-in")
	}
	if !user.VerifyPassword(req.Password) {
		s.logger.Warn("invalid password attempt", zap.String("user_id", user.ID.String()))
		return nil, errInvalidCredentials
	}
	if !user.CanLogin() {
		return nil, errAccountBlocked
	}

	user.RecordLogin(s.now())
	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.Error("failed to record login", zap.String("user_id", user.ID.String()), zap.Error(err))
	}
	return s.startSession(ctx, user)
}

// Logout destroys a session
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return s.sessions.Delete(ctx, sessionID)
}

// Me returns the signed-in user's profile
func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	response := ToUserResponse(user)
	return &response, nil
}

// ChangePassword changes the caller's password
func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, req ChangePasswordRequest) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := user.ChangePassword(req.OldPassword, req.NewPassword); err != nil {
		return err
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}
	s.logger.Info("user password changed", zap.String("user_id", userID.String()))
	s.publish(ctx, user)
	return nil
}

// UpdateProfile updates the caller's profile and refreshes their sessions
func (s *AuthService) UpdateProfile(ctx context.Context, userID uuid.UUID, req UpdateProfileRequest) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := user.UpdateProfile(req.Name, req.Phone, req.AvatarURL); err != nil {
		return nil, err
	}
	if req.DefaultAddress != nil {
		if err := user.SetDefaultAddress(*req.DefaultAddress); err != nil {
			return nil, err
		}
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	if err := s.sessions.Refresh(ctx, user); err != nil {
		s.logger.Warn("failed to refresh sessions", zap.String("user_id", userID.String()), zap.Error(err))
	}

	response := ToUserResponse(user)
	return &response, nil
}

// StartGoogle builds the Google consent URL with a signed state
func (s *AuthService) StartGoogle() (*GoogleRedirect, error) {
	if s.oauth == nil || s.stateSigner == nil {
		return nil, errOAuthUnavailable
	}
	nonce, err := newNonce()
	if err != nil {
		return nil, err
	}
	state, err := s.stateSigner.Sign(nonce)
	if err != nil {
		return nil, fmt.Errorf("sign oauth state: %w", err)
	}
	return &GoogleRedirect{URL: s.oauth.AuthCodeURL(state), Nonce: nonce}, nil
}

// GoogleCallback completes Google sign-in. The account is found by Google ID,
// then linked by verified email, or created.
func (s *AuthService) GoogleCallback(ctx context.Context, state, nonceCookie, code string) (*AuthResult, error) {
	if s.oauth == nil || s.stateSigner == nil {
		return nil, errOAuthUnavailable
	}
	nonce, err := s.stateSigner.Verify(state)
	if err != nil || nonceCookie == "" || subtle.ConstantTimeCompare([]byte(nonce), []byte(nonceCookie)) != 1 {
		s.logger.Warn("oauth state rejected", zap.Error(err))
		return nil, errOAuthState
	}

	profile, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("google exchange: %w", err)
	}
	if !profile.EmailVerified {
		return nil, shared.NewDomainError("EMAIL_NOT_VERIFIED", "Your Google email address is not verified")
	}

	user, err := s.findOrCreateGoogleUser(ctx, profile)
	if err != nil {
		return nil, err
	}
	if !user.CanLogin() {
		return nil, errAccountBlocked
	}

	user.RecordLogin(s.now())
	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.Error("failed to record login", zap.String("user_id", user.ID.String()), zap.Error(err))
	}
	return s.startSession(ctx, user)
}

func (s *AuthService) findOrCreateGoogleUser(ctx context.Context, profile *GoogleProfile) (*identity.User, error) {
	user, err := s.userRepo.FindByGoogleID(ctx, profile.ID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	user, err = s.userRepo.FindByEmail(ctx, identity.NormalizeEmail(profile.Email))
	switch {
	case err == nil:
		if err := user.LinkGoogle(profile.ID, profile.Picture); err != nil {
			return nil, err
		}
		if err := s.userRepo.Update(ctx, user); err != nil {
			return nil, err
		}
		s.logger.Info("google account linked", zap.String("user_id", user.ID.String()))
		return user, nil
	case !errors.Is(err, shared.ErrNotFound):
		return nil, err
	}

	user, err = identity.NewGoogleUser(profile.Name, profile.Email, profile.ID, profile.Picture)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("user registered", zap.String("user_id", user.ID.String()), zap.String("provider", "google"))
	s.publish(ctx, user)
	return user, nil
}

func (s *AuthService) startSession(ctx context.Context, user *identity.User) (*AuthResult, error) {
	session, err := s.sessions.Create(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return &AuthResult{Session: session, User: ToUserResponse(user)}, nil
}

func (s *AuthService) publish(ctx context.Context, user *identity.User) {
	if err := shared.PublishAndClear(ctx, s.eventPublisher, user); err != nil {
		s.logger.Warn("failed to publish user events", zap.String("user_id", user.ID.String()), zap.Error(err))
	}
}

func newNonce() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
