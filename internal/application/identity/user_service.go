package identity

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/seafresh/backend/internal/domain/identity"
	"github.com/seafresh/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// UserService handles user administration
type UserService struct {
	userRepo       identity.UserRepository
	sessions       identity.SessionStore
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewUserService creates a new UserService
func NewUserService(userRepo identity.UserRepository, sessions identity.SessionStore, logger *zap.Logger) *UserService {
	return &UserService{
		userRepo: userRepo,
		sessions: sessions,
		logger:   logger,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *UserService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// List lists users with search and filters
func (s *UserService) List(ctx context.Context, filter UserListFilter) ([]UserResponse, int64, error) {
	f := identity.NewUserFilter().WithKeyword(strings.TrimSpace(filter.Search))
	if filter.Role != "" {
		f = f.WithRole(identity.Role(filter.Role))
	}
	if filter.Status != "" {
		f = f.WithStatus(identity.UserStatus(filter.Status))
	}
	if filter.Page > 0 || filter.PageSize > 0 {
		f = f.WithPagination(filter.Page, filter.PageSize)
	}
	if filter.SortBy != "" {
		f.SortBy = filter.SortBy
	}
	if filter.SortOrder != "" {
		f.SortOrder = filter.SortOrder
	}

	users, total, err := s.userRepo.FindAll(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	return ToUserResponses(users), total, nil
}

// GetByID retrieves a user by ID
func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToUserResponse(user)
	return &response, nil
}

// SetRole changes a user's role. Admins cannot change their own role.
func (s *UserService) SetRole(ctx context.Context, actorID, id uuid.UUID, req UpdateRoleRequest) (*UserResponse, error) {
	if actorID == id {
		return nil, shared.NewDomainError("CANNOT_CHANGE_SELF", "You cannot change your own role")
	}
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := user.SetRole(identity.Role(req.Role)); err != nil {
		return nil, err
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	if err := s.sessions.Refresh(ctx, user); err != nil {
		s.logger.Warn("failed to refresh sessions", zap.String("user_id", id.String()), zap.Error(err))
	}
	s.logger.Info("user role changed",
		zap.String("user_id", id.String()),
		zap.String("role", string(user.Role)),
		zap.String("by", actorID.String()))
	s.publish(ctx, user)

	response := ToUserResponse(user)
	return &response, nil
}

// Block blocks a user and signs them out everywhere
func (s *UserService) Block(ctx context.Context, actorID, id uuid.UUID) (*UserResponse, error) {
	if actorID == id {
		return nil, shared.NewDomainError("CANNOT_CHANGE_SELF", "You cannot block yourself")
	}
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := user.Block(); err != nil {
		return nil, err
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	if err := s.sessions.DeleteAllForUser(ctx, id); err != nil {
		s.logger.Error("failed to revoke sessions of blocked user", zap.String("user_id", id.String()), zap.Error(err))
	}
	s.logger.Info("user blocked", zap.String("user_id", id.String()), zap.String("by", actorID.String()))
	s.publish(ctx, user)

	response := ToUserResponse(user)
	return &response, nil
}

// Unblock restores a blocked user
func (s *UserService) Unblock(ctx context.Context, id uuid.UUID) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := user.Unblock(); err != nil {
		return nil, err
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	s.publish(ctx, user)

	response := ToUserResponse(user)
	return &response, nil
}

func (s *UserService) publish(ctx context.Context, user *identity.User) {
	if err := shared.PublishAndClear(ctx, s.eventPublisher, user); err != nil {
		s.logger.Warn("failed to publish user events", zap.String("user_id", user.ID.String()), zap.Error(err))
	}
}
