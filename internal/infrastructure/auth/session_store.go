package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/seafresh/backend/internal/domain/identity"
	"github.com/seafresh/backend/internal/domain/shared"
)

const (
	sessionKeyPrefix = "session:"
	userSessionsKey  = "session:user:"
	sessionIDBytes   = 32
)

// NewSessionID returns a random URL-safe session identifier
func NewSessionID() (string, error) {
	buf := make([]byte, sessionIDBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate session id: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// RedisSessionStore keeps sessions in Redis with a sliding TTL.
// Each user also has a set of their session IDs so every session can be
// refreshed or revoked together.
type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
}

// NewRedisSessionStore creates a session store on an existing Redis client
func NewRedisSessionStore(client *redis.Client, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{
		client: client,
		ttl:    ttl,
		now:    time.Now,
	}
}

func sessionKey(id string) string {
	return sessionKeyPrefix + id
}

func userKey(userID uuid.UUID) string {
	return userSessionsKey + userID.String()
}

// Create stores a new session for the user
func (s *RedisSessionStore) Create(ctx context.Context, u *identity.User) (*identity.Session, error) {
	id, err := NewSessionID()
	if err != nil {
		return nil, err
	}
	session := identity.NewSession(id, u, s.now())
	data, err := json.Marshal(session)
	if err != nil {
		return nil, err
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, sessionKey(id), data, s.ttl)
		pipe.SAdd(ctx, userKey(u.ID), id)
		pipe.Expire(ctx, userKey(u.ID), s.ttl)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}
	return session, nil
}

// Get loads a session and extends its TTL
func (s *RedisSessionStore) Get(ctx context.Context, id string) (*identity.Session, error) {
	if id == "" {
		return nil, shared.ErrUnauthorized
	}
	data, err := s.client.GetEx(ctx, sessionKey(id), s.ttl).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, shared.ErrUnauthorized
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	var session identity.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	session.ID = id
	s.client.Expire(ctx, userKey(session.UserID), s.ttl)
	return &session, nil
}

// Refresh rewrites the profile snapshot of every live session of the user
func (s *RedisSessionStore) Refresh(ctx context.Context, u *identity.User) error {
	ids, err := s.client.SMembers(ctx, userKey(u.ID)).Result()
	if err != nil {
		return fmt.Errorf("list sessions: %w", err)
	}
	for _, id := range ids {
		data, err := s.client.Get(ctx, sessionKey(id)).Bytes()
		if errors.Is(err, redis.Nil) {
			s.client.SRem(ctx, userKey(u.ID), id)
			continue
		}
		if err != nil {
			return fmt.Errorf("load session: %w", err)
		}
		var old identity.Session
		if err := json.Unmarshal(data, &old); err != nil {
			return fmt.Errorf("decode session: %w", err)
		}

		updated := identity.NewSession(id, u, old.CreatedAt)
		payload, err := json.Marshal(updated)
		if err != nil {
			return err
		}
		if err := s.client.SetArgs(ctx, sessionKey(id), payload, redis.SetArgs{KeepTTL: true, Mode: "XX"}).Err(); err != nil && !errors.Is(err, redis.Nil) {
			return fmt.Errorf("refresh session: %w", err)
		}
	}
	return nil
}

// Delete removes one session
func (s *RedisSessionStore) Delete(ctx context.Context, id string) error {
	data, err := s.client.GetDel(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	var session identity.Session
	if err := json.Unmarshal(data, &session); err == nil {
		s.client.SRem(ctx, userKey(session.UserID), id)
	}
	return nil
}

// DeleteAllForUser revokes every session of the user
func (s *RedisSessionStore) DeleteAllForUser(ctx context.Context, userID uuid.UUID) error {
	ids, err := s.client.SMembers(ctx, userKey(userID)).Result()
	if err != nil {
		return fmt.Errorf("list sessions: %w", err)
	}
	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, sessionKey(id))
	}
	keys = append(keys, userKey(userID))
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("delete sessions: %w", err)
	}
	return nil
}

var _ identity.SessionStore = (*RedisSessionStore)(nil)
