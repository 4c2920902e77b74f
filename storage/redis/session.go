package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/poiesic/lexis/core"
	"github.com/poiesic/lexis/storage"
	"github.com/redis/go-redis/v9"
)

// DefaultKeyPrefix namespaces session keys: lexis:session:{id}
const DefaultKeyPrefix = "lexis:session:"

// SessionRepository implements storage.SessionRepository over Redis.
// Values are MUS-encoded and expire through the Redis key TTL.
type SessionRepository struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

var _ storage.SessionRepository = (*SessionRepository)(nil)

// Option configures a SessionRepository.
type Option func(*SessionRepository) error

// WithKeyPrefix sets the key namespace.
// Default is DefaultKeyPrefix.
func WithKeyPrefix(prefix string) Option {
	return func(r *SessionRepository) error {
		if prefix == "" {
			return errors.New("key prefix must not be empty")
		}
		r.prefix = prefix
		return nil
	}
}

// WithTTL sets how long an untouched session survives.
// Default is storage.DefaultSessionTTL.
func WithTTL(ttl time.Duration) Option {
	return func(r *SessionRepository) error {
		if ttl <= 0 {
			return fmt.Errorf("ttl must be positive, got %s", ttl)
		}
		r.ttl = ttl
		return nil
	}
}

// NewSessionRepository creates a repository over an existing client.
// The client is owned by the repository and closed by Close.
func NewSessionRepository(client *redis.Client, opts ...Option) (*SessionRepository, error) {
	if client == nil {
		return nil, errors.New("redis client required")
	}

	r := &SessionRepository{
		client: client,
		prefix: DefaultKeyPrefix,
		ttl:    storage.DefaultSessionTTL,
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Open connects to the Redis server at addr and verifies it answers PING.
func Open(ctx context.Context, addr, password string, db int, opts ...Option) (*SessionRepository, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}

	r, err := NewSessionRepository(client, opts...)
	if err != nil {
		client.Close()
		return nil, err
	}
	return r, nil
}

func (r *SessionRepository) key(id string) string {
	return r.prefix + id
}

// GetSession retrieves the state for id.
func (r *SessionRepository) GetSession(ctx context.Context, id string) (*core.SessionState, error) {
	if strings.TrimSpace(id) == "" {
		return nil, core.ErrEmptySessionID
	}

	data, err := r.client.Get(ctx, r.key(id)).Bytes()
	if err == redis.Nil {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return storage.UnmarshalSessionState(data)
}

// SaveSession validates and stores state with a fresh TTL.
func (r *SessionRepository) SaveSession(ctx context.Context, state *core.SessionState) error {
	if err := core.ValidateSessionState(state); err != nil {
		return err
	}

	state.UpdatedAt = time.Now().UTC()
	if state.CreatedAt.IsZero() {
		state.CreatedAt = state.UpdatedAt
	}

	if err := r.client.Set(ctx, r.key(state.ID), storage.MarshalSessionState(state), r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

// DeleteSession removes the state for id.
func (r *SessionRepository) DeleteSession(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return core.ErrEmptySessionID
	}
	if err := r.client.Del(ctx, r.key(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Close closes the underlying client.
func (r *SessionRepository) Close() error {
	return r.client.Close()
}
