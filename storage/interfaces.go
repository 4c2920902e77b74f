package storage

import (
	"context"
	"time"

	"github.com/poiesic/lexis/core"
)

// DefaultSessionTTL is how long an untouched session survives.
const DefaultSessionTTL = 24 * time.Hour

// SessionRepository stores per-session quiz state keyed by session id.
// Implementations must be thread-safe and support concurrent access.
type SessionRepository interface {
	// GetSession retrieves the state for id.
	// Returns ErrNotFound if the session doesn't exist or has expired.
	GetSession(ctx context.Context, id string) (*core.SessionState, error)

	// SaveSession validates and stores state, replacing any previous state
	// with the same id. Sets UpdatedAt and restarts the session TTL.
	SaveSession(ctx context.Context, state *core.SessionState) error

	// DeleteSession removes the state for id.
	// Deleting a missing session is not an error.
	DeleteSession(ctx context.Context, id string) error

	// Close releases resources held by the repository.
	Close() error
}

// Maintainer is implemented by repositories that need periodic housekeeping,
// such as reclaiming space held by expired sessions.
type Maintainer interface {
	Maintain(ctx context.Context) error
}
