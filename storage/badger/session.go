package badger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/lexis/core"
	"github.com/poiesic/lexis/storage"
)

// SessionRepository implements storage.SessionRepository for BadgerDB.
// Sessions are written with a TTL and vanish once it passes.
type SessionRepository struct {
	backend *Backend
	ttl     time.Duration
}

var (
	_ storage.SessionRepository = (*SessionRepository)(nil)
	_ storage.Maintainer        = (*SessionRepository)(nil)
)

// NewSessionRepository creates a new SessionRepository.
// A ttl <= 0 means storage.DefaultSessionTTL.
func NewSessionRepository(backend *Backend, ttl time.Duration) (*SessionRepository, error) {
	if backend == nil {
		return nil, errors.New("backend required")
	}
	if ttl <= 0 {
		ttl = storage.DefaultSessionTTL
	}
	return &SessionRepository{
		backend: backend,
		ttl:     ttl,
	}, nil
}

// Close is a no-op; the backend is owned by the caller.
func (r *SessionRepository) Close() error {
	return nil
}

// GetSession retrieves the state for id.
func (r *SessionRepository) GetSession(ctx context.Context, id string) (*core.SessionState, error) {
	if r.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}
	if strings.TrimSpace(id) == "" {
		return nil, core.ErrEmptySessionID
	}

	var state *core.SessionState
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeSessionKey(id))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return storage.ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			state, err = storage.UnmarshalSessionState(val)
			return err
		})
	}, false)
	if err != nil {
		return nil, err
	}
	return state, nil
}

// SaveSession validates and stores state with a fresh TTL.
func (r *SessionRepository) SaveSession(ctx context.Context, state *core.SessionState) error {
	if r.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	if err := core.ValidateSessionState(state); err != nil {
		return err
	}

	state.UpdatedAt = time.Now().UTC()
	if state.CreatedAt.IsZero() {
		state.CreatedAt = state.UpdatedAt
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		entry := badger.NewEntry(makeSessionKey(state.ID), storage.MarshalSessionState(state)).WithTTL(r.ttl)
		if err := tx.SetEntry(entry); err != nil {
			return fmt.Errorf("failed to store session: %w", err)
		}
		return tx.Commit()
	}, true)
}

// DeleteSession removes the state for id.
func (r *SessionRepository) DeleteSession(ctx context.Context, id string) error {
	if r.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	if strings.TrimSpace(id) == "" {
		return core.ErrEmptySessionID
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Delete(makeSessionKey(id)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// Maintain reclaims value log space held by expired and deleted sessions.
func (r *SessionRepository) Maintain(ctx context.Context) error {
	if r.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	return r.backend.RunGC(ctx)
}
