package badger

import (
	"time"

	"github.com/poiesic/lexis/storage"
)

// NewSessionStore opens a session store at path, in memory when path is
// empty. Closing the returned repository closes the database.
func NewSessionStore(path string, ttl time.Duration) (storage.SessionRepository, error) {
	backend, err := OpenBackend(path, path == "")
	if err != nil {
		return nil, err
	}

	repo, err := NewSessionRepository(backend, ttl)
	if err != nil {
		backend.Close()
		return nil, err
	}
	return &ownedSessionRepository{SessionRepository: repo}, nil
}

// ownedSessionRepository closes its backend on Close.
type ownedSessionRepository struct {
	*SessionRepository
}

func (r *ownedSessionRepository) Close() error {
	return r.backend.Close()
}
