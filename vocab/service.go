package vocab

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/poiesic/lexis/core"
	"github.com/poiesic/lexis/storage"
)

// Service runs the two stage quiz for many sessions over a session store.
// Submissions for the same session id are serialized within one Service.
// Processes sharing a redis store are not coordinated.
type Service struct {
	repo   storage.SessionRepository
	locks  sessionLocks
	logger *slog.Logger
}

// sessionLocks hands out one mutex per session id, dropped once unused.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[string]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

func (l *sessionLocks) lock(id string) func() {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[string]*sessionLock)
	}
	sl, ok := l.locks[id]
	if !ok {
		sl = &sessionLock{}
		l.locks[id] = sl
	}
	sl.refs++
	l.mu.Unlock()

	sl.mu.Lock()
	return func() {
		sl.mu.Unlock()
		l.mu.Lock()
		sl.refs--
		if sl.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}

// NewService creates a quiz service backed by repo.
func NewService(repo storage.SessionRepository) (*Service, error) {
	if repo == nil {
		return nil, ErrSessionRepositoryRequired
	}
	return &Service{
		repo:   repo,
		logger: slog.Default().With("component", "quiz"),
	}, nil
}

// State returns the stored state for id, or a fresh unsaved one when the
// session is unknown or expired.
func (s *Service) State(ctx context.Context, id string) (*core.SessionState, error) {
	if strings.TrimSpace(id) == "" {
		return nil, core.ErrEmptySessionID
	}
	state, err := s.repo.GetSession(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return core.NewSessionState(id), nil
	}
	if err != nil {
		return nil, err
	}
	return state, nil
}

// Words returns the list the session is currently asked about.
// A finished quiz has no list.
func Words(state *core.SessionState) []string {
	switch state.Stage {
	case core.QuizStageOne:
		return slices.Clone(StageOneWords)
	case core.QuizStageTwo:
		return slices.Clone(StageTwoWords[state.Bucket])
	}
	return []string{}
}

// SubmitStageOne records the words the user knows from StageOneWords and
// moves the session to stage two.
func (s *Service) SubmitStageOne(ctx context.Context, id string, known []string) (*core.SessionState, error) {
	defer s.locks.lock(id)()

	state, err := s.State(ctx, id)
	if err != nil {
		return nil, err
	}
	if state.Stage != core.QuizStageOne {
		return nil, fmt.Errorf("%w: session is at %s", ErrWrongStage, state.Stage)
	}

	count, err := countKnown(StageOneWords, known)
	if err != nil {
		return nil, err
	}
	bucket, err := BucketFor(count)
	if err != nil {
		return nil, err
	}

	state.StageOneKnown = count
	state.Bucket = bucket
	state.Stage = core.QuizStageTwo
	if err := s.repo.SaveSession(ctx, state); err != nil {
		return nil, err
	}

	s.logger.Debug("stage one complete", "session", id, "known", count, "bucket", bucket)
	return state, nil
}

// SubmitStageTwo records the words the user knows from the bucket's list
// and finishes the quiz with a profile.
func (s *Service) SubmitStageTwo(ctx context.Context, id string, known []string) (*core.SessionState, error) {
	defer s.locks.lock(id)()

	state, err := s.State(ctx, id)
	if err != nil {
		return nil, err
	}
	if state.Stage != core.QuizStageTwo {
		return nil, fmt.Errorf("%w: session is at %s", ErrWrongStage, state.Stage)
	}

	count, err := countKnown(StageTwoWords[state.Bucket], known)
	if err != nil {
		return nil, err
	}
	profile, err := ProfileFor(state.Bucket, count)
	if err != nil {
		return nil, err
	}

	state.StageTwoKnown = count
	state.Profile = profile
	state.Stage = core.QuizStageDone
	if err := s.repo.SaveSession(ctx, state); err != nil {
		return nil, err
	}

	s.logger.Debug("quiz complete", "session", id, "estimate", profile.Estimate, "tier", profile.Tier)
	return state, nil
}

// Reset discards the session's quiz state.
func (s *Service) Reset(ctx context.Context, id string) error {
	defer s.locks.lock(id)()
	return s.repo.DeleteSession(ctx, id)
}

// Profile returns the finished quiz profile, or ErrNoProfile.
func (s *Service) Profile(ctx context.Context, id string) (*core.VocabularyProfile, error) {
	state, err := s.State(ctx, id)
	if err != nil {
		return nil, err
	}
	if state.Profile == nil {
		return nil, ErrNoProfile
	}
	return state.Profile, nil
}

// InstructionFor returns the mining instruction for the session's profile,
// falling back to DefaultInstruction when there is none.
func (s *Service) InstructionFor(ctx context.Context, id string) string {
	if strings.TrimSpace(id) == "" {
		return DefaultInstruction()
	}
	profile, err := s.Profile(ctx, id)
	if err != nil {
		if !errors.Is(err, ErrNoProfile) {
			s.logger.Warn("profile lookup failed, using default instruction", "session", id, "err", err)
		}
		return DefaultInstruction()
	}
	return profile.Instruction
}
