package badger

import (
	"context"
	"testing"
	"time"

	"github.com/poiesic/lexis/core"
	"github.com/poiesic/lexis/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T, ttl time.Duration) *SessionRepository {
	t.Helper()
	repo, backend, err := NewMemorySessionRepository(ttl)
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })
	return repo
}

func TestSessionRepository_SaveAndGet(t *testing.T) {
	repo := newTestRepo(t, time.Hour)
	ctx := context.Background()

	state := core.NewSessionState("s1")
	state.Stage = core.QuizStageTwo
	state.StageOneKnown = 12
	state.Bucket = core.BucketIntermediate

	require.NoError(t, repo.SaveSession(ctx, state))

	got, err := repo.GetSession(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", got.ID)
	assert.Equal(t, core.QuizStageTwo, got.Stage)
	assert.Equal(t, 12, got.StageOneKnown)
	assert.Equal(t, core.BucketIntermediate, got.Bucket)
	assert.Nil(t, got.Profile)
	assert.Equal(t, state.UpdatedAt.Truncate(time.Microsecond), got.UpdatedAt)
}

func TestSessionRepository_Overwrite(t *testing.T) {
	repo := newTestRepo(t, time.Hour)
	ctx := context.Background()

	state := core.NewSessionState("s1")
	require.NoError(t, repo.SaveSession(ctx, state))

	state.Stage = core.QuizStageDone
	state.Bucket = core.BucketBasic
	state.StageTwoKnown = 4
	state.Profile = &core.VocabularyProfile{Estimate: 1600, Bucket: core.BucketBasic, Tier: core.TierUnder3000}
	require.NoError(t, repo.SaveSession(ctx, state))

	got, err := repo.GetSession(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, got.Profile)
	assert.Equal(t, 1600, got.Profile.Estimate)
}

func TestSessionRepository_NotFound(t *testing.T) {
	repo := newTestRepo(t, time.Hour)

	_, err := repo.GetSession(context.Background(), "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSessionRepository_RejectsInvalidState(t *testing.T) {
	repo := newTestRepo(t, time.Hour)
	ctx := context.Background()

	err := repo.SaveSession(ctx, &core.SessionState{ID: "s1"})
	assert.ErrorIs(t, err, core.ErrInvalidStage)

	err = repo.SaveSession(ctx, core.NewSessionState(" "))
	assert.ErrorIs(t, err, core.ErrEmptySessionID)

	_, err = repo.GetSession(ctx, "")
	assert.ErrorIs(t, err, core.ErrEmptySessionID)
}

func TestSessionRepository_Delete(t *testing.T) {
	repo := newTestRepo(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, repo.SaveSession(ctx, core.NewSessionState("s1")))
	require.NoError(t, repo.DeleteSession(ctx, "s1"))

	_, err := repo.GetSession(ctx, "s1")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	assert.NoError(t, repo.DeleteSession(ctx, "never-existed"))
}

func TestSessionRepository_Expiry(t *testing.T) {
	if testing.Short() {
		t.Skip("waits for a TTL to pass")
	}
	repo := newTestRepo(t, time.Second)
	ctx := context.Background()

	require.NoError(t, repo.SaveSession(ctx, core.NewSessionState("s1")))
	_, err := repo.GetSession(ctx, "s1")
	require.NoError(t, err)

	time.Sleep(2100 * time.Millisecond)
	_, err = repo.GetSession(ctx, "s1")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSessionRepository_Closed(t *testing.T) {
	repo, backend, err := NewMemorySessionRepository(time.Hour)
	require.NoError(t, err)
	require.NoError(t, backend.Close())

	ctx := context.Background()
	_, err = repo.GetSession(ctx, "s1")
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
	assert.ErrorIs(t, repo.SaveSession(ctx, core.NewSessionState("s1")), storage.ErrStorageClosed)
	assert.ErrorIs(t, repo.DeleteSession(ctx, "s1"), storage.ErrStorageClosed)
	assert.ErrorIs(t, repo.Maintain(ctx), storage.ErrStorageClosed)
}

func TestNewSessionStore(t *testing.T) {
	store, err := NewSessionStore(t.TempDir(), time.Hour)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, store.SaveSession(ctx, core.NewSessionState("s1")))

	maintainer, ok := store.(storage.Maintainer)
	require.True(t, ok)
	assert.NoError(t, maintainer.Maintain(ctx))

	require.NoError(t, store.Close())
}
