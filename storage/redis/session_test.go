package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/poiesic/lexis/core"
	"github.com/poiesic/lexis/storage"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T, opts ...Option) (*SessionRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	repo, err := NewSessionRepository(client, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo, mr
}

func TestSessionRepository_SaveAndGet(t *testing.T) {
	repo, mr := setupTestRedis(t)
	ctx := context.Background()

	state := core.NewSessionState("s1")
	state.Stage = core.QuizStageDone
	state.StageOneKnown = 22
	state.Bucket = core.BucketAdvanced
	state.StageTwoKnown = 3
	state.Profile = &core.VocabularyProfile{
		Estimate:    9500,
		Bucket:      core.BucketAdvanced,
		Tier:        core.TierUnder10000,
		Instruction: "只挑选较高级的词汇",
	}
	require.NoError(t, repo.SaveSession(ctx, state))

	assert.True(t, mr.Exists(DefaultKeyPrefix+"s1"))
	assert.Equal(t, storage.DefaultSessionTTL, mr.TTL(DefaultKeyPrefix+"s1"))

	got, err := repo.GetSession(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, core.QuizStageDone, got.Stage)
	require.NotNil(t, got.Profile)
	assert.Equal(t, 9500, got.Profile.Estimate)
	assert.Equal(t, "只挑选较高级的词汇", got.Profile.Instruction)
}

func TestSessionRepository_NotFound(t *testing.T) {
	repo, _ := setupTestRedis(t)

	_, err := repo.GetSession(context.Background(), "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSessionRepository_Expiry(t *testing.T) {
	repo, mr := setupTestRedis(t, WithTTL(time.Minute))
	ctx := context.Background()

	require.NoError(t, repo.SaveSession(ctx, core.NewSessionState("s1")))
	mr.FastForward(2 * time.Minute)

	_, err := repo.GetSession(ctx, "s1")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSessionRepository_SaveRefreshesTTL(t *testing.T) {
	repo, mr := setupTestRedis(t, WithTTL(time.Minute))
	ctx := context.Background()

	state := core.NewSessionState("s1")
	require.NoError(t, repo.SaveSession(ctx, state))
	mr.FastForward(40 * time.Second)
	require.NoError(t, repo.SaveSession(ctx, state))
	mr.FastForward(40 * time.Second)

	_, err := repo.GetSession(ctx, "s1")
	assert.NoError(t, err)
}

func TestSessionRepository_Delete(t *testing.T) {
	repo, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, repo.SaveSession(ctx, core.NewSessionState("s1")))
	require.NoError(t, repo.DeleteSession(ctx, "s1"))
	assert.False(t, mr.Exists(DefaultKeyPrefix+"s1"))

	assert.NoError(t, repo.DeleteSession(ctx, "s1"))
}

func TestSessionRepository_KeyPrefix(t *testing.T) {
	repo, mr := setupTestRedis(t, WithKeyPrefix("test:"))

	require.NoError(t, repo.SaveSession(context.Background(), core.NewSessionState("s1")))
	assert.True(t, mr.Exists("test:s1"))
}

func TestSessionRepository_CorruptValue(t *testing.T) {
	repo, mr := setupTestRedis(t)
	require.NoError(t, mr.Set(DefaultKeyPrefix+"s1", ""))

	_, err := repo.GetSession(context.Background(), "s1")
	assert.ErrorIs(t, err, storage.ErrSerializationFailed)
}

func TestSessionRepository_Validation(t *testing.T) {
	repo, _ := setupTestRedis(t)
	ctx := context.Background()

	assert.ErrorIs(t, repo.SaveSession(ctx, &core.SessionState{ID: "s1"}), core.ErrInvalidSession)
	_, err := repo.GetSession(ctx, " ")
	assert.ErrorIs(t, err, core.ErrEmptySessionID)
	assert.ErrorIs(t, repo.DeleteSession(ctx, ""), core.ErrEmptySessionID)

	_, err = NewSessionRepository(nil)
	assert.Error(t, err)
	_, err = NewSessionRepository(redis.NewClient(&redis.Options{}), WithTTL(0))
	assert.Error(t, err)
}

func TestOpen(t *testing.T) {
	mr := miniredis.RunT(t)

	addr := mr.Addr()

	repo, err := Open(context.Background(), addr, "", 0)
	require.NoError(t, err)
	defer repo.Close()

	mr.Close()
	_, err = Open(context.Background(), addr, "", 0)
	assert.Error(t, err)
}
