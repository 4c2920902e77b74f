package vocab

import (
	"testing"

	"github.com/poiesic/lexis/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWordLists(t *testing.T) {
	assert.Len(t, StageOneWords, core.StageOneListSize)
	assertUnique(t, StageOneWords)

	for _, bucket := range []core.Bucket{core.BucketBasic, core.BucketIntermediate, core.BucketAdvanced} {
		list := StageTwoWords[bucket]
		assert.Len(t, list, core.StageTwoListSize, "bucket %s", bucket)
		assertUnique(t, list)
	}
}

func assertUnique(t *testing.T, words []string) {
	t.Helper()
	seen := map[string]bool{}
	for _, w := range words {
		assert.False(t, seen[w], "duplicate word %q", w)
		seen[w] = true
	}
}

func TestBucketFor(t *testing.T) {
	tests := []struct {
		count int
		want  core.Bucket
	}{
		{0, core.BucketBasic},
		{9, core.BucketBasic},
		{10, core.BucketIntermediate},
		{19, core.BucketIntermediate},
		{20, core.BucketAdvanced},
		{35, core.BucketAdvanced},
	}
	for _, tt := range tests {
		got, err := BucketFor(tt.count)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "count %d", tt.count)
	}

	for _, bad := range []int{-1, 36} {
		_, err := BucketFor(bad)
		assert.ErrorIs(t, err, core.ErrInvalidCount)
	}
}

func TestEstimate(t *testing.T) {
	tests := []struct {
		bucket core.Bucket
		known  int
		want   int
	}{
		{core.BucketBasic, 0, 1000},
		{core.BucketBasic, 15, 3250},
		{core.BucketIntermediate, 5, 5500},
		{core.BucketIntermediate, 15, 8500},
		{core.BucketAdvanced, 0, 8000},
		{core.BucketAdvanced, 15, 15500},
	}
	for _, tt := range tests {
		got, err := Estimate(tt.bucket, tt.known)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := Estimate(core.BucketBasic, 16)
	assert.ErrorIs(t, err, core.ErrInvalidCount)
	_, err = Estimate("expert", 1)
	assert.ErrorIs(t, err, core.ErrInvalidBucket)
}

func TestTierFor(t *testing.T) {
	assert.Equal(t, core.TierUnder3000, TierFor(2999))
	assert.Equal(t, core.TierUnder6000, TierFor(3000))
	assert.Equal(t, core.TierUnder6000, TierFor(5999))
	assert.Equal(t, core.TierUnder10000, TierFor(6000))
	assert.Equal(t, core.TierUnder10000, TierFor(9999))
	assert.Equal(t, core.TierAbove10000, TierFor(10000))
}

func TestInstruction(t *testing.T) {
	seen := map[string]bool{}
	for _, tier := range []core.Tier{core.TierUnder3000, core.TierUnder6000, core.TierUnder10000, core.TierAbove10000} {
		text := Instruction(tier)
		assert.NotEmpty(t, text)
		assert.False(t, seen[text], "tier %s shares an instruction", tier)
		seen[text] = true
	}
	assert.Equal(t, Instruction(core.TierUnder6000), Instruction(core.Tier(0)))
	assert.Equal(t, Instruction(core.TierUnder6000), DefaultInstruction())
}

func TestProfileFor(t *testing.T) {
	profile, err := ProfileFor(core.BucketIntermediate, 5)
	require.NoError(t, err)
	assert.Equal(t, 5500, profile.Estimate)
	assert.Equal(t, core.TierUnder6000, profile.Tier)
	assert.Equal(t, "<6000", profile.Tier.String())
	assert.Equal(t, core.BucketIntermediate, profile.Bucket)
	assert.Equal(t, Instruction(core.TierUnder6000), profile.Instruction)
}

func TestCountKnown(t *testing.T) {
	list := []string{"apple", "river", "cogent"}

	n, err := countKnown(list, []string{"apple", " River ", "apple"})
	require.NoError(t, err)
	assert.Equal(t, 2, n, "duplicates count once")

	n, err = countKnown(list, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	_, err = countKnown(list, []string{"banana"})
	assert.ErrorIs(t, err, core.ErrUnknownWord)
}
