// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package vocab

import (
	"fmt"
	"strings"

	"github.com/poiesic/lexis/core"
)

// StageOneWords spans five difficulty bands of seven words each, easiest first.
var StageOneWords = []string{
	"apple", "happy", "water", "friend", "school", "green", "sleep",
	"borrow", "journey", "ancient", "decide", "weather", "courage", "polite",
	"ambiguous", "reluctant", "fragile", "negotiate", "elaborate", "vivid", "sustain",
	"meticulous", "pragmatic", "ubiquitous", "candid", "resilient", "scrutinize", "tenacious",
	"ephemeral", "obfuscate", "perfunctory", "sycophant", "recalcitrant", "pusillanimous", "sesquipedalian",
}

// StageTwoWords holds the second list for each first-stage bucket.
var StageTwoWords = map[core.Bucket][]string{
	core.BucketBasic: {
		"kitchen", "river", "yellow", "library", "answer",
		"minute", "travel", "hungry", "cousin", "market",
		"careful", "island", "village", "quiet", "finish",
	},
	core.BucketIntermediate: {
		"abandon", "benefit", "curious", "delicate", "efficient",
		"genuine", "hesitate", "inevitable", "justify", "literal",
		"modest", "obscure", "precise", "rigid", "trivial",
	},
	core.BucketAdvanced: {
		"acquiesce", "bellicose", "cogent", "deleterious", "equivocate",
		"fastidious", "garrulous", "iconoclast", "laconic", "magnanimous",
		"nefarious", "obsequious", "perspicacious", "quixotic", "sanguine",
	},
}

// scoring is the (base, multiplier) pair used by Estimate.
type scoring struct {
	base       int
	multiplier int
}

var bucketScoring = map[core.Bucket]scoring{
	core.BucketBasic:        {base: 1000, multiplier: 150},
	core.BucketIntermediate: {base: 4000, multiplier: 300},
	core.BucketAdvanced:     {base: 8000, multiplier: 500},
}

var tierInstructions = map[core.Tier]string{
	core.TierUnder3000:  "用户词汇量不足 3000：优先挑选高频基础词和常用短语，释义要简单直白，例句越短越好。",
	core.TierUnder6000:  "用户词汇量约 3000 到 6000：跳过最基础的词，重点挑选中级词汇、常见搭配和短语动词。",
	core.TierUnder10000: "用户词汇量约 6000 到 10000：只挑选较高级的词汇、习语以及词在语境中的特殊含义。",
	core.TierAbove10000: "用户词汇量超过 10000：只挑选罕见词、文学性表达、俚语和微妙的语境含义。",
}

// BucketFor buckets a first-stage known count: below 10 is basic, 10 to 19
// intermediate, 20 and above advanced.
func BucketFor(count int) (core.Bucket, error) {
	if count < 0 || count > core.StageOneListSize {
		return "", fmt.Errorf("%w: stage one %d", core.ErrInvalidCount, count)
	}
	switch {
	case count < 10:
		return core.BucketBasic, nil
	case count < 20:
		return core.BucketIntermediate, nil
	default:
		return core.BucketAdvanced, nil
	}
}

// Estimate returns base + known*multiplier for bucket.
func Estimate(bucket core.Bucket, known int) (int, error) {
	s, ok := bucketScoring[bucket]
	if !ok {
		return 0, fmt.Errorf("%w: %q", core.ErrInvalidBucket, bucket)
	}
	if known < 0 || known > core.StageTwoListSize {
		return 0, fmt.Errorf("%w: stage two %d", core.ErrInvalidCount, known)
	}
	return s.base + known*s.multiplier, nil
}

// TierFor maps a vocabulary size to its instruction tier.
func TierFor(size int) core.Tier {
	switch {
	case size < 3000:
		return core.TierUnder3000
	case size < 6000:
		return core.TierUnder6000
	case size < 10000:
		return core.TierUnder10000
	default:
		return core.TierAbove10000
	}
}

// Instruction returns the mining bias for tier. Unknown tiers get the
// intermediate instruction.
func Instruction(tier core.Tier) string {
	if text, ok := tierInstructions[tier]; ok {
		return text
	}
	return DefaultInstruction()
}

// DefaultInstruction is used when a user has no profile.
func DefaultInstruction() string {
	return tierInstructions[core.TierUnder6000]
}

// ProfileFor computes the full profile for a finished quiz.
func ProfileFor(bucket core.Bucket, known int) (*core.VocabularyProfile, error) {
	estimate, err := Estimate(bucket, known)
	if err != nil {
		return nil, err
	}
	tier := TierFor(estimate)
	return &core.VocabularyProfile{
		Estimate:    estimate,
		Bucket:      bucket,
		Tier:        tier,
		Instruction: Instruction(tier),
	}, nil
}

// countKnown validates words against list and returns how many distinct
// list words were marked. Matching ignores case and surrounding space.
func countKnown(list, words []string) (int, error) {
	onList := make(map[string]bool, len(list))
	for _, w := range list {
		onList[w] = true
	}

	seen := make(map[string]bool, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if !onList[w] {
			return 0, fmt.Errorf("%w: %q", core.ErrUnknownWord, w)
		}
		seen[w] = true
	}
	return len(seen), nil
}
