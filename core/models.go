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

package core

import (
	"encoding/hex"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// FingerprintOf returns a hex encoded 64-bit BLAKE2b digest of content.
// Identical content always produces the identical fingerprint.
func FingerprintOf(content string) string {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(content))
	return hex.EncodeToString(h.Sum(nil))
}

// Passage is one ordered, immutable piece of the corpus.
// Its identity is its position in the splitter output.
type Passage struct {
	Index int
	Text  string
}

// Hit is a ranker result: a passage position and its similarity score.
type Hit struct {
	Index int
	Score float64
}

// ScoredResult pairs a passage with its relevance score.
type ScoredResult struct {
	Passage Passage
	Score   float64
}

// Index is an embedded corpus. Vectors[i] is the embedding of Passages[i].
type Index struct {
	Source      string // Absolute path of the corpus file
	Fingerprint string // FingerprintOf the corpus content at build time
	Model       string // Embedding model identity
	Passages    []Passage
	Vectors     [][]float32
	Dimension   int
	BuiltAt     time.Time
}

// Len returns the number of passages in the index.
func (i *Index) Len() int {
	if i == nil {
		return 0
	}
	return len(i.Passages)
}

// Results resolves ranker hits into scored passages, preserving hit order.
// Hits pointing outside the index are skipped.
func (i *Index) Results(hits []Hit) []ScoredResult {
	results := make([]ScoredResult, 0, len(hits))
	for _, hit := range hits {
		if hit.Index < 0 || hit.Index >= i.Len() {
			continue
		}
		results = append(results, ScoredResult{
			Passage: i.Passages[hit.Index],
			Score:   hit.Score,
		})
	}
	return results
}

// Texts returns the passage texts of results in order.
func Texts(results []ScoredResult) []string {
	texts := make([]string, len(results))
	for i, r := range results {
		texts[i] = r.Passage.Text
	}
	return texts
}

// Answer is the outcome of an answer synthesis attempt.
// Text is always safe to show to the user.
type Answer struct {
	Text    string
	Err     error // Set when the model call failed; Text carries the message
	Skipped bool  // True when nothing was sent to the model
}

// Failed reports whether the synthesis attempt hit an error.
func (a Answer) Failed() bool {
	return a.Err != nil
}

// Bucket is the coarse band a user falls into after the first quiz stage.
type Bucket string

const (
	BucketBasic        Bucket = "basic"
	BucketIntermediate Bucket = "intermediate"
	BucketAdvanced     Bucket = "advanced"
)

// Valid reports whether b is one of the known buckets.
func (b Bucket) Valid() bool {
	switch b {
	case BucketBasic, BucketIntermediate, BucketAdvanced:
		return true
	}
	return false
}

// Tier is the vocabulary size band that selects a mining instruction.
type Tier int

const (
	TierUnder3000 Tier = iota + 1
	TierUnder6000
	TierUnder10000
	TierAbove10000
)

// String returns the band label.
func (t Tier) String() string {
	switch t {
	case TierUnder3000:
		return "<3000"
	case TierUnder6000:
		return "<6000"
	case TierUnder10000:
		return "<10000"
	case TierAbove10000:
		return ">=10000"
	}
	return "unknown"
}

// VocabularyProfile is the outcome of a completed quiz.
type VocabularyProfile struct {
	Estimate    int
	Bucket      Bucket
	Tier        Tier
	Instruction string
}

// QuizStage tracks where a session is in the two stage quiz.
type QuizStage int

const (
	// QuizStageOne is waiting for the first word list.
	QuizStageOne QuizStage = iota + 1
	// QuizStageTwo is waiting for the bucket specific word list.
	QuizStageTwo
	// QuizStageDone has a profile.
	QuizStageDone
)

// String returns a lowercase stage name.
func (s QuizStage) String() string {
	switch s {
	case QuizStageOne:
		return "stage_one"
	case QuizStageTwo:
		return "stage_two"
	case QuizStageDone:
		return "done"
	}
	return "unknown"
}

// SessionState is the per-session quiz state kept in the session store.
//
// Field contracts:
//   - Stage is always set; a fresh session starts at QuizStageOne
//   - StageOneKnown and Bucket are written by the first stage only
//   - StageTwoKnown and Profile are written by the second stage only
//   - a reset replaces the whole state with a fresh one
type SessionState struct {
	ID            string
	Stage         QuizStage
	StageOneKnown int
	Bucket        Bucket
	StageTwoKnown int
	Profile       *VocabularyProfile
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewSessionState returns a fresh session at the first quiz stage.
func NewSessionState(id string) *SessionState {
	now := time.Now().UTC()
	return &SessionState{
		ID:        id,
		Stage:     QuizStageOne,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Category classifies a mined vocabulary item.
type Category string

const (
	CategoryWord       Category = "word"
	CategoryPhrase     Category = "phrase"
	CategoryContextual Category = "contextual-meaning"
)

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryWord, CategoryPhrase, CategoryContextual:
		return true
	}
	return false
}

// MinedItem is one vocabulary entry extracted from user text.
type MinedItem struct {
	Headword string
	Category Category
	Gloss    string
	Example  string
}

// MineResult is the outcome of a mining attempt.
// On failure Items is empty and Err explains why.
type MineResult struct {
	Items     []MinedItem
	Err       error
	Truncated bool
}
