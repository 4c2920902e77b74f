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
	"fmt"
	"strings"
)

const (
	// StageOneListSize is the length of the first quiz word list.
	StageOneListSize = 35
	// StageTwoListSize is the length of each bucket specific word list.
	StageTwoListSize = 15
)

// ValidateIndex validates an Index according to domain rules.
//
// Validation rules:
//   - Passages and Vectors have the same length
//   - every vector has length Dimension
//   - passage indexes match their positions
//
// An index with no passages is valid.
func ValidateIndex(index *Index) error {
	if index == nil {
		return fmt.Errorf("%w: index is nil", ErrInvalidIndex)
	}

	if len(index.Passages) != len(index.Vectors) {
		return fmt.Errorf("%w: %d passages but %d vectors", ErrInvalidIndex, len(index.Passages), len(index.Vectors))
	}

	for i, v := range index.Vectors {
		if len(v) != index.Dimension {
			return fmt.Errorf("%w: %w: vector %d has %d values, expected %d",
				ErrInvalidIndex, ErrDimensionMismatch, i, len(v), index.Dimension)
		}
	}

	for i, p := range index.Passages {
		if p.Index != i {
			return fmt.Errorf("%w: passage at position %d has index %d", ErrInvalidIndex, i, p.Index)
		}
	}

	return nil
}

// ValidateSessionState validates a SessionState according to domain rules.
//
// Validation rules:
//   - ID must not be empty
//   - Stage must be a known stage
//   - counts must lie within their list sizes
//   - stages past the first carry a valid bucket
//   - a finished quiz carries a profile
func ValidateSessionState(state *SessionState) error {
	if state == nil {
		return fmt.Errorf("%w: state is nil", ErrInvalidSession)
	}

	if strings.TrimSpace(state.ID) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidSession, ErrEmptySessionID)
	}

	switch state.Stage {
	case QuizStageOne, QuizStageTwo, QuizStageDone:
	default:
		return fmt.Errorf("%w: %w: value %d", ErrInvalidSession, ErrInvalidStage, state.Stage)
	}

	if state.StageOneKnown < 0 || state.StageOneKnown > StageOneListSize {
		return fmt.Errorf("%w: %w: stage one %d", ErrInvalidSession, ErrInvalidCount, state.StageOneKnown)
	}
	if state.StageTwoKnown < 0 || state.StageTwoKnown > StageTwoListSize {
		return fmt.Errorf("%w: %w: stage two %d", ErrInvalidSession, ErrInvalidCount, state.StageTwoKnown)
	}

	if state.Stage != QuizStageOne && !state.Bucket.Valid() {
		return fmt.Errorf("%w: %w: %q", ErrInvalidSession, ErrInvalidBucket, state.Bucket)
	}

	if state.Stage == QuizStageDone && state.Profile == nil {
		return fmt.Errorf("%w: finished quiz without profile", ErrInvalidSession)
	}

	return nil
}

// ValidateMinedItem validates a MinedItem according to domain rules.
//
// Validation rules:
//   - Headword must not be blank
//   - Gloss must not be blank
//   - Category must be word, phrase or contextual-meaning
//
// Example may be empty.
func ValidateMinedItem(item MinedItem) error {
	if strings.TrimSpace(item.Headword) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidMinedItem, ErrEmptyHeadword)
	}

	if strings.TrimSpace(item.Gloss) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidMinedItem, ErrEmptyGloss)
	}

	if !item.Category.Valid() {
		return fmt.Errorf("%w: %w: %q", ErrInvalidMinedItem, ErrInvalidCategory, item.Category)
	}

	return nil
}
