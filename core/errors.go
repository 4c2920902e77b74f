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

import "errors"

// Domain validation errors
var (
	// ErrInvalidIndex indicates an Index failed validation.
	ErrInvalidIndex = errors.New("invalid index")

	// ErrDimensionMismatch indicates vectors of different lengths were compared or stored together.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrInvalidSession indicates a SessionState failed validation.
	ErrInvalidSession = errors.New("invalid session state")

	// ErrEmptySessionID indicates the session ID is empty.
	ErrEmptySessionID = errors.New("session id cannot be empty")

	// ErrInvalidStage indicates an unknown QuizStage value.
	ErrInvalidStage = errors.New("invalid quiz stage")

	// ErrInvalidBucket indicates an unknown Bucket value.
	ErrInvalidBucket = errors.New("invalid bucket")

	// ErrInvalidCount indicates a known-word count outside the list size.
	ErrInvalidCount = errors.New("known word count out of range")

	// ErrUnknownWord indicates a submitted word is not on the quiz list.
	ErrUnknownWord = errors.New("word is not on the quiz list")

	// ErrInvalidMinedItem indicates a MinedItem failed validation.
	ErrInvalidMinedItem = errors.New("invalid mined item")

	// ErrEmptyHeadword indicates the Headword field is empty.
	ErrEmptyHeadword = errors.New("headword cannot be empty")

	// ErrEmptyGloss indicates the Gloss field is empty.
	ErrEmptyGloss = errors.New("gloss cannot be empty")

	// ErrInvalidCategory indicates an unknown Category value.
	ErrInvalidCategory = errors.New("invalid category")
)
