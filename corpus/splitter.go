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

package corpus

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/tmc/langchaingo/textsplitter"
)

const (
	// SplitterLine splits on line breaks.
	SplitterLine = "line"
	// SplitterRecursive splits by a prioritised separator list with overlap.
	SplitterRecursive = "recursive"

	DefaultMinLength    = 5
	DefaultChunkSize    = 500
	DefaultChunkOverlap = 50
)

// ChineseSeparators is the default separator priority: paragraph, line,
// then sentence and clause punctuation.
var ChineseSeparators = []string{"\n\n", "\n", "。", "！", "？", "，"}

// EnglishSeparators is the separator priority for space-delimited text.
var EnglishSeparators = []string{"\n\n", "\n", ". ", "! ", "? ", ", ", " "}

// Splitter turns one source string into ordered passages.
// Implementations are deterministic and return an empty slice for empty input.
type Splitter interface {
	Split(text string) []string
	Name() string
}

// SplitterConfig selects and sizes a splitting strategy.
type SplitterConfig struct {
	Type         string   // SplitterLine or SplitterRecursive
	MinLength    int      // line: minimum passage length in runes
	ChunkSize    int      // recursive: maximum chunk length in runes
	ChunkOverlap int      // recursive: runes shared by consecutive chunks
	Language     string   // recursive: "zh" (default) or "en"
	Separators   []string // recursive: overrides Language when set
}

// DefaultSplitterConfig returns the recursive strategy with 500/50 sizing.
func DefaultSplitterConfig() SplitterConfig {
	return SplitterConfig{
		Type:         SplitterRecursive,
		MinLength:    DefaultMinLength,
		ChunkSize:    DefaultChunkSize,
		ChunkOverlap: DefaultChunkOverlap,
		Language:     "zh",
	}
}

// NewSplitter builds the strategy named by cfg.Type.
func NewSplitter(cfg SplitterConfig) (Splitter, error) {
	switch strings.ToLower(cfg.Type) {
	case SplitterLine:
		if cfg.MinLength < 0 {
			return nil, fmt.Errorf("%w: min length %d", ErrInvalidSplitterConfig, cfg.MinLength)
		}
		return NewLineSplitter(cfg.MinLength), nil
	case SplitterRecursive, "":
		separators := cfg.Separators
		if len(separators) == 0 {
			switch strings.ToLower(cfg.Language) {
			case "en":
				separators = EnglishSeparators
			case "zh", "":
				separators = ChineseSeparators
			default:
				return nil, fmt.Errorf("%w: language %q", ErrInvalidSplitterConfig, cfg.Language)
			}
		}
		return NewRecursiveSplitter(cfg.ChunkSize, cfg.ChunkOverlap, separators)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownSplitter, cfg.Type)
}

// LineSplitter splits on line breaks, trims each line and drops lines
// shorter than MinLength runes.
type LineSplitter struct {
	MinLength int
}

var _ Splitter = (*LineSplitter)(nil)

// NewLineSplitter creates a LineSplitter.
func NewLineSplitter(minLength int) *LineSplitter {
	return &LineSplitter{MinLength: minLength}
}

// Name returns "line".
func (s *LineSplitter) Name() string {
	return SplitterLine
}

// Split returns the trimmed lines of text that are at least MinLength runes long.
func (s *LineSplitter) Split(text string) []string {
	passages := []string{}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || utf8.RuneCountInString(line) < s.MinLength {
			continue
		}
		passages = append(passages, line)
	}
	return passages
}

// RecursiveSplitter wraps the langchaingo recursive character splitter.
type RecursiveSplitter struct {
	splitter     textsplitter.RecursiveCharacter
	chunkSize    int
	chunkOverlap int
	logger       *slog.Logger
}

var _ Splitter = (*RecursiveSplitter)(nil)

// NewRecursiveSplitter creates a splitter producing chunks of at most
// chunkSize runes with chunkOverlap runes carried between neighbours.
// An empty separator is appended so oversized runs without any listed
// separator are still cut to size.
func NewRecursiveSplitter(chunkSize, chunkOverlap int, separators []string) (*RecursiveSplitter, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunk size %d", ErrInvalidSplitterConfig, chunkSize)
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		return nil, fmt.Errorf("%w: chunk overlap %d with chunk size %d", ErrInvalidSplitterConfig, chunkOverlap, chunkSize)
	}

	seps := slices.Clone(separators)
	if !slices.Contains(seps, "") {
		seps = append(seps, "")
	}

	return &RecursiveSplitter{
		splitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(chunkSize),
			textsplitter.WithChunkOverlap(chunkOverlap),
			textsplitter.WithSeparators(seps),
			textsplitter.WithLenFunc(utf8.RuneCountInString),
			textsplitter.WithKeepSeparator(true),
		),
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
		logger:       slog.Default().With("component", "recursive-splitter"),
	}, nil
}

// Name returns "recursive".
func (s *RecursiveSplitter) Name() string {
	return SplitterRecursive
}

// Split returns trimmed, non-empty chunks in source order.
func (s *RecursiveSplitter) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return []string{}
	}

	chunks, err := s.splitter.SplitText(text)
	if err != nil {
		s.logger.Warn("recursive split failed", "err", err)
		return []string{}
	}

	passages := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		chunk = strings.TrimSpace(chunk)
		if chunk == "" {
			continue
		}
		passages = append(passages, chunk)
	}
	return passages
}
