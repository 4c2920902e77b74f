package corpus

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/poiesic/lexis/core"
)

// DefaultPath is the corpus file looked up when no path is configured.
const DefaultPath = "data.txt"

// Document is the raw content of a corpus file.
type Document struct {
	Path        string // Absolute path
	Content     string
	Fingerprint string
}

// AbsPath resolves path the same way Load does. An empty path means DefaultPath.
func AbsPath(path string) (string, error) {
	if path == "" {
		path = DefaultPath
	}
	return filepath.Abs(path)
}

// Load reads a UTF-8 corpus file. A leading byte order mark is dropped.
// Missing or unreadable files return an error wrapping ErrCorpusUnavailable.
func Load(path string) (*Document, error) {
	abs, err := AbsPath(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorpusUnavailable, err)
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorpusUnavailable, err)
	}

	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%w: %w: %s", ErrCorpusUnavailable, ErrInvalidEncoding, abs)
	}

	content := strings.TrimPrefix(string(data), "\ufeff")
	return &Document{
		Path:        abs,
		Content:     content,
		Fingerprint: core.FingerprintOf(content),
	}, nil
}

// Passages splits doc with splitter and numbers the results from 0.
// A nil document yields no passages.
func Passages(doc *Document, splitter Splitter) []core.Passage {
	if doc == nil {
		return []core.Passage{}
	}
	texts := splitter.Split(doc.Content)
	passages := make([]core.Passage, len(texts))
	for i, text := range texts {
		passages[i] = core.Passage{Index: i, Text: text}
	}
	return passages
}
