package corpus

import "errors"

var (
	// ErrCorpusUnavailable is returned when the corpus file is missing or unreadable.
	ErrCorpusUnavailable = errors.New("corpus unavailable")

	// ErrInvalidEncoding is returned when the corpus file is not valid UTF-8.
	ErrInvalidEncoding = errors.New("corpus is not valid UTF-8")

	// ErrUnknownSplitter is returned for an unrecognised splitter type.
	ErrUnknownSplitter = errors.New("unknown splitter type")

	// ErrInvalidSplitterConfig is returned when splitter sizes are inconsistent.
	ErrInvalidSplitterConfig = errors.New("invalid splitter configuration")
)
