package ingestion

import "errors"

var (
	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrSplitterRequired is returned when a splitter is not provided.
	ErrSplitterRequired = errors.New("splitter required")

	// ErrBuilderRequired is returned when an index builder is not provided.
	ErrBuilderRequired = errors.New("index builder required")

	// ErrModelRequired is returned when the embedding model identity is empty.
	ErrModelRequired = errors.New("embedding model identity required")

	// ErrEmptyCorpus is returned when splitting the corpus produced no passages.
	ErrEmptyCorpus = errors.New("corpus has no passages")

	// ErrEmbedding wraps failures returned by the embedding service while building an index.
	ErrEmbedding = errors.New("embedding service failed")

	// ErrEmbeddingCountMismatch is returned when the embedder returns a different number of vectors than texts.
	ErrEmbeddingCountMismatch = errors.New("embedding result count mismatch")

	// ErrEmptyEmbedding is returned when the embedder returns a zero-length vector.
	ErrEmptyEmbedding = errors.New("embedding is empty")

	// ErrInvalidMaxAttempts is returned when the retry attempt count is not positive.
	ErrInvalidMaxAttempts = errors.New("max attempts must be greater than 0")
)
