package ai

import (
	"context"
	"errors"
)

// ErrChatUnavailable is returned by chat models that have no credential configured.
var ErrChatUnavailable = errors.New("chat model unavailable: no API key configured")

// ErrEmptyResponse is returned when the chat service answers without any choices.
var ErrEmptyResponse = errors.New("chat model returned no choices")

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// ChatRequest is one blocking exchange with a chat completion service:
// a system instruction followed by a single user message.
type ChatRequest struct {
	System      string
	User        string
	Temperature float64
	// JSON asks the service for structured output mode.
	JSON bool
}

// ChatModel sends non-streaming chat completion requests.
// Implementations must be thread-safe for concurrent use.
type ChatModel interface {
	// Complete sends the request and returns the text of the first choice.
	// An empty reply is returned as an empty string, not an error.
	Complete(ctx context.Context, req ChatRequest) (string, error)
}

// AIProvider aggregates AI services for convenient initialization and lifecycle management.
type AIProvider interface {
	// Embedder returns the text embedding service.
	Embedder() Embedder

	// ChatModel returns the chat completion service.
	ChatModel() ChatModel

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
