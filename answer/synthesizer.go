package answer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/lexis/ai"
	"github.com/poiesic/lexis/core"
)

// ErrChatModelRequired is returned when a chat model is not provided.
var ErrChatModelRequired = errors.New("chat model required")

// Synthesizer asks a chat model to answer a question from retrieved passages
// in the configured author's voice.
type Synthesizer struct {
	chat         ai.ChatModel
	systemPrompt string
	temperature  float64
	logger       *slog.Logger
}

// Option configures a Synthesizer.
type Option func(*Synthesizer) error

// WithAuthor sets the persona name used in the default system prompt.
func WithAuthor(author string) Option {
	return func(s *Synthesizer) error {
		s.systemPrompt = PersonaPrompt(author)
		return nil
	}
}

// WithSystemPrompt replaces the persona prompt entirely.
// A blank prompt leaves the current one in place.
func WithSystemPrompt(prompt string) Option {
	return func(s *Synthesizer) error {
		if strings.TrimSpace(prompt) != "" {
			s.systemPrompt = prompt
		}
		return nil
	}
}

// WithTemperature sets the sampling temperature sent with every request.
func WithTemperature(temperature float64) Option {
	return func(s *Synthesizer) error {
		if temperature < 0 || temperature > 2 {
			return fmt.Errorf("temperature %v outside [0, 2]", temperature)
		}
		s.temperature = temperature
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Synthesizer) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewSynthesizer creates a synthesizer over chat.
func NewSynthesizer(chat ai.ChatModel, opts ...Option) (*Synthesizer, error) {
	if chat == nil {
		return nil, ErrChatModelRequired
	}

	s := &Synthesizer{
		chat:         chat,
		systemPrompt: PersonaPrompt(DefaultAuthor),
		temperature:  1.0,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	s.logger = s.logger.With("component", "synthesizer")
	return s, nil
}

// SystemPrompt returns the instruction sent as the system message.
func (s *Synthesizer) SystemPrompt() string {
	return s.systemPrompt
}

// Synthesize answers query from passages with one blocking model call.
// It never fails: model errors and panics come back as an Answer whose
// Text carries the failure message.
func (s *Synthesizer) Synthesize(ctx context.Context, query string, passages []string) (ans core.Answer) {
	query = strings.TrimSpace(query)
	if query == "" {
		s.logger.Warn("empty query, synthesis skipped")
		return core.Answer{Text: EmptyQueryText, Skipped: true}
	}
	if len(passages) == 0 {
		return core.Answer{Text: NoPassagesText, Skipped: true}
	}

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("chat model panic: %v", r)
			s.logger.Error("synthesis panicked", "err", err)
			ans = core.Answer{Text: FailureText(err), Err: err}
		}
	}()

	reply, err := s.chat.Complete(ctx, ai.ChatRequest{
		System:      s.systemPrompt,
		User:        UserMessage(query, passages),
		Temperature: s.temperature,
	})
	if err != nil {
		s.logger.Error("synthesis failed", "err", err)
		return core.Answer{Text: FailureText(err), Err: err}
	}

	s.logger.Debug("synthesis complete", "passages", len(passages), "chars", len(reply))
	return core.Answer{Text: reply}
}
