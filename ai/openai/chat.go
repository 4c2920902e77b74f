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

package openai

import (
	"context"
	"log/slog"

	"github.com/poiesic/lexis/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// ChatModel implements ai.ChatModel using OpenAI-compatible chat APIs.
type ChatModel struct {
	client llms.Model
	model  string
	logger *slog.Logger
}

// newChatModel is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newChatModel(config *ai.Config) (*ChatModel, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if !config.ChatEnabled() {
		return nil, ai.ErrChatUnavailable
	}

	client, err := openai.New(
		openai.WithBaseURL(config.ChatHost),
		openai.WithToken(config.ChatToken),
		openai.WithModel(config.ChatModel),
	)
	if err != nil {
		return nil, err
	}

	return newChatModelWithClient(client, config.ChatModel), nil
}

func newChatModelWithClient(client llms.Model, model string) *ChatModel {
	return &ChatModel{
		client: client,
		model:  model,
		logger: slog.Default().With("component", "openai-chat"),
	}
}

// NewChatModel creates a new chat model using the provided configuration.
// Returns ai.ErrChatUnavailable when no chat token is configured.
//
// Returns ai.ChatModel interface to enforce abstraction.
func NewChatModel(config *ai.Config) (ai.ChatModel, error) {
	return newChatModel(config)
}

// Complete sends a single non-streaming request and returns the first choice.
func (m *ChatModel) Complete(ctx context.Context, req ai.ChatRequest) (string, error) {
	content := make([]llms.MessageContent, 0, 2)
	if req.System != "" {
		content = append(content, llms.MessageContent{
			Role: llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{
				llms.TextPart(req.System),
			},
		})
	}
	content = append(content, llms.MessageContent{
		Role: llms.ChatMessageTypeHuman,
		Parts: []llms.ContentPart{
			llms.TextPart(req.User),
		},
	})

	opts := []llms.CallOption{llms.WithTemperature(req.Temperature)}
	if req.JSON {
		opts = append(opts, llms.WithJSONMode())
	}

	m.logger.Debug("sending chat completion", "model", m.model, "json", req.JSON, "length", len(req.User))

	response, err := m.client.GenerateContent(ctx, content, opts...)
	if err != nil {
		m.logger.Error("failed to generate content", "model", m.model, "err", err)
		return "", err
	}

	if len(response.Choices) < 1 {
		m.logger.Warn("no choices returned from model", "model", m.model)
		return "", ai.ErrEmptyResponse
	}

	return response.Choices[0].Content, nil
}

// unavailableChatModel is used when no chat token is configured.
// Every request fails with ai.ErrChatUnavailable.
type unavailableChatModel struct{}

var _ ai.ChatModel = unavailableChatModel{}

func (unavailableChatModel) Complete(context.Context, ai.ChatRequest) (string, error) {
	return "", ai.ErrChatUnavailable
}
