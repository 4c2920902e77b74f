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

// Package ai provides abstractions for the remote model services used by lexis.
//
// Two services are involved:
//
//   - Embedder: maps passages and queries to sentence embeddings
//   - ChatModel: blocking chat completion used for answer synthesis and
//     vocabulary mining
//
// AIProvider aggregates both so callers can initialise and close them
// together.
//
// # Implementation Packages
//
//   - ai/openai: OpenAI-compatible services through langchaingo
//   - ai/mock: test doubles with overridable behavior
//
// # Constructor Return Type Pattern
//
// Public constructors (openai.NewProvider, openai.NewEmbedder) return
// interface types. Mock constructors return concrete types so tests can
// inject behavior and count calls:
//
//	embedder := mock.NewMockEmbedder()
//	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) { ... }
//	count := embedder.CallCount()
//
// # Usage Example
//
//	config := ai.NewConfig(ai.WithChatToken(os.Getenv("DEEPSEEK_API_KEY")))
//	provider, err := openai.NewProvider(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	vector, err := provider.Embedder().EmbedText(ctx, "做时间的朋友")
//	reply, err := provider.ChatModel().Complete(ctx, ai.ChatRequest{System: "...", User: "..."})
package ai
