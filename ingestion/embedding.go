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

package ingestion

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/lexis/ai"
	"github.com/poiesic/lexis/core"
)

// batch is a contiguous run of passages embedded with one request.
type batch struct {
	start    int
	passages []core.Passage
}

// makeBatches cuts passages into runs of at most size.
func makeBatches(passages []core.Passage, size int) []batch {
	if size < 1 {
		size = 1
	}
	batches := make([]batch, 0, (len(passages)+size-1)/size)
	for start := 0; start < len(passages); start += size {
		end := min(start+size, len(passages))
		batches = append(batches, batch{start: start, passages: passages[start:end]})
	}
	return batches
}

// embedBatch embeds one batch and writes the vectors into out at the batch offset.
func embedBatch(ctx context.Context, embedder ai.Embedder, b batch, out [][]float32, logger *slog.Logger) error {
	texts := make([]string, len(b.passages))
	for i, p := range b.passages {
		texts[i] = p.Text
	}

	logger.Debug("embedding batch", "start", b.start, "size", len(texts))
	vectors, err := embedder.EmbedTexts(ctx, texts)
	if err != nil {
		logger.Error("error generating embeddings", "start", b.start, "err", err)
		return fmt.Errorf("%w: %w", ErrEmbedding, err)
	}

	if len(vectors) != len(texts) {
		return fmt.Errorf("%w: expected %d, received %d", ErrEmbeddingCountMismatch, len(texts), len(vectors))
	}

	for i, v := range vectors {
		if len(v) == 0 {
			return fmt.Errorf("%w: passage %d", ErrEmptyEmbedding, b.start+i)
		}
		out[b.start+i] = v
	}
	return nil
}

// checkDimensions returns the shared vector length or ErrDimensionMismatch.
func checkDimensions(vectors [][]float32) (int, error) {
	if len(vectors) == 0 {
		return 0, nil
	}
	dim := len(vectors[0])
	for i, v := range vectors {
		if len(v) != dim {
			return 0, fmt.Errorf("%w: passage %d has %d values, passage 0 has %d", core.ErrDimensionMismatch, i, len(v), dim)
		}
	}
	return dim, nil
}
