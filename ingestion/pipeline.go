package ingestion

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/lexis/ai"
	"github.com/poiesic/lexis/core"
	"github.com/poiesic/lexis/corpus"
)

// DefaultBatchSize is the number of passages per embedding request.
const DefaultBatchSize = 32

// Pipeline turns a corpus document into an embedded index.
// Batches are embedded concurrently on a worker pool.
type Pipeline struct {
	embedder       ai.Embedder
	splitter       corpus.Splitter
	model          string
	pool           *ants.Pool
	batchSize      int
	progress       io.Writer
	reportInterval int
	attempts       int
	retryDelay     time.Duration
	logger         *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent embedding.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		if p.pool != nil {
			p.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithBatchSize sets how many passages go into one embedding request.
// Default is DefaultBatchSize.
func WithBatchSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		p.batchSize = size
		return nil
	}
}

// WithRetry retries a failed embedding request up to attempts times in
// total, starting at delay and doubling between tries.
// Default is a single attempt.
func WithRetry(attempts int, delay time.Duration) Option {
	return func(p *Pipeline) error {
		if attempts < 1 {
			return ErrInvalidMaxAttempts
		}
		p.attempts = attempts
		p.retryDelay = delay
		return nil
	}
}

// WithProgress reports build progress to w every interval passages.
func WithProgress(w io.Writer, interval int) Option {
	return func(p *Pipeline) error {
		p.progress = w
		p.reportInterval = max(interval, 1)
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new index building pipeline.
// model is recorded on every built index as its encoder identity.
func NewPipeline(embedder ai.Embedder, splitter corpus.Splitter, model string, opts ...Option) (*Pipeline, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if splitter == nil {
		return nil, ErrSplitterRequired
	}
	if model == "" {
		return nil, ErrModelRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		embedder:  embedder,
		splitter:  splitter,
		model:     model,
		pool:      pool,
		batchSize: DefaultBatchSize,
		attempts:  1,
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}
	p.logger = p.logger.With("component", "ingestion", "splitter", splitter.Name())

	return p, nil
}

// Model returns the embedding model identity recorded on built indexes.
func (p *Pipeline) Model() string {
	return p.model
}

// Build splits doc, embeds every passage and returns a validated index.
// A document that splits into nothing returns ErrEmptyCorpus.
func (p *Pipeline) Build(ctx context.Context, doc *corpus.Document) (*core.Index, error) {
	passages := corpus.Passages(doc, p.splitter)
	if len(passages) == 0 {
		return nil, ErrEmptyCorpus
	}

	p.logger.Info("building index", "source", doc.Path, "passages", len(passages), "model", p.model)

	var tracker *ProgressTracker
	if p.progress != nil {
		tracker = NewProgressTracker(p.progress, len(passages), p.reportInterval)
		tracker.Start()
	}

	vectors := make([][]float32, len(passages))
	batches := makeBatches(passages, p.batchSize)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	record := func(err error) {
		mu.Lock()
		errs = append(errs, err)
		mu.Unlock()
	}

	for _, b := range batches {
		wg.Add(1)
		err := p.pool.Submit(func() {
			defer wg.Done()
			err := retry(ctx, p.attempts, p.retryDelay, p.logger, func() error {
				return embedBatch(ctx, p.embedder, b, vectors, p.logger)
			})
			if err != nil {
				record(err)
				return
			}
			if tracker != nil {
				tracker.Increment(len(b.passages))
			}
		})
		if err != nil {
			wg.Done()
			record(err)
		}
	}
	wg.Wait()

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	if tracker != nil {
		tracker.Finish()
	}

	dim, err := checkDimensions(vectors)
	if err != nil {
		return nil, err
	}

	index := &core.Index{
		Source:      doc.Path,
		Fingerprint: doc.Fingerprint,
		Model:       p.model,
		Passages:    passages,
		Vectors:     vectors,
		Dimension:   dim,
		BuiltAt:     time.Now().UTC(),
	}
	if err := core.ValidateIndex(index); err != nil {
		return nil, err
	}

	p.logger.Info("index built", "passages", index.Len(), "dimension", dim)
	return index, nil
}

// Release releases resources including the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}
