package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/lexis/ai"
	"github.com/poiesic/lexis/core"
	"github.com/poiesic/lexis/corpus"
	"github.com/poiesic/lexis/ingestion"
)

// DefaultK is the number of passages returned when Options.K is unset.
const DefaultK = 5

// Options controls a single search.
type Options struct {
	K         int     // maximum results; 0 means DefaultK
	Threshold float64 // minimum score, exclusive
}

// DefaultOptions returns the display flow defaults.
func DefaultOptions() Options {
	return Options{K: DefaultK, Threshold: DisplayThreshold}
}

// Searcher provides semantic and keyword search over the corpus at one path.
type Searcher struct {
	cache    *ingestion.Cache
	splitter corpus.Splitter
	path     string
	embedder ai.Embedder
	logger   *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewSearcher creates a searcher over the corpus at path. splitter must be
// the one the cache's builder uses so keyword and semantic results share
// passage numbering.
func NewSearcher(cache *ingestion.Cache, provider ai.AIProvider, splitter corpus.Splitter, path string, opts ...Option) (*Searcher, error) {
	if cache == nil {
		return nil, ErrIndexCacheRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}
	if splitter == nil {
		return nil, ErrSplitterRequired
	}

	s := &Searcher{
		cache:    cache,
		splitter: splitter,
		path:     path,
		embedder: provider.Embedder(),
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Path returns the corpus path this searcher reads.
func (s *Searcher) Path() string {
	return s.path
}

// Search returns the passages most similar to query.
func (s *Searcher) Search(ctx context.Context, query string, opts Options) ([]core.ScoredResult, error) {
	return s.SearchWithMonitor(ctx, query, opts, nil)
}

// SearchWithMonitor searches like Search and reports each stage to monitor.
func (s *Searcher) SearchWithMonitor(ctx context.Context, query string, opts Options, monitor SearchMonitor) ([]core.ScoredResult, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	if opts.K == 0 {
		opts.K = DefaultK
	}

	monitor.Start(query)

	handle, err := s.cache.Acquire(ctx, s.path)
	if err != nil {
		return nil, err
	}
	defer handle.Release()
	index := handle.Index()

	embedding, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		s.logger.Error("error generating embedding for query", "query", query, "err", err)
		return nil, fmt.Errorf("%w: %w", ErrQueryEmbedding, err)
	}
	if len(embedding) != index.Dimension {
		return nil, fmt.Errorf("%w: query has %d values, index has %d",
			core.ErrDimensionMismatch, len(embedding), index.Dimension)
	}
	monitor.AfterQueryEmbedding(len(embedding))

	hits := Rank(embedding, index.Vectors, opts.K, opts.Threshold)
	monitor.AfterRanking(hits)

	results := index.Results(hits)
	s.logger.Debug("search complete", "query", query, "results", len(results), "passages", index.Len())
	monitor.Finish(results)

	return results, nil
}

// Keyword returns up to k passages whose text matches query, in corpus
// order, each scored 1. k <= 0 returns every match. The corpus is read and
// split directly, so keyword search works while the embedding service is
// down.
func (s *Searcher) Keyword(_ context.Context, query string, k int) ([]core.ScoredResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	doc, err := corpus.Load(s.path)
	if err != nil {
		return nil, err
	}

	results := []core.ScoredResult{}
	for _, passage := range corpus.Passages(doc, s.splitter) {
		if k > 0 && len(results) == k {
			break
		}
		if matchesKeyword(passage.Text, query) {
			results = append(results, core.ScoredResult{Passage: passage, Score: 1})
		}
	}
	return results, nil
}

// Passages returns the number of passages in the current index,
// building it if needed.
func (s *Searcher) Passages(ctx context.Context) (int, error) {
	handle, err := s.cache.Acquire(ctx, s.path)
	if err != nil {
		return 0, err
	}
	defer handle.Release()
	return handle.Index().Len(), nil
}
