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



package lexis

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/poiesic/lexis/ai"
	"github.com/poiesic/lexis/ai/openai"
	"github.com/poiesic/lexis/answer"
	"github.com/poiesic/lexis/config"
	"github.com/poiesic/lexis/core"
	"github.com/poiesic/lexis/corpus"
	"github.com/poiesic/lexis/ingestion"
	"github.com/poiesic/lexis/search"
	"github.com/poiesic/lexis/storage"
	"github.com/poiesic/lexis/storage/badger"
	redisstore "github.com/poiesic/lexis/storage/redis"
	"github.com/poiesic/lexis/vocab"
	"github.com/robfig/cron/v3"
)

// Engine owns every component behind the HTTP API and the CLI.
type Engine struct {
	cfg         *config.Config
	provider    ai.AIProvider
	sessions    storage.SessionRepository
	splitter    corpus.Splitter
	pipeline    *ingestion.Pipeline
	cache       *ingestion.Cache
	searcher    *search.Searcher
	synthesizer *answer.Synthesizer
	quiz        *vocab.Service
	miner       *vocab.Miner
	scheduler   *cron.Cron
	chatEnabled bool
	closers     []func() error
	logger      *slog.Logger
}

// Option configures an Engine.
type Option func(*engineOptions)

type engineOptions struct {
	provider ai.AIProvider
	sessions storage.SessionRepository
	progress io.Writer
	logger   *slog.Logger
}

// WithProvider uses provider instead of building an OpenAI-compatible one
// from the configuration. The engine does not close it.
func WithProvider(provider ai.AIProvider) Option {
	return func(o *engineOptions) {
		o.provider = provider
	}
}

// WithSessionRepository uses repo instead of opening the configured session
// store. The engine does not close it.
func WithSessionRepository(repo storage.SessionRepository) Option {
	return func(o *engineOptions) {
		o.sessions = repo
	}
}

// WithProgress reports index build progress to w.
func WithProgress(w io.Writer) Option {
	return func(o *engineOptions) {
		o.progress = w
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *engineOptions) {
		o.logger = logger
	}
}

// NewEngine wires the components described by cfg. A nil cfg means
// config.Default(). The corpus is not read until first use.
func NewEngine(cfg *config.Config, opts ...Option) (*Engine, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	options := &engineOptions{}
	for _, opt := range opts {
		opt(options)
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}

	e := &Engine{
		cfg:    cfg,
		logger: options.logger.With("component", "engine"),
	}
	if err := e.init(options); err != nil {
		e.Close()
		return nil, err
	}
	return e, nil
}

func (e *Engine) init(options *engineOptions) error {
	cfg := e.cfg

	e.provider = options.provider
	e.chatEnabled = true
	if e.provider == nil {
		aiCfg := cfg.AIConfig()
		provider, err := openai.NewProvider(aiCfg)
		if err != nil {
			return fmt.Errorf("failed to create AI provider: %w", err)
		}
		e.provider = provider
		e.chatEnabled = aiCfg.ChatEnabled()
		e.closers = append(e.closers, provider.Close)
	}

	e.sessions = options.sessions
	if e.sessions == nil {
		repo, err := openSessions(cfg.Sessions)
		if err != nil {
			return fmt.Errorf("failed to open session store: %w", err)
		}
		e.sessions = repo
		e.closers = append(e.closers, repo.Close)
	}

	splitter, err := corpus.NewSplitter(cfg.SplitterConfig())
	if err != nil {
		return err
	}
	e.splitter = splitter

	pipelineOpts := []ingestion.Option{
		ingestion.WithBatchSize(cfg.Corpus.BatchSize),
		ingestion.WithRetry(cfg.Corpus.Attempts, cfg.Corpus.RetryDelay),
		ingestion.WithLogger(options.logger),
	}
	if cfg.Corpus.Workers > 0 {
		pipelineOpts = append(pipelineOpts, ingestion.WithPoolSize(cfg.Corpus.Workers))
	}
	if options.progress != nil {
		pipelineOpts = append(pipelineOpts, ingestion.WithProgress(options.progress, cfg.Corpus.BatchSize))
	}
	pipeline, err := ingestion.NewPipeline(e.provider.Embedder(), splitter, cfg.AI.EmbeddingModel, pipelineOpts...)
	if err != nil {
		return err
	}
	e.pipeline = pipeline
	e.closers = append(e.closers, func() error {
		pipeline.Release()
		return nil
	})

	if e.cache, err = ingestion.NewCache(pipeline, pipeline.Model()); err != nil {
		return err
	}
	if e.searcher, err = search.NewSearcher(e.cache, e.provider, splitter, cfg.Corpus.Path, search.WithLogger(options.logger)); err != nil {
		return err
	}

	synthOpts := []answer.Option{
		answer.WithLogger(options.logger),
		answer.WithSystemPrompt(cfg.Persona.SystemPrompt),
	}
	if cfg.Persona.Author != "" {
		synthOpts = append(synthOpts, answer.WithAuthor(cfg.Persona.Author))
	}
	if cfg.AI.Temperature != nil {
		synthOpts = append(synthOpts, answer.WithTemperature(*cfg.AI.Temperature))
	}
	if e.synthesizer, err = answer.NewSynthesizer(e.provider.ChatModel(), synthOpts...); err != nil {
		return err
	}

	if e.quiz, err = vocab.NewService(e.sessions); err != nil {
		return err
	}

	minerOpts := []vocab.MinerOption{
		vocab.WithMinChars(cfg.Miner.MinChars),
		vocab.WithMaxChars(cfg.Miner.MaxChars),
	}
	if cfg.Miner.Temperature != nil {
		minerOpts = append(minerOpts, vocab.WithMinerTemperature(*cfg.Miner.Temperature))
	}
	if e.miner, err = vocab.NewMiner(e.provider.ChatModel(), minerOpts...); err != nil {
		return err
	}
	return nil
}

func openSessions(cfg config.SessionsConfig) (storage.SessionRepository, error) {
	switch cfg.Backend {
	case config.SessionBackendMemory:
		return badger.NewSessionStore("", cfg.TTL)
	case config.SessionBackendRedis:
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return redisstore.Open(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
			redisstore.WithKeyPrefix(cfg.Redis.KeyPrefix),
			redisstore.WithTTL(cfg.TTL))
	default:
		return badger.NewSessionStore(cfg.Path, cfg.TTL)
	}
}

// Config returns the configuration the engine was built from.
func (e *Engine) Config() *config.Config {
	return e.cfg
}

// Searcher returns the underlying searcher.
func (e *Engine) Searcher() *search.Searcher {
	return e.searcher
}

// Quiz returns the vocabulary quiz service.
func (e *Engine) Quiz() *vocab.Service {
	return e.quiz
}

// Splitter returns the configured corpus splitter.
func (e *Engine) Splitter() corpus.Splitter {
	return e.splitter
}

// Search ranks passages against query. Zero fields in opts take the
// configured defaults.
func (e *Engine) Search(ctx context.Context, query string, opts search.Options) ([]core.ScoredResult, error) {
	return e.searcher.Search(ctx, query, e.searchOptions(opts))
}

// SearchWithMonitor is Search with a monitor observing each stage.
func (e *Engine) SearchWithMonitor(ctx context.Context, query string, opts search.Options, monitor search.SearchMonitor) ([]core.ScoredResult, error) {
	return e.searcher.SearchWithMonitor(ctx, query, e.searchOptions(opts), monitor)
}

func (e *Engine) searchOptions(opts search.Options) search.Options {
	if opts.K == 0 {
		opts.K = e.cfg.Search.K
	}
	if opts.Threshold == 0 {
		opts.Threshold = e.cfg.Search.Threshold
	}
	return opts
}

// Keyword returns up to k passages containing query. k <= 0 uses the
// configured search k.
func (e *Engine) Keyword(ctx context.Context, query string, k int) ([]core.ScoredResult, error) {
	if k <= 0 {
		k = e.cfg.Search.K
	}
	return e.searcher.Keyword(ctx, query, k)
}

// AskResult carries the passages an answer was grounded on.
type AskResult struct {
	Results []core.ScoredResult
	Answer  core.Answer
}

// Ask retrieves at most k passages at the synthesis threshold and has the
// persona answer from them. k <= 0 uses the configured ask k. Retrieval
// errors are returned; synthesis failures are carried in the Answer.
func (e *Engine) Ask(ctx context.Context, query string, k int) (*AskResult, error) {
	if k <= 0 {
		k = e.cfg.Search.AskK
	}
	results, err := e.searcher.Search(ctx, query, search.Options{K: k, Threshold: e.cfg.Search.AskThreshold})
	if err != nil {
		return nil, err
	}
	return &AskResult{
		Results: results,
		Answer:  e.synthesizer.Synthesize(ctx, query, core.Texts(results)),
	}, nil
}

// Mine extracts study items from text, tuned to the vocabulary profile of
// the session. Sessions without a profile get the default tier.
func (e *Engine) Mine(ctx context.Context, sessionID, text string) core.MineResult {
	return e.miner.Mine(ctx, text, e.quiz.InstructionFor(ctx, sessionID))
}

// CorpusStatus describes the configured corpus file.
type CorpusStatus struct {
	Path        string `json:"path"`
	Available   bool   `json:"available"`
	Passages    int    `json:"passages"`
	Splitter    string `json:"splitter"`
	Model       string `json:"model"`
	Fingerprint string `json:"fingerprint,omitempty"`
	Error       string `json:"error,omitempty"`
}

// Corpus reads and splits the corpus file without embedding it.
// A missing file is reported in the status, not as an error.
func (e *Engine) Corpus(_ context.Context) CorpusStatus {
	status := CorpusStatus{
		Path:     e.cfg.Corpus.Path,
		Splitter: e.splitter.Name(),
		Model:    e.pipeline.Model(),
	}
	doc, err := corpus.Load(e.cfg.Corpus.Path)
	if err != nil {
		status.Error = err.Error()
		return status
	}
	status.Path = doc.Path
	status.Available = true
	status.Fingerprint = doc.Fingerprint
	status.Passages = len(corpus.Passages(doc, e.splitter))
	return status
}

// Reload drops every cached index so the next search rereads the corpus.
func (e *Engine) Reload() {
	e.cache.InvalidateAll()
}

// Features lists which capabilities are currently usable.
type Features struct {
	SemanticSearch bool `json:"semantic_search"`
	Synthesis      bool `json:"synthesis"`
	KeywordSearch  bool `json:"keyword_search"`
	VocabularyQuiz bool `json:"vocabulary_quiz"`
	Miner          bool `json:"miner"`
	Transcripts    bool `json:"transcripts"`
	Export         bool `json:"export"`
}

// Features reports capability flags. Retrieval depends on the corpus file
// being readable; synthesis and mining depend on a chat token.
func (e *Engine) Features(ctx context.Context) Features {
	available := e.Corpus(ctx).Available
	return Features{
		SemanticSearch: available,
		Synthesis:      available && e.chatEnabled,
		KeywordSearch:  available,
		VocabularyQuiz: true,
		Miner:          e.chatEnabled,
	}
}

// StartMaintenance runs session store maintenance on the configured cron
// schedule. It does nothing when no schedule is set or the store needs no
// maintenance.
func (e *Engine) StartMaintenance() error {
	schedule := e.cfg.Sessions.GCSchedule
	maintainer, ok := e.sessions.(storage.Maintainer)
	if schedule == "" || !ok {
		return nil
	}
	if e.scheduler != nil {
		return ErrMaintenanceRunning
	}

	scheduler := cron.New()
	_, err := scheduler.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := maintainer.Maintain(ctx); err != nil {
			e.logger.Warn("session store maintenance failed", "err", err)
			return
		}
		e.logger.Debug("session store maintenance complete")
	})
	if err != nil {
		return fmt.Errorf("%w: %q: %w", ErrInvalidSchedule, schedule, err)
	}
	scheduler.Start()
	e.scheduler = scheduler
	e.logger.Info("session store maintenance scheduled", "schedule", schedule)
	return nil
}

// Close stops maintenance and releases everything the engine opened.
func (e *Engine) Close() error {
	if e.scheduler != nil {
		<-e.scheduler.Stop().Done()
		e.scheduler = nil
	}

	var errs []error
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i](); err != nil {
			e.logger.Error("error closing engine component", "err", err)
			errs = append(errs, err)
		}
	}
	e.closers = nil
	return errors.Join(errs...)
}
