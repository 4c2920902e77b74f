package main

import (
	"log/slog"
	"time"

	"github.com/poiesic/lexis/core"
	"github.com/poiesic/lexis/search"
)

// logMonitor logs each search stage with its elapsed time at debug level.
type logMonitor struct {
	logger *slog.Logger
	start  time.Time
}

var _ search.SearchMonitor = (*logMonitor)(nil)

func newLogMonitor() *logMonitor {
	return &logMonitor{logger: slog.Default().With("component", "search")}
}

func (m *logMonitor) Start(query string) {
	m.start = time.Now()
	m.logger.Debug("search started", "query", query)
}

func (m *logMonitor) AfterQueryEmbedding(dimension int) {
	m.logger.Debug("query embedded", "dimension", dimension, "elapsed", time.Since(m.start))
}

func (m *logMonitor) AfterRanking(hits []core.Hit) {
	m.logger.Debug("passages ranked", "hits", len(hits), "elapsed", time.Since(m.start))
}

func (m *logMonitor) Finish(results []core.ScoredResult) {
	m.logger.Debug("search finished", "results", len(results), "elapsed", time.Since(m.start))
}
