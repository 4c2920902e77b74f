package search

import (
	"github.com/poiesic/lexis/core"
)

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	Start(query string)
	AfterQueryEmbedding(dimension int)
	AfterRanking(hits []core.Hit)
	Finish(results []core.ScoredResult)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)               {}
func (n *noopMonitor) AfterQueryEmbedding(_ int)    {}
func (n *noopMonitor) AfterRanking(_ []core.Hit)    {}
func (n *noopMonitor) Finish(_ []core.ScoredResult) {}
