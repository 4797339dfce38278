package query

import "github.com/poiesic/syndex/core"

// QueryMonitor provides hooks to observe the routing process.
// Implement this interface to track intermediate steps during a query.
type QueryMonitor interface {
	Start(query string)
	AfterCandidateSelection(siloIDs []string)
	AfterAccessFilter(siloIDs []string)
	SiloSearched(siloID string, hits int)
	SiloFailed(siloID string, err error)
	Finish(results []*core.KnowledgeResult)
}

// noopMonitor is a no-op implementation of QueryMonitor
type noopMonitor struct{}

var _ QueryMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                     {}
func (n *noopMonitor) AfterCandidateSelection(_ []string) {}
func (n *noopMonitor) AfterAccessFilter(_ []string)       {}
func (n *noopMonitor) SiloSearched(_ string, _ int)       {}
func (n *noopMonitor) SiloFailed(_ string, _ error)       {}
func (n *noopMonitor) Finish(_ []*core.KnowledgeResult)   {}
