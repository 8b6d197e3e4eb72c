package search

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps during a search.
type SearchMonitor interface {
	Start(query string, candidateCount int)
	AfterQueryEmbedding(dimensions int)
	SkippedCandidate(candidate Candidate)
	Finish(hits []Hit)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string, _ int)       {}
func (n *noopMonitor) AfterQueryEmbedding(_ int)   {}
func (n *noopMonitor) SkippedCandidate(_ Candidate) {}
func (n *noopMonitor) Finish(_ []Hit)              {}
