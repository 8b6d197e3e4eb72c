package answer

import (
	"strings"

	"github.com/poiesic/docquery/ai"
)

// Router picks the completion tier for a query. Routing is a latency and
// cost optimization, never a correctness concern: any tier must be able
// to answer any query.
type Router interface {
	Route(query string) ai.Tier
}

// KeywordRouter classifies queries by scanning for marker phrases.
// Analytical wording routes to the reasoning tier, factual-lookup wording
// to the fast tier, everything else to general.
type KeywordRouter struct {
	reasoning []string
	factual   []string
}

var _ Router = (*KeywordRouter)(nil)

// NewKeywordRouter creates a router with the default marker phrases.
func NewKeywordRouter() *KeywordRouter {
	return &KeywordRouter{
		reasoning: []string{
			"analyze", "analyse", "explain", "compare", "contrast",
			"evaluate", "summarize", "summarise", "why", "how does",
			"how do", "what happens if",
		},
		factual: []string{
			"what is", "what are", "who is", "who was", "when did",
			"when was", "where is", "define", "how many", "list the",
		},
	}
}

// Route returns the tier for the query. Reasoning markers win over
// factual ones when both appear.
func (r *KeywordRouter) Route(query string) ai.Tier {
	q := strings.ToLower(query)

	for _, marker := range r.reasoning {
		if strings.Contains(q, marker) {
			return ai.TierReasoning
		}
	}
	for _, marker := range r.factual {
		if strings.Contains(q, marker) {
			return ai.TierFast
		}
	}
	return ai.TierGeneral
}
