package ai

// Tier classifies a completion request by the capability it needs.
// Queries are routed to a tier by inspecting their wording; each tier maps
// to a configured backend, with TierGeneral as the catch-all.
type Tier int

const (
	// TierGeneral is the default tier for queries that fit no other class.
	TierGeneral Tier = iota + 1
	// TierFast serves short factual lookups where latency matters more
	// than depth.
	TierFast
	// TierReasoning serves analytical queries that benefit from a stronger
	// model.
	TierReasoning
)

// String returns the lowercase name of the tier.
func (t Tier) String() string {
	switch t {
	case TierGeneral:
		return "general"
	case TierFast:
		return "fast"
	case TierReasoning:
		return "reasoning"
	default:
		return "unknown"
	}
}
