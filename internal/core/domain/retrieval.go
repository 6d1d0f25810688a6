package domain

// SearchResult is one scored chunk produced by a search or fusion stage.
// Scores are raw until a normalization stage clamps them to [0,1].
type SearchResult struct {
	ChunkID  string         `json:"chunk_id"`
	Text     string         `json:"text"`
	Score    float64        `json:"score"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// ParentID returns the parent chunk id recorded in the result metadata,
// or "" when the chunk has no parent.
func (r SearchResult) ParentID() string {
	if r.Metadata == nil {
		return ""
	}
	if pid, ok := r.Metadata[MetaParentID].(string); ok {
		return pid
	}
	return ""
}

// RetrievalResult is the orchestrator output for one query.
type RetrievalResult struct {
	Results         []SearchResult    `json:"results"`
	ExpandedQueries []string          `json:"expanded_queries"`
	LatencyMS       float64           `json:"latency_ms"`
	TotalCandidates int               `json:"total_candidates"`
	ParentContext   map[string]string `json:"parent_context"`
}

// ContextFor returns the broadest available text for a result: the parent
// span when the parent was resolved, otherwise the child's own text.
func (r *RetrievalResult) ContextFor(res SearchResult) string {
	if pid := res.ParentID(); pid != "" {
		if text, ok := r.ParentContext[pid]; ok && text != "" {
			return text
		}
	}
	return res.Text
}
