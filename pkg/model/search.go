package model

const (
	// DefaultSearchLimit caps how many results a search returns unless the
	// caller asks otherwise
	DefaultSearchLimit = 10
	// DefaultSearchThreshold is the minimum final score for a memory to be
	// eligible as a search result
	DefaultSearchThreshold = 0.1
)

// SearchQuery is a free-text retrieval request against a user's memories
type SearchQuery struct {
	Text      string
	Context   string
	Limit     int
	Threshold float64
}

// Normalize fills in defaults for unset fields
func (q SearchQuery) Normalize() SearchQuery {
	if q.Limit <= 0 {
		q.Limit = DefaultSearchLimit
	}
	if q.Threshold <= 0 {
		q.Threshold = DefaultSearchThreshold
	}
	return q
}

// Scores holds the per-dimension breakdown of a ranking decision. Each
// dimension is in [0,1]. Importance is the multiplier in [0.5,1.0] that was
// applied to the weighted sum, kept so callers can audit the final score.
type Scores struct {
	Semantic   float64 `json:"semantic"`
	Entity     float64 `json:"entity"`
	Temporal   float64 `json:"temporal"`
	Keyword    float64 `json:"keyword"`
	Importance float64 `json:"importance"`
}

// ScoredMemory wraps a memory with its score breakdown
type ScoredMemory struct {
	Memory     *Memory
	Scores     Scores
	FinalScore float64
}

// ResultType discriminates the hybrid search result union
type ResultType string

const (
	ResultTypeTask   ResultType = "task"
	ResultTypeMemory ResultType = "memory"
)

// SearchResult is one entry of a hybrid search: either a structured task or
// a scored memory, discriminated by Type
type SearchResult struct {
	Type   ResultType
	Task   *Task
	Memory *ScoredMemory
}
