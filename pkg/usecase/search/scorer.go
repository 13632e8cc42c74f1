package search

import (
	"strings"
	"time"
	"unicode"

	"github.com/csfalcao/magis/pkg/model"
)

const (
	// temporalBase is assigned when a temporal query meets a memory that has
	// at least one resolved date
	temporalBase = 0.8
	// recencyHorizonDays is the decay horizon for "last"/"recent" queries:
	// memories older than this get no recency bonus beyond the base
	recencyHorizonDays = 365.0
	// minTokenLen filters noise words ("a", "is", "my") out of keyword
	// matching
	minTokenLen = 3
)

// temporalTriggers mark a query as time-oriented
var temporalTriggers = []string{"when", "last", "recent", "ago", "time"}

// recencyTriggers additionally reward fresher memories
var recencyTriggers = []string{"last", "recent"}

// Query is a search query prepared for scoring: lowercased text, filtered
// tokens and the precomputed embedding. The embedding may be nil when the
// embedding service was unavailable; scoring then runs without the semantic
// dimension.
type Query struct {
	text      string
	tokens    []string
	embedding []float32
}

// NewQuery prepares a raw query text and its embedding for scoring
func NewQuery(text string, embedding []float32) Query {
	lower := strings.ToLower(text)

	var tokens []string
	for _, tok := range strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		if len(tok) >= minTokenLen {
			tokens = append(tokens, tok)
		}
	}

	return Query{text: lower, tokens: tokens, embedding: embedding}
}

func (q Query) hasAnyToken(words []string) bool {
	for _, tok := range q.tokens {
		for _, w := range words {
			if tok == w {
				return true
			}
		}
	}
	return false
}

// Scorer computes the per-dimension relevance of a memory for a query and
// combines the dimensions with its injected weights. Scoring is a pure
// function over (query, memory) pairs; it never mutates the memory.
type Scorer struct {
	weights Weights
}

// NewScorer creates a Scorer with the given weight configuration
func NewScorer(weights Weights) (*Scorer, error) {
	if err := weights.Validate(); err != nil {
		return nil, err
	}
	return &Scorer{weights: weights}, nil
}

// Score computes the four sub-scores of the memory against the query and the
// final weighted score. now anchors the temporal recency decay.
func (s *Scorer) Score(q Query, m *model.Memory, now time.Time) *model.ScoredMemory {
	// Cosine ranges over [-1,1]; an opposed vector carries no relevance
	// signal, so the semantic dimension floors at 0 like every other one
	semantic := Cosine(q.embedding, m.Embedding)
	if semantic < 0 {
		semantic = 0
	}

	scores := model.Scores{
		Semantic:   semantic,
		Entity:     entityScore(q, m),
		Temporal:   temporalScore(q, m, now),
		Keyword:    keywordScore(q, m),
		Importance: importanceMultiplier(m.Importance),
	}

	weighted := scores.Semantic*s.weights.Semantic +
		scores.Entity*s.weights.Entity +
		scores.Temporal*s.weights.Temporal +
		scores.Keyword*s.weights.Keyword

	return &model.ScoredMemory{
		Memory:     m,
		Scores:     scores,
		FinalScore: weighted * scores.Importance,
	}
}

// entityScore is the fraction of the memory's structured entities whose name
// or relation appears in the query text. A memory without entities scores 0:
// it can never win on this dimension. Substring containment only, no fuzzy
// matching.
func entityScore(q Query, m *model.Memory) float64 {
	entities := m.Entities.All()
	if len(entities) == 0 {
		return 0
	}

	matched := 0
	for _, e := range entities {
		if e.Name != "" && strings.Contains(q.text, strings.ToLower(e.Name)) {
			matched++
			continue
		}
		if e.Relation != "" && strings.Contains(q.text, strings.ToLower(e.Relation)) {
			matched++
		}
	}

	return float64(matched) / float64(len(entities))
}

// temporalScore rewards memories with resolved dates when the query is
// time-oriented. "last"/"recent" queries additionally decay the score toward
// 1.0 as the memory's age approaches zero, floored at the base score. A
// memory without resolved dates scores 0; the ingestion path backfills
// approximate dates from temporal keywords so this stays the single rule.
func temporalScore(q Query, m *model.Memory, now time.Time) float64 {
	if !q.hasAnyToken(temporalTriggers) {
		return 0
	}
	if len(m.ResolvedDates) == 0 {
		return 0
	}

	score := temporalBase
	if q.hasAnyToken(recencyTriggers) {
		ageDays := now.Sub(m.CreatedAt).Hours() / 24
		if ageDays < 0 {
			ageDays = 0
		}
		if recency := 1 - ageDays/recencyHorizonDays; recency > 0 {
			score = temporalBase + (1-temporalBase)*recency
		}
	}

	if score > 1 {
		score = 1
	}
	return score
}

// keywordScore is the fraction of query tokens contained anywhere in the
// memory's search text (content + summary + keywords + entities). Pure
// containment, no stemming.
func keywordScore(q Query, m *model.Memory) float64 {
	if len(q.tokens) == 0 {
		return 0
	}

	surface := m.SearchText()
	matched := 0
	for _, tok := range q.tokens {
		if strings.Contains(surface, tok) {
			matched++
		}
	}

	return float64(matched) / float64(len(q.tokens))
}

// importanceMultiplier maps importance 0..10 to a 0.5x..1.0x modifier of the
// weighted sum. Even importance 0 halves a match rather than erasing it.
func importanceMultiplier(importance int) float64 {
	if importance < 0 {
		importance = 0
	}
	if importance > 10 {
		importance = 10
	}
	return 0.5 + 0.5*float64(importance)/10
}
