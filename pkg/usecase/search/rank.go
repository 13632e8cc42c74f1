package search

import (
	"sort"

	"github.com/csfalcao/magis/pkg/model"
)

// Rank filters scored memories below the threshold, sorts the rest by final
// score descending and truncates to limit. The sort is stable: ties keep
// their input order, which is most-recent-first from the store. An empty
// input yields an empty result, never an error.
func Rank(scored []*model.ScoredMemory, threshold float64, limit int) []*model.ScoredMemory {
	results := make([]*model.ScoredMemory, 0, len(scored))
	for _, s := range scored {
		if s.FinalScore >= threshold {
			results = append(results, s)
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].FinalScore > results[j].FinalScore
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}

	return results
}
