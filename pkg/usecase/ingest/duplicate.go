package ingest

import (
	"strings"
	"time"
	"unicode"

	"github.com/csfalcao/magis/pkg/model"
)

const (
	// duplicateThreshold is the token-overlap ratio above which two contents
	// count as the same utterance
	duplicateThreshold = 0.7
	// duplicateWindow bounds how far apart two records can be created and
	// still describe the same event mention
	duplicateWindow = 24 * time.Hour
)

// isNearDuplicate reports whether an existing memory already records the
// candidate's content: same classification, same context, created within the
// duplicate window, and a token overlap of at least the threshold. This is a
// guard against recording the same event twice from near-identical
// utterances, not a fuzzy matcher.
func isNearDuplicate(candidate, existing *model.Memory) bool {
	if existing.Classification != candidate.Classification {
		return false
	}
	if existing.Context != candidate.Context {
		return false
	}

	delta := candidate.CreatedAt.Sub(existing.CreatedAt)
	if delta < 0 {
		delta = -delta
	}
	if delta > duplicateWindow {
		return false
	}

	return overlapRatio(candidate.Content, existing.Content) >= duplicateThreshold
}

// overlapRatio is the fraction of distinct words shared by two texts over
// the larger distinct word count
func overlapRatio(a, b string) float64 {
	wordsA := wordSet(a)
	wordsB := wordSet(b)
	if len(wordsA) == 0 || len(wordsB) == 0 {
		return 0
	}

	shared := 0
	for w := range wordsA {
		if wordsB[w] {
			shared++
		}
	}

	larger := len(wordsA)
	if len(wordsB) > larger {
		larger = len(wordsB)
	}

	return float64(shared) / float64(larger)
}

func wordSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		set[w] = true
	}
	return set
}
