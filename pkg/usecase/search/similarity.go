package search

import "math"

// Cosine returns the cosine similarity of two embedding vectors. Vectors of
// different length cannot come from the same embedding model version, so a
// length mismatch (or a missing vector) yields 0 rather than an error: an
// incompatible embedding contributes nothing to the score, it never crashes
// a search.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
