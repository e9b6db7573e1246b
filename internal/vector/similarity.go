// Package vector provides similarity math over embedding vectors.
package vector

import "math"

// CosineSimilarity returns the cosine similarity between two vectors.
// Returns 0 on dimension mismatch, empty input, or a zero vector. The raw
// cosine lives in [-1,1]; ClampUnit maps it onto the [0,1] ranking scale.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
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

// ClampUnit clamps a similarity score onto [0,1].
func ClampUnit(s float64) float64 {
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}
